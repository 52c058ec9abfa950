package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/mmcdole/akiba/internal/domain"
	"github.com/mmcdole/akiba/internal/filecache"
)

const maxBodyBytes = 1 << 20

// FavoritesResponse lists both favorite id sets
type FavoritesResponse struct {
	Art        []int `json:"art"`
	Characters []int `json:"characters"`
}

// ToggleResponse reports the membership after a toggle
type ToggleResponse struct {
	Kind     domain.FavoriteKind `json:"kind"`
	ID       int                 `json:"id"`
	Favorite bool                `json:"favorite"`
}

// CacheSizeResponse reports the file cache footprint
type CacheSizeResponse struct {
	Bytes    int64  `json:"bytes"`
	Human    string `json:"human"`
	MaxBytes int64  `json:"max_bytes"`
}

// ResolveResponse reports where an image can be loaded from
type ResolveResponse struct {
	URL      string `json:"url"`
	Resolved string `json:"resolved"`
	Cached   bool   `json:"cached"`
}

// PullResponse reports a feed pull; Error is set when only part of the
// batch arrived
type PullResponse struct {
	Fetched []domain.ImageRecord `json:"fetched"`
	Window  []domain.ImageRecord `json:"window"`
	Error   string               `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	art, chars, err := s.deps.Ledger.Load()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, FavoritesResponse{Art: art, Characters: chars})
}

func (s *Server) handleFavoriteRecords(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseFavoriteKind(chi.URLParam(r, "kind"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	records, err := s.deps.Ledger.Records(kind)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseFavoriteKind(chi.URLParam(r, "kind"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		badRequest(w, fmt.Sprintf("invalid id %q", chi.URLParam(r, "id")))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		badRequest(w, "failed to read body")
		return
	}
	hasRecord := len(strings.TrimSpace(string(body))) > 0

	var favorite bool
	switch kind {
	case domain.KindArt:
		var rec *domain.ImageRecord
		if hasRecord {
			rec = &domain.ImageRecord{}
			if err := json.Unmarshal(body, rec); err != nil {
				badRequest(w, "invalid image record")
				return
			}
			if rec.ID == 0 {
				rec.ID = id
			}
			if rec.ID != id {
				badRequest(w, "record id does not match path")
				return
			}
		}
		favorite, err = s.deps.Ledger.ToggleArt(id, rec)

	case domain.KindCharacter:
		var rec *domain.CharacterRecord
		if hasRecord {
			rec = &domain.CharacterRecord{}
			if err := json.Unmarshal(body, rec); err != nil {
				badRequest(w, "invalid character record")
				return
			}
			if rec.MalID == 0 {
				rec.MalID = id
			}
			if rec.MalID != id {
				badRequest(w, "record id does not match path")
				return
			}
		}
		favorite, err = s.deps.Ledger.ToggleCharacter(id, rec)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ToggleResponse{Kind: kind, ID: id, Favorite: favorite})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	// Another process may have saved settings since startup
	settings, err := s.deps.Settings.Load()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handlePatchSettings(w http.ResponseWriter, r *http.Request) {
	var patch domain.SettingsPatch
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		badRequest(w, "invalid settings patch")
		return
	}
	if err := patch.Validate(); err != nil {
		badRequest(w, err.Error())
		return
	}

	updated, err := s.deps.Settings.Update(patch)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleCacheSize(w http.ResponseWriter, r *http.Request) {
	size, err := s.deps.Files.Size()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CacheSizeResponse{
		Bytes:    size,
		Human:    humanize.Bytes(uint64(size)),
		MaxBytes: s.deps.Settings.Current().MaxCacheSize,
	})
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Files.Clear(); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		badRequest(w, "missing url parameter")
		return
	}

	resolved := s.deps.Files.Resolve(r.Context(), raw)
	writeJSON(w, http.StatusOK, ResolveResponse{
		URL:      filecache.Canonicalize(raw),
		Resolved: resolved,
		Cached:   resolved == s.deps.Files.Path(raw),
	})
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	window, err := s.deps.Feed.Window()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, window)
}

func (s *Server) handlePullFeed(w http.ResponseWriter, r *http.Request) {
	n := 0
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			badRequest(w, fmt.Sprintf("invalid n %q", v))
			return
		}
		n = parsed
	}

	res, err := s.deps.Feed.Pull(r.Context(), n)
	if res == nil {
		s.fail(w, r, err)
		return
	}

	resp := PullResponse{Fetched: res.Fetched, Window: res.Window}
	if err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}
