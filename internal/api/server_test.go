package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mmcdole/akiba/internal/cache"
	"github.com/mmcdole/akiba/internal/domain"
	"github.com/mmcdole/akiba/internal/favorites"
	"github.com/mmcdole/akiba/internal/filecache"
	"github.com/mmcdole/akiba/internal/service"
	"github.com/mmcdole/akiba/internal/settings"
	"github.com/mmcdole/akiba/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sequenceImages struct {
	mu   sync.Mutex
	next int
	err  error
}

func (s *sequenceImages) Random(context.Context) (*domain.ImageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	s.next++
	return &domain.ImageRecord{ID: s.next, Tags: []string{"sky"}}, nil
}

type testEnv struct {
	srv    *httptest.Server
	store  domain.Store
	ledger *favorites.Ledger
	files  *filecache.Manager
	images *sequenceImages
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	s, err := store.NewBoltStore("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	c := cache.New(s, nil)
	files, err := filecache.New(t.TempDir(), nil, nil)
	require.NoError(t, err)
	prefs := settings.New(s, domain.Settings{GridColumns: 2, MaxCacheSize: 100}, nil)
	_, err = prefs.Load()
	require.NoError(t, err)

	images := &sequenceImages{}
	env := &testEnv{
		store:  s,
		ledger: favorites.New(s, c, nil),
		files:  files,
		images: images,
	}
	api := NewServer(Deps{
		Ledger:   env.ledger,
		Files:    files,
		Settings: prefs,
		Feed:     service.NewFeedService(images, c, 5, time.Hour, nil),
	}, nil)
	env.srv = httptest.NewServer(api.Handler())
	t.Cleanup(env.srv.Close)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, e.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFavoritesEmpty(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/favorites", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode[FavoritesResponse](t, resp)
	assert.Equal(t, []int{}, got.Art)
	assert.Equal(t, []int{}, got.Characters)
}

func TestToggleFavoriteWithRecord(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/favorites/art/7", `{"file_url":"https://pic.re/7.jpg","tags":["sky"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, ToggleResponse{Kind: domain.KindArt, ID: 7, Favorite: true}, decode[ToggleResponse](t, resp))

	resp = env.do(t, http.MethodGet, "/favorites/art/records", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	records := decode[[]domain.ImageRecord](t, resp)
	require.Len(t, records, 1)
	assert.Equal(t, 7, records[0].ID)
	assert.Equal(t, "https://pic.re/7.jpg", records[0].FileURL)

	resp = env.do(t, http.MethodPost, "/favorites/art/7", "")
	assert.False(t, decode[ToggleResponse](t, resp).Favorite)

	resp = env.do(t, http.MethodGet, "/favorites", "")
	assert.Empty(t, decode[FavoritesResponse](t, resp).Art)
}

func TestToggleCharacter(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/favorites/characters/3", `{"name":"Holo","images":{"jpg":{"image_url":"https://cdn/holo.jpg"}}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.ledger.IsFavorite(domain.KindCharacter, 3))

	resp = env.do(t, http.MethodGet, "/favorites/character/records", "")
	records := decode[[]domain.CharacterRecord](t, resp)
	require.Len(t, records, 1)
	assert.Equal(t, "https://cdn/holo.jpg", records[0].ImageURL())
}

func TestToggleFavoriteBadInput(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		path string
		body string
	}{
		{"unknown kind", "/favorites/music/1", ""},
		{"bad id", "/favorites/art/abc", ""},
		{"bad body", "/favorites/art/1", "{"},
		{"mismatched id", "/favorites/art/1", `{"id":2}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.NotEmpty(t, decode[ErrorResponse](t, resp).Error)
		})
	}
	assert.Empty(t, env.ledger.IDs(domain.KindArt))
}

func TestSettingsPatchMerges(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPatch, "/settings", `{"gridColumns":1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.Settings{GridColumns: 1, MaxCacheSize: 100}, decode[domain.Settings](t, resp))

	resp = env.do(t, http.MethodGet, "/settings", "")
	assert.Equal(t, domain.Settings{GridColumns: 1, MaxCacheSize: 100}, decode[domain.Settings](t, resp))

	resp = env.do(t, http.MethodPatch, "/settings", `{"theme":"dark"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSettingsPatchRejectsOutOfRange(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{
		`{"gridColumns":0}`,
		`{"gridColumns":3}`,
		`{"gridColumns":7}`,
		`{"maxCacheSize":-1}`,
		`{"gridColumns":1,"maxCacheSize":-1}`,
	} {
		t.Run(body, func(t *testing.T) {
			resp := env.do(t, http.MethodPatch, "/settings", body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, decode[ErrorResponse](t, resp).Error, "invalid settings")
		})
	}

	resp := env.do(t, http.MethodGet, "/settings", "")
	assert.Equal(t, domain.Settings{GridColumns: 2, MaxCacheSize: 100}, decode[domain.Settings](t, resp))
}

func TestGetSettingsReloadsFromStore(t *testing.T) {
	env := newTestEnv(t)

	// Another process saves settings behind the server's back
	other := settings.New(env.store, domain.Settings{GridColumns: 2, MaxCacheSize: 100}, nil)
	one := 1
	_, err := other.Update(domain.SettingsPatch{GridColumns: &one})
	require.NoError(t, err)

	resp := env.do(t, http.MethodGet, "/settings", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decode[domain.Settings](t, resp).GridColumns)
}

func TestCacheResolveSizeClear(t *testing.T) {
	env := newTestEnv(t)
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("0123456789"))
	}))
	defer origin.Close()

	resp := env.do(t, http.MethodGet, "/cache/resolve?url="+url.QueryEscape(origin.URL+"/a.jpg"), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resolved := decode[ResolveResponse](t, resp)
	assert.True(t, resolved.Cached)
	assert.Equal(t, env.files.Path(origin.URL+"/a.jpg"), resolved.Resolved)

	resp = env.do(t, http.MethodGet, "/cache/size", "")
	size := decode[CacheSizeResponse](t, resp)
	assert.Equal(t, int64(10), size.Bytes)
	assert.Equal(t, int64(100), size.MaxBytes)

	resp = env.do(t, http.MethodDelete, "/cache", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/cache/size", "")
	assert.Equal(t, int64(0), decode[CacheSizeResponse](t, resp).Bytes)
}

func TestCacheResolveMissingURL(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/cache/resolve", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFeedPull(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/feed/pull?n=3", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	pulled := decode[PullResponse](t, resp)
	assert.Len(t, pulled.Fetched, 3)
	assert.Empty(t, pulled.Error)

	resp = env.do(t, http.MethodPost, "/feed/pull?n=4", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/feed", "")
	window := decode[[]domain.ImageRecord](t, resp)
	require.Len(t, window, 5, "window is capped")
	assert.Equal(t, 3, window[0].ID)
}

func TestFeedPullErrors(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/feed/pull?n=zero", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	env.images.mu.Lock()
	env.images.err = domain.ErrServerOffline
	env.images.mu.Unlock()
	resp = env.do(t, http.MethodPost, "/feed/pull", "")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, decode[ErrorResponse](t, resp).Error, "unreachable")
}
