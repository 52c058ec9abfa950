package service

import (
	"context"
	"log/slog"

	"github.com/mmcdole/akiba/internal/domain"
	"github.com/mmcdole/akiba/internal/search"
	"golang.org/x/sync/errgroup"
)

// CatalogService browses the remote title and manga databases.
type CatalogService struct {
	titles domain.TitleRepository
	manga  domain.MangaRepository
	logger *slog.Logger
}

// NewCatalogService creates a catalog service. Either repository may be nil
// when the caller only needs the other.
func NewCatalogService(titles domain.TitleRepository, manga domain.MangaRepository, logger *slog.Logger) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{titles: titles, manga: manga, logger: logger}
}

func titleKey(t domain.Title) int         { return t.MalID }
func characterKey(c domain.Character) int { return c.MalID }

// TopPager pages through the top ranked anime or manga.
func (s *CatalogService) TopPager(kind string) *Pager[domain.Title] {
	return NewPager(func(ctx context.Context, page int) ([]domain.Title, domain.Pagination, error) {
		return s.titles.Top(ctx, kind, page)
	}, titleKey)
}

// TopCharactersPager pages through the most favorited characters.
func (s *CatalogService) TopCharactersPager() *Pager[domain.Character] {
	return NewPager(s.titles.TopCharacters, characterKey)
}

// SeasonPager pages through a broadcast season; year 0 means the current one.
func (s *CatalogService) SeasonPager(year int, season string) *Pager[domain.Title] {
	if year == 0 {
		return NewPager(s.titles.SeasonNow, titleKey)
	}
	return NewPager(func(ctx context.Context, page int) ([]domain.Title, domain.Pagination, error) {
		return s.titles.Season(ctx, year, season, page)
	}, titleKey)
}

// Title returns the full entry of an anime or manga.
func (s *CatalogService) Title(ctx context.Context, kind string, id int) (*domain.Title, error) {
	return s.titles.Full(ctx, kind, id)
}

// Character returns the full entry of a character.
func (s *CatalogService) Character(ctx context.Context, id int) (*domain.Character, error) {
	return s.titles.CharacterFull(ctx, id)
}

// ByStatus lists entries of kind with the given airing/publishing status,
// most popular first.
func (s *CatalogService) ByStatus(ctx context.Context, kind, status string, limit int) ([]domain.Title, error) {
	return s.titles.ByStatus(ctx, kind, status, limit)
}

// Search collects up to pages pages of results and ranks them by title match.
// When a later page fails, the pages that did arrive are returned together
// with the error.
func (s *CatalogService) Search(ctx context.Context, kind, query string, pages int) ([]domain.Title, error) {
	pager := NewPager(func(ctx context.Context, page int) ([]domain.Title, domain.Pagination, error) {
		return s.titles.Search(ctx, kind, query, page, 0)
	}, titleKey)

	items, err := pager.Collect(ctx, pages)
	if err != nil {
		if len(items) == 0 {
			return nil, err
		}
		s.logger.Warn("title search incomplete", "kind", kind, "query", query, "results", len(items), "error", err)
	}
	s.logger.Debug("title search", "kind", kind, "query", query, "results", len(items))
	return search.Rank(query, items, domain.Title.DisplayTitle), err
}

// SearchCharacters collects up to pages pages of characters ranked by name.
// Partial results come back with the error, as in Search.
func (s *CatalogService) SearchCharacters(ctx context.Context, query string, pages int) ([]domain.Character, error) {
	pager := NewPager(func(ctx context.Context, page int) ([]domain.Character, domain.Pagination, error) {
		return s.titles.SearchCharacters(ctx, query, page, 0)
	}, characterKey)

	items, err := pager.Collect(ctx, pages)
	if err != nil {
		if len(items) == 0 {
			return nil, err
		}
		s.logger.Warn("character search incomplete", "query", query, "results", len(items), "error", err)
	}
	return search.Rank(query, items, func(c domain.Character) string { return c.Name }), err
}

// SearchManga lists manga; text queries are re-ranked by title.
func (s *CatalogService) SearchManga(ctx context.Context, q domain.MangaQuery) ([]domain.Manga, int, error) {
	manga, total, err := s.manga.ListManga(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	if q.Text != "" {
		manga = search.Rank(q.Text, manga, func(m domain.Manga) string { return m.Title })
	}
	return manga, total, nil
}

// MangaDetails is a manga with its categories and chapters.
type MangaDetails struct {
	Manga      domain.Manga
	Categories []domain.Category
	Chapters   []domain.Chapter
}

// MangaDetails fetches a manga, its categories and its chapters concurrently.
func (s *CatalogService) MangaDetails(ctx context.Context, id string) (*MangaDetails, error) {
	var (
		details MangaDetails
		manga   *domain.Manga
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		manga, err = s.manga.GetManga(ctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		details.Categories, err = s.manga.Categories(ctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		details.Chapters, err = s.manga.Chapters(ctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	details.Manga = *manga
	return &details, nil
}
