// Package kitsu is the client for the JSON:API manga database.
package kitsu

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/mmcdole/akiba/internal/domain"
	"github.com/mmcdole/akiba/internal/source"
)

const (
	// DefaultBaseURL is the public API root
	DefaultBaseURL = "https://kitsu.io/api/edge"

	// maxPageLimit is the largest page[limit] the API accepts
	maxPageLimit = 20

	mediaType = "application/vnd.api+json"
)

// Client implements domain.MangaRepository
type Client struct {
	req    *source.Requester
	logger *slog.Logger
}

var _ domain.MangaRepository = (*Client)(nil)

// NewClient creates a new manga database client
func NewClient(opts source.Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	opts.Accept = mediaType
	return &Client{
		req:    source.NewRequester("kitsu", opts, logger),
		logger: logger,
	}
}

// ListManga returns one page of manga matching q and the total match count
func (c *Client) ListManga(ctx context.Context, q domain.MangaQuery) ([]domain.Manga, int, error) {
	var doc listDocument[MangaAttributes]
	if err := c.req.GetJSON(ctx, "/manga", listQuery(q), &doc); err != nil {
		return nil, 0, err
	}

	out := make([]domain.Manga, 0, len(doc.Data))
	for _, r := range doc.Data {
		out = append(out, ToManga(r))
	}
	return out, doc.Meta.Count, nil
}

func listQuery(q domain.MangaQuery) url.Values {
	v := url.Values{}
	limit := q.Limit
	if limit <= 0 || limit > maxPageLimit {
		limit = maxPageLimit
	}
	v.Set("page[limit]", strconv.Itoa(limit))
	if q.Offset > 0 {
		v.Set("page[offset]", strconv.Itoa(q.Offset))
	}
	if q.Text != "" {
		v.Set("filter[text]", q.Text)
	}
	if len(q.Categories) > 0 {
		v.Set("filter[categories]", strings.Join(q.Categories, ","))
	}
	if q.Status != "" {
		v.Set("filter[status]", q.Status)
	}
	// Text search is ranked by relevance; the API rejects sort with filter[text]
	if q.Sort != "" && q.Text == "" {
		v.Set("sort", q.Sort)
	}
	return v
}

// GetManga returns a single manga
func (c *Client) GetManga(ctx context.Context, id string) (*domain.Manga, error) {
	var doc singleDocument[MangaAttributes]
	if err := c.req.GetJSON(ctx, "/manga/"+url.PathEscape(id), nil, &doc); err != nil {
		return nil, err
	}
	m := ToManga(doc.Data)
	return &m, nil
}

// Categories returns the categories of a manga
func (c *Client) Categories(ctx context.Context, mangaID string) ([]domain.Category, error) {
	q := url.Values{}
	q.Set("page[limit]", strconv.Itoa(maxPageLimit))

	var doc listDocument[CategoryAttributes]
	path := fmt.Sprintf("/manga/%s/categories", url.PathEscape(mangaID))
	if err := c.req.GetJSON(ctx, path, q, &doc); err != nil {
		return nil, err
	}

	out := make([]domain.Category, 0, len(doc.Data))
	for _, r := range doc.Data {
		out = append(out, ToCategory(r))
	}
	return out, nil
}

// Chapters returns every chapter of a manga ordered by number
func (c *Client) Chapters(ctx context.Context, mangaID string) ([]domain.Chapter, error) {
	return fetchAll(ctx, func(ctx context.Context, offset, limit int) ([]domain.Chapter, int, error) {
		q := url.Values{}
		q.Set("filter[mangaId]", mangaID)
		q.Set("page[limit]", strconv.Itoa(limit))
		q.Set("page[offset]", strconv.Itoa(offset))
		q.Set("sort", "number")

		var doc listDocument[ChapterAttributes]
		if err := c.req.GetJSON(ctx, "/chapters", q, &doc); err != nil {
			return nil, 0, err
		}
		chapters := make([]domain.Chapter, 0, len(doc.Data))
		for _, r := range doc.Data {
			chapters = append(chapters, ToChapter(r, mangaID))
		}
		c.logger.Debug("fetched chapters", "manga", mangaID, "offset", offset, "total", doc.Meta.Count)
		return chapters, doc.Meta.Count, nil
	}, maxPageLimit)
}

// fetchAll pages through an offset-paginated listing until total is reached
func fetchAll[T any](
	ctx context.Context,
	fetch func(ctx context.Context, offset, limit int) ([]T, int, error),
	chunkSize int,
) ([]T, error) {
	var all []T
	offset := 0

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		items, total, err := fetch(ctx, offset, chunkSize)
		if err != nil {
			return nil, err
		}

		all = append(all, items...)

		if len(all) >= total || len(items) == 0 {
			break
		}
		offset += chunkSize
	}

	return all, nil
}
