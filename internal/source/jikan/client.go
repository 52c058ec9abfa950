// Package jikan is the client for the anime/manga/character title database.
package jikan

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strconv"

	"github.com/mmcdole/akiba/internal/domain"
	"github.com/mmcdole/akiba/internal/source"
)

// DefaultBaseURL is the public API root
const DefaultBaseURL = "https://api.jikan.moe/v4"

// Seasons accepted by Season
var Seasons = []string{"winter", "spring", "summer", "fall"}

// Client implements domain.TitleRepository
type Client struct {
	req    *source.Requester
	logger *slog.Logger
}

var _ domain.TitleRepository = (*Client)(nil)

// NewClient creates a new title database client
func NewClient(opts source.Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	return &Client{
		req:    source.NewRequester("jikan", opts, logger),
		logger: logger,
	}
}

func checkKind(kind string) error {
	if kind != "anime" && kind != "manga" {
		return fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}
	return nil
}

func pageQuery(page int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	return q
}

func (c *Client) titles(ctx context.Context, path, kind string, q url.Values) ([]domain.Title, domain.Pagination, error) {
	var resp listResponse[Entry]
	if err := c.req.GetJSON(ctx, path, q, &resp); err != nil {
		return nil, domain.Pagination{}, err
	}
	return MapEntries(resp.Data, kind), resp.Pagination, nil
}

func (c *Client) characters(ctx context.Context, path string, q url.Values) ([]domain.Character, domain.Pagination, error) {
	var resp listResponse[Character]
	if err := c.req.GetJSON(ctx, path, q, &resp); err != nil {
		return nil, domain.Pagination{}, err
	}
	return MapCharacters(resp.Data), resp.Pagination, nil
}

// Top returns the top ranked anime or manga
func (c *Client) Top(ctx context.Context, kind string, page int) ([]domain.Title, domain.Pagination, error) {
	if err := checkKind(kind); err != nil {
		return nil, domain.Pagination{}, err
	}
	return c.titles(ctx, "/top/"+kind, kind, pageQuery(page))
}

// TopCharacters returns the most favorited characters
func (c *Client) TopCharacters(ctx context.Context, page int) ([]domain.Character, domain.Pagination, error) {
	return c.characters(ctx, "/top/characters", pageQuery(page))
}

// Full returns a single anime or manga with all details
func (c *Client) Full(ctx context.Context, kind string, id int) (*domain.Title, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	var resp singleResponse[Entry]
	if err := c.req.GetJSON(ctx, fmt.Sprintf("/%s/%d/full", kind, id), nil, &resp); err != nil {
		return nil, err
	}
	t := mapEntry(resp.Data, kind)
	return &t, nil
}

// CharacterFull returns a single character with all details
func (c *Client) CharacterFull(ctx context.Context, id int) (*domain.Character, error) {
	var resp singleResponse[Character]
	if err := c.req.GetJSON(ctx, fmt.Sprintf("/characters/%d/full", id), nil, &resp); err != nil {
		return nil, err
	}
	ch := mapCharacter(resp.Data)
	return &ch, nil
}

// Search performs a text query over anime or manga
func (c *Client) Search(ctx context.Context, kind, query string, page, limit int) ([]domain.Title, domain.Pagination, error) {
	if err := checkKind(kind); err != nil {
		return nil, domain.Pagination{}, err
	}
	q := pageQuery(page)
	q.Set("q", query)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return c.titles(ctx, "/"+kind, kind, q)
}

// SearchCharacters performs a text query over characters
func (c *Client) SearchCharacters(ctx context.Context, query string, page, limit int) ([]domain.Character, domain.Pagination, error) {
	q := pageQuery(page)
	q.Set("q", query)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return c.characters(ctx, "/characters", q)
}

// Season returns the anime of a broadcast season
func (c *Client) Season(ctx context.Context, year int, season string, page int) ([]domain.Title, domain.Pagination, error) {
	if !slices.Contains(Seasons, season) {
		return nil, domain.Pagination{}, fmt.Errorf("invalid season %q", season)
	}
	return c.titles(ctx, fmt.Sprintf("/seasons/%d/%s", year, season), "anime", pageQuery(page))
}

// SeasonNow returns the currently airing season
func (c *Client) SeasonNow(ctx context.Context, page int) ([]domain.Title, domain.Pagination, error) {
	return c.titles(ctx, "/seasons/now", "anime", pageQuery(page))
}

// ByStatus lists popular entries with the given airing/publishing status
func (c *Client) ByStatus(ctx context.Context, kind, status string, limit int) ([]domain.Title, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("status", status)
	q.Set("order_by", "members")
	q.Set("sort", "desc")
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	titles, _, err := c.titles(ctx, "/"+kind, kind, q)
	return titles, err
}
