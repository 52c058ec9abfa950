// Package picre is the client for the random-image service.
package picre

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/mmcdole/akiba/internal/domain"
	"github.com/mmcdole/akiba/internal/source"
)

// DefaultBaseURL is the public API root
const DefaultBaseURL = "https://pic.re"

// Image is the /image.json payload
type Image struct {
	ID          int      `json:"_id"`
	FileURL     string   `json:"file_url"`
	FileSize    int      `json:"file_size"`
	Tags        []string `json:"tags"`
	MD5         string   `json:"md5"`
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	Source      string   `json:"source"`
	Author      string   `json:"author"`
	HasChildren bool     `json:"has_children"`
}

// Record converts the payload into the cached record shape
func (i Image) Record() domain.ImageRecord {
	return domain.ImageRecord{
		ID:          i.ID,
		FileURL:     i.FileURL,
		FileSize:    i.FileSize,
		Tags:        i.Tags,
		MD5:         i.MD5,
		Width:       i.Width,
		Height:      i.Height,
		Source:      i.Source,
		Author:      i.Author,
		HasChildren: i.HasChildren,
	}
}

// Client implements domain.ImageRepository
type Client struct {
	req *source.Requester
}

var _ domain.ImageRepository = (*Client)(nil)

// NewClient creates a new random-image client
func NewClient(opts source.Options, logger *slog.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	return &Client{req: source.NewRequester("picre", opts, logger)}
}

// Random returns one random image
func (c *Client) Random(ctx context.Context) (*domain.ImageRecord, error) {
	return c.RandomTagged(ctx, nil, nil)
}

// RandomTagged returns a random image carrying every tag in include and none
// in exclude
func (c *Client) RandomTagged(ctx context.Context, include, exclude []string) (*domain.ImageRecord, error) {
	q := url.Values{}
	q.Set("compress", "true")
	if len(include) > 0 {
		q.Set("in", strings.Join(include, ","))
	}
	if len(exclude) > 0 {
		q.Set("nin", strings.Join(exclude, ","))
	}

	var img Image
	if err := c.req.GetJSON(ctx, "/image.json", q, &img); err != nil {
		return nil, err
	}
	rec := img.Record()
	return &rec, nil
}
