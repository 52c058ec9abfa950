// Package service holds the orchestration between remote sources and the
// local caches.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/mmcdole/akiba/internal/cache"
	"github.com/mmcdole/akiba/internal/domain"
)

const (
	defaultPullSize = 10

	// Pull gives up after n*maxAttemptsFactor source calls
	maxAttemptsFactor = 3
)

// FeedService fills the feed window from the random-image source.
type FeedService struct {
	images  domain.ImageRepository
	cache   *cache.Cache
	feedCap int
	tagsTTL time.Duration
	logger  *slog.Logger
}

// NewFeedService creates a feed service. feedCap <= 0 uses the cache default.
func NewFeedService(images domain.ImageRepository, c *cache.Cache, feedCap int, tagsTTL time.Duration, logger *slog.Logger) *FeedService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedService{
		images:  images,
		cache:   c,
		feedCap: feedCap,
		tagsTTL: tagsTTL,
		logger:  logger,
	}
}

// PullResult summarizes one Pull.
type PullResult struct {
	Fetched []domain.ImageRecord // Unique images returned by the source
	Window  []domain.ImageRecord // Feed window after the merge
}

// Pull fetches n random images (default 10), drops duplicates within the
// batch, merges them into the feed window and refreshes the tag cache.
// When some fetches fail, the images that did arrive are still stored and
// the first error is returned alongside them.
func (s *FeedService) Pull(ctx context.Context, n int) (*PullResult, error) {
	if n <= 0 {
		n = defaultPullSize
	}

	var (
		fetched  []domain.ImageRecord
		seen     = make(map[int]struct{}, n)
		firstErr error
	)
	for attempt := 0; len(fetched) < n && attempt < n*maxAttemptsFactor; attempt++ {
		img, err := s.images.Random(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, domain.ErrServerOffline) {
				firstErr = err
				break
			}
			if firstErr == nil {
				firstErr = err
			}
			s.logger.Warn("random image fetch failed", "attempt", attempt, "error", err)
			continue
		}
		if _, dup := seen[img.ID]; dup {
			continue
		}
		seen[img.ID] = struct{}{}
		fetched = append(fetched, *img)
	}

	if len(fetched) == 0 {
		if firstErr == nil {
			firstErr = errors.New("source returned no images")
		}
		return nil, fmt.Errorf("failed to pull feed: %w", firstErr)
	}

	window, err := s.cache.AppendFeedPage(fetched, s.feedCap)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SaveTags(CollectTags(window)); err != nil {
		s.logger.Error("failed to refresh tag cache", "error", err)
	}

	s.logger.Info("feed pulled", "fetched", len(fetched), "window", len(window))
	return &PullResult{Fetched: fetched, Window: window}, firstErr
}

// Window returns the stored feed window.
func (s *FeedService) Window() ([]domain.ImageRecord, error) {
	return s.cache.Feed()
}

// Tags returns the cached tag list, rebuilding it from the feed window when
// it is older than the configured TTL.
func (s *FeedService) Tags(ctx context.Context) ([]string, error) {
	tags, fresh, err := s.cache.Tags(s.tagsTTL)
	if err != nil {
		return nil, err
	}
	if fresh {
		return tags, nil
	}

	window, err := s.cache.Feed()
	if err != nil {
		return nil, err
	}
	tags = CollectTags(window)
	if err := s.cache.SaveTags(tags); err != nil {
		s.logger.Error("failed to refresh tag cache", "error", err)
	}
	return tags, nil
}

// CollectTags returns the distinct tags of records, most frequent first.
func CollectTags(records []domain.ImageRecord) []string {
	counts := make(map[string]int)
	for _, r := range records {
		for _, t := range r.Tags {
			if t != "" {
				counts[t]++
			}
		}
	}

	tags := make([]string, 0, len(counts))
	for t := range counts {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i]] != counts[tags[j]] {
			return counts[tags[i]] > counts[tags[j]]
		}
		return tags[i] < tags[j]
	})
	return tags
}
