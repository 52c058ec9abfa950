package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mmcdole/akiba/internal/cache"
	"github.com/mmcdole/akiba/internal/domain"
	"github.com/mmcdole/akiba/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedImages returns the scripted ids in order, then errors.
type scriptedImages struct {
	mu   sync.Mutex
	ids  []int
	errs map[int]error // call index -> error
	call int
}

func (s *scriptedImages) Random(context.Context) (*domain.ImageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.call
	s.call++
	if err := s.errs[i]; err != nil {
		return nil, err
	}
	if len(s.ids) == 0 {
		return nil, fmt.Errorf("script exhausted")
	}
	id := s.ids[0]
	s.ids = s.ids[1:]
	return &domain.ImageRecord{ID: id, Tags: []string{"common", fmt.Sprintf("t%d", id)}}, nil
}

func newFeedService(t *testing.T, src domain.ImageRepository, feedCap int) (*FeedService, *cache.Cache) {
	t.Helper()
	s, err := store.NewBoltStore("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	c := cache.New(s, nil)
	return NewFeedService(src, c, feedCap, time.Hour, nil), c
}

func recordIDs(records []domain.ImageRecord) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestPullDeduplicatesBatch(t *testing.T) {
	src := &scriptedImages{ids: []int{1, 2, 2, 3, 1, 4}}
	svc, _ := newFeedService(t, src, 100)

	res, err := svc.Pull(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, recordIDs(res.Fetched))
	assert.Equal(t, []int{1, 2, 3, 4}, recordIDs(res.Window))
}

func TestPullRespectsCap(t *testing.T) {
	var ids []int
	for i := 1; i <= 12; i++ {
		ids = append(ids, i)
	}
	src := &scriptedImages{ids: ids}
	svc, c := newFeedService(t, src, 5)

	_, err := svc.Pull(context.Background(), 6)
	require.NoError(t, err)
	_, err = svc.Pull(context.Background(), 6)
	require.NoError(t, err)

	window, err := c.Feed()
	require.NoError(t, err)
	assert.Equal(t, []int{8, 9, 10, 11, 12}, recordIDs(window))
}

func TestPullKeepsPartialResults(t *testing.T) {
	src := &scriptedImages{
		ids:  []int{1, 2},
		errs: map[int]error{1: fmt.Errorf("bad gateway")},
	}
	svc, _ := newFeedService(t, src, 100)

	res, err := svc.Pull(context.Background(), 2)
	assert.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, []int{1, 2}, recordIDs(res.Fetched))
}

func TestPullOfflineStopsEarly(t *testing.T) {
	src := &scriptedImages{errs: map[int]error{0: domain.ErrServerOffline}}
	svc, _ := newFeedService(t, src, 100)

	_, err := svc.Pull(context.Background(), 5)
	assert.ErrorIs(t, err, domain.ErrServerOffline)
	assert.Equal(t, 1, src.call)
}

func TestPullRefreshesTags(t *testing.T) {
	src := &scriptedImages{ids: []int{1, 2}}
	svc, c := newFeedService(t, src, 100)

	_, err := svc.Pull(context.Background(), 2)
	require.NoError(t, err)

	tags, fresh, err := c.Tags(time.Hour)
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Equal(t, []string{"common", "t1", "t2"}, tags)
}

func TestTagsRebuildWhenStale(t *testing.T) {
	svc, c := newFeedService(t, &scriptedImages{}, 100)

	_, err := c.AppendFeedPage([]domain.ImageRecord{
		{ID: 1, Tags: []string{"sky"}},
		{ID: 2, Tags: []string{"sky", "sea"}},
	}, 0)
	require.NoError(t, err)

	tags, err := svc.Tags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"sky", "sea"}, tags)

	_, fresh, err := c.Tags(time.Hour)
	require.NoError(t, err)
	assert.True(t, fresh)
}

func TestCollectTags(t *testing.T) {
	got := CollectTags([]domain.ImageRecord{
		{Tags: []string{"b", "a"}},
		{Tags: []string{"a", ""}},
	})
	assert.Equal(t, []string{"a", "b"}, got)
}
