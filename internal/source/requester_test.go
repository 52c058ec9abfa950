package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mmcdole/akiba/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRequester(srv *httptest.Server) *Requester {
	return NewRequester("test", Options{
		BaseURL:    srv.URL + "/",
		RetryDelay: time.Millisecond,
	}, nil)
}

func TestGetSendsQueryAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/top/anime", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var out struct {
		OK bool `json:"ok"`
	}
	err := newTestRequester(srv).GetJSON(context.Background(), "/top/anime", url.Values{"page": {"2"}}, &out)
	require.NoError(t, err)
	assert.True(t, out.OK)
}

func TestGetRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := newTestRequester(srv).Get(context.Background(), "/x", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetRateLimitedGivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestRequester(srv).Get(context.Background(), "/x", nil)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Equal(t, int32(maxRetries+1), calls.Load())
}

func TestGetNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := newTestRequester(srv).Get(context.Background(), "/anime/0", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetBadRequestNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestRequester(srv).Get(context.Background(), "/x", nil)
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetOffline(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	r := newTestRequester(srv)
	srv.Close()

	_, err := r.Get(context.Background(), "/x", nil)
	assert.ErrorIs(t, err, domain.ErrServerOffline)
}

func TestGetCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestRequester(srv).Get(ctx, "/x", nil)
	assert.ErrorIs(t, err, context.Canceled)
}
