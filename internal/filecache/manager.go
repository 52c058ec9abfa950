// Package filecache downloads remote images into a local directory and maps
// remote URLs to local paths.
package filecache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const defaultTimeout = 60 * time.Second

// Manager is the File Cache Manager. All files live directly in dir.
type Manager struct {
	dir    string
	client *http.Client
	logger *slog.Logger
	group  singleflight.Group
}

// New creates a manager rooted at dir, creating the directory when missing.
// A nil client gets a default one.
func New(dir string, client *http.Client, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Manager{dir: dir, client: client, logger: logger}, nil
}

// Dir returns the cache directory.
func (m *Manager) Dir() string { return m.dir }

// Canonicalize adds the https scheme to scheme-less and protocol-relative URLs.
func Canonicalize(raw string) string {
	switch {
	case strings.HasPrefix(raw, "//"):
		return "https:" + raw
	case hasScheme(raw):
		return raw
	default:
		return "https://" + raw
	}
}

// hasScheme reports whether raw starts with "<scheme>://". A "://" later in
// the path or query does not count.
func hasScheme(raw string) bool {
	i := strings.Index(raw, "://")
	if i <= 0 {
		return false
	}
	for j, c := range raw[:i] {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case j > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}

// FileName derives the local file name for a URL: a short hash of the
// canonical URL followed by the last path segment.
func FileName(raw string) string {
	canonical := Canonicalize(raw)
	sum := sha256.Sum256([]byte(canonical))
	prefix := hex.EncodeToString(sum[:8])

	base := ""
	if u, err := url.Parse(canonical); err == nil {
		base = path.Base(u.Path)
	}
	if base == "" || base == "." || base == "/" {
		base = "file"
	}
	return prefix + "-" + base
}

// Path returns the local path a URL maps to, whether or not it exists.
func (m *Manager) Path(raw string) string {
	return filepath.Join(m.dir, FileName(raw))
}

// Resolve returns a local path for raw, downloading on a miss. Concurrent
// calls for the same file share one download, which is not tied to any one
// caller's context. A caller whose ctx ends first gets the remote URL while
// the download carries on for the others. On any failure the canonical
// remote URL is returned so the caller can render from the network.
func (m *Manager) Resolve(ctx context.Context, raw string) string {
	canonical := Canonicalize(raw)
	local := m.Path(raw)

	if info, err := os.Stat(local); err == nil && info.Mode().IsRegular() {
		return local
	}

	ch := m.group.DoChan(local, func() (any, error) {
		// Another caller may have finished while we waited
		if _, err := os.Stat(local); err == nil {
			return nil, nil
		}
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultTimeout)
		defer cancel()
		return nil, m.download(dctx, canonical, local)
	})

	select {
	case <-ctx.Done():
		m.logger.Warn("image download abandoned, using remote url", "url", canonical, "error", ctx.Err())
		return canonical
	case res := <-ch:
		if res.Err != nil {
			m.logger.Warn("image download failed, using remote url", "url", canonical, "error", res.Err)
			return canonical
		}
		if res.Shared {
			m.logger.Debug("joined in-flight download", "url", canonical)
		}
		return local
	}
}

func (m *Manager) download(ctx context.Context, src, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	tmp := filepath.Join(m.dir, "."+uuid.NewString()+".part")
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write image: %w", err)
	}

	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move image into cache: %w", err)
	}

	m.logger.Debug("image cached", "url", src, "bytes", n)
	return nil
}

// Size walks the cache directory and sums the size of regular files.
func (m *Manager) Size() (int64, error) {
	var total int64
	err := filepath.WalkDir(m.dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			// Files removed mid-walk are not an error
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to measure cache: %w", err)
	}
	return total, nil
}

// Clear deletes every cached file and recreates the empty directory.
func (m *Manager) Clear() error {
	if err := os.RemoveAll(m.dir); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return fmt.Errorf("failed to recreate cache directory: %w", err)
	}
	m.logger.Info("file cache cleared", "dir", m.dir)
	return nil
}
