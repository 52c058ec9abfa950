package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/mmcdole/akiba/internal/cache"
	"github.com/mmcdole/akiba/internal/config"
	"github.com/mmcdole/akiba/internal/domain"
	"github.com/mmcdole/akiba/internal/favorites"
	"github.com/mmcdole/akiba/internal/filecache"
	"github.com/mmcdole/akiba/internal/log"
	"github.com/mmcdole/akiba/internal/service"
	"github.com/mmcdole/akiba/internal/settings"
	"github.com/mmcdole/akiba/internal/source"
	"github.com/mmcdole/akiba/internal/source/jikan"
	"github.com/mmcdole/akiba/internal/source/kitsu"
	"github.com/mmcdole/akiba/internal/source/picre"
	"github.com/mmcdole/akiba/internal/store"
	"github.com/mmcdole/akiba/internal/viewer"
)

// app bundles the long-lived collaborators shared by every command
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer

	store    domain.Store
	cache    *cache.Cache
	ledger   *favorites.Ledger
	settings *settings.Store
	files    *filecache.Manager
}

func newApp(cfg *config.Config) (*app, error) {
	logger, closer, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)
	logger.Info("starting akiba", "version", Version)

	s, err := store.Open(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	files, err := filecache.New(cfg.Cache.Dir, nil, logger)
	if err != nil {
		s.Close()
		return nil, err
	}

	c := cache.New(s, logger)
	a := &app{
		cfg:       cfg,
		logger:    logger,
		logCloser: closer,
		store:     s,
		cache:     c,
		ledger:    favorites.New(s, c, logger),
		settings:  settings.New(s, cfg.DefaultSettings(), logger),
		files:     files,
	}

	if _, _, err := a.ledger.Load(); err != nil {
		a.close()
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}
	if _, err := a.settings.Load(); err != nil {
		a.close()
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return a, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error("failed to close store", "error", err)
	}
	if a.logCloser != nil {
		a.logCloser.Close()
	}
}

func (a *app) sourceOptions(baseURL string) source.Options {
	return source.Options{
		BaseURL:           baseURL,
		Timeout:           a.cfg.Sources.Timeout,
		RequestsPerSecond: a.cfg.Sources.RequestsPerSecond,
	}
}

func (a *app) catalog() *service.CatalogService {
	titles := jikan.NewClient(a.sourceOptions(a.cfg.Sources.JikanURL), a.logger)
	manga := kitsu.NewClient(a.sourceOptions(a.cfg.Sources.KitsuURL), a.logger)
	return service.NewCatalogService(titles, manga, a.logger)
}

func (a *app) images() *picre.Client {
	return picre.NewClient(a.sourceOptions(a.cfg.Sources.PicreURL), a.logger)
}

func (a *app) feed() *service.FeedService {
	return service.NewFeedService(a.images(), a.cache, a.cfg.Cache.FeedCap, a.cfg.Cache.TagsTTL, a.logger)
}

func (a *app) viewer() *viewer.Launcher {
	return viewer.NewLauncher(a.cfg.Viewer.Command, a.cfg.Viewer.Args, a.logger)
}
