package internal

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mimahin/gmgbd/internal/assets"
	"github.com/mimahin/gmgbd/internal/catalog"
	"github.com/mimahin/gmgbd/internal/session"
	"github.com/mimahin/gmgbd/internal/siteservice"
	"github.com/mimahin/gmgbd/internal/storage"
)

var errConfigRequired = errors.New("config is required")

// components are the long-lived pieces shared by every entry point.
type components struct {
	catalog  *catalog.Catalog
	store    storage.Provider
	resolver assets.Resolver
	svc      *siteservice.Service
}

func newLogger(cfg *Config, w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
}

func buildComponents(cfg *Config, logger *slog.Logger) (*components, error) {
	cat, err := catalog.Load(cfg.Catalog.File)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	views, err := session.NewStore(cfg.Views.MaxViews)
	if err != nil {
		return nil, fmt.Errorf("init views: %w", err)
	}

	// A missing asset directory only breaks the modals, so it is not fatal.
	var store storage.Provider
	if cfg.Assets.Dir != "" {
		fs, err := storage.NewFS(cfg.Assets.Dir)
		if err != nil {
			logger.Warn("asset directory unavailable, serving page without plots",
				slog.String("dir", cfg.Assets.Dir),
				slog.String("error", err.Error()))
		} else {
			store = fs
		}
	}

	resolver := assets.NewResolver(cfg.Site.BasePath)
	return &components{
		catalog:  cat,
		store:    store,
		resolver: resolver,
		svc:      siteservice.NewService(cat, views, resolver, store),
	}, nil
}
