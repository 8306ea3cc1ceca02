package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/csheth/cardstudio/internal/api"
	"github.com/csheth/cardstudio/internal/config"
	"github.com/csheth/cardstudio/internal/export"
	"github.com/csheth/cardstudio/internal/imagecache"
	"github.com/csheth/cardstudio/internal/logging"
	"github.com/csheth/cardstudio/internal/query"
	"github.com/csheth/cardstudio/internal/render"
)

// overrides are command line values that take precedence over the loaded
// configuration. Empty fields leave the configuration alone.
type overrides struct {
	rangeValue string
	prefix     string
	outDir     string
	fontPath   string
	logPath    string
}

func (o overrides) apply(cfg *config.Config) error {
	if o.rangeValue != "" {
		if _, err := api.ParseRange(o.rangeValue); err != nil {
			return err
		}
		cfg.Range = o.rangeValue
	}
	if o.prefix != "" {
		cfg.FilePrefix = o.prefix
	}
	if o.outDir != "" {
		cfg.OutputDir = o.outDir
	}
	if o.fontPath != "" {
		cfg.FontPath = o.fontPath
	}
	return nil
}

func loadConfig(o overrides) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if err := o.apply(&cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func openLogger(o overrides) (*zap.Logger, error) {
	path := strings.TrimSpace(o.logPath)
	if path == "" {
		path = filepath.Join(config.StateDir(), "cardstudio.log")
	}
	return logging.New(logging.Options{Path: path})
}

// app holds the services shared by the TUI and the headless commands.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	client   *api.Client
	query    *query.Cache
	targets  *render.Targets
	pipeline *export.Pipeline
	now      func() time.Time
}

func newApp(cfg config.Config, logger *zap.Logger) (*app, error) {
	rng, err := cfg.ParsedRange()
	if err != nil {
		return nil, err
	}
	client := api.New(api.Config{
		BaseURL: cfg.APIURL,
		APIKey:  cfg.APIKey,
		Logger:  logging.Named(logger, "api"),
	})
	images, err := imagecache.New(imagecache.Options{
		Dir:    cfg.CacheDir,
		Logger: logging.Named(logger, "images"),
	})
	if err != nil {
		return nil, fmt.Errorf("open image cache: %w", err)
	}
	rasterizer, err := render.NewRasterizer(render.Options{
		FontPath: cfg.FontPath,
		Images:   images,
		Logger:   logging.Named(logger, "render"),
	})
	if err != nil {
		return nil, fmt.Errorf("load fonts: %w", err)
	}
	return &app{
		cfg:    cfg,
		logger: logger,
		client: client,
		now:    time.Now,
		query: query.New(client, query.Options{
			StaleTime: cfg.StaleTime(),
			Range:     rng,
			Logger:    logging.Named(logger, "query"),
		}),
		targets: render.NewTargets(),
		pipeline: export.New(rasterizer, export.FileSaver{Dir: cfg.OutputDir}, export.Options{
			Logger: logging.Named(logger, "export"),
			Now:    time.Now,
		}),
	}, nil
}
