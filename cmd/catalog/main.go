package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"StreamBox/internal/catalog"
	"StreamBox/internal/config"
	"StreamBox/pkg/kit"
)

const loadTimeout = 30 * time.Second

func main() {
	service := "catalog"

	cfg, err := config.Load(config.Defaults(4000))
	if err != nil {
		kit.NewLogger(service, "info").Fatal("load config failed", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.Log.Level)
	defer func() { _ = log.Sync() }()

	c, err := loadCatalog(cfg, log)
	if err != nil {
		log.Fatal("catalog load failed", zap.Error(err))
	}
	log.Info("catalog loaded",
		zap.String("source", c.Source()),
		zap.Int("categories", len(c.Categories())),
		zap.Int("videos", c.Len()),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	h := catalog.NewHandler(&catalog.Server{Catalog: c, Log: log}, catalog.HTTPDeps{
		Log:             log,
		Service:         service,
		Registry:        reg,
		CORSOrigins:     cfg.CORS.Origins,
		RateLimit:       cfg.RateLimit.Requests,
		RateLimitWindow: cfg.RateLimit.Window,
		MetricsEnabled:  cfg.Metrics.Enabled,
		MetricsToken:    cfg.Metrics.Token,
	})

	if err := kit.RunHTTPServer(cfg.Addr(), h, log, cfg.Server.ShutdownTimeout); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

// loadCatalog picks the source: database, then data file, then the embedded
// dataset. The database connection is closed once the snapshot is taken.
func loadCatalog(cfg config.Config, log *zap.Logger) (*catalog.Catalog, error) {
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	switch {
	case cfg.Database.URL != "":
		db, err := catalog.OpenPostgres(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Warn("close database", zap.Error(err))
			}
		}()
		return catalog.Load(ctx, catalog.NewPostgresSource(db))
	case cfg.Data.Path != "":
		return catalog.Load(ctx, catalog.FileSource{Path: cfg.Data.Path})
	default:
		return catalog.Load(ctx, catalog.EmbeddedSource{})
	}
}
