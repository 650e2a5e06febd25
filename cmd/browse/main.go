package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"StreamBox/internal/browse"
	"StreamBox/internal/config"
	"StreamBox/pkg/kit"
)

func main() {
	service := "browse"

	cfg, err := config.Load(config.Defaults(8080))
	if err != nil {
		kit.NewLogger(service, "info").Fatal("load config failed", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.Log.Level)
	defer func() { _ = log.Sync() }()

	client := browse.NewClient(cfg.Catalog.URL, cfg.Catalog.Timeout, log)
	defer client.Close()

	s := &browse.Server{
		Browser: browse.NewBrowser(client, browse.NewHomeCache(), log),
		Log:     log,
	}

	reg := prometheus.NewRegistry()
	h, err := browse.NewHandler(s,
		browse.Deps{CatalogURL: cfg.Catalog.URL, Pinger: client},
		browse.HTTPDeps{
			Log:             log,
			Service:         service,
			Registry:        reg,
			CORSOrigins:     cfg.CORS.Origins,
			RateLimit:       cfg.RateLimit.Requests,
			RateLimitWindow: cfg.RateLimit.Window,
			MetricsEnabled:  cfg.Metrics.Enabled,
			MetricsToken:    cfg.Metrics.Token,
		},
	)
	if err != nil {
		log.Fatal("init browse handler failed", zap.Error(err))
	}

	log.Info("using catalog", zap.String("url", cfg.Catalog.URL))
	if err := kit.RunHTTPServer(cfg.Addr(), h, log, cfg.Server.ShutdownTimeout); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}
