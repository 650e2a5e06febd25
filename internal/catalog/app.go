package catalog

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"StreamBox/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	CORSOrigins     []string
	RateLimit       int
	RateLimitWindow time.Duration

	MetricsEnabled bool
	MetricsToken   string
}

func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	r := chi.NewRouter()

	setupMiddleware(r, deps)
	setupMetrics(r, s.Catalog, deps)

	r.Mount("/", s.Routes())
	return r
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))
	r.Use(kit.CORS(deps.CORSOrigins))
	r.Use(kit.RateLimitByClientIP(deps.RateLimit, deps.RateLimitWindow))
}

func setupMetrics(r *chi.Mux, c *Catalog, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.ChiRoutePatternOrPath))
	registerCatalogMetrics(deps.Registry, c)

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func registerCatalogMetrics(reg prometheus.Registerer, c *Catalog) {
	if c == nil {
		return
	}

	reg.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "streambox",
			Name:      "catalog_videos",
			Help:      "Videos in the loaded catalog",
		}, func() float64 { return float64(c.Len()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "streambox",
			Name:      "catalog_categories",
			Help:      "Categories in the loaded catalog",
		}, func() float64 { return float64(len(c.categories)) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "streambox",
			Name:      "catalog_loaded_timestamp_seconds",
			Help:      "Unix time the catalog snapshot was loaded",
		}, func() float64 { return float64(c.LoadedAt().Unix()) }),
	)
}
