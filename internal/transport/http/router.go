// Package httptransport assembles the HTTP router: middleware chain, module
// routes, health probes and the global 404/405 responses.
package httptransport

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"invoiceguard/internal/platform/metrics"
	"invoiceguard/internal/platform/middleware"
	"invoiceguard/pkg/platform/httputil"
)

const (
	notFoundMessage         = "The requested resource was not found. Please check the URL and try again"
	methodNotAllowedMessage = "This request method is not allowed on this endpoint. Please send a '%s' request"
)

// probeMethods is the order in which an endpoint's allowed method is looked up.
var probeMethods = []string{
	http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete,
}

// Module registers its routes on the router.
type Module interface {
	Register(r chi.Router)
}

// Readiness reports whether the blacklist is loaded.
type Readiness interface {
	Ready() bool
	BlacklistSize() int
}

// Config collects what the router needs.
type Config struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Readiness      Readiness
	MetricsHandler http.Handler
	RequestTimeout time.Duration
	Modules        []Module
}

// NewRouter wires the middleware chain, every module and the operational
// endpoints.
func NewRouter(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.LatencyMiddleware(cfg.Metrics))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteMessage(w, http.StatusNotFound, notFoundMessage)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		allowed := allowedMethod(req)
		w.Header().Set("Allow", allowed)
		httputil.WriteMessage(w, http.StatusMethodNotAllowed, fmt.Sprintf(methodNotAllowedMessage, allowed))
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", readyz(cfg.Readiness))
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	for _, m := range cfg.Modules {
		if m != nil {
			m.Register(r)
		}
	}
	return r
}

func readyz(readiness Readiness) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if readiness == nil || !readiness.Ready() {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "not_ready"})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"status":        "ready",
			"blacklistSize": readiness.BlacklistSize(),
		})
	}
}

// allowedMethod returns the first method the matched path accepts, GET when
// none can be found.
func allowedMethod(req *http.Request) string {
	rctx := chi.RouteContext(req.Context())
	if rctx == nil || rctx.Routes == nil {
		return http.MethodGet
	}
	path := rctx.RoutePath
	if path == "" {
		path = req.URL.RawPath
		if path == "" {
			path = req.URL.Path
		}
	}
	for _, method := range probeMethods {
		if strings.EqualFold(method, req.Method) {
			continue
		}
		if rctx.Routes.Match(chi.NewRouteContext(), method, path) {
			return method
		}
	}
	return http.MethodGet
}
