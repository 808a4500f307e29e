package httptransport

import (
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoiceguard/internal/platform/metrics"
	"invoiceguard/internal/platform/middleware"
	"invoiceguard/pkg/platform/httputil"
	"invoiceguard/pkg/testutil"
)

type stubReadiness struct {
	ready bool
	size  int
}

func (s stubReadiness) Ready() bool        { return s.ready }
func (s stubReadiness) BlacklistSize() int { return s.size }

type stubModule struct{}

func (stubModule) Register(r chi.Router) {
	r.Post("/api/invoices/scan", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteResponse(w, httputil.Response{Message: "No blacklisted IBANs found.", BlacklistedIBANs: []string{}, Status: http.StatusOK})
	})
	r.Get("/api/panic", func(http.ResponseWriter, *http.Request) {
		panic("unexpected")
	})
}

func newTestRouter(t *testing.T, readiness Readiness) http.Handler {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewRouter(Config{
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:        metrics.New(reg),
		Readiness:      readiness,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Modules:        []Module{stubModule{}},
	})
}

func TestRouter(t *testing.T) {
	router := newTestRouter(t, stubReadiness{ready: true, size: 2})

	t.Run("module route", func(t *testing.T) {
		req := testutil.NewFormRequest(t, http.MethodPost, "/api/invoices/scan", url.Values{"url": {"classpath:example_invoice.pdf"}})
		rr := testutil.DoRequest(router, req)
		testutil.AssertEnvelope(t, rr, http.StatusOK, "No blacklisted IBANs found.")
		assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("unknown route", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/unknown"))
		testutil.AssertJSONHasKey(t, rr, "blacklistedIbans")
		testutil.AssertEnvelope(t, rr, http.StatusNotFound,
			"The requested resource was not found. Please check the URL and try again")
	})

	t.Run("wrong method names the allowed one", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/invoices/scan"))
		testutil.AssertEnvelope(t, rr, http.StatusMethodNotAllowed,
			"This request method is not allowed on this endpoint. Please send a 'POST' request")
		assert.Equal(t, http.MethodPost, rr.Header().Get("Allow"))
	})

	t.Run("panic becomes a generic 500", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/panic"))
		resp := testutil.AssertEnvelope(t, rr, http.StatusInternalServerError,
			"An error occurred while processing the request")
		assert.Nil(t, resp.BlacklistedIBANs)
	})

	t.Run("liveness", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	})

	t.Run("readiness reports blacklist size", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/readyz"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.JSONEq(t, `{"status":"ready","blacklistSize":2}`, rr.Body.String())
	})

	t.Run("metrics endpoint", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		require.Contains(t, rr.Body.String(), "invoiceguard_http_request_duration_seconds")
	})
}

func TestReadyzNotReady(t *testing.T) {
	router := newTestRouter(t, stubReadiness{})
	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/readyz"))
	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
}
