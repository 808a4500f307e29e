package httptransport_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoiceguard/internal/blacklist"
	"invoiceguard/internal/invoice/cache"
	"invoiceguard/internal/invoice/fetch"
	invoicehandler "invoiceguard/internal/invoice/handler"
	invoicemetrics "invoiceguard/internal/invoice/metrics"
	"invoiceguard/internal/invoice/pdftext"
	invoiceservice "invoiceguard/internal/invoice/service"
	"invoiceguard/internal/platform/metrics"
	"invoiceguard/internal/screening"
	httptransport "invoiceguard/internal/transport/http"
	"invoiceguard/pkg/testutil"
)

var resourceDir = filepath.Join("..", "..", "..", "resources")

func newScanRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()

	store, err := blacklist.Load(filepath.Join(resourceDir, "blacklisted_ibans.txt"))
	require.NoError(t, err)
	screener, err := screening.NewReady(store)
	require.NoError(t, err)

	svc := invoiceservice.New(
		fetch.New(fetch.WithResourceDir(resourceDir)),
		pdftext.New(),
		screener,
		invoiceservice.WithTextCache(cache.NewMemory(0)),
		invoiceservice.WithMetrics(invoicemetrics.New(reg)),
		invoiceservice.WithLogger(logger),
	)
	return httptransport.NewRouter(httptransport.Config{
		Logger:    logger,
		Metrics:   metrics.New(reg),
		Readiness: screener,
		Modules:   []httptransport.Module{invoicehandler.New(svc, logger)},
	})
}

func scanRequest(t *testing.T, location string) *http.Request {
	return testutil.NewFormRequest(t, http.MethodPost, invoicehandler.ScanPath, url.Values{"url": {location}})
}

func TestScanFlow(t *testing.T) {
	testutil.Given(t, "the router wired with the bundled blacklist", func(t *testing.T) {
		router := newScanRouter(t)

		testutil.When(t, "scanning an invoice that pays a blacklisted IBAN", func(t *testing.T) {
			rr := testutil.DoRequest(router, scanRequest(t, "classpath:example_invoice.pdf"))

			testutil.Then(t, "the IBAN is reported", func(t *testing.T) {
				resp := testutil.AssertEnvelope(t, rr, http.StatusOK, "There is 1 blacklisted IBAN found in the invoice.")
				assert.Equal(t, []string{"DE89370400440532013000"}, resp.BlacklistedIBANs)
			})
		})

		testutil.When(t, "scanning an invoice with only clean IBANs", func(t *testing.T) {
			rr := testutil.DoRequest(router, scanRequest(t, "classpath:clean_invoice.pdf"))

			testutil.Then(t, "nothing is reported", func(t *testing.T) {
				resp := testutil.AssertEnvelope(t, rr, http.StatusOK, "No blacklisted IBANs found.")
				assert.Empty(t, resp.BlacklistedIBANs)
			})
		})

		testutil.When(t, "scanning an invoice without text", func(t *testing.T) {
			rr := testutil.DoRequest(router, scanRequest(t, "classpath:empty_invoice.pdf"))

			testutil.Then(t, "nothing is reported", func(t *testing.T) {
				testutil.AssertEnvelope(t, rr, http.StatusOK, "No blacklisted IBANs found.")
			})
		})

		testutil.When(t, "scanning a bundled file that does not exist", func(t *testing.T) {
			rr := testutil.DoRequest(router, scanRequest(t, "classpath:invalid_invoice.pdf"))

			testutil.Then(t, "the retrieval failure is returned", func(t *testing.T) {
				resp := testutil.AssertEnvelope(t, rr, http.StatusInternalServerError,
					"File not found in classpath: invalid_invoice.pdf")
				assert.Nil(t, resp.BlacklistedIBANs)
			})
		})

		testutil.When(t, "scanning a file that is not a PDF", func(t *testing.T) {
			rr := testutil.DoRequest(router, scanRequest(t, "classpath:blacklisted_ibans.txt"))

			testutil.Then(t, "the extraction failure is returned", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusInternalServerError)
			})
		})
	})
}
