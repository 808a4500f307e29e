// Package handler exposes invoice scanning over HTTP.
package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"invoiceguard/internal/iban"
	"invoiceguard/internal/platform/middleware"
	dErrors "invoiceguard/pkg/domain-errors"
	"invoiceguard/pkg/platform/httputil"
)

const (
	// ScanPath is the scan endpoint.
	ScanPath = "/api/invoices/scan"

	urlParam = "url"
)

// Service scans the invoice at location.
type Service interface {
	ScanInvoice(ctx context.Context, location string) (iban.Set, error)
}

// Handler serves the invoice scan endpoint.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New creates an invoice Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register registers the invoice routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post(ScanPath, h.handleScan)
}

func (h *Handler) handleScan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	location := strings.TrimSpace(r.FormValue(urlParam))
	if location == "" {
		h.logger.WarnContext(ctx, "scan request without url",
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest,
			fmt.Sprintf("Required request parameter '%s' is missing", urlParam)))
		return
	}

	found, err := h.service.ScanInvoice(ctx, location)
	if err != nil {
		h.logger.ErrorContext(ctx, "invoice scan failed",
			"request_id", requestID,
			"location", location,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteResponse(w, httputil.Response{
		Message:          ScanMessage(found.Len()),
		BlacklistedIBANs: found.Sorted(),
		Status:           http.StatusOK,
	})
}

// ScanMessage describes a scan that found n blacklisted IBANs.
func ScanMessage(n int) string {
	switch n {
	case 0:
		return "No blacklisted IBANs found."
	case 1:
		return "There is 1 blacklisted IBAN found in the invoice."
	default:
		return fmt.Sprintf("There are %d blacklisted IBANs found in the invoice.", n)
	}
}
