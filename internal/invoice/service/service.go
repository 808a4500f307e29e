// Package service orchestrates an invoice scan: retrieve the document,
// extract its text and screen it against the blacklist.
package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"invoiceguard/internal/iban"
	"invoiceguard/internal/invoice/cache"
	"invoiceguard/internal/invoice/metrics"
)

const tracerName = "invoiceguard/internal/invoice/service"

// Fetcher retrieves raw document bytes.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// TextExtractor turns document bytes into text.
type TextExtractor interface {
	Extract(data []byte) (string, error)
}

// Screener matches text against the blacklist.
type Screener interface {
	Scan(text string) (iban.Set, error)
}

// Service scans invoices for blacklisted IBANs.
type Service struct {
	fetcher   Fetcher
	extractor TextExtractor
	screener  Screener
	cache     cache.TextCache
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithTextCache reuses extracted text across scans of the same location.
func WithTextCache(c cache.TextCache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithMetrics records scan metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTracer overrides the global tracer.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// New creates an invoice scanning Service.
func New(fetcher Fetcher, extractor TextExtractor, screener Screener, opts ...Option) *Service {
	s := &Service{
		fetcher:   fetcher,
		extractor: extractor,
		screener:  screener,
		logger:    slog.Default(),
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// ScanInvoice returns the blacklisted IBANs present in the document at
// location. Retrieval, extraction and readiness errors are returned
// unchanged; an empty set means the invoice is clean.
func (s *Service) ScanInvoice(ctx context.Context, location string) (iban.Set, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "invoice.ScanInvoice",
		trace.WithAttributes(attribute.String("invoice.location", location)))
	defer span.End()

	text, err := s.documentText(ctx, location)
	if err != nil {
		return nil, s.fail(ctx, span, start, location, err)
	}

	found, err := s.screener.Scan(text)
	if err != nil {
		return nil, s.fail(ctx, span, start, location, err)
	}

	outcome := metrics.OutcomeClean
	if found.Len() > 0 {
		outcome = metrics.OutcomeBlacklisted
	}
	s.metrics.ObserveScan(start, outcome, found.Len())
	span.SetAttributes(attribute.Int("invoice.blacklisted_count", found.Len()))

	s.logger.InfoContext(ctx, "invoice scanned",
		"location", location,
		"blacklisted_count", found.Len(),
		"duration", time.Since(start),
	)
	return found, nil
}

func (s *Service) documentText(ctx context.Context, location string) (string, error) {
	key := cache.Key(location)
	if s.cache != nil {
		text, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.WarnContext(ctx, "text cache lookup failed",
				"location", location,
				"error", err.Error(),
			)
		} else {
			s.metrics.IncrementCacheLookup(ok)
			if ok {
				return text, nil
			}
		}
	}

	fetchStart := time.Now()
	data, err := s.fetcher.Fetch(ctx, location)
	s.metrics.ObserveFetch(fetchStart)
	if err != nil {
		return "", err
	}

	extractStart := time.Now()
	text, err := s.extractor.Extract(data)
	s.metrics.ObserveExtract(extractStart)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, text); err != nil {
			s.logger.WarnContext(ctx, "text cache store failed",
				"location", location,
				"error", err.Error(),
			)
		}
	}
	return text, nil
}

func (s *Service) fail(ctx context.Context, span trace.Span, start time.Time, location string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.metrics.ObserveScan(start, metrics.OutcomeFailed, 0)
	s.logger.WarnContext(ctx, "invoice scan failed",
		"location", location,
		"error", err.Error(),
		"duration", time.Since(start),
	)
	return err
}
