package fetch

import (
	"errors"
	"net/http"
	"time"
)

const (
	defaultTimeout  = 20 * time.Second
	defaultRetryMax = 2
	userAgent       = "invoiceguard/1.0"
)

// retryTransport retries replayable requests on transport errors. HTTP error
// statuses are returned as-is; the caller decides what they mean.
type retryTransport struct {
	base http.RoundTripper

	// retryMax excludes the first attempt: 2 means at most 3 attempts.
	retryMax int
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}

	max := t.retryMax
	if max < 0 {
		max = 0
	}
	if (req.Method != http.MethodGet && req.Method != http.MethodHead) || req.Body != nil {
		max = 0
	}

	var lastErr error
	for attempt := 0; attempt <= max; attempt++ {
		r := req.Clone(req.Context())
		if r.Header.Get("User-Agent") == "" {
			r.Header.Set("User-Agent", userAgent)
		}
		resp, err := t.base.RoundTrip(r)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if req.Context().Err() != nil {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

// NewHTTPClient builds the client used for invoice downloads.
func NewHTTPClient(timeout time.Duration, retryMax int) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if retryMax < 0 {
		retryMax = defaultRetryMax
	}
	base := http.DefaultTransport.(*http.Transport).Clone()
	base.TLSHandshakeTimeout = 10 * time.Second
	base.ResponseHeaderTimeout = 15 * time.Second
	return &http.Client{
		Transport: &retryTransport{base: base, retryMax: retryMax},
		Timeout:   timeout,
	}
}
