// Package fetch retrieves invoice PDFs from HTTP(S) URLs or from the bundled
// resource directory ("classpath:" locations).
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	dErrors "invoiceguard/pkg/domain-errors"
	"invoiceguard/pkg/platform/circuit"
)

// ResourcePrefix marks a location served from the resource directory.
const ResourcePrefix = "classpath:"

// DefaultMaxBytes caps a downloaded document.
const DefaultMaxBytes int64 = 20 << 20

const (
	defaultHostFailureThreshold = 5
	defaultHostCooldown         = 30 * time.Second
)

var errHostUnavailable = errors.New("host circuit open")

// Fetcher returns raw document bytes for a location.
type Fetcher struct {
	client    *http.Client
	resources fs.FS
	maxBytes  int64

	hostFailureThreshold int
	hostCooldown         time.Duration
	mu                   sync.Mutex
	breakers             map[string]*circuit.Breaker
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the download client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithResources serves "classpath:" locations from fsys.
func WithResources(fsys fs.FS) Option {
	return func(f *Fetcher) {
		f.resources = fsys
	}
}

// WithResourceDir serves "classpath:" locations from dir.
func WithResourceDir(dir string) Option {
	return func(f *Fetcher) {
		if dir != "" {
			f.resources = os.DirFS(dir)
		}
	}
}

// WithMaxBytes caps the document size.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// WithHostBreaker stops contacting a host for cooldown after threshold
// consecutive transport errors or 5xx responses from it.
func WithHostBreaker(threshold int, cooldown time.Duration) Option {
	return func(f *Fetcher) {
		if threshold > 0 {
			f.hostFailureThreshold = threshold
		}
		if cooldown > 0 {
			f.hostCooldown = cooldown
		}
	}
}

// New builds a Fetcher.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:               NewHTTPClient(defaultTimeout, defaultRetryMax),
		maxBytes:             DefaultMaxBytes,
		hostFailureThreshold: defaultHostFailureThreshold,
		hostCooldown:         defaultHostCooldown,
		breakers:             make(map[string]*circuit.Breaker),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Fetch returns the bytes behind location. Every failure carries
// CodeRetrieval and a message that can be shown to the caller.
func (f *Fetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	location = strings.TrimSpace(location)
	if name, ok := strings.CutPrefix(location, ResourcePrefix); ok {
		return f.fetchResource(name)
	}
	return f.fetchURL(ctx, location)
}

func (f *Fetcher) fetchResource(name string) ([]byte, error) {
	notFound := fmt.Sprintf("File not found in classpath: %s", name)
	if f.resources == nil {
		return nil, dErrors.New(dErrors.CodeRetrieval, notFound)
	}
	clean := strings.TrimPrefix(path.Clean("/"+name), "/")
	if clean == "" || !fs.ValidPath(clean) {
		return nil, dErrors.New(dErrors.CodeRetrieval, notFound)
	}

	file, err := f.resources.Open(clean)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, dErrors.Wrap(err, dErrors.CodeRetrieval, notFound)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeRetrieval, fmt.Sprintf("Failed to read classpath resource: %s", name))
	}
	defer file.Close()

	return f.readLimited(file, name)
}

func (f *Fetcher) fetchURL(ctx context.Context, rawURL string) ([]byte, error) {
	failed := fmt.Sprintf("Failed to load PDF document from URL: %s", rawURL)

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeRetrieval, failed)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, dErrors.New(dErrors.CodeRetrieval, failed)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeRetrieval, failed)
	}
	req.Header.Set("Accept", "application/pdf, */*")

	breaker := f.breaker(u.Host)
	if !breaker.Allow() {
		return nil, dErrors.Wrap(errHostUnavailable, dErrors.CodeRetrieval, failed)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			breaker.RecordFailure()
		}
		return nil, dErrors.Wrap(err, dErrors.CodeRetrieval, failed)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		breaker.RecordFailure()
	} else {
		breaker.RecordSuccess()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, dErrors.Wrap(fmt.Errorf("unexpected status %d", resp.StatusCode), dErrors.CodeRetrieval, failed)
	}
	return f.readLimited(resp.Body, rawURL)
}

func (f *Fetcher) breaker(host string) *circuit.Breaker {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.breakers[host]
	if !ok {
		b = circuit.New(host,
			circuit.WithFailureThreshold(f.hostFailureThreshold),
			circuit.WithCooldown(f.hostCooldown),
		)
		f.breakers[host] = b
	}
	return b
}

func (f *Fetcher) readLimited(r io.Reader, location string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeRetrieval, fmt.Sprintf("Failed to read PDF document: %s", location))
	}
	if int64(len(data)) > f.maxBytes {
		return nil, dErrors.New(dErrors.CodeRetrieval,
			fmt.Sprintf("PDF document exceeds %d bytes: %s", f.maxBytes, location))
	}
	return data, nil
}
