// Package screening checks extracted document text against the blacklist.
package screening

import (
	"sync/atomic"

	"invoiceguard/internal/blacklist"
	"invoiceguard/internal/iban"
	dErrors "invoiceguard/pkg/domain-errors"
)

var (
	// ErrNotReady is returned by Scan until a blacklist has been activated.
	ErrNotReady = dErrors.New(dErrors.CodeNotReady, "Blacklisted IBANs are not loaded yet")

	errAlreadyActive = dErrors.New(dErrors.CodeConfiguration, "blacklist already activated")
	errNilStore      = dErrors.New(dErrors.CodeConfiguration, "blacklist store is required")
)

// Service moves from uninitialized to ready exactly once, when Activate
// publishes the blacklist. Scan is safe for concurrent use.
type Service struct {
	store atomic.Pointer[blacklist.Store]
}

// New returns a service that rejects scans until Activate is called.
func New() *Service {
	return &Service{}
}

// NewReady returns a service already serving store.
func NewReady(store *blacklist.Store) (*Service, error) {
	s := New()
	if err := s.Activate(store); err != nil {
		return nil, err
	}
	return s, nil
}

// Activate publishes the blacklist. It fails on a nil store or when a
// blacklist was already activated.
func (s *Service) Activate(store *blacklist.Store) error {
	if store == nil {
		return errNilStore
	}
	if !s.store.CompareAndSwap(nil, store) {
		return errAlreadyActive
	}
	return nil
}

// Ready reports whether a blacklist has been activated.
func (s *Service) Ready() bool {
	return s.store.Load() != nil
}

// BlacklistSize returns the number of blacklisted IBANs, or 0 when not ready.
func (s *Service) BlacklistSize() int {
	if store := s.store.Load(); store != nil {
		return store.Len()
	}
	return 0
}

// Scan returns the blacklisted IBANs found in text. Finding none is not an
// error.
func (s *Service) Scan(text string) (iban.Set, error) {
	store := s.store.Load()
	if store == nil {
		return nil, ErrNotReady
	}
	return store.Match(iban.Extract(text)), nil
}
