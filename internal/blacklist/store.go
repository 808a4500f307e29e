// Package blacklist holds the set of flagged IBANs and intersects scan
// candidates with it.
package blacklist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"invoiceguard/internal/iban"
	dErrors "invoiceguard/pkg/domain-errors"
)

// Store is an immutable set of normalized IBANs. Build it with Load or Read
// and share it freely; nothing mutates it after construction.
type Store struct {
	set iban.Set
}

// Load reads a line-oriented blacklist file. A missing or unreadable file is a
// configuration error.
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, dErrors.Wrap(err, dErrors.CodeConfiguration,
				fmt.Sprintf("Blacklisted IBANs file not found: %s", path))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeConfiguration,
			fmt.Sprintf("Blacklisted IBANs file cannot be read: %s", path))
	}
	defer f.Close()

	store, err := Read(f)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeConfiguration,
			fmt.Sprintf("Blacklisted IBANs file cannot be read: %s", path))
	}
	return store, nil
}

// Read builds a Store from r, one raw IBAN per line. Lines are trimmed and
// normalized; lines that do not normalize to an IBAN are skipped.
func Read(r io.Reader) (*Store, error) {
	set := make(iban.Set)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		set.Add(iban.Normalize(strings.TrimSpace(sc.Text())))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read blacklist: %w", err)
	}
	return &Store{set: set}, nil
}

// FromSet builds a Store from already normalized values.
func FromSet(values iban.Set) *Store {
	set := make(iban.Set, len(values))
	for v := range values {
		set.Add(v)
	}
	return &Store{set: set}
}

func (s *Store) Contains(v string) bool { return s.set.Contains(v) }

func (s *Store) Len() int { return s.set.Len() }

// Snapshot returns a copy of the blacklisted IBANs.
func (s *Store) Snapshot() iban.Set {
	return FromSet(s.set).set
}

// Match returns the candidates that are blacklisted.
func (s *Store) Match(candidates iban.Set) iban.Set {
	return Match(candidates, s.set)
}

// Match returns the subset of candidates present in blacklist.
func Match(candidates, blacklist iban.Set) iban.Set {
	out := make(iban.Set)
	for c := range candidates {
		if blacklist.Contains(c) {
			out.Add(c)
		}
	}
	return out
}
