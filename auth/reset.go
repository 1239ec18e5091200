package auth

import (
	"crypto/rand"
	"math/big"
	"sync"
	"time"
)

// resetEntry is one outstanding password-reset code.
type resetEntry struct {
	code     int
	issuedAt time.Time
}

// ResetCodeStore keeps outstanding reset codes keyed by email. Re-requesting
// a code for an email overwrites that email's previous code; codes for
// different emails do not interfere. A verified code is compared, not
// consumed: it stays valid until it is overwritten or its TTL elapses.
type ResetCodeStore struct {
	mu    sync.Mutex
	codes map[string]resetEntry
	ttl   time.Duration

	stopCh chan struct{}

	// now is replaceable in tests to control expiry.
	now func() time.Time
}

// NewResetCodeStore creates a store whose codes expire after ttl and starts
// a janitor goroutine that sweeps out expired entries. Call Stop to end the
// janitor on shutdown.
func NewResetCodeStore(ttl time.Duration) *ResetCodeStore {
	s := &ResetCodeStore{
		codes:  make(map[string]resetEntry),
		ttl:    ttl,
		stopCh: make(chan struct{}),
		now:    time.Now,
	}
	go s.janitor(ttl)
	return s
}

// Stop ends the janitor goroutine.
func (s *ResetCodeStore) Stop() {
	close(s.stopCh)
}

// Issue generates a uniformly random 6-digit code for email and records it,
// replacing any prior code for that email.
func (s *ResetCodeStore) Issue(email string) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return 0, err
	}
	code := int(n.Int64()) + 100000

	s.mu.Lock()
	s.codes[email] = resetEntry{code: code, issuedAt: s.now()}
	s.mu.Unlock()
	return code, nil
}

// Verify reports whether code matches the outstanding, unexpired code for
// email. The entry is left in place on match and mismatch alike, so a
// mismatch does not cost the caller their remaining attempts.
func (s *ResetCodeStore) Verify(email string, code int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.codes[email]
	if !ok {
		return false
	}
	if s.now().Sub(entry.issuedAt) > s.ttl {
		delete(s.codes, email)
		return false
	}
	return entry.code == code
}

// janitor periodically drops expired entries so abandoned requests do not
// accumulate for the life of the process.
func (s *ResetCodeStore) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

func (s *ResetCodeStore) sweep() {
	now := s.now()
	s.mu.Lock()
	for email, entry := range s.codes {
		if now.Sub(entry.issuedAt) > s.ttl {
			delete(s.codes, email)
		}
	}
	s.mu.Unlock()
}
