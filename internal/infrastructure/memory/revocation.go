package memory

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// RevocationRegistry is a process-local revocation set. Entries expire with
// the token they revoke and are removed by Sweep.
type RevocationRegistry struct {
	mu      sync.RWMutex
	entries map[string]time.Time // token -> token expiry
	now     func() time.Time
}

func NewRevocationRegistry() *RevocationRegistry {
	return &RevocationRegistry{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (r *RevocationRegistry) WithClock(now func() time.Time) *RevocationRegistry {
	if now != nil {
		r.now = now
	}
	return r
}

func (r *RevocationRegistry) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	if !r.now().Before(expiresAt) {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.entries[token]; !ok || expiresAt.After(cur) {
		r.entries[token] = expiresAt
	}
	return nil
}

func (r *RevocationRegistry) IsRevoked(ctx context.Context, token string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exp, ok := r.entries[token]
	return ok && r.now().Before(exp), nil
}

// Sweep drops entries whose token has expired and returns how many it removed.
func (r *RevocationRegistry) Sweep() int {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for tok, exp := range r.entries {
		if !now.Before(exp) {
			delete(r.entries, tok)
			n++
		}
	}
	return n
}

// Len reports the number of live entries, expired or not.
func (r *RevocationRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (r *RevocationRegistry) RunSweeper(ctx context.Context, interval time.Duration, log zerolog.Logger) {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := r.Sweep(); n > 0 {
				log.Debug().Int("removed", n).Msg("revocation sweep")
			}
		}
	}
}
