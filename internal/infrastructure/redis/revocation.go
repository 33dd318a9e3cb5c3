package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const revokedPrefix = "revoked:"

// RevocationRegistry stores revoked tokens as SHA-256 digests with a TTL that
// ends at the token's own expiry, so Redis does the eviction.
type RevocationRegistry struct {
	rdb *goredis.Client
	now func() time.Time
}

func NewRevocationRegistry(c *Client) *RevocationRegistry {
	var rdb *goredis.Client
	if c != nil {
		rdb = c.rdb
	}
	return &RevocationRegistry{rdb: rdb, now: time.Now}
}

func (r *RevocationRegistry) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	if r.rdb == nil {
		return errors.New("redis revocation registry not configured")
	}
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	if ttl < time.Millisecond {
		ttl = time.Millisecond
	}
	if err := r.rdb.Set(ctx, revocationKey(token), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (r *RevocationRegistry) IsRevoked(ctx context.Context, token string) (bool, error) {
	if r.rdb == nil {
		return false, errors.New("redis revocation registry not configured")
	}
	n, err := r.rdb.Exists(ctx, revocationKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return n > 0, nil
}

// revocationKey never stores the bearer token itself.
func revocationKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return revokedPrefix + hex.EncodeToString(sum[:])
}

// RevocationEntry is one live revocation as seen in Redis. Only the digest
// is available; the token itself is never stored.
type RevocationEntry struct {
	Digest string
	TTL    time.Duration
}

// Entries scans the registry. count is the SCAN hint; scanning stops once
// limit entries are collected (limit <= 0 means no limit).
func (r *RevocationRegistry) Entries(ctx context.Context, count int64, limit int) ([]RevocationEntry, error) {
	if r.rdb == nil {
		return nil, errors.New("redis revocation registry not configured")
	}
	if count <= 0 {
		count = 200
	}

	var (
		out    []RevocationEntry
		cursor uint64
	)
	for {
		keys, next, err := r.rdb.Scan(ctx, cursor, revokedPrefix+"*", count).Result()
		if err != nil {
			return nil, fmt.Errorf("scan revocations: %w", err)
		}
		for _, k := range keys {
			ttl, err := r.rdb.PTTL(ctx, k).Result()
			if err != nil {
				return nil, fmt.Errorf("ttl %s: %w", k, err)
			}
			// -2: expired between SCAN and PTTL
			if ttl == -2 {
				continue
			}
			out = append(out, RevocationEntry{Digest: strings.TrimPrefix(k, revokedPrefix), TTL: ttl})
			if limit > 0 && len(out) >= limit {
				return out, nil
			}
		}
		cursor = next
		if cursor == 0 {
			return out, nil
		}
	}
}
