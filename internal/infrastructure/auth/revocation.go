package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore rejects access tokens before they expire. Single tokens are
// revoked on logout; all of a user's tokens are revoked on deactivation.
type RevocationStore interface {
	// RevokeToken rejects one token ID for ttl, normally its remaining lifetime
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	// RevokeUser rejects every token issued to userID up to now
	RevokeUser(ctx context.Context, userID string, ttl time.Duration) error
	// IsRevoked reports whether a token issued to userID at issuedAt is rejected
	IsRevoked(ctx context.Context, jti, userID string, issuedAt time.Time) (bool, error)
}

const revocationKeyPrefix = "shopdesk:revoked:"

// RedisRevocationStore keeps revocations in Redis so every instance sees them
type RedisRevocationStore struct {
	client redis.Cmdable
	now    func() time.Time
}

// NewRedisRevocationStore creates a revocation store over a shared Redis client
func NewRedisRevocationStore(client redis.Cmdable) *RedisRevocationStore {
	return &RedisRevocationStore{client: client, now: time.Now}
}

func tokenKey(jti string) string { return revocationKeyPrefix + "jti:" + jti }
func userKey(userID string) string { return revocationKeyPrefix + "user:" + userID }

// RevokeToken stores the token ID until ttl passes
func (s *RedisRevocationStore) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if err := s.client.Set(ctx, tokenKey(jti), 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// RevokeUser stores the revocation instant in unix seconds, the resolution of iat
func (s *RedisRevocationStore) RevokeUser(ctx context.Context, userID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, userKey(userID), s.now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("revoke user tokens: %w", err)
	}
	return nil
}

// IsRevoked checks both keys in one round trip
func (s *RedisRevocationStore) IsRevoked(ctx context.Context, jti, userID string, issuedAt time.Time) (bool, error) {
	var (
		exists *redis.IntCmd
		cutoff *redis.StringCmd
	)
	_, err := s.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		exists = p.Exists(ctx, tokenKey(jti))
		cutoff = p.Get(ctx, userKey(userID))
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	if exists.Val() > 0 {
		return true, nil
	}

	raw, err := cutoff.Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check user revocation: %w", err)
	}
	revokedAt, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("parse user revocation %q: %w", raw, err)
	}
	return issuedAt.Unix() <= revokedAt, nil
}

var _ RevocationStore = (*RedisRevocationStore)(nil)

// MemoryRevocationStore is a process-local RevocationStore for single
// instance deployments and tests
type MemoryRevocationStore struct {
	mu     sync.Mutex
	tokens map[string]time.Time // jti -> expiry
	users  map[string]userRevocation
	now    func() time.Time
}

type userRevocation struct {
	at      time.Time
	expires time.Time
}

// NewMemoryRevocationStore creates an empty in-process store
func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{
		tokens: make(map[string]time.Time),
		users:  make(map[string]userRevocation),
		now:    time.Now,
	}
}

// RevokeToken remembers the token ID until ttl passes
func (s *MemoryRevocationStore) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[jti] = s.now().Add(ttl)
	return nil
}

// RevokeUser rejects the user's tokens issued up to now, for ttl
func (s *MemoryRevocationStore) RevokeUser(_ context.Context, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.users[userID] = userRevocation{at: now, expires: now.Add(ttl)}
	return nil
}

// IsRevoked drops expired entries as it meets them
func (s *MemoryRevocationStore) IsRevoked(_ context.Context, jti, userID string, issuedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()

	if exp, ok := s.tokens[jti]; ok {
		if now.Before(exp) {
			return true, nil
		}
		delete(s.tokens, jti)
	}
	if rev, ok := s.users[userID]; ok {
		if !now.Before(rev.expires) {
			delete(s.users, userID)
			return false, nil
		}
		// iat has second resolution
		return issuedAt.Unix() <= rev.at.Unix(), nil
	}
	return false, nil
}

var _ RevocationStore = (*MemoryRevocationStore)(nil)
