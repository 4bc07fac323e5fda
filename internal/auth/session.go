package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix  = "session:"
	defaultSessionTTL = 24 * time.Hour
)

// Store manages sessions in Redis: an opaque token maps to the account ID it
// was created for. The client only ever holds the token.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore returns a new session store.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

// TTL returns the configured session lifetime.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Create stores a new session for userID and returns its token.
func (s *Store) Create(ctx context.Context, userID int64) (string, error) {
	token, err := newSessionToken()
	if err != nil {
		return "", err
	}
	key := sessionKeyPrefix + token
	if err := s.rdb.Set(ctx, key, strconv.FormatInt(userID, 10), s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// GetUserID resolves a token to the account ID it was created for. An
// absent or expired token is (0, false), not an error. A successful resolve
// refreshes the TTL, so the session expires after inactivity rather than at
// a fixed point after login.
func (s *Store) GetUserID(ctx context.Context, token string) (int64, bool) {
	key := sessionKeyPrefix + token
	v, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		return 0, false
	}
	userID, err := strconv.ParseInt(v, 10, 64)
	if err != nil || userID <= 0 {
		return 0, false
	}
	_ = s.rdb.Expire(ctx, key, s.ttl).Err()
	return userID, true
}

// Delete removes a session by token. Deleting an absent token is not an error.
func (s *Store) Delete(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, sessionKeyPrefix+token).Err()
}

// newSessionToken returns 128 bits from crypto/rand, hex-encoded. Tokens are
// unguessable and collisions across concurrent creates are not a concern at
// this size.
func newSessionToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand: %w", err)
	}
	return hex.EncodeToString(b), nil
}
