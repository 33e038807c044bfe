package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "session:revoked:"

// SessionStore tracks revoked session token ids in Redis. JWTs are stateless,
// so logout works by denylisting the token id until its natural expiry.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore builds the store.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Revoke denylists a token id until expiresAt.
func (s *SessionStore) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if s == nil || s.client == nil {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err()
}

// IsRevoked reports whether a token id has been denylisted. Redis being
// unreachable fails open: the JWT signature and expiry still apply.
func (s *SessionStore) IsRevoked(ctx context.Context, tokenID string) bool {
	if s == nil || s.client == nil {
		return false
	}
	res, err := s.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false
	}
	return res > 0
}
