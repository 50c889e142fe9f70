package auth

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// registrationCodeStore keeps issued invite codes in Redis, digest-keyed.
// The plaintext code is never stored; lookups hash the submitted code and
// probe for the digest.
type registrationCodeStore struct {
	redis  *redis.Client
	prefix string
}

func newRegistrationCodeStore(client *redis.Client, prefix string) *registrationCodeStore {
	if prefix == "" {
		prefix = "mja"
	}
	return &registrationCodeStore{redis: client, prefix: prefix}
}

func (s *registrationCodeStore) key(codeHash [32]byte) string {
	return s.prefix + ":rc:" + hex.EncodeToString(codeHash[:])
}

func (s *registrationCodeStore) Save(ctx context.Context, codeHash [32]byte, role Role, ttl time.Duration) error {
	if err := s.redis.Set(ctx, s.key(codeHash), string(role), ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Peek reports whether the code exists and which role it grants, without
// consuming it.
func (s *registrationCodeStore) Peek(ctx context.Context, codeHash [32]byte) (Role, bool, error) {
	value, err := s.redis.Get(ctx, s.key(codeHash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return Role(value), true, nil
}

// Consume removes the code so it can gate exactly one account creation.
// Returns false when the code was absent or already used.
func (s *registrationCodeStore) Consume(ctx context.Context, codeHash [32]byte) (Role, bool, error) {
	value, err := s.redis.GetDel(ctx, s.key(codeHash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return Role(value), true, nil
}
