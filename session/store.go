package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned when the requested session id has no record.
var ErrSessionNotFound = errors.New("session not found")

// ErrRedisUnavailable wraps any backend failure so callers can distinguish
// "the store said no" from "the store could not answer".
var ErrRedisUnavailable = errors.New("redis unavailable")

const (
	fieldIdentity = "identity"
	fieldClient   = "client"
	fieldCreated  = "created"
	fieldStatus   = "status"
)

// Store reads and writes session records in Redis. Each session is a hash
// keyed by session id; a per-identity set indexes every session the identity
// has ever opened. Status flips are single-field writes, so disabling is
// atomic and naturally idempotent.
type Store struct {
	redis  *redis.Client
	prefix string
}

// NewStore returns a Store using the given key prefix (e.g. "mja").
func NewStore(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = "mja"
	}
	return &Store{redis: client, prefix: prefix}
}

func (s *Store) sessionKey(sessionID string) string {
	return s.prefix + ":s:" + sessionID
}

func (s *Store) identityKey(identityID string) string {
	return s.prefix + ":i:" + identityID
}

// Create persists sess and indexes it under its identity. Sessions are
// created Enabled regardless of the Status field passed in.
func (s *Store) Create(ctx context.Context, sess Session) error {
	if sess.SessionID == "" || sess.IdentityID == "" {
		return errors.New("session id and identity id are required")
	}

	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.sessionKey(sess.SessionID),
			fieldIdentity, sess.IdentityID,
			fieldClient, sess.Client,
			fieldCreated, strconv.FormatInt(sess.CreatedAt, 10),
			fieldStatus, strconv.Itoa(int(StatusEnabled)),
		)
		pipe.SAdd(ctx, s.identityKey(sess.IdentityID), sess.SessionID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// Get returns the session record for sessionID, or ErrSessionNotFound.
func (s *Store) Get(ctx context.Context, sessionID string) (*Session, error) {
	fields, err := s.redis.HGetAll(ctx, s.sessionKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if len(fields) == 0 {
		return nil, ErrSessionNotFound
	}

	return decodeSession(sessionID, fields)
}

// Disable flips the session to Disabled. It reports whether the session was
// still enabled before the call; disabling an already-disabled session is a
// no-op, not an error.
func (s *Store) Disable(ctx context.Context, sessionID string) (bool, error) {
	current, err := s.Get(ctx, sessionID)
	if err != nil {
		return false, err
	}
	if current.Status == StatusDisabled {
		return false, nil
	}

	err = s.redis.HSet(ctx, s.sessionKey(sessionID), fieldStatus, strconv.Itoa(int(StatusDisabled))).Err()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return true, nil
}

// DisableAll disables every session owned by identityID and returns how many
// were still enabled.
func (s *Store) DisableAll(ctx context.Context, identityID string) (int, error) {
	return s.disableMatching(ctx, identityID, "")
}

// DisableOthers disables every session owned by identityID except
// keepSessionID and returns how many were still enabled.
func (s *Store) DisableOthers(ctx context.Context, identityID, keepSessionID string) (int, error) {
	if keepSessionID == "" {
		return 0, errors.New("keep session id is required")
	}
	return s.disableMatching(ctx, identityID, keepSessionID)
}

func (s *Store) disableMatching(ctx context.Context, identityID, keepSessionID string) (int, error) {
	ids, err := s.redis.SMembers(ctx, s.identityKey(identityID)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	disabled := 0
	for _, id := range ids {
		if id == keepSessionID {
			continue
		}
		changed, err := s.Disable(ctx, id)
		if errors.Is(err, ErrSessionNotFound) {
			// Index entry without a record; skip rather than fail the sweep.
			continue
		}
		if err != nil {
			return disabled, err
		}
		if changed {
			disabled++
		}
	}

	return disabled, nil
}

// List returns every session the identity has ever opened, newest first,
// disabled sessions included.
func (s *Store) List(ctx context.Context, identityID string) ([]Session, error) {
	ids, err := s.redis.SMembers(ctx, s.identityKey(identityID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	sessions := make([]Session, 0, len(ids))
	for _, id := range ids {
		sess, err := s.Get(ctx, id)
		if errors.Is(err, ErrSessionNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *sess)
	}

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt != sessions[j].CreatedAt {
			return sessions[i].CreatedAt > sessions[j].CreatedAt
		}
		return sessions[i].SessionID < sessions[j].SessionID
	})

	return sessions, nil
}

func decodeSession(sessionID string, fields map[string]string) (*Session, error) {
	identity := fields[fieldIdentity]
	if identity == "" {
		return nil, errors.New("corrupt session record: missing identity")
	}

	created, err := strconv.ParseInt(fields[fieldCreated], 10, 64)
	if err != nil {
		return nil, errors.New("corrupt session record: bad creation timestamp")
	}

	status, err := strconv.Atoi(fields[fieldStatus])
	if err != nil || (status != int(StatusEnabled) && status != int(StatusDisabled)) {
		return nil, errors.New("corrupt session record: bad status")
	}

	return &Session{
		SessionID:  sessionID,
		IdentityID: identity,
		Client:     fields[fieldClient],
		CreatedAt:  created,
		Status:     Status(status),
	}, nil
}
