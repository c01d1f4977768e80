package sessionstore

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/sessiongate/pkg/session"
)

const defaultKey = "sessiongate:sessions"

// RedisStore implements session.Store on a single Redis hash keyed by
// session id.
type RedisStore struct {
	client redis.UniversalClient
	key    string
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKey sets the hash key. Defaults to "sessiongate:sessions".
func WithKey(key string) RedisOption {
	return func(s *RedisStore) {
		if key != "" {
			s.key = key
		}
	}
}

// NewRedisStore creates a store backed by client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, key: defaultKey}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) Save(ctx context.Context, snap session.Snapshot) error {
	data, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	if err := s.client.HSet(ctx, s.key, snap.ID, data).Err(); err != nil {
		return errors.Join(ErrStoreFailed, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.HDel(ctx, s.key, id).Err(); err != nil {
		return errors.Join(ErrStoreFailed, err)
	}
	return nil
}

// List returns every record ordered by session id. Undecodable records are
// skipped so one bad entry cannot block a restore.
func (s *RedisStore) List(ctx context.Context) ([]session.Snapshot, error) {
	values, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, errors.Join(ErrStoreFailed, err)
	}

	out := make([]session.Snapshot, 0, len(values))
	for _, v := range values {
		snap, err := decodeSnapshot([]byte(v))
		if err != nil {
			continue
		}
		out = append(out, snap)
	}
	slices.SortFunc(out, func(a, b session.Snapshot) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}
