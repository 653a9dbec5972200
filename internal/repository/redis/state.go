package redis

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"herald/internal/domain/state"
	"herald/pkg/errors"
	"herald/pkg/logger"
)

// StateRepository persists the snapshot as a single JSON blob at a
// fixed key. Same read-whole/write-whole contract as the file backend;
// useful when the digest runs on a host without a persistent volume.
type StateRepository struct {
	client *redis.Client
	key    string
	log    *logger.Logger
}

// NewStateRepository creates a Redis-backed state repository.
func NewStateRepository(client *redis.Client, key string) *StateRepository {
	return &StateRepository{
		client: client,
		key:    key,
		log:    logger.Get().With("component", "redis_state_repository", "key", key),
	}
}

// Load reads the persisted snapshot. A missing key yields an empty
// snapshot; a corrupt blob is logged and also yields an empty snapshot.
func (r *StateRepository) Load(ctx context.Context) (state.Snapshot, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err == redis.Nil {
		r.log.Info("No persisted state found, starting empty")
		return state.Empty(), nil
	}
	if err != nil {
		return state.Empty(), errors.Wrapf(err, "get state blob %s", r.key)
	}

	var snap state.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		r.log.Warnw("Persisted state is corrupt, falling back to empty snapshot",
			"error", errors.Wrap(errors.ErrStateCorrupt, err.Error()),
		)
		return state.Empty(), nil
	}

	return snap, nil
}

// Save serializes the full snapshot to the fixed key, no TTL.
func (r *StateRepository) Save(ctx context.Context, snap state.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, "marshal state snapshot")
	}

	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return errors.Wrapf(err, "set state blob %s", r.key)
	}

	r.log.Debugw("State snapshot saved",
		"news_items", len(snap.CacheNews),
		"price_items", len(snap.Prices),
	)
	return nil
}
