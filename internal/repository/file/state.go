package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"herald/internal/domain/state"
	"herald/pkg/errors"
	"herald/pkg/logger"
)

// StateRepository persists the snapshot as a JSON file. The write goes
// through a temp file plus rename so a crash mid-save never leaves a
// half-written snapshot behind.
type StateRepository struct {
	path string
	log  *logger.Logger
}

// NewStateRepository creates a file-backed state repository.
func NewStateRepository(path string) *StateRepository {
	return &StateRepository{
		path: path,
		log:  logger.Get().With("component", "file_state_repository", "path", path),
	}
}

// Load reads the persisted snapshot. A missing file yields an empty
// snapshot; a corrupt file is logged and also yields an empty snapshot
// so one bad write cannot block every subsequent digest run.
func (r *StateRepository) Load(ctx context.Context) (state.Snapshot, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			r.log.Info("No persisted state found, starting empty")
			return state.Empty(), nil
		}
		return state.Empty(), errors.Wrapf(err, "read state file %s", r.path)
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

// Save serializes the full snapshot, overwriting the previous one.
func (r *StateRepository) Save(ctx context.Context, snap state.Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return errors.Wrapf(err, "create state directory for %s", r.path)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal state snapshot")
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrapf(err, "write temp state file %s", tmp)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return errors.Wrapf(err, "rename temp state file to %s", r.path)
	}

	r.log.Debugw("State snapshot saved",
		"news_items", len(snap.CacheNews),
		"price_items", len(snap.Prices),
	)
	return nil
}
