package state

import "context"

// Repository persists the whole snapshot as a single blob at a fixed
// location. Implementations read the whole aggregate at run start and
// write the whole aggregate at run end; there are no partial updates.
//
// Load returns an empty snapshot when nothing has been persisted yet.
// A corrupt blob also yields an empty snapshot (with a logged warning)
// rather than an error: losing a few days of cached news is
// recoverable, a crashed digest run is not.
type Repository interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}
