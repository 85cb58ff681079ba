package interfaces

import (
	"context"

	"github.com/tessario/messis/internal/poller"
)

// SnapshotCache persists the latest snapshot per collection across restarts.
type SnapshotCache interface {
	SaveSnapshot(ctx context.Context, snap poller.Snapshot) error
	LoadSnapshots(ctx context.Context) ([]poller.Snapshot, error)
}
