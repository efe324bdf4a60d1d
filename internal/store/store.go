// Package store persists the run history.
package store

import (
	"context"

	"github.com/sells-group/edhtail/internal/model"
)

// Store defines the run-history persistence interface.
type Store interface {
	RecordRun(ctx context.Context, run model.Run) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)
	Migrate(ctx context.Context) error
	Close() error
}
