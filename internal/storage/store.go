package storage

import (
	"context"

	"stackgp/internal/model"
)

// Store persists run reports. Populations are never stored.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	// ListRuns returns runs newest first. limit <= 0 returns every run.
	ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error)
}
