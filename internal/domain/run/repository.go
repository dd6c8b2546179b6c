package run

import "context"

type Repository interface {
	Create(ctx context.Context, r Run) (Run, error)
	GetByID(ctx context.Context, id string) (Run, error)
	List(ctx context.Context) ([]Run, error)
	MarkArchived(ctx context.Context, r Run) error
	InsertUnitStats(ctx context.Context, stats []UnitStat) error
	ListUnitStats(ctx context.Context, runID string) ([]UnitStat, error)
}
