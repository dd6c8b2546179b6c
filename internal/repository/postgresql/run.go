package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/forcemodel/forcesim-backend-go/internal/domain/run"
	"github.com/forcemodel/forcesim-backend-go/internal/pkg/database"
)

type runRepositoryImpl struct {
	db *database.DB
}

func NewRunRepository(db *database.DB) run.Repository {
	return &runRepositoryImpl{db: db}
}

// Create implements run.Repository.
func (r *runRepositoryImpl) Create(ctx context.Context, rn run.Run) (run.Run, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO runs (id, scenario, seed, start_date, current_date_sim, day, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, scenario, seed, start_date, current_date_sim, day, status, created_at, archived_at
	`

	var result run.Run
	err := q.QueryRow(ctx, query,
		rn.ID, rn.Scenario, rn.Seed, rn.StartDate, rn.CurrentDate, rn.Day, rn.Status, rn.CreatedAt,
	).Scan(
		&result.ID,
		&result.Scenario,
		&result.Seed,
		&result.StartDate,
		&result.CurrentDate,
		&result.Day,
		&result.Status,
		&result.CreatedAt,
		&result.ArchivedAt,
	)

	if err != nil {
		return run.Run{}, fmt.Errorf("failed to create run: %w", err)
	}

	return result, nil
}

// GetByID implements run.Repository.
func (r *runRepositoryImpl) GetByID(ctx context.Context, id string) (run.Run, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, scenario, seed, start_date, current_date_sim, day, status, created_at, archived_at
		FROM runs
		WHERE id = $1
	`

	var result run.Run
	err := q.QueryRow(ctx, query, id).Scan(
		&result.ID,
		&result.Scenario,
		&result.Seed,
		&result.StartDate,
		&result.CurrentDate,
		&result.Day,
		&result.Status,
		&result.CreatedAt,
		&result.ArchivedAt,
	)

	if err == pgx.ErrNoRows {
		return run.Run{}, fmt.Errorf("%w: %s", run.ErrRunNotFound, id)
	}

	if err != nil {
		return run.Run{}, fmt.Errorf("failed to get run: %w", err)
	}

	return result, nil
}

// List implements run.Repository.
func (r *runRepositoryImpl) List(ctx context.Context) ([]run.Run, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, scenario, seed, start_date, current_date_sim, day, status, created_at, archived_at
		FROM runs
		ORDER BY created_at ASC
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []run.Run
	for rows.Next() {
		var rn run.Run
		err := rows.Scan(
			&rn.ID,
			&rn.Scenario,
			&rn.Seed,
			&rn.StartDate,
			&rn.CurrentDate,
			&rn.Day,
			&rn.Status,
			&rn.CreatedAt,
			&rn.ArchivedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, rn)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return runs, nil
}

// MarkArchived implements run.Repository.
func (r *runRepositoryImpl) MarkArchived(ctx context.Context, rn run.Run) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE runs
		SET status = $1, archived_at = $2, current_date_sim = $3, day = $4
		WHERE id = $5
	`

	commandTag, err := q.Exec(ctx, query, run.StatusArchived, rn.ArchivedAt, rn.CurrentDate, rn.Day, rn.ID)
	if err != nil {
		return fmt.Errorf("failed to archive run: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", run.ErrRunNotFound, rn.ID)
	}

	return nil
}

// InsertUnitStats implements run.Repository. Rows go in through a single
// batch so archival stays one round trip per unit-day block.
func (r *runRepositoryImpl) InsertUnitStats(ctx context.Context, stats []run.UnitStat) error {
	if len(stats) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO unit_stats (run_id, uic, day, civ_pay, fill_rate, roster_size, tda_size)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	batch := &pgx.Batch{}
	for _, st := range stats {
		batch.Queue(query, st.RunID, st.UIC, st.Day, st.CivPay, st.FillRate, st.RosterSize, st.TDASize)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()

	for range stats {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert unit stats: %w", err)
		}
	}

	return nil
}

// ListUnitStats implements run.Repository.
func (r *runRepositoryImpl) ListUnitStats(ctx context.Context, runID string) ([]run.UnitStat, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT run_id, uic, day, civ_pay, fill_rate, roster_size, tda_size
		FROM unit_stats
		WHERE run_id = $1
		ORDER BY uic ASC, day ASC
	`

	rows, err := q.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unit stats: %w", err)
	}
	defer rows.Close()

	var stats []run.UnitStat
	for rows.Next() {
		var st run.UnitStat
		err := rows.Scan(
			&st.RunID,
			&st.UIC,
			&st.Day,
			&st.CivPay,
			&st.FillRate,
			&st.RosterSize,
			&st.TDASize,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan unit stat: %w", err)
		}
		stats = append(stats, st)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return stats, nil
}
