package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forcemodel/forcesim-backend-go/internal/domain/run"
	"github.com/forcemodel/forcesim-backend-go/internal/repository/postgresql"
)

func sampleRun() run.Run {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return run.Run{
		ID:          uuid.NewString(),
		Scenario:    "two-unit-demo",
		Seed:        42,
		StartDate:   start,
		CurrentDate: start.AddDate(0, 0, 30),
		Day:         30,
		Status:      run.StatusActive,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestRunRepositoryCreateAndGet(t *testing.T) {
	db := testDatabase(t)
	repo := postgresql.NewRunRepository(db)
	ctx := context.Background()

	want := sampleRun()
	created, err := repo.Create(ctx, want)
	require.NoError(t, err)
	assert.Equal(t, want.ID, created.ID)
	assert.Equal(t, want.Seed, created.Seed)
	assert.Nil(t, created.ArchivedAt)

	got, err := repo.GetByID(ctx, want.ID)
	require.NoError(t, err)
	assert.Equal(t, want.Scenario, got.Scenario)
	assert.Equal(t, 30, got.Day)
	assert.Equal(t, run.StatusActive, got.Status)
}

func TestRunRepositoryGetMissing(t *testing.T) {
	db := testDatabase(t)
	repo := postgresql.NewRunRepository(db)

	_, err := repo.GetByID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, run.ErrRunNotFound)
}

func TestRunRepositoryList(t *testing.T) {
	db := testDatabase(t)
	repo := postgresql.NewRunRepository(db)
	ctx := context.Background()

	first := sampleRun()
	second := sampleRun()
	second.CreatedAt = first.CreatedAt.Add(time.Second)

	_, err := repo.Create(ctx, first)
	require.NoError(t, err)
	_, err = repo.Create(ctx, second)
	require.NoError(t, err)

	runs, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, first.ID, runs[0].ID)
	assert.Equal(t, second.ID, runs[1].ID)
}

func TestRunRepositoryMarkArchived(t *testing.T) {
	db := testDatabase(t)
	repo := postgresql.NewRunRepository(db)
	ctx := context.Background()

	rn := sampleRun()
	_, err := repo.Create(ctx, rn)
	require.NoError(t, err)

	archivedAt := time.Now().UTC().Truncate(time.Microsecond)
	rn.Status = run.StatusArchived
	rn.ArchivedAt = &archivedAt
	rn.Day = 45
	rn.CurrentDate = rn.StartDate.AddDate(0, 0, 45)

	require.NoError(t, repo.MarkArchived(ctx, rn))

	got, err := repo.GetByID(ctx, rn.ID)
	require.NoError(t, err)
	assert.Equal(t, run.StatusArchived, got.Status)
	assert.Equal(t, 45, got.Day)
	require.NotNil(t, got.ArchivedAt)

	missing := rn
	missing.ID = uuid.NewString()
	assert.ErrorIs(t, repo.MarkArchived(ctx, missing), run.ErrRunNotFound)
}

func TestRunRepositoryUnitStats(t *testing.T) {
	db := testDatabase(t)
	repo := postgresql.NewRunRepository(db)
	ctx := context.Background()

	rn := sampleRun()
	_, err := repo.Create(ctx, rn)
	require.NoError(t, err)

	stats := []run.UnitStat{
		{RunID: rn.ID, UIC: "W6CJAA", Day: 1, CivPay: 812.5, FillRate: 0.5, RosterSize: 2, TDASize: 4},
		{RunID: rn.ID, UIC: "W6CJAA", Day: 2, CivPay: 812.5, FillRate: 0.75, RosterSize: 3, TDASize: 4},
		{RunID: rn.ID, UIC: "W6CJEU", Day: 1, CivPay: 300.0, FillRate: 0.5, RosterSize: 1, TDASize: 2},
	}
	require.NoError(t, repo.InsertUnitStats(ctx, stats))

	got, err := repo.ListUnitStats(ctx, rn.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "W6CJAA", got[0].UIC)
	assert.Equal(t, 1, got[0].Day)
	assert.Equal(t, 2, got[1].Day)
	assert.InDelta(t, 0.75, got[1].FillRate, 1e-9)
	assert.Equal(t, "W6CJEU", got[2].UIC)

	require.NoError(t, repo.InsertUnitStats(ctx, nil))
}
