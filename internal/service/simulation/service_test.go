package simulation

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forcemodel/forcesim-backend-go/internal/domain/run"
	"github.com/forcemodel/forcesim-backend-go/internal/fixtures"
	"github.com/forcemodel/forcesim-backend-go/internal/pkg/sse"
	"github.com/forcemodel/forcesim-backend-go/internal/pkg/validator"
)

type memoryRepo struct {
	created   []run.Run
	archived  []run.Run
	unitStats []run.UnitStat
}

func (m *memoryRepo) Create(_ context.Context, r run.Run) (run.Run, error) {
	m.created = append(m.created, r)
	return r, nil
}

func (m *memoryRepo) GetByID(_ context.Context, id string) (run.Run, error) {
	for _, r := range m.created {
		if r.ID == id {
			return r, nil
		}
	}
	return run.Run{}, run.ErrRunNotFound
}

func (m *memoryRepo) List(_ context.Context) ([]run.Run, error) { return m.created, nil }

func (m *memoryRepo) MarkArchived(_ context.Context, r run.Run) error {
	m.archived = append(m.archived, r)
	return nil
}

func (m *memoryRepo) InsertUnitStats(_ context.Context, stats []run.UnitStat) error {
	m.unitStats = append(m.unitStats, stats...)
	return nil
}

func (m *memoryRepo) ListUnitStats(_ context.Context, runID string) ([]run.UnitStat, error) {
	var out []run.UnitStat
	for _, st := range m.unitStats {
		if st.RunID == runID {
			out = append(out, st)
		}
	}
	return out, nil
}

func testService(repo run.Repository) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(nil, repo, sse.NewHub(), log)
}

func TestCreateFromFixture(t *testing.T) {
	t.Parallel()
	svc := testService(nil)

	resp, err := svc.Create(context.Background(), run.CreateRunRequest{Fixture: fixtures.DefaultScenarioName})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, fixtures.DefaultScenarioName, resp.Scenario)
	assert.Equal(t, run.StatusActive, resp.Status)
	assert.Equal(t, 0, resp.Day)
	assert.Equal(t, 6, resp.Population)
	assert.Equal(t, 2, resp.Units)
}

func TestCreateFromInlineScenario(t *testing.T) {
	t.Parallel()
	svc := testService(nil)

	doc := `
name: inline-test
seed: 3
start_date: "2024-06-03"
avg_chunks_per_day: 1.5
locations:
  - id: DC
    lat: 38.9
    lon: -77.0
    conus: true
    market_share: 1.0
pay_table:
  rates:
    - locality: DC
      grade: 7
      steps: [42000, 43000, 44000, 45000, 46000, 47000, 48000, 49000, 50000, 51000]
units: []
unassigned:
  - upi: E9000
    scd: "2020-01-06"
    dob: "1995-04-11"
    grade: 7
    location: DC
`
	resp, err := svc.Create(context.Background(), run.CreateRunRequest{Scenario: doc})
	require.NoError(t, err)
	assert.Equal(t, "inline-test", resp.Scenario)
	assert.Equal(t, int64(3), resp.Seed)
	assert.Equal(t, 1, resp.Population)
}

func TestCreateUnknownFixture(t *testing.T) {
	t.Parallel()
	svc := testService(nil)

	_, err := svc.Create(context.Background(), run.CreateRunRequest{Fixture: "no-such-force"})
	assert.Error(t, err)
}

func TestCreateSeedOverride(t *testing.T) {
	t.Parallel()
	svc := testService(nil)

	seed := int64(99)
	resp, err := svc.Create(context.Background(), run.CreateRunRequest{Seed: &seed})
	require.NoError(t, err)
	assert.Equal(t, seed, resp.Seed)
}

func TestAdvance(t *testing.T) {
	t.Parallel()
	svc := testService(nil)
	created, err := svc.Create(context.Background(), run.CreateRunRequest{})
	require.NoError(t, err)

	resp, err := svc.Advance(context.Background(), created.ID, run.AdvanceRequest{Days: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, resp.Day)
	assert.Equal(t, created.StartDate.AddDate(0, 0, 5), resp.CurrentDate)
}

func TestAdvanceRejectsBadDayCount(t *testing.T) {
	t.Parallel()
	svc := testService(nil)
	created, err := svc.Create(context.Background(), run.CreateRunRequest{})
	require.NoError(t, err)

	_, err = svc.Advance(context.Background(), created.ID, run.AdvanceRequest{Days: 0})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "days")
}

func TestGetMissingRun(t *testing.T) {
	t.Parallel()
	svc := testService(nil)

	_, err := svc.Get(context.Background(), "ffffffff-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, run.ErrRunNotFound)
}

func TestListOrdersRuns(t *testing.T) {
	t.Parallel()
	svc := testService(nil)

	_, err := svc.Create(context.Background(), run.CreateRunRequest{})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), run.CreateRunRequest{})
	require.NoError(t, err)

	assert.Len(t, svc.List(context.Background()), 2)
}

func TestUnitsAndRoster(t *testing.T) {
	t.Parallel()
	svc := testService(nil)
	created, err := svc.Create(context.Background(), run.CreateRunRequest{})
	require.NoError(t, err)
	_, err = svc.Advance(context.Background(), created.ID, run.AdvanceRequest{Days: 1})
	require.NoError(t, err)

	units, err := svc.Units(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "W6CJAA", units[0].UIC)
	assert.Equal(t, 4, units[0].TDASize)
	assert.Equal(t, 2, units[0].RosterSize)
	assert.InDelta(t, 0.5, units[0].FillRate, 1e-9)
	assert.Positive(t, units[0].CivPay)

	roster, err := svc.Roster(context.Background(), created.ID, "W6CJEU")
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, "E0010", roster[0].UPI)
	assert.Equal(t, "201A", roster[0].PLN)

	everyone, err := svc.Roster(context.Background(), created.ID, "")
	require.NoError(t, err)
	assert.Len(t, everyone, 6)
}

func TestVacanciesStage(t *testing.T) {
	t.Parallel()
	svc := testService(nil)
	created, err := svc.Create(context.Background(), run.CreateRunRequest{})
	require.NoError(t, err)
	_, err = svc.Advance(context.Background(), created.ID, run.AdvanceRequest{Days: 1})
	require.NoError(t, err)

	open, err := svc.Vacancies(context.Background(), created.ID, "")
	require.NoError(t, err)
	assert.Len(t, open, 3) // three vacant billets advertised on day one

	_, err = svc.Vacancies(context.Background(), created.ID, "stale")
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestArchive(t *testing.T) {
	t.Parallel()
	repo := &memoryRepo{}
	svc := testService(repo)
	created, err := svc.Create(context.Background(), run.CreateRunRequest{})
	require.NoError(t, err)
	_, err = svc.Advance(context.Background(), created.ID, run.AdvanceRequest{Days: 3})
	require.NoError(t, err)

	resp, err := svc.Archive(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, run.StatusArchived, resp.Status)
	require.NotNil(t, resp.ArchivedAt)

	require.Len(t, repo.created, 1)
	require.Len(t, repo.archived, 1)
	require.Len(t, repo.unitStats, 6) // 2 units x 3 recorded days

	for _, stat := range repo.unitStats {
		if stat.UIC != "W6CJAA" {
			continue
		}
		// Sizes belong to the recorded day, not the end of the run.
		assert.Equal(t, 2, stat.RosterSize, "day %d", stat.Day)
		assert.Equal(t, 4, stat.TDASize, "day %d", stat.Day)
		assert.Positive(t, stat.CivPay, "day %d", stat.Day)
	}

	_, err = svc.Advance(context.Background(), created.ID, run.AdvanceRequest{Days: 1})
	assert.ErrorIs(t, err, run.ErrRunArchived)

	_, err = svc.Archive(context.Background(), created.ID)
	assert.ErrorIs(t, err, run.ErrRunArchived)
}

func TestSubscribeStreamsEvents(t *testing.T) {
	t.Parallel()
	svc := testService(nil)
	created, err := svc.Create(context.Background(), run.CreateRunRequest{})
	require.NoError(t, err)

	ch, cleanup, err := svc.Subscribe(created.ID)
	require.NoError(t, err)
	defer cleanup()

	_, err = svc.Advance(context.Background(), created.ID, run.AdvanceRequest{Days: 1})
	require.NoError(t, err)

	var sawDayComplete bool
	deadline := time.After(time.Second)
	for !sawDayComplete {
		select {
		case ev := <-ch:
			if ev.Event == "day_complete" {
				sawDayComplete = true
			}
		case <-deadline:
			t.Fatal("no day_complete event received")
		}
	}
}
