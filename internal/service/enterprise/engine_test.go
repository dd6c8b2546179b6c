package enterprise

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forcemodel/forcesim-backend-go/internal/domain/billet"
	"github.com/forcemodel/forcesim-backend-go/internal/domain/employee"
	"github.com/forcemodel/forcesim-backend-go/internal/domain/unit"
	"github.com/forcemodel/forcesim-backend-go/internal/domain/vacancy"
	"github.com/forcemodel/forcesim-backend-go/internal/pkg/geo"
	"github.com/forcemodel/forcesim-backend-go/internal/pkg/paytable"
)

func testRegistry() *geo.Registry {
	r := geo.NewRegistry()
	r.Add(geo.Location{ID: "DC", Lat: 38.9, Lon: -77.0, CONUS: true})
	r.Add(geo.Location{ID: "KC", Lat: 39.1, Lon: -94.6, CONUS: true})
	return r
}

func testTable() *paytable.Table {
	t := paytable.New()
	for _, loc := range []string{"DC", "KC"} {
		t.SetGrade(loc, 7, [paytable.MaxStep]float64{40000, 41300, 42600, 43900, 45200, 46500, 47800, 49100, 50400, 51700})
		t.SetGrade(loc, 11, [paytable.MaxStep]float64{60000, 62000, 64000, 66000, 68000, 70000, 72000, 74000, 76000, 78000})
	}
	return t
}

// buildEngine seeds one unit with a filled and a vacant billet plus one
// unassigned employee in the same locality.
func buildEngine(t *testing.T, seed int64) *Engine {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Seed = seed
	g := New(cfg, testTable(), testRegistry(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	start := cfg.Start
	u := unit.New("001", "W6CJAA", "1st Analysis Bn")
	u.SetHiringPolicy(0.6, 0.4)

	incumbent := employee.New("E0001", start.AddDate(-5, 0, 0))
	incumbent.DOB = start.AddDate(-35, 0, 0)
	incumbent.Grade = 11
	b1 := &billet.Billet{UPN: "00001011", AuthGrade: 11, AuthSeries: 132, Location: "DC"}
	require.NoError(t, u.InitTDA("101A", b1, incumbent, start))

	b2 := &billet.Billet{UPN: "00001021", AuthGrade: 7, AuthSeries: 132, Location: "DC"}
	require.NoError(t, u.InitTDA("102A", b2, nil, start))

	require.NoError(t, g.AddUnit(u))

	floater := employee.New("E0002", start.AddDate(-1, 0, 0))
	floater.DOB = start.AddDate(-28, 0, 0)
	floater.Location = "DC"
	require.NoError(t, g.AddEmployee(floater))

	return g
}

func TestStepAdvancesCalendar(t *testing.T) {
	t.Parallel()

	g := buildEngine(t, 1)
	start := g.Date()

	require.NoError(t, g.Step())
	assert.Equal(t, 1, g.Day())
	assert.Equal(t, start.AddDate(0, 0, 1), g.Date())
}

func TestVacantBilletGetsFilled(t *testing.T) {
	t.Parallel()

	g := buildEngine(t, 42)
	require.NoError(t, g.Advance(200))

	u, ok := g.Unit("W6CJAA")
	require.True(t, ok)

	b := u.TDA["102A"]
	assert.Equal(t, billet.StatusFilled, b.Status)
	assert.Equal(t, "E0002", b.Occupant)

	e, ok := g.Employee("E0002")
	require.True(t, ok)
	assert.Equal(t, employee.StatusAssigned, e.Status)
	assert.Equal(t, "W6CJAA", e.UIC)
	assert.Equal(t, "102A", e.PLN)
	assert.Greater(t, e.Salary, 0.0)

	assert.Len(t, g.Vacancies(vacancy.StageCompleted), 1)
	assert.Empty(t, g.Faults())
	assert.Equal(t, 2, g.Population())
}

func TestFillRateImproves(t *testing.T) {
	t.Parallel()

	g := buildEngine(t, 42)
	require.NoError(t, g.Advance(200))

	u, _ := g.Unit("W6CJAA")
	require.NotEmpty(t, u.FillRate)
	assert.InDelta(t, 0.5, u.FillRate[0], 1e-9)
	assert.InDelta(t, 1.0, u.FillRate[len(u.FillRate)-1], 1e-9)
}

func TestDeterministicUnderSameSeed(t *testing.T) {
	t.Parallel()

	a := buildEngine(t, 7)
	b := buildEngine(t, 7)
	require.NoError(t, a.Advance(60))
	require.NoError(t, b.Advance(60))

	assert.Equal(t, a.Population(), b.Population())
	assert.Equal(t, a.Board().TotalAdvertised(), b.Board().TotalAdvertised())

	ea, _ := a.Employee("E0001")
	eb, _ := b.Employee("E0001")
	require.NotNil(t, ea)
	require.NotNil(t, eb)
	assert.Equal(t, ea.FuncExp.Levels(), eb.FuncExp.Levels())
	assert.InDelta(t, ea.Chunks, eb.Chunks, 1e-12)
}

func TestRetirementRemovesFromPopulation(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Seed = 3
	cfg.Unit.RetireDailyProb = 1.0
	g := New(cfg, testTable(), testRegistry(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	start := cfg.Start
	u := unit.New("001", "W6CJAA", "1st Analysis Bn")
	old := employee.New("E0001", start.AddDate(-30, 0, 0))
	old.DOB = start.AddDate(-60, 0, 0)
	old.Grade = 11
	b := &billet.Billet{UPN: "00001011", AuthGrade: 11, AuthSeries: 132, Location: "DC"}
	require.NoError(t, u.InitTDA("101A", b, old, start))
	require.NoError(t, g.AddUnit(u))

	// Eligibility is flagged in the personnel phase; the unit draw can
	// fire the same day.
	require.NoError(t, g.Advance(2))

	assert.Equal(t, 0, g.Population())
	require.Len(t, g.Retired(), 1)
	assert.Equal(t, "E0001", g.Retired()[0].UPI)
	assert.Equal(t, employee.StatusRetired, g.Retired()[0].Status)
	assert.Equal(t, billet.StatusHiring, b.Status, "vacated billet re-advertised")
}

func TestEventsEmitted(t *testing.T) {
	t.Parallel()

	g := buildEngine(t, 42)
	var types []string
	g.SetEventHandler(func(ev Event) { types = append(types, ev.Type) })

	require.NoError(t, g.Advance(200))

	assert.Contains(t, types, "offer_extended")
	assert.Contains(t, types, "arrival")
	assert.Contains(t, types, "vacancy_completed")
	assert.Contains(t, types, "day_complete")
}
