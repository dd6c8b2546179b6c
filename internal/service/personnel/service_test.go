package personnel

import (
	"io"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forcemodel/forcesim-backend-go/internal/domain/employee"
	"github.com/forcemodel/forcesim-backend-go/internal/domain/unit"
	"github.com/forcemodel/forcesim-backend-go/internal/domain/vacancy"
	"github.com/forcemodel/forcesim-backend-go/internal/pkg/experience"
	"github.com/forcemodel/forcesim-backend-go/internal/pkg/paytable"
	"github.com/forcemodel/forcesim-backend-go/internal/pkg/taskgen"
)

type fakeBoard struct {
	listings  []*vacancy.Announcement
	applied   []string
	accepted  []string
	declined  []string
	withdrawn []string
}

func (b *fakeBoard) OpenListings() []*vacancy.Announcement { return b.listings }

func (b *fakeBoard) Apply(vacancyID string, e *employee.Employee) error {
	if err := e.RecordApplication(vacancyID); err != nil {
		return err
	}
	b.applied = append(b.applied, vacancyID)
	return nil
}

func (b *fakeBoard) AcceptOffer(vacancyID string) error {
	b.accepted = append(b.accepted, vacancyID)
	return nil
}

func (b *fakeBoard) DeclineOffer(vacancyID, upi string) error {
	b.declined = append(b.declined, vacancyID)
	return nil
}

func (b *fakeBoard) Withdraw(vacancyID, upi string) error {
	b.withdrawn = append(b.withdrawn, vacancyID)
	return nil
}

type fakeUnits map[string]*unit.Unit

func (f fakeUnits) Unit(uic string) (*unit.Unit, bool) {
	u, ok := f[uic]
	return u, ok
}

// monday is a fixed weekday anchor for tests that need task work to run.
var monday = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func testTable() *paytable.Table {
	t := paytable.New()
	t.SetGrade("DC", 11, [paytable.MaxStep]float64{60000, 62000, 64000, 66000, 68000, 70000, 72000, 74000, 76000, 78000})
	return t
}

func testService(board *fakeBoard, units fakeUnits) *Service {
	rng := rand.New(rand.NewSource(11))
	return New(DefaultConfig(), board, units, testTable(), taskgen.NewGenerator(rng), experience.NewLearningCurve(1.5), rng, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func rosterEmployee(now time.Time) *employee.Employee {
	e := employee.New("E0001", now.AddDate(-5, 0, 0))
	e.DOB = now.AddDate(-40, 0, 0)
	e.Location = "DC"
	e.Grade = 11
	e.UIC = "W6CJAA"
	e.PLN = "101A"
	e.Status = employee.StatusAssigned
	return e
}

func TestClockDayAdvancesTenure(t *testing.T) {
	t.Parallel()

	board := &fakeBoard{}
	u := unit.New("001", "W6CJAA", "1st Analysis Bn")
	svc := testService(board, fakeUnits{"W6CJAA": u})

	e := rosterEmployee(monday)
	e.Dwell = 10
	e.DaysInStep = 10

	require.NoError(t, svc.Step(e, monday))
	assert.Equal(t, 11, e.Dwell)
	assert.Equal(t, 11, e.DaysInStep)
	assert.False(t, e.RetireEligible)
}

func TestWithinGradeIncrease(t *testing.T) {
	t.Parallel()

	board := &fakeBoard{}
	u := unit.New("001", "W6CJAA", "1st Analysis Bn")
	svc := testService(board, fakeUnits{"W6CJAA": u})

	e := rosterEmployee(monday)
	e.Step = 1
	e.DaysInStep = 364 // crosses the one-year band on this step

	require.NoError(t, svc.Step(e, monday))
	assert.Equal(t, 2, e.Step)
	assert.Equal(t, 0, e.DaysInStep)
	assert.InDelta(t, 62000, e.Salary, 1e-9)
}

func TestRetirementEligibilityFlag(t *testing.T) {
	t.Parallel()

	board := &fakeBoard{}
	u := unit.New("001", "W6CJAA", "1st Analysis Bn")
	svc := testService(board, fakeUnits{"W6CJAA": u})

	e := rosterEmployee(monday)
	e.SCD = monday.AddDate(-25, 0, 0)
	e.DOB = monday.AddDate(-60, 0, 0)

	require.NoError(t, svc.Step(e, monday))
	assert.True(t, e.RetireEligible)
}

func TestWeekdayTaskWorkMovesExperience(t *testing.T) {
	t.Parallel()

	board := &fakeBoard{}
	u := unit.New("001", "W6CJAA", "1st Analysis Bn")
	u.FuncFocus = experience.Analysis
	u.GeoFocus = experience.Europe
	svc := testService(board, fakeUnits{"W6CJAA": u})

	e := rosterEmployee(monday)
	for i := 0; i < e.FuncExp.Len(); i++ {
		e.FuncExp.SetLevel(i, 0.5)
	}
	for i := 0; i < e.GeoExp.Len(); i++ {
		e.GeoExp.SetLevel(i, 0.5)
	}

	require.NoError(t, svc.Step(e, monday))

	assert.Greater(t, e.FuncExp.Level(experience.Analysis), 0.5, "focus skill grows")
	assert.Greater(t, e.GeoExp.Level(experience.Europe), 0.5, "focus region grows")
	assert.Greater(t, e.Chunks, 0.0)

	var decayed bool
	for i := 0; i < e.GeoExp.Len(); i++ {
		if i != experience.Europe && e.GeoExp.Level(i) < 0.5 {
			decayed = true
		}
	}
	assert.True(t, decayed, "unworked regions atrophy")
}

func TestWeekendSkipsTaskWork(t *testing.T) {
	t.Parallel()

	board := &fakeBoard{}
	u := unit.New("001", "W6CJAA", "1st Analysis Bn")
	svc := testService(board, fakeUnits{"W6CJAA": u})

	e := rosterEmployee(monday)
	saturday := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, svc.Step(e, saturday))
	assert.Zero(t, e.Chunks)
}

func TestUnassignedDecay(t *testing.T) {
	t.Parallel()

	board := &fakeBoard{}
	svc := testService(board, fakeUnits{})

	e := employee.New("E0002", monday)
	e.Location = "DC"
	e.FuncExp.SetLevel(experience.Analysis, 1.0)

	require.NoError(t, svc.Step(e, monday))
	assert.InDelta(t, 0.985, e.FuncExp.Level(experience.Analysis), 1e-9)
	assert.Equal(t, 1, e.Dwell, "no tenure clock off the roster")
}

func TestScanVacanciesUnassignedAppliesToAnything(t *testing.T) {
	t.Parallel()

	board := &fakeBoard{listings: []*vacancy.Announcement{
		{ID: "V1", Grade: 7, Location: "KC", Status: vacancy.StatusOpen},
		{ID: "V2", Grade: 12, Location: "DC", Status: vacancy.StatusOpen},
	}}
	svc := testService(board, fakeUnits{})

	e := employee.New("E0002", monday)
	e.Location = "DC"

	require.NoError(t, svc.Step(e, monday))
	assert.Len(t, board.applied, 2)
	assert.True(t, e.HasApplied("V1"))
	assert.True(t, e.HasApplied("V2"))
}

func TestScanVacanciesIncumbentRules(t *testing.T) {
	t.Parallel()

	listings := []*vacancy.Announcement{
		{ID: "V1", Grade: 12, Location: "DC", Status: vacancy.StatusOpen}, // promotion in place
		{ID: "V2", Grade: 12, Location: "KC", Status: vacancy.StatusOpen}, // move
		{ID: "V3", Grade: 9, Location: "DC", Status: vacancy.StatusOpen},  // downgrade
	}

	t.Run("assigned with tenure", func(t *testing.T) {
		t.Parallel()
		board := &fakeBoard{listings: listings}
		svc := testService(board, fakeUnits{"W6CJAA": unit.New("001", "W6CJAA", "x")})
		e := rosterEmployee(monday)
		e.Dwell = 400

		require.NoError(t, svc.Step(e, monday))
		assert.True(t, e.HasApplied("V1"))
		assert.False(t, e.HasApplied("V2"))
		assert.False(t, e.HasApplied("V3"))
	})

	t.Run("assigned without tenure", func(t *testing.T) {
		t.Parallel()
		board := &fakeBoard{listings: listings}
		svc := testService(board, fakeUnits{"W6CJAA": unit.New("001", "W6CJAA", "x")})
		e := rosterEmployee(monday)
		e.Dwell = 30

		require.NoError(t, svc.Step(e, monday))
		assert.Empty(t, board.applied)
	})

	t.Run("nonextended chases moves", func(t *testing.T) {
		t.Parallel()
		board := &fakeBoard{listings: listings}
		svc := testService(board, fakeUnits{"W6CJAA": unit.New("001", "W6CJAA", "x")})
		e := rosterEmployee(monday)
		e.Status = employee.StatusNonExtended
		e.Dwell = 30

		require.NoError(t, svc.Step(e, monday))
		assert.False(t, e.HasApplied("V1"), "promotions in place still need tenure")
		assert.True(t, e.HasApplied("V2"))
		assert.False(t, e.HasApplied("V3"))
	})
}

func TestAcceptPromotionInPlace(t *testing.T) {
	t.Parallel()

	board := &fakeBoard{}
	dest := unit.New("002", "W6CJBB", "2d Analysis Bn")
	svc := testService(board, fakeUnits{"W6CJAA": unit.New("001", "W6CJAA", "x"), "W6CJBB": dest})

	e := rosterEmployee(monday)
	require.NoError(t, e.RecordApplication("V1"))
	require.NoError(t, e.AddOffer(&employee.JobOffer{
		VacancyID: "V1", UIC: "W6CJBB", PLN: "201A", Grade: 12, Location: "DC",
	}))

	require.NoError(t, svc.Step(e, monday))

	assert.Equal(t, employee.StatusPromoted, e.Status)
	require.NotNil(t, e.AcceptedOffer)
	assert.Equal(t, "V1", e.AcceptedOffer.VacancyID)
	assert.Equal(t, employee.ApplicationAccepted, e.Applications["V1"])
	assert.Equal(t, []string{"V1"}, board.accepted)
	assert.Equal(t, []string{e.UPI}, dest.Inbound)
}

func TestAssignedDeclinesMove(t *testing.T) {
	t.Parallel()

	board := &fakeBoard{}
	svc := testService(board, fakeUnits{"W6CJAA": unit.New("001", "W6CJAA", "x")})

	e := rosterEmployee(monday)
	require.NoError(t, e.RecordApplication("V1"))
	require.NoError(t, e.AddOffer(&employee.JobOffer{
		VacancyID: "V1", UIC: "W6CJBB", PLN: "201A", Grade: 12, Location: "KC",
	}))

	require.NoError(t, svc.Step(e, monday))

	assert.Equal(t, employee.StatusAssigned, e.Status)
	assert.Nil(t, e.AcceptedOffer)
	assert.Empty(t, e.Offers)
	assert.Equal(t, []string{"V1"}, board.declined)
}

func TestUnassignedAcceptsMoveAsPCS(t *testing.T) {
	t.Parallel()

	board := &fakeBoard{}
	dest := unit.New("002", "W6CJBB", "2d Analysis Bn")
	svc := testService(board, fakeUnits{"W6CJBB": dest})

	e := employee.New("E0002", monday)
	e.Location = "DC"
	require.NoError(t, e.RecordApplication("V1"))
	require.NoError(t, e.AddOffer(&employee.JobOffer{
		VacancyID: "V1", UIC: "W6CJBB", PLN: "201A", Grade: 7, Location: "KC",
	}))

	require.NoError(t, svc.Step(e, monday))
	assert.Equal(t, employee.StatusPCS, e.Status)
	assert.Equal(t, []string{e.UPI}, dest.Inbound)
}

func TestAcceptWithdrawsOtherApplications(t *testing.T) {
	t.Parallel()

	board := &fakeBoard{}
	dest := unit.New("002", "W6CJBB", "2d Analysis Bn")
	svc := testService(board, fakeUnits{"W6CJBB": dest})

	e := employee.New("E0002", monday)
	e.Location = "DC"
	require.NoError(t, e.RecordApplication("V1"))
	require.NoError(t, e.RecordApplication("V2"))
	require.NoError(t, e.AddOffer(&employee.JobOffer{
		VacancyID: "V1", UIC: "W6CJBB", PLN: "201A", Grade: 12, Location: "DC",
	}))

	require.NoError(t, svc.Step(e, monday))

	assert.Equal(t, []string{"V2"}, board.withdrawn)
	assert.Equal(t, employee.ApplicationWithdrawn, e.Applications["V2"])
}

func TestInTransitEmployeeIdles(t *testing.T) {
	t.Parallel()

	board := &fakeBoard{listings: []*vacancy.Announcement{
		{ID: "V9", Grade: 15, Location: "DC", Status: vacancy.StatusOpen},
	}}
	svc := testService(board, fakeUnits{})

	e := rosterEmployee(monday)
	e.Status = employee.StatusPromoted
	dwell := e.Dwell

	require.NoError(t, svc.Step(e, monday))
	assert.Equal(t, dwell, e.Dwell)
	assert.Empty(t, board.applied)
}
