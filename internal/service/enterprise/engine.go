package enterprise

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/forcemodel/forcesim-backend-go/internal/domain/employee"
	"github.com/forcemodel/forcesim-backend-go/internal/domain/unit"
	"github.com/forcemodel/forcesim-backend-go/internal/domain/vacancy"
	"github.com/forcemodel/forcesim-backend-go/internal/pkg/experience"
	"github.com/forcemodel/forcesim-backend-go/internal/pkg/geo"
	"github.com/forcemodel/forcesim-backend-go/internal/pkg/paytable"
	"github.com/forcemodel/forcesim-backend-go/internal/pkg/taskgen"
	"github.com/forcemodel/forcesim-backend-go/internal/service/market"
	"github.com/forcemodel/forcesim-backend-go/internal/service/personnel"
	"github.com/forcemodel/forcesim-backend-go/internal/service/unitops"
)

// Event is a notable state change surfaced to observers (SSE stream,
// run log).
type Event struct {
	Day     int            `json:"day"`
	Date    time.Time      `json:"date"`
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Fault is a recorded ledger inconsistency; the engine keeps running but
// every fault is preserved for inspection.
type Fault struct {
	Day     int       `json:"day"`
	Date    time.Time `json:"date"`
	Message string    `json:"message"`
}

type Config struct {
	Seed            int64
	Start           time.Time
	AvgChunksPerDay float64
	Market          market.Config
	Personnel       personnel.Config
	Unit            unitops.Config
}

func DefaultConfig() Config {
	return Config{
		Seed:            1,
		Start:           time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		AvgChunksPerDay: 1.5,
		Market:          market.DefaultConfig(),
		Personnel:       personnel.DefaultConfig(),
		Unit:            unitops.DefaultConfig(),
	}
}

// Engine is the top-level scheduler: it owns the population, the units
// and the vacancy market, and advances them one day per Step in
// employee, unit, market order.
type Engine struct {
	cfg  Config
	date time.Time
	day  int
	rng  *rand.Rand
	log  *slog.Logger

	employees map[string]*employee.Employee
	units     map[string]*unit.Unit

	board     *market.JobBoard
	personnel *personnel.Service
	unitops   *unitops.Service

	pay       *paytable.Table
	locations *geo.Registry
	tasks     *taskgen.Generator
	curve     *experience.LearningCurve

	retired    []*employee.Employee
	released   []*employee.Employee
	releasedAt map[string]int

	faults  []Fault
	onEvent func(Event)
}

func New(cfg Config, pay *paytable.Table, locations *geo.Registry, log *slog.Logger) *Engine {
	rng := rand.New(rand.NewSource(cfg.Seed))
	curve := experience.NewLearningCurve(cfg.AvgChunksPerDay)
	tasks := taskgen.NewGenerator(rng)

	g := &Engine{
		cfg:        cfg,
		date:       cfg.Start,
		rng:        rng,
		log:        log,
		employees:  make(map[string]*employee.Employee),
		units:      make(map[string]*unit.Unit),
		pay:        pay,
		locations:  locations,
		tasks:      tasks,
		curve:      curve,
		releasedAt: make(map[string]int),
	}

	g.board = market.NewJobBoard(cfg.Market, g, locations, rng, log)
	g.personnel = personnel.New(cfg.Personnel, g.board, g, pay, tasks, curve, rng, log)
	g.unitops = unitops.New(cfg.Unit, g.board, g, pay, locations, rng, log)

	g.board.SetHooks(market.Hooks{
		Offered: func(v *vacancy.Announcement, upi string) {
			g.emit("offer_extended", map[string]any{"vacancy": v.ID, "upi": upi, "uic": v.UIC})
		},
		Cancelled: func(v *vacancy.Announcement) {
			g.emit("vacancy_cancelled", map[string]any{"vacancy": v.ID, "uic": v.UIC, "pln": v.PLN})
		},
		Completed: func(v *vacancy.Announcement) {
			g.emit("vacancy_completed", map[string]any{"vacancy": v.ID, "uic": v.UIC, "upi": v.Selected})
		},
	})
	g.unitops.SetHooks(unitops.Hooks{
		Arrived: func(u *unit.Unit, e *employee.Employee) {
			g.emit("arrival", map[string]any{"uic": u.UIC, "upi": e.UPI, "pln": e.PLN, "grade": e.Grade})
		},
		Extended: func(u *unit.Unit, e *employee.Employee) {
			g.emit("tour_extended", map[string]any{"uic": u.UIC, "upi": e.UPI})
		},
		Retired: func(u *unit.Unit, e *employee.Employee) {
			g.onRetired(u, e)
		},
		Released: func(u *unit.Unit, e *employee.Employee) {
			g.onReleased(u, e)
		},
		Fault: func(err error) { g.recordFault(err) },
	})
	return g
}

// SetEventHandler installs the observer for engine events. Must be set
// before the first Step.
func (g *Engine) SetEventHandler(fn func(Event)) { g.onEvent = fn }

func (g *Engine) emit(typ string, payload map[string]any) {
	if g.onEvent == nil {
		return
	}
	g.onEvent(Event{Day: g.day, Date: g.date, Type: typ, Payload: payload})
}

func (g *Engine) recordFault(err error) {
	g.faults = append(g.faults, Fault{Day: g.day, Date: g.date, Message: err.Error()})
	g.emit("fault", map[string]any{"message": err.Error()})
}

// Employee implements the market and unit directory.
func (g *Engine) Employee(upi string) (*employee.Employee, bool) {
	e, ok := g.employees[upi]
	return e, ok
}

// Unit implements the market and unit directory.
func (g *Engine) Unit(uic string) (*unit.Unit, bool) {
	u, ok := g.units[uic]
	return u, ok
}

// AddUnit registers a unit before or during a run.
func (g *Engine) AddUnit(u *unit.Unit) error {
	if _, ok := g.units[u.UIC]; ok {
		return fmt.Errorf("engine: duplicate uic %s", u.UIC)
	}
	g.units[u.UIC] = u
	for upi, e := range u.Roster {
		g.employees[upi] = e
	}
	return nil
}

// AddEmployee registers an employee with the scheduler.
func (g *Engine) AddEmployee(e *employee.Employee) error {
	if _, ok := g.employees[e.UPI]; ok {
		return fmt.Errorf("engine: duplicate upi %s", e.UPI)
	}
	g.employees[e.UPI] = e
	return nil
}

func (g *Engine) onRetired(u *unit.Unit, e *employee.Employee) {
	// Retirees leave the population the day they retire.
	delete(g.employees, e.UPI)
	g.retired = append(g.retired, e)
	g.emit("retirement", map[string]any{"uic": u.UIC, "upi": e.UPI, "grade": e.Grade})
}

func (g *Engine) onReleased(u *unit.Unit, e *employee.Employee) {
	// The released linger one more day before leaving the population.
	g.releasedAt[e.UPI] = g.day
	g.emit("release", map[string]any{"uic": u.UIC, "upi": e.UPI})
}

// Step advances the whole simulation by one day.
func (g *Engine) Step() error {
	g.day++
	g.date = g.date.AddDate(0, 0, 1)

	for _, upi := range g.shuffledEmployees() {
		e, ok := g.employees[upi]
		if !ok {
			continue
		}
		if err := g.personnel.Step(e, g.date); err != nil {
			return fmt.Errorf("day %d upi %s: %w", g.day, upi, err)
		}
	}

	for _, uic := range g.shuffledUnits() {
		if err := g.unitops.Step(g.units[uic], g.date); err != nil {
			return fmt.Errorf("day %d uic %s: %w", g.day, uic, err)
		}
	}

	if err := g.board.Step(g.date); err != nil {
		return fmt.Errorf("day %d market: %w", g.day, err)
	}

	g.sweepReleased()
	g.emit("day_complete", map[string]any{
		"population": len(g.employees),
		"open":       len(g.board.OpenListings()),
	})
	return nil
}

// Advance runs n consecutive steps.
func (g *Engine) Advance(n int) error {
	for i := 0; i < n; i++ {
		if err := g.Step(); err != nil {
			return err
		}
	}
	return nil
}

// sweepReleased moves employees released on an earlier day out of the
// population; they get one lingering day for final decay.
func (g *Engine) sweepReleased() {
	for upi, day := range g.releasedAt {
		if g.day <= day {
			continue
		}
		if e, ok := g.employees[upi]; ok {
			g.released = append(g.released, e)
			delete(g.employees, upi)
		}
		delete(g.releasedAt, upi)
	}
}

func (g *Engine) shuffledEmployees() []string {
	upis := make([]string, 0, len(g.employees))
	for upi := range g.employees {
		upis = append(upis, upi)
	}
	sort.Strings(upis)
	g.rng.Shuffle(len(upis), func(i, j int) { upis[i], upis[j] = upis[j], upis[i] })
	return upis
}

func (g *Engine) shuffledUnits() []string {
	uics := make([]string, 0, len(g.units))
	for uic := range g.units {
		uics = append(uics, uic)
	}
	sort.Strings(uics)
	g.rng.Shuffle(len(uics), func(i, j int) { uics[i], uics[j] = uics[j], uics[i] })
	return uics
}

func (g *Engine) Date() time.Time { return g.date }
func (g *Engine) Day() int        { return g.day }

// Population is the count of employees still under the scheduler.
func (g *Engine) Population() int { return len(g.employees) }

// Units returns the registered units sorted by UIC.
func (g *Engine) Units() []*unit.Unit {
	out := make([]*unit.Unit, 0, len(g.units))
	for _, u := range g.units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UIC < out[j].UIC })
	return out
}

// Employees returns the population sorted by UPI.
func (g *Engine) Employees() []*employee.Employee {
	out := make([]*employee.Employee, 0, len(g.employees))
	for _, e := range g.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UPI < out[j].UPI })
	return out
}

// Vacancies returns the market partition for a lifecycle stage, sorted
// by announcement ID.
func (g *Engine) Vacancies(stage vacancy.Stage) []*vacancy.Announcement {
	out := g.board.Listings(stage)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (g *Engine) Board() *market.JobBoard { return g.board }

// Retired returns the retirees collected so far.
func (g *Engine) Retired() []*employee.Employee { return g.retired }

// Released returns the released employees collected so far.
func (g *Engine) Released() []*employee.Employee { return g.released }

func (g *Engine) Faults() []Fault { return g.faults }
