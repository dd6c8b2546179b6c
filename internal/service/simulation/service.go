package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/forcemodel/forcesim-backend-go/internal/domain/run"
	"github.com/forcemodel/forcesim-backend-go/internal/domain/vacancy"
	"github.com/forcemodel/forcesim-backend-go/internal/fixtures"
	"github.com/forcemodel/forcesim-backend-go/internal/pkg/database"
	"github.com/forcemodel/forcesim-backend-go/internal/pkg/sse"
	"github.com/forcemodel/forcesim-backend-go/internal/pkg/validator"
	"github.com/forcemodel/forcesim-backend-go/internal/repository/postgresql"
	"github.com/forcemodel/forcesim-backend-go/internal/scenario"
	"github.com/forcemodel/forcesim-backend-go/internal/service/enterprise"
)

// MaxAdvanceDays caps a single advance request.
const MaxAdvanceDays = 3650

// instance pairs run metadata with its live engine. The mutex
// serializes stepping against snapshot reads.
type instance struct {
	mu     sync.Mutex
	meta   run.Run
	engine *enterprise.Engine
}

// Service is the run registry: it creates engines from scenarios,
// advances them on demand and archives finished runs to the database.
type Service struct {
	mu   sync.RWMutex
	runs map[string]*instance

	db   *database.DB   // nil disables archival persistence
	repo run.Repository // nil disables archival persistence
	hub  *sse.Hub
	log  *slog.Logger
}

func New(db *database.DB, repo run.Repository, hub *sse.Hub, log *slog.Logger) *Service {
	return &Service{
		runs: make(map[string]*instance),
		db:   db,
		repo: repo,
		hub:  hub,
		log:  log,
	}
}

// Create builds a new run from an inline scenario document or a named
// fixture and registers it under a fresh ID.
func (s *Service) Create(ctx context.Context, req run.CreateRunRequest) (run.RunResponse, error) {
	var (
		sc  *scenario.Scenario
		err error
	)
	switch {
	case req.Scenario != "":
		sc, err = scenario.LoadString(req.Scenario)
	default:
		sc, err = fixtures.ByName(req.Fixture)
	}
	if err != nil {
		return run.RunResponse{}, err
	}
	if req.Seed != nil {
		sc.Seed = *req.Seed
	}

	engine, err := sc.Build(s.log)
	if err != nil {
		return run.RunResponse{}, err
	}

	id := uuid.NewString()
	if s.hub != nil {
		engine.SetEventHandler(func(ev enterprise.Event) {
			s.hub.Publish(id, sse.Event{RunID: id, Event: ev.Type, Data: ev})
		})
	}

	inst := &instance{
		meta: run.Run{
			ID:          id,
			Scenario:    sc.Name,
			Seed:        sc.Seed,
			StartDate:   engine.Date(),
			CurrentDate: engine.Date(),
			Status:      run.StatusActive,
			CreatedAt:   time.Now().UTC(),
		},
		engine: engine,
	}

	s.mu.Lock()
	s.runs[id] = inst
	s.mu.Unlock()

	s.log.Info("run created", "run_id", id, "scenario", sc.Name, "seed", sc.Seed)
	return s.snapshot(inst), nil
}

func (s *Service) get(id string) (*instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inst, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", run.ErrRunNotFound, id)
	}
	return inst, nil
}

// Advance steps a run forward by the requested number of days.
func (s *Service) Advance(ctx context.Context, id string, req run.AdvanceRequest) (run.RunResponse, error) {
	if req.Days < 1 || req.Days > MaxAdvanceDays {
		return run.RunResponse{}, validator.ValidationErrors{
			{Field: "days", Message: fmt.Sprintf("must be between 1 and %d", MaxAdvanceDays)},
		}
	}
	inst, err := s.get(id)
	if err != nil {
		return run.RunResponse{}, err
	}

	inst.mu.Lock()
	defer inst.mu.Unlock()
	if inst.meta.Status == run.StatusArchived {
		return run.RunResponse{}, fmt.Errorf("%w: %s", run.ErrRunArchived, id)
	}
	if err := inst.engine.Advance(req.Days); err != nil {
		return run.RunResponse{}, fmt.Errorf("advance run %s: %w", id, err)
	}
	inst.meta.CurrentDate = inst.engine.Date()
	inst.meta.Day = inst.engine.Day()
	return s.snapshotLocked(inst), nil
}

// Get returns the current state of one run.
func (s *Service) Get(ctx context.Context, id string) (run.RunResponse, error) {
	inst, err := s.get(id)
	if err != nil {
		return run.RunResponse{}, err
	}
	return s.snapshot(inst), nil
}

// List returns all registered runs ordered by creation time.
func (s *Service) List(ctx context.Context) []run.RunResponse {
	s.mu.RLock()
	insts := make([]*instance, 0, len(s.runs))
	for _, inst := range s.runs {
		insts = append(insts, inst)
	}
	s.mu.RUnlock()

	out := make([]run.RunResponse, 0, len(insts))
	for _, inst := range insts {
		out = append(out, s.snapshot(inst))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartDate.Before(out[j].StartDate)
	})
	return out
}

// Units returns per-unit snapshots with the latest recorded series
// values.
func (s *Service) Units(ctx context.Context, id string) ([]run.UnitSnapshot, error) {
	inst, err := s.get(id)
	if err != nil {
		return nil, err
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()

	units := inst.engine.Units()
	out := make([]run.UnitSnapshot, 0, len(units))
	for _, u := range units {
		snap := run.UnitSnapshot{
			UIC:             u.UIC,
			Name:            u.Name,
			RosterSize:      len(u.Roster),
			TDASize:         len(u.TDA),
			RelocationCosts: u.RelocationCosts,
			OpenReqs:        len(u.OpenReqs),
		}
		if n := len(u.CivPay); n > 0 {
			snap.CivPay = u.CivPay[n-1]
		}
		if n := len(u.FillRate); n > 0 {
			snap.FillRate = u.FillRate[n-1]
		}
		out = append(out, snap)
	}
	return out, nil
}

// Roster lists the employees of one unit, or the whole population when
// uic is empty.
func (s *Service) Roster(ctx context.Context, id, uic string) ([]run.RosterEntry, error) {
	inst, err := s.get(id)
	if err != nil {
		return nil, err
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()

	employees := inst.engine.Employees()
	out := make([]run.RosterEntry, 0, len(employees))
	for _, e := range employees {
		if uic != "" && e.UIC != uic {
			continue
		}
		entry := run.RosterEntry{
			UPI:        e.UPI,
			PLN:        e.PLN,
			Status:     string(e.Status),
			Grade:      e.Grade,
			Step:       e.Step,
			Salary:     e.Salary,
			Location:   e.Location,
			DwellDays:  e.Dwell,
			Eligible:   e.RetireEligible,
			Supervisor: e.Supervisor,
		}
		if e.DEROS != nil {
			deros := e.DEROS.Format(time.DateOnly)
			entry.DEROS = &deros
		}
		out = append(out, entry)
	}
	return out, nil
}

// Vacancies lists the market partition for a lifecycle stage; the empty
// stage defaults to open listings.
func (s *Service) Vacancies(ctx context.Context, id, stage string) ([]run.VacancySummary, error) {
	st := vacancy.Stage(stage)
	switch st {
	case "":
		st = vacancy.StageOpen
	case vacancy.StageOpen, vacancy.StageClosed, vacancy.StageCompleted:
	default:
		return nil, validator.ValidationErrors{
			{Field: "stage", Message: "must be one of open, closed, completed"},
		}
	}

	inst, err := s.get(id)
	if err != nil {
		return nil, err
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()

	listings := inst.engine.Vacancies(st)
	out := make([]run.VacancySummary, 0, len(listings))
	for _, v := range listings {
		out = append(out, run.VacancySummary{
			ID:         v.ID,
			UIC:        v.UIC,
			PLN:        v.PLN,
			Grade:      v.Grade,
			Location:   v.Location,
			Status:     string(v.Status),
			Applicants: len(v.Applicants),
			Selected:   v.Selected,
			OpenDate:   v.OpenDate.Format(time.DateOnly),
			Expires:    v.Expires.Format(time.DateOnly),
			LagDays:    v.LagDays,
			FuncWeight: v.FuncWeight,
			GeoWeight:  v.GeoWeight,
		})
	}
	return out, nil
}

// Subscribe attaches an event stream to a run.
func (s *Service) Subscribe(id string) (chan sse.Event, func(), error) {
	if _, err := s.get(id); err != nil {
		return nil, nil, err
	}
	ch, cleanup := s.hub.Subscribe(id)
	return ch, cleanup, nil
}

// Archive freezes a run and, when a repository is wired, persists its
// metadata and per-unit series in one transaction.
func (s *Service) Archive(ctx context.Context, id string) (run.RunResponse, error) {
	inst, err := s.get(id)
	if err != nil {
		return run.RunResponse{}, err
	}

	inst.mu.Lock()
	defer inst.mu.Unlock()
	if inst.meta.Status == run.StatusArchived {
		return run.RunResponse{}, fmt.Errorf("%w: %s", run.ErrRunArchived, id)
	}

	now := time.Now().UTC()
	inst.meta.Status = run.StatusArchived
	inst.meta.ArchivedAt = &now
	inst.meta.CurrentDate = inst.engine.Date()
	inst.meta.Day = inst.engine.Day()

	if s.repo != nil {
		stats := s.collectStats(inst)
		persist := func(ctx context.Context) error {
			if _, err := s.repo.Create(ctx, inst.meta); err != nil {
				return fmt.Errorf("persist run: %w", err)
			}
			if err := s.repo.InsertUnitStats(ctx, stats); err != nil {
				return fmt.Errorf("persist unit stats: %w", err)
			}
			return s.repo.MarkArchived(ctx, inst.meta)
		}
		if s.db != nil {
			err = postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
				return persist(context.WithValue(ctx, "tx", tx))
			})
		} else {
			err = persist(ctx)
		}
		if err != nil {
			inst.meta.Status = run.StatusActive
			inst.meta.ArchivedAt = nil
			return run.RunResponse{}, err
		}
	}

	s.log.Info("run archived", "run_id", id, "day", inst.meta.Day)
	return s.snapshotLocked(inst), nil
}

// collectStats flattens each unit's recorded series into archival rows.
// Series index i is the state recorded at the end of day i+1.
func (s *Service) collectStats(inst *instance) []run.UnitStat {
	var stats []run.UnitStat
	for _, u := range inst.engine.Units() {
		for i := range u.CivPay {
			stat := run.UnitStat{
				RunID:  inst.meta.ID,
				UIC:    u.UIC,
				Day:    i + 1,
				CivPay: u.CivPay[i],
			}
			if i < len(u.FillRate) {
				stat.FillRate = u.FillRate[i]
			}
			if i < len(u.RosterSizes) {
				stat.RosterSize = u.RosterSizes[i]
			}
			if i < len(u.TDASizes) {
				stat.TDASize = u.TDASizes[i]
			}
			stats = append(stats, stat)
		}
	}
	return stats
}

func (s *Service) snapshot(inst *instance) run.RunResponse {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return s.snapshotLocked(inst)
}

func (s *Service) snapshotLocked(inst *instance) run.RunResponse {
	g := inst.engine
	return run.RunResponse{
		ID:          inst.meta.ID,
		Scenario:    inst.meta.Scenario,
		Seed:        inst.meta.Seed,
		StartDate:   inst.meta.StartDate,
		CurrentDate: g.Date(),
		Day:         g.Day(),
		Status:      inst.meta.Status,
		Population:  g.Population(),
		Units:       len(g.Units()),
		OpenReqs:    len(g.Vacancies(vacancy.StageOpen)),
		Retired:     len(g.Retired()),
		Released:    len(g.Released()),
		Faults:      len(g.Faults()),
		ArchivedAt:  inst.meta.ArchivedAt,
	}
}
