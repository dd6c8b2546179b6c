package personnel

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/forcemodel/forcesim-backend-go/internal/domain/employee"
	"github.com/forcemodel/forcesim-backend-go/internal/domain/unit"
	"github.com/forcemodel/forcesim-backend-go/internal/domain/vacancy"
	"github.com/forcemodel/forcesim-backend-go/internal/pkg/experience"
	"github.com/forcemodel/forcesim-backend-go/internal/pkg/paytable"
	"github.com/forcemodel/forcesim-backend-go/internal/pkg/taskgen"
)

// Board is the slice of the vacancy market an individual employee
// interacts with.
type Board interface {
	OpenListings() []*vacancy.Announcement
	Apply(vacancyID string, e *employee.Employee) error
	AcceptOffer(vacancyID string) error
	DeclineOffer(vacancyID, upi string) error
	Withdraw(vacancyID, upi string) error
}

// UnitDirectory resolves UICs; implemented by the enterprise engine.
type UnitDirectory interface {
	Unit(uic string) (*unit.Unit, bool)
}

type Config struct {
	DecayFactor        float64 // daily experience multiplier while off a billet
	RetirementTISYears float64
	RetirementAge      float64
	MinApplyDwellDays  int
}

func DefaultConfig() Config {
	return Config{
		DecayFactor:        0.985,
		RetirementTISYears: 20,
		RetirementAge:      57,
		MinApplyDwellDays:  365,
	}
}

// Service runs the daily behavior of one employee: aging and pay clocks,
// task work, experience decay, vacancy scanning and offer evaluation.
type Service struct {
	cfg   Config
	board Board
	units UnitDirectory
	pay   *paytable.Table
	tasks *taskgen.Generator
	curve *experience.LearningCurve
	rng   *rand.Rand
	log   *slog.Logger
}

func New(cfg Config, board Board, units UnitDirectory, pay *paytable.Table, tasks *taskgen.Generator, curve *experience.LearningCurve, rng *rand.Rand, log *slog.Logger) *Service {
	return &Service{
		cfg:   cfg,
		board: board,
		units: units,
		pay:   pay,
		tasks: tasks,
		curve: curve,
		rng:   rng,
		log:   log,
	}
}

// Step advances one employee by one simulated day.
func (s *Service) Step(e *employee.Employee, now time.Time) error {
	if e.Status.Terminal() {
		// Off-book decay for the cleanup day before removal.
		s.decay(e)
		return nil
	}
	// In transit between billets; the destination unit picks them up.
	if e.Status == employee.StatusPromoted || e.Status == employee.StatusPCS {
		return nil
	}

	if e.Status.Active() {
		s.clockDay(e, now)
		if isWeekday(now) {
			s.workTask(e, now)
		}
	} else {
		s.decay(e)
	}

	if err := s.scanVacancies(e, now); err != nil {
		return err
	}
	return s.evaluateOffers(e, now)
}

// clockDay advances dwell and step tenure, flags retirement eligibility
// and applies within-grade increases.
func (s *Service) clockDay(e *employee.Employee, now time.Time) {
	e.Dwell++
	e.DaysInStep++

	if !e.RetireEligible &&
		e.TimeInService(now) > s.cfg.RetirementTISYears &&
		e.Age(now) > s.cfg.RetirementAge {
		e.RetireEligible = true
		s.log.Info("retirement eligible", "upi", e.UPI, "tis", fmt.Sprintf("%.1f", e.TimeInService(now)))
	}

	if next := paytable.NextStep(e.Step, e.DaysInStep); next != e.Step {
		e.Step = next
		e.DaysInStep = 0
		s.refreshSalary(e, now)
		s.log.Debug("within-grade increase", "upi", e.UPI, "grade", e.Grade, "step", e.Step)
	}
}

// refreshSalary re-prices the employee at their current locality, grade
// and step.
func (s *Service) refreshSalary(e *employee.Employee, now time.Time) {
	sal, err := s.pay.Salary(e.Location, e.Grade, e.Step)
	if err != nil {
		s.log.Warn("salary lookup failed", "upi", e.UPI, "location", e.Location, "grade", e.Grade, "error", err)
		return
	}
	e.UpdateSalary(now, sal)
}

// workTask draws a task aligned with the unit's focus areas and clocks
// effort against it. Skills the task exercises grow; the rest atrophy.
func (s *Service) workTask(e *employee.Employee, now time.Time) {
	u, ok := s.units.Unit(e.UIC)
	if !ok {
		return
	}
	task := s.tasks.NewTask(now, u.GeoFocus, u.FuncFocus)

	capacity := s.curve.MaxChunksPerDay() * s.curve.Level(e.Chunks)
	_, dFun, _ := task.Apply(e.GeoExp.Level(task.RegionFocus), capacity)
	e.Chunks += dFun

	worked := make(map[int]bool, len(task.Skills))
	for _, sk := range task.Skills {
		worked[sk] = true
		e.FuncExp.Increment(sk)
	}
	for i := 0; i < e.FuncExp.Len(); i++ {
		if !worked[i] {
			e.FuncExp.Decrement(i)
		}
	}
	for i := 0; i < e.GeoExp.Len(); i++ {
		if i == task.RegionFocus {
			e.GeoExp.Increment(i)
		} else {
			e.GeoExp.Decrement(i)
		}
	}
	s.tasks.Close(task.ID, now)
}

func (s *Service) decay(e *employee.Employee) {
	e.FuncExp.Scale(s.cfg.DecayFactor)
	e.GeoExp.Scale(s.cfg.DecayFactor)
}

// scanVacancies browses the open partition in random order and submits
// applications the employee's situation permits.
func (s *Service) scanVacancies(e *employee.Employee, now time.Time) error {
	listings := s.board.OpenListings()
	sort.Slice(listings, func(i, j int) bool { return listings[i].ID < listings[j].ID })
	s.rng.Shuffle(len(listings), func(i, j int) { listings[i], listings[j] = listings[j], listings[i] })

	for _, v := range listings {
		if e.HasApplied(v.ID) || !s.wouldApply(e, v) {
			continue
		}
		if err := s.board.Apply(v.ID, e); err != nil {
			if errors.Is(err, vacancy.ErrVacancyNotFound) || errors.Is(err, vacancy.ErrNotOpen) {
				continue
			}
			return err
		}
		s.log.Debug("application submitted", "upi", e.UPI, "vacancy", v.ID, "grade", v.Grade)
	}
	return nil
}

// wouldApply encodes who chases which announcements: the unassigned
// chase anything, incumbents only chase promotions in place, and the
// non-extended additionally chase lateral moves away from their current
// locality.
func (s *Service) wouldApply(e *employee.Employee, v *vacancy.Announcement) bool {
	switch e.Status {
	case employee.StatusUnassigned:
		return true
	case employee.StatusAssigned, employee.StatusExtended:
		return v.Grade > e.Grade && v.Location == e.Location && e.Dwell > s.cfg.MinApplyDwellDays
	case employee.StatusNonExtended:
		if v.Location == e.Location {
			return v.Grade > e.Grade && e.Dwell > s.cfg.MinApplyDwellDays
		}
		return true
	default:
		return false
	}
}

// evaluateOffers reviews pending offers in random order, accepts the
// first acceptable one and declines the rest.
func (s *Service) evaluateOffers(e *employee.Employee, now time.Time) error {
	pending := e.PendingVacancyIDs()
	sort.Strings(pending)
	s.rng.Shuffle(len(pending), func(i, j int) { pending[i], pending[j] = pending[j], pending[i] })

	for _, vacID := range pending {
		offer := e.Offers[vacID]
		if offer.Status != employee.OfferPending {
			continue
		}

		next, ok := s.judgeOffer(e, offer)
		if !ok || e.AcceptedOffer != nil {
			if err := s.declineOffer(e, vacID); err != nil {
				return err
			}
			continue
		}
		if err := s.acceptOffer(e, offer, next); err != nil {
			return err
		}
	}
	return nil
}

// judgeOffer decides acceptability and the resulting lifecycle status.
// Promotions in place are always taken; moves require being unassigned
// or at the end of an overseas tour.
func (s *Service) judgeOffer(e *employee.Employee, offer *employee.JobOffer) (employee.Status, bool) {
	samePlace := offer.Location == e.Location
	promotion := offer.Grade > e.Grade

	switch e.Status {
	case employee.StatusUnassigned:
		if samePlace {
			return employee.StatusPromoted, true
		}
		return employee.StatusPCS, true
	case employee.StatusAssigned, employee.StatusExtended:
		if promotion && samePlace {
			return employee.StatusPromoted, true
		}
		return "", false
	case employee.StatusNonExtended:
		if samePlace {
			if promotion {
				return employee.StatusPromoted, true
			}
			return "", false
		}
		return employee.StatusPCS, true
	default:
		return "", false
	}
}

func (s *Service) acceptOffer(e *employee.Employee, offer *employee.JobOffer, next employee.Status) error {
	if err := e.SetStatus(next); err != nil {
		return err
	}
	offer.Status = employee.OfferAccepted
	e.AcceptedOffer = offer
	e.SetApplicationStatus(offer.VacancyID, employee.ApplicationAccepted)

	if err := s.board.AcceptOffer(offer.VacancyID); err != nil {
		return err
	}
	if dest, ok := s.units.Unit(offer.UIC); ok {
		dest.EnqueueInbound(e.UPI)
	}

	// Walk away from every other live application.
	for _, id := range e.OpenApplicationIDs() {
		if id == offer.VacancyID {
			continue
		}
		if err := s.board.Withdraw(id, e.UPI); err != nil && !errors.Is(err, vacancy.ErrVacancyNotFound) {
			return err
		}
		e.SetApplicationStatus(id, employee.ApplicationWithdrawn)
	}

	s.log.Info("offer accepted", "upi", e.UPI, "vacancy", offer.VacancyID, "uic", offer.UIC, "status", next)
	return nil
}

func (s *Service) declineOffer(e *employee.Employee, vacID string) error {
	if _, err := e.PopOffer(vacID); err != nil {
		return err
	}
	e.SetApplicationStatus(vacID, employee.ApplicationWithdrawn)
	if err := s.board.DeclineOffer(vacID, e.UPI); err != nil && !errors.Is(err, vacancy.ErrVacancyNotFound) {
		return err
	}
	s.log.Debug("offer declined", "upi", e.UPI, "vacancy", vacID)
	return nil
}

func isWeekday(now time.Time) bool {
	wd := now.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}
