package unitops

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/forcemodel/forcesim-backend-go/internal/domain/billet"
	"github.com/forcemodel/forcesim-backend-go/internal/domain/employee"
	"github.com/forcemodel/forcesim-backend-go/internal/domain/unit"
	"github.com/forcemodel/forcesim-backend-go/internal/domain/vacancy"
	"github.com/forcemodel/forcesim-backend-go/internal/pkg/geo"
	"github.com/forcemodel/forcesim-backend-go/internal/pkg/paytable"
	"github.com/forcemodel/forcesim-backend-go/internal/service/market"
)

// Board is the slice of the vacancy market a unit drives: posting
// requisitions and confirming arrivals.
type Board interface {
	Advertise(now time.Time, req market.AdvertiseRequest) *vacancy.Announcement
	Complete(vacancyID string, now time.Time) error
}

// Directory resolves employees and sibling units; implemented by the
// enterprise engine.
type Directory interface {
	Employee(upi string) (*employee.Employee, bool)
	Unit(uic string) (*unit.Unit, bool)
}

// Hooks are optional observer callbacks for roster events.
type Hooks struct {
	Arrived  func(u *unit.Unit, e *employee.Employee)
	Extended func(u *unit.Unit, e *employee.Employee)
	Retired  func(u *unit.Unit, e *employee.Employee)
	Released func(u *unit.Unit, e *employee.Employee)
	Fault    func(err error)
}

type Config struct {
	RetireDailyProb   float64 // daily retirement draw once eligible
	ReExtendProb      float64
	TourYears         int     // initial OCONUS tour length
	ExtendDwellDays   int     // dwell before the first extension
	ReExtendDwellDays int     // dwell into an extension before the next decision
	ReleaseDwellDays  int     // dwell a non-extended employee serves before release
	RelocRatePerKm    float64 // relocation cost per kilometer moved
}

func DefaultConfig() Config {
	return Config{
		RetireDailyProb:   0.20,
		ReExtendProb:      0.95,
		TourYears:         3,
		ExtendDwellDays:   3 * 365,
		ReExtendDwellDays: 365 + 365/2,
		ReleaseDwellDays:  2 * 365,
		RelocRatePerKm:    2.5,
	}
}

// Service runs the daily unit cycle: confirm inbound arrivals, walk the
// roster's lifecycle transitions, record stats and re-advertise vacant
// billets.
type Service struct {
	cfg       Config
	board     Board
	dir       Directory
	pay       *paytable.Table
	locations *geo.Registry
	rng       *rand.Rand
	log       *slog.Logger
	hooks     Hooks
}

func New(cfg Config, board Board, dir Directory, pay *paytable.Table, locations *geo.Registry, rng *rand.Rand, log *slog.Logger) *Service {
	return &Service{
		cfg:       cfg,
		board:     board,
		dir:       dir,
		pay:       pay,
		locations: locations,
		rng:       rng,
		log:       log,
	}
}

func (s *Service) SetHooks(h Hooks) { s.hooks = h }

func (s *Service) fault(err error) {
	s.log.Error("ledger fault", "error", err)
	if s.hooks.Fault != nil {
		s.hooks.Fault(err)
	}
}

// Step advances one unit by one simulated day.
func (s *Service) Step(u *unit.Unit, now time.Time) error {
	if err := s.reconcileInbound(u, now); err != nil {
		return err
	}
	if err := s.stepRoster(u, now); err != nil {
		return err
	}
	u.RecordCivPay()
	u.RecordFillRate()
	if err := s.advertiseVacancies(u, now); err != nil {
		return err
	}
	for _, err := range u.CheckConsistency() {
		s.fault(err)
	}
	return nil
}

// reconcileInbound picks up accepted-offer arrivals whose report date has
// come: release from the losing unit, apply the offered grade, seat them
// and settle the vacancy. Arrivals not yet due stay queued.
func (s *Service) reconcileInbound(u *unit.Unit, now time.Time) error {
	for _, upi := range u.DrainInbound() {
		e, ok := s.dir.Employee(upi)
		if !ok {
			s.fault(fmt.Errorf("inbound upi %s unknown to directory (uic %s)", upi, u.UIC))
			continue
		}
		offer := e.AcceptedOffer
		if offer == nil {
			s.fault(fmt.Errorf("inbound upi %s has no accepted offer (uic %s)", upi, u.UIC))
			continue
		}
		if now.Before(offer.StartDate) {
			u.EnqueueInbound(upi)
			continue
		}
		if err := s.seat(u, e, offer, now); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) seat(u *unit.Unit, e *employee.Employee, offer *employee.JobOffer, now time.Time) error {
	// Release from the losing billet first so the single-roster rule
	// holds no matter which unit steps first.
	if e.PLN != "" {
		origin, ok := s.dir.Unit(e.UIC)
		if !ok {
			return fmt.Errorf("%w: losing uic %s for upi %s", unit.ErrUnitNotFound, e.UIC, e.UPI)
		}
		if _, err := origin.Remove(e.UPI); err != nil {
			return err
		}
	}

	if offer.Grade > e.Grade {
		e.Grade = offer.Grade
		e.Step = paytable.MinStep
		e.DaysInStep = 0
	}

	moved := e.Location != offer.Location
	if moved {
		s.chargeRelocation(u, e, offer.Location)
	}

	if err := u.Assign(offer.PLN, e, now); err != nil {
		return err
	}

	if s.locations.IsOCONUS(offer.Location) {
		deros := now.AddDate(s.cfg.TourYears, 0, -1)
		e.DEROS = &deros
	} else {
		e.DEROS = nil
	}

	if sal, err := s.pay.Salary(e.Location, e.Grade, e.Step); err == nil {
		e.UpdateSalary(now, sal)
	} else {
		s.log.Warn("salary lookup failed", "upi", e.UPI, "location", e.Location, "grade", e.Grade, "error", err)
	}

	e.AcceptedOffer = nil
	if _, err := e.PopOffer(offer.VacancyID); err != nil {
		s.fault(err)
	}

	if err := s.board.Complete(offer.VacancyID, now); err != nil {
		return err
	}
	delete(u.OpenReqs, offer.VacancyID)

	s.log.Info("arrival seated", "uic", u.UIC, "pln", offer.PLN, "upi", e.UPI, "grade", e.Grade, "moved", moved)
	if s.hooks.Arrived != nil {
		s.hooks.Arrived(u, e)
	}
	return nil
}

// chargeRelocation books the move cost against the gaining unit: a
// per-kilometer rate plus the destination's fixed added cost.
func (s *Service) chargeRelocation(u *unit.Unit, e *employee.Employee, toLoc string) {
	dist, err := s.locations.Distance(e.Location, toLoc)
	if err != nil {
		s.log.Warn("relocation distance unknown", "upi", e.UPI, "from", e.Location, "to", toLoc, "error", err)
		return
	}
	cost := dist * s.cfg.RelocRatePerKm
	if loc, err := s.locations.Get(toLoc); err == nil {
		cost += loc.AddedCost
	}
	u.RelocationCosts += cost
}

// stepRoster walks the roster in random order applying retirement draws
// and the OCONUS tour ladder.
func (s *Service) stepRoster(u *unit.Unit, now time.Time) error {
	upis := make([]string, 0, len(u.Roster))
	for upi := range u.Roster {
		upis = append(upis, upi)
	}
	sort.Strings(upis)
	s.rng.Shuffle(len(upis), func(i, j int) { upis[i], upis[j] = upis[j], upis[i] })

	for _, upi := range upis {
		e := u.Roster[upi]
		// Accepted elsewhere; the gaining unit collects them.
		if e.Status == employee.StatusPromoted || e.Status == employee.StatusPCS {
			continue
		}
		if e.Status.Terminal() {
			s.fault(fmt.Errorf("%w: uic %s upi %s on roster with status %s", unit.ErrLedgerInconsistent, u.UIC, upi, e.Status))
			continue
		}

		if e.RetireEligible && s.rng.Float64() < s.cfg.RetireDailyProb {
			if err := s.retire(u, e); err != nil {
				return err
			}
			continue
		}

		if e.DEROS != nil {
			if err := s.stepTour(u, e); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Service) retire(u *unit.Unit, e *employee.Employee) error {
	if err := e.SetStatus(employee.StatusRetired); err != nil {
		return err
	}
	if _, err := u.Remove(e.UPI); err != nil {
		return err
	}
	s.log.Info("retirement", "uic", u.UIC, "upi", e.UPI, "grade", e.Grade)
	if s.hooks.Retired != nil {
		s.hooks.Retired(u, e)
	}
	return nil
}

// stepTour advances the overseas tour ladder: extend at tour end, decide
// again mid-extension, and release those who declined to extend once
// their final stretch runs out.
func (s *Service) stepTour(u *unit.Unit, e *employee.Employee) error {
	switch e.Status {
	case employee.StatusAssigned:
		if e.Dwell >= s.cfg.ExtendDwellDays {
			if err := u.Extend(e.UPI); err != nil {
				return err
			}
			s.log.Info("tour extended", "uic", u.UIC, "upi", e.UPI, "deros", e.DEROS.Format(time.DateOnly))
			if s.hooks.Extended != nil {
				s.hooks.Extended(u, e)
			}
		}
	case employee.StatusExtended:
		if e.Dwell >= s.cfg.ReExtendDwellDays {
			if s.rng.Float64() < s.cfg.ReExtendProb {
				if err := u.Extend(e.UPI); err != nil {
					return err
				}
				if s.hooks.Extended != nil {
					s.hooks.Extended(u, e)
				}
			} else {
				if err := e.SetStatus(employee.StatusNonExtended); err != nil {
					return err
				}
				e.Dwell = 1
				s.log.Info("extension declined", "uic", u.UIC, "upi", e.UPI)
			}
		}
	case employee.StatusNonExtended:
		if e.Dwell >= s.cfg.ReleaseDwellDays {
			if err := e.SetStatus(employee.StatusReleased); err != nil {
				return err
			}
			if _, err := u.Remove(e.UPI); err != nil {
				return err
			}
			s.log.Info("released at tour end", "uic", u.UIC, "upi", e.UPI)
			if s.hooks.Released != nil {
				s.hooks.Released(u, e)
			}
		}
	}
	return nil
}

// advertiseVacancies posts a requisition for every vacant billet and
// flags it as hiring so it is not double-posted.
func (s *Service) advertiseVacancies(u *unit.Unit, now time.Time) error {
	plns := make([]string, 0, len(u.TDA))
	for pln := range u.TDA {
		plns = append(plns, pln)
	}
	sort.Strings(plns)

	for _, pln := range plns {
		b := u.TDA[pln]
		if b.Status != billet.StatusVacant {
			continue
		}
		v := s.board.Advertise(now, market.AdvertiseRequest{
			UIC:      u.UIC,
			PLN:      pln,
			UPN:      b.UPN,
			Grade:    b.AuthGrade,
			Series:   b.AuthSeries,
			Location: b.Location,
			Policy:   u.Policy,
		})
		if err := b.MarkHiring(); err != nil {
			return err
		}
		u.OpenReqs[v.ID] = pln
	}
	return nil
}
