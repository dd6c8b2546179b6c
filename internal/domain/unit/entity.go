package unit

import (
	"fmt"
	"time"

	"github.com/forcemodel/forcesim-backend-go/internal/domain/billet"
	"github.com/forcemodel/forcesim-backend-go/internal/domain/employee"
)

// HiringPolicy weights functional versus geographic experience in the
// ranking algorithm. The weights always sum to 1.
type HiringPolicy struct {
	FuncWeight float64
	GeoWeight  float64
}

// NewHiringPolicy builds a normalized policy from the functional weight.
func NewHiringPolicy(funcWeight float64) HiringPolicy {
	return HiringPolicy{FuncWeight: funcWeight, GeoWeight: 1 - funcWeight}
}

// Unit owns a TDA (billets keyed by para-line) and the roster of
// employees filling them (keyed by UPI).
type Unit struct {
	CmdNo string
	UIC   string
	Name  string

	Policy    HiringPolicy
	FuncFocus int // primary functional skill worked by this unit
	GeoFocus  int // primary region worked by this unit

	TDA    map[string]*billet.Billet
	Roster map[string]*employee.Employee

	// OpenReqs maps advertised vacancy IDs to their para-lines.
	OpenReqs map[string]string

	// Inbound holds UPIs whose accepted offer names this unit as the
	// destination, awaiting reconciliation on the next unit step.
	Inbound []string

	// Point-in-time series recorded each step.
	CivPay      []float64
	FillRate    []float64
	RosterSizes []int
	TDASizes    []int

	// RelocationCosts accumulates PCS move costs charged to this unit.
	RelocationCosts float64
}

func New(cmdNo, uic, name string) *Unit {
	return &Unit{
		CmdNo:    cmdNo,
		UIC:      uic,
		Name:     name,
		Policy:   NewHiringPolicy(0.5),
		TDA:      make(map[string]*billet.Billet),
		Roster:   make(map[string]*employee.Employee),
		OpenReqs: make(map[string]string),
	}
}

// SetHiringPolicy installs weights; a pair that does not sum to 1 is
// renormalized from the functional weight, as the original policy setter
// did.
func (u *Unit) SetHiringPolicy(funcWeight, geoWeight float64) {
	if funcWeight+geoWeight != 1.0 {
		u.Policy = NewHiringPolicy(funcWeight)
		return
	}
	u.Policy = HiringPolicy{FuncWeight: funcWeight, GeoWeight: geoWeight}
}

// InitTDA places a billet at its para-line and, when an incumbent is
// supplied, performs the assignment linkage immediately.
func (u *Unit) InitTDA(pln string, b *billet.Billet, incumbent *employee.Employee, now time.Time) error {
	if _, ok := u.TDA[pln]; ok {
		return fmt.Errorf("%w: uic %s pln %s", ErrDuplicateParaLine, u.UIC, pln)
	}
	if b.Status == "" {
		b.Status = billet.StatusVacant
	}
	u.TDA[pln] = b
	if incumbent == nil {
		return nil
	}
	return u.Assign(pln, incumbent, now)
}

// Assign performs the occupancy linkage: billet filled, roster entry
// added, employee pointed at this unit and para-line with dwell reset.
// The employee must not already hold a billet anywhere.
func (u *Unit) Assign(pln string, e *employee.Employee, now time.Time) error {
	b, ok := u.TDA[pln]
	if !ok {
		return fmt.Errorf("%w: uic %s pln %s", ErrBilletNotFound, u.UIC, pln)
	}
	if e.PLN != "" {
		return fmt.Errorf("%w: upi %s already at %s/%s", employee.ErrAlreadyAssigned, e.UPI, e.UIC, e.PLN)
	}
	if err := b.Fill(e.UPI); err != nil {
		return err
	}
	if err := e.SetStatus(employee.StatusAssigned); err != nil {
		b.Vacate()
		return err
	}

	u.Roster[e.UPI] = e
	e.UIC = u.UIC
	e.PLN = pln
	e.Supervisor = b.Supervisor
	if e.Location != b.Location {
		e.UpdateLocation(now, b.Location)
	} else {
		e.Dwell = 1
	}
	return nil
}

// Remove vacates the employee's billet and drops the roster entry. The
// caller decides what happens to the employee afterwards.
func (u *Unit) Remove(upi string) (*employee.Employee, error) {
	e, ok := u.Roster[upi]
	if !ok {
		return nil, fmt.Errorf("%w: uic %s upi %s", employee.ErrNotInRoster, u.UIC, upi)
	}
	if b, ok := u.TDA[e.PLN]; ok && b.Occupant == upi {
		b.Vacate()
	}
	delete(u.Roster, upi)
	e.PLN = ""
	e.UIC = ""
	return e, nil
}

// Extend re-signs an OCONUS employee: status Extended, dwell reset, and
// the estimated return date pushed back two years.
func (u *Unit) Extend(upi string) error {
	e, ok := u.Roster[upi]
	if !ok {
		return fmt.Errorf("%w: uic %s upi %s", employee.ErrNotInRoster, u.UIC, upi)
	}
	if e.DEROS == nil {
		return fmt.Errorf("%w: upi %s has no DEROS", ErrNotOverseas, upi)
	}
	if err := e.SetStatus(employee.StatusExtended); err != nil {
		return err
	}
	e.Dwell = 1
	deros := e.DEROS.AddDate(2, 0, 0)
	e.DEROS = &deros
	return nil
}

// RecordCivPay appends the roster's average daily pay burden (annual
// salaries over 260 working days).
func (u *Unit) RecordCivPay() {
	var total float64
	for _, e := range u.Roster {
		total += e.Salary
	}
	u.CivPay = append(u.CivPay, total/260)
}

// RecordFillRate appends roster size over TDA size along with the raw
// sizes for that step; an empty TDA records zero rather than dividing.
func (u *Unit) RecordFillRate() {
	u.RosterSizes = append(u.RosterSizes, len(u.Roster))
	u.TDASizes = append(u.TDASizes, len(u.TDA))
	if len(u.TDA) == 0 {
		u.FillRate = append(u.FillRate, 0)
		return
	}
	u.FillRate = append(u.FillRate, float64(len(u.Roster))/float64(len(u.TDA)))
}

// EnqueueInbound registers an accepted-offer arrival for the next step.
func (u *Unit) EnqueueInbound(upi string) {
	u.Inbound = append(u.Inbound, upi)
}

// DrainInbound returns and clears the pending arrivals.
func (u *Unit) DrainInbound() []string {
	in := u.Inbound
	u.Inbound = nil
	return in
}

// CheckConsistency returns one error per billet/roster linkage violation:
// filled billets whose occupant is missing from the roster or points at a
// different para-line, and roster entries without a billet.
func (u *Unit) CheckConsistency() []error {
	var errs []error
	for pln, b := range u.TDA {
		if !b.Consistent() {
			errs = append(errs, fmt.Errorf("%w: uic %s pln %s status %s occupant %q",
				ErrLedgerInconsistent, u.UIC, pln, b.Status, b.Occupant))
			continue
		}
		if b.Occupant == "" {
			continue
		}
		e, ok := u.Roster[b.Occupant]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: uic %s pln %s occupant %s not in roster",
				ErrLedgerInconsistent, u.UIC, pln, b.Occupant))
			continue
		}
		if e.PLN != pln || e.UIC != u.UIC {
			errs = append(errs, fmt.Errorf("%w: uic %s pln %s occupant %s linked to %s/%s",
				ErrLedgerInconsistent, u.UIC, pln, b.Occupant, e.UIC, e.PLN))
		}
	}
	for upi, e := range u.Roster {
		if _, ok := u.TDA[e.PLN]; !ok {
			errs = append(errs, fmt.Errorf("%w: uic %s roster upi %s has no billet at pln %q",
				ErrLedgerInconsistent, u.UIC, upi, e.PLN))
		}
	}
	return errs
}
