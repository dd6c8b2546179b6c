package employee

import (
	"fmt"
	"time"

	"github.com/forcemodel/forcesim-backend-go/internal/pkg/experience"
)

type Status string

const (
	StatusUnassigned  Status = "unassigned"
	StatusAssigned    Status = "assigned"
	StatusExtended    Status = "extended"
	StatusNonExtended Status = "nonextended"
	StatusReleased    Status = "released"
	StatusRetired     Status = "retired"
	StatusPromoted    Status = "promoted"
	StatusPCS         Status = "pcs"
)

// Active reports whether the employee is serving in a billet under the
// normal day-to-day lifecycle.
func (s Status) Active() bool {
	return s == StatusAssigned || s == StatusExtended || s == StatusNonExtended
}

// Terminal reports whether the employee has left the workforce.
func (s Status) Terminal() bool {
	return s == StatusReleased || s == StatusRetired
}

// HoldsBillet reports whether the status implies a valid PLN linkage.
func (s Status) HoldsBillet() bool {
	return s.Active() || s == StatusPromoted
}

// transitions is the exhaustive state machine. Extended re-entering
// Extended is the re-extension case.
var transitions = map[Status][]Status{
	StatusUnassigned:  {StatusAssigned, StatusPromoted, StatusPCS},
	StatusAssigned:    {StatusExtended, StatusRetired, StatusPromoted},
	StatusExtended:    {StatusExtended, StatusNonExtended, StatusRetired, StatusPromoted},
	StatusNonExtended: {StatusReleased, StatusRetired, StatusPromoted, StatusPCS},
	StatusPromoted:    {StatusAssigned},
	StatusPCS:         {StatusAssigned},
	StatusReleased:    {},
	StatusRetired:     {},
}

func CanTransition(from, to Status) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

type ApplicationStatus string

const (
	ApplicationSubmitted ApplicationStatus = "submitted"
	ApplicationSelected  ApplicationStatus = "selected"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationWithdrawn ApplicationStatus = "withdrawn"
	ApplicationAccepted  ApplicationStatus = "accepted"
)

type OfferStatus string

const (
	OfferPending  OfferStatus = "pending"
	OfferAccepted OfferStatus = "accepted"
	OfferDeclined OfferStatus = "declined"
)

// JobOffer is the record pushed onto an employee's offer ledger when a
// vacancy selects them.
type JobOffer struct {
	VacancyID string
	UIC       string
	PLN       string
	Grade     int
	Series    int
	Location  string
	StartDate time.Time
	Status    OfferStatus
}

type Employee struct {
	UPI      string
	LastName string

	// Time attributes
	SCD        time.Time  // service computation date
	DOB        time.Time  // date of birth
	DEROS      *time.Time // set only for OCONUS assignments
	Dwell      int        // days at current billet
	DaysInStep int        // days at current pay step

	// Compensation
	PayType    string
	Grade      int
	Series     int
	Step       int
	FamilySize int
	Salary     float64

	Status         Status
	RetireEligible bool
	Initiative     float64

	// Organizational linkage: non-owning identifiers only.
	UIC        string
	PLN        string
	Location   string
	Supervisor bool

	FuncExp *experience.Set
	GeoExp  *experience.Set
	Chunks  float64 // cumulative clocked effort units driving the learning curve

	// Market ledger
	Applications  map[string]ApplicationStatus
	Offers        map[string]*JobOffer
	AcceptedOffer *JobOffer

	// Records keyed by simulation date
	SalaryHistory   map[time.Time]float64
	LocationHistory map[time.Time]string
}

func New(upi string, now time.Time) *Employee {
	return &Employee{
		UPI:             upi,
		SCD:             now,
		DOB:             now,
		Dwell:           1,
		DaysInStep:      1,
		PayType:         "GS",
		Grade:           7,
		Series:          132,
		Step:            1,
		Status:          StatusUnassigned,
		FuncExp:         experience.NewFunctional(),
		GeoExp:          experience.NewRegional(),
		Applications:    make(map[string]ApplicationStatus),
		Offers:          make(map[string]*JobOffer),
		SalaryHistory:   make(map[time.Time]float64),
		LocationHistory: make(map[time.Time]string),
	}
}

// SetStatus performs a checked state-machine transition.
func (e *Employee) SetStatus(to Status) error {
	if !CanTransition(e.Status, to) {
		return fmt.Errorf("%w: %s -> %s (upi %s)", ErrInvalidTransition, e.Status, to, e.UPI)
	}
	e.Status = to
	return nil
}

// TimeInService returns fractional years since the service computation
// date.
func (e *Employee) TimeInService(now time.Time) float64 {
	return now.Sub(e.SCD).Hours() / 24 / 365
}

// Age returns fractional years since date of birth.
func (e *Employee) Age(now time.Time) float64 {
	return now.Sub(e.DOB).Hours() / 24 / 365
}

// UpdateLocation records the old location in history, moves the employee
// and resets dwell.
func (e *Employee) UpdateLocation(now time.Time, loc string) {
	if e.Location != "" {
		e.LocationHistory[now] = e.Location
	}
	e.Dwell = 1
	e.Location = loc
}

func (e *Employee) UpdateSalary(now time.Time, salary float64) {
	e.SalaryHistory[now] = salary
	e.Salary = salary
}

func (e *Employee) HasApplied(vacancyID string) bool {
	_, ok := e.Applications[vacancyID]
	return ok
}

// RecordApplication adds a vacancy to the application ledger; applying
// twice to the same vacancy is an error.
func (e *Employee) RecordApplication(vacancyID string) error {
	if e.HasApplied(vacancyID) {
		return fmt.Errorf("%w: upi %s vacancy %s", ErrAlreadyApplied, e.UPI, vacancyID)
	}
	e.Applications[vacancyID] = ApplicationSubmitted
	return nil
}

func (e *Employee) SetApplicationStatus(vacancyID string, st ApplicationStatus) {
	if _, ok := e.Applications[vacancyID]; ok {
		e.Applications[vacancyID] = st
	}
}

// AddOffer pushes an offer onto the ledger.
func (e *Employee) AddOffer(offer *JobOffer) error {
	if _, ok := e.Offers[offer.VacancyID]; ok {
		return fmt.Errorf("%w: upi %s vacancy %s", ErrDuplicateOffer, e.UPI, offer.VacancyID)
	}
	offer.Status = OfferPending
	e.Offers[offer.VacancyID] = offer
	return nil
}

// PopOffer removes and returns an offer from the ledger.
func (e *Employee) PopOffer(vacancyID string) (*JobOffer, error) {
	offer, ok := e.Offers[vacancyID]
	if !ok {
		return nil, fmt.Errorf("%w: upi %s vacancy %s", ErrOfferNotFound, e.UPI, vacancyID)
	}
	delete(e.Offers, vacancyID)
	return offer, nil
}

// PendingVacancyIDs lists vacancies with offers still on the ledger.
func (e *Employee) PendingVacancyIDs() []string {
	ids := make([]string, 0, len(e.Offers))
	for id := range e.Offers {
		ids = append(ids, id)
	}
	return ids
}

// OpenApplicationIDs lists applications still in the submitted or
// selected state.
func (e *Employee) OpenApplicationIDs() []string {
	var ids []string
	for id, st := range e.Applications {
		if st == ApplicationSubmitted || st == ApplicationSelected {
			ids = append(ids, id)
		}
	}
	return ids
}
