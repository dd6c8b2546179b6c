package vacancy

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusOpen      Status = "open"
	StatusClosed    Status = "closed"
	StatusOffered   Status = "offered"
	StatusAccepted  Status = "accepted"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusDeclined  Status = "declined"
)

// Lifecycle stages of the market partitions.
type Stage string

const (
	StageOpen      Stage = "open"
	StageClosed    Stage = "closed"
	StageCompleted Stage = "completed"
)

// The status machine is monotone except Declined, which re-enters
// ranking.
var transitions = map[Status][]Status{
	StatusOpen:      {StatusClosed},
	StatusClosed:    {StatusOffered, StatusCancelled},
	StatusOffered:   {StatusAccepted, StatusDeclined},
	StatusDeclined:  {StatusOffered, StatusCancelled},
	StatusAccepted:  {StatusCompleted},
	StatusCompleted: {},
	StatusCancelled: {},
}

func CanTransition(from, to Status) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Announcement is an open requisition against one vacant billet.
// Applicants are UPIs in application order.
type Announcement struct {
	ID       string
	UIC      string
	PLN      string
	UPN      string
	Grade    int
	Series   int
	Location string

	OpenDate time.Time
	Expires  time.Time
	LagDays  int // administrative delay before selection is attempted

	// Hiring-policy weights of the advertising unit, captured at
	// advertisement time.
	FuncWeight float64
	GeoWeight  float64

	Status       Status
	Applicants   []string
	Selected     string
	CompleteDate *time.Time
}

// SetStatus performs a checked lifecycle transition.
func (a *Announcement) SetStatus(to Status) error {
	if !CanTransition(a.Status, to) {
		return fmt.Errorf("%w: %s -> %s (vacancy %s)", ErrInvalidTransition, a.Status, to, a.ID)
	}
	a.Status = to
	return nil
}

// AddApplicant appends a UPI to the pool. Only open announcements accept
// applicants and duplicates are rejected.
func (a *Announcement) AddApplicant(upi string) error {
	if a.Status != StatusOpen {
		return fmt.Errorf("%w: vacancy %s is %s", ErrNotOpen, a.ID, a.Status)
	}
	for _, existing := range a.Applicants {
		if existing == upi {
			return fmt.Errorf("%w: upi %s vacancy %s", ErrDuplicateApplicant, upi, a.ID)
		}
	}
	a.Applicants = append(a.Applicants, upi)
	return nil
}

// RemoveApplicant drops a UPI from the pool, preserving order.
func (a *Announcement) RemoveApplicant(upi string) {
	for i, existing := range a.Applicants {
		if existing == upi {
			a.Applicants = append(a.Applicants[:i], a.Applicants[i+1:]...)
			return
		}
	}
}

// Expired reports whether the minimum open duration has elapsed.
func (a *Announcement) Expired(now time.Time) bool {
	return now.After(a.Expires)
}

// RankEligible reports whether selection may be attempted: the listing
// must be awaiting ranking and its administrative lag elapsed.
func (a *Announcement) RankEligible(now time.Time) bool {
	if a.Status != StatusClosed && a.Status != StatusDeclined {
		return false
	}
	return now.After(a.Expires.AddDate(0, 0, a.LagDays))
}

// Settled reports whether the announcement belongs in the completed
// partition.
func (a *Announcement) Settled() bool {
	return a.Status == StatusCompleted || a.Status == StatusCancelled
}
