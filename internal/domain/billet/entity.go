package billet

import "fmt"

type Status string

const (
	StatusVacant Status = "vacant"
	StatusFilled Status = "filled"
	StatusHiring Status = "hiring"
)

// Billet is a single authorized position in a unit's force structure.
// Occupant is the UPI of the filling employee, never an object reference.
type Billet struct {
	UPN        string // position number
	AMSCO      string // funding stream
	AuthGrade  int
	AuthSeries int
	Supervisor bool
	Key        bool
	Location   string
	Occupant   string
	Status     Status
}

// Fill slots an employee against the billet. Occupied billets reject a
// second assignment outright.
func (b *Billet) Fill(upi string) error {
	if b.Occupant != "" {
		return fmt.Errorf("%w: upn %s occupied by %s", ErrBilletOccupied, b.UPN, b.Occupant)
	}
	b.Occupant = upi
	b.Status = StatusFilled
	return nil
}

// Vacate clears the occupant and returns the billet to Vacant so it is
// re-advertised on a later step.
func (b *Billet) Vacate() {
	b.Occupant = ""
	b.Status = StatusVacant
}

// MarkHiring flags the billet as covered by an open requisition.
func (b *Billet) MarkHiring() error {
	if b.Status != StatusVacant {
		return fmt.Errorf("%w: upn %s is %s", ErrNotVacant, b.UPN, b.Status)
	}
	b.Status = StatusHiring
	return nil
}

// CancelHiring returns a Hiring billet to Vacant after its requisition
// was cancelled.
func (b *Billet) CancelHiring() error {
	if b.Status != StatusHiring {
		return fmt.Errorf("%w: upn %s is %s", ErrNotHiring, b.UPN, b.Status)
	}
	b.Status = StatusVacant
	return nil
}

// Restructure changes the billet's authorization.
func (b *Billet) Restructure(amsco string, grade, series int) {
	b.AMSCO = amsco
	b.AuthGrade = grade
	b.AuthSeries = series
}

// Relocate moves the billet to a new locality.
func (b *Billet) Relocate(location string) {
	b.Location = location
}

// Consistent reports whether occupancy and status agree.
func (b *Billet) Consistent() bool {
	switch b.Status {
	case StatusFilled:
		return b.Occupant != ""
	case StatusVacant, StatusHiring:
		return b.Occupant == ""
	default:
		return false
	}
}
