package run

import "time"

type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Run is one simulation instance under the run registry.
type Run struct {
	ID          string
	Scenario    string
	Seed        int64
	StartDate   time.Time
	CurrentDate time.Time
	Day         int
	Status      Status
	CreatedAt   time.Time
	ArchivedAt  *time.Time
}

// UnitStat is one day of a unit's recorded series, flattened for
// archival.
type UnitStat struct {
	RunID      string
	UIC        string
	Day        int
	CivPay     float64
	FillRate   float64
	RosterSize int
	TDASize    int
}
