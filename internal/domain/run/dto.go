package run

import "time"

// CreateRunRequest starts a run from a named fixture or an inline YAML
// scenario document. Seed overrides the scenario's seed when set.
type CreateRunRequest struct {
	Fixture  string `json:"fixture,omitempty"`
	Scenario string `json:"scenario,omitempty"`
	Seed     *int64 `json:"seed,omitempty"`
}

type AdvanceRequest struct {
	Days int `json:"days"`
}

type RunResponse struct {
	ID          string     `json:"id"`
	Scenario    string     `json:"scenario"`
	Seed        int64      `json:"seed"`
	StartDate   time.Time  `json:"start_date"`
	CurrentDate time.Time  `json:"current_date"`
	Day         int        `json:"day"`
	Status      Status     `json:"status"`
	Population  int        `json:"population"`
	Units       int        `json:"units"`
	OpenReqs    int        `json:"open_requisitions"`
	Retired     int        `json:"retired"`
	Released    int        `json:"released"`
	Faults      int        `json:"faults"`
	ArchivedAt  *time.Time `json:"archived_at,omitempty"`
}

type UnitSnapshot struct {
	UIC             string  `json:"uic"`
	Name            string  `json:"name"`
	RosterSize      int     `json:"roster_size"`
	TDASize         int     `json:"tda_size"`
	FillRate        float64 `json:"fill_rate"`
	CivPay          float64 `json:"civ_pay"`
	RelocationCosts float64 `json:"relocation_costs"`
	OpenReqs        int     `json:"open_requisitions"`
}

type RosterEntry struct {
	UPI        string  `json:"upi"`
	PLN        string  `json:"pln"`
	Status     string  `json:"status"`
	Grade      int     `json:"grade"`
	Step       int     `json:"step"`
	Salary     float64 `json:"salary"`
	Location   string  `json:"location"`
	DwellDays  int     `json:"dwell_days"`
	DEROS      *string `json:"deros,omitempty"`
	Eligible   bool    `json:"retire_eligible"`
	Supervisor bool    `json:"supervisor"`
}

type VacancySummary struct {
	ID         string  `json:"id"`
	UIC        string  `json:"uic"`
	PLN        string  `json:"pln"`
	Grade      int     `json:"grade"`
	Location   string  `json:"location"`
	Status     string  `json:"status"`
	Applicants int     `json:"applicants"`
	Selected   string  `json:"selected,omitempty"`
	OpenDate   string  `json:"open_date"`
	Expires    string  `json:"expires"`
	LagDays    int     `json:"lag_days"`
	FuncWeight float64 `json:"func_weight"`
	GeoWeight  float64 `json:"geo_weight"`
}
