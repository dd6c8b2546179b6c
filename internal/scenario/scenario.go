package scenario

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/forcemodel/forcesim-backend-go/internal/pkg/experience"
	"github.com/forcemodel/forcesim-backend-go/internal/pkg/paytable"
	"github.com/forcemodel/forcesim-backend-go/internal/pkg/validator"
)

// Scenario is the YAML description of a starting force: locations, pay
// rates, units with their TDAs and incumbents, and the unassigned pool.
type Scenario struct {
	Name            string  `yaml:"name"`
	Seed            int64   `yaml:"seed"`
	StartDate       string  `yaml:"start_date"`
	AvgChunksPerDay float64 `yaml:"avg_chunks_per_day"`

	Locations  []LocationSpec `yaml:"locations"`
	PayTable   PayTableSpec   `yaml:"pay_table"`
	Units      []UnitSpec     `yaml:"units"`
	Unassigned []EmployeeSpec `yaml:"unassigned"`
}

type LocationSpec struct {
	ID          string  `yaml:"id"`
	Lat         float64 `yaml:"lat"`
	Lon         float64 `yaml:"lon"`
	CONUS       bool    `yaml:"conus"`
	MarketShare float64 `yaml:"market_share"`
	AddedCost   float64 `yaml:"added_cost"`
	Opportunity float64 `yaml:"opportunity"`
}

// PayTableSpec points at an OPM CSV export or carries inline rates.
type PayTableSpec struct {
	CSVPath string        `yaml:"csv_path"`
	Rates   []PayRateSpec `yaml:"rates"`
}

type PayRateSpec struct {
	Locality string    `yaml:"locality"`
	Grade    int       `yaml:"grade"`
	Steps    []float64 `yaml:"steps"`
}

type UnitSpec struct {
	CmdNo      string       `yaml:"cmd_no"`
	UIC        string       `yaml:"uic"`
	Name       string       `yaml:"name"`
	FuncWeight float64      `yaml:"func_weight"`
	FuncFocus  int          `yaml:"func_focus"` // 1-based skill index
	GeoFocus   int          `yaml:"geo_focus"`  // 1-based region index
	Billets    []BilletSpec `yaml:"billets"`
}

type BilletSpec struct {
	PLN        string        `yaml:"pln"`
	UPN        string        `yaml:"upn"`
	AMSCO      string        `yaml:"amsco"`
	Grade      int           `yaml:"grade"`
	Series     int           `yaml:"series"`
	Location   string        `yaml:"location"`
	Supervisor bool          `yaml:"supervisor"`
	Key        bool          `yaml:"key"`
	Incumbent  *EmployeeSpec `yaml:"incumbent"`
}

type EmployeeSpec struct {
	UPI        string `yaml:"upi"`
	LastName   string `yaml:"last_name"`
	SCD        string `yaml:"scd"`
	DOB        string `yaml:"dob"`
	Grade      int    `yaml:"grade"`
	Series     int    `yaml:"series"`
	Step       int    `yaml:"step"`
	FamilySize int    `yaml:"family_size"`
	Location   string `yaml:"location"` // unassigned only; incumbents take the billet's
	FuncSkills []int  `yaml:"func_skills"`
	GeoRegions []int  `yaml:"geo_regions"`
}

// Load parses and validates a scenario document.
func Load(r io.Reader) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("scenario: decode: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadFile reads a scenario from disk.
func LoadFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// LoadString parses a scenario from an inline YAML document.
func LoadString(doc string) (*Scenario, error) {
	return Load(strings.NewReader(doc))
}

// Validate checks the document for structural problems and collects
// every finding rather than stopping at the first.
func (s *Scenario) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(s.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "is required"})
	}
	if _, ok := validator.IsValidDate(s.StartDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "must be YYYY-MM-DD"})
	}
	if s.AvgChunksPerDay < 0 {
		errs = append(errs, validator.ValidationError{Field: "avg_chunks_per_day", Message: "must not be negative"})
	}
	if len(s.Locations) == 0 {
		errs = append(errs, validator.ValidationError{Field: "locations", Message: "at least one location is required"})
	}
	if len(s.PayTable.Rates) == 0 && validator.IsEmpty(s.PayTable.CSVPath) {
		errs = append(errs, validator.ValidationError{Field: "pay_table", Message: "needs inline rates or a csv_path"})
	}

	locIDs := make([]string, 0, len(s.Locations))
	for i, loc := range s.Locations {
		if validator.IsEmpty(loc.ID) {
			errs = append(errs, validator.ValidationError{Field: fmt.Sprintf("locations[%d].id", i), Message: "is required"})
			continue
		}
		if validator.IsInSlice(loc.ID, locIDs) {
			errs = append(errs, validator.ValidationError{Field: fmt.Sprintf("locations[%d].id", i), Message: "duplicate location id " + loc.ID})
		}
		locIDs = append(locIDs, loc.ID)
	}

	for i, rate := range s.PayTable.Rates {
		if len(rate.Steps) != paytable.MaxStep {
			errs = append(errs, validator.ValidationError{
				Field:   fmt.Sprintf("pay_table.rates[%d].steps", i),
				Message: fmt.Sprintf("needs exactly %d step rates", paytable.MaxStep),
			})
		}
	}

	var uics, upis []string
	for i, u := range s.Units {
		ref := fmt.Sprintf("units[%d]", i)
		if !validator.IsValidUIC(u.UIC) {
			errs = append(errs, validator.ValidationError{Field: ref + ".uic", Message: "must be six uppercase alphanumerics"})
		}
		if validator.IsInSlice(u.UIC, uics) {
			errs = append(errs, validator.ValidationError{Field: ref + ".uic", Message: "duplicate uic " + u.UIC})
		}
		uics = append(uics, u.UIC)
		if u.FuncWeight < 0 || u.FuncWeight > 1 {
			errs = append(errs, validator.ValidationError{Field: ref + ".func_weight", Message: "must be within [0,1]"})
		}
		if u.FuncFocus < 1 || u.FuncFocus > experience.NumFunctions {
			errs = append(errs, validator.ValidationError{Field: ref + ".func_focus", Message: fmt.Sprintf("must be within [1,%d]", experience.NumFunctions)})
		}
		if u.GeoFocus < 1 || u.GeoFocus > experience.NumRegions {
			errs = append(errs, validator.ValidationError{Field: ref + ".geo_focus", Message: fmt.Sprintf("must be within [1,%d]", experience.NumRegions)})
		}

		var plns []string
		for j, b := range u.Billets {
			bref := fmt.Sprintf("%s.billets[%d]", ref, j)
			if !validator.IsValidPLN(b.PLN) {
				errs = append(errs, validator.ValidationError{Field: bref + ".pln", Message: "invalid para-line number"})
			}
			if validator.IsInSlice(b.PLN, plns) {
				errs = append(errs, validator.ValidationError{Field: bref + ".pln", Message: "duplicate para-line " + b.PLN})
			}
			plns = append(plns, b.PLN)
			if !validator.IsInSlice(b.Location, locIDs) {
				errs = append(errs, validator.ValidationError{Field: bref + ".location", Message: "unknown location " + b.Location})
			}
			if b.Incumbent != nil {
				errs = append(errs, validateEmployee(bref+".incumbent", b.Incumbent, &upis, nil)...)
			}
		}
	}

	for i, e := range s.Unassigned {
		ref := fmt.Sprintf("unassigned[%d]", i)
		errs = append(errs, validateEmployee(ref, &s.Unassigned[i], &upis, locIDs)...)
		if validator.IsEmpty(e.Location) {
			errs = append(errs, validator.ValidationError{Field: ref + ".location", Message: "is required for the unassigned pool"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateEmployee(ref string, e *EmployeeSpec, upis *[]string, locIDs []string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if !validator.IsValidUPI(e.UPI) {
		errs = append(errs, validator.ValidationError{Field: ref + ".upi", Message: "must be a letter followed by digits"})
	}
	if validator.IsInSlice(e.UPI, *upis) {
		errs = append(errs, validator.ValidationError{Field: ref + ".upi", Message: "duplicate upi " + e.UPI})
	}
	*upis = append(*upis, e.UPI)

	if _, ok := validator.IsValidDate(e.SCD); !ok {
		errs = append(errs, validator.ValidationError{Field: ref + ".scd", Message: "must be YYYY-MM-DD"})
	}
	if _, ok := validator.IsValidDate(e.DOB); !ok {
		errs = append(errs, validator.ValidationError{Field: ref + ".dob", Message: "must be YYYY-MM-DD"})
	}
	if e.Step != 0 && (e.Step < paytable.MinStep || e.Step > paytable.MaxStep) {
		errs = append(errs, validator.ValidationError{Field: ref + ".step", Message: "step out of range"})
	}
	for _, idx := range e.FuncSkills {
		if idx < 1 || idx > experience.NumFunctions {
			errs = append(errs, validator.ValidationError{Field: ref + ".func_skills", Message: fmt.Sprintf("index %d out of range", idx)})
		}
	}
	for _, idx := range e.GeoRegions {
		if idx < 1 || idx > experience.NumRegions {
			errs = append(errs, validator.ValidationError{Field: ref + ".geo_regions", Message: fmt.Sprintf("index %d out of range", idx)})
		}
	}
	if locIDs != nil && !validator.IsEmpty(e.Location) && !validator.IsInSlice(e.Location, locIDs) {
		errs = append(errs, validator.ValidationError{Field: ref + ".location", Message: "unknown location " + e.Location})
	}
	return errs
}
