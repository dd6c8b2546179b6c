package scenario

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/forcemodel/forcesim-backend-go/internal/domain/billet"
	"github.com/forcemodel/forcesim-backend-go/internal/domain/employee"
	"github.com/forcemodel/forcesim-backend-go/internal/domain/unit"
	"github.com/forcemodel/forcesim-backend-go/internal/pkg/geo"
	"github.com/forcemodel/forcesim-backend-go/internal/pkg/paytable"
	"github.com/forcemodel/forcesim-backend-go/internal/pkg/validator"
	"github.com/forcemodel/forcesim-backend-go/internal/service/enterprise"
)

// Build assembles a ready-to-step engine from a validated scenario.
func (s *Scenario) Build(log *slog.Logger) (*enterprise.Engine, error) {
	start, ok := validator.IsValidDate(s.StartDate)
	if !ok {
		return nil, fmt.Errorf("scenario %s: bad start_date %q", s.Name, s.StartDate)
	}

	registry := geo.NewRegistry()
	for _, loc := range s.Locations {
		registry.Add(geo.Location{
			ID:          loc.ID,
			Lat:         loc.Lat,
			Lon:         loc.Lon,
			CONUS:       loc.CONUS,
			MarketShare: loc.MarketShare,
			AddedCost:   loc.AddedCost,
			Opportunity: loc.Opportunity,
		})
	}

	pay, err := s.buildPayTable()
	if err != nil {
		return nil, err
	}

	cfg := enterprise.DefaultConfig()
	cfg.Seed = s.Seed
	cfg.Start = start
	if s.AvgChunksPerDay > 0 {
		cfg.AvgChunksPerDay = s.AvgChunksPerDay
	}

	g := enterprise.New(cfg, pay, registry, log)

	for _, us := range s.Units {
		u := unit.New(us.CmdNo, us.UIC, us.Name)
		u.SetHiringPolicy(us.FuncWeight, 1-us.FuncWeight)
		u.FuncFocus = us.FuncFocus - 1
		u.GeoFocus = us.GeoFocus - 1

		for _, bs := range us.Billets {
			b := &billet.Billet{
				UPN:        bs.UPN,
				AMSCO:      bs.AMSCO,
				AuthGrade:  bs.Grade,
				AuthSeries: bs.Series,
				Supervisor: bs.Supervisor,
				Key:        bs.Key,
				Location:   bs.Location,
			}
			var incumbent *employee.Employee
			if bs.Incumbent != nil {
				incumbent, err = buildEmployee(bs.Incumbent, start)
				if err != nil {
					return nil, err
				}
			}
			if err := u.InitTDA(bs.PLN, b, incumbent, start); err != nil {
				return nil, fmt.Errorf("scenario %s: uic %s: %w", s.Name, us.UIC, err)
			}
			if incumbent != nil {
				if sal, err := pay.Salary(incumbent.Location, incumbent.Grade, incumbent.Step); err == nil {
					incumbent.UpdateSalary(start, sal)
				}
				// Seeded OCONUS incumbents are already mid-tour, so
				// they get the same return date a fresh arrival would.
				if registry.IsOCONUS(bs.Location) {
					deros := start.AddDate(cfg.Unit.TourYears, 0, -1)
					incumbent.DEROS = &deros
				}
			}
		}
		if err := g.AddUnit(u); err != nil {
			return nil, err
		}
	}

	for i := range s.Unassigned {
		e, err := buildEmployee(&s.Unassigned[i], start)
		if err != nil {
			return nil, err
		}
		e.Location = s.Unassigned[i].Location
		if err := g.AddEmployee(e); err != nil {
			return nil, err
		}
	}

	return g, nil
}

func (s *Scenario) buildPayTable() (*paytable.Table, error) {
	if s.PayTable.CSVPath != "" {
		f, err := os.Open(s.PayTable.CSVPath)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: pay table: %w", s.Name, err)
		}
		defer f.Close()
		return paytable.ReadCSV(f)
	}

	pay := paytable.New()
	for _, rate := range s.PayTable.Rates {
		var steps [paytable.MaxStep]float64
		copy(steps[:], rate.Steps)
		pay.SetGrade(rate.Locality, rate.Grade, steps)
	}
	return pay, nil
}

func buildEmployee(spec *EmployeeSpec, start time.Time) (*employee.Employee, error) {
	e := employee.New(spec.UPI, start)
	e.LastName = spec.LastName

	if scd, ok := validator.IsValidDate(spec.SCD); ok {
		e.SCD = scd
	}
	if dob, ok := validator.IsValidDate(spec.DOB); ok {
		e.DOB = dob
	}
	if spec.Grade != 0 {
		e.Grade = spec.Grade
	}
	if spec.Series != 0 {
		e.Series = spec.Series
	}
	if spec.Step != 0 {
		e.Step = spec.Step
	}
	e.FamilySize = spec.FamilySize

	if err := e.FuncExp.Init(spec.FuncSkills); err != nil {
		return nil, fmt.Errorf("upi %s: %w", spec.UPI, err)
	}
	if err := e.GeoExp.Init(spec.GeoRegions); err != nil {
		return nil, fmt.Errorf("upi %s: %w", spec.UPI, err)
	}
	return e, nil
}
