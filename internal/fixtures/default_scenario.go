package fixtures

import (
	"fmt"

	"github.com/forcemodel/forcesim-backend-go/internal/scenario"
)

// DefaultScenarioName is the fixture key accepted by the run registry.
const DefaultScenarioName = "two-unit-demo"

// gsSteps builds a ten-step band from a base rate with roughly 3%
// increments, close enough to the general-schedule shape for demo runs.
func gsSteps(base float64) []float64 {
	steps := make([]float64, 10)
	for i := range steps {
		steps[i] = base + float64(i)*base*0.031
	}
	return steps
}

// DefaultScenario is the built-in demo force: a CONUS headquarters and
// an overseas detachment competing for the same small population.
func DefaultScenario() *scenario.Scenario {
	s := &scenario.Scenario{
		Name:            DefaultScenarioName,
		Seed:            1,
		StartDate:       "2024-01-01",
		AvgChunksPerDay: 1.5,
		Locations: []scenario.LocationSpec{
			{ID: "DC", Lat: 38.9072, Lon: -77.0369, CONUS: true, MarketShare: 0.6},
			{ID: "KC", Lat: 39.0997, Lon: -94.5786, CONUS: true, MarketShare: 0.3, AddedCost: 250},
			{ID: "STUTTGART", Lat: 48.7758, Lon: 9.1829, CONUS: false, MarketShare: 0.1, AddedCost: 1800},
		},
		Units: []scenario.UnitSpec{
			{
				CmdNo: "001", UIC: "W6CJAA", Name: "1st Analysis Battalion",
				FuncWeight: 0.6, FuncFocus: 5, GeoFocus: 4,
				Billets: []scenario.BilletSpec{
					{PLN: "101A", UPN: "00331000", AMSCO: "11X", Grade: 13, Series: 132, Location: "DC", Supervisor: true, Key: true,
						Incumbent: &scenario.EmployeeSpec{UPI: "E0001", LastName: "Ashby", SCD: "2002-06-17", DOB: "1972-03-08", Grade: 13, Step: 7, FamilySize: 3, FuncSkills: []int{1, 5}, GeoRegions: []int{4}}},
					{PLN: "102A", UPN: "00331001", AMSCO: "11X", Grade: 11, Series: 132, Location: "DC",
						Incumbent: &scenario.EmployeeSpec{UPI: "E0002", LastName: "Barnes", SCD: "2015-09-01", DOB: "1990-11-23", Grade: 11, Step: 3, FamilySize: 1, FuncSkills: []int{5}, GeoRegions: []int{4}}},
					{PLN: "103A", UPN: "00331002", AMSCO: "11X", Grade: 9, Series: 132, Location: "DC"},
					{PLN: "104A", UPN: "00331003", AMSCO: "11X", Grade: 7, Series: 132, Location: "KC"},
				},
			},
			{
				CmdNo: "002", UIC: "W6CJEU", Name: "European Analysis Detachment",
				FuncWeight: 0.4, FuncFocus: 4, GeoFocus: 1,
				Billets: []scenario.BilletSpec{
					{PLN: "201A", UPN: "00332000", AMSCO: "12X", Grade: 12, Series: 132, Location: "STUTTGART", Supervisor: true,
						Incumbent: &scenario.EmployeeSpec{UPI: "E0010", LastName: "Calder", SCD: "2008-04-14", DOB: "1980-07-02", Grade: 12, Step: 5, FamilySize: 4, FuncSkills: []int{4}, GeoRegions: []int{1}}},
					{PLN: "202A", UPN: "00332001", AMSCO: "12X", Grade: 11, Series: 132, Location: "STUTTGART"},
				},
			},
		},
		Unassigned: []scenario.EmployeeSpec{
			{UPI: "E0100", LastName: "Dietrich", SCD: "2019-02-04", DOB: "1994-10-30", Grade: 7, Step: 2, Location: "DC", FuncSkills: []int{2, 5}, GeoRegions: []int{4}},
			{UPI: "E0101", LastName: "Eng", SCD: "2021-07-12", DOB: "1997-01-16", Grade: 9, Location: "KC", FuncSkills: []int{3}, GeoRegions: []int{4, 5}},
			{UPI: "E0102", LastName: "Flores", SCD: "2016-11-28", DOB: "1989-05-09", Grade: 11, Step: 2, Location: "STUTTGART", FuncSkills: []int{4, 5}, GeoRegions: []int{1, 6}},
		},
	}

	bases := []struct {
		grade int
		base  float64
	}{{7, 42000}, {9, 51000}, {11, 62000}, {12, 74000}, {13, 88000}}
	for _, loc := range []string{"DC", "KC", "STUTTGART"} {
		for _, b := range bases {
			rate := scenario.PayRateSpec{Locality: loc, Grade: b.grade, Steps: gsSteps(b.base)}
			if loc == "STUTTGART" {
				for i := range rate.Steps {
					rate.Steps[i] *= 1.05
				}
			}
			s.PayTable.Rates = append(s.PayTable.Rates, rate)
		}
	}
	return s
}

// ByName resolves a fixture scenario key.
func ByName(name string) (*scenario.Scenario, error) {
	switch name {
	case DefaultScenarioName, "", "default":
		return DefaultScenario(), nil
	default:
		return nil, fmt.Errorf("fixtures: unknown scenario %q", name)
	}
}
