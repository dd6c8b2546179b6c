package paytable

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	MinStep = 1
	MaxStep = 10
)

var (
	ErrLocalityNotFound = errors.New("paytable: locality not found")
	ErrGradeNotFound    = errors.New("paytable: grade not found")
	ErrStepOutOfRange   = errors.New("paytable: step out of range")
)

// Table holds annual salary rates keyed by locality, grade and step.
type Table struct {
	// locality -> grade -> [MaxStep]salary (index 0 is step 1)
	rates map[string]map[int][MaxStep]float64
}

func New() *Table {
	return &Table{rates: make(map[string]map[int][MaxStep]float64)}
}

// SetGrade installs the ten step rates for a locality/grade pair.
func (t *Table) SetGrade(locality string, grade int, steps [MaxStep]float64) {
	grades, ok := t.rates[locality]
	if !ok {
		grades = make(map[int][MaxStep]float64)
		t.rates[locality] = grades
	}
	grades[grade] = steps
}

// Salary returns the annual rate for a locality, grade and step.
func (t *Table) Salary(locality string, grade, step int) (float64, error) {
	if step < MinStep || step > MaxStep {
		return 0, fmt.Errorf("%w: %d", ErrStepOutOfRange, step)
	}
	grades, ok := t.rates[locality]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrLocalityNotFound, locality)
	}
	steps, ok := grades[grade]
	if !ok {
		return 0, fmt.Errorf("%w: %s grade %d", ErrGradeNotFound, locality, grade)
	}
	return steps[step-1], nil
}

func (t *Table) Localities() []string {
	out := make([]string, 0, len(t.rates))
	for loc := range t.rates {
		out = append(out, loc)
	}
	return out
}

// NextStep implements the within-grade-increase schedule: one year per
// step below step 4, two years for steps 4-6, three years for steps 7-9.
// Step 10 is terminal.
func NextStep(curStep, daysInStep int) int {
	switch {
	case curStep < 4 && daysInStep >= 365:
		return curStep + 1
	case curStep >= 4 && curStep < 7 && daysInStep >= 2*365:
		return curStep + 1
	case curStep >= 7 && curStep < MaxStep && daysInStep >= 3*365:
		return curStep + 1
	default:
		return curStep
	}
}

// ReadCSV loads a table from the OPM general-schedule export format: a
// header naming LOCNAME, GRADE and ANNUAL1..ANNUAL10 columns (extra
// columns are ignored), one row per locality/grade.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("paytable: read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToUpper(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"LOCNAME", "GRADE"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("paytable: missing column %s", required)
		}
	}
	for s := MinStep; s <= MaxStep; s++ {
		if _, ok := col[fmt.Sprintf("ANNUAL%d", s)]; !ok {
			return nil, fmt.Errorf("paytable: missing column ANNUAL%d", s)
		}
	}

	t := New()
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("paytable: read row: %w", err)
		}
		line++

		locality := strings.TrimSpace(rec[col["LOCNAME"]])
		grade, err := strconv.Atoi(strings.TrimSpace(rec[col["GRADE"]]))
		if err != nil {
			return nil, fmt.Errorf("paytable: line %d: bad grade %q: %w", line, rec[col["GRADE"]], err)
		}

		var steps [MaxStep]float64
		for s := MinStep; s <= MaxStep; s++ {
			raw := strings.TrimSpace(rec[col[fmt.Sprintf("ANNUAL%d", s)]])
			raw = strings.ReplaceAll(raw, ",", "")
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("paytable: line %d: bad ANNUAL%d %q: %w", line, s, raw, err)
			}
			steps[s-1] = v
		}
		t.SetGrade(locality, grade, steps)
	}

	return t, nil
}
