package experience

import (
	"fmt"
	"math"
)

// Functional skill axes. Index order is fixed; scenario files refer to
// skills by 1-based index.
const (
	Leadership = iota
	IT
	ProjMgt
	GISDataMgt
	Analysis
	Rqmnts
	NumFunctions
)

// Geographic regions.
const (
	Europe = iota
	Africa
	SouthAm
	NorthAm
	Pacific
	MidEast
	NumRegions
)

var functionNames = [NumFunctions]string{
	"Leadership", "IT", "ProjMgt", "GISDataMgt", "Analysis", "Rqmnts",
}

var regionNames = [NumRegions]string{
	"Europe", "Africa", "SouthAm", "NorthAm", "Pacific", "MidEast",
}

func FunctionName(i int) string { return functionNames[i] }
func RegionName(i int) string   { return regionNames[i] }

const (
	defaultIncRate = 0.002
	defaultDecRate = -0.002
)

// Set is a dense experience vector over a fixed skill index. A Set is
// either functional or regional; the two are the same arithmetic over
// different name tables.
type Set struct {
	names   []string
	levels  []float64
	incRate float64
	decRate float64
}

func NewFunctional() *Set {
	return &Set{
		names:   functionNames[:],
		levels:  make([]float64, NumFunctions),
		incRate: defaultIncRate,
		decRate: defaultDecRate,
	}
}

func NewRegional() *Set {
	return &Set{
		names:   regionNames[:],
		levels:  make([]float64, NumRegions),
		incRate: defaultIncRate,
		decRate: defaultDecRate,
	}
}

// Init seeds the set from 1-based skill indexes, each starting at the
// increment rate. Unknown indexes are rejected.
func (s *Set) Init(indexes []int) error {
	for _, idx := range indexes {
		if idx < 1 || idx > len(s.levels) {
			return fmt.Errorf("experience: skill index %d out of range 1..%d", idx, len(s.levels))
		}
		s.levels[idx-1] = s.incRate
	}
	return nil
}

func (s *Set) Len() int { return len(s.levels) }

func (s *Set) Level(i int) float64 { return s.levels[i] }

func (s *Set) SetLevel(i int, v float64) { s.levels[i] = v }

func (s *Set) Name(i int) string { return s.names[i] }

// adjust applies a multiplicative rate with a floor at |rate| so a skill
// never collapses to zero once touched.
func (s *Set) adjust(i int, rate float64) {
	if s.levels[i] == 0 {
		s.levels[i] = math.Abs(rate)
		return
	}
	s.levels[i] *= 1 + rate
	if s.levels[i] < math.Abs(rate) {
		s.levels[i] = math.Abs(rate)
	}
}

func (s *Set) Increment(i int) { s.adjust(i, s.incRate) }
func (s *Set) Decrement(i int) { s.adjust(i, s.decRate) }

// IncrementBy grows a skill by an explicit effort delta (task work).
func (s *Set) IncrementBy(i int, delta float64) {
	s.levels[i] += delta
}

func (s *Set) Add(o *Set) error {
	if len(o.levels) != len(s.levels) {
		return fmt.Errorf("experience: cannot add set of size %d to set of size %d", len(o.levels), len(s.levels))
	}
	for i, v := range o.levels {
		s.levels[i] += v
	}
	return nil
}

func (s *Set) Subtract(o *Set) error {
	if len(o.levels) != len(s.levels) {
		return fmt.Errorf("experience: cannot subtract set of size %d from set of size %d", len(o.levels), len(s.levels))
	}
	for i, v := range o.levels {
		s.levels[i] -= v
	}
	return nil
}

// Scale multiplies every level, e.g. daily decay while out of a billet.
func (s *Set) Scale(f float64) {
	for i := range s.levels {
		s.levels[i] *= f
	}
}

// Aggregate is the scalar used by the ranking algorithm.
func (s *Set) Aggregate() float64 {
	var sum float64
	for _, v := range s.levels {
		sum += v
	}
	return sum
}

func (s *Set) Clone() *Set {
	c := &Set{
		names:   s.names,
		levels:  make([]float64, len(s.levels)),
		incRate: s.incRate,
		decRate: s.decRate,
	}
	copy(c.levels, s.levels)
	return c
}

func (s *Set) Levels() []float64 {
	out := make([]float64, len(s.levels))
	copy(out, s.levels)
	return out
}
