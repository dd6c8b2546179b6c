package market

import (
	"math"
	"math/rand"
	"sort"
)

// ScoredApplicant pairs a UPI with its policy score, in application
// order.
type ScoredApplicant struct {
	UPI   string
	Score float64
}

// SelectionPolicy picks a candidate from a scored pool. Policies must be
// deterministic given the pool and the rng state.
type SelectionPolicy interface {
	Select(pool []ScoredApplicant, rng *rand.Rand) (string, bool)
}

// ArgMaxPolicy selects the strictly highest score; ties go to the
// earliest applicant. This is the current production policy.
type ArgMaxPolicy struct{}

func (ArgMaxPolicy) Select(pool []ScoredApplicant, _ *rand.Rand) (string, bool) {
	if len(pool) == 0 {
		return "", false
	}
	best := 0
	for i := 1; i < len(pool); i++ {
		if pool[i].Score > pool[best].Score {
			best = i
		}
	}
	return pool[best].UPI, true
}

// PercentilePolicy is the earlier market design: applicants scoring
// strictly above the cut percentile survive and one is chosen uniformly.
// When nobody clears the cut (small pools where the percentile equals
// the top score) it falls back to the top scorer.
type PercentilePolicy struct {
	Cut float64 // e.g. 0.85
}

func (p PercentilePolicy) Select(pool []ScoredApplicant, rng *rand.Rand) (string, bool) {
	if len(pool) == 0 {
		return "", false
	}
	scores := make([]float64, len(pool))
	for i, a := range pool {
		scores[i] = a.Score
	}
	cut := percentile(scores, p.Cut)

	var survivors []string
	for _, a := range pool {
		if a.Score > cut {
			survivors = append(survivors, a.UPI)
		}
	}
	if len(survivors) == 0 {
		return ArgMaxPolicy{}.Select(pool, rng)
	}
	return survivors[rng.Intn(len(survivors))], true
}

// percentile computes the q-th percentile (0..1) with linear
// interpolation between closest ranks.
func percentile(values []float64, q float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := q * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
