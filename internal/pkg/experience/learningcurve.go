package experience

import "math"

// Qualification bands along the learning curve, keyed by the minimum
// curve value that earns the label.
var levelLabels = []struct {
	Min   float64
	Label string
}{
	{0.9, "SME"},
	{0.75, "Journeyman"},
	{0.5, "Apprentice"},
	{0.1, "Entry"},
	{0.0, "Basic"},
}

const (
	maxChunksPerDay = 2.6
	curveScale      = 5415
	curveRange      = 50000
)

// LearningCurve maps cumulative effort units ("chunks") to an experience
// level in [0,1] along a logistic curve centered by the average daily
// effort rate.
type LearningCurve struct {
	avgChunksPerDay float64
}

func NewLearningCurve(avgChunksPerDay float64) *LearningCurve {
	return &LearningCurve{avgChunksPerDay: avgChunksPerDay}
}

func (lc *LearningCurve) AvgChunksPerDay() float64 { return lc.avgChunksPerDay }

func (lc *LearningCurve) MaxChunksPerDay() float64 { return maxChunksPerDay }

// Level returns the experience level reached after the given cumulative
// chunks.
func (lc *LearningCurve) Level(chunks float64) float64 {
	x := (chunks - curveRange + curveScale*lc.avgChunksPerDay) / (curveRange / 10)
	return 1 / (1 + math.Exp(-x))
}

// ChunksFor inverts Level: the cumulative chunks needed to reach lvl.
// lvl must be in (0,1).
func (lc *LearningCurve) ChunksFor(lvl float64) float64 {
	logit := math.Log(lvl / (1 - lvl))
	return logit*(curveRange/10) + curveRange - curveScale*lc.avgChunksPerDay
}

// LevelLabel names the qualification band for a curve value.
func LevelLabel(lvl float64) string {
	for _, b := range levelLabels {
		if lvl >= b.Min {
			return b.Label
		}
	}
	return levelLabels[len(levelLabels)-1].Label
}
