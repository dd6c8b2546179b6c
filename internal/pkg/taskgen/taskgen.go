package taskgen

import (
	"math/rand"
	"time"

	"github.com/forcemodel/forcesim-backend-go/internal/pkg/experience"
)

// Effort share of the primary, secondary and tertiary skills of a task.
var taskPriority = [...]float64{0.70, 0.20, 0.10}

const defaultComplexity = 3

// Task is a unit of daily work: a regional focus plus an ordered set of
// functional skills with demanded proficiency levels.
type Task struct {
	ID          int
	RegionFocus int
	Skills      []int     // functional skill indexes, primary first
	Levels      []float64 // demanded level per skill
	RegionLevel float64
	Start       time.Time
	Stop        *time.Time
	Active      bool
}

// Apply works the task with the given regional and functional ability,
// returning the regional delta, the aggregate functional effort spent and
// the per-skill split. Effort stops once ability is exhausted.
func (t *Task) Apply(regionAbility, funcAbility float64) (dReg, dFun float64, perSkill []float64) {
	dReg = regionAbility - t.RegionLevel

	perSkill = make([]float64, len(t.Skills))
	remaining := funcAbility
	for i := range t.Skills {
		delta := t.Levels[i] * taskPriority[i] * remaining
		perSkill[i] = delta
		dFun += delta
		remaining -= delta
		if remaining < 0 {
			break
		}
	}
	return dReg, dFun, perSkill
}

// Generator issues tasks with normally distributed demanded levels around
// 0.8 and randomly sampled secondary skills.
type Generator struct {
	rng        *rand.Rand
	complexity int
	nextID     int
	log        map[int]*Task
}

func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{
		rng:        rng,
		complexity: defaultComplexity,
		log:        make(map[int]*Task),
	}
}

// NewTask creates a task focused on funcFocus, filling the remaining
// slots with distinct skills sampled from the functional set.
func (g *Generator) NewTask(now time.Time, regionFocus, funcFocus int) *Task {
	g.nextID++

	skills := make([]int, 0, g.complexity)
	skills = append(skills, funcFocus)

	perm := g.rng.Perm(experience.NumFunctions)
	for _, s := range perm {
		if len(skills) == g.complexity {
			break
		}
		if s != funcFocus {
			skills = append(skills, s)
		}
	}

	levels := make([]float64, len(skills))
	for i := range levels {
		levels[i] = g.rng.NormFloat64()*0.05 + 0.8
	}

	t := &Task{
		ID:          g.nextID,
		RegionFocus: regionFocus,
		Skills:      skills,
		Levels:      levels,
		RegionLevel: g.rng.NormFloat64()*0.05 + 0.8,
		Start:       now,
		Active:      true,
	}
	g.log[t.ID] = t
	return t
}

func (g *Generator) Get(id int) (*Task, bool) {
	t, ok := g.log[id]
	return t, ok
}

func (g *Generator) Close(id int, now time.Time) {
	if t, ok := g.log[id]; ok {
		t.Active = false
		t.Stop = &now
	}
}
