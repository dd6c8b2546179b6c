package market

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/forcemodel/forcesim-backend-go/internal/domain/employee"
	"github.com/forcemodel/forcesim-backend-go/internal/domain/unit"
	"github.com/forcemodel/forcesim-backend-go/internal/domain/vacancy"
	"github.com/forcemodel/forcesim-backend-go/internal/pkg/geo"
	"github.com/forcemodel/forcesim-backend-go/internal/pkg/reqid"
)

// Directory resolves the non-owning identifiers vacancies carry back to
// live entities. Implemented by the enterprise engine.
type Directory interface {
	Employee(upi string) (*employee.Employee, bool)
	Unit(uic string) (*unit.Unit, bool)
}

// Hooks are optional observer callbacks for market events.
type Hooks struct {
	Offered   func(v *vacancy.Announcement, upi string)
	Cancelled func(v *vacancy.Announcement)
	Completed func(v *vacancy.Announcement)
}

type Config struct {
	MinOpenDays    int
	MaxHireLagDays int
	Policy         SelectionPolicy
}

func DefaultConfig() Config {
	return Config{
		MinOpenDays:    14,
		MaxHireLagDays: 90,
		Policy:         ArgMaxPolicy{},
	}
}

// JobBoard owns every vacancy announcement, partitioned by lifecycle
// stage. A vacancy ID lives in exactly one partition; moving between
// partitions is the only way its stage advances.
type JobBoard struct {
	cfg       Config
	dir       Directory
	locations *geo.Registry
	rng       *rand.Rand
	log       *slog.Logger
	hooks     Hooks

	open      map[string]*vacancy.Announcement
	closed    map[string]*vacancy.Announcement
	completed map[string]*vacancy.Announcement
	total     int
}

func NewJobBoard(cfg Config, dir Directory, locations *geo.Registry, rng *rand.Rand, log *slog.Logger) *JobBoard {
	if cfg.Policy == nil {
		cfg.Policy = ArgMaxPolicy{}
	}
	return &JobBoard{
		cfg:       cfg,
		dir:       dir,
		locations: locations,
		rng:       rng,
		log:       log,
		open:      make(map[string]*vacancy.Announcement),
		closed:    make(map[string]*vacancy.Announcement),
		completed: make(map[string]*vacancy.Announcement),
	}
}

func (jb *JobBoard) SetHooks(h Hooks) { jb.hooks = h }

func (jb *JobBoard) taken(id string) bool {
	if _, ok := jb.open[id]; ok {
		return true
	}
	if _, ok := jb.closed[id]; ok {
		return true
	}
	_, ok := jb.completed[id]
	return ok
}

// AdvertiseRequest carries everything a unit knows about a vacant billet
// plus its hiring policy.
type AdvertiseRequest struct {
	UIC      string
	PLN      string
	UPN      string
	Grade    int
	Series   int
	Location string
	Policy   unit.HiringPolicy
}

// Advertise creates an announcement in the open partition and returns
// it. The selection lag is drawn once, here.
func (jb *JobBoard) Advertise(now time.Time, req AdvertiseRequest) *vacancy.Announcement {
	id := reqid.Next(now, jb.taken)
	v := &vacancy.Announcement{
		ID:         id,
		UIC:        req.UIC,
		PLN:        req.PLN,
		UPN:        req.UPN,
		Grade:      req.Grade,
		Series:     req.Series,
		Location:   req.Location,
		OpenDate:   now,
		Expires:    now.AddDate(0, 0, jb.cfg.MinOpenDays),
		LagDays:    jb.cfg.MinOpenDays + jb.rng.Intn(jb.cfg.MaxHireLagDays-jb.cfg.MinOpenDays),
		FuncWeight: req.Policy.FuncWeight,
		GeoWeight:  req.Policy.GeoWeight,
		Status:     vacancy.StatusOpen,
	}
	jb.open[id] = v
	jb.total++
	jb.log.Debug("vacancy advertised", "vacancy", id, "uic", req.UIC, "pln", req.PLN, "grade", req.Grade, "location", req.Location)
	return v
}

// Apply records an application on both the announcement and the
// employee's own ledger.
func (jb *JobBoard) Apply(vacancyID string, e *employee.Employee) error {
	v, ok := jb.open[vacancyID]
	if !ok {
		return fmt.Errorf("%w: %s", vacancy.ErrVacancyNotFound, vacancyID)
	}
	if err := v.AddApplicant(e.UPI); err != nil {
		return err
	}
	if err := e.RecordApplication(vacancyID); err != nil {
		v.RemoveApplicant(e.UPI)
		return err
	}
	return nil
}

// OpenListings returns the open partition's announcements in map order;
// callers shuffle if ordering matters to them.
func (jb *JobBoard) OpenListings() []*vacancy.Announcement {
	out := make([]*vacancy.Announcement, 0, len(jb.open))
	for _, v := range jb.open {
		out = append(out, v)
	}
	return out
}

// Listings returns the announcements in a lifecycle partition.
func (jb *JobBoard) Listings(stage vacancy.Stage) []*vacancy.Announcement {
	var part map[string]*vacancy.Announcement
	switch stage {
	case vacancy.StageOpen:
		part = jb.open
	case vacancy.StageClosed:
		part = jb.closed
	case vacancy.StageCompleted:
		part = jb.completed
	default:
		return nil
	}
	out := make([]*vacancy.Announcement, 0, len(part))
	for _, v := range part {
		out = append(out, v)
	}
	return out
}

// Get finds an announcement in any partition.
func (jb *JobBoard) Get(vacancyID string) (*vacancy.Announcement, bool) {
	if v, ok := jb.open[vacancyID]; ok {
		return v, true
	}
	if v, ok := jb.closed[vacancyID]; ok {
		return v, true
	}
	v, ok := jb.completed[vacancyID]
	return v, ok
}

func (jb *JobBoard) TotalAdvertised() int { return jb.total }

// Step runs the day's market phases: listing migration, then ranking and
// selection.
func (jb *JobBoard) Step(now time.Time) error {
	if err := jb.updateListings(now); err != nil {
		return err
	}
	return jb.rankSelect(now)
}

func (jb *JobBoard) shuffledKeys(part map[string]*vacancy.Announcement) []string {
	keys := make([]string, 0, len(part))
	for id := range part {
		keys = append(keys, id)
	}
	// Deterministic base order so the shuffle alone decides processing
	// order under a fixed seed.
	sort.Strings(keys)
	jb.rng.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
	return keys
}

// updateListings expires open announcements into the closed partition.
func (jb *JobBoard) updateListings(now time.Time) error {
	for _, id := range jb.shuffledKeys(jb.open) {
		v := jb.open[id]
		if !v.Expired(now) {
			continue
		}
		if err := v.SetStatus(vacancy.StatusClosed); err != nil {
			return err
		}
		delete(jb.open, id)
		jb.closed[id] = v
		jb.log.Debug("vacancy closed", "vacancy", id, "applicants", len(v.Applicants))
	}
	return nil
}

// rankSelect attempts selection on every closed listing whose lag has
// elapsed: empty pools cancel, otherwise an offer is extended.
func (jb *JobBoard) rankSelect(now time.Time) error {
	for _, id := range jb.shuffledKeys(jb.closed) {
		v := jb.closed[id]
		if !v.RankEligible(now) {
			continue
		}
		if len(v.Applicants) == 0 {
			if err := jb.cancel(v, now); err != nil {
				return err
			}
			continue
		}
		if err := jb.extendOffer(v, now); err != nil {
			return err
		}
	}
	return nil
}

// cancel settles an applicant-less vacancy and returns its billet to
// Vacant so the unit re-advertises on a later step.
func (jb *JobBoard) cancel(v *vacancy.Announcement, now time.Time) error {
	if err := v.SetStatus(vacancy.StatusCancelled); err != nil {
		return err
	}
	completed := now
	v.CompleteDate = &completed
	delete(jb.closed, v.ID)
	jb.completed[v.ID] = v

	if u, ok := jb.dir.Unit(v.UIC); ok {
		delete(u.OpenReqs, v.ID)
		if b, ok := u.TDA[v.PLN]; ok {
			if err := b.CancelHiring(); err != nil {
				return fmt.Errorf("cancel vacancy %s: %w", v.ID, err)
			}
		}
	}
	jb.log.Info("vacancy cancelled, no applicants", "vacancy", v.ID, "uic", v.UIC, "pln", v.PLN)
	if jb.hooks.Cancelled != nil {
		jb.hooks.Cancelled(v)
	}
	return nil
}

// extendOffer ranks the pool, selects a candidate, pushes the offer and
// commits rejections for everyone else.
func (jb *JobBoard) extendOffer(v *vacancy.Announcement, now time.Time) error {
	pool := jb.scorePool(v)
	selectee, ok := jb.cfg.Policy.Select(pool, jb.rng)
	if !ok {
		// Every pooled UPI was stale; treat as an empty pool.
		return jb.cancel(v, now)
	}

	e, ok := jb.dir.Employee(selectee)
	if !ok {
		v.RemoveApplicant(selectee)
		return nil
	}

	if err := v.SetStatus(vacancy.StatusOffered); err != nil {
		return err
	}
	v.Selected = selectee

	offer := &employee.JobOffer{
		VacancyID: v.ID,
		UIC:       v.UIC,
		PLN:       v.PLN,
		Grade:     v.Grade,
		Series:    v.Series,
		Location:  v.Location,
		StartDate: jb.startDate(now, e.Location, v.Location),
		Status:    employee.OfferPending,
	}
	if err := e.AddOffer(offer); err != nil {
		return fmt.Errorf("extend offer on %s: %w", v.ID, err)
	}
	e.SetApplicationStatus(v.ID, employee.ApplicationSelected)

	// Rejections commit at ranking time, before formal acceptance.
	for _, upi := range v.Applicants {
		if upi == selectee {
			continue
		}
		if other, ok := jb.dir.Employee(upi); ok {
			other.SetApplicationStatus(v.ID, employee.ApplicationRejected)
		}
	}

	jb.log.Info("offer extended", "vacancy", v.ID, "upi", selectee, "uic", v.UIC, "grade", v.Grade)
	if jb.hooks.Offered != nil {
		jb.hooks.Offered(v, selectee)
	}
	return nil
}

// scorePool computes the policy score for each applicant still known to
// the directory, in application order.
func (jb *JobBoard) scorePool(v *vacancy.Announcement) []ScoredApplicant {
	pool := make([]ScoredApplicant, 0, len(v.Applicants))
	for _, upi := range v.Applicants {
		e, ok := jb.dir.Employee(upi)
		if !ok {
			continue
		}
		score := v.FuncWeight*e.FuncExp.Aggregate() + v.GeoWeight*e.GeoExp.Aggregate()
		pool = append(pool, ScoredApplicant{UPI: upi, Score: score})
	}
	return pool
}

// startDate staggers report dates: two weeks within the same locality,
// four weeks for a CONUS move, sixty days when either end is OCONUS.
func (jb *JobBoard) startDate(now time.Time, fromLoc, toLoc string) time.Time {
	switch {
	case fromLoc == toLoc:
		return now.AddDate(0, 0, 14)
	case fromLoc != "" && (jb.locations.IsOCONUS(fromLoc) || jb.locations.IsOCONUS(toLoc)):
		return now.AddDate(0, 0, 60)
	default:
		return now.AddDate(0, 0, 28)
	}
}

// AcceptOffer marks the selected candidate's acceptance. The vacancy
// completes only when the destination unit confirms the assignment.
func (jb *JobBoard) AcceptOffer(vacancyID string) error {
	v, ok := jb.closed[vacancyID]
	if !ok {
		return fmt.Errorf("%w: %s", vacancy.ErrVacancyNotFound, vacancyID)
	}
	return v.SetStatus(vacancy.StatusAccepted)
}

// DeclineOffer returns the vacancy to the ranking queue without the
// declined candidate.
func (jb *JobBoard) DeclineOffer(vacancyID, upi string) error {
	v, ok := jb.closed[vacancyID]
	if !ok {
		return fmt.Errorf("%w: %s", vacancy.ErrVacancyNotFound, vacancyID)
	}
	if err := v.SetStatus(vacancy.StatusDeclined); err != nil {
		return err
	}
	v.RemoveApplicant(upi)
	v.Selected = ""
	jb.log.Info("offer declined", "vacancy", vacancyID, "upi", upi, "remaining", len(v.Applicants))
	return nil
}

// Withdraw removes an applicant from a still-live vacancy; withdrawing
// as the selected candidate is a decline.
func (jb *JobBoard) Withdraw(vacancyID, upi string) error {
	v, ok := jb.Get(vacancyID)
	if !ok {
		return fmt.Errorf("%w: %s", vacancy.ErrVacancyNotFound, vacancyID)
	}
	if v.Settled() {
		return nil
	}
	if v.Selected == upi && v.Status == vacancy.StatusOffered {
		return jb.DeclineOffer(vacancyID, upi)
	}
	v.RemoveApplicant(upi)
	return nil
}

// Complete settles an accepted vacancy into the completed partition.
func (jb *JobBoard) Complete(vacancyID string, now time.Time) error {
	v, ok := jb.closed[vacancyID]
	if !ok {
		return fmt.Errorf("%w: %s", vacancy.ErrVacancyNotFound, vacancyID)
	}
	if err := v.SetStatus(vacancy.StatusCompleted); err != nil {
		return err
	}
	completed := now
	v.CompleteDate = &completed
	delete(jb.closed, vacancyID)
	jb.completed[vacancyID] = v
	jb.log.Info("vacancy completed", "vacancy", vacancyID, "uic", v.UIC, "pln", v.PLN, "upi", v.Selected)
	if jb.hooks.Completed != nil {
		jb.hooks.Completed(v)
	}
	return nil
}
