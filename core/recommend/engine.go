package recommend

import (
	"context"

	"github.com/pkg/errors"

	"github.com/mathsol/academy/core"
	"github.com/mathsol/academy/core/curriculum"
	"github.com/mathsol/academy/core/evaluation"
	"github.com/mathsol/academy/core/student"
)

// Options holds the engine thresholds.
type Options struct {
	StruggleThreshold int
	GoodThreshold     int
	RecommendCount    int
}

func OptionsFromConfig(conf *core.Config) Options {
	return Options{
		StruggleThreshold: conf.Engine.StruggleThreshold,
		GoodThreshold:     conf.Engine.GoodThreshold,
		RecommendCount:    conf.Engine.RecommendCount,
	}
}

type Recommendation struct {
	UnitIDs []int64 `json:"unit_ids"`
	Reason  string  `json:"reason"`
}

// Form bundles everything the evaluation screen needs for one student.
type Form struct {
	Student        student.Student    `json:"student"`
	Curriculum     curriculum.Catalog `json:"curriculum"`
	Recommendation Recommendation     `json:"recommendation"`
}

// Compute recommends the next units for a student given the catalog and the
// student's logs, newest first. It reads nothing else and never fails.
func Compute(cat curriculum.Catalog, logs []evaluation.Log, opts Options) Recommendation {
	n := opts.RecommendCount
	if n < 1 {
		n = 1
	}
	if len(cat) == 0 {
		return Recommendation{UnitIDs: []int64{}, Reason: reasonEmptyCatalog()}
	}
	if len(logs) == 0 {
		return Recommendation{UnitIDs: unitIDs(cat.After(0, n)), Reason: reasonNewStudent(n)}
	}

	idx := cat.Index()
	frontier := 0
	for _, l := range logs {
		for _, id := range l.CompletedUnitIDs {
			if u, ok := idx[id]; ok && u.Sequence > frontier {
				frontier = u.Sequence
			}
		}
	}

	last := logs[0]
	if last.Score < opts.StruggleThreshold || last.Homework == evaluation.HomeworkIncomplete {
		return Recommendation{
			UnitIDs: reinforcementUnits(cat, idx, last, frontier, n),
			Reason:  reasonReinforce(last, opts.StruggleThreshold),
		}
	}

	if frontier >= cat.MaxSequence() {
		return Recommendation{UnitIDs: []int64{}, Reason: reasonExhausted(last.Score)}
	}
	return Recommendation{
		UnitIDs: unitIDs(cat.After(frontier, n)),
		Reason:  reasonProgress(last.Score, streak(logs, opts.GoodThreshold)),
	}
}

// reinforcementUnits picks the lowest-sequence catalog unit of the last session.
// Without one it repeats the frontier unit, and without a frontier it starts from the beginning.
func reinforcementUnits(cat curriculum.Catalog, idx map[int64]curriculum.Unit, last evaluation.Log, frontier, n int) []int64 {
	var lowest *curriculum.Unit
	for _, id := range last.CompletedUnitIDs {
		u, ok := idx[id]
		if !ok {
			continue
		}
		if lowest == nil || u.Sequence < lowest.Sequence || (u.Sequence == lowest.Sequence && u.ID < lowest.ID) {
			lowest = &u
		}
	}
	if lowest != nil {
		return []int64{lowest.ID}
	}
	if frontier > 0 {
		for _, u := range cat {
			if u.Sequence == frontier {
				return []int64{u.ID}
			}
		}
	}
	return unitIDs(cat.After(0, n))
}

// streak counts the consecutive sessions, from the most recent, scored at least good.
func streak(logs []evaluation.Log, good int) int {
	n := 0
	for _, l := range logs {
		if l.Score < good {
			break
		}
		n++
	}
	return n
}

func unitIDs(units []curriculum.Unit) []int64 {
	ids := make([]int64, 0, len(units))
	for _, u := range units {
		ids = append(ids, u.ID)
	}
	return ids
}

type Engine struct {
	students student.Repository
	logs     evaluation.Repository
	catalog  *curriculum.Service
	opts     Options
}

func NewEngine(students student.Repository, logs evaluation.Repository, catalog *curriculum.Service, opts Options) *Engine {
	return &Engine{students: students, logs: logs, catalog: catalog, opts: opts}
}

// Recommend fetches the student's history and the catalog and computes a recommendation.
func (e *Engine) Recommend(ctx context.Context, studentID int64) (Recommendation, error) {
	if _, err := e.students.GetStudent(ctx, studentID); err != nil {
		return Recommendation{}, errors.Wrap(err, "finding student")
	}
	cat, logs, err := e.fetch(ctx, studentID)
	if err != nil {
		return Recommendation{}, err
	}
	return Compute(cat, logs, e.opts), nil
}

// Prepare returns the evaluation form of a student.
func (e *Engine) Prepare(ctx context.Context, studentID int64) (Form, error) {
	st, err := e.students.GetStudent(ctx, studentID)
	if err != nil {
		return Form{}, errors.Wrap(err, "finding student")
	}
	cat, logs, err := e.fetch(ctx, studentID)
	if err != nil {
		return Form{}, err
	}
	if cat == nil {
		cat = curriculum.Catalog{}
	}
	return Form{Student: st, Curriculum: cat, Recommendation: Compute(cat, logs, e.opts)}, nil
}

func (e *Engine) fetch(ctx context.Context, studentID int64) (curriculum.Catalog, []evaluation.Log, error) {
	cat, err := e.catalog.Catalog(ctx)
	if err != nil {
		return nil, nil, err
	}
	logs, err := e.logs.QueryLogs(ctx, evaluation.QueryFilter{StudentIDs: []int64{studentID}}, evaluation.NewestFirst, 0)
	if err != nil {
		return nil, nil, errors.Wrap(err, "querying logs")
	}
	return cat, logs, nil
}
