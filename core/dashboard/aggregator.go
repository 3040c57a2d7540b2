package dashboard

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/mathsol/academy/core"
	"github.com/mathsol/academy/core/classroom"
	"github.com/mathsol/academy/core/evaluation"
	"github.com/mathsol/academy/core/student"
)

type Options struct {
	RollingWindow int
	RiskThreshold int
	Timezone      *time.Location
}

func OptionsFromConfig(conf *core.Config) Options {
	return Options{
		RollingWindow: conf.Engine.RollingWindow,
		RiskThreshold: conf.Engine.RiskThreshold,
		Timezone:      conf.Timezone,
	}
}

// Scope restricts the dashboard to some classes. An empty scope covers the whole academy.
type Scope struct {
	ClassIDs []int64
}

type RiskEntry struct {
	StudentID      int64   `json:"student_id"`
	Name           string  `json:"name"`
	Grade          string  `json:"grade"`
	RollingAverage float64 `json:"rolling_average"`
}

type Dashboard struct {
	Date          string      `json:"date"` // YYYY-MM-DD in the server timezone
	TodayClasses  int         `json:"today_classes"`
	TotalStudents int         `json:"total_students"`
	TodayEvals    int         `json:"today_evals"`
	RiskStudents  []RiskEntry `json:"risk_students"`
}

// Snapshot is the data a dashboard is computed from.
type Snapshot struct {
	Classes  []classroom.Class
	Students []student.Student
	// Logs of the snapshot students, newest first.
	Logs []evaluation.Log
}

// Aggregate computes the dashboard of the snapshot as of asOf. Classes without a
// recognised weekday are returned in skipped.
func Aggregate(snap Snapshot, asOf time.Time, opts Options) (d Dashboard, skipped []classroom.Class) {
	loc := opts.Timezone
	if loc == nil {
		loc = time.UTC
	}
	asOf = asOf.In(loc)
	from, to := core.DayRange(asOf, loc)
	d = Dashboard{
		Date:          from.Format("2006-01-02"),
		TotalStudents: len(snap.Students),
		RiskStudents:  []RiskEntry{},
	}

	for _, c := range snap.Classes {
		switch {
		case classroom.MeetsOn(c.Schedule, asOf.Weekday()):
			d.TodayClasses++
		case len(classroom.Weekdays(c.Schedule)) == 0:
			skipped = append(skipped, c)
		}
	}
	window := opts.RollingWindow
	if window < 1 {
		window = 1
	}

	inScope := make(map[int64]bool, len(snap.Students))
	for _, st := range snap.Students {
		inScope[st.ID] = true
	}
	recent := make(map[int64][]int, len(snap.Students))
	for _, l := range snap.Logs {
		if !inScope[l.StudentID] {
			continue
		}
		if !l.CreatedAt.Before(from) && l.CreatedAt.Before(to) {
			d.TodayEvals++
		}
		if len(recent[l.StudentID]) < window {
			recent[l.StudentID] = append(recent[l.StudentID], l.Score)
		}
	}

	for _, st := range snap.Students {
		scores := recent[st.ID]
		if len(scores) == 0 {
			continue
		}
		total := 0
		for _, s := range scores {
			total += s
		}
		avg := float64(total) / float64(len(scores))
		if avg < float64(opts.RiskThreshold) {
			d.RiskStudents = append(d.RiskStudents, RiskEntry{
				StudentID:      st.ID,
				Name:           st.Name,
				Grade:          st.Grade,
				RollingAverage: avg,
			})
		}
	}
	sort.Slice(d.RiskStudents, func(i, j int) bool {
		a, b := d.RiskStudents[i], d.RiskStudents[j]
		if a.RollingAverage == b.RollingAverage {
			return a.StudentID < b.StudentID
		}
		return a.RollingAverage < b.RollingAverage
	})
	return d, skipped
}

type Aggregator struct {
	classes  classroom.Repository
	students student.Repository
	logs     evaluation.Repository
	logger   core.Logger
	opts     Options
}

func NewAggregator(
	classes classroom.Repository,
	students student.Repository,
	logs evaluation.Repository,
	logger core.Logger,
	opts Options,
) *Aggregator {
	return &Aggregator{classes: classes, students: students, logs: logs, logger: logger, opts: opts}
}

// Compute fetches a fresh snapshot of the scope and aggregates it. Nothing is cached.
func (a *Aggregator) Compute(ctx context.Context, scope Scope, asOf time.Time) (Dashboard, error) {
	snap, err := a.snapshot(ctx, scope)
	if err != nil {
		return Dashboard{}, err
	}
	d, skipped := Aggregate(snap, asOf, a.opts)
	for _, c := range skipped {
		a.logger.Warn("dashboard: class schedule has no weekday", map[string]interface{}{
			"class_id": c.ID,
			"schedule": c.Schedule,
		})
	}
	return d, nil
}

func (a *Aggregator) snapshot(ctx context.Context, scope Scope) (Snapshot, error) {
	var snap Snapshot
	var err error

	ids := evaluation.UniqueIDs(scope.ClassIDs)
	snap.Classes, err = a.classes.QueryClasses(ctx, ids...)
	if err != nil {
		return snap, errors.Wrap(err, "querying classes")
	}

	if len(ids) == 0 {
		snap.Students, err = a.students.QueryStudents(ctx, nil, nil)
		if err != nil {
			return snap, errors.Wrap(err, "querying students")
		}
	} else {
		for _, id := range ids {
			classID := id
			students, err := a.students.QueryStudents(ctx, &student.QueryFilter{ClassID: &classID}, nil)
			if err != nil {
				return snap, errors.Wrap(err, "querying students")
			}
			snap.Students = append(snap.Students, students...)
		}
	}
	if len(snap.Students) == 0 {
		return snap, nil
	}

	filter := evaluation.QueryFilter{}
	if len(ids) > 0 {
		filter.StudentIDs = make([]int64, 0, len(snap.Students))
		for _, st := range snap.Students {
			filter.StudentIDs = append(filter.StudentIDs, st.ID)
		}
	}
	snap.Logs, err = a.logs.QueryLogs(ctx, filter, evaluation.NewestFirst, 0)
	if err != nil {
		return snap, errors.Wrap(err, "querying logs")
	}
	return snap, nil
}
