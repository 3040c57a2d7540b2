package classroom

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/mathsol/academy/core"
	"github.com/mathsol/academy/core/evaluation"
	"github.com/mathsol/academy/core/student"
)

var ErrNotFound = core.NewNotFoundError("class")

type (
	Repository interface {
		CreateClass(ctx context.Context, c Class) (Class, error)
		QueryClasses(ctx context.Context, ids ...int64) ([]Class, error)
		GetClass(ctx context.Context, id int64) (Class, error)
	}

	Service struct {
		repo     Repository
		students student.Repository
		logs     evaluation.Repository
		validate *validator.Validate
		loc      *time.Location
	}
)

func NewService(
	repo Repository,
	students student.Repository,
	logs evaluation.Repository,
	validate *validator.Validate,
	conf *core.Config,
) *Service {
	return &Service{
		repo:     repo,
		students: students,
		logs:     logs,
		validate: validate,
		loc:      conf.Timezone,
	}
}

func (svc *Service) Create(ctx context.Context, nc NewClass) (Class, error) {
	if err := nc.Validate(svc.validate); err != nil {
		return Class{}, err
	}
	c, err := svc.repo.CreateClass(ctx, Class{
		Name:        nc.Name,
		Schedule:    nc.Schedule,
		TargetGrade: nc.TargetGrade,
		CreatedAt:   time.Now().UTC(),
	})
	return c, errors.Wrap(err, "creating class")
}

func (svc *Service) GetByID(ctx context.Context, id int64) (Class, error) {
	return svc.repo.GetClass(ctx, id)
}

// List returns all classes, the ones meeting soonest after now first.
// Classes without a recognised weekday come last; ties are broken by id.
func (svc *Service) List(ctx context.Context, now time.Time) ([]Class, error) {
	classes, err := svc.repo.QueryClasses(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	today := now.In(svc.loc).Weekday()
	dist := make(map[int64]int, len(classes))
	for _, c := range classes {
		d, ok := DaysUntilNext(c.Schedule, today)
		if !ok {
			d = 7
		}
		dist[c.ID] = d
	}
	sort.SliceStable(classes, func(i, j int) bool {
		di, dj := dist[classes[i].ID], dist[classes[j].ID]
		if di == dj {
			return classes[i].ID < classes[j].ID
		}
		return di < dj
	})
	return classes, nil
}

// Assign puts the listed students in the class. Unknown students are skipped;
// students already in the class are counted but left unchanged.
func (svc *Service) Assign(ctx context.Context, classID int64, studentIDs []int64) (AssignResult, error) {
	if _, err := svc.repo.GetClass(ctx, classID); err != nil {
		return AssignResult{}, errors.Wrap(err, "finding class")
	}
	ids := evaluation.UniqueIDs(studentIDs)
	if len(ids) == 0 {
		return AssignResult{}, nil
	}
	n, err := svc.students.AssignClass(ctx, classID, ids)
	if err != nil {
		return AssignResult{}, errors.Wrap(err, "assigning students")
	}
	return AssignResult{AssignedCount: n}, nil
}

// Roster lists the students of the class by name, flagging who was evaluated on day.
func (svc *Service) Roster(ctx context.Context, classID int64, day time.Time) ([]RosterEntry, error) {
	if _, err := svc.repo.GetClass(ctx, classID); err != nil {
		return nil, errors.Wrap(err, "finding class")
	}
	students, err := svc.students.QueryStudents(ctx, &student.QueryFilter{ClassID: &classID},
		[]core.DBOrdering{{Field: "name", Ascending: true}, {Field: "id", Ascending: true}})
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	roster := make([]RosterEntry, 0, len(students))
	if len(students) == 0 {
		return roster, nil
	}

	ids := make([]int64, 0, len(students))
	for _, st := range students {
		ids = append(ids, st.ID)
	}
	from, to := core.DayRange(day, svc.loc)
	logs, err := svc.logs.QueryLogs(ctx, evaluation.QueryFilter{StudentIDs: ids, CreatedFrom: from, CreatedTo: to}, nil, 0)
	if err != nil {
		return nil, errors.Wrap(err, "querying logs")
	}
	evaluated := make(map[int64]bool, len(logs))
	for _, l := range logs {
		evaluated[l.StudentID] = true
	}
	for _, st := range students {
		roster = append(roster, RosterEntry{Student: st, EvaluatedToday: evaluated[st.ID]})
	}
	return roster, nil
}

// Available lists the students without a class. Students of targetGrade come first, then by grade and name.
func (svc *Service) Available(ctx context.Context, targetGrade string) ([]student.Student, error) {
	students, err := svc.students.QueryStudents(ctx, &student.QueryFilter{Unassigned: true},
		[]core.DBOrdering{{Field: "grade", Ascending: true}, {Field: "name", Ascending: true}, {Field: "id", Ascending: true}})
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	targetGrade = core.CleanString(targetGrade)
	if targetGrade == "" {
		return students, nil
	}
	sort.SliceStable(students, func(i, j int) bool {
		return students[i].Grade == targetGrade && students[j].Grade != targetGrade
	})
	return students, nil
}
