package student

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/mathsol/academy/core"
)

var ErrNotFound = core.NewNotFoundError("student")

type (
	Repository interface {
		CreateStudent(ctx context.Context, st Student) (Student, error)
		// QueryStudents applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of Student.Name or Student.Phone.
		QueryStudents(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error)
		GetStudent(ctx context.Context, id int64) (Student, error)
		// AssignClass sets ClassID on every existing student of ids and returns how many rows were updated.
		// Unknown ids are skipped.
		AssignClass(ctx context.Context, classID int64, ids []int64) (int, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	if err := ns.Validate(svc.validate); err != nil {
		return Student{}, err
	}
	st := Student{
		Name:          ns.Name,
		Grade:         ns.Grade,
		SchoolName:    ns.SchoolName,
		Phone:         ns.Phone,
		GuardianPhone: ns.GuardianPhone,
		AvatarColor:   ns.AvatarColor,
		CreatedAt:     time.Now().UTC(),
	}
	st, err := svc.repo.CreateStudent(ctx, st)
	return st, errors.Wrap(err, "creating student")
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error) {
	if filter != nil {
		filter.Clean()
	}
	students, err := svc.repo.QueryStudents(ctx, filter, core.FilterOrdering(ordering, OrderingFields...))
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return students, nil
}

func (svc *Service) GetByID(ctx context.Context, id int64) (Student, error) {
	return svc.repo.GetStudent(ctx, id)
}
