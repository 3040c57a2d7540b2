package evaluation

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/mathsol/academy/core"
	"github.com/mathsol/academy/core/curriculum"
	"github.com/mathsol/academy/core/student"
)

type (
	Repository interface {
		CreateLog(ctx context.Context, l Log) (Log, error)
		// QueryLogs returns the logs matching filter. A limit <= 0 means no limit.
		QueryLogs(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering, limit int) ([]Log, error)
	}

	Service struct {
		repo     Repository
		students student.Repository
		catalog  *curriculum.Service
		validate *validator.Validate
		now      func() time.Time
	}
)

func NewService(repo Repository, students student.Repository, catalog *curriculum.Service, validate *validator.Validate) *Service {
	return &Service{
		repo:     repo,
		students: students,
		catalog:  catalog,
		validate: validate,
		now:      time.Now,
	}
}

// Submit appends a new evaluation log for an existing student.
func (svc *Service) Submit(ctx context.Context, nl NewLog) (Log, error) {
	if err := nl.Validate(svc.validate); err != nil {
		return Log{}, err
	}
	if _, err := svc.students.GetStudent(ctx, nl.StudentID); err != nil {
		return Log{}, errors.Wrap(err, "finding student")
	}
	if err := svc.catalog.CheckUnitIDs(ctx, nl.CompletedUnitIDs); err != nil {
		return Log{}, err
	}

	l := Log{
		StudentID:        nl.StudentID,
		CreatedAt:        svc.now().UTC(),
		Score:            *nl.Score,
		CompletedUnitIDs: nl.CompletedUnitIDs,
		Homework:         nl.Homework,
		Attitude:         nl.Attitude,
		Comment:          nl.Comment,
	}
	l, err := svc.repo.CreateLog(ctx, l)
	return l, errors.Wrap(err, "creating log")
}

// History returns the student's logs, newest first. A limit <= 0 returns the whole history.
func (svc *Service) History(ctx context.Context, studentID int64, limit int) ([]Log, error) {
	if _, err := svc.students.GetStudent(ctx, studentID); err != nil {
		return nil, errors.Wrap(err, "finding student")
	}
	logs, err := svc.repo.QueryLogs(ctx, QueryFilter{StudentIDs: []int64{studentID}}, NewestFirst, limit)
	if err != nil {
		return nil, errors.Wrap(err, "querying logs")
	}
	return logs, nil
}
