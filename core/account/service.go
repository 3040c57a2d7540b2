package account

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/mathsol/academy/core"
	"github.com/mathsol/academy/core/evaluation"
	"github.com/mathsol/academy/core/student"
)

var (
	ErrNotFound      = core.NewNotFoundError("account")
	ErrChildNotFound = core.NewNotFoundError("child")
	ErrRoleConflict  = errors.Wrap(core.ErrConflict, "account already registered with another role")
)

type (
	Repository interface {
		GetAccount(ctx context.Context, id string) (Account, error)
		// CreateAccountWithLinks inserts the account if it does not exist and links it to studentIDs,
		// all in one transaction. It returns the number of links that did not exist before.
		CreateAccountWithLinks(ctx context.Context, acc Account, studentIDs []int64) (int, error)
		// QueryLinkedStudentIDs returns the ids of the students linked to the parent, ascending.
		QueryLinkedStudentIDs(ctx context.Context, parentID string) ([]int64, error)
	}

	Service struct {
		repo      Repository
		students  student.Repository
		logs      evaluation.Repository
		validate  *validator.Validate
		minDigits int
		logLimit  int
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
		repo:      repo,
		students:  students,
		logs:      logs,
		validate:  validate,
		minDigits: conf.Account.MinPhoneDigits,
		logLimit:  conf.Report.ParentLogLimit,
	}
}

// Register creates the account and, for parents, links it to every student whose
// guardian phone has the same digits. A parent with a malformed phone is still
// created, without links, and a validation error is returned.
func (svc *Service) Register(ctx context.Context, reg Registration) (MatchResult, error) {
	if err := reg.Validate(svc.validate); err != nil {
		return MatchResult{}, err
	}

	existing, err := svc.repo.GetAccount(ctx, reg.UserID)
	switch {
	case err == nil:
		if existing.Role != reg.Role {
			return MatchResult{}, ErrRoleConflict
		}
	case !core.IsNotFound(err):
		return MatchResult{}, errors.Wrap(err, "finding account")
	}

	acc := Account{ID: reg.UserID, Role: reg.Role, CreatedAt: time.Now().UTC()}
	if reg.Role == RoleOwner {
		_, err := svc.repo.CreateAccountWithLinks(ctx, acc, nil)
		return MatchResult{}, errors.Wrap(err, "creating account")
	}

	acc.Phone = student.NormalizePhone(reg.Phone)
	if len(acc.Phone) < svc.minDigits {
		if _, err := svc.repo.CreateAccountWithLinks(ctx, acc, nil); err != nil {
			return MatchResult{}, errors.Wrap(err, "creating account")
		}
		return MatchResult{}, core.NewValidationError(nil, core.FieldError{
			Field: "phone",
			Error: fmt.Sprintf("phone number must contain at least %d digits", svc.minDigits),
		})
	}

	matches, err := svc.matchingStudents(ctx, acc.Phone)
	if err != nil {
		return MatchResult{}, err
	}
	n, err := svc.repo.CreateAccountWithLinks(ctx, acc, matches)
	if err != nil {
		return MatchResult{}, errors.Wrap(err, "linking students")
	}
	return MatchResult{LinkedCount: n}, nil
}

func (svc *Service) matchingStudents(ctx context.Context, digits string) ([]int64, error) {
	students, err := svc.students.QueryStudents(ctx, nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	var ids []int64
	for _, st := range students {
		if student.NormalizePhone(st.GuardianPhone) == digits {
			ids = append(ids, st.ID)
		}
	}
	return ids, nil
}

// Report builds the report of one of the parent's children: childID when given, the first child otherwise.
func (svc *Service) Report(ctx context.Context, parentID string, childID *int64) (ParentReport, error) {
	acc, err := svc.repo.GetAccount(ctx, parentID)
	if err != nil {
		return ParentReport{}, errors.Wrap(err, "finding account")
	}
	if acc.Role != RoleParent {
		return ParentReport{}, ErrNotFound
	}

	report := ParentReport{Children: []student.Student{}, Logs: []evaluation.Log{}}
	ids, err := svc.repo.QueryLinkedStudentIDs(ctx, parentID)
	if err != nil {
		return ParentReport{}, errors.Wrap(err, "querying links")
	}
	if len(ids) > 0 {
		report.Children, err = svc.students.QueryStudents(ctx, &student.QueryFilter{IDs: ids},
			[]core.DBOrdering{{Field: "id", Ascending: true}})
		if err != nil {
			return ParentReport{}, errors.Wrap(err, "querying children")
		}
	}

	var selected *student.Student
	for i := range report.Children {
		if childID == nil || report.Children[i].ID == *childID {
			selected = &report.Children[i]
			break
		}
	}
	if selected == nil {
		if childID != nil {
			return ParentReport{}, ErrChildNotFound
		}
		return report, nil
	}
	report.SelectedChildID = &selected.ID

	report.Logs, err = svc.logs.QueryLogs(ctx, evaluation.QueryFilter{StudentIDs: []int64{selected.ID}},
		evaluation.NewestFirst, svc.logLimit)
	if err != nil {
		return ParentReport{}, errors.Wrap(err, "querying logs")
	}
	report.Stats = statsOf(report.Logs)
	return report, nil
}

func statsOf(logs []evaluation.Log) Stats {
	if len(logs) == 0 {
		return Stats{}
	}
	total := 0
	for _, l := range logs {
		total += l.Score
	}
	return Stats{
		AvgScore: int(math.Round(float64(total) / float64(len(logs)))),
		Sessions: len(logs),
	}
}
