package testutil

import (
	"context"
	"log"
	"strconv"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/mathsol/academy/core"
	"github.com/mathsol/academy/core/account"
	"github.com/mathsol/academy/core/classroom"
	"github.com/mathsol/academy/core/curriculum"
	"github.com/mathsol/academy/core/dashboard"
	"github.com/mathsol/academy/core/evaluation"
	"github.com/mathsol/academy/core/recommend"
	"github.com/mathsol/academy/core/student"
	logsvc "github.com/mathsol/academy/services/logger"
	"github.com/mathsol/academy/storage/database/dummy"
)

// Env is a fully wired app on top of the in-memory store.
type Env struct {
	Conf       *core.Config
	DB         *dummydb.DB
	Logger     core.Logger
	Validate   *validator.Validate
	Translator ut.Translator

	UnitRepo    curriculum.Repository
	StudentRepo student.Repository
	ClassRepo   classroom.Repository
	LogRepo     evaluation.Repository
	AccountRepo account.Repository

	CurriculumSvc *curriculum.Service
	StudentSvc    *student.Service
	ClassSvc      *classroom.Service
	EvaluationSvc *evaluation.Service
	Engine        *recommend.Engine
	AccountSvc    *account.Service
	Aggregator    *dashboard.Aggregator
}

// NewValidator returns a validator with every app validation registered.
func NewValidator(conf *core.Config) (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	student.InitValidators(validate, translator, conf.Account.MinPhoneDigits)
	classroom.InitValidators(validate, translator)
	return validate, translator
}

func NewLogger(conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(log.New(testWriter{}, "TEST : ", 0), conf)
}

func NewEnv(t *testing.T) *Env {
	t.Helper()
	conf := core.NewTestConfig()
	db := dummydb.Open()
	validate, translator := NewValidator(conf)
	logger := NewLogger(conf)

	env := &Env{
		Conf:        conf,
		DB:          db,
		Logger:      logger,
		Validate:    validate,
		Translator:  translator,
		UnitRepo:    dummydb.NewUnitRepository(db),
		StudentRepo: dummydb.NewStudentRepository(db),
		ClassRepo:   dummydb.NewClassRepository(db),
		LogRepo:     dummydb.NewLogRepository(db),
		AccountRepo: dummydb.NewAccountRepository(db),
	}
	env.CurriculumSvc = curriculum.NewService(env.UnitRepo, validate)
	env.StudentSvc = student.NewService(env.StudentRepo, validate)
	env.ClassSvc = classroom.NewService(env.ClassRepo, env.StudentRepo, env.LogRepo, validate, conf)
	env.EvaluationSvc = evaluation.NewService(env.LogRepo, env.StudentRepo, env.CurriculumSvc, validate)
	env.Engine = recommend.NewEngine(env.StudentRepo, env.LogRepo, env.CurriculumSvc, recommend.OptionsFromConfig(conf))
	env.AccountSvc = account.NewService(env.AccountRepo, env.StudentRepo, env.LogRepo, validate, conf)
	env.Aggregator = dashboard.NewAggregator(env.ClassRepo, env.StudentRepo, env.LogRepo, logger, dashboard.OptionsFromConfig(conf))
	return env
}

// testWriter drops log output.
type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

// CreateUnits seeds the catalog with units titled "u1".."un", unit i having sequence i.
func CreateUnits(t *testing.T, repo curriculum.Repository, n int) []curriculum.Unit {
	t.Helper()
	units := make([]curriculum.Unit, 0, n)
	for i := 1; i <= n; i++ {
		units = append(units, curriculum.Unit{Category: "수와 연산", Title: "u" + strconv.Itoa(i), Sequence: i})
	}
	created, err := repo.CreateUnits(context.Background(), units)
	if err != nil {
		t.Fatalf("CreateUnits() failed: %v", err)
	}
	return created
}

func CreateStudent(t *testing.T, repo student.Repository, name, grade, guardianPhone string, classID ...int64) student.Student {
	t.Helper()
	st := student.Student{
		Name:          name,
		Grade:         grade,
		GuardianPhone: guardianPhone,
		CreatedAt:     time.Now().UTC(),
	}
	if len(classID) > 0 {
		st.ClassID = &classID[0]
	}
	st, err := repo.CreateStudent(context.Background(), st)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return st
}

func CreateClass(t *testing.T, repo classroom.Repository, name, schedule, targetGrade string) classroom.Class {
	t.Helper()
	c, err := repo.CreateClass(context.Background(), classroom.Class{
		Name:        name,
		Schedule:    schedule,
		TargetGrade: targetGrade,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return c
}

func CreateLog(
	t *testing.T,
	repo evaluation.Repository,
	studentID int64,
	createdAt time.Time,
	score int,
	homework evaluation.HomeworkStatus,
	unitIDs ...int64,
) evaluation.Log {
	t.Helper()
	l, err := repo.CreateLog(context.Background(), evaluation.Log{
		StudentID:        studentID,
		CreatedAt:        createdAt.UTC(),
		Score:            score,
		CompletedUnitIDs: evaluation.UniqueIDs(unitIDs),
		Homework:         homework,
		Attitude:         evaluation.AttitudeMiddle,
	})
	if err != nil {
		t.Fatalf("CreateLog() failed: %v", err)
	}
	return l
}
