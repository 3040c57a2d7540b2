package classroom

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/mathsol/academy/core"
	"github.com/mathsol/academy/core/student"
)

type Class struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Schedule    string    `json:"schedule"`
	TargetGrade string    `json:"target_grade"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

// NewClass contains information needed to open a new Class.
type NewClass struct {
	Name        string `json:"name" validate:"required,notblank"`
	Schedule    string `json:"schedule" validate:"required,weekdays"`
	TargetGrade string `json:"target_grade"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Schedule = core.CleanString(nc.Schedule)
	nc.TargetGrade = core.CleanString(nc.TargetGrade)
	return validate.Struct(nc)
}

// AssignStudents is the payload of a class assignment.
type AssignStudents struct {
	StudentIDs []int64 `json:"student_ids"`
}

type AssignResult struct {
	AssignedCount int `json:"assigned_count"`
}

// RosterEntry is a student of a class with their evaluation status for the day.
type RosterEntry struct {
	student.Student
	EvaluatedToday bool `json:"evaluated_today"`
}

var (
	weekdaysTag  = "weekdays"
	weekdaysText = "schedule must contain at least one weekday"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(weekdaysTag, func(fl validator.FieldLevel) bool {
		return len(Weekdays(fl.Field().String())) > 0
	})
	core.RegisterCustomTranslation(validate, translator, weekdaysTag, weekdaysText)
}
