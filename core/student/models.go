package student

import (
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/mathsol/academy/core"
)

type Student struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Grade         string    `json:"grade"` // school type + numeral, e.g. "중1"
	SchoolName    string    `json:"school_name"`
	Phone         string    `json:"phone"`
	GuardianPhone string    `json:"guardian_phone"`
	AvatarColor   string    `json:"avatar_color"`
	ClassID       *int64    `json:"class_id"`
	CreatedAt     time.Time `json:"created_at"` // UTC
}

// NormalizePhone strips every non-digit character from s.
func NormalizePhone(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r <= unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NewStudent contains information needed to register a new Student.
// Grade is composed from SchoolType and GradeNum when both are provided.
type NewStudent struct {
	Name          string `json:"name" validate:"required,notblank"`
	SchoolType    string `json:"school_type"`
	GradeNum      string `json:"grade_num"`
	Grade         string `json:"grade"`
	SchoolName    string `json:"school_name"`
	Phone         string `json:"phone"`
	GuardianPhone string `json:"guardian_phone" validate:"required,phone"`
	AvatarColor   string `json:"avatar_color" validate:"omitempty,hexcolor"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.SchoolType = core.CleanString(ns.SchoolType)
	ns.GradeNum = core.CleanString(ns.GradeNum)
	if ns.SchoolType != "" && ns.GradeNum != "" {
		ns.Grade = ns.SchoolType + ns.GradeNum
	} else {
		ns.Grade = core.CleanString(ns.Grade)
	}
	ns.SchoolName = core.CleanString(ns.SchoolName)
	ns.Phone = core.CleanString(ns.Phone)
	ns.GuardianPhone = core.CleanString(ns.GuardianPhone)
	ns.AvatarColor = core.CleanString(ns.AvatarColor, true /* lower */)
	return validate.Struct(ns)
}

type QueryFilter struct {
	Search     string `query:"search"`
	ClassID    *int64 `query:"class_id"`
	Unassigned bool   `query:"unassigned"`
	// IDs restricts the result to these students when not nil.
	IDs []int64 `query:"-"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// OrderingFields lists the fields a client may order students by.
var OrderingFields = []string{"id", "name", "grade", "created_at"}
