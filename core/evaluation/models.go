package evaluation

import (
	"sort"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mathsol/academy/core"
)

type HomeworkStatus string

const (
	HomeworkDone       HomeworkStatus = "done"
	HomeworkIncomplete HomeworkStatus = "incomplete"
	HomeworkNone       HomeworkStatus = "none"
)

type Attitude string

const (
	AttitudeHigh   Attitude = "high"
	AttitudeMiddle Attitude = "middle"
	AttitudeLow    Attitude = "low"
)

// Log is the record of one evaluation session. Logs are append-only.
type Log struct {
	ID               int64          `json:"id"`
	StudentID        int64          `json:"student_id"`
	CreatedAt        time.Time      `json:"created_at"` // UTC
	Score            int            `json:"score"`
	CompletedUnitIDs []int64        `json:"completed_unit_ids"`
	Homework         HomeworkStatus `json:"homework"`
	Attitude         Attitude       `json:"attitude"`
	Comment          string         `json:"comment"`
}

// NewLog contains information needed to submit an evaluation.
type NewLog struct {
	StudentID        int64          `json:"student_id" validate:"required"`
	Score            *int           `json:"score" validate:"required,min=0,max=100"`
	CompletedUnitIDs []int64        `json:"completed_unit_ids"`
	Homework         HomeworkStatus `json:"homework" validate:"required,oneof=done incomplete none"`
	Attitude         Attitude       `json:"attitude" validate:"required,oneof=high middle low"`
	Comment          string         `json:"comment" validate:"max=2000"`
}

func (nl *NewLog) Validate(validate *validator.Validate) error {
	nl.Comment = core.CleanString(nl.Comment)
	nl.Homework = HomeworkStatus(core.CleanString(string(nl.Homework), true /* lower */))
	nl.Attitude = Attitude(core.CleanString(string(nl.Attitude), true /* lower */))
	nl.CompletedUnitIDs = UniqueIDs(nl.CompletedUnitIDs)
	return validate.Struct(nl)
}

// UniqueIDs returns the distinct ids in ascending order. It never returns nil.
func UniqueIDs(ids []int64) []int64 {
	res := make([]int64, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			res = append(res, id)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

type QueryFilter struct {
	StudentIDs []int64
	// CreatedFrom is inclusive, CreatedTo is exclusive.
	CreatedFrom time.Time
	CreatedTo   time.Time
}

// NewestFirst orders logs by creation time, most recent first, ties broken by the highest id.
var NewestFirst = []core.DBOrdering{{Field: "created_at"}, {Field: "id"}}
