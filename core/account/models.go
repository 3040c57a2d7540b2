package account

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mathsol/academy/core"
	"github.com/mathsol/academy/core/evaluation"
	"github.com/mathsol/academy/core/student"
)

type Role string

const (
	RoleOwner  Role = "owner"
	RoleParent Role = "parent"
)

// Account is the local record of a user of the external auth provider.
type Account struct {
	ID        string    `json:"id"` // uuid issued by the auth provider
	Role      Role      `json:"role"`
	Phone     string    `json:"phone"` // digits only
	CreatedAt time.Time `json:"created_at"`
}

// Registration contains information needed to register an account.
type Registration struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Role   Role   `json:"role" validate:"required,oneof=owner parent"`
	Phone  string `json:"phone"`
}

func (r *Registration) Validate(validate *validator.Validate) error {
	r.UserID = core.CleanString(r.UserID, true /* lower */)
	r.Role = Role(core.CleanString(string(r.Role), true /* lower */))
	r.Phone = core.CleanString(r.Phone)
	return validate.Struct(r)
}

type MatchResult struct {
	LinkedCount int `json:"linked_count"`
}

type Stats struct {
	AvgScore int `json:"avg_score"`
	Sessions int `json:"sessions"`
}

// ParentReport is what a parent sees for one of their children.
type ParentReport struct {
	Children        []student.Student `json:"children"`
	SelectedChildID *int64            `json:"selected_child_id"`
	Logs            []evaluation.Log  `json:"logs"`
	Stats           Stats             `json:"stats"`
}
