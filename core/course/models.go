package course

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/core/resource"
)

// Columns maps the sortable fields of a Course to their DB columns.
var Columns = resource.TraceableColumns(map[string]string{
	"name":  "name",
	"hours": "hours",
})

// Course is a Subject taught to a Group for a number of hours.
type Course struct {
	resource.Traceable
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	Hours       int    `json:"hours" db:"hours"`
	SubjectID   string `json:"subjectId" db:"subject_id"`
	GroupID     string `json:"groupId" db:"group_id"`
}

func (c Course) SortValue(field string) any {
	switch field {
	case "name":
		return c.Name
	case "hours":
		return c.Hours
	}
	v, _ := c.TraceValue(field)
	return v
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Hours       int    `json:"hours" validate:"gte=1"`
	SubjectID   string `json:"subjectId" validate:"required"`
	GroupID     string `json:"groupId" validate:"required"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	nc.SubjectID = core.CleanString(nc.SubjectID)
	nc.GroupID = core.CleanString(nc.GroupID)
	return validate.Struct(nc)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
// Every field is optional.
type UpdateCourse struct {
	ID          string  `json:"id" copier:"-"`
	Name        string  `json:"name,omitempty" validate:"max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Hours       *int    `json:"hours,omitempty" validate:"omitempty,gte=1"`
	SubjectID   string  `json:"subjectId,omitempty"`
	GroupID     string  `json:"groupId,omitempty"`
}

func (uc *UpdateCourse) Validate(validate *validator.Validate) error {
	uc.Name = core.CleanString(uc.Name)
	uc.SubjectID = core.CleanString(uc.SubjectID)
	uc.GroupID = core.CleanString(uc.GroupID)
	if uc.Description != nil {
		desc := core.CleanString(*uc.Description)
		uc.Description = &desc
	}
	return validate.Struct(uc)
}

// Key returns the ID of the Course to update.
func (uc UpdateCourse) Key() string { return uc.ID }
