package classroom

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/core/resource"
)

// Columns maps the sortable fields of a Classroom to their DB columns.
var Columns = resource.TraceableColumns(map[string]string{
	"name":     "name",
	"capacity": "capacity",
})

type Classroom struct {
	resource.Traceable
	Name        string `json:"name" db:"name"`
	Description string `json:"description,omitempty" db:"description"`
	Capacity    int    `json:"capacity" db:"capacity"`
}

func (c Classroom) SortValue(field string) any {
	switch field {
	case "name":
		return c.Name
	case "capacity":
		return c.Capacity
	}
	v, _ := c.TraceValue(field)
	return v
}

// NewClassroom contains information needed to create a new Classroom.
type NewClassroom struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description,omitempty" validate:"max=500"`
	Capacity    int    `json:"capacity" validate:"gte=1"`
}

func (nc *NewClassroom) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	return validate.Struct(nc)
}

// UpdateClassroom defines what information may be provided to modify an existing Classroom.
// Fields left empty keep their current value.
type UpdateClassroom struct {
	ID          string  `json:"id" copier:"-"`
	Name        string  `json:"name,omitempty" validate:"max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Capacity    *int    `json:"capacity,omitempty" validate:"omitempty,gte=1"`
}

func (uc *UpdateClassroom) Validate(validate *validator.Validate) error {
	uc.Name = core.CleanString(uc.Name)
	if uc.Description != nil {
		desc := core.CleanString(*uc.Description)
		uc.Description = &desc
	}
	return validate.Struct(uc)
}

// Key returns the ID of the Classroom to update.
func (uc UpdateClassroom) Key() string { return uc.ID }
