package subject

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/core/resource"
)

// Columns maps the sortable fields of a Subject to their DB columns.
var Columns = resource.TraceableColumns(map[string]string{
	"name": "name",
})

type Subject struct {
	resource.Traceable
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
}

func (s Subject) SortValue(field string) any {
	if field == "name" {
		return s.Name
	}
	v, _ := s.TraceValue(field)
	return v
}

// NewSubject contains information needed to create a new Subject.
type NewSubject struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description,omitempty" validate:"max=500"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Description = core.CleanString(ns.Description)
	return validate.Struct(ns)
}

// UpdateSubject defines what information may be provided to modify an existing Subject.
// Fields left empty keep their current value.
type UpdateSubject struct {
	ID          string  `json:"id" copier:"-"`
	Name        string  `json:"name,omitempty" validate:"max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

func (us *UpdateSubject) Validate(validate *validator.Validate) error {
	us.Name = core.CleanString(us.Name)
	if us.Description != nil {
		desc := core.CleanString(*us.Description)
		us.Description = &desc
	}
	return validate.Struct(us)
}

// Key returns the ID of the Subject to update.
func (us UpdateSubject) Key() string { return us.ID }
