package group

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/core/resource"
)

// Columns maps the sortable fields of a Group to their DB columns.
var Columns = resource.TraceableColumns(map[string]string{
	"name": "name",
})

type Group struct {
	resource.Traceable
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
}

func (g Group) SortValue(field string) any {
	if field == "name" {
		return g.Name
	}
	v, _ := g.TraceValue(field)
	return v
}

// NewGroup contains information needed to create a new Group.
type NewGroup struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description,omitempty" validate:"max=500"`
}

func (ng *NewGroup) Validate(validate *validator.Validate) error {
	ng.Name = core.CleanString(ng.Name)
	ng.Description = core.CleanString(ng.Description)
	return validate.Struct(ng)
}

// UpdateGroup defines what information may be provided to modify an existing Group.
// Fields left empty keep their current value.
type UpdateGroup struct {
	ID          string  `json:"id" copier:"-"`
	Name        string  `json:"name,omitempty" validate:"max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

func (ug *UpdateGroup) Validate(validate *validator.Validate) error {
	ug.Name = core.CleanString(ug.Name)
	if ug.Description != nil {
		desc := core.CleanString(*ug.Description)
		ug.Description = &desc
	}
	return validate.Struct(ug)
}

// Key returns the ID of the Group to update.
func (ug UpdateGroup) Key() string { return ug.ID }
