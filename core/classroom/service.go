package classroom

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-admin/core/resource"
)

type (
	Repository = resource.Repository[Classroom]

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

var (
	_ resource.Service[Classroom, NewClassroom, UpdateClassroom] = (*Service)(nil)

	nowFunc = time.Now // mockable
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) Create(ctx context.Context, nc NewClassroom) (Classroom, error) {
	if err := nc.Validate(svc.validate); err != nil {
		return Classroom{}, err
	}
	now := nowFunc().UTC()
	cls := Classroom{
		Traceable:   resource.Traceable{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		Name:        nc.Name,
		Description: nc.Description,
		Capacity:    nc.Capacity,
	}
	return svc.repo.Create(ctx, cls)
}

func (svc *Service) Get(ctx context.Context, id string) (Classroom, error) {
	return svc.repo.Get(ctx, id)
}

func (svc *Service) Query(ctx context.Context, q resource.Query) (resource.Page[Classroom], error) {
	if err := q.Validate(resource.SortFields(Columns)); err != nil {
		return resource.Page[Classroom]{}, err
	}
	return svc.repo.Query(ctx, q)
}

func (svc *Service) Update(ctx context.Context, id string, uc UpdateClassroom) (Classroom, error) {
	if err := uc.Validate(svc.validate); err != nil {
		return Classroom{}, err
	}
	cls, err := svc.repo.Get(ctx, id)
	if err != nil {
		return Classroom{}, err
	}
	if err := copier.CopyWithOption(&cls, uc, copier.Option{IgnoreEmpty: true}); err != nil {
		return Classroom{}, errors.Wrap(err, "applying UpdateClassroom")
	}
	cls.UpdatedAt = nowFunc().UTC()
	return svc.repo.Update(ctx, cls)
}

func (svc *Service) Delete(ctx context.Context, id string) (Classroom, error) {
	return svc.repo.Delete(ctx, id)
}
