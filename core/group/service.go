package group

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
	Repository = resource.Repository[Group]

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

var (
	_ resource.Service[Group, NewGroup, UpdateGroup] = (*Service)(nil)

	nowFunc = time.Now // mockable
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) Create(ctx context.Context, ng NewGroup) (Group, error) {
	if err := ng.Validate(svc.validate); err != nil {
		return Group{}, err
	}
	now := nowFunc().UTC()
	grp := Group{
		Traceable:   resource.Traceable{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		Name:        ng.Name,
		Description: ng.Description,
	}
	return svc.repo.Create(ctx, grp)
}

func (svc *Service) Get(ctx context.Context, id string) (Group, error) {
	return svc.repo.Get(ctx, id)
}

func (svc *Service) Query(ctx context.Context, q resource.Query) (resource.Page[Group], error) {
	if err := q.Validate(resource.SortFields(Columns)); err != nil {
		return resource.Page[Group]{}, err
	}
	return svc.repo.Query(ctx, q)
}

func (svc *Service) Update(ctx context.Context, id string, ug UpdateGroup) (Group, error) {
	if err := ug.Validate(svc.validate); err != nil {
		return Group{}, err
	}
	grp, err := svc.repo.Get(ctx, id)
	if err != nil {
		return Group{}, err
	}
	if err := copier.CopyWithOption(&grp, ug, copier.Option{IgnoreEmpty: true}); err != nil {
		return Group{}, errors.Wrap(err, "applying UpdateGroup")
	}
	grp.UpdatedAt = nowFunc().UTC()
	return svc.repo.Update(ctx, grp)
}

func (svc *Service) Delete(ctx context.Context, id string) (Group, error) {
	return svc.repo.Delete(ctx, id)
}
