package subject

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
	Repository = resource.Repository[Subject]

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

var (
	_ resource.Service[Subject, NewSubject, UpdateSubject] = (*Service)(nil)

	nowFunc = time.Now // mockable
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) Create(ctx context.Context, ns NewSubject) (Subject, error) {
	if err := ns.Validate(svc.validate); err != nil {
		return Subject{}, err
	}
	now := nowFunc().UTC()
	return svc.repo.Create(ctx, Subject{
		Traceable:   resource.Traceable{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		Name:        ns.Name,
		Description: ns.Description,
	})
}

func (svc *Service) Get(ctx context.Context, id string) (Subject, error) {
	return svc.repo.Get(ctx, id)
}

func (svc *Service) Query(ctx context.Context, q resource.Query) (resource.Page[Subject], error) {
	if err := q.Validate(resource.SortFields(Columns)); err != nil {
		return resource.Page[Subject]{}, err
	}
	return svc.repo.Query(ctx, q)
}

func (svc *Service) Update(ctx context.Context, id string, us UpdateSubject) (Subject, error) {
	if err := us.Validate(svc.validate); err != nil {
		return Subject{}, err
	}
	subj, err := svc.repo.Get(ctx, id)
	if err != nil {
		return Subject{}, err
	}
	if err := copier.CopyWithOption(&subj, us, copier.Option{IgnoreEmpty: true}); err != nil {
		return Subject{}, errors.Wrap(err, "applying UpdateSubject")
	}
	subj.UpdatedAt = nowFunc().UTC()
	return svc.repo.Update(ctx, subj)
}

func (svc *Service) Delete(ctx context.Context, id string) (Subject, error) {
	return svc.repo.Delete(ctx, id)
}
