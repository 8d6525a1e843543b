package course

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/core/group"
	"github.com/trezcool/masomo-admin/core/resource"
	"github.com/trezcool/masomo-admin/core/subject"
)

const (
	msgSubjectNotFound = "subject not found"
	msgGroupNotFound   = "group not found"
)

type (
	Repository = resource.Repository[Course]

	Service struct {
		repo        Repository
		subjectRepo subject.Repository
		groupRepo   group.Repository
		validate    *validator.Validate
	}
)

var (
	_ resource.Service[Course, NewCourse, UpdateCourse] = (*Service)(nil)

	nowFunc = time.Now // mockable
)

func NewService(
	repo Repository,
	subjectRepo subject.Repository,
	groupRepo group.Repository,
	validate *validator.Validate,
) *Service {
	return &Service{
		repo:        repo,
		subjectRepo: subjectRepo,
		groupRepo:   groupRepo,
		validate:    validate,
	}
}

// checkRelations makes sure the referenced Subject and Group exist. Empty IDs are not checked.
func (svc *Service) checkRelations(ctx context.Context, subjectID, groupID string) error {
	var flds []core.FieldError
	if subjectID != "" {
		if _, err := svc.subjectRepo.Get(ctx, subjectID); err != nil {
			if !core.IsNotFound(err) {
				return errors.Wrap(err, "getting subject")
			}
			flds = append(flds, core.FieldError{Field: "subjectId", Error: msgSubjectNotFound})
		}
	}
	if groupID != "" {
		if _, err := svc.groupRepo.Get(ctx, groupID); err != nil {
			if !core.IsNotFound(err) {
				return errors.Wrap(err, "getting group")
			}
			flds = append(flds, core.FieldError{Field: "groupId", Error: msgGroupNotFound})
		}
	}
	if flds != nil {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	if err := nc.Validate(svc.validate); err != nil {
		return Course{}, err
	}
	if err := svc.checkRelations(ctx, nc.SubjectID, nc.GroupID); err != nil {
		return Course{}, err
	}
	now := nowFunc().UTC()
	crs := Course{
		Traceable:   resource.Traceable{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		Name:        nc.Name,
		Description: nc.Description,
		Hours:       nc.Hours,
		SubjectID:   nc.SubjectID,
		GroupID:     nc.GroupID,
	}
	return svc.repo.Create(ctx, crs)
}

func (svc *Service) Get(ctx context.Context, id string) (Course, error) {
	return svc.repo.Get(ctx, id)
}

func (svc *Service) Query(ctx context.Context, q resource.Query) (resource.Page[Course], error) {
	if err := q.Validate(resource.SortFields(Columns)); err != nil {
		return resource.Page[Course]{}, err
	}
	return svc.repo.Query(ctx, q)
}

func (svc *Service) Update(ctx context.Context, id string, uc UpdateCourse) (Course, error) {
	if err := uc.Validate(svc.validate); err != nil {
		return Course{}, err
	}
	crs, err := svc.repo.Get(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if err := svc.checkRelations(ctx, uc.SubjectID, uc.GroupID); err != nil {
		return Course{}, err
	}
	if err := copier.CopyWithOption(&crs, uc, copier.Option{IgnoreEmpty: true}); err != nil {
		return Course{}, errors.Wrap(err, "applying UpdateCourse")
	}
	crs.UpdatedAt = nowFunc().UTC()
	return svc.repo.Update(ctx, crs)
}

func (svc *Service) Delete(ctx context.Context, id string) (Course, error) {
	return svc.repo.Delete(ctx, id)
}
