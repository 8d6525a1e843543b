package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/core/resource"
)

const errInvalidValue = "invalid value"

// resourceApi serves the CRUD endpoints of one resource collection.
type resourceApi[T resource.Entity, C any, U any] struct {
	svc resource.Service[T, C, U]
}

func registerResourceAPI[T resource.Entity, C any, U any](g *echo.Group, svc resource.Service[T, C, U]) {
	api := resourceApi[T, C, U]{svc: svc}

	g.GET("", api.query)
	g.POST("", api.create)
	g.GET("/:id", api.retrieve)
	g.PUT("/:id", api.update)
	g.DELETE("/:id", api.destroy)
}

// bindQuery reads page, size, sortBy & sortDesc, applying the defaults to missing values.
func bindQuery(ctx echo.Context) (resource.Query, error) {
	q := resource.Params{}.Normalize()
	err := echo.QueryParamsBinder(ctx).
		Int("page", &q.Page).
		Int("size", &q.Size).
		String("sortBy", &q.SortBy).
		Bool("sortDesc", &q.SortDesc).
		BindError()
	if err != nil {
		var bErr *echo.BindingError
		if errors.As(err, &bErr) {
			return q, core.NewValidationError(nil, core.FieldError{Field: bErr.Field, Error: errInvalidValue})
		}
		return q, errors.Wrap(err, "binding query params")
	}
	if q.SortBy = core.CleanString(q.SortBy); q.SortBy == "" {
		q.SortBy = resource.DefaultSortBy
	}
	return q, nil
}

// Handlers

func (api *resourceApi[T, C, U]) query(ctx echo.Context) error {
	q, err := bindQuery(ctx)
	if err != nil {
		return err
	}
	page, err := api.svc.Query(ctx.Request().Context(), q)
	if err != nil {
		return errors.Wrap(err, "querying")
	}
	return ctx.JSON(http.StatusOK, page)
}

func (api *resourceApi[T, C, U]) create(ctx echo.Context) error {
	var data C
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	obj, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating")
	}
	return ctx.JSON(http.StatusCreated, obj)
}

func (api *resourceApi[T, C, U]) retrieve(ctx echo.Context) error {
	obj, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "retrieving")
	}
	return ctx.JSON(http.StatusOK, obj)
}

func (api *resourceApi[T, C, U]) update(ctx echo.Context) error {
	var data U
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	obj, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating")
	}
	return ctx.JSON(http.StatusOK, obj)
}

func (api *resourceApi[T, C, U]) destroy(ctx echo.Context) error {
	obj, err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "deleting")
	}
	return ctx.JSON(http.StatusOK, obj)
}
