package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/core/resource"
)

// table is a resource.Repository backed by one SQL table.
// Columns of T are mapped with `db` struct tags.
type table[T resource.Entity] struct {
	db      *sqlx.DB
	name    string
	columns []string          // every column but id
	sorts   map[string]string // sort field -> column
}

func newTable[T resource.Entity](db *sqlx.DB, name string, sorts map[string]string, columns ...string) *table[T] {
	return &table[T]{db: db, name: name, columns: columns, sorts: sorts}
}

func (tbl *table[T]) quotedName() string {
	return `"` + tbl.name + `"`
}

func (tbl *table[T]) Create(ctx context.Context, obj T) (T, error) {
	cols := append([]string{"id"}, tbl.columns...)
	q := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (:%s)",
		tbl.quotedName(), strings.Join(cols, ", "), strings.Join(cols, ", :"),
	)
	if _, err := tbl.db.NamedExecContext(ctx, q, obj); err != nil {
		var zero T
		return zero, errors.Wrapf(err, "inserting into %s", tbl.name)
	}
	return obj, nil
}

func (tbl *table[T]) Get(ctx context.Context, id string) (T, error) {
	return tbl.get(ctx, tbl.db, id)
}

func (tbl *table[T]) get(ctx context.Context, q sqlx.QueryerContext, id string) (T, error) {
	var obj T
	query := tbl.db.Rebind(fmt.Sprintf("SELECT * FROM %s WHERE id = ?", tbl.quotedName()))
	if err := sqlx.GetContext(ctx, q, &obj, query, id); err != nil {
		var zero T
		if errors.Cause(err) == sql.ErrNoRows {
			return zero, core.ErrNotFound
		}
		return zero, errors.Wrapf(err, "selecting from %s", tbl.name)
	}
	return obj, nil
}

func (tbl *table[T]) Query(ctx context.Context, q resource.Query) (resource.Page[T], error) {
	page := resource.Page[T]{Content: []T{}}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", tbl.quotedName())
	if err := tbl.db.GetContext(ctx, &page.TotalElements, countQuery); err != nil {
		return page, errors.Wrapf(err, "counting %s", tbl.name)
	}

	ordering := q.Ordering(tbl.sorts)
	if ordering.Field == "" {
		ordering.Field = "created_at"
	}
	selectQuery := tbl.db.Rebind(fmt.Sprintf(
		"SELECT * FROM %s ORDER BY %s, id ASC LIMIT ? OFFSET ?",
		tbl.quotedName(), ordering,
	))
	if err := tbl.db.SelectContext(ctx, &page.Content, selectQuery, q.Size, q.Offset()); err != nil {
		return page, errors.Wrapf(err, "selecting from %s", tbl.name)
	}
	return page, nil
}

func (tbl *table[T]) Update(ctx context.Context, obj T) (T, error) {
	sets := make([]string, 0, len(tbl.columns))
	for _, col := range tbl.columns {
		if col == "created_at" {
			continue
		}
		sets = append(sets, col+" = :"+col)
	}
	q := fmt.Sprintf("UPDATE %s SET %s WHERE id = :id", tbl.quotedName(), strings.Join(sets, ", "))

	var zero T
	res, err := tbl.db.NamedExecContext(ctx, q, obj)
	if err != nil {
		return zero, errors.Wrapf(err, "updating %s", tbl.name)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return zero, errors.Wrapf(err, "updating %s", tbl.name)
	}
	if n == 0 {
		return zero, core.ErrNotFound
	}
	return obj, nil
}

func (tbl *table[T]) Delete(ctx context.Context, id string) (T, error) {
	var zero T
	tx, err := tbl.db.BeginTxx(ctx, nil)
	if err != nil {
		return zero, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	obj, err := tbl.get(ctx, tx, id)
	if err != nil {
		return zero, err
	}
	q := tx.Rebind(fmt.Sprintf("DELETE FROM %s WHERE id = ?", tbl.quotedName()))
	if _, err = tx.ExecContext(ctx, q, id); err != nil {
		return zero, errors.Wrapf(err, "deleting from %s", tbl.name)
	}
	if err = tx.Commit(); err != nil {
		return zero, errors.Wrap(err, "committing transaction")
	}
	return obj, nil
}
