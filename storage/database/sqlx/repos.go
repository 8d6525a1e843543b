// Package sqlxrepos implements the resource repositories on top of sqlx.
package sqlxrepos

import (
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/masomo-admin/core/classroom"
	"github.com/trezcool/masomo-admin/core/course"
	"github.com/trezcool/masomo-admin/core/group"
	"github.com/trezcool/masomo-admin/core/subject"
)

var traceableColumns = []string{"created_at", "updated_at"}

func NewClassroomRepository(db *sqlx.DB) classroom.Repository {
	cols := append([]string{"name", "description", "capacity"}, traceableColumns...)
	return newTable[classroom.Classroom](db, "classrooms", classroom.Columns, cols...)
}

func NewCourseRepository(db *sqlx.DB) course.Repository {
	cols := append([]string{"name", "description", "hours", "subject_id", "group_id"}, traceableColumns...)
	return newTable[course.Course](db, "courses", course.Columns, cols...)
}

func NewGroupRepository(db *sqlx.DB) group.Repository {
	cols := append([]string{"name", "description"}, traceableColumns...)
	return newTable[group.Group](db, "groups", group.Columns, cols...)
}

func NewSubjectRepository(db *sqlx.DB) subject.Repository {
	cols := append([]string{"name", "description"}, traceableColumns...)
	return newTable[subject.Subject](db, "subjects", subject.Columns, cols...)
}
