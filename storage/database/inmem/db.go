package inmemdb

import (
	"github.com/trezcool/masomo-admin/core/classroom"
	"github.com/trezcool/masomo-admin/core/course"
	"github.com/trezcool/masomo-admin/core/group"
	"github.com/trezcool/masomo-admin/core/subject"
)

// DB is an in-memory database, one table per resource type.
type DB struct {
	classrooms *table[classroom.Classroom]
	courses    *table[course.Course]
	groups     *table[group.Group]
	subjects   *table[subject.Subject]
}

func Open() (*DB, error) {
	db := &DB{
		classrooms: newTable[classroom.Classroom](),
		courses:    newTable[course.Course](),
		groups:     newTable[group.Group](),
		subjects:   newTable[subject.Subject](),
	}
	return db, nil
}

// Reset empties every table.
func (db *DB) Reset() {
	db.classrooms.reset()
	db.courses.reset()
	db.groups.reset()
	db.subjects.reset()
}

func NewClassroomRepository(db *DB) classroom.Repository { return db.classrooms }

func NewCourseRepository(db *DB) course.Repository { return db.courses }

func NewGroupRepository(db *DB) group.Repository { return db.groups }

func NewSubjectRepository(db *DB) subject.Repository { return db.subjects }
