// Package testutil holds fixtures shared by the test suites.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/core/classroom"
	"github.com/trezcool/masomo-admin/core/course"
	"github.com/trezcool/masomo-admin/core/group"
	"github.com/trezcool/masomo-admin/core/resource"
	"github.com/trezcool/masomo-admin/core/subject"
	"github.com/trezcool/masomo-admin/storage/database"
)

// OpenDB returns a migrated, in-memory sqlite database closed at the end of the test.
func OpenDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Open(core.NewTestConfig())
	if err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err = database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}
	return db
}

func traceable(createdAt []time.Time) resource.Traceable {
	tstamp := time.Now().UTC().Truncate(time.Microsecond)
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC().Truncate(time.Microsecond)
	}
	return resource.Traceable{ID: uuid.NewString(), CreatedAt: tstamp, UpdatedAt: tstamp}
}

func CreateClassroom(
	t *testing.T,
	repo classroom.Repository,
	name string,
	capacity int,
	createdAt ...time.Time,
) classroom.Classroom {
	t.Helper()
	cls, err := repo.Create(context.Background(), classroom.Classroom{
		Traceable: traceable(createdAt),
		Name:      name,
		Capacity:  capacity,
	})
	if err != nil {
		t.Fatalf("CreateClassroom() failed: %v", err)
	}
	return cls
}

func CreateSubject(t *testing.T, repo subject.Repository, name string, createdAt ...time.Time) subject.Subject {
	t.Helper()
	subj, err := repo.Create(context.Background(), subject.Subject{Traceable: traceable(createdAt), Name: name})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return subj
}

func CreateGroup(t *testing.T, repo group.Repository, name string, createdAt ...time.Time) group.Group {
	t.Helper()
	grp, err := repo.Create(context.Background(), group.Group{Traceable: traceable(createdAt), Name: name})
	if err != nil {
		t.Fatalf("CreateGroup() failed: %v", err)
	}
	return grp
}

func CreateCourse(
	t *testing.T,
	repo course.Repository,
	name string,
	hours int,
	subjectID, groupID string,
	createdAt ...time.Time,
) course.Course {
	t.Helper()
	crs, err := repo.Create(context.Background(), course.Course{
		Traceable: traceable(createdAt),
		Name:      name,
		Hours:     hours,
		SubjectID: subjectID,
		GroupID:   groupID,
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}
