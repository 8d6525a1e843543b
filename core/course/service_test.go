package course_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/core/course"
	inmemdb "github.com/trezcool/masomo-admin/storage/database/inmem"
	"github.com/trezcool/masomo-admin/testutil"
)

func TestService_relations(t *testing.T) {
	db, err := inmemdb.Open()
	require.NoError(t, err)
	translator := core.NewTranslator()
	subjectRepo := inmemdb.NewSubjectRepository(db)
	groupRepo := inmemdb.NewGroupRepository(db)
	svc := course.NewService(inmemdb.NewCourseRepository(db), subjectRepo, groupRepo, core.NewValidator(translator))
	ctx := context.Background()

	maths := testutil.CreateSubject(t, subjectRepo, "Maths")
	l1 := testutil.CreateGroup(t, groupRepo, "L1")
	l2 := testutil.CreateGroup(t, groupRepo, "L2")

	tests := []struct {
		name    string
		nc      course.NewCourse
		wantErr map[string][]string
	}{
		{
			name: "missing relations",
			nc:   course.NewCourse{Name: "Algebra", Hours: 30},
			wantErr: map[string][]string{
				"subjectId": {"this field is required"},
				"groupId":   {"this field is required"},
			},
		},
		{
			name: "unknown relations",
			nc:   course.NewCourse{Name: "Algebra", Hours: 30, SubjectID: "lol", GroupID: "lmao"},
			wantErr: map[string][]string{
				"subjectId": {"subject not found"},
				"groupId":   {"group not found"},
			},
		},
		{name: "valid", nc: course.NewCourse{Name: "Algebra", Hours: 30, SubjectID: maths.ID, GroupID: l1.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			crs, err := svc.Create(ctx, tt.nc)
			if tt.wantErr != nil {
				got, ok := core.FieldErrors(err, translator)
				require.True(t, ok, "err = %v", err)
				assert.Equal(t, tt.wantErr, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, maths.ID, crs.SubjectID)
		})
	}

	t.Run("move to another group", func(t *testing.T) {
		crs := testutil.CreateCourse(t, inmemdb.NewCourseRepository(db), "Geometry", 20, maths.ID, l1.ID)
		got, err := svc.Update(ctx, crs.ID, course.UpdateCourse{GroupID: l2.ID})
		require.NoError(t, err)
		assert.Equal(t, l2.ID, got.GroupID)
		assert.Equal(t, maths.ID, got.SubjectID)
		assert.Equal(t, "Geometry", got.Name)

		_, err = svc.Update(ctx, crs.ID, course.UpdateCourse{SubjectID: "lol"})
		got2, ok := core.FieldErrors(err, translator)
		require.True(t, ok, "err = %v", err)
		assert.Equal(t, map[string][]string{"subjectId": {"subject not found"}}, got2)
	})
}
