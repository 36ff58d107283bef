package store_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/lmsseed/internal/store"
	testhelpers "github.com/vvka-141/lmsseed/internal/testing"
	"github.com/vvka-141/lmsseed/pkg/lmsseed"
)

func TestPostgres_RoundTrip(t *testing.T) {
	ctx := context.Background()
	pool := testhelpers.NewSchemaPool(t)
	s := store.NewPostgres(pool)

	n, err := s.CreateUsers(ctx, []lmsseed.User{
		{Username: "teacher", PasswordHash: "h1", Email: "t@example.com"},
		{Username: "student", PasswordHash: "h2"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	names, err := s.UsernameSet(ctx)
	require.NoError(t, err)
	assert.Len(t, names, 2)
	assert.Contains(t, names, "teacher")

	userID := func(name string) int64 {
		var id int64
		require.NoError(t, pool.QueryRow(ctx, "SELECT id FROM users WHERE username = $1", name).Scan(&id))
		return id
	}
	teacherID, studentID := userID("teacher"), userID("student")

	ids, err := s.UserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int64]struct{}{teacherID: {}, studentID: {}}, ids)

	exists, err := s.UserExists(ctx, teacherID)
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = s.CreateCourses(ctx, []lmsseed.Course{{Name: "Go", Description: "d", TeacherID: teacherID}})
	require.NoError(t, err)
	var courseID int64
	require.NoError(t, pool.QueryRow(ctx, "SELECT id FROM courses WHERE name = 'Go'").Scan(&courseID))
	courses, err := s.CourseIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int64]struct{}{courseID: {}}, courses)

	_, err = s.CreateMembers(ctx, []lmsseed.CourseMember{{CourseID: courseID, UserID: studentID, Role: lmsseed.RoleStudent}})
	require.NoError(t, err)
	members, err := s.MemberIndex(ctx)
	require.NoError(t, err)
	memberID, ok := members[lmsseed.MemberKey{CourseID: courseID, UserID: studentID}]
	require.True(t, ok)

	_, err = s.CreateContents(ctx, []lmsseed.CourseContent{{Name: "Intro", CourseID: courseID}})
	require.NoError(t, err)
	contentCourses, err := s.ContentCourses(ctx)
	require.NoError(t, err)
	require.Len(t, contentCourses, 1)
	var contentID int64
	for id, course := range contentCourses {
		contentID = id
		assert.Equal(t, courseID, course)
	}

	n, err = s.CreateComments(ctx, []lmsseed.Comment{{ContentID: contentID, MemberID: memberID, Comment: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPostgres_BatchRollsBackOnViolation(t *testing.T) {
	ctx := context.Background()
	s := store.NewPostgres(testhelpers.NewSchemaPool(t))

	_, err := s.CreateUsers(ctx, []lmsseed.User{{Username: "dup", PasswordHash: "x"}})
	require.NoError(t, err)

	n, err := s.CreateUsers(ctx, []lmsseed.User{
		{Username: "fresh", PasswordHash: "x"},
		{Username: "dup", PasswordHash: "x"},
	})
	require.Error(t, err)
	assert.Zero(t, n)

	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, "23505", pgErr.Code)

	names, err := s.UsernameSet(ctx)
	require.NoError(t, err)
	assert.NotContains(t, names, "fresh", "the valid row of a rejected batch is rolled back")

	n, err = s.CreateCourses(ctx, []lmsseed.Course{{Name: "Orphan", TeacherID: 999}})
	require.Error(t, err)
	assert.Zero(t, n)
}

func TestPostgres_EmptyBatch(t *testing.T) {
	s := store.NewPostgres(testhelpers.NewSchemaPool(t))
	n, err := s.CreateComments(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
