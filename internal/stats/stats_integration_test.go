package stats_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/lmsseed/internal/stats"
	testhelpers "github.com/vvka-141/lmsseed/internal/testing"
)

const fixture = `
INSERT INTO users (id, username, password, first_name, last_name) VALUES
    (1, 'teach', 'x', 'Ada', 'Lovelace'),
    (2, 'bob', 'x', '', ''),
    (3, 'carol', 'x', '', ''),
    (4, 'alice', 'x', '', ''),
    (5, 'zed', 'x', '', '');
INSERT INTO courses (id, name, price, teacher_id) VALUES
    (1, 'Go', 100, 1),
    (2, 'SQL', 300, 1),
    (3, 'Rust', 200, 2);
INSERT INTO course_members (course_id, user_id, roles) VALUES
    (1, 2, 'std'),
    (2, 2, 'std'),
    (1, 3, 'std'),
    (3, 3, 'ast'),
    (2, 1, 'std');
`

func TestUsers(t *testing.T) {
	ctx := context.Background()
	pool := testhelpers.NewSchemaPool(t)
	_, err := pool.Exec(ctx, fixture)
	require.NoError(t, err)

	s, err := stats.Users(ctx, pool)
	require.NoError(t, err)

	assert.Equal(t, int64(2), s.UsersCreatingCourses)
	assert.Equal(t, int64(3), s.UsersNotCreatingCourses)
	assert.Equal(t, 1.67, s.AveragePerEnrolledUser)
	assert.Equal(t, int64(2), s.MaxEnrollmentsCount)
	assert.Equal(t, []stats.UserRef{
		{ID: 2, Username: "bob", EnrollmentCount: 2},
		{ID: 3, Username: "carol", EnrollmentCount: 2},
	}, s.UsersWithMostEnrollments)
	assert.Equal(t, int64(2), s.UsersNotEnrolledCount)
	assert.Equal(t, []stats.UserRef{{ID: 4, Username: "alice"}, {ID: 5, Username: "zed"}}, s.UsersNotEnrolled)
}

func TestCourses(t *testing.T) {
	ctx := context.Background()
	pool := testhelpers.NewSchemaPool(t)
	_, err := pool.Exec(ctx, fixture)
	require.NoError(t, err)

	s, err := stats.Courses(ctx, pool)
	require.NoError(t, err)

	assert.Equal(t, 3, s.CourseCount)
	require.NotNil(t, s.OverallStats.MaxPrice)
	assert.Equal(t, int64(300), *s.OverallStats.MaxPrice)
	assert.Equal(t, int64(100), *s.OverallStats.MinPrice)
	assert.InDelta(t, 200.0, *s.OverallStats.AvgPrice, 0.001)
	assert.Equal(t, []stats.CourseDetail{
		{ID: 1, Name: "Go", Price: 100, Teacher: "Ada Lovelace", MemberCount: 2},
		{ID: 2, Name: "SQL", Price: 300, Teacher: "Ada Lovelace", MemberCount: 2},
		{ID: 3, Name: "Rust", Price: 200, Teacher: "bob", MemberCount: 1},
	}, s.Details)
}

func TestEmptyDatabase(t *testing.T) {
	ctx := context.Background()
	pool := testhelpers.NewSchemaPool(t)

	users, err := stats.Users(ctx, pool)
	require.NoError(t, err)
	assert.Zero(t, users.AveragePerEnrolledUser)
	assert.Empty(t, users.UsersWithMostEnrollments)
	assert.Zero(t, users.MaxEnrollmentsCount)

	courses, err := stats.Courses(ctx, pool)
	require.NoError(t, err)
	assert.Zero(t, courses.CourseCount)
	assert.Nil(t, courses.OverallStats.MaxPrice)
	assert.Nil(t, courses.OverallStats.AvgPrice)
}
