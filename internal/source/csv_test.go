package source

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/lmsseed/internal/files/filesystem"
	"github.com/vvka-141/lmsseed/pkg/lmsseed"
)

func memFS(files map[string]string) *filesystem.MemoryFileSystem {
	m := filesystem.NewMemoryFileSystem("/data")
	for name, content := range files {
		m.AddFile(name, content)
	}
	return m
}

func requireFieldError(t *testing.T, err error, field string, problem Problem) {
	t.Helper()
	fe, ok := AsFieldError(err)
	require.True(t, ok, "expected *FieldError, got %v", err)
	assert.Equal(t, field, fe.Field)
	assert.Equal(t, problem, fe.Problem)
}

func TestReadUsers(t *testing.T) {
	fsys := memFS(map[string]string{
		"user-data.csv": "\ufeffusername,password,email,firstname,lastname\n" +
			"alice,s3cret,alice@example.com,Alice,Liddell\n" +
			"\n" +
			"bob,,bob@example.com,Bob,Builder\n" +
			",x,nobody@example.com,,\n" +
			"carol\n",
	})

	rows, err := ReadUsers(fsys, "user-data.csv")
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, UserRow{"alice", "s3cret", "alice@example.com", "Alice", "Liddell"}, rows[0].Row)
	assert.Equal(t, 2, rows[0].Pos)

	assert.Equal(t, "password", rows[1].Row.Password, "empty password falls back to the default")
	assert.Equal(t, 4, rows[1].Pos, "blank lines are skipped but counted")

	requireFieldError(t, rows[2].Err, "username", Missing)

	assert.True(t, rows[3].OK(), "short rows are accepted")
	assert.Equal(t, "carol", rows[3].Row.Username)
	assert.Equal(t, "password", rows[3].Row.Password)
}

func TestReadUsers_HeaderOrderAndCase(t *testing.T) {
	fsys := memFS(map[string]string{
		"user-data.csv": " Email , USERNAME ,extra\nx@example.com, dave ,ignored\n",
	})
	rows, err := ReadUsers(fsys, "user-data.csv")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "dave", rows[0].Row.Username)
	assert.Equal(t, "x@example.com", rows[0].Row.Email)
}

func TestReadCourses(t *testing.T) {
	fsys := memFS(map[string]string{
		"course-data.csv": "name,teacher,price,description\n" +
			"Go 101,1,15000,Intro\n" +
			"Rust,2,free,Systems\n" +
			"SQL,3,,Queries\n" +
			"Debt,4,-10,Negative\n" +
			",5,100,\n" +
			"NoTeacher,,100,\n" +
			"BadTeacher,abc,100,\n",
	})

	rows, err := ReadCourses(fsys, "course-data.csv")
	require.NoError(t, err)
	require.Len(t, rows, 7)

	assert.Equal(t, CourseRow{Name: "Go 101", Description: "Intro", TeacherID: 1, Price: 15000}, rows[0].Row)
	assert.Equal(t, int64(0), rows[1].Row.Price, "non-numeric price")
	assert.Equal(t, int64(0), rows[2].Row.Price, "absent price")
	assert.Equal(t, int64(0), rows[3].Row.Price, "negative price")
	assert.Equal(t, "Untitled Course", rows[4].Row.Name)
	requireFieldError(t, rows[5].Err, "teacher", Missing)
	requireFieldError(t, rows[6].Err, "teacher", NotInteger)
}

func TestReadCourses_NoPriceColumn(t *testing.T) {
	fsys := memFS(map[string]string{"course-data.csv": "name,teacher\nGo,1\n"})
	rows, err := ReadCourses(fsys, "course-data.csv")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(0), rows[0].Row.Price)
}

func TestReadMembers(t *testing.T) {
	fsys := memFS(map[string]string{
		"member-data.csv": "course_id,user_id,roles\n" +
			"1,2,std\n" +
			"1,3,ast\n" +
			"2,2,\n" +
			"x,2,std\n" +
			"1,,std\n" +
			"1,2,teacher\n",
	})

	rows, err := ReadMembers(fsys, "member-data.csv")
	require.NoError(t, err)
	require.Len(t, rows, 6)

	assert.Equal(t, MemberRow{CourseID: 1, UserID: 2, Role: lmsseed.RoleStudent}, rows[0].Row)
	assert.Equal(t, lmsseed.RoleAssistant, rows[1].Row.Role)
	assert.Equal(t, lmsseed.RoleStudent, rows[2].Row.Role, "empty role defaults to std")
	requireFieldError(t, rows[3].Err, "course_id", NotInteger)
	requireFieldError(t, rows[4].Err, "user_id", Missing)
	requireFieldError(t, rows[5].Err, "roles", Invalid)
}

func TestReadCSV_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := ReadUsers(memFS(nil), "user-data.csv")
		assert.True(t, errors.Is(err, lmsseed.ErrSourceMissing))
	})

	t.Run("bad quoting", func(t *testing.T) {
		fsys := memFS(map[string]string{"user-data.csv": "username\n\"alice\n"})
		_, err := ReadUsers(fsys, "user-data.csv")
		assert.True(t, errors.Is(err, lmsseed.ErrSourceMalformed))
	})

	t.Run("empty file has no rows", func(t *testing.T) {
		rows, err := ReadUsers(memFS(map[string]string{"user-data.csv": ""}), "user-data.csv")
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func TestReadCourses_PriceBeyondInt32(t *testing.T) {
	fsys := memFS(map[string]string{"course-data.csv": "name,price,teacher\nGo,3000000000,1\nRust,2147483647,1\n"})
	rows, err := ReadCourses(fsys, "course-data.csv")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].OK(), "price never rejects a row")
	assert.Equal(t, int64(0), rows[0].Row.Price)
	assert.Equal(t, int64(2147483647), rows[1].Row.Price)
}
