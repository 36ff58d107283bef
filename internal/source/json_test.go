package source

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/lmsseed/pkg/lmsseed"
)

func TestReadContents(t *testing.T) {
	fsys := memFS(map[string]string{
		"contents.json": `[
			{"course_id": 1, "name": "Intro", "description": "Welcome", "video_url": "https://v/1"},
			{"course_id": "2"},
			{"course_id": 3, "name": null, "video_url": null},
			{"course_id": 4.0, "name": ""},
			{"course_id": 1.5},
			{"name": "orphan"},
			{"course_id": true},
			{"course_id": 1, "name": 7},
			"not an object",
			[1, 2]
		]`,
	})

	rows, err := ReadContents(fsys, "contents.json")
	require.NoError(t, err)
	require.Len(t, rows, 10)

	assert.Equal(t, ContentRow{CourseID: 1, Name: "Intro", Description: "Welcome", VideoURL: "https://v/1"}, rows[0].Row)
	assert.Equal(t, 0, rows[0].Pos)

	assert.Equal(t, ContentRow{CourseID: 2, Name: "Untitled Content"}, rows[1].Row)
	assert.Equal(t, ContentRow{CourseID: 3, Name: "Untitled Content"}, rows[2].Row)
	assert.Equal(t, ContentRow{CourseID: 4, Name: "Untitled Content"}, rows[3].Row)

	requireFieldError(t, rows[4].Err, "course_id", NotInteger)
	requireFieldError(t, rows[5].Err, "course_id", Missing)
	requireFieldError(t, rows[6].Err, "course_id", NotInteger)
	requireFieldError(t, rows[7].Err, "name", Invalid)
	requireFieldError(t, rows[8].Err, "", Invalid)
	requireFieldError(t, rows[9].Err, "", Invalid)
	assert.Equal(t, 9, rows[9].Pos)
}

func TestReadComments(t *testing.T) {
	fsys := memFS(map[string]string{
		"comments.json": `[
			{"content_id": 10, "user_id": 51, "comment": "nice"},
			{"content_id": 10, "user_id": 3},
			{"content_id": "x", "user_id": 3},
			{"content_id": 10}
		]`,
	})

	rows, err := ReadComments(fsys, "comments.json")
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, CommentRow{ContentID: 10, UserID: 51, Comment: "nice"}, rows[0].Row)
	assert.Equal(t, CommentRow{ContentID: 10, UserID: 3}, rows[1].Row)
	requireFieldError(t, rows[2].Err, "content_id", NotInteger)
	requireFieldError(t, rows[3].Err, "user_id", Missing)
}

func TestReadJSON_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"truncated", `[{"content_id": 1`},
		{"object at top level", `{"content_id": 1}`},
		{"null", `null`},
		{"empty", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadComments(memFS(map[string]string{"comments.json": tt.content}), "comments.json")
			assert.True(t, errors.Is(err, lmsseed.ErrSourceMalformed), "got %v", err)
		})
	}
}

func TestReadJSON_EmptyArray(t *testing.T) {
	rows, err := ReadComments(memFS(map[string]string{"comments.json": " [] "}), "comments.json")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestFieldError_Error(t *testing.T) {
	assert.Equal(t, "missing teacher", (&FieldError{Field: "teacher", Problem: Missing}).Error())
	assert.Equal(t, `non-integer teacher: "abc"`, (&FieldError{Field: "teacher", Problem: NotInteger, Value: "abc"}).Error())
	assert.Equal(t, "invalid record: 42", (&FieldError{Problem: Invalid, Value: "42"}).Error())
}
