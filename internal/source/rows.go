package source

import (
	"strconv"

	"github.com/vvka-141/lmsseed/internal/files/filesystem"
	"github.com/vvka-141/lmsseed/pkg/lmsseed"
)

// UserRow is a decoded line of user-data.csv. Password is the plaintext from
// the file, already defaulted.
type UserRow struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
}

// CourseRow is a decoded line of course-data.csv.
type CourseRow struct {
	Name        string
	Description string
	TeacherID   int64
	Price       int64
}

// MemberRow is a decoded line of member-data.csv.
type MemberRow struct {
	CourseID int64
	UserID   int64
	Role     lmsseed.Role
}

// ContentRow is a decoded element of contents.json.
type ContentRow struct {
	CourseID    int64
	Name        string
	Description string
	VideoURL    string
}

// CommentRow is a decoded element of comments.json.
type CommentRow struct {
	ContentID int64
	UserID    int64
	Comment   string
}

func ReadUsers(fsys filesystem.FileSystemProvider, path string) ([]Result[UserRow], error) {
	return load(fsys, path, decodeCSV(parseUser))
}

func ReadCourses(fsys filesystem.FileSystemProvider, path string) ([]Result[CourseRow], error) {
	return load(fsys, path, decodeCSV(parseCourse))
}

func ReadMembers(fsys filesystem.FileSystemProvider, path string) ([]Result[MemberRow], error) {
	return load(fsys, path, decodeCSV(parseMember))
}

func ReadContents(fsys filesystem.FileSystemProvider, path string) ([]Result[ContentRow], error) {
	return load(fsys, path, decodeJSON(parseContent))
}

func ReadComments(fsys filesystem.FileSystemProvider, path string) ([]Result[CommentRow], error) {
	return load(fsys, path, decodeJSON(parseComment))
}

func parseUser(rec csvRecord) (UserRow, error) {
	row := UserRow{
		Username:  rec["username"],
		Password:  rec["password"],
		Email:     rec["email"],
		FirstName: rec["firstname"],
		LastName:  rec["lastname"],
	}
	if row.Username == "" {
		return row, &FieldError{Field: "username", Problem: Missing}
	}
	if row.Password == "" {
		row.Password = lmsseed.DefaultPassword
	}
	return row, nil
}

func parseCourse(rec csvRecord) (CourseRow, error) {
	row := CourseRow{
		Name:        rec["name"],
		Description: rec["description"],
	}
	if row.Name == "" {
		row.Name = lmsseed.DefaultCourseName
	}

	teacher, err := csvID(rec, "teacher")
	if err != nil {
		return row, err
	}
	row.TeacherID = teacher

	// Price never rejects a row.
	if p, err := strconv.ParseInt(rec["price"], 10, 32); err == nil && p >= 0 {
		row.Price = p
	}
	return row, nil
}

func parseMember(rec csvRecord) (MemberRow, error) {
	var row MemberRow
	var err error
	if row.CourseID, err = csvID(rec, "course_id"); err != nil {
		return row, err
	}
	if row.UserID, err = csvID(rec, "user_id"); err != nil {
		return row, err
	}
	raw := rec["roles"]
	if row.Role, err = lmsseed.ParseRole(raw); err != nil {
		return row, &FieldError{Field: "roles", Problem: Invalid, Value: raw}
	}
	return row, nil
}

func parseContent(obj jsonObject) (ContentRow, error) {
	var row ContentRow
	var err error
	if row.CourseID, err = obj.id("course_id"); err != nil {
		return row, err
	}
	if row.Name, err = obj.text("name", ""); err != nil {
		return row, err
	}
	if row.Name == "" {
		row.Name = lmsseed.DefaultContentName
	}
	if row.Description, err = obj.text("description", ""); err != nil {
		return row, err
	}
	if row.VideoURL, err = obj.text("video_url", ""); err != nil {
		return row, err
	}
	return row, nil
}

func parseComment(obj jsonObject) (CommentRow, error) {
	var row CommentRow
	var err error
	if row.ContentID, err = obj.id("content_id"); err != nil {
		return row, err
	}
	if row.UserID, err = obj.id("user_id"); err != nil {
		return row, err
	}
	if row.Comment, err = obj.text("comment", ""); err != nil {
		return row, err
	}
	return row, nil
}

func csvID(rec csvRecord, key string) (int64, error) {
	v, ok := rec.get(key)
	if !ok || v == "" {
		return 0, &FieldError{Field: key, Problem: Missing}
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, &FieldError{Field: key, Problem: NotInteger, Value: v}
	}
	return n, nil
}
