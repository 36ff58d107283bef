package lmsseed

import (
	"fmt"
	"math"
)

// User is an account. Username is unique; PasswordHash never holds plaintext.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Email        string
	FirstName    string
	LastName     string
}

// Course is owned by a teacher, which must be an existing User.
type Course struct {
	ID          int64
	Name        string
	Description string
	Price       int64
	TeacherID   int64
}

// Role is the part a user plays in a course.
type Role string

const (
	RoleStudent   Role = "std"
	RoleAssistant Role = "ast"
)

// ParseRole accepts the stored spelling of a role. Empty input yields RoleStudent.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case "":
		return RoleStudent, nil
	case RoleStudent, RoleAssistant:
		return Role(s), nil
	default:
		return "", fmt.Errorf("role %q is not one of std, ast", s)
	}
}

// CourseMember is an enrollment. (CourseID, UserID) is unique.
type CourseMember struct {
	ID       int64
	CourseID int64
	UserID   int64
	Role     Role
}

// Key returns the enrollment's uniqueness key.
func (m CourseMember) Key() MemberKey {
	return MemberKey{CourseID: m.CourseID, UserID: m.UserID}
}

// MemberKey identifies an enrollment by its composite unique pair.
type MemberKey struct {
	CourseID int64
	UserID   int64
}

// CourseContent belongs to a course. ParentID is nil for top-level content.
type CourseContent struct {
	ID          int64
	Name        string
	Description string
	VideoURL    string
	CourseID    int64
	ParentID    *int64
}

// Comment references content and the commenting user's enrollment in the
// content's course, never the raw user.
type Comment struct {
	ID        int64
	ContentID int64
	MemberID  int64
	Comment   string
}

// Column limits enforced by the schema.
const (
	MaxUsernameLen    = 150
	MaxCourseNameLen  = 100
	MaxContentNameLen = 200
	MaxVideoURLLen    = 200
	MaxEmailLen       = 254
	MaxPersonNameLen  = 150
	MaxPrice          = math.MaxInt32
)
