package lmsseed

import "context"

// Store is the persistence collaborator of the bulk loader.
//
// Read methods return snapshots of already-committed state. Each Create method
// is all-or-nothing: it either persists every record and returns len(records),
// or returns an error and persists none of them. Implementations enforce the
// unique and foreign-key constraints of the schema even though the loader
// validates records beforehand.
type Store interface {
	UsernameSet(ctx context.Context) (map[string]struct{}, error)
	UserIDs(ctx context.Context) (map[int64]struct{}, error)
	UserExists(ctx context.Context, id int64) (bool, error)
	CourseIDs(ctx context.Context) (map[int64]struct{}, error)

	// MemberIndex maps each existing (course, user) pair to its enrollment id.
	MemberIndex(ctx context.Context) (map[MemberKey]int64, error)

	// ContentCourses maps each content id to its owning course id.
	ContentCourses(ctx context.Context) (map[int64]int64, error)

	CreateUsers(ctx context.Context, users []User) (int, error)
	CreateCourses(ctx context.Context, courses []Course) (int, error)
	CreateMembers(ctx context.Context, members []CourseMember) (int, error)
	CreateContents(ctx context.Context, contents []CourseContent) (int, error)
	CreateComments(ctx context.Context, comments []Comment) (int, error)
}

// Hasher turns a plaintext password into a one-way hash for storage.
type Hasher interface {
	Hash(password string) (string, error)
}

// RemapStrategy rewrites a comment's source user id before validation.
type RemapStrategy interface {
	Remap(userID int64) int64
}
