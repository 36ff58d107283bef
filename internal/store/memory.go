package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/vvka-141/lmsseed/pkg/lmsseed"
)

// ErrConstraint is returned by Memory when a batch violates a schema constraint.
var ErrConstraint = errors.New("constraint violation")

// Memory is an in-process Store. Ids are assigned sequentially from 1 per table.
type Memory struct {
	mu       sync.Mutex
	users    []lmsseed.User
	courses  []lmsseed.Course
	members  []lmsseed.CourseMember
	contents []lmsseed.CourseContent
	comments []lmsseed.Comment
	failures map[string]error
}

func NewMemory() *Memory {
	return &Memory{failures: make(map[string]error)}
}

// FailNext makes the next Create call on table ("users", "courses",
// "course_members", "course_contents" or "comments") return err without
// persisting anything.
func (m *Memory) FailNext(table string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[table] = err
}

func (m *Memory) Users() []lmsseed.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]lmsseed.User(nil), m.users...)
}

func (m *Memory) Courses() []lmsseed.Course {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]lmsseed.Course(nil), m.courses...)
}

func (m *Memory) Members() []lmsseed.CourseMember {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]lmsseed.CourseMember(nil), m.members...)
}

func (m *Memory) Contents() []lmsseed.CourseContent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]lmsseed.CourseContent(nil), m.contents...)
}

func (m *Memory) Comments() []lmsseed.Comment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]lmsseed.Comment(nil), m.comments...)
}

func (m *Memory) UsernameSet(ctx context.Context) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := make(map[string]struct{}, len(m.users))
	for _, u := range m.users {
		set[u.Username] = struct{}{}
	}
	return set, ctx.Err()
}

func (m *Memory) UserIDs(ctx context.Context) (map[int64]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return idSet(m.users, func(u lmsseed.User) int64 { return u.ID }), ctx.Err()
}

func (m *Memory) UserExists(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := idSet(m.users, func(u lmsseed.User) int64 { return u.ID })[id]
	return ok, ctx.Err()
}

func (m *Memory) CourseIDs(ctx context.Context) (map[int64]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return idSet(m.courses, func(c lmsseed.Course) int64 { return c.ID }), ctx.Err()
}

func (m *Memory) MemberIndex(ctx context.Context) (map[lmsseed.MemberKey]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	index := make(map[lmsseed.MemberKey]int64, len(m.members))
	for _, cm := range m.members {
		index[cm.Key()] = cm.ID
	}
	return index, ctx.Err()
}

func (m *Memory) ContentCourses(ctx context.Context) (map[int64]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int64]int64, len(m.contents))
	for _, c := range m.contents {
		out[c.ID] = c.CourseID
	}
	return out, ctx.Err()
}

func (m *Memory) CreateUsers(ctx context.Context, users []lmsseed.User) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.precheck(ctx, "users"); err != nil {
		return 0, err
	}

	taken := make(map[string]bool, len(m.users)+len(users))
	for _, u := range m.users {
		taken[u.Username] = true
	}
	for i, u := range users {
		switch {
		case u.Username == "" || utf8.RuneCountInString(u.Username) > lmsseed.MaxUsernameLen:
			return 0, violation("users", i, "username %q out of range", u.Username)
		case taken[u.Username]:
			return 0, violation("users", i, "duplicate username %q", u.Username)
		case utf8.RuneCountInString(u.Email) > lmsseed.MaxEmailLen:
			return 0, violation("users", i, "email too long")
		case utf8.RuneCountInString(u.FirstName) > lmsseed.MaxPersonNameLen,
			utf8.RuneCountInString(u.LastName) > lmsseed.MaxPersonNameLen:
			return 0, violation("users", i, "name too long")
		}
		taken[u.Username] = true
	}

	for _, u := range users {
		u.ID = int64(len(m.users) + 1)
		m.users = append(m.users, u)
	}
	return len(users), nil
}

func (m *Memory) CreateCourses(ctx context.Context, courses []lmsseed.Course) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.precheck(ctx, "courses"); err != nil {
		return 0, err
	}

	users := idSet(m.users, func(u lmsseed.User) int64 { return u.ID })
	for i, c := range courses {
		if _, ok := users[c.TeacherID]; !ok {
			return 0, violation("courses", i, "teacher %d does not exist", c.TeacherID)
		}
		if utf8.RuneCountInString(c.Name) > lmsseed.MaxCourseNameLen {
			return 0, violation("courses", i, "name too long")
		}
		if c.Price < 0 || c.Price > lmsseed.MaxPrice {
			return 0, violation("courses", i, "price %d out of range", c.Price)
		}
	}

	for _, c := range courses {
		c.ID = int64(len(m.courses) + 1)
		m.courses = append(m.courses, c)
	}
	return len(courses), nil
}

func (m *Memory) CreateMembers(ctx context.Context, members []lmsseed.CourseMember) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.precheck(ctx, "course_members"); err != nil {
		return 0, err
	}

	users := idSet(m.users, func(u lmsseed.User) int64 { return u.ID })
	courses := idSet(m.courses, func(c lmsseed.Course) int64 { return c.ID })
	pairs := make(map[lmsseed.MemberKey]bool, len(m.members)+len(members))
	for _, cm := range m.members {
		pairs[cm.Key()] = true
	}
	for i, cm := range members {
		if _, ok := courses[cm.CourseID]; !ok {
			return 0, violation("course_members", i, "course %d does not exist", cm.CourseID)
		}
		if _, ok := users[cm.UserID]; !ok {
			return 0, violation("course_members", i, "user %d does not exist", cm.UserID)
		}
		if _, err := lmsseed.ParseRole(string(cm.Role)); err != nil || cm.Role == "" {
			return 0, violation("course_members", i, "role %q", cm.Role)
		}
		if pairs[cm.Key()] {
			return 0, violation("course_members", i, "duplicate pair (%d, %d)", cm.CourseID, cm.UserID)
		}
		pairs[cm.Key()] = true
	}

	for _, cm := range members {
		cm.ID = int64(len(m.members) + 1)
		m.members = append(m.members, cm)
	}
	return len(members), nil
}

func (m *Memory) CreateContents(ctx context.Context, contents []lmsseed.CourseContent) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.precheck(ctx, "course_contents"); err != nil {
		return 0, err
	}

	courses := idSet(m.courses, func(c lmsseed.Course) int64 { return c.ID })
	existing := idSet(m.contents, func(c lmsseed.CourseContent) int64 { return c.ID })
	for i, c := range contents {
		if _, ok := courses[c.CourseID]; !ok {
			return 0, violation("course_contents", i, "course %d does not exist", c.CourseID)
		}
		if c.ParentID != nil {
			if _, ok := existing[*c.ParentID]; !ok {
				return 0, violation("course_contents", i, "parent %d does not exist", *c.ParentID)
			}
		}
		if utf8.RuneCountInString(c.Name) > lmsseed.MaxContentNameLen ||
			utf8.RuneCountInString(c.VideoURL) > lmsseed.MaxVideoURLLen {
			return 0, violation("course_contents", i, "value too long")
		}
	}

	for _, c := range contents {
		c.ID = int64(len(m.contents) + 1)
		m.contents = append(m.contents, c)
	}
	return len(contents), nil
}

func (m *Memory) CreateComments(ctx context.Context, comments []lmsseed.Comment) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.precheck(ctx, "comments"); err != nil {
		return 0, err
	}

	contents := idSet(m.contents, func(c lmsseed.CourseContent) int64 { return c.ID })
	members := idSet(m.members, func(cm lmsseed.CourseMember) int64 { return cm.ID })
	for i, c := range comments {
		if _, ok := contents[c.ContentID]; !ok {
			return 0, violation("comments", i, "content %d does not exist", c.ContentID)
		}
		if _, ok := members[c.MemberID]; !ok {
			return 0, violation("comments", i, "member %d does not exist", c.MemberID)
		}
	}

	for _, c := range comments {
		c.ID = int64(len(m.comments) + 1)
		m.comments = append(m.comments, c)
	}
	return len(comments), nil
}

// precheck must be called with m.mu held.
func (m *Memory) precheck(ctx context.Context, table string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err, ok := m.failures[table]; ok {
		delete(m.failures, table)
		return err
	}
	return nil
}

func violation(table string, row int, format string, args ...any) error {
	return fmt.Errorf("%s row %d: %s: %w", table, row, fmt.Sprintf(format, args...), ErrConstraint)
}

func idSet[T any](items []T, id func(T) int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(items))
	for _, it := range items {
		set[id(it)] = struct{}{}
	}
	return set
}

var _ lmsseed.Store = (*Memory)(nil)
