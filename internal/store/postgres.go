package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vvka-141/lmsseed/pkg/lmsseed"
)

// DB is the subset of *pgxpool.Pool the store needs.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

const (
	queryUsernames      = "SELECT username FROM users"
	queryUserIDs        = "SELECT id FROM users"
	queryUserExists     = "SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)"
	queryCourseIDs      = "SELECT id FROM courses"
	queryMembers        = "SELECT id, course_id, user_id FROM course_members"
	queryContentCourses = "SELECT id, course_id FROM course_contents"
)

var (
	userColumns    = []string{"username", "password", "email", "first_name", "last_name"}
	courseColumns  = []string{"name", "description", "price", "teacher_id"}
	memberColumns  = []string{"course_id", "user_id", "roles"}
	contentColumns = []string{"name", "description", "video_url", "course_id", "parent_id"}
	commentColumns = []string{"content_id", "member_id", "comment"}
)

// Postgres is a Store over the lmsseed schema.
type Postgres struct {
	db DB
}

func NewPostgres(db DB) *Postgres {
	if db == nil {
		panic("db cannot be nil")
	}
	return &Postgres{db: db}
}

func (s *Postgres) UsernameSet(ctx context.Context) (map[string]struct{}, error) {
	names, err := collect(ctx, s.db, queryUsernames, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("load usernames: %w", err)
	}
	return setOf(names), nil
}

func (s *Postgres) UserIDs(ctx context.Context) (map[int64]struct{}, error) {
	ids, err := collect(ctx, s.db, queryUserIDs, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("load user ids: %w", err)
	}
	return setOf(ids), nil
}

func (s *Postgres) UserExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := s.db.QueryRow(ctx, queryUserExists, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check user %d: %w", id, err)
	}
	return exists, nil
}

func (s *Postgres) CourseIDs(ctx context.Context) (map[int64]struct{}, error) {
	ids, err := collect(ctx, s.db, queryCourseIDs, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("load course ids: %w", err)
	}
	return setOf(ids), nil
}

func (s *Postgres) MemberIndex(ctx context.Context) (map[lmsseed.MemberKey]int64, error) {
	members, err := collect(ctx, s.db, queryMembers, func(row pgx.CollectableRow) (lmsseed.CourseMember, error) {
		var m lmsseed.CourseMember
		err := row.Scan(&m.ID, &m.CourseID, &m.UserID)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("load enrollments: %w", err)
	}
	index := make(map[lmsseed.MemberKey]int64, len(members))
	for _, m := range members {
		index[m.Key()] = m.ID
	}
	return index, nil
}

func (s *Postgres) ContentCourses(ctx context.Context) (map[int64]int64, error) {
	type pair struct{ content, course int64 }
	pairs, err := collect(ctx, s.db, queryContentCourses, func(row pgx.CollectableRow) (pair, error) {
		var p pair
		err := row.Scan(&p.content, &p.course)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("load content courses: %w", err)
	}
	out := make(map[int64]int64, len(pairs))
	for _, p := range pairs {
		out[p.content] = p.course
	}
	return out, nil
}

func (s *Postgres) CreateUsers(ctx context.Context, users []lmsseed.User) (int, error) {
	return s.copyIn(ctx, "users", userColumns, len(users), func(i int) []any {
		u := users[i]
		return []any{u.Username, u.PasswordHash, u.Email, u.FirstName, u.LastName}
	})
}

func (s *Postgres) CreateCourses(ctx context.Context, courses []lmsseed.Course) (int, error) {
	return s.copyIn(ctx, "courses", courseColumns, len(courses), func(i int) []any {
		c := courses[i]
		return []any{c.Name, c.Description, c.Price, c.TeacherID}
	})
}

func (s *Postgres) CreateMembers(ctx context.Context, members []lmsseed.CourseMember) (int, error) {
	return s.copyIn(ctx, "course_members", memberColumns, len(members), func(i int) []any {
		m := members[i]
		return []any{m.CourseID, m.UserID, string(m.Role)}
	})
}

func (s *Postgres) CreateContents(ctx context.Context, contents []lmsseed.CourseContent) (int, error) {
	return s.copyIn(ctx, "course_contents", contentColumns, len(contents), func(i int) []any {
		c := contents[i]
		return []any{c.Name, c.Description, c.VideoURL, c.CourseID, c.ParentID}
	})
}

func (s *Postgres) CreateComments(ctx context.Context, comments []lmsseed.Comment) (int, error) {
	return s.copyIn(ctx, "comments", commentColumns, len(comments), func(i int) []any {
		c := comments[i]
		return []any{c.ContentID, c.MemberID, c.Comment}
	})
}

// copyIn copies n rows into table inside one transaction. Either every row is
// committed or none is.
func (s *Postgres) copyIn(ctx context.Context, table string, columns []string, n int, row func(i int) []any) (int, error) {
	if n == 0 {
		return 0, nil
	}
	var copied int64
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		var err error
		copied, err = tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromSlice(n, func(i int) ([]any, error) {
			return row(i), nil
		}))
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", table, err)
	}
	return int(copied), nil
}

func collect[T any](ctx context.Context, db DB, sql string, fn pgx.RowToFunc[T]) ([]T, error) {
	rows, err := db.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, fn)
}

func setOf[T comparable](items []T) map[T]struct{} {
	set := make(map[T]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}

var _ lmsseed.Store = (*Postgres)(nil)
