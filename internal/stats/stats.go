package stats

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Querier is the subset of *pgxpool.Pool the reports need.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRef identifies a user in a report.
type UserRef struct {
	ID              int64  `json:"id" db:"id"`
	Username        string `json:"username" db:"username"`
	EnrollmentCount int64  `json:"enrollment_count,omitempty" db:"enrollment_count"`
}

// UserCourseStats summarizes teaching and enrollment across all users.
type UserCourseStats struct {
	UsersCreatingCourses     int64     `json:"users_creating_courses"`
	UsersNotCreatingCourses  int64     `json:"users_not_creating_courses"`
	AveragePerEnrolledUser   float64   `json:"average_courses_per_enrolled_user"`
	MaxEnrollmentsCount      int64     `json:"max_enrollments_count"`
	UsersWithMostEnrollments []UserRef `json:"users_with_most_enrollments"`
	UsersNotEnrolledCount    int64     `json:"users_not_enrolled_count"`
	UsersNotEnrolled         []UserRef `json:"users_not_enrolled_list"`
}

// PriceStats aggregates course prices. Fields are nil when there are no courses.
type PriceStats struct {
	MaxPrice *int64   `json:"max_price"`
	MinPrice *int64   `json:"min_price"`
	AvgPrice *float64 `json:"avg_price"`
}

// CourseDetail is one course row of CourseStats.
type CourseDetail struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Teacher     string `json:"teacher"`
	MemberCount int64  `json:"member_count"`
}

// CourseStats lists every course with its teacher and member count.
type CourseStats struct {
	CourseCount  int            `json:"course_count"`
	OverallStats PriceStats     `json:"overall_stats"`
	Details      []CourseDetail `json:"course_details"`
}

const (
	queryUserTotals = `
SELECT
    (SELECT count(*) FROM users),
    (SELECT count(DISTINCT teacher_id) FROM courses),
    (SELECT count(*) FROM course_members),
    (SELECT count(DISTINCT user_id) FROM course_members)`

	queryTopEnrolled = `
WITH counts AS (
    SELECT u.id, u.username, count(*) AS enrollment_count
    FROM users u
    JOIN course_members m ON m.user_id = u.id
    GROUP BY u.id, u.username
)
SELECT id, username, enrollment_count
FROM counts
WHERE enrollment_count = (SELECT max(enrollment_count) FROM counts)
ORDER BY id`

	queryNotEnrolled = `
SELECT u.id, u.username, 0::bigint AS enrollment_count
FROM users u
WHERE NOT EXISTS (SELECT 1 FROM course_members m WHERE m.user_id = u.id)
ORDER BY u.username`

	queryPriceStats = `SELECT max(price)::bigint, min(price)::bigint, avg(price)::float8 FROM courses`

	queryCourseDetails = `
SELECT c.id, c.name, c.price::bigint, u.first_name, u.last_name, u.username, count(m.id)
FROM courses c
JOIN users u ON u.id = c.teacher_id
LEFT JOIN course_members m ON m.course_id = c.id
GROUP BY c.id, u.id
ORDER BY c.id`
)

// Users computes UserCourseStats.
func Users(ctx context.Context, q Querier) (*UserCourseStats, error) {
	var total, teachers, enrollments, enrolled int64
	if err := q.QueryRow(ctx, queryUserTotals).Scan(&total, &teachers, &enrollments, &enrolled); err != nil {
		return nil, fmt.Errorf("query user totals: %w", err)
	}

	top, err := userRefs(ctx, q, queryTopEnrolled)
	if err != nil {
		return nil, fmt.Errorf("query most enrolled users: %w", err)
	}
	idle, err := userRefs(ctx, q, queryNotEnrolled)
	if err != nil {
		return nil, fmt.Errorf("query users not enrolled: %w", err)
	}

	s := &UserCourseStats{
		UsersCreatingCourses:     teachers,
		UsersNotCreatingCourses:  total - teachers,
		AveragePerEnrolledUser:   averagePerUser(enrollments, enrolled),
		UsersWithMostEnrollments: top,
		UsersNotEnrolledCount:    int64(len(idle)),
		UsersNotEnrolled:         idle,
	}
	if len(top) > 0 {
		s.MaxEnrollmentsCount = top[0].EnrollmentCount
	}
	return s, nil
}

// Courses computes CourseStats.
func Courses(ctx context.Context, q Querier) (*CourseStats, error) {
	var s CourseStats
	p := &s.OverallStats
	if err := q.QueryRow(ctx, queryPriceStats).Scan(&p.MaxPrice, &p.MinPrice, &p.AvgPrice); err != nil {
		return nil, fmt.Errorf("query price stats: %w", err)
	}

	rows, err := q.Query(ctx, queryCourseDetails)
	if err != nil {
		return nil, fmt.Errorf("query course details: %w", err)
	}
	details, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (CourseDetail, error) {
		var d CourseDetail
		var first, last, username string
		err := row.Scan(&d.ID, &d.Name, &d.Price, &first, &last, &username, &d.MemberCount)
		d.Teacher = displayName(first, last, username)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("query course details: %w", err)
	}

	s.Details = details
	s.CourseCount = len(details)
	return &s, nil
}

func userRefs(ctx context.Context, q Querier, sql string) ([]UserRef, error) {
	rows, err := q.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	refs, err := pgx.CollectRows(rows, pgx.RowToStructByName[UserRef])
	if err != nil {
		return nil, err
	}
	if refs == nil {
		refs = []UserRef{}
	}
	return refs, nil
}

// averagePerUser divides and rounds to two decimals; zero users gives 0.
func averagePerUser(total, users int64) float64 {
	if users == 0 {
		return 0
	}
	return math.Round(float64(total)/float64(users)*100) / 100
}

// displayName is the full name when set, else the username.
func displayName(first, last, username string) string {
	if full := strings.TrimSpace(first + " " + last); full != "" {
		return full
	}
	return username
}
