package stats

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/vvka-141/lmsseed/internal/tui"
)

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// Printer renders reports for a terminal. With Styled false the output is
// plain text with the same layout.
type Printer struct {
	W      io.Writer
	Styled bool
}

func (p Printer) style(s lipgloss.Style, text string) string {
	if !p.Styled {
		return text
	}
	return s.Render(text)
}

func (p Printer) title(text string) {
	fmt.Fprintln(p.W, p.style(tui.TitleStyle, text))
	fmt.Fprintln(p.W)
}

func (p Printer) field(label string, value any) {
	fmt.Fprintf(p.W, "  %s %s\n", p.style(tui.LabelStyle, label+":"), p.style(tui.ValueStyle, fmt.Sprint(value)))
}

func (p Printer) table(headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)
	if p.Styled {
		t = t.BorderStyle(tui.MutedStyle).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return tui.LabelStyle.Padding(0, 1)
				}
				return lipgloss.NewStyle().Padding(0, 1)
			})
	} else {
		t = t.StyleFunc(func(row, col int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, 1)
		})
	}
	fmt.Fprintln(p.W, t.Render())
}

// Users prints UserCourseStats.
func (p Printer) Users(s *UserCourseStats) {
	p.title("User Course Statistics")
	p.field("Users creating courses", s.UsersCreatingCourses)
	p.field("Users not creating courses", s.UsersNotCreatingCourses)
	p.field("Average courses per enrolled user", strconv.FormatFloat(s.AveragePerEnrolledUser, 'f', 2, 64))
	p.field("Max enrollments", s.MaxEnrollmentsCount)
	p.field("Users not enrolled", s.UsersNotEnrolledCount)

	if len(s.UsersWithMostEnrollments) > 0 {
		fmt.Fprintln(p.W)
		fmt.Fprintln(p.W, p.style(tui.LabelStyle, "Most enrolled users"))
		p.table([]string{"ID", "Username", "Enrollments"}, userRows(s.UsersWithMostEnrollments, true))
	}
	if len(s.UsersNotEnrolled) > 0 {
		fmt.Fprintln(p.W)
		fmt.Fprintln(p.W, p.style(tui.LabelStyle, "Users not enrolled"))
		p.table([]string{"ID", "Username"}, userRows(s.UsersNotEnrolled, false))
	}
}

// Courses prints CourseStats.
func (p Printer) Courses(s *CourseStats) {
	p.title("Course Statistics")
	p.field("Courses", s.CourseCount)
	p.field("Max price", optional(s.OverallStats.MaxPrice, strconv.FormatInt))
	p.field("Min price", optional(s.OverallStats.MinPrice, strconv.FormatInt))
	p.field("Average price", optional(s.OverallStats.AvgPrice, func(f float64, _ int) string {
		return strconv.FormatFloat(f, 'f', 2, 64)
	}))

	if len(s.Details) == 0 {
		return
	}
	rows := make([][]string, 0, len(s.Details))
	for _, d := range s.Details {
		rows = append(rows, []string{
			strconv.FormatInt(d.ID, 10),
			d.Name,
			strconv.FormatInt(d.Price, 10),
			d.Teacher,
			strconv.FormatInt(d.MemberCount, 10),
		})
	}
	fmt.Fprintln(p.W)
	p.table([]string{"ID", "Name", "Price", "Teacher", "Members"}, rows)
}

func userRows(refs []UserRef, withCount bool) [][]string {
	rows := make([][]string, 0, len(refs))
	for _, u := range refs {
		row := []string{strconv.FormatInt(u.ID, 10), u.Username}
		if withCount {
			row = append(row, strconv.FormatInt(u.EnrollmentCount, 10))
		}
		rows = append(rows, row)
	}
	return rows
}

func optional[T any](v *T, format func(T, int) string) string {
	if v == nil {
		return "-"
	}
	return format(*v, 10)
}
