package importer

import (
	"fmt"

	"github.com/vvka-141/lmsseed/pkg/lmsseed"
)

// Pass identifies one stage of the loader.
type Pass int

const (
	PassUsers Pass = iota
	PassCourses
	PassMembers
	PassContents
	PassComments
)

// Passes lists every pass in execution order.
var Passes = []Pass{PassUsers, PassCourses, PassMembers, PassContents, PassComments}

var passInfo = map[Pass]struct {
	title, noun, file string
	jsonSource        bool
}{
	PassUsers:    {"Users", "users", lmsseed.UsersFile, false},
	PassCourses:  {"Courses", "courses", lmsseed.CoursesFile, false},
	PassMembers:  {"Course Members", "course members", lmsseed.MembersFile, false},
	PassContents: {"Course Contents", "course contents", lmsseed.ContentsFile, true},
	PassComments: {"Comments", "comments", lmsseed.CommentsFile, true},
}

// Title is the heading used in progress output.
func (p Pass) Title() string { return passInfo[p].title }

// Noun is the plural used in summaries.
func (p Pass) Noun() string { return passInfo[p].noun }

// File is the source file name relative to the data directory.
func (p Pass) File() string { return passInfo[p].file }

func (p Pass) String() string {
	if _, ok := passInfo[p]; ok {
		return p.Noun()
	}
	return fmt.Sprintf("Pass(%d)", int(p))
}

// location renders a record position the way its source format counts.
func (p Pass) location(pos int) string {
	if passInfo[p].jsonSource {
		return fmt.Sprintf("item %d", pos)
	}
	return fmt.Sprintf("line %d", pos)
}

func (p Pass) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
