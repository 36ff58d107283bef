package importer

import "github.com/vvka-141/lmsseed/internal/source"

// SkipReason says why a record was not staged. Every reason is distinct so a
// report can be grouped by cause.
type SkipReason string

const (
	SkipMissingUsername      SkipReason = "missing username"
	SkipUnhashablePassword   SkipReason = "password cannot be hashed"
	SkipMissingTeacher       SkipReason = "missing teacher id"
	SkipNonIntegerTeacher    SkipReason = "non-integer teacher id"
	SkipUnknownTeacher       SkipReason = "unknown teacher id"
	SkipTeacherVanished      SkipReason = "teacher not found on re-check"
	SkipMissingCourse        SkipReason = "missing course id"
	SkipNonIntegerCourse     SkipReason = "non-integer course id"
	SkipUnknownCourse        SkipReason = "unknown course id"
	SkipMissingUser          SkipReason = "missing user id"
	SkipNonIntegerUser       SkipReason = "non-integer user id"
	SkipUnknownUser          SkipReason = "unknown user id"
	SkipInvalidRole          SkipReason = "invalid role"
	SkipDuplicateEnrollment  SkipReason = "duplicate enrollment"
	SkipMissingContent       SkipReason = "missing content id"
	SkipNonIntegerContent    SkipReason = "non-integer content id"
	SkipUnknownContent       SkipReason = "unknown content id"
	SkipContentCourseMissing SkipReason = "content course unresolved"
	SkipNoEnrollment         SkipReason = "no enrollment for user in course"
	SkipValueTooLong         SkipReason = "value too long"
	SkipInvalidRecord        SkipReason = "invalid record"
)

type fieldProblem struct {
	field   string
	problem source.Problem
}

var fieldReasons = map[fieldProblem]SkipReason{
	{"username", source.Missing}:      SkipMissingUsername,
	{"teacher", source.Missing}:       SkipMissingTeacher,
	{"teacher", source.NotInteger}:    SkipNonIntegerTeacher,
	{"course_id", source.Missing}:     SkipMissingCourse,
	{"course_id", source.NotInteger}:  SkipNonIntegerCourse,
	{"user_id", source.Missing}:       SkipMissingUser,
	{"user_id", source.NotInteger}:    SkipNonIntegerUser,
	{"content_id", source.Missing}:    SkipMissingContent,
	{"content_id", source.NotInteger}: SkipNonIntegerContent,
	{"roles", source.Invalid}:         SkipInvalidRole,
}

// reasonFor maps a decode failure to its skip reason.
func reasonFor(err error) SkipReason {
	if fe, ok := source.AsFieldError(err); ok {
		if r, ok := fieldReasons[fieldProblem{fe.Field, fe.Problem}]; ok {
			return r
		}
	}
	return SkipInvalidRecord
}
