package importer

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/vvka-141/lmsseed/internal/source"
	"github.com/vvka-141/lmsseed/pkg/lmsseed"
)

// ImportUsers stages one user per new username. Usernames already stored or
// seen earlier in the file are counted as duplicates, not skips.
func (im *Importer) ImportUsers(ctx context.Context, path string) PassResult {
	return im.run(PassUsers, path, func(res *PassResult) {
		seen, err := im.store.UsernameSet(ctx)
		if err != nil {
			res.Err = err
			return
		}
		rows, err := source.ReadUsers(im.fs, path)
		if err != nil {
			res.Err = err
			return
		}
		res.Read = len(rows)

		var staged []lmsseed.User
		for _, r := range rows {
			if !r.OK() {
				im.skip(res, r.Pos, reasonFor(r.Err), r.Err.Error())
				continue
			}
			row := r.Row
			if _, dup := seen[row.Username]; dup {
				res.Duplicates++
				im.logger.Verbose("users: %q already exists", row.Username)
				continue
			}
			if utf8.RuneCountInString(row.Username) > lmsseed.MaxUsernameLen {
				im.skip(res, r.Pos, SkipValueTooLong, fmt.Sprintf("username longer than %d characters", lmsseed.MaxUsernameLen))
				continue
			}
			if field, limit, long := userFieldTooLong(row); long {
				im.skip(res, r.Pos, SkipValueTooLong, fmt.Sprintf("%s longer than %d characters", field, limit))
				continue
			}
			hash, err := im.hasher.Hash(row.Password)
			if err != nil {
				im.skip(res, r.Pos, SkipUnhashablePassword, err.Error())
				continue
			}

			staged = append(staged, lmsseed.User{
				Username:     row.Username,
				PasswordHash: hash,
				Email:        row.Email,
				FirstName:    row.FirstName,
				LastName:     row.LastName,
			})
			seen[row.Username] = struct{}{}
		}

		commit(ctx, res, staged, im.store.CreateUsers)
	})
}

// ImportCourses stages courses whose teacher is a stored user.
func (im *Importer) ImportCourses(ctx context.Context, path string) PassResult {
	return im.run(PassCourses, path, func(res *PassResult) {
		teachers, err := im.store.UserIDs(ctx)
		if err != nil {
			res.Err = err
			return
		}
		rows, err := source.ReadCourses(im.fs, path)
		if err != nil {
			res.Err = err
			return
		}
		res.Read = len(rows)

		// teachers confirmed by the re-check, so each is fetched once
		confirmed := make(map[int64]bool)

		var staged []lmsseed.Course
		for _, r := range rows {
			if !r.OK() {
				im.skip(res, r.Pos, reasonFor(r.Err), r.Err.Error())
				continue
			}
			row := r.Row
			if _, ok := teachers[row.TeacherID]; !ok {
				im.skip(res, r.Pos, SkipUnknownTeacher, fmt.Sprintf("course %q teacher %d", row.Name, row.TeacherID))
				continue
			}
			ok, checked := confirmed[row.TeacherID]
			if !checked {
				ok, err = im.store.UserExists(ctx, row.TeacherID)
				if err != nil {
					res.Err = err
					return
				}
				confirmed[row.TeacherID] = ok
			}
			if !ok {
				im.skip(res, r.Pos, SkipTeacherVanished, fmt.Sprintf("course %q teacher %d", row.Name, row.TeacherID))
				continue
			}
			if utf8.RuneCountInString(row.Name) > lmsseed.MaxCourseNameLen {
				im.skip(res, r.Pos, SkipValueTooLong, fmt.Sprintf("course name longer than %d characters", lmsseed.MaxCourseNameLen))
				continue
			}

			staged = append(staged, lmsseed.Course{
				Name:        row.Name,
				Description: row.Description,
				Price:       row.Price,
				TeacherID:   row.TeacherID,
			})
		}

		commit(ctx, res, staged, im.store.CreateCourses)
	})
}

// ImportMembers stages enrollments of stored users in stored courses. A
// (course, user) pair is staged at most once and never when already stored.
func (im *Importer) ImportMembers(ctx context.Context, path string) PassResult {
	return im.run(PassMembers, path, func(res *PassResult) {
		courses, err := im.store.CourseIDs(ctx)
		if err != nil {
			res.Err = err
			return
		}
		users, err := im.store.UserIDs(ctx)
		if err != nil {
			res.Err = err
			return
		}
		pairs, err := im.store.MemberIndex(ctx)
		if err != nil {
			res.Err = err
			return
		}
		rows, err := source.ReadMembers(im.fs, path)
		if err != nil {
			res.Err = err
			return
		}
		res.Read = len(rows)

		var staged []lmsseed.CourseMember
		for _, r := range rows {
			if !r.OK() {
				im.skip(res, r.Pos, reasonFor(r.Err), r.Err.Error())
				continue
			}
			m := lmsseed.CourseMember{CourseID: r.Row.CourseID, UserID: r.Row.UserID, Role: r.Row.Role}
			if _, ok := courses[m.CourseID]; !ok {
				im.skip(res, r.Pos, SkipUnknownCourse, fmt.Sprintf("course %d", m.CourseID))
				continue
			}
			if _, ok := users[m.UserID]; !ok {
				im.skip(res, r.Pos, SkipUnknownUser, fmt.Sprintf("user %d", m.UserID))
				continue
			}
			if _, dup := pairs[m.Key()]; dup {
				im.skip(res, r.Pos, SkipDuplicateEnrollment, fmt.Sprintf("user %d already member of course %d", m.UserID, m.CourseID))
				continue
			}

			staged = append(staged, m)
			pairs[m.Key()] = 0 // staged, id not yet assigned
		}

		commit(ctx, res, staged, im.store.CreateMembers)
	})
}

// ImportContents stages content for stored courses. Content has no natural
// key, so running the pass twice creates every item twice.
func (im *Importer) ImportContents(ctx context.Context, path string) PassResult {
	return im.run(PassContents, path, func(res *PassResult) {
		courses, err := im.store.CourseIDs(ctx)
		if err != nil {
			res.Err = err
			return
		}
		rows, err := source.ReadContents(im.fs, path)
		if err != nil {
			res.Err = err
			return
		}
		res.Read = len(rows)

		var staged []lmsseed.CourseContent
		for _, r := range rows {
			if !r.OK() {
				im.skip(res, r.Pos, reasonFor(r.Err), r.Err.Error())
				continue
			}
			row := r.Row
			if _, ok := courses[row.CourseID]; !ok {
				im.skip(res, r.Pos, SkipUnknownCourse, fmt.Sprintf("content %q course %d", row.Name, row.CourseID))
				continue
			}
			if utf8.RuneCountInString(row.Name) > lmsseed.MaxContentNameLen {
				im.skip(res, r.Pos, SkipValueTooLong, fmt.Sprintf("content name longer than %d characters", lmsseed.MaxContentNameLen))
				continue
			}
			if utf8.RuneCountInString(row.VideoURL) > lmsseed.MaxVideoURLLen {
				im.skip(res, r.Pos, SkipValueTooLong, fmt.Sprintf("video_url longer than %d characters", lmsseed.MaxVideoURLLen))
				continue
			}

			staged = append(staged, lmsseed.CourseContent{
				Name:        row.Name,
				Description: row.Description,
				VideoURL:    row.VideoURL,
				CourseID:    row.CourseID,
			})
		}

		commit(ctx, res, staged, im.store.CreateContents)
	})
}

// ImportComments stages comments by enrolled users. The source user id passes
// through the remap strategy first; the comment then references the user's
// enrollment in the content's course, not the user.
func (im *Importer) ImportComments(ctx context.Context, path string) PassResult {
	return im.run(PassComments, path, func(res *PassResult) {
		contentCourse, err := im.store.ContentCourses(ctx)
		if err != nil {
			res.Err = err
			return
		}
		members, err := im.store.MemberIndex(ctx)
		if err != nil {
			res.Err = err
			return
		}
		users, err := im.store.UserIDs(ctx)
		if err != nil {
			res.Err = err
			return
		}
		rows, err := source.ReadComments(im.fs, path)
		if err != nil {
			res.Err = err
			return
		}
		res.Read = len(rows)

		var staged []lmsseed.Comment
		for _, r := range rows {
			if !r.OK() {
				im.skip(res, r.Pos, reasonFor(r.Err), r.Err.Error())
				continue
			}
			row := r.Row
			userID := im.remap.Remap(row.UserID)
			who := fmt.Sprintf("user %d", userID)
			if userID != row.UserID {
				who = fmt.Sprintf("user %d (original: %d)", userID, row.UserID)
			}

			if _, ok := users[userID]; !ok {
				im.skip(res, r.Pos, SkipUnknownUser, who)
				continue
			}
			courseID, ok := contentCourse[row.ContentID]
			if !ok {
				im.skip(res, r.Pos, SkipUnknownContent, fmt.Sprintf("content %d", row.ContentID))
				continue
			}
			if courseID == 0 {
				im.skip(res, r.Pos, SkipContentCourseMissing, fmt.Sprintf("content %d", row.ContentID))
				continue
			}
			memberID, ok := members[lmsseed.MemberKey{CourseID: courseID, UserID: userID}]
			if !ok {
				im.skip(res, r.Pos, SkipNoEnrollment, fmt.Sprintf("%s in course %d (content %d)", who, courseID, row.ContentID))
				continue
			}

			staged = append(staged, lmsseed.Comment{
				ContentID: row.ContentID,
				MemberID:  memberID,
				Comment:   row.Comment,
			})
		}

		commit(ctx, res, staged, im.store.CreateComments)
	})
}

func userFieldTooLong(row source.UserRow) (string, int, bool) {
	switch {
	case utf8.RuneCountInString(row.Email) > lmsseed.MaxEmailLen:
		return "email", lmsseed.MaxEmailLen, true
	case utf8.RuneCountInString(row.FirstName) > lmsseed.MaxPersonNameLen:
		return "first_name", lmsseed.MaxPersonNameLen, true
	case utf8.RuneCountInString(row.LastName) > lmsseed.MaxPersonNameLen:
		return "last_name", lmsseed.MaxPersonNameLen, true
	}
	return "", 0, false
}
