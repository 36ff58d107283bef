package lmsseed

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess          = 0  // Command completed successfully
	ExitGeneralError     = 1  // Unknown or unclassified error
	ExitUsageError       = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic            = 3  // Internal panic (unexpected crash)
	ExitConfigError      = 10 // Invalid configuration or parameters
	ExitConnectionError  = 11 // Failed to connect to database
	ExitImportIncomplete = 15 // One or more import passes failed
)

const (
	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 1 * time.Minute

	// DefaultRetryMaxAttempts is the default maximum number of retry attempts.
	DefaultRetryMaxAttempts = 3

	// DefaultTimeout bounds a whole import run.
	DefaultTimeout = 30 * time.Minute

	// DefaultManagementDB is the database used for server-level operations
	// such as CREATE DATABASE.
	DefaultManagementDB = "postgres"

	// DefaultDataDir is where source files are looked up when no directory is given.
	DefaultDataDir = "./csv_data"

	// DefaultPassword is hashed for user rows that carry no password.
	DefaultPassword = "password"

	// DefaultCourseName and DefaultContentName fill in absent names.
	DefaultCourseName  = "Untitled Course"
	DefaultContentName = "Untitled Content"

	// Remap defaults: comment user ids above DefaultRemapThreshold are replaced
	// by a uniform random id in [DefaultRemapMin, DefaultRemapMax].
	DefaultRemapThreshold = 50
	DefaultRemapMin       = 5
	DefaultRemapMax       = 40
)

// Source file names, relative to the data directory.
const (
	UsersFile    = "user-data.csv"
	CoursesFile  = "course-data.csv"
	MembersFile  = "member-data.csv"
	ContentsFile = "contents.json"
	CommentsFile = "comments.json"
)
