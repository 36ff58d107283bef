// Package filesystem abstracts read access to the import data directory so
// that passes can be exercised against an in-memory tree in tests.
//
// Missing files are reported with errors satisfying errors.Is(err, fs.ErrNotExist)
// by every implementation.
package filesystem
