// Package importer is the bulk loader. It makes five passes in dependency
// order (users, courses, course members, course contents, comments). Each
// pass loads the identifiers it validates against, decodes its source file,
// skips invalid or duplicate records with a distinct reason, and commits the
// survivors with a single all-or-nothing batch insert.
//
// Passes are independent fault domains: a missing or malformed file, or a
// rejected batch, aborts only the pass in which it happens. Nothing is rolled
// back across passes.
//
// The loader assumes it is the only writer between loading its prerequisite
// sets and committing a batch. A concurrent writer can make a batch violate a
// constraint; the store then rejects the whole batch and the pass fails.
package importer
