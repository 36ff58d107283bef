// Package store implements lmsseed.Store.
//
// Postgres writes each batch with COPY inside a single transaction, so a
// constraint violation anywhere in the batch rolls back all of it. Memory keeps
// the same constraints in process and backs unit tests and dry runs.
package store
