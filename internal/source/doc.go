// Package source decodes the import data files into typed rows.
//
// Every decoder returns one Result per input record. A record that cannot be
// turned into a row carries a *FieldError instead of aborting the file; only
// structural problems (unreadable CSV, invalid JSON, missing file) fail the
// whole source, wrapped in lmsseed.ErrSourceMalformed or lmsseed.ErrSourceMissing.
package source
