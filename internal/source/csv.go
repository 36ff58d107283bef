package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vvka-141/lmsseed/pkg/lmsseed"
)

// csvRecord maps trimmed, lower-cased header names to trimmed cell values.
// A column missing from a short row is absent from the map.
type csvRecord map[string]string

func (r csvRecord) get(key string) (string, bool) {
	v, ok := r[key]
	return v, ok
}

// readCSV reads a header-driven CSV document. Blank lines are skipped, rows
// may be ragged, and an empty document yields no records.
func readCSV(r io.Reader, each func(line int, rec csvRecord)) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("header: %v: %w", err, lmsseed.ErrSourceMalformed)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.ToLower(strings.TrimSpace(h))
	}

	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%v: %w", err, lmsseed.ErrSourceMalformed)
		}
		line, _ := cr.FieldPos(0)

		rec := make(csvRecord, len(columns))
		for i, name := range columns {
			if i < len(fields) && name != "" {
				rec[name] = strings.TrimSpace(fields[i])
			}
		}
		each(line, rec)
	}
}

func decodeCSV[T any](parse func(csvRecord) (T, error)) func(io.Reader) ([]Result[T], error) {
	return func(r io.Reader) ([]Result[T], error) {
		var out []Result[T]
		err := readCSV(r, func(line int, rec csvRecord) {
			row, err := parse(rec)
			out = append(out, Result[T]{Pos: line, Row: row, Err: err})
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	}
}
