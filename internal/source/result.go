package source

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/vvka-141/lmsseed/internal/files/filesystem"
	"github.com/vvka-141/lmsseed/pkg/lmsseed"
)

// Result is one decoded record. Pos is the 1-based line number for CSV
// sources and the 0-based array index for JSON sources.
type Result[T any] struct {
	Pos int
	Row T
	Err error
}

// OK reports whether the record decoded into a usable row.
func (r Result[T]) OK() bool { return r.Err == nil }

// Problem classifies a FieldError.
type Problem int

const (
	Missing    Problem = iota // field absent or empty
	NotInteger                // field present but not an integer
	Invalid                   // field present with an unusable value
)

func (p Problem) String() string {
	switch p {
	case Missing:
		return "missing"
	case NotInteger:
		return "non-integer"
	case Invalid:
		return "invalid"
	default:
		return fmt.Sprintf("Problem(%d)", int(p))
	}
}

// FieldError describes why a single record was rejected while decoding.
// Field is empty when the record as a whole is unusable (e.g. a JSON element
// that is not an object).
type FieldError struct {
	Field   string
	Problem Problem
	Value   string
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s record: %s", e.Problem, e.Value)
	}
	if e.Problem == Missing {
		return fmt.Sprintf("missing %s", e.Field)
	}
	return fmt.Sprintf("%s %s: %q", e.Problem, e.Field, e.Value)
}

// AsFieldError unwraps err into a *FieldError.
func AsFieldError(err error) (*FieldError, bool) {
	var fe *FieldError
	ok := errors.As(err, &fe)
	return fe, ok
}

// decoded strips a leading byte order mark and replaces invalid UTF-8 with U+FFFD.
func decoded(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

func load[T any](fsys filesystem.FileSystemProvider, path string, decode func(io.Reader) ([]Result[T], error)) ([]Result[T], error) {
	f, err := fsys.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, lmsseed.ErrSourceMissing)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := decode(decoded(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}
