package tui

import (
	"io"
	"os"

	"golang.org/x/term"
)

// ColorDisabledByEnv reports whether the environment asks for plain output:
// NO_COLOR (https://no-color.org), CI, or LMSSEED_PLAIN=1.
func ColorDisabledByEnv() bool {
	return os.Getenv("NO_COLOR") != "" ||
		os.Getenv("CI") != "" ||
		os.Getenv("LMSSEED_PLAIN") == "1"
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// ColorEnabled reports whether styled output should be written to w.
func ColorEnabled(w io.Writer) bool {
	return !ColorDisabledByEnv() && IsTerminal(w)
}
