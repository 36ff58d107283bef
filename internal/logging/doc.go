// Package logging implements lmsseed.Logger.
//
//   - ConsoleLogger writes to stderr (or any io.Writer), styling prefixes when the
//     destination is a color-capable terminal.
//   - NullLogger discards everything.
package logging
