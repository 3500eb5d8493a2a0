//go:build !windows

package config

import (
	"os"
	"strings"
	"unicode"

	"golang.org/x/term"
)

const badFileName = "_bad_file_name_"

// CleanFileName drops separators and control characters from a generated
// file name. Leading dots are removed so result is never hidden.
func CleanFileName(in string) string {
	out := strings.Map(func(sym rune) rune {
		if unicode.IsControl(sym) || sym == os.PathSeparator || sym == os.PathListSeparator {
			return -1
		}
		return sym
	}, in)
	out = strings.TrimLeft(strings.TrimSpace(out), ".")
	if len(out) == 0 {
		return badFileName
	}
	return out
}

// EnableColorOutput checks if colorized output is possible. NO_COLOR
// environment variable always disables it.
func EnableColorOutput(stream *os.File) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	return term.IsTerminal(int(stream.Fd()))
}
