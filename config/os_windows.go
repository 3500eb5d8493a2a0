//go:build windows

package config

import (
	"os"
	"strings"
	"unicode"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
	"golang.org/x/term"
)

const badFileName = "_bad_file_name_"

// CleanFileName drops characters Windows does not allow in file names.
// Trailing dots and spaces are removed as the shell ignores them.
func CleanFileName(in string) string {
	out := strings.Map(func(sym rune) rune {
		if unicode.IsControl(sym) || strings.ContainsRune(`<>":/\|?*`, sym) {
			return -1
		}
		return sym
	}, in)
	out = strings.TrimRight(strings.TrimSpace(out), ". ")
	if len(out) == 0 {
		return badFileName
	}
	return out
}

// EnableColorOutput checks if colorized output is possible and turns on
// VT100 sequence processing in Windows 10+ console. NO_COLOR environment
// variable always disables it.
func EnableColorOutput(stream *os.File) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}

	k, err := registry.OpenKey(registry.LOCAL_MACHINE, `SOFTWARE\Microsoft\Windows NT\CurrentVersion`, registry.QUERY_VALUE)
	if err != nil {
		return false
	}
	defer k.Close()

	if v, _, err := k.GetIntegerValue("CurrentMajorVersionNumber"); err != nil || v < 10 {
		return false
	}
	if !term.IsTerminal(int(stream.Fd())) {
		return false
	}

	var mode uint32
	h := windows.Handle(stream.Fd())
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		return false
	}
	return windows.SetConsoleMode(h, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING) == nil
}
