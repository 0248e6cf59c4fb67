package schema

import (
	"strings"
	"unicode/utf8"
)

// SimpleName returns the last segment of a binary class name, so
// "net/minecraft/block/Block$Settings" becomes "Block$Settings".
func SimpleName(className string) string {
	if i := strings.LastIndexByte(className, '/'); i >= 0 {
		return className[i+1:]
	}
	return className
}

// PackageName returns everything before the last '/' of a binary class name,
// or an empty string for the default package.
func PackageName(className string) string {
	if i := strings.LastIndexByte(className, '/'); i >= 0 {
		return className[:i]
	}
	return ""
}

// AbbreviateClassName formats "net/minecraft/block/Block" to "n/m/b/Block".
// Names in the default package are returned unchanged.
func AbbreviateClassName(className string) string {
	parts := strings.Split(className, "/")
	if len(parts) < 2 {
		return className
	}
	for i, p := range parts[:len(parts)-1] {
		if r, _ := utf8.DecodeRuneInString(p); r != utf8.RuneError {
			parts[i] = string(r)
		}
	}
	return strings.Join(parts, "/")
}

// Truncate shortens s to at most maxRunes runes, ending with "..." when cut.
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string([]rune(s)[:maxRunes])
	}
	return string([]rune(s)[:maxRunes-3]) + "..."
}

// ClassNamesEqual compares two slices of class names, considering them equal
// if they contain the same names in the same order.
func ClassNamesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
