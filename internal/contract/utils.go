package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Astrarre/FebbGradle/schema"
	"github.com/fatih/color"
)

// Color variables for console output.
var (
	SuccessColor = color.New(color.FgGreen, color.Bold) // SuccessColor marks committed runs.
	SkippedColor = color.New(color.FgCyan)              // SkippedColor marks runs short-circuited by the record.
	FailedColor  = color.New(color.FgRed, color.Bold)   // FailedColor marks failed runs.
	PendingColor = color.New(color.FgYellow)            // PendingColor marks runs that never finished.
)

// GetPlainLabel returns a plain text label for a run status. This is the core
// logic used for CSV, JSON, and table printing.
func GetPlainLabel(status schema.RunStatus) string {
	switch status {
	case schema.RunSuccess:
		return "Rewritten"
	case schema.RunSkipped:
		return "Up to date"
	case schema.RunFailed:
		return "Failed"
	default:
		return "Pending"
	}
}

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(status schema.RunStatus) string {
	text := GetPlainLabel(status)
	switch status {
	case schema.RunSuccess:
		return SuccessColor.Sprint(text)
	case schema.RunSkipped:
		return SkippedColor.Sprint(text)
	case schema.RunFailed:
		return FailedColor.Sprint(text)
	default:
		return PendingColor.Sprint(text)
	}
}

// StatusOf maps a process result to the status recorded in history.
func StatusOf(result schema.ProcessResult, err error) schema.RunStatus {
	switch {
	case err != nil:
		return schema.RunFailed
	case result.Skipped:
		return schema.RunSkipped
	case result.State == schema.StateCommitted:
		return schema.RunSuccess
	default:
		return schema.RunPending
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// ShouldIgnore returns true if the given entry name matches any of the exclude patterns.
// It supports simple glob patterns (using filepath.Match) when the pattern
// contains wildcard characters (*, ?, [ ]). Patterns ending with '/' are treated
// as prefixes. Patterns starting with '.' are treated as suffix matches.
// A user can provide patterns like "META-INF/", "*$Generated.class".
func ShouldIgnore(path string, excludes []string) bool {
	for _, ex := range excludes {
		ex = strings.TrimSpace(ex)
		if ex == "" {
			continue
		}

		// If the pattern contains glob characters, try filepath.Match.
		if strings.ContainsAny(ex, "*?[") {
			pat := strings.ReplaceAll(ex, "**", "*")
			if ok, err := filepath.Match(pat, path); err == nil && ok {
				return true
			}
			// Also try matching against the base name (e.g. *$Mixin.class)
			if ok, err := filepath.Match(pat, filepath.Base(path)); err == nil && ok {
				return true
			}
			continue
		}

		switch {
		case strings.HasSuffix(ex, "/"):
			if strings.HasPrefix(path, ex) {
				return true
			}
		case strings.HasPrefix(ex, "."):
			if strings.HasSuffix(path, ex) {
				return true
			}
		case strings.Contains(path, ex):
			return true
		}
	}
	return false
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetRecordDBFilePath returns the path to the SQLite DB file for invalidation records.
func GetRecordDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".febb_records.db"
	}
	return filepath.Join(homeDir, ".febb_records.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for run history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".febb_history.db"
	}
	return filepath.Join(homeDir, ".febb_history.db")
}

// GetWorkDirPath returns the directory for extracted manifests when there is
// no build output directory to put them under.
func GetWorkDirPath() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "febb")
	}
	return filepath.Join(cacheDir, "febb")
}

// TruncatePath truncates a path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to leave room for the "..." prefix.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
