package contract

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mergerisk/mergerisk/schema"
)

// MaxBranchLength bounds the accepted length of a ref name.
const MaxBranchLength = 256

// Color variables for console output.
var (
	CriticalColor = color.New(color.FgRed, color.Bold)     // standard danger
	HighColor     = color.New(color.FgMagenta, color.Bold) // strong, distinct warning
	MediumColor   = color.New(color.FgYellow)              // standard caution, not bold
	LowColor      = color.New(color.FgCyan)                // informational signal
)

// ValidateBranchName rejects ref names that could break out of a git
// revision argument. Empty names, overlong names, shell metacharacters,
// path traversal, and git-reserved leading/trailing characters all fail.
// With argv-array execution this is defense in depth, not the primary
// injection control.
func ValidateBranchName(name string) bool {
	if name == "" || len(name) >= MaxBranchLength {
		return false
	}
	if strings.ContainsAny(name, ";|&$`\n\r\t") {
		return false
	}
	if strings.Contains(name, "..") {
		return false
	}
	if name[0] == '-' || name[0] == '.' {
		return false
	}
	last := name[len(name)-1]
	if last == '.' || last == '/' {
		return false
	}
	return true
}

// GetPlainLabel returns the plain text severity label. This is the core
// logic used for CSV, JSON, and table printing.
func GetPlainLabel(severity schema.Severity) string {
	return string(severity)
}

// GetColorLabel returns a colored severity label for console output.
func GetColorLabel(severity schema.Severity) string {
	switch severity {
	case schema.SeverityCritical:
		return CriticalColor.Sprint(severity)
	case schema.SeverityHigh:
		return HighColor.Sprint(severity)
	case schema.SeverityMedium:
		return MediumColor.Sprint(severity)
	default:
		return LowColor.Sprint(severity)
	}
}

// TruncatePath shortens a path to maxLen runes, keeping the tail which
// carries the file name.
func TruncatePath(path string, maxLen int) string {
	if maxLen <= 3 || len(path) <= maxLen {
		return path
	}
	return "..." + path[len(path)-maxLen+3:]
}

// LogError prints the one-line error contract to stderr.
// Quiet mode suppresses informational output but never errors.
func LogError(err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

// LogFatal logs an error message to stderr and exits. Reserved for
// initialization failures before the exit-code mapping applies.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: %s: %v\n", msg, err)
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
}
