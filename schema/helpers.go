package schema

import (
	"path/filepath"
	"strings"
)

// ClassifySeverity discretizes a clamped probability into a severity
// level. All severity assignment flows through this function so that a
// file's severity is always a pure function of its probability.
func ClassifySeverity(probability float64) Severity {
	switch {
	case probability >= CriticalThreshold:
		return SeverityCritical
	case probability >= HighThreshold:
		return SeverityHigh
	case probability >= MediumThreshold:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// StatusForProbability maps an overall probability to the label recorded
// in the history log.
func StatusForProbability(probability float64) HistoryStatus {
	switch {
	case probability >= StatusCriticalThreshold:
		return StatusCritical
	case probability >= StatusWarningThreshold:
		return StatusWarning
	default:
		return StatusSuccess
	}
}

// AtLeast reports whether s is at or above the given severity level.
func (s Severity) AtLeast(other Severity) bool {
	return severityRank[s] >= severityRank[other]
}

// ExtensionOf extracts the extension after the last dot of the base name.
// Paths without a dot and hidden files both yield the wildcard sentinel.
func ExtensionOf(path string) string {
	base := filepath.Base(path)
	idx := strings.LastIndex(base, ".")
	if idx <= 0 {
		return WildcardExtension
	}
	return base[idx+1:]
}

// IsBuildCritical reports whether a path names a build-system file.
// Build-system breakage is disproportionately costly, so these files
// carry a flat risk multiplier regardless of extension.
func IsBuildCritical(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	for _, marker := range []string{"makefile", "cmake", "configure", "setup"} {
		if strings.Contains(base, marker) {
			return true
		}
	}
	for _, suffix := range []string{".mk", ".am", ".in"} {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	return false
}

// IsConfigurationFile reports whether a path names a configuration file
// for the CONFIGURATION rule category.
func IsConfigurationFile(path string) bool {
	lower := strings.ToLower(path)
	for _, suffix := range []string{".conf", ".config", ".ini", ".yaml", ".yml", ".toml"} {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}
