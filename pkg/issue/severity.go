package issue

import (
	"fmt"
	"strings"
)

// Severity defines how serious an issue is. Levels are ordered, so
// comparisons such as sev >= Problem are meaningful.
type Severity uint8

const (
	// Minor is a nitpick; fixing it is optional.
	Minor Severity = iota
	// Warning needs a human judgement call.
	Warning
	// Problem violates a guideline or criterion.
	Problem
	// Unrankable blocks the set from being ranked outright.
	Unrankable
	// Error means the check itself could not complete for some input.
	Error
)

var severityNames = [...]string{"minor", "warning", "problem", "unrankable", "error"}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "unknown"
}

// ParseSeverity parses a severity name, case-insensitively.
func ParseSeverity(s string) (Severity, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range severityNames {
		if name == s {
			return Severity(i), nil
		}
	}
	return 0, fmt.Errorf("unknown severity %q", s)
}

func (s Severity) MarshalText() ([]byte, error) {
	if int(s) >= len(severityNames) {
		return nil, fmt.Errorf("invalid severity %d", s)
	}
	return []byte(severityNames[s]), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
