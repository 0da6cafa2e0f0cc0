package main

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	linkDefPattern = regexp.MustCompile(`^\[[^\]]+\]:\s+\S+\s*$`)
	dateRegex      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	versionRegex   = regexp.MustCompile(`^\d+\.\d+\.\d+$`)
	changeTypes    = []string{"Added", "Changed", "Deprecated", "Removed", "Fixed", "Security"}
)

// Problem is a single validation issue. Line is 0 for file-level issues.
type Problem struct {
	Line    int
	Message string
}

func (p Problem) String() string {
	if p.Line > 0 {
		return fmt.Sprintf("Line %d: %s", p.Line, p.Message)
	}
	return p.Message
}

// Validate checks a parsed changelog against Keep a Changelog.
func Validate(cl *Changelog) []Problem {
	var problems []Problem
	add := func(line int, format string, args ...interface{}) {
		problems = append(problems, Problem{Line: line, Message: fmt.Sprintf(format, args...)})
	}

	switch {
	case cl.Title == "":
		add(0, "Missing changelog title (# Changelog)")
	case !strings.Contains(strings.ToLower(cl.Title), "changelog"):
		add(cl.TitleLine, "Title should contain 'Changelog'")
	}

	if len(cl.Releases) == 0 || cl.Releases[0].Version != Unreleased {
		add(0, "Missing [Unreleased] section at the top")
	}

	seen := map[string]bool{}
	previousDate := ""
	for _, r := range cl.Releases {
		if seen[r.Version] {
			add(r.Line, "Version '%s' is listed more than once", r.Version)
		}
		seen[r.Version] = true

		if _, ok := cl.Links[r.Version]; !ok {
			add(0, "Missing link definition for [%s]", r.Version)
		}

		for _, s := range r.Sections {
			if !isChangeType(s.Type) {
				add(s.Line, "Invalid change type '%s'. Valid types: %s", s.Type, strings.Join(changeTypes, ", "))
			}
			if len(s.Items) == 0 {
				add(s.Line, "Section '%s' has no entries", s.Type)
			}
		}

		if r.Version == Unreleased {
			continue
		}
		if !versionRegex.MatchString(r.Version) {
			add(r.Line, "Version '%s' should follow semantic versioning (X.Y.Z)", r.Version)
		}
		switch {
		case r.Date == "":
			add(r.Line, "Version '%s' is missing a release date", r.Version)
		case !dateRegex.MatchString(r.Date):
			add(r.Line, "Date '%s' should be in ISO 8601 format (YYYY-MM-DD)", r.Date)
		case previousDate != "" && r.Date > previousDate:
			add(r.Line, "Version '%s' is dated after the release above it", r.Version)
		default:
			previousDate = r.Date
		}
	}
	return problems
}

func isChangeType(t string) bool {
	for _, ct := range changeTypes {
		if ct == t {
			return true
		}
	}
	return false
}
