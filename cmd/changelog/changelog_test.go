package main

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validChangelog = `# Changelog

All notable changes to this project will be documented in this file.

## [Unreleased]

### Added
- Segment usage counts

## [1.0.0] - 2026-01-15

### Added
- Initial release
- Groups and segments

### Fixed
- Project ids with dots

## [0.1.0] - 2026-01-01

### Added
- Beta release

[Unreleased]: https://github.com/example/repo/compare/v1.0.0...HEAD
[1.0.0]: https://github.com/example/repo/compare/v0.1.0...v1.0.0
[0.1.0]: https://github.com/example/repo/releases/tag/v0.1.0
`

func TestParse(t *testing.T) {
	cl := Parse([]byte(validChangelog))

	assert.Equal(t, "Changelog", cl.Title)
	assert.Equal(t, 1, cl.TitleLine)
	require.Len(t, cl.Releases, 3)

	assert.Equal(t, Unreleased, cl.Releases[0].Version)
	assert.Empty(t, cl.Releases[0].Date)

	r := cl.Releases[1]
	assert.Equal(t, "1.0.0", r.Version)
	assert.Equal(t, "2026-01-15", r.Date)
	assert.Equal(t, 10, r.Line)
	require.Len(t, r.Sections, 2)
	assert.Equal(t, "Added", r.Sections[0].Type)
	assert.Equal(t, []string{"Initial release", "Groups and segments"}, r.Sections[0].Items)
	assert.Equal(t, "Fixed", r.Sections[1].Type)
	assert.True(t, strings.HasPrefix(r.Markdown, "### Added"))
	assert.NotContains(t, r.Markdown, "## [0.1.0]")

	assert.NotContains(t, cl.Releases[2].Markdown, "[0.1.0]:", "link definitions are stripped")
	assert.Len(t, cl.Links, 3)
	assert.Equal(t, "https://github.com/example/repo/compare/v0.1.0...v1.0.0", cl.Links["1.0.0"])
}

func TestRelease(t *testing.T) {
	cl := Parse([]byte(validChangelog))

	tests := []struct {
		name     string
		version  string
		expected string
	}{
		{"exact version", "1.0.0", "1.0.0"},
		{"with v prefix", "v1.0.0", "1.0.0"},
		{"older version", "0.1.0", "0.1.0"},
		{"unreleased", "unreleased", Unreleased},
		{"non-existent", "2.0.0", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := cl.Release(tt.version)
			if tt.expected == "" {
				assert.Nil(t, r)
				return
			}
			require.NotNil(t, r)
			assert.Equal(t, tt.expected, r.Version)
		})
	}
}

func TestReleaseHTML(t *testing.T) {
	cl := Parse([]byte(validChangelog))

	html, err := cl.Release("1.0.0").HTML()
	require.NoError(t, err)
	assert.Contains(t, html, "<h3>Added</h3>")
	assert.Contains(t, html, "<li>Groups and segments</li>")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		changelog string
		want      string
	}{
		{
			name:      "missing title",
			changelog: "## [Unreleased]\n\n[Unreleased]: https://example.com\n",
			want:      "Missing changelog title (# Changelog)",
		},
		{
			name:      "missing unreleased",
			changelog: "# Changelog\n\n## [1.0.0] - 2026-01-15\n\n### Added\n- Something\n\n[1.0.0]: https://example.com\n",
			want:      "Missing [Unreleased] section at the top",
		},
		{
			name:      "invalid date",
			changelog: "# Changelog\n\n## [Unreleased]\n\n## [1.0.0] - 15-01-2026\n\n### Added\n- Something\n\n[Unreleased]: https://example.com\n[1.0.0]: https://example.com\n",
			want:      "ISO 8601",
		},
		{
			name:      "missing date",
			changelog: "# Changelog\n\n## [Unreleased]\n\n## [1.0.0]\n\n[Unreleased]: https://example.com\n[1.0.0]: https://example.com\n",
			want:      "missing a release date",
		},
		{
			name:      "invalid change type",
			changelog: "# Changelog\n\n## [Unreleased]\n\n### New\n- Something\n\n[Unreleased]: https://example.com\n",
			want:      "Invalid change type 'New'",
		},
		{
			name:      "empty section",
			changelog: "# Changelog\n\n## [Unreleased]\n\n### Added\n\n[Unreleased]: https://example.com\n",
			want:      "Section 'Added' has no entries",
		},
		{
			name:      "missing link definition",
			changelog: "# Changelog\n\n## [Unreleased]\n\n## [1.0.0] - 2026-01-15\n\n### Added\n- Something\n",
			want:      "Missing link definition for [1.0.0]",
		},
		{
			name:      "releases out of order",
			changelog: "# Changelog\n\n## [Unreleased]\n\n## [1.0.0] - 2026-01-15\n\n## [1.1.0] - 2026-02-01\n\n[Unreleased]: https://example.com\n[1.0.0]: https://example.com\n[1.1.0]: https://example.com\n",
			want:      "dated after the release above it",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problems := Validate(Parse([]byte(tt.changelog)))
			assert.True(t, hasProblem(problems, tt.want), "expected %q in %v", tt.want, problems)
		})
	}
}

func TestValidateValid(t *testing.T) {
	assert.Empty(t, Validate(Parse([]byte(validChangelog))))
}

func TestRepositoryChangelogIsValid(t *testing.T) {
	content, err := os.ReadFile("../../CHANGELOG.md")
	require.NoError(t, err)
	assert.Empty(t, Validate(Parse(content)))
}

func hasProblem(problems []Problem, substr string) bool {
	for _, p := range problems {
		if strings.Contains(p.Message, substr) {
			return true
		}
	}
	return false
}
