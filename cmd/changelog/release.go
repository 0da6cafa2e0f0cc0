package main

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Unreleased is the version of the section collecting upcoming changes.
const Unreleased = "Unreleased"

// Section is one "### Added" style block of a release.
type Section struct {
	Type  string
	Line  int
	Items []string
}

// Release is one "## [1.2.0] - 2026-03-01" entry.
type Release struct {
	Version  string
	Date     string
	Line     int
	Sections []Section
	// Markdown is the body of the release below its heading.
	Markdown string
}

// Changelog is a parsed CHANGELOG.md.
type Changelog struct {
	Title     string
	TitleLine int
	Releases  []Release
	Links     map[string]string
}

// Release returns the release with the given version, ignoring a
// leading "v".
func (c *Changelog) Release(version string) *Release {
	version = strings.TrimPrefix(version, "v")
	for i := range c.Releases {
		if strings.EqualFold(strings.TrimPrefix(c.Releases[i].Version, "v"), version) {
			return &c.Releases[i]
		}
	}
	return nil
}

// Parse reads a Keep a Changelog document.
func Parse(source []byte) *Changelog {
	ctx := parser.NewContext()
	doc := goldmark.New().Parser().Parse(text.NewReader(source), parser.WithContext(ctx))

	cl := &Changelog{Links: map[string]string{}}
	for _, ref := range ctx.References() {
		cl.Links[string(ref.Label())] = string(ref.Destination())
	}

	var bodyStarts []int
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			line := lineOf(source, node)
			title := plainText(node, source)
			switch node.Level {
			case 1:
				if cl.Title == "" {
					cl.Title, cl.TitleLine = title, line
				}
			case 2:
				version, date := parseReleaseHeading(title)
				cl.Releases = append(cl.Releases, Release{Version: version, Date: date, Line: line})
				bodyStarts = append(bodyStarts, headingEnd(node))
			case 3:
				if r := cl.current(); r != nil {
					r.Sections = append(r.Sections, Section{Type: title, Line: line})
				}
			}
		case *ast.List:
			r := cl.current()
			if r == nil || len(r.Sections) == 0 {
				continue
			}
			s := &r.Sections[len(r.Sections)-1]
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				s.Items = append(s.Items, plainText(item, source))
			}
		}
	}

	for i := range cl.Releases {
		end := len(source)
		if i+1 < len(cl.Releases) {
			end = lineStart(source, cl.Releases[i+1].Line)
		}
		if start := bodyStarts[i]; start < end {
			cl.Releases[i].Markdown = stripLinkDefinitions(string(source[start:end]))
		}
	}
	return cl
}

func (c *Changelog) current() *Release {
	if len(c.Releases) == 0 {
		return nil
	}
	return &c.Releases[len(c.Releases)-1]
}

// parseReleaseHeading splits "[1.0.0] - 2024-01-15" into its parts.
// The brackets are gone from linked headings by the time they get here.
func parseReleaseHeading(heading string) (version, date string) {
	heading = strings.TrimSpace(heading)
	heading = strings.TrimPrefix(heading, "[")
	if idx := strings.Index(heading, "]"); idx != -1 {
		heading = heading[:idx] + heading[idx+1:]
	}
	if idx := strings.Index(heading, " - "); idx != -1 {
		return strings.TrimSpace(heading[:idx]), strings.TrimSpace(heading[idx+3:])
	}
	return heading, ""
}

// plainText concatenates the text below n, following links and code
// spans.
func plainText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}

func lineOf(source []byte, n ast.Node) int {
	lines := n.Lines()
	if lines.Len() == 0 {
		return 0
	}
	return bytes.Count(source[:lines.At(0).Start], []byte("\n")) + 1
}

func headingEnd(n ast.Node) int {
	lines := n.Lines()
	if lines.Len() == 0 {
		return 0
	}
	return lines.At(lines.Len() - 1).Stop
}

// lineStart returns the offset of the first byte of a 1-based line.
func lineStart(source []byte, line int) int {
	offset := 0
	for i := 1; i < line; i++ {
		next := bytes.IndexByte(source[offset:], '\n')
		if next == -1 {
			return len(source)
		}
		offset += next + 1
	}
	return offset
}

func stripLinkDefinitions(markdown string) string {
	var kept []string
	for _, line := range strings.Split(markdown, "\n") {
		if !linkDefPattern.MatchString(line) {
			kept = append(kept, line)
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// HTML renders the body of a release.
func (r *Release) HTML() (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(r.Markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
