// Package changelog parses the release notes embedded from CHANGELOG.md
// and picks the entries a user has not seen yet.
package changelog

import (
	_ "embed"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/parleychat/parley/internal/markup"
)

//go:embed CHANGELOG.md
var Content string

// Entry represents a single version's changelog entry
type Entry struct {
	Version string
	Date    string
	Changes []string
}

// versionRegex matches version headers like "## v0.0.12 (2026-01-08)" or "## v0.0.12"
var versionRegex = regexp.MustCompile(`^##\s+v?(\d+\.\d+\.\d+)(?:\s+\(([^)]+)\))?`)

// Parse extracts changelog entries from markdown content
func Parse(content string) []Entry {
	var entries []Entry
	var current *Entry

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)

		if matches := versionRegex.FindStringSubmatch(line); matches != nil {
			if current != nil {
				entries = append(entries, *current)
			}
			current = &Entry{
				Version: matches[1],
				Date:    matches[2],
				Changes: []string{},
			}
			continue
		}

		if current != nil && strings.HasPrefix(line, "- ") {
			current.Changes = append(current.Changes, strings.TrimPrefix(line, "- "))
		}
	}

	if current != nil {
		entries = append(entries, *current)
	}
	return entries
}

// GetChangesSince returns the entries newer than lastSeen, newest first.
// An empty lastSeen returns everything.
func GetChangesSince(lastSeen string, entries []Entry) []Entry {
	if lastSeen == "" {
		return entries
	}

	var result []Entry
	for _, entry := range entries {
		if CompareVersions(entry.Version, lastSeen) > 0 {
			result = append(result, entry)
		}
	}
	return result
}

// CompareVersions compares two semantic versions with or without the
// leading "v". Invalid versions sort before valid ones.
func CompareVersions(a, b string) int {
	return semver.Compare(canonical(a), canonical(b))
}

func canonical(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// HTML renders entries as an overlay body.
func HTML(entries []Entry) string {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString("<p><b>v" + markup.EscapeTags(e.Version) + "</b>")
		if e.Date != "" {
			sb.WriteString(" <i>" + markup.EscapeTags(e.Date) + "</i>")
		}
		sb.WriteString("</p><ul>")
		for _, c := range e.Changes {
			sb.WriteString("<li>" + markup.EscapeTags(c) + "</li>")
		}
		sb.WriteString("</ul>")
	}
	return sb.String()
}
