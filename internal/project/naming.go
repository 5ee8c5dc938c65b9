package project

import (
	"regexp"
	"sort"
	"strings"
)

var (
	// projectIDPattern finds candidate project IDs embedded in free text.
	// Matches are re-validated with CheckProjectID.
	projectIDPattern = regexp.MustCompile(`P[0-9]{4}-[A-Z]{2}[A-Z0-9]-[A-Z]{4}`)

	// namePattern splits "P2024-JAS-ABCD - RNA-seq analysis (R12345)".
	namePattern = regexp.MustCompile(
		`^(?P<project_id>P\d{4}-(?:[A-Z]{2}\d|[A-Z]{3})-[A-Z]{4})?` +
			`(?:\s*[-–—]\s*|\s+)?` +
			`(?P<project_name>[^()\[\]]+?)?` +
			`(?:\s*[(\[]\s*(?P<grant_code>[^)\]]+?)\s*[)\]])?$`)
)

// NameParts are the components of a service-side project title.
type NameParts struct {
	ProjectID string `json:"project_id,omitempty"`
	Name      string `json:"name,omitempty"`
	GrantCode string `json:"grant_code,omitempty"`
}

// DisplayName formats a project title as used on the tracking services:
//
//	P2024-JAS-ABCD
//	P2024-JAS-ABCD - RNA-seq analysis
//	P2024-JAS-ABCD - RNA-seq analysis (R12345)
func DisplayName(p Identifier) string {
	var b strings.Builder
	b.WriteString(p.ID())
	if p.Name() != "" {
		b.WriteString(" - ")
		b.WriteString(p.Name())
	}
	if p.GrantCode() != "" {
		b.WriteString(" (")
		b.WriteString(p.GrantCode())
		b.WriteString(")")
	}
	return b.String()
}

// DecomposeProjectName splits a project title back into ID, name and grant
// code. Missing parts are left empty; a title that does not match at all
// yields a zero NameParts.
func DecomposeProjectName(title string) NameParts {
	m := namePattern.FindStringSubmatch(strings.TrimSpace(title))
	if m == nil {
		return NameParts{}
	}
	var parts NameParts
	for i, group := range namePattern.SubexpNames() {
		switch group {
		case "project_id":
			parts.ProjectID = m[i]
		case "project_name":
			parts.Name = strings.TrimSpace(m[i])
		case "grant_code":
			parts.GrantCode = strings.TrimSpace(m[i])
		}
	}
	return parts
}

// FindProjectIDs returns the unique, sorted project IDs embedded in names.
func FindProjectIDs(names []string) []string {
	seen := make(map[string]struct{})
	for _, name := range names {
		for _, match := range projectIDPattern.FindAllString(name, -1) {
			if CheckProjectID(match) {
				seen[match] = struct{}{}
			}
		}
	}
	return sortedKeys(seen)
}

// UserIDsFromProjectIDs returns the unique, sorted user segments of ids.
// Malformed IDs are skipped.
func UserIDsFromProjectIDs(ids []string) []string {
	seen := make(map[string]struct{})
	for _, id := range ids {
		p, err := ParseProjectID(id)
		if err != nil {
			continue
		}
		seen[p.UserID()] = struct{}{}
	}
	return sortedKeys(seen)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
