package api

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/aggieseek/seatwatch/api/section"
	"github.com/morikuni/failure/v2"
	"github.com/samber/lo"
)

// ErrorCode defines error types for API operations
type ErrorCode string

const (
	// ErrNoClasses represents a term whose listing is empty
	ErrNoClasses ErrorCode = "NoClasses"
	// ErrClassesUnavailable represents a listing fetch that failed
	ErrClassesUnavailable ErrorCode = "ClassesUnavailable"
	// ErrTermNotFound represents a term code the portal does not list
	ErrTermNotFound ErrorCode = "TermNotFound"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}

// Primary fields that carry prose, sometimes as HTML
var proseKeys = []string{"COURSE_DESCRIPTION", "SECTION_TEXT"}

var titleKeys = []string{"COURSE_TITLE", "SECTION_TITLE", "TITLE"}

// Document renders a section record as markdown for terminal display
func Document(rec *section.Record) (string, error) {
	if !rec.Found() {
		return "# Section not found\n\n" + bullets(rec.Errors), nil
	}

	var sections []string

	heading := "# " + rec.CourseName
	if title, ok := firstString(rec.Fields, titleKeys); ok {
		heading += ": " + title
	}
	sections = append(sections, heading)

	converter := md.NewConverter("", true, nil)
	for _, key := range proseKeys {
		s, ok := rec.Fields[key].(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		text, err := converter.ConvertString(s)
		if err != nil {
			return "", failure.Wrap(err, failure.Context{"field": key})
		}
		sections = append(sections, text)
	}

	var metadata []string
	metadata = append(metadata, fmt.Sprintf("**Instructor:** %s", rec.Instructor))
	if rec.CV != "" {
		metadata = append(metadata, fmt.Sprintf("**CV:** %s", rec.CV))
	}
	metadata = append(metadata, fmt.Sprintf("**Syllabus:** %s", rec.Syllabus))
	sections = append(sections, strings.Join(metadata, "  \n"))

	sections = append(sections, "## Details\n\n"+fieldTable(rec.Fields))

	names := lo.Keys(rec.OtherAttributes)
	slices.Sort(names)
	for _, name := range names {
		payload := rec.OtherAttributes[name]
		if isBlank(payload) {
			continue
		}
		b, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return "", failure.Wrap(err, failure.Context{"resource": name})
		}
		sections = append(sections, fmt.Sprintf("## %s\n\n```json\n%s\n```", name, b))
	}

	if len(rec.Errors) > 0 {
		sections = append(sections, "## Errors\n\n"+bullets(rec.Errors))
	}

	return strings.Join(sections, "\n\n"), nil
}

// fieldTable lists scalar primary fields; nested values are left out
func fieldTable(fields map[string]any) string {
	keys := lo.Keys(fields)
	slices.Sort(keys)

	var b strings.Builder
	b.WriteString("| Field | Value |\n|---|---|\n")
	for _, k := range keys {
		if slices.Contains(proseKeys, k) {
			continue
		}
		switch v := fields[k].(type) {
		case map[string]any, []any:
			continue
		case nil:
			fmt.Fprintf(&b, "| %s | |\n", k)
		default:
			fmt.Fprintf(&b, "| %s | %s |\n", k, strings.ReplaceAll(fmt.Sprint(v), "|", `\|`))
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func bullets(items []string) string {
	return strings.Join(lo.Map(items, func(s string, _ int) string {
		return "- " + s
	}), "\n")
}

func firstString(fields map[string]any, keys []string) (string, bool) {
	for _, k := range keys {
		if s, ok := fields[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s), true
		}
	}
	return "", false
}

func isBlank(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case map[string]any:
		return len(v) == 0
	case []any:
		return len(v) == 0
	}
	return false
}
