// Package fieldparse coerces raw column values into field recordings.
//
// Parsing is layered: a value's human-readable text wins over its structured
// raw payload when both exist; known raw shapes (status label, date,
// list-of-people) are unwrapped next; anything else passes through verbatim.
// Date parsing tries absolute layouts first and natural language last.
package fieldparse

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/ok-very/autoart/internal/types"
)

// dateLayouts are tried in order before falling back to natural language.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"02-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

var nlParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// ParseDate parses a date-ish string. Absolute layouts are tried first,
// then natural-language phrases ("next friday", "tomorrow") relative to now.
func ParseDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date string")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	r, err := nlParser.Parse(s, now)
	if err != nil || r == nil {
		return time.Time{}, fmt.Errorf("unrecognized date: %q", s)
	}
	return r.Time, nil
}

// IsDateLike reports whether the string parses as a date by any layer.
func IsDateLike(s string) bool {
	_, err := ParseDate(s, time.Now())
	return err == nil
}

// statusShape matches the raw payload of a status column.
type statusShape struct {
	Label string `json:"label"`
	Index *int   `json:"index"`
}

// dateShape matches the raw payload of a date column.
type dateShape struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// peopleShape matches the raw payload of a people column.
type peopleShape struct {
	PersonsAndTeams []struct {
		ID   int64  `json:"id"`
		Kind string `json:"kind"`
	} `json:"personsAndTeams"`
}

type linkShape struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

type checkboxShape struct {
	Checked string `json:"checked"`
}

// Unwrap converts one column value into a display value and render hint.
// Text is preferred over the raw payload whenever it is non-empty.
func Unwrap(cv types.ColumnValue) (string, types.RenderHint) {
	hint := hintForSourceType(cv.SourceType)

	if strings.TrimSpace(cv.Text) != "" {
		return cv.Text, hint
	}
	if len(cv.RawValue) == 0 || string(cv.RawValue) == "null" {
		return "", hint
	}

	switch cv.SourceType {
	case "status", "color":
		var s statusShape
		if err := json.Unmarshal(cv.RawValue, &s); err == nil && s.Label != "" {
			return s.Label, types.HintStatus
		}
	case "date":
		var d dateShape
		if err := json.Unmarshal(cv.RawValue, &d); err == nil && d.Date != "" {
			if d.Time != "" {
				return d.Date + " " + d.Time, types.HintDate
			}
			return d.Date, types.HintDate
		}
	case "people", "person", "multiple-person":
		var p peopleShape
		if err := json.Unmarshal(cv.RawValue, &p); err == nil && len(p.PersonsAndTeams) > 0 {
			ids := make([]string, 0, len(p.PersonsAndTeams))
			for _, pt := range p.PersonsAndTeams {
				ids = append(ids, fmt.Sprintf("%d", pt.ID))
			}
			return strings.Join(ids, ", "), types.HintPerson
		}
	case "link":
		var l linkShape
		if err := json.Unmarshal(cv.RawValue, &l); err == nil && l.URL != "" {
			if l.Text != "" {
				return l.Text, types.HintLink
			}
			return l.URL, types.HintLink
		}
	case "checkbox":
		var c checkboxShape
		if err := json.Unmarshal(cv.RawValue, &c); err == nil && c.Checked != "" {
			return c.Checked, types.HintCheckbox
		}
	}

	// Raw JSON strings unwrap to their content; everything else verbatim.
	var asString string
	if err := json.Unmarshal(cv.RawValue, &asString); err == nil {
		return asString, hint
	}
	return string(cv.RawValue), hint
}

// hintForSourceType maps a source column type to the default render hint.
func hintForSourceType(sourceType string) types.RenderHint {
	switch sourceType {
	case "status", "color":
		return types.HintStatus
	case "date", "timeline", "creation_log", "last_updated":
		return types.HintDate
	case "people", "person", "multiple-person":
		return types.HintPerson
	case "numbers", "numeric", "rating":
		return types.HintNumber
	case "link":
		return types.HintLink
	case "checkbox":
		return types.HintCheckbox
	case "long-text", "long_text":
		return types.HintTextarea
	default:
		return types.HintText
	}
}

// relationShape matches board_relation / dependency raw payloads.
type relationShape struct {
	LinkedPulseIDs []struct {
		LinkedPulseID int64 `json:"linkedPulseId"`
	} `json:"linkedPulseIds"`
}

// IsRelationType reports whether a source column type carries cross-board
// references rather than an inline value.
func IsRelationType(sourceType string) bool {
	switch sourceType {
	case "board_relation", "board-relation", "dependency", "mirror":
		return true
	}
	return false
}

// LinkedIDs extracts the external ids referenced by a relation column.
// Falls back to splitting the text rendering when the raw payload has no
// recognizable shape (mirror columns render as comma-separated names/ids).
func LinkedIDs(cv types.ColumnValue) []string {
	if len(cv.RawValue) > 0 && string(cv.RawValue) != "null" {
		var rel relationShape
		if err := json.Unmarshal(cv.RawValue, &rel); err == nil && len(rel.LinkedPulseIDs) > 0 {
			ids := make([]string, 0, len(rel.LinkedPulseIDs))
			for _, lp := range rel.LinkedPulseIDs {
				ids = append(ids, fmt.Sprintf("%d", lp.LinkedPulseID))
			}
			return ids
		}
	}
	if strings.TrimSpace(cv.Text) == "" {
		return nil
	}
	parts := strings.Split(cv.Text, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}
