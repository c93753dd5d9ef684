// Package schemamatch reconciles an item's field recordings with existing
// record-type schemas: it scores every known schema against the recordings,
// picks the best fit, and synthesizes a new schema proposal when no existing
// one fits well enough.
package schemamatch

import (
	"fmt"
	"strings"

	"github.com/ok-very/autoart/internal/types"
)

// FieldDef is one field of a record-type schema.
type FieldDef struct {
	Key   string `json:"key"`
	Type  string `json:"type"`
	Label string `json:"label"`
}

// Definition is a record-type schema as supplied by the external schema
// registry.
type Definition struct {
	ID     string     `json:"id,omitempty"`
	Name   string     `json:"name"`
	Fields []FieldDef `json:"fields"`
}

// MatchQuality grades a single recording-to-field pairing.
type MatchQuality string

const (
	QualityExact      MatchQuality = "exact"
	QualityCompatible MatchQuality = "compatible"
	QualityPartial    MatchQuality = "partial"
	QualityNone       MatchQuality = "none"
)

// FieldMatchDetail explains how one recording paired with a schema field.
type FieldMatchDetail struct {
	RecordingFieldName string       `json:"recording_field_name"`
	MatchedFieldKey    string       `json:"matched_field_key,omitempty"`
	MatchQuality       MatchQuality `json:"match_quality"`
	Score              float64      `json:"score"`
}

// Result is the outcome of matching recordings against the known schemas.
// MatchedDefinition is nil when nothing scored above the drop threshold;
// ProposedDefinition is non-nil whenever human review should consider a new
// schema.
type Result struct {
	MatchedDefinition  *Definition        `json:"matched_definition,omitempty"`
	MatchScore         float64            `json:"match_score"`
	FieldMatches       []FieldMatchDetail `json:"field_matches,omitempty"`
	ProposedDefinition *Definition        `json:"proposed_definition,omitempty"`
	Rationale          string             `json:"rationale"`
}

// Decision thresholds. Between dropScore and confidentScore the matcher
// returns both the tentative match and a proposed alternative.
const (
	confidentScore = 0.7
	tentativeScore = 0.4
	dropScore      = 0.2
)

// Name-similarity weights.
const (
	nameExact        = 0.7
	nameContains     = 0.5
	nameKeySubstring = 0.4
)

// Hint-compatibility weights.
const (
	hintPreferred = 0.3
	hintCompat    = 0.2
	hintFallback  = 0.1
	hintAbsent    = 0.1
)

// Match scores the recordings against every definition and applies the
// decision policy. An empty definition list always yields a proposal.
func Match(recordings []types.FieldRecording, defs []Definition) Result {
	var (
		best        *Definition
		bestScore   float64
		bestDetails []FieldMatchDetail
	)
	for i := range defs {
		score, details := scoreDefinition(recordings, &defs[i])
		if best == nil || score > bestScore {
			best = &defs[i]
			bestScore = score
			bestDetails = details
		}
	}

	switch {
	case best == nil:
		return Result{
			MatchScore:         0,
			ProposedDefinition: propose(recordings),
			Rationale:          "no existing record schemas to match against; proposing a new schema from the recordings",
		}
	case bestScore >= confidentScore:
		return Result{
			MatchedDefinition: best,
			MatchScore:        bestScore,
			FieldMatches:      bestDetails,
			Rationale:         fmt.Sprintf("confident match with %q (score %.2f)", best.Name, bestScore),
		}
	case bestScore >= dropScore:
		qualifier := "tentative"
		if bestScore < tentativeScore {
			qualifier = "weak"
		}
		return Result{
			MatchedDefinition:  best,
			MatchScore:         bestScore,
			FieldMatches:       bestDetails,
			ProposedDefinition: propose(recordings),
			Rationale:          fmt.Sprintf("%s match with %q (score %.2f); a new schema is proposed as an alternative", qualifier, best.Name, bestScore),
		}
	default:
		return Result{
			MatchScore:         bestScore,
			ProposedDefinition: propose(recordings),
			Rationale:          fmt.Sprintf("best candidate %q scored %.2f, below the match floor; proposing a new schema", best.Name, bestScore),
		}
	}
}

// scoreDefinition sums per-recording best-field scores and normalizes by
// max(recordingCount, fieldCount) so both missing and extraneous fields
// drag the score down.
func scoreDefinition(recordings []types.FieldRecording, def *Definition) (float64, []FieldMatchDetail) {
	if len(recordings) == 0 || len(def.Fields) == 0 {
		return 0, nil
	}

	details := make([]FieldMatchDetail, 0, len(recordings))
	var total float64
	for _, rec := range recordings {
		detail := bestFieldFor(rec, def.Fields)
		total += detail.Score
		details = append(details, detail)
	}

	denom := len(recordings)
	if len(def.Fields) > denom {
		denom = len(def.Fields)
	}
	return total / float64(denom), details
}

// bestFieldFor finds the schema field with the highest combined
// name-similarity + hint-compatibility score for one recording.
func bestFieldFor(rec types.FieldRecording, fields []FieldDef) FieldMatchDetail {
	detail := FieldMatchDetail{
		RecordingFieldName: rec.FieldName,
		MatchQuality:       QualityNone,
	}
	for _, f := range fields {
		nameScore := nameSimilarity(rec.FieldName, f)
		if nameScore == 0 {
			continue
		}
		hintScore := hintCompatibility(rec.RenderHint, f.Type)
		score := nameScore + hintScore
		if score > detail.Score {
			detail.Score = score
			detail.MatchedFieldKey = f.Key
			detail.MatchQuality = quality(nameScore, hintScore)
		}
	}
	return detail
}

func quality(nameScore, hintScore float64) MatchQuality {
	switch {
	case nameScore >= nameExact:
		return QualityExact
	case hintScore >= hintCompat:
		return QualityCompatible
	default:
		return QualityPartial
	}
}

// nameSimilarity compares a recording's field name against a schema field's
// label and key after normalization.
func nameSimilarity(fieldName string, f FieldDef) float64 {
	rec := normalize(fieldName)
	label := normalize(f.Label)
	key := normalize(f.Key)
	if rec == "" {
		return 0
	}
	switch {
	case rec == label || rec == key:
		return nameExact
	case label != "" && (strings.Contains(label, rec) || strings.Contains(rec, label)):
		return nameContains
	case key != "" && (strings.Contains(key, rec) || strings.Contains(rec, key)):
		return nameKeySubstring
	default:
		return 0
	}
}

// normalize lowercases and strips everything but letters and digits.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// preferredFieldType maps a render hint to the field type it most wants.
var preferredFieldType = map[types.RenderHint]string{
	types.HintText:     "text",
	types.HintTextarea: "textarea",
	types.HintPerson:   "person",
	types.HintDate:     "date",
	types.HintStatus:   "select",
	types.HintNumber:   "number",
	types.HintLink:     "url",
	types.HintCheckbox: "checkbox",
}

// compatibleFieldTypes lists acceptable non-preferred types per hint.
var compatibleFieldTypes = map[types.RenderHint][]string{
	types.HintPerson:   {"user", "email"},
	types.HintDate:     {"datetime", "timestamp"},
	types.HintStatus:   {"enum", "option"},
	types.HintNumber:   {"integer", "float", "currency"},
	types.HintLink:     {"link"},
	types.HintCheckbox: {"boolean"},
}

// hintCompatibility scores how well a recording's render hint fits a schema
// field type. Recordings without a hint get a lenient flat score so
// hint-less CSV imports still match on names.
func hintCompatibility(hint types.RenderHint, fieldType string) float64 {
	if hint == "" {
		return hintAbsent
	}
	if preferredFieldType[hint] == fieldType {
		return hintPreferred
	}
	for _, t := range compatibleFieldTypes[hint] {
		if t == fieldType {
			return hintCompat
		}
	}
	if fieldType == "text" || fieldType == "textarea" {
		return hintFallback
	}
	return 0
}

// propose synthesizes a new schema directly from the recordings: field keys
// derive from recording names, field types from render hints.
func propose(recordings []types.FieldRecording) *Definition {
	def := &Definition{Name: "Imported Record"}
	seen := make(map[string]bool)
	for _, rec := range recordings {
		key := slug(rec.FieldName)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		fieldType := preferredFieldType[rec.RenderHint]
		if fieldType == "" {
			fieldType = "text"
		}
		def.Fields = append(def.Fields, FieldDef{
			Key:   key,
			Type:  fieldType,
			Label: rec.FieldName,
		})
	}
	return def
}

// slug converts a field name to a snake_case key.
func slug(s string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(s) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteRune('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
