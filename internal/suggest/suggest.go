// Package suggest produces ranked classification suggestions for items the
// rule engine could not confidently classify. Advisory only: nothing here
// mutates a plan; a human (or the external resolutions endpoint) applies a
// chosen suggestion.
package suggest

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/ok-very/autoart/internal/rules"
)

const (
	// minScore discards weak partial matches outright.
	minScore = 25
	// fallbackThreshold triggers the generic inference when no rule-based
	// suggestion reaches it.
	fallbackThreshold = 40
	// maxSuggestions caps the returned shortlist.
	maxSuggestions = 3

	// firstKeywordWeight doubles the weight of a rule's leading keyword.
	firstKeywordWeight = 2.0
	// partialWeight is the credit for a prefix/fuzzy partial match.
	partialWeight = 0.3
)

// SourceRule marks suggestions derived from a registry rule; SourceFallback
// marks the generic keyword inference.
const (
	SourceRule     = "rule"
	SourceFallback = "fallback"
)

// Suggestion is one ranked classification candidate. Ephemeral: computed on
// demand, never persisted.
type Suggestion struct {
	RuleID     string           `json:"rule_id,omitempty"`
	RuleSource string           `json:"rule_source"`
	FactKind   string           `json:"fact_kind,omitempty"`
	HintType   string           `json:"hint_type,omitempty"`
	OutputKind rules.OutputKind `json:"output_kind"`
	Confidence float64          `json:"confidence"`
	Reason     string           `json:"reason"`
	MatchScore int              `json:"match_score"`
}

// Suggest scores every rule in the set against the text by keyword overlap,
// executes candidate rules defensively, deduplicates by output key, and
// appends a generic fallback when no rule clears the threshold. Returns at
// most three suggestions sorted by score descending.
func Suggest(text string, ctx rules.Context, rs rules.RuleSet) []Suggestion {
	best := make(map[string]Suggestion)

	for _, rule := range rs.Rules() {
		score := partialScore(rule.Matcher.Keywords(), text)
		if score < minScore {
			continue
		}
		for _, out := range safeEmit(rule, text, ctx) {
			s := fromOutput(out, rule.ID, score)
			key := dedupeKey(s)
			if prev, ok := best[key]; !ok || s.MatchScore > prev.MatchScore {
				best[key] = s
			}
		}
	}

	suggestions := make([]Suggestion, 0, len(best))
	haveStrong := false
	for _, s := range best {
		suggestions = append(suggestions, s)
		if s.MatchScore >= fallbackThreshold {
			haveStrong = true
		}
	}

	if !haveStrong {
		if fb, ok := fallback(text); ok {
			suggestions = append(suggestions, fb)
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].MatchScore > suggestions[j].MatchScore
	})
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions
}

// safeEmit runs a rule's Emit, swallowing panics as "no suggestion from
// this rule". Rules are written for text their pattern matched; the
// suggester calls them on text it did not.
func safeEmit(rule rules.Rule, text string, ctx rules.Context) (outputs []rules.Output) {
	defer func() {
		if r := recover(); r != nil {
			outputs = nil
		}
	}()
	return rule.Emit(text, ctx)
}

// partialScore computes 0-100 keyword overlap between a rule's keywords and
// the text. The first keyword carries double weight; prefix or fuzzy
// partial matches earn 30% credit.
func partialScore(keywords []string, text string) int {
	if len(keywords) == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	words := strings.Fields(lower)

	var total, matched float64
	for i, kw := range keywords {
		weight := 1.0
		if i == 0 {
			weight = firstKeywordWeight
		}
		total += weight

		kwLower := strings.ToLower(kw)
		switch {
		case strings.Contains(lower, kwLower):
			matched += weight
		case hasPartial(words, kwLower):
			matched += weight * partialWeight
		}
	}
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * matched / total))
}

// hasPartial reports a prefix or fuzzy partial hit between the keyword and
// any word of the text.
func hasPartial(words []string, keyword string) bool {
	for _, w := range words {
		if len(w) >= 3 && commonPrefixLen(w, keyword) >= 3 {
			return true
		}
	}
	// Fuzzy assist catches inflections the prefix check misses
	// (e.g. "approve" inside "approvals").
	return len(fuzzy.FindNormalizedFold(keyword, words)) > 0
}

func commonPrefixLen(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

// fromOutput converts a rule output into a suggestion.
func fromOutput(out rules.Output, ruleID string, score int) Suggestion {
	s := Suggestion{
		RuleID:     ruleID,
		RuleSource: SourceRule,
		OutputKind: out.Kind(),
		MatchScore: score,
		Reason:     fmt.Sprintf("partial match (%d/100) against rule %q", score, ruleID),
	}
	switch v := out.(type) {
	case rules.FactCandidate:
		s.FactKind = v.FactKind
		s.Confidence = v.Confidence
	case rules.WorkEvent:
		s.HintType = v.EventType
		s.Confidence = float64(score) / 100
	case rules.FieldValue:
		s.HintType = v.Field
		s.Confidence = v.Confidence
	case rules.ActionHint:
		s.HintType = v.HintType
		s.Confidence = float64(score) / 100
	}
	return s
}

// dedupeKey collapses suggestions that would resolve to the same output.
func dedupeKey(s Suggestion) string {
	if s.FactKind != "" {
		return "fact:" + s.FactKind
	}
	return string(s.OutputKind) + ":" + s.HintType
}

// fallbackKinds maps keyword groups to fact kinds for the generic
// inference, checked in order.
var fallbackKinds = []struct {
	keywords   []string
	factKind   string
	confidence float64
}{
	{[]string{"waiting", "blocked", "pending", "hold"}, rules.FactBlocker, 0.6},
	{[]string{"decide", "decision", "choose", "approve"}, rules.FactDecision, 0.5},
	{[]string{"deliver", "ship", "send", "publish", "launch"}, rules.FactDeliverable, 0.5},
	{[]string{"plan", "design", "review", "draft"}, rules.FactPhase, 0.4},
}

// fallback derives a suggestion from generic text-to-fact-kind inference.
// Its 0-1 confidence is rescaled into the 0-50 score band so a fallback
// never outranks a rule that cleared the threshold.
func fallback(text string) (Suggestion, bool) {
	lower := strings.ToLower(text)
	for _, fk := range fallbackKinds {
		for _, kw := range fk.keywords {
			if strings.Contains(lower, kw) {
				return Suggestion{
					RuleSource: SourceFallback,
					OutputKind: rules.KindFactCandidate,
					FactKind:   fk.factKind,
					Confidence: fk.confidence,
					MatchScore: int(math.Round(fk.confidence * 50)),
					Reason:     fmt.Sprintf("generic inference from keyword %q", kw),
				}, true
			}
		}
	}
	return Suggestion{}, false
}
