// Package rules implements the text-pattern classification engine: an
// ordered, injectable rule set that interprets one freeform string (usually
// a CSV task title or status cell) into typed interpretation outputs.
//
// Rules are pure functions of (text, context); the registry is an explicit
// RuleSet value passed into callers, never a package-level singleton, so
// tests can substitute reduced sets without global mutation.
package rules

import (
	"regexp"
	"sort"
	"strings"
)

// Context carries the hints available alongside the classified text.
type Context struct {
	Status     string
	TargetDate string
	StageName  string
	ParentName string
}

// OutputKind discriminates the variants of InterpretationOutput.
type OutputKind string

const (
	KindFactCandidate OutputKind = "fact_candidate"
	KindWorkEvent     OutputKind = "work_event"
	KindFieldValue    OutputKind = "field_value"
	KindActionHint    OutputKind = "action_hint"
)

// Output is the closed set of shapes a rule can emit. Exactly four
// implementations exist; callers switch exhaustively on the concrete type.
type Output interface {
	Kind() OutputKind
}

// FactCandidate proposes a domain fact extracted from the text.
type FactCandidate struct {
	FactKind   string
	Payload    map[string]string
	Confidence float64
}

func (FactCandidate) Kind() OutputKind { return KindFactCandidate }

// WorkEvent signals a lifecycle transition implied by the text.
type WorkEvent struct {
	EventType string
}

func (WorkEvent) Kind() OutputKind { return KindWorkEvent }

// FieldValue records a field assignment implied by the text.
type FieldValue struct {
	Field      string
	Value      string
	Confidence float64
}

func (FieldValue) Kind() OutputKind { return KindFieldValue }

// ActionHint suggests a follow-up action for review tooling.
type ActionHint struct {
	HintType string
	Text     string
	Phase    string
}

func (ActionHint) Kind() OutputKind { return KindActionHint }

// Matcher decides whether a rule applies to a piece of text and exposes the
// keywords the suggester scores partial matches against.
type Matcher interface {
	Match(text string) bool
	Keywords() []string
}

// RegexMatcher matches case-insensitively against a compiled pattern.
type RegexMatcher struct {
	re       *regexp.Regexp
	keywords []string
}

// Regex compiles a case-insensitive matcher. The keywords are the terms the
// suggester uses for partial scoring; they are not derived from the pattern
// because capture syntax makes that unreliable.
func Regex(pattern string, keywords ...string) *RegexMatcher {
	return &RegexMatcher{
		re:       regexp.MustCompile("(?i)" + pattern),
		keywords: keywords,
	}
}

func (m *RegexMatcher) Match(text string) bool { return m.re.MatchString(text) }
func (m *RegexMatcher) Keywords() []string     { return m.keywords }

// Submatch exposes the first capture groups for Emit functions that need
// them. Returns nil when the pattern does not match.
func (m *RegexMatcher) Submatch(text string) []string {
	return m.re.FindStringSubmatch(text)
}

// KeywordMatcher matches when any (or all) of its words appear in the text.
type KeywordMatcher struct {
	words      []string
	requireAll bool
}

// AnyKeyword matches when at least one word occurs in the text.
func AnyKeyword(words ...string) *KeywordMatcher {
	return &KeywordMatcher{words: words}
}

// AllKeywords matches only when every word occurs in the text.
func AllKeywords(words ...string) *KeywordMatcher {
	return &KeywordMatcher{words: words, requireAll: true}
}

func (m *KeywordMatcher) Match(text string) bool {
	lower := strings.ToLower(text)
	for _, w := range m.words {
		found := strings.Contains(lower, strings.ToLower(w))
		if m.requireAll && !found {
			return false
		}
		if !m.requireAll && found {
			return true
		}
	}
	return m.requireAll
}

func (m *KeywordMatcher) Keywords() []string { return m.words }

// Rule binds a matcher to an emit function. Emit must be pure: no I/O, no
// shared state, safe to call redundantly.
type Rule struct {
	ID       string
	Matcher  Matcher
	Priority int
	Terminal bool
	Emit     func(text string, ctx Context) []Output
}

// RuleSet is an ordered rule registry. Construct with NewRuleSet; the zero
// value is an empty set.
type RuleSet struct {
	rules []Rule
}

// NewRuleSet builds a registry sorted by descending priority. Rules with
// equal priority keep their given order.
func NewRuleSet(rules ...Rule) RuleSet {
	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})
	return RuleSet{rules: sorted}
}

// Rules returns the registry in evaluation order.
func (rs RuleSet) Rules() []Rule { return rs.rules }

// Len returns the number of registered rules.
func (rs RuleSet) Len() int { return len(rs.rules) }

// Evaluate runs the registry against one text string. Every matching rule's
// outputs are appended in priority order; a matching terminal rule stops
// evaluation so no lower-priority rule runs. Emit panics propagate: the
// primary interpretation path must fail loudly rather than half-classify.
func (rs RuleSet) Evaluate(text string, ctx Context) []Output {
	var outputs []Output
	for _, r := range rs.rules {
		if !r.Matcher.Match(text) {
			continue
		}
		outputs = append(outputs, r.Emit(text, ctx)...)
		if r.Terminal {
			break
		}
	}
	return outputs
}
