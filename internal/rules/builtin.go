package rules

import "strings"

// Event types emitted by the builtin rules.
const (
	EventCompleted       = "completed"
	EventStarted         = "started"
	EventPlanned         = "planned"
	EventBlocked         = "blocked"
	EventStageTransition = "stage_transition"
)

// Fact kinds emitted by the builtin rules and the suggester fallback.
const (
	FactBlocker     = "blocker"
	FactPhase       = "phase"
	FactDecision    = "decision"
	FactDeliverable = "deliverable"
)

// Hint types emitted by the builtin rules.
const (
	HintStageMove         = "stage_move"
	HintApproval          = "approval"
	HintTemplateCandidate = "template_candidate"
	HintFollowUp          = "follow_up"
)

// DefaultRuleSet returns the builtin registry. Callers needing a reduced
// set for tests construct their own via NewRuleSet.
func DefaultRuleSet() RuleSet {
	moveToStage := Regex(`move(?:d)?\s+to\s+(?:the\s+)?([A-Za-z][\w ]*?)\s+stage`, "move", "stage")
	dueBy := Regex(`due\s+(?:by\s+|on\s+)?(\S.*)$`, "due")
	assignTo := Regex(`assign(?:ed)?\s+to\s+([A-Za-z][\w .]*)`, "assign", "owner")

	return NewRuleSet(
		Rule{
			ID:       "move-to-stage",
			Matcher:  moveToStage,
			Priority: 12,
			Terminal: true,
			Emit: func(text string, ctx Context) []Output {
				stage := ""
				if m := moveToStage.Submatch(text); len(m) > 1 {
					stage = strings.TrimSpace(m[1])
				}
				return []Output{
					WorkEvent{EventType: EventStageTransition},
					ActionHint{HintType: HintStageMove, Text: text, Phase: stage},
				}
			},
		},
		Rule{
			ID:       "blocked",
			Matcher:  Regex(`blocked\s+(?:by|on)|waiting\s+(?:on|for)`, "blocked", "waiting"),
			Priority: 10,
			Emit: func(text string, ctx Context) []Output {
				return []Output{
					FactCandidate{
						FactKind:   FactBlocker,
						Payload:    map[string]string{"source": text},
						Confidence: 0.8,
					},
					WorkEvent{EventType: EventBlocked},
				}
			},
		},
		Rule{
			ID:       "due-date",
			Matcher:  dueBy,
			Priority: 9,
			Emit: func(text string, ctx Context) []Output {
				value := ctx.TargetDate
				if m := dueBy.Submatch(text); len(m) > 1 {
					value = strings.TrimSpace(m[1])
				}
				return []Output{FieldValue{Field: "due_date", Value: value, Confidence: 0.7}}
			},
		},
		Rule{
			ID:       "assignment",
			Matcher:  assignTo,
			Priority: 9,
			Emit: func(text string, ctx Context) []Output {
				who := ""
				if m := assignTo.Submatch(text); len(m) > 1 {
					who = strings.TrimSpace(m[1])
				}
				return []Output{FieldValue{Field: "assignee", Value: who, Confidence: 0.7}}
			},
		},
		Rule{
			ID:       "status-complete",
			Matcher:  AnyKeyword("done", "complete", "completed", "finished", "shipped"),
			Priority: 8,
			Emit: func(text string, ctx Context) []Output {
				return []Output{WorkEvent{EventType: EventCompleted}}
			},
		},
		Rule{
			ID:       "status-started",
			Matcher:  AnyKeyword("in progress", "started", "working on", "underway"),
			Priority: 8,
			Emit: func(text string, ctx Context) []Output {
				return []Output{WorkEvent{EventType: EventStarted}}
			},
		},
		Rule{
			ID:       "status-planned",
			Matcher:  AnyKeyword("not started", "todo", "to do", "backlog", "planned"),
			Priority: 7,
			Emit: func(text string, ctx Context) []Output {
				return []Output{WorkEvent{EventType: EventPlanned}}
			},
		},
		Rule{
			ID:       "approval",
			Matcher:  AnyKeyword("review", "approve", "approval", "sign-off", "sign off"),
			Priority: 6,
			Emit: func(text string, ctx Context) []Output {
				return []Output{ActionHint{HintType: HintApproval, Text: text, Phase: ctx.StageName}}
			},
		},
		Rule{
			ID:       "priority-flag",
			Matcher:  AnyKeyword("urgent", "asap", "critical", "high priority"),
			Priority: 6,
			Emit: func(text string, ctx Context) []Output {
				return []Output{FieldValue{Field: "priority", Value: "high", Confidence: 0.6}}
			},
		},
		Rule{
			ID:       "template-name",
			Matcher:  Regex(`\btemplate\b|\[tpl\]`, "template"),
			Priority: 5,
			Emit: func(text string, ctx Context) []Output {
				return []Output{ActionHint{HintType: HintTemplateCandidate, Text: text}}
			},
		},
		Rule{
			// A bare status cell equal to a phase name. Low priority so an
			// explicit stage-move phrase pre-empts it.
			ID:       "bare-phase-name",
			Matcher:  phaseNameMatcher{},
			Priority: 3,
			Emit: func(text string, ctx Context) []Output {
				return []Output{
					FactCandidate{
						FactKind:   FactPhase,
						Payload:    map[string]string{"phase": strings.TrimSpace(text)},
						Confidence: 0.4,
					},
				}
			},
		},
	)
}

// phaseNames are recognized as bare phase values when they make up the whole
// text.
var phaseNames = []string{
	"planning", "design", "build", "development", "test", "testing",
	"launch", "delivery", "discovery", "kickoff",
}

// phaseNameMatcher is a structural matcher: the entire (trimmed, lowered)
// text must be a known phase name.
type phaseNameMatcher struct{}

func (phaseNameMatcher) Match(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	for _, p := range phaseNames {
		if t == p {
			return true
		}
	}
	return false
}

func (phaseNameMatcher) Keywords() []string { return phaseNames }
