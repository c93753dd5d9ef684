package rules

import (
	"testing"
)

func TestTerminalRulePreempts(t *testing.T) {
	high := Rule{
		ID:       "high",
		Matcher:  AnyKeyword("design"),
		Priority: 12,
		Terminal: true,
		Emit: func(text string, ctx Context) []Output {
			return []Output{WorkEvent{EventType: EventStageTransition}}
		},
	}
	low := Rule{
		ID:       "low",
		Matcher:  AnyKeyword("design"),
		Priority: 8,
		Emit: func(text string, ctx Context) []Output {
			return []Output{FactCandidate{FactKind: FactPhase, Confidence: 0.4}}
		},
	}

	// Registration order must not matter; priority does.
	rs := NewRuleSet(low, high)
	outputs := rs.Evaluate("move to Design stage", Context{})

	if len(outputs) != 1 {
		t.Fatalf("got %d outputs, want 1 (terminal rule should stop evaluation)", len(outputs))
	}
	ev, ok := outputs[0].(WorkEvent)
	if !ok || ev.EventType != EventStageTransition {
		t.Errorf("output = %+v, want stage_transition work event", outputs[0])
	}
}

func TestNonTerminalRulesAccumulate(t *testing.T) {
	a := Rule{
		ID: "a", Matcher: AnyKeyword("x"), Priority: 10,
		Emit: func(string, Context) []Output { return []Output{WorkEvent{EventType: "a"}} },
	}
	b := Rule{
		ID: "b", Matcher: AnyKeyword("x"), Priority: 5,
		Emit: func(string, Context) []Output { return []Output{WorkEvent{EventType: "b"}} },
	}

	outputs := NewRuleSet(b, a).Evaluate("x marks the spot", Context{})
	if len(outputs) != 2 {
		t.Fatalf("got %d outputs, want 2", len(outputs))
	}
	// Priority order: a before b.
	if outputs[0].(WorkEvent).EventType != "a" || outputs[1].(WorkEvent).EventType != "b" {
		t.Errorf("outputs out of priority order: %+v", outputs)
	}
}

func TestNoMatchReturnsNil(t *testing.T) {
	rs := DefaultRuleSet()
	outputs := rs.Evaluate("quarterly fiscal projections", Context{})
	if outputs != nil {
		t.Errorf("got %+v, want nil for unmatched text", outputs)
	}
}

func TestDefaultRuleSetMoveToStage(t *testing.T) {
	rs := DefaultRuleSet()
	outputs := rs.Evaluate("please move to the Design stage", Context{})

	if len(outputs) != 2 {
		t.Fatalf("got %d outputs, want 2", len(outputs))
	}
	hint, ok := outputs[1].(ActionHint)
	if !ok {
		t.Fatalf("second output = %T, want ActionHint", outputs[1])
	}
	if hint.HintType != HintStageMove || hint.Phase != "Design" {
		t.Errorf("hint = %+v, want stage_move/Design", hint)
	}
}

func TestDefaultRuleSetBlocked(t *testing.T) {
	rs := DefaultRuleSet()
	outputs := rs.Evaluate("waiting on vendor quote", Context{})

	var foundFact, foundEvent bool
	for _, o := range outputs {
		switch v := o.(type) {
		case FactCandidate:
			if v.FactKind == FactBlocker {
				foundFact = true
			}
		case WorkEvent:
			if v.EventType == EventBlocked {
				foundEvent = true
			}
		}
	}
	if !foundFact || !foundEvent {
		t.Errorf("outputs = %+v, want blocker fact and blocked event", outputs)
	}
}

func TestBarePhaseNameMatcher(t *testing.T) {
	rs := DefaultRuleSet()
	outputs := rs.Evaluate("Design", Context{})

	if len(outputs) != 1 {
		t.Fatalf("got %d outputs, want 1", len(outputs))
	}
	fact, ok := outputs[0].(FactCandidate)
	if !ok || fact.FactKind != FactPhase || fact.Payload["phase"] != "Design" {
		t.Errorf("output = %+v, want phase fact candidate", outputs[0])
	}
}

func TestKeywordMatcherModes(t *testing.T) {
	any := AnyKeyword("alpha", "beta")
	if !any.Match("has BETA inside") {
		t.Error("AnyKeyword should match case-insensitively")
	}
	if any.Match("gamma only") {
		t.Error("AnyKeyword should not match absent words")
	}

	all := AllKeywords("alpha", "beta")
	if all.Match("alpha only") {
		t.Error("AllKeywords should require every word")
	}
	if !all.Match("beta then alpha") {
		t.Error("AllKeywords should match when all present")
	}
}
