// Package autoart provides a minimal public API for embedding the import
// interpretation engine in other Go programs.
//
// Most users should reach for the autoart CLI. This package exports only
// the types and entry points needed to run an interpretation
// programmatically: raw nodes in, import plan out, plus the advisory
// suggester and schema matcher.
package autoart

import (
	"context"

	"github.com/ok-very/autoart/internal/interpret"
	"github.com/ok-very/autoart/internal/roles"
	"github.com/ok-very/autoart/internal/rules"
	"github.com/ok-very/autoart/internal/schemamatch"
	"github.com/ok-very/autoart/internal/suggest"
	"github.com/ok-very/autoart/internal/types"
)

// Core plan types
type (
	ImportPlan     = types.ImportPlan
	PlanContainer  = types.PlanContainer
	PlanItem       = types.PlanItem
	RawNode        = types.RawNode
	FieldRecording = types.FieldRecording
	PendingLink    = types.PendingLink
)

// Configuration and classification types
type (
	WorkspaceConfig  = roles.WorkspaceConfig
	RuleSet          = rules.RuleSet
	RuleContext      = rules.Context
	Suggestion       = suggest.Suggestion
	SchemaDefinition = schemamatch.Definition
	SchemaMatch      = schemamatch.Result
)

// DefaultRuleSet returns the builtin classification registry.
func DefaultRuleSet() RuleSet {
	return rules.DefaultRuleSet()
}

// Interpret converts raw nodes plus a role configuration into an import
// plan using the builtin rule set. Pass an empty sessionID to mint one.
func Interpret(ctx context.Context, nodes []RawNode, cfg *WorkspaceConfig, sessionID string) (*ImportPlan, error) {
	return interpret.New(rules.DefaultRuleSet()).Interpret(ctx, nodes, cfg, sessionID)
}

// InterpretCSV parses CSV text and interprets it in one step.
func InterpretCSV(ctx context.Context, csvText string, cfg *WorkspaceConfig, sessionID string) (*ImportPlan, error) {
	return interpret.New(rules.DefaultRuleSet()).InterpretCSV(ctx, csvText, cfg, sessionID)
}

// SuggestClassifications ranks up to three classification candidates for a
// piece of ambiguous text. Advisory only.
func SuggestClassifications(text string, ctx RuleContext, rs RuleSet) []Suggestion {
	return suggest.Suggest(text, ctx, rs)
}

// MatchSchema scores field recordings against known record schemas and
// proposes a new schema when nothing matches confidently.
func MatchSchema(recordings []FieldRecording, defs []SchemaDefinition) SchemaMatch {
	return schemamatch.Match(recordings, defs)
}
