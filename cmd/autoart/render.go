package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ok-very/autoart/internal/interpret"
	"github.com/ok-very/autoart/internal/suggest"
	"github.com/ok-very/autoart/internal/types"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	scoreStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
)

// renderSummary formats a plan for terminal review: counts, the container
// tree, and any validation issues.
func renderSummary(plan *types.ImportPlan) string {
	stats := interpret.Summarize(plan)
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("Import plan %s", plan.SessionID)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s %d  %s %d  %s %d  %s %d\n",
		labelStyle.Render("containers"), stats.Containers,
		labelStyle.Render("items"), stats.Items,
		labelStyle.Render("recordings"), stats.Recordings,
		labelStyle.Render("pending links"), stats.PendingLinks,
	))
	if stats.Orphans > 0 {
		b.WriteString("  " + warnStyle.Render(fmt.Sprintf("%d item(s) with unresolved parents", stats.Orphans)) + "\n")
	}

	itemsByParent := make(map[string][]*types.PlanItem)
	for _, item := range plan.Items {
		itemsByParent[item.ParentTempID] = append(itemsByParent[item.ParentTempID], item)
	}
	for _, c := range plan.Containers {
		indent := "  "
		if c.ParentTempID != "" {
			indent = "    "
		}
		b.WriteString(fmt.Sprintf("%s%s %s\n", indent, dimStyle.Render(string(c.Type)), c.Title))
		for _, item := range itemsByParent[c.TempID] {
			b.WriteString(fmt.Sprintf("%s  - %s %s\n", indent, item.Title, dimStyle.Render(string(item.EntityType))))
		}
	}
	for _, item := range itemsByParent[""] {
		b.WriteString(fmt.Sprintf("  - %s %s\n", item.Title, dimStyle.Render(string(item.EntityType))))
	}

	for _, issue := range plan.ValidationIssues {
		style := warnStyle
		if issue.Severity == types.SeverityError {
			style = errStyle
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", style.Render(string(issue.Severity)+":"), issue.Message))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderSuggestion(s suggest.Suggestion) string {
	what := s.FactKind
	if what == "" {
		what = s.HintType
	}
	if what == "" {
		what = string(s.OutputKind)
	}
	src := s.RuleID
	if s.RuleSource == suggest.SourceFallback {
		src = "fallback"
	}
	return fmt.Sprintf("%s %s %s",
		scoreStyle.Render(fmt.Sprintf("%3d", s.MatchScore)),
		headerStyle.Render(what),
		dimStyle.Render(fmt.Sprintf("(%s: %s)", src, s.Reason)),
	)
}

func renderMatch(m itemMatch) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(m.Title))
	if m.Result.MatchedDefinition != nil {
		b.WriteString(fmt.Sprintf(" %s %s",
			scoreStyle.Render(fmt.Sprintf("%.2f", m.Result.MatchScore)),
			m.Result.MatchedDefinition.Name))
	} else {
		b.WriteString(" " + warnStyle.Render("no confident match"))
	}
	if m.Result.ProposedDefinition != nil {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  proposes %q (%d fields)",
			m.Result.ProposedDefinition.Name, len(m.Result.ProposedDefinition.Fields))))
	}
	b.WriteString("\n  " + dimStyle.Render(m.Result.Rationale))
	return b.String()
}
