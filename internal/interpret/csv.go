// internal/interpret/csv.go
package interpret

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ok-very/autoart/internal/csvreader"
	"github.com/ok-very/autoart/internal/roles"
	"github.com/ok-very/autoart/internal/types"
)

// stageHeaderRe matches rows that open a new stage section, e.g.
// "Stage 1 - Planning" or "Stage: Kickoff". The capture is the stage title.
var stageHeaderRe = regexp.MustCompile(`(?i)^stage\s*\d*\s*[-–—:]\s*(.+)$`)

// csvColumn is what a recognized header cell tells us about its column.
type csvColumn struct {
	title      string
	sourceType string
	isTitle    bool
}

// headerSynonyms maps a normalized header cell to the column semantics it
// implies. Human exports rarely agree on spelling, so the table is broad.
var headerSynonyms = map[string]csvColumn{
	"task":        {sourceType: "text", isTitle: true},
	"task name":   {sourceType: "text", isTitle: true},
	"name":        {sourceType: "text", isTitle: true},
	"title":       {sourceType: "text", isTitle: true},
	"item":        {sourceType: "text", isTitle: true},
	"owner":       {sourceType: "people"},
	"assignee":    {sourceType: "people"},
	"assigned to": {sourceType: "people"},
	"responsible": {sourceType: "people"},
	"status":      {sourceType: "status"},
	"state":       {sourceType: "status"},
	"due":         {sourceType: "date"},
	"due date":    {sourceType: "date"},
	"deadline":    {sourceType: "date"},
	"target date": {sourceType: "date"},
	"start":       {sourceType: "date"},
	"start date":  {sourceType: "date"},
	"notes":       {sourceType: "long-text"},
	"description": {sourceType: "long-text"},
	"details":     {sourceType: "long-text"},
	"priority":    {sourceType: "text"},
	"tags":        {sourceType: "text"},
}

// NodesFromCSV converts parsed CSV rows into raw nodes: one group node per
// stage-header row and one csv-row node per data row, parented to the most
// recent stage. The first row whose cells look like column labels becomes
// the header and names every column after it.
//
// Structural problems never abort conversion; they come back as validation
// issues for the caller to attach to the plan.
func NodesFromCSV(rows []csvreader.Row) ([]types.RawNode, []types.ValidationIssue) {
	var (
		nodes  []types.RawNode
		issues []types.ValidationIssue

		header       []csvColumn
		titleIdx     = -1
		currentStage string
		stageSeq     int
		sawStage     bool
		orphanRows   bool
	)

	for _, row := range rows {
		if title, ok := stageTitle(row); ok {
			stageSeq++
			currentStage = fmt.Sprintf("csv-stage-%d", stageSeq)
			sawStage = true
			nodes = append(nodes, types.RawNode{
				Kind:       types.KindGroup,
				ExternalID: currentStage,
				Name:       title,
				Source:     types.SourceCSV,
			})
			continue
		}

		if header == nil && looksLikeHeader(row) {
			header, titleIdx = parseHeader(row)
			continue
		}

		idx := titleIdx
		if idx < 0 {
			idx = 0
		}
		title := row.Field(idx)
		if title == "" {
			continue
		}
		if currentStage == "" {
			orphanRows = true
		}

		node := types.RawNode{
			Kind:             types.KindCSVRow,
			ExternalID:       fmt.Sprintf("csv-row-%d", row.Line),
			Name:             title,
			ParentExternalID: currentStage,
			GroupExternalID:  currentStage,
			Source:           types.SourceCSV,
			Columns:          rowColumns(row, header, idx),
		}
		nodes = append(nodes, node)
	}

	if !sawStage {
		issues = append(issues, types.ValidationIssue{
			Severity: types.SeverityWarning,
			Message:  "no stage headers detected; rows were not grouped into containers",
		})
	}
	if header != nil && titleIdx < 0 {
		issues = append(issues, types.ValidationIssue{
			Severity: types.SeverityError,
			Message:  "no title column found in header row; first cell used as title",
		})
	}
	if header == nil {
		issues = append(issues, types.ValidationIssue{
			Severity: types.SeverityWarning,
			Message:  "no header row detected; columns are unnamed and the first cell is the title",
		})
	}
	if orphanRows {
		issues = append(issues, types.ValidationIssue{
			Severity: types.SeverityWarning,
			Message:  "data rows appear before any stage header",
		})
	}
	return nodes, issues
}

// stageTitle reports whether the row is a stage header. A stage header has
// the pattern in its first cell and nothing else on the row.
func stageTitle(row csvreader.Row) (string, bool) {
	m := stageHeaderRe.FindStringSubmatch(row.Field(0))
	if m == nil {
		return "", false
	}
	for i := 1; i < len(row.Fields); i++ {
		if row.Field(i) != "" {
			return "", false
		}
	}
	return strings.TrimSpace(m[1]), true
}

// looksLikeHeader requires at least two cells recognized as column labels.
// A single accidental "status" cell in a data row must not consume the row
// as a header; a label block without a title column still counts and is
// reported as an issue later.
func looksLikeHeader(row csvreader.Row) bool {
	known := 0
	for i := range row.Fields {
		if _, ok := headerSynonyms[normalizeHeader(row.Field(i))]; ok {
			known++
		}
	}
	return known >= 2
}

func parseHeader(row csvreader.Row) ([]csvColumn, int) {
	header := make([]csvColumn, len(row.Fields))
	titleIdx := -1
	for i := range row.Fields {
		cell := row.Field(i)
		if col, ok := headerSynonyms[normalizeHeader(cell)]; ok {
			col.title = cell
			header[i] = col
			if col.isTitle && titleIdx < 0 {
				titleIdx = i
			}
			continue
		}
		header[i] = csvColumn{title: cell, sourceType: "text"}
	}
	return header, titleIdx
}

func normalizeHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// rowColumns builds the column values for one data row, skipping the title
// cell and empty cells.
func rowColumns(row csvreader.Row, header []csvColumn, titleIdx int) []types.ColumnValue {
	n := len(row.Fields)
	if len(header) > n {
		n = len(header)
	}
	var cols []types.ColumnValue
	for i := 0; i < n; i++ {
		if i == titleIdx {
			continue
		}
		value := row.Field(i)
		if value == "" {
			continue
		}
		cv := types.ColumnValue{
			ID:         fmt.Sprintf("csv-col-%d", i),
			SourceType: "text",
			Text:       value,
		}
		if i < len(header) {
			cv.Title = header[i].title
			if header[i].sourceType != "" {
				cv.SourceType = header[i].sourceType
			}
		}
		cols = append(cols, cv)
	}
	return cols
}

// InterpretCSV parses CSV text and interprets the resulting nodes in one
// step. Parse failures (zero data rows) abort; structural oddities become
// validation issues on the returned plan.
func (it *Interpreter) InterpretCSV(ctx context.Context, csvText string, cfg *roles.WorkspaceConfig, sessionID string) (*types.ImportPlan, error) {
	rows, err := csvreader.ParseString(csvText)
	if err != nil {
		return nil, err
	}
	nodes, issues := NodesFromCSV(rows)
	plan, err := it.Interpret(ctx, nodes, cfg, sessionID)
	if err != nil {
		return nil, err
	}
	plan.ValidationIssues = append(issues, plan.ValidationIssues...)
	return plan, nil
}
