// internal/interpret/csv_test.go
package interpret

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ok-very/autoart/internal/csvreader"
	"github.com/ok-very/autoart/internal/types"
)

const planningCSV = `Task,Details,Owner,Status,Due Date,Notes
Stage 1 - Planning
Kickoff Meeting,,John,Not Started,,
`

func TestInterpretCSVStageDetection(t *testing.T) {
	plan, err := testInterpreter().InterpretCSV(context.Background(), planningCSV, nil, "s-1")
	if err != nil {
		t.Fatalf("InterpretCSV: %v", err)
	}

	if len(plan.Containers) != 1 {
		t.Fatalf("containers = %+v, want exactly 1", plan.Containers)
	}
	stage := plan.Containers[0]
	if stage.Type != types.ContainerSubprocess || stage.Title != "Planning" {
		t.Errorf("stage = %+v, want subprocess %q", stage, "Planning")
	}

	if len(plan.Items) != 1 {
		t.Fatalf("items = %+v, want exactly 1", plan.Items)
	}
	item := plan.Items[0]
	if item.EntityType != types.EntityTask || item.Title != "Kickoff Meeting" {
		t.Errorf("item = %+v", item)
	}
	if item.ParentTempID != stage.TempID {
		t.Errorf("item parent = %q, want stage %q", item.ParentTempID, stage.TempID)
	}

	var owner *types.FieldRecording
	for i := range item.FieldRecordings {
		if item.FieldRecordings[i].FieldName == "Owner" {
			owner = &item.FieldRecordings[i]
		}
	}
	if owner == nil {
		t.Fatalf("no Owner recording in %+v", item.FieldRecordings)
	}
	if owner.Value != "John" || owner.RenderHint != types.HintPerson {
		t.Errorf("owner recording = %+v", owner)
	}
	if got := item.Metadata[types.MetaStatus]; got != "Not Started" {
		t.Errorf("status metadata = %v", got)
	}
}

func TestInterpretCSVClassifiesStatus(t *testing.T) {
	plan, err := testInterpreter().InterpretCSV(context.Background(), planningCSV, nil, "s-1")
	if err != nil {
		t.Fatalf("InterpretCSV: %v", err)
	}

	var planned bool
	for _, c := range plan.Classifications {
		if c.RuleID == "status-planned" && c.Payload["event_type"] == "planned" {
			planned = true
		}
	}
	if !planned {
		t.Errorf("classifications = %+v, want a status-planned work event", plan.Classifications)
	}
}

func TestInterpretCSVNoData(t *testing.T) {
	_, err := testInterpreter().InterpretCSV(context.Background(), "\n\n", nil, "s-1")
	if !errors.Is(err, csvreader.ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}

func TestNodesFromCSVMultipleStages(t *testing.T) {
	rows, err := csvreader.ParseString(
		"Task,Owner,Status\n" +
			"Stage 1 - Planning\n" +
			"Kickoff,,\n" +
			"Stage 2: Build\n" +
			"Implement parser,,\n" +
			"Write tests,,\n")
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}

	nodes, issues := NodesFromCSV(rows)
	if len(issues) != 0 {
		t.Errorf("issues = %+v, want none", issues)
	}
	if len(nodes) != 5 {
		t.Fatalf("nodes = %d, want 5 (2 groups + 3 rows)", len(nodes))
	}
	if nodes[0].Kind != types.KindGroup || nodes[0].Name != "Planning" {
		t.Errorf("first stage = %+v", nodes[0])
	}
	if nodes[2].Kind != types.KindGroup || nodes[2].Name != "Build" {
		t.Errorf("second stage = %+v", nodes[2])
	}
	for _, i := range []int{3, 4} {
		if nodes[i].ParentExternalID != nodes[2].ExternalID {
			t.Errorf("node %d parent = %q, want %q", i, nodes[i].ParentExternalID, nodes[2].ExternalID)
		}
	}
}

func TestNodesFromCSVIssues(t *testing.T) {
	cases := []struct {
		name     string
		csv      string
		severity types.Severity
		contains string
	}{
		{
			name:     "no stage headers",
			csv:      "Task,Owner\nKickoff,John\n",
			severity: types.SeverityWarning,
			contains: "no stage headers",
		},
		{
			name:     "no header row",
			csv:      "Stage 1 - Planning\nKickoff,John\n",
			severity: types.SeverityWarning,
			contains: "no header row",
		},
		{
			name:     "no title column",
			csv:      "Owner,Status\nStage 1 - Planning\nJohn,Done\n",
			severity: types.SeverityError,
			contains: "no title column",
		},
		{
			name:     "rows before any stage",
			csv:      "Task,Owner\nEarly bird,\nStage 1 - Planning\nKickoff,\n",
			severity: types.SeverityWarning,
			contains: "before any stage",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rows, err := csvreader.ParseString(tc.csv)
			if err != nil {
				t.Fatalf("ParseString: %v", err)
			}
			_, issues := NodesFromCSV(rows)
			for _, issue := range issues {
				if issue.Severity == tc.severity && strings.Contains(issue.Message, tc.contains) {
					return
				}
			}
			t.Errorf("issues = %+v, want %s containing %q", issues, tc.severity, tc.contains)
		})
	}
}

func TestStageTitleVariants(t *testing.T) {
	cases := []struct {
		cell string
		want string
		ok   bool
	}{
		{"Stage 1 - Planning", "Planning", true},
		{"Stage 2: Build", "Build", true},
		{"stage - Review", "Review", true},
		{"Stage 3", "", false},
		{"Staging deploy", "", false},
		{"Kickoff Meeting", "", false},
	}
	for _, tc := range cases {
		got, ok := stageTitle(csvreader.Row{Fields: []string{tc.cell}})
		if ok != tc.ok || got != tc.want {
			t.Errorf("stageTitle(%q) = %q, %v; want %q, %v", tc.cell, got, ok, tc.want, tc.ok)
		}
	}

	// A stage-looking first cell with data after it is a data row.
	if _, ok := stageTitle(csvreader.Row{Fields: []string{"Stage 1 - Planning", "John"}}); ok {
		t.Error("row with trailing data must not be a stage header")
	}
}
