package roles

import (
	"reflect"
	"testing"
)

func sampleSchema() BoardSchema {
	return BoardSchema{
		BoardID: "b1",
		Name:    "Website Redesign",
		Groups: []RawGroup{
			{ID: "g1", Title: "Stage 1 - Planning"},
			{ID: "g2", Title: "Done"},
			{ID: "g3", Title: "Random Bucket"},
		},
		Columns: []RawColumn{
			{ID: "c1", Title: "Task", Type: "name"},
			{ID: "c2", Title: "Who", Type: "people"},
			{ID: "c3", Title: "Deadline", Type: "date"},
			{ID: "c4", Title: "Mystery", Type: "formula"},
		},
	}
}

func TestInferColumnTypeLookupBeatsName(t *testing.T) {
	// A people column named "Deadline" is still an assignee column: the
	// type lookup ranks above name patterns.
	cfg, _ := InferWorkspaceConfig([]BoardSchema{{
		BoardID: "b1",
		Columns: []RawColumn{{ID: "c1", Title: "Deadline", Type: "people"}},
	}}, nil)

	got := cfg.Board("b1").Column("c1").Role
	if got != ColAssignee {
		t.Errorf("role = %q, want assignee (type lookup wins)", got)
	}
}

func TestInferDefaults(t *testing.T) {
	cfg, notes := InferWorkspaceConfig([]BoardSchema{sampleSchema()}, nil)

	b := cfg.Board("b1")
	if b == nil {
		t.Fatal("board b1 missing from inferred config")
	}
	if b.Role != BoardProject {
		t.Errorf("board role = %q, want project_board default", b.Role)
	}

	tests := []struct {
		groupID string
		want    GroupRole
	}{
		{"g1", GroupStage},
		{"g2", GroupDone},
		{"g3", GroupSubprocess}, // no pattern, board default absent
	}
	for _, tt := range tests {
		if got := b.Group(tt.groupID).Role; got != tt.want {
			t.Errorf("group %s role = %q, want %q", tt.groupID, got, tt.want)
		}
	}

	colTests := []struct {
		columnID string
		want     ColumnRole
	}{
		{"c1", ColTitle},
		{"c2", ColAssignee},
		{"c3", ColDueDate},
		{"c4", ColCustom},
	}
	for _, tt := range colTests {
		if got := b.Column(tt.columnID).Role; got != tt.want {
			t.Errorf("column %s role = %q, want %q", tt.columnID, got, tt.want)
		}
	}

	// Every inferred unit carries a note with a confidence.
	if len(notes) == 0 {
		t.Fatal("expected inference notes")
	}
	for _, n := range notes {
		if n.Confidence <= 0 || n.Confidence > 1 {
			t.Errorf("note %s confidence %v out of range", n.UnitID, n.Confidence)
		}
		if n.Role == "" {
			t.Errorf("note %s has empty role: inference must never return unresolved", n.UnitID)
		}
	}
}

func TestInferNeverMutatesExplicitEntries(t *testing.T) {
	explicit := &WorkspaceConfig{
		Boards: []BoardConfig{{
			BoardID: "b1",
			Role:    BoardTemplate,
			Groups:  []GroupConfig{{GroupID: "g2", Role: GroupArchive}},
			Columns: []ColumnConfig{{ColumnID: "c3", Role: ColStartDate}},
		}},
	}
	before := *explicit
	beforeGroups := append([]GroupConfig(nil), explicit.Boards[0].Groups...)

	cfg, notes := InferWorkspaceConfig([]BoardSchema{sampleSchema()}, explicit)

	b := cfg.Board("b1")
	if b.Role != BoardTemplate {
		t.Errorf("explicit board role overwritten: %q", b.Role)
	}
	if got := b.Group("g2").Role; got != GroupArchive {
		t.Errorf("explicit group role overwritten: %q", got)
	}
	if got := b.Column("c3").Role; got != ColStartDate {
		t.Errorf("explicit column role overwritten: %q", got)
	}
	// Gaps still filled.
	if b.Group("g1") == nil || b.Group("g1").Role == "" {
		t.Error("gap group g1 not filled")
	}

	if !reflect.DeepEqual(explicit.Boards[0].Groups, beforeGroups) {
		t.Error("inference mutated the explicit config's groups")
	}
	if explicit.Boards[0].Role != before.Boards[0].Role {
		t.Error("inference mutated the explicit config")
	}

	// Explicit entries produce no notes.
	for _, n := range notes {
		if n.UnitID == "g2" || n.UnitID == "c3" {
			t.Errorf("unexpected note for explicit unit %s", n.UnitID)
		}
	}
}

func TestInferDeterministic(t *testing.T) {
	schemas := []BoardSchema{sampleSchema()}
	a, _ := InferWorkspaceConfig(schemas, nil)
	b, _ := InferWorkspaceConfig(schemas, nil)
	if !reflect.DeepEqual(a, b) {
		t.Error("inference is not deterministic")
	}
}

func TestInferBoardNamePatterns(t *testing.T) {
	tests := []struct {
		name string
		want BoardRole
	}{
		{"Project Templates", BoardTemplate},
		{"Vendor Reference", BoardReference},
		{"Portfolio Overview", BoardOverview},
		{"Action Items", BoardAction},
		{"Q3 Launch", BoardProject},
	}
	for _, tt := range tests {
		cfg, _ := InferWorkspaceConfig([]BoardSchema{{BoardID: "b", Name: tt.name}}, nil)
		if got := cfg.Board("b").Role; got != tt.want {
			t.Errorf("board %q role = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestBoardDefaultGroupRole(t *testing.T) {
	explicit := &WorkspaceConfig{
		Boards: []BoardConfig{{BoardID: "b1", DefaultGroupRole: GroupStage}},
	}
	cfg, _ := InferWorkspaceConfig([]BoardSchema{{
		BoardID: "b1",
		Groups:  []RawGroup{{ID: "g1", Title: "Anything"}},
	}}, explicit)

	if got := cfg.Board("b1").Group("g1").Role; got != GroupStage {
		t.Errorf("group role = %q, want board default stage", got)
	}
}
