package types

import "testing"

func TestHasBlockingIssues(t *testing.T) {
	tests := []struct {
		name   string
		issues []ValidationIssue
		want   bool
	}{
		{"empty", nil, false},
		{"warnings only", []ValidationIssue{{Severity: SeverityWarning, Message: "no stage headers"}}, false},
		{"one error", []ValidationIssue{
			{Severity: SeverityWarning, Message: "no stage headers"},
			{Severity: SeverityError, Message: "no title column"},
		}, true},
	}

	for _, tt := range tests {
		plan := &ImportPlan{ValidationIssues: tt.issues}
		if got := plan.HasBlockingIssues(); got != tt.want {
			t.Errorf("%s: HasBlockingIssues() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRoot(t *testing.T) {
	plan := &ImportPlan{
		Containers: []*PlanContainer{
			{TempID: "c2", Type: ContainerStage, ParentTempID: "c1"},
			{TempID: "c1", Type: ContainerProject},
		},
	}
	root := plan.Root()
	if root == nil || root.TempID != "c1" {
		t.Fatalf("Root() = %+v, want c1", root)
	}

	empty := &ImportPlan{}
	if empty.Root() != nil {
		t.Error("Root() on empty plan should be nil")
	}
}

func TestOrphanFailed(t *testing.T) {
	item := &PlanItem{Metadata: map[string]any{MetaParentResolutionFailed: true}}
	if !item.OrphanFailed() {
		t.Error("OrphanFailed() = false, want true")
	}

	clean := &PlanItem{}
	if clean.OrphanFailed() {
		t.Error("OrphanFailed() on clean item = true, want false")
	}
}
