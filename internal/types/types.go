// Package types defines the core data structures for the autoart import engine:
// raw source nodes, the normalized import plan, and the enums shared across
// the reader, interpreter, and matcher packages.
package types

import (
	"encoding/json"
	"time"
)

// NodeKind identifies the structural unit a RawNode came from.
type NodeKind string

const (
	KindBoard   NodeKind = "board"
	KindGroup   NodeKind = "group"
	KindItem    NodeKind = "item"
	KindSubitem NodeKind = "subitem"
	KindCSVRow  NodeKind = "csv_row"
)

// SourceCSV marks nodes derived from a CSV export rather than a board fetch.
const SourceCSV = "csv"

// ColumnValue is one typed cell on a RawNode. Text is the human-readable
// rendering; RawValue is the source's structured payload, kept opaque until
// field conversion unwraps it.
type ColumnValue struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	SourceType string          `json:"source_type"`
	Text       string          `json:"text,omitempty"`
	RawValue   json.RawMessage `json:"raw_value,omitempty"`
}

// RawNode is a structural unit extracted from a source: a board, group, item,
// or sub-item, or a row derived from a CSV export. Produced once per import
// and never mutated afterward.
type RawNode struct {
	Kind             NodeKind      `json:"kind"`
	ExternalID       string        `json:"external_id"`
	Name             string        `json:"name"`
	ParentExternalID string        `json:"parent_external_id,omitempty"`
	BoardExternalID  string        `json:"board_external_id,omitempty"`
	GroupExternalID  string        `json:"group_external_id,omitempty"`
	Columns          []ColumnValue `json:"columns,omitempty"`
	Source           string        `json:"source,omitempty"`
	CreatorID        string        `json:"creator_id,omitempty"`
	CreatedAt        *time.Time    `json:"created_at,omitempty"`
	UpdatedAt        *time.Time    `json:"updated_at,omitempty"`
}

// ContainerType classifies a plan container.
type ContainerType string

const (
	ContainerProject    ContainerType = "project"
	ContainerProcess    ContainerType = "process"
	ContainerStage      ContainerType = "stage"
	ContainerSubprocess ContainerType = "subprocess"
)

// EntityType classifies a plan item.
type EntityType string

const (
	EntityTask       EntityType = "task"
	EntitySubtask    EntityType = "subtask"
	EntityTemplate   EntityType = "template"
	EntityRecord     EntityType = "record"
	EntityAction     EntityType = "action"
	EntityProcess    EntityType = "process"
	EntitySubprocess EntityType = "subprocess"
	EntityProject    EntityType = "project"
)

// RenderHint describes how a recorded field value should be presented and,
// for the schema matcher, which field types it is compatible with.
type RenderHint string

const (
	HintText     RenderHint = "text"
	HintTextarea RenderHint = "textarea"
	HintPerson   RenderHint = "person"
	HintDate     RenderHint = "date"
	HintStatus   RenderHint = "status"
	HintNumber   RenderHint = "number"
	HintLink     RenderHint = "link"
	HintCheckbox RenderHint = "checkbox"
)

// FieldRecording is one column-value-to-domain-field mapping on a plan item.
// Recordings are order-preserving and may repeat a field name; the
// materializer applies later recordings over earlier ones.
type FieldRecording struct {
	FieldName  string     `json:"field_name"`
	Value      string     `json:"value"`
	RenderHint RenderHint `json:"render_hint,omitempty"`
}

// Metadata keys set by the interpreter on plan items.
const (
	MetaParentResolutionFailed = "_parentResolutionFailed"
	MetaOrphanedParentID       = "_orphanedParentId"
	MetaSourceID               = "_sourceId"
	MetaSourceBoardID          = "_sourceBoardId"
	MetaSourceGroupID          = "_sourceGroupId"
	MetaStatus                 = "_status"
)

// PlanContainer is a structural grouping in the import plan. Containers form
// a tree through ParentTempID; at most one root per plan.
type PlanContainer struct {
	TempID         string        `json:"temp_id"`
	Type           ContainerType `json:"type"`
	Title          string        `json:"title"`
	ParentTempID   string        `json:"parent_temp_id,omitempty"`
	DefinitionName string        `json:"definition_name,omitempty"`
}

// PlanItem is one unit of work or data in the import plan.
type PlanItem struct {
	TempID          string           `json:"temp_id"`
	Title           string           `json:"title"`
	ParentTempID    string           `json:"parent_temp_id,omitempty"`
	EntityType      EntityType       `json:"entity_type"`
	Metadata        map[string]any   `json:"metadata,omitempty"`
	FieldRecordings []FieldRecording `json:"field_recordings,omitempty"`
}

// PendingLink defers a cross-entity reference whose target may not have a
// tempId at the time the relation column is processed. Resolution happens in
// a second pass over the whole batch.
type PendingLink struct {
	SourceTempID      string   `json:"source_temp_id"`
	FieldName         string   `json:"field_name"`
	LinkedExternalIDs []string `json:"linked_external_ids"`
}

// Severity grades a validation issue.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// ValidationIssue records a non-fatal interpretation problem. Error-severity
// issues block automatic execution downstream but never stop interpretation.
type ValidationIssue struct {
	Severity     Severity `json:"severity"`
	Message      string   `json:"message"`
	RecordTempID string   `json:"record_temp_id,omitempty"`
}

// Classification is a rule-engine result attached to a plan item.
type Classification struct {
	ItemTempID string            `json:"item_temp_id"`
	RuleID     string            `json:"rule_id"`
	Kind       string            `json:"kind"`
	Payload    map[string]string `json:"payload,omitempty"`
	Confidence float64           `json:"confidence,omitempty"`
}

// ImportPlan is the interpreter's output: a typed tree of containers and
// items ready to be materialized into the domain model. Never mutated after
// return except by the external resolutions merge step.
type ImportPlan struct {
	SessionID        string            `json:"session_id"`
	Containers       []*PlanContainer  `json:"containers"`
	Items            []*PlanItem       `json:"items"`
	ValidationIssues []ValidationIssue `json:"validation_issues,omitempty"`
	Classifications  []Classification  `json:"classifications,omitempty"`
	PendingLinks     []PendingLink     `json:"pending_links,omitempty"`
}

// HasBlockingIssues reports whether any validation issue carries error
// severity.
func (p *ImportPlan) HasBlockingIssues() bool {
	for _, issue := range p.ValidationIssues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Root returns the plan's root container (no parent), or nil when the plan
// only updates an existing hierarchy.
func (p *ImportPlan) Root() *PlanContainer {
	for _, c := range p.Containers {
		if c.ParentTempID == "" {
			return c
		}
	}
	return nil
}

// OrphanFailed reports whether the item was flagged during parent resolution.
func (i *PlanItem) OrphanFailed() bool {
	v, ok := i.Metadata[MetaParentResolutionFailed]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}
