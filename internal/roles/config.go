// Package roles models the semantic-role configuration for imported
// workspaces: which boards are project boards, which groups are stages, and
// what each column means. Configurations may be fully explicit, fully
// absent, or partial; inference fills whatever is missing.
package roles

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// BoardRole assigns a semantic meaning to a whole board.
type BoardRole string

const (
	BoardProject   BoardRole = "project_board"
	BoardAction    BoardRole = "action_board"
	BoardTemplate  BoardRole = "template_board"
	BoardReference BoardRole = "reference_board"
	BoardOverview  BoardRole = "overview_board"
	BoardIgnore    BoardRole = "ignore"
)

// GroupRole assigns a semantic meaning to a group within a board.
type GroupRole string

const (
	GroupStage      GroupRole = "stage"
	GroupSubprocess GroupRole = "subprocess"
	GroupBacklog    GroupRole = "backlog"
	GroupDone       GroupRole = "done"
	GroupArchive    GroupRole = "archive"
	GroupTemplate   GroupRole = "template_group"
	GroupReference  GroupRole = "reference_group"
	GroupIgnore     GroupRole = "ignore"
)

// ColumnRole assigns a semantic meaning to a column. The set is closed:
// core fields, linking fields, and the custom/ignore catch-alls.
type ColumnRole string

const (
	ColTitle        ColumnRole = "title"
	ColStatus       ColumnRole = "status"
	ColAssignee     ColumnRole = "assignee"
	ColDueDate      ColumnRole = "due_date"
	ColStartDate    ColumnRole = "start_date"
	ColTimeline     ColumnRole = "timeline"
	ColPriority     ColumnRole = "priority"
	ColDescription  ColumnRole = "description"
	ColNotes        ColumnRole = "notes"
	ColTags         ColumnRole = "tags"
	ColEstimate     ColumnRole = "estimate"
	ColEmail        ColumnRole = "email"
	ColPhone        ColumnRole = "phone"
	ColLocation     ColumnRole = "location"
	ColNumber       ColumnRole = "number"
	ColCheckbox     ColumnRole = "checkbox"
	ColCreatedAt    ColumnRole = "created_at"
	ColLinkToRecord ColumnRole = "link_to_record"
	ColDependency   ColumnRole = "dependency"
	ColMirror       ColumnRole = "mirror"
	ColCustom       ColumnRole = "custom"
	ColIgnore       ColumnRole = "ignore"
)

// SyncDirection controls which way board data flows on subsequent syncs.
type SyncDirection string

const (
	SyncPull SyncDirection = "pull"
	SyncPush SyncDirection = "push"
	SyncBoth SyncDirection = "both"
)

// WorkspaceConfig is the root of the role configuration tree, as persisted
// by the external configuration service.
type WorkspaceConfig struct {
	WorkspaceID string        `yaml:"workspace_id,omitempty" json:"workspace_id,omitempty"`
	Boards      []BoardConfig `yaml:"boards" json:"boards"`
}

// BoardConfig assigns roles to one board and its groups/columns.
type BoardConfig struct {
	BoardID          string            `yaml:"board_id" json:"board_id"`
	Role             BoardRole         `yaml:"role,omitempty" json:"role,omitempty"`
	LinkedProjectID  string            `yaml:"linked_project_id,omitempty" json:"linked_project_id,omitempty"`
	SyncDirection    SyncDirection     `yaml:"sync_direction,omitempty" json:"sync_direction,omitempty"`
	DefaultGroupRole GroupRole         `yaml:"default_group_role,omitempty" json:"default_group_role,omitempty"`
	SubitemsAs       string            `yaml:"subitems_as,omitempty" json:"subitems_as,omitempty"` // "task" (default), "subtask", or "ignore"
	Settings         map[string]string `yaml:"settings,omitempty" json:"settings,omitempty"`
	Groups           []GroupConfig     `yaml:"groups,omitempty" json:"groups,omitempty"`
	Columns          []ColumnConfig    `yaml:"columns,omitempty" json:"columns,omitempty"`
}

// GroupConfig assigns a role to one group.
type GroupConfig struct {
	GroupID    string    `yaml:"group_id" json:"group_id"`
	Role       GroupRole `yaml:"role,omitempty" json:"role,omitempty"`
	StageOrder int       `yaml:"stage_order,omitempty" json:"stage_order,omitempty"`
	StageKind  string    `yaml:"stage_kind,omitempty" json:"stage_kind,omitempty"`
}

// ColumnConfig assigns a semantic role to one column.
type ColumnConfig struct {
	ColumnID      string     `yaml:"column_id" json:"column_id"`
	Role          ColumnRole `yaml:"role,omitempty" json:"role,omitempty"`
	LocalFieldKey string     `yaml:"local_field_key,omitempty" json:"local_field_key,omitempty"`
	RenderHint    string     `yaml:"render_hint,omitempty" json:"render_hint,omitempty"`
	Required      bool       `yaml:"required,omitempty" json:"required,omitempty"`
	MultiValued   bool       `yaml:"multi_valued,omitempty" json:"multi_valued,omitempty"`
}

// Board looks up the config entry for a board id, or nil.
func (w *WorkspaceConfig) Board(boardID string) *BoardConfig {
	if w == nil {
		return nil
	}
	for i := range w.Boards {
		if w.Boards[i].BoardID == boardID {
			return &w.Boards[i]
		}
	}
	return nil
}

// Group looks up the config entry for a group id, or nil.
func (b *BoardConfig) Group(groupID string) *GroupConfig {
	if b == nil {
		return nil
	}
	for i := range b.Groups {
		if b.Groups[i].GroupID == groupID {
			return &b.Groups[i]
		}
	}
	return nil
}

// Column looks up the config entry for a column id, or nil.
func (b *BoardConfig) Column(columnID string) *ColumnConfig {
	if b == nil {
		return nil
	}
	for i := range b.Columns {
		if b.Columns[i].ColumnID == columnID {
			return &b.Columns[i]
		}
	}
	return nil
}

// Load reads a workspace config document from YAML.
func Load(r io.Reader) (*WorkspaceConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("roles: read config: %w", err)
	}
	var cfg WorkspaceConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("roles: parse config: %w", err)
	}
	return &cfg, nil
}

// LoadFile reads a workspace config document from a YAML file.
func LoadFile(path string) (*WorkspaceConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("roles: open config %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

// Marshal serializes a workspace config to YAML for review or persistence
// by the external configuration service.
func (w *WorkspaceConfig) Marshal() ([]byte, error) {
	return yaml.Marshal(w)
}
