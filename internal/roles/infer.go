package roles

import (
	"fmt"
	"regexp"
)

// RawColumn is a column as discovered from a source board schema.
type RawColumn struct {
	ID    string
	Title string
	Type  string
}

// RawGroup is a group as discovered from a source board schema.
type RawGroup struct {
	ID    string
	Title string
}

// BoardSchema is the source-agnostic shape of a discovered board.
type BoardSchema struct {
	BoardID   string
	Name      string
	Groups    []RawGroup
	Columns   []RawColumn
	ItemCount int
}

// InferenceNote records one inferred role with its confidence, for human
// review of the synthesized configuration.
type InferenceNote struct {
	UnitID     string  `json:"unit_id"`
	Unit       string  `json:"unit"` // "board", "group", or "column"
	Role       string  `json:"role"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// Inference confidence bands: direct type lookups beat name patterns beat
// defaults.
const (
	confTypeLookup  = 0.9
	confNamePattern = 0.7
	confDefault     = 0.4
)

// columnTypeRoles maps source column types directly to roles. A "people"
// column is an assignee column no matter what it is named.
var columnTypeRoles = map[string]ColumnRole{
	"name":           ColTitle,
	"people":         ColAssignee,
	"person":         ColAssignee,
	"status":         ColStatus,
	"color":          ColStatus,
	"timeline":       ColTimeline,
	"numbers":        ColNumber,
	"numeric":        ColNumber,
	"checkbox":       ColCheckbox,
	"email":          ColEmail,
	"phone":          ColPhone,
	"location":       ColLocation,
	"tags":           ColTags,
	"long-text":      ColDescription,
	"long_text":      ColDescription,
	"creation_log":   ColCreatedAt,
	"board_relation": ColLinkToRecord,
	"board-relation": ColLinkToRecord,
	"dependency":     ColDependency,
	"mirror":         ColMirror,
}

// rolePatterns is an ordered pattern table: roles are tried top to bottom,
// and within one role the first pattern wins.
type rolePatterns[R ~string] struct {
	role     R
	patterns []*regexp.Regexp
}

func pats(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile("(?i)" + e)
	}
	return out
}

var columnNamePatterns = []rolePatterns[ColumnRole]{
	{ColTitle, pats(`^(task|item|name|title)s?$`)},
	{ColStatus, pats(`\bstatus\b`, `\bstate\b`, `progress`)},
	{ColAssignee, pats(`owner`, `assign`, `responsible`, `\bwho\b`)},
	{ColDueDate, pats(`\bdue\b`, `deadline`, `target\s*date`, `finish`)},
	{ColStartDate, pats(`\bstart\b`, `\bbegin\b`)},
	{ColTimeline, pats(`timeline`, `schedule`)},
	{ColPriority, pats(`priority`, `urgen`)},
	{ColEstimate, pats(`estimate`, `effort`, `\bhours\b`, `\bpoints\b`)},
	{ColDescription, pats(`descri`, `details`, `summary`)},
	{ColNotes, pats(`\bnotes?\b`, `comments?`)},
	{ColTags, pats(`\btags?\b`, `labels?`, `category`)},
	{ColEmail, pats(`e-?mail`)},
	{ColPhone, pats(`phone`, `mobile`)},
	{ColLocation, pats(`location`, `address`)},
	{ColLinkToRecord, pats(`link(ed)?\s*to`, `related\s*record`)},
	{ColDependency, pats(`depend`, `blocked\s*by`)},
}

var boardNamePatterns = []rolePatterns[BoardRole]{
	{BoardTemplate, pats(`template`)},
	{BoardReference, pats(`reference`, `lookup`, `library`, `master\s*list`)},
	{BoardOverview, pats(`overview`, `dashboard`, `portfolio`)},
	{BoardAction, pats(`action\s*items?`, `to-?dos?\b`)},
}

var groupNamePatterns = []rolePatterns[GroupRole]{
	{GroupTemplate, pats(`template`)},
	{GroupReference, pats(`reference`, `resources`)},
	{GroupArchive, pats(`archiv`, `\bold\b`)},
	{GroupDone, pats(`\bdone\b`, `complete`, `finished`, `shipped`)},
	{GroupBacklog, pats(`backlog`, `icebox`, `someday`, `later`)},
	{GroupStage, pats(`^stage\b`, `\bphase\b`, `^step\b`, `^sprint\b`)},
}

func matchRole[R ~string](table []rolePatterns[R], name string) (R, bool) {
	for _, rp := range table {
		for _, re := range rp.patterns {
			if re.MatchString(name) {
				return rp.role, true
			}
		}
	}
	var zero R
	return zero, false
}

// InferWorkspaceConfig synthesizes a complete role configuration for the
// given board schemas, filling only the gaps the explicit config leaves.
// Pure and deterministic: the same schemas and explicit config always
// produce the same result, and every board, group, and column supplied gets
// a role.
func InferWorkspaceConfig(schemas []BoardSchema, explicit *WorkspaceConfig) (*WorkspaceConfig, []InferenceNote) {
	out := &WorkspaceConfig{}
	if explicit != nil {
		out.WorkspaceID = explicit.WorkspaceID
	}
	var notes []InferenceNote

	for _, schema := range schemas {
		bc := BoardConfig{BoardID: schema.BoardID}
		if exp := explicit.Board(schema.BoardID); exp != nil {
			bc = *exp
			// The input config must never be mutated; inference only fills
			// gaps in a copy.
			bc.Groups = append([]GroupConfig(nil), exp.Groups...)
			bc.Columns = append([]ColumnConfig(nil), exp.Columns...)
		}

		if bc.Role == "" {
			role, conf, reason := inferBoardRole(schema.Name)
			bc.Role = role
			notes = append(notes, InferenceNote{
				UnitID: schema.BoardID, Unit: "board",
				Role: string(role), Confidence: conf, Reason: reason,
			})
		}
		if bc.SyncDirection == "" {
			bc.SyncDirection = SyncPull
		}

		exp := explicit.Board(schema.BoardID)
		for _, g := range schema.Groups {
			gc := GroupConfig{GroupID: g.ID}
			if e := exp.Group(g.ID); e != nil {
				gc = *e
			}
			if gc.Role == "" {
				role, conf, reason := inferGroupRole(g.Title, bc.DefaultGroupRole)
				gc.Role = role
				notes = append(notes, InferenceNote{
					UnitID: g.ID, Unit: "group",
					Role: string(role), Confidence: conf, Reason: reason,
				})
			}
			bc.Groups = upsertGroup(bc.Groups, gc)
		}

		for _, c := range schema.Columns {
			cc := ColumnConfig{ColumnID: c.ID}
			if e := exp.Column(c.ID); e != nil {
				cc = *e
			}
			if cc.Role == "" {
				role, conf, reason := inferColumnRole(c)
				cc.Role = role
				notes = append(notes, InferenceNote{
					UnitID: c.ID, Unit: "column",
					Role: string(role), Confidence: conf, Reason: reason,
				})
			}
			bc.Columns = upsertColumn(bc.Columns, cc)
		}

		out.Boards = append(out.Boards, bc)
	}

	return out, notes
}

func inferBoardRole(name string) (BoardRole, float64, string) {
	if role, ok := matchRole(boardNamePatterns, name); ok {
		return role, confNamePattern, fmt.Sprintf("board name %q matched the %s pattern", name, role)
	}
	return BoardProject, confDefault, "no pattern matched; defaulting to project_board"
}

func inferGroupRole(title string, boardDefault GroupRole) (GroupRole, float64, string) {
	if role, ok := matchRole(groupNamePatterns, title); ok {
		return role, confNamePattern, fmt.Sprintf("group title %q matched the %s pattern", title, role)
	}
	if boardDefault != "" {
		return boardDefault, confDefault, "board default group role"
	}
	return GroupSubprocess, confDefault, "no pattern matched; defaulting to subprocess"
}

func inferColumnRole(c RawColumn) (ColumnRole, float64, string) {
	if role, ok := columnTypeRoles[c.Type]; ok {
		return role, confTypeLookup, fmt.Sprintf("column type %q implies the %s role", c.Type, role)
	}
	if c.Type == "date" {
		// A date column's meaning depends on its name; fall through to the
		// pattern table and treat an unnamed date as a due date.
		if role, ok := matchRole(columnNamePatterns, c.Title); ok {
			return role, confNamePattern, fmt.Sprintf("column title %q matched the %s pattern", c.Title, role)
		}
		return ColDueDate, confDefault, "date column with no recognizable name; defaulting to due_date"
	}
	if role, ok := matchRole(columnNamePatterns, c.Title); ok {
		return role, confNamePattern, fmt.Sprintf("column title %q matched the %s pattern", c.Title, role)
	}
	return ColCustom, confDefault, "no lookup or pattern matched; defaulting to custom"
}

func upsertGroup(groups []GroupConfig, gc GroupConfig) []GroupConfig {
	for i := range groups {
		if groups[i].GroupID == gc.GroupID {
			groups[i] = gc
			return groups
		}
	}
	return append(groups, gc)
}

func upsertColumn(cols []ColumnConfig, cc ColumnConfig) []ColumnConfig {
	for i := range cols {
		if cols[i].ColumnID == cc.ColumnID {
			cols[i] = cc
			return cols
		}
	}
	return append(cols, cc)
}
