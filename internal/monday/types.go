// internal/monday/types.go
package monday

import (
	"encoding/json"
	"time"

	"github.com/ok-very/autoart/internal/roles"
	"github.com/ok-very/autoart/internal/types"
)

// Column is a board column definition.
type Column struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

// Group is a board group definition.
type Group struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// BoardSchema is the result of schema discovery: everything needed to label
// and route item values before any item page is requested.
type BoardSchema struct {
	BoardID   string   `json:"board_id"`
	Name      string   `json:"name"`
	ItemCount int      `json:"item_count"`
	Columns   []Column `json:"columns"`
	Groups    []Group  `json:"groups"`
}

// ColumnValue is one cell on an item as returned by the API. Value is the
// structured JSON payload; Text is the rendered representation.
type ColumnValue struct {
	ID     string          `json:"id"`
	Text   string          `json:"text"`
	Type   string          `json:"type"`
	Value  json.RawMessage `json:"value"`
	Column struct {
		Title string `json:"title"`
	} `json:"column"`
}

// Item is a board item with its nested sub-items attached inline.
type Item struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Group struct {
		ID string `json:"id"`
	} `json:"group"`
	CreatedAt    string        `json:"created_at"`
	UpdatedAt    string        `json:"updated_at"`
	Creator      *struct {
		ID string `json:"id"`
	} `json:"creator"`
	ColumnValues []ColumnValue `json:"column_values"`
	Subitems     []Item        `json:"subitems"`
}

// ItemsPage is one page of a cursor-paginated item fetch. An empty Cursor
// means the last page has been served.
type ItemsPage struct {
	Cursor string `json:"cursor"`
	Items  []Item `json:"items"`
}

// BoardTree is a fully materialized board: schema plus every item.
type BoardTree struct {
	Schema BoardSchema
	Items  []Item
}

// RoleSchema converts the discovered schema into the source-agnostic shape
// the role inference consumes.
func (s *BoardSchema) RoleSchema() roles.BoardSchema {
	out := roles.BoardSchema{
		BoardID:   s.BoardID,
		Name:      s.Name,
		ItemCount: s.ItemCount,
	}
	for _, g := range s.Groups {
		out.Groups = append(out.Groups, roles.RawGroup{ID: g.ID, Title: g.Title})
	}
	for _, c := range s.Columns {
		out.Columns = append(out.Columns, roles.RawColumn{ID: c.ID, Title: c.Title, Type: c.Type})
	}
	return out
}

// RawNodes flattens a materialized board tree into the interpreter's input:
// one board node, one node per group, and item/subitem nodes carrying their
// column values.
func (t *BoardTree) RawNodes() []types.RawNode {
	nodes := make([]types.RawNode, 0, 1+len(t.Schema.Groups)+len(t.Items))

	nodes = append(nodes, types.RawNode{
		Kind:       types.KindBoard,
		ExternalID: t.Schema.BoardID,
		Name:       t.Schema.Name,
	})
	for _, g := range t.Schema.Groups {
		nodes = append(nodes, types.RawNode{
			Kind:             types.KindGroup,
			ExternalID:       g.ID,
			Name:             g.Title,
			ParentExternalID: t.Schema.BoardID,
			BoardExternalID:  t.Schema.BoardID,
		})
	}
	for _, item := range t.Items {
		nodes = appendItemNodes(nodes, item, t.Schema.BoardID)
	}
	return nodes
}

func appendItemNodes(nodes []types.RawNode, item Item, boardID string) []types.RawNode {
	node := types.RawNode{
		Kind:             types.KindItem,
		ExternalID:       item.ID,
		Name:             item.Name,
		ParentExternalID: item.Group.ID,
		BoardExternalID:  boardID,
		GroupExternalID:  item.Group.ID,
		Columns:          columnValues(item),
	}
	if item.Creator != nil {
		node.CreatorID = item.Creator.ID
	}
	node.CreatedAt = parseAPITime(item.CreatedAt)
	node.UpdatedAt = parseAPITime(item.UpdatedAt)
	nodes = append(nodes, node)

	for _, sub := range item.Subitems {
		subNode := types.RawNode{
			Kind:             types.KindSubitem,
			ExternalID:       sub.ID,
			Name:             sub.Name,
			ParentExternalID: item.ID,
			BoardExternalID:  boardID,
			GroupExternalID:  item.Group.ID,
			Columns:          columnValues(sub),
		}
		if sub.Creator != nil {
			subNode.CreatorID = sub.Creator.ID
		}
		subNode.CreatedAt = parseAPITime(sub.CreatedAt)
		subNode.UpdatedAt = parseAPITime(sub.UpdatedAt)
		nodes = append(nodes, subNode)
	}
	return nodes
}

func columnValues(item Item) []types.ColumnValue {
	if len(item.ColumnValues) == 0 {
		return nil
	}
	out := make([]types.ColumnValue, 0, len(item.ColumnValues))
	for _, cv := range item.ColumnValues {
		out = append(out, types.ColumnValue{
			ID:         cv.ID,
			Title:      cv.Column.Title,
			SourceType: cv.Type,
			Text:       cv.Text,
			RawValue:   cv.Value,
		})
	}
	return out
}

func parseAPITime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}
