// Package interpret turns raw source nodes plus a role configuration into a
// normalized import plan: a typed tree of containers and items with field
// recordings, pending cross-references, and classifications.
//
// Interpretation is single-threaded and stateless between runs. It never
// rejects an item: unresolved parents, unmatched columns, and structural
// oddities become metadata flags or validation issues on the returned plan.
package interpret

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ok-very/autoart/internal/fieldparse"
	"github.com/ok-very/autoart/internal/roles"
	"github.com/ok-very/autoart/internal/rules"
	"github.com/ok-very/autoart/internal/telemetry"
	"github.com/ok-very/autoart/internal/types"
)

// Interpreter converts raw nodes into import plans. The rule set is
// injected so tests and review tooling can substitute reduced registries.
type Interpreter struct {
	Rules rules.RuleSet
}

// New creates an interpreter with the given classification rule set.
func New(rs rules.RuleSet) *Interpreter {
	return &Interpreter{Rules: rs}
}

// boardContainerTypes maps a board role to the container type it produces.
// Ignored boards produce nothing and are absent from the table.
var boardContainerTypes = map[roles.BoardRole]types.ContainerType{
	roles.BoardProject:   types.ContainerProject,
	roles.BoardOverview:  types.ContainerProject,
	roles.BoardAction:    types.ContainerProcess,
	roles.BoardTemplate:  types.ContainerProcess,
	roles.BoardReference: types.ContainerProcess,
}

// groupContainerTypes maps a group role to the container type it produces.
var groupContainerTypes = map[roles.GroupRole]types.ContainerType{
	roles.GroupStage:      types.ContainerStage,
	roles.GroupDone:       types.ContainerStage,
	roles.GroupSubprocess: types.ContainerSubprocess,
	roles.GroupBacklog:    types.ContainerSubprocess,
	roles.GroupArchive:    types.ContainerSubprocess,
	roles.GroupTemplate:   types.ContainerSubprocess,
	roles.GroupReference:  types.ContainerSubprocess,
}

var (
	// templateNameRe overrides every other entity signal when it matches a
	// title.
	templateNameRe = regexp.MustCompile(`(?i)\btemplate\b|\[tpl\]`)

	// processGroupRe marks groups whose members are process definitions
	// rather than plain tasks.
	processGroupRe = regexp.MustCompile(`(?i)\btemplates?\b|\bprocess(?:es)?\b`)
)

// Interpret is the single entry point: raw nodes plus a (possibly nil) role
// configuration produce an import plan. An empty sessionID mints a fresh one.
func (it *Interpreter) Interpret(ctx context.Context, nodes []types.RawNode, cfg *roles.WorkspaceConfig, sessionID string) (*types.ImportPlan, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	ctx, span := telemetry.Tracer("interpret").Start(ctx, "interpret.Interpret",
		trace.WithAttributes(
			attribute.String("session.id", sessionID),
			attribute.Int("nodes.count", len(nodes)),
		))
	defer span.End()

	ic := newContext(sessionID)

	// Partition by kind so containers are created before any item needs
	// them, and count sub-items so the has-children entity rule sees the
	// whole batch regardless of node order.
	var boards, groups, items, subitems []types.RawNode
	for _, node := range nodes {
		switch node.Kind {
		case types.KindBoard:
			boards = append(boards, node)
		case types.KindGroup:
			groups = append(groups, node)
			ic.groupTitles[node.ExternalID] = node.Name
		case types.KindSubitem:
			subitems = append(subitems, node)
			ic.childCounts[node.ParentExternalID]++
		default:
			items = append(items, node)
		}
	}

	for _, node := range boards {
		it.interpretBoard(ic, node, cfg)
	}
	for _, node := range groups {
		it.interpretGroup(ic, node, cfg)
	}
	for _, node := range items {
		it.interpretItem(ic, node, cfg)
	}
	for _, node := range subitems {
		it.interpretItem(ic, node, cfg)
	}

	ic.resolveParents()

	if counter, err := telemetry.Meter("interpret").Int64Counter("import.nodes_interpreted"); err == nil {
		counter.Add(ctx, int64(len(nodes)))
	}
	span.SetAttributes(
		attribute.Int("plan.containers", len(ic.plan.Containers)),
		attribute.Int("plan.items", len(ic.plan.Items)),
	)
	return ic.plan, nil
}

func (it *Interpreter) interpretBoard(ic *interpretationContext, node types.RawNode, cfg *roles.WorkspaceConfig) {
	role := boardRoleFor(cfg.Board(node.ExternalID))
	ctype, ok := boardContainerTypes[role]
	if !ok {
		return
	}
	ic.addContainer(node.ExternalID, &types.PlanContainer{
		Type:  ctype,
		Title: node.Name,
	})
}

func (it *Interpreter) interpretGroup(ic *interpretationContext, node types.RawNode, cfg *roles.WorkspaceConfig) {
	bcfg := cfg.Board(node.BoardExternalID)
	if boardRoleFor(bcfg) == roles.BoardIgnore && node.BoardExternalID != "" {
		return
	}
	role := groupRoleFor(bcfg, node.ExternalID)
	ctype, ok := groupContainerTypes[role]
	if !ok {
		return
	}
	c := &types.PlanContainer{
		Type:  ctype,
		Title: node.Name,
	}
	if parent := node.ParentExternalID; parent != "" {
		c.ParentTempID = ic.tempIDs[parent]
	}
	ic.addContainer(node.ExternalID, c)
}

func (it *Interpreter) interpretItem(ic *interpretationContext, node types.RawNode, cfg *roles.WorkspaceConfig) {
	bcfg := cfg.Board(node.BoardExternalID)
	if node.BoardExternalID != "" && boardRoleFor(bcfg) == roles.BoardIgnore {
		return
	}
	if node.GroupExternalID != "" && groupRoleFor(bcfg, node.GroupExternalID) == roles.GroupIgnore {
		return
	}
	if node.Kind == types.KindSubitem && subitemsAs(bcfg) == "ignore" {
		return
	}

	item := &types.PlanItem{
		Title:      node.Name,
		EntityType: it.entityTypeFor(ic, node, bcfg),
		Metadata:   make(map[string]any),
	}
	if node.ExternalID != "" {
		item.Metadata[types.MetaSourceID] = node.ExternalID
	}
	if node.BoardExternalID != "" {
		item.Metadata[types.MetaSourceBoardID] = node.BoardExternalID
	}
	if node.GroupExternalID != "" {
		item.Metadata[types.MetaSourceGroupID] = node.GroupExternalID
	}
	ic.addItem(node.ExternalID, item)
	ic.deferParent(item, declaredParent(node))

	status, due := it.convertFields(ic, item, node, bcfg)
	it.classify(ic, item, node, status, due)
}

// entityTypeFor applies the ordered entity rules: template name wins over
// everything, then has-children, then the group-title heuristic, then task.
func (it *Interpreter) entityTypeFor(ic *interpretationContext, node types.RawNode, bcfg *roles.BoardConfig) types.EntityType {
	if node.Kind == types.KindSubitem {
		if subitemsAs(bcfg) == "subtask" {
			return types.EntitySubtask
		}
		return types.EntityTask
	}
	if templateNameRe.MatchString(node.Name) {
		return types.EntityTemplate
	}
	if ic.childCounts[node.ExternalID] > 0 {
		return types.EntityProcess
	}
	if node.GroupExternalID != "" {
		if processGroupRe.MatchString(ic.groupTitles[node.GroupExternalID]) ||
			groupRoleFor(bcfg, node.GroupExternalID) == roles.GroupTemplate {
			return types.EntityProcess
		}
	}
	// The fallback follows the board's role: action boards hold actions,
	// reference boards hold data records, everything else holds tasks.
	switch boardRoleFor(bcfg) {
	case roles.BoardAction:
		return types.EntityAction
	case roles.BoardReference:
		return types.EntityRecord
	}
	return types.EntityTask
}

// convertFields turns every column value into a field recording, except
// relation columns which defer to pending links. Returns the status and
// target-date values seen, for the classification context.
func (it *Interpreter) convertFields(ic *interpretationContext, item *types.PlanItem, node types.RawNode, bcfg *roles.BoardConfig) (status, due string) {
	for _, cv := range node.Columns {
		ccfg := bcfg.Column(cv.ID)
		role := roles.ColCustom
		if ccfg != nil && ccfg.Role != "" {
			role = ccfg.Role
		}
		if role == roles.ColIgnore || role == roles.ColTitle {
			continue
		}

		// Relation columns carry references, not values. The target may not
		// have a tempId yet, so the link is deferred to a second pass.
		if fieldparse.IsRelationType(cv.SourceType) ||
			role == roles.ColLinkToRecord || role == roles.ColDependency || role == roles.ColMirror {
			if ids := fieldparse.LinkedIDs(cv); len(ids) > 0 {
				ic.plan.PendingLinks = append(ic.plan.PendingLinks, types.PendingLink{
					SourceTempID:      item.TempID,
					FieldName:         fieldName(ccfg, cv),
					LinkedExternalIDs: ids,
				})
			}
			continue
		}

		value, hint := fieldparse.Unwrap(cv)
		if strings.TrimSpace(value) == "" {
			continue
		}
		if ccfg != nil && ccfg.RenderHint != "" {
			hint = types.RenderHint(ccfg.RenderHint)
		}
		item.FieldRecordings = append(item.FieldRecordings, types.FieldRecording{
			FieldName:  fieldName(ccfg, cv),
			Value:      value,
			RenderHint: hint,
		})

		switch {
		case role == roles.ColStatus || (role == roles.ColCustom && hint == types.HintStatus):
			status = value
			item.Metadata[types.MetaStatus] = value
		case role == roles.ColDueDate || (due == "" && hint == types.HintDate):
			due = value
		}
	}
	return status, due
}

// classify runs the rule registry over CSV-derived rows. Board items carry
// structured columns and need no text classification; freeform CSV cells do.
func (it *Interpreter) classify(ic *interpretationContext, item *types.PlanItem, node types.RawNode, status, due string) {
	if node.Source != types.SourceCSV {
		return
	}
	rctx := rules.Context{
		Status:     status,
		TargetDate: due,
		StageName:  ic.groupTitles[node.GroupExternalID],
	}
	texts := []string{item.Title}
	if status != "" {
		texts = append(texts, status)
	}
	for _, text := range texts {
		for _, r := range it.Rules.Rules() {
			if !r.Matcher.Match(text) {
				continue
			}
			for _, out := range r.Emit(text, rctx) {
				ic.plan.Classifications = append(ic.plan.Classifications,
					classificationFrom(item.TempID, r.ID, out))
			}
			if r.Terminal {
				break
			}
		}
	}
}

// classificationFrom flattens one rule output into the plan's classification
// shape. The switch is exhaustive over the closed output set.
func classificationFrom(itemTempID, ruleID string, out rules.Output) types.Classification {
	c := types.Classification{
		ItemTempID: itemTempID,
		RuleID:     ruleID,
		Kind:       string(out.Kind()),
	}
	switch v := out.(type) {
	case rules.FactCandidate:
		c.Payload = map[string]string{"fact_kind": v.FactKind}
		for k, val := range v.Payload {
			c.Payload[k] = val
		}
		c.Confidence = v.Confidence
	case rules.WorkEvent:
		c.Payload = map[string]string{"event_type": v.EventType}
	case rules.FieldValue:
		c.Payload = map[string]string{"field": v.Field, "value": v.Value}
		c.Confidence = v.Confidence
	case rules.ActionHint:
		c.Payload = map[string]string{"hint_type": v.HintType, "text": v.Text}
		if v.Phase != "" {
			c.Payload["phase"] = v.Phase
		}
	}
	return c
}

// declaredParent picks the external id an item's parent resolution should
// target: sub-items resolve to their owning item, everything else to its
// group (or board, when groups are absent).
func declaredParent(node types.RawNode) string {
	if node.Kind == types.KindSubitem {
		return node.ParentExternalID
	}
	if node.ParentExternalID != "" {
		return node.ParentExternalID
	}
	if node.GroupExternalID != "" {
		return node.GroupExternalID
	}
	return node.BoardExternalID
}

func fieldName(ccfg *roles.ColumnConfig, cv types.ColumnValue) string {
	if ccfg != nil && ccfg.LocalFieldKey != "" {
		return ccfg.LocalFieldKey
	}
	if cv.Title != "" {
		return cv.Title
	}
	return cv.ID
}

func boardRoleFor(bcfg *roles.BoardConfig) roles.BoardRole {
	if bcfg == nil || bcfg.Role == "" {
		return roles.BoardProject
	}
	return bcfg.Role
}

func groupRoleFor(bcfg *roles.BoardConfig, groupID string) roles.GroupRole {
	if bcfg != nil {
		if gcfg := bcfg.Group(groupID); gcfg != nil && gcfg.Role != "" {
			return gcfg.Role
		}
		if bcfg.DefaultGroupRole != "" {
			return bcfg.DefaultGroupRole
		}
	}
	return roles.GroupSubprocess
}

func subitemsAs(bcfg *roles.BoardConfig) string {
	if bcfg == nil || bcfg.SubitemsAs == "" {
		return "task"
	}
	return strings.ToLower(bcfg.SubitemsAs)
}

// Stats summarizes a plan for logging and CLI output.
type Stats struct {
	Containers      int
	Items           int
	Recordings      int
	PendingLinks    int
	Classifications int
	Orphans         int
	Errors          int
	Warnings        int
}

// Summarize counts the significant parts of a plan.
func Summarize(p *types.ImportPlan) Stats {
	s := Stats{
		Containers:      len(p.Containers),
		Items:           len(p.Items),
		PendingLinks:    len(p.PendingLinks),
		Classifications: len(p.Classifications),
	}
	for _, item := range p.Items {
		s.Recordings += len(item.FieldRecordings)
		if item.OrphanFailed() {
			s.Orphans++
		}
	}
	for _, issue := range p.ValidationIssues {
		if issue.Severity == types.SeverityError {
			s.Errors++
		} else {
			s.Warnings++
		}
	}
	return s
}
