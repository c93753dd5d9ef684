package interpret

import (
	"fmt"

	"github.com/ok-very/autoart/internal/types"
)

// interpretationContext holds all mutable state of one Interpret call: the
// tempId lookup tables and the plan under construction. It is created at
// the top of Interpret and discarded afterward, so nothing leaks between
// runs and concurrent interpretations never share state.
type interpretationContext struct {
	plan *types.ImportPlan

	// tempIDs maps a source external id to the tempId minted for it,
	// covering both containers and items. One map, consulted by the
	// parent-resolution pass; tens of thousands of nodes must stay O(n).
	tempIDs map[string]string

	// childCounts maps an item external id to the number of sub-items seen
	// for it in this batch.
	childCounts map[string]int

	// groupTitles maps a group external id to its display title, for the
	// group-name entity heuristics and classification context.
	groupTitles map[string]string

	// parents defers parent lookup until every tempId has been minted.
	parents []parentRef

	containerSeq int
	itemSeq      int
}

func newContext(sessionID string) *interpretationContext {
	return &interpretationContext{
		plan: &types.ImportPlan{
			SessionID:  sessionID,
			Containers: []*types.PlanContainer{},
			Items:      []*types.PlanItem{},
		},
		tempIDs:     make(map[string]string),
		childCounts: make(map[string]int),
		groupTitles: make(map[string]string),
	}
}

func (ic *interpretationContext) nextContainerID() string {
	ic.containerSeq++
	return fmt.Sprintf("tmp-c-%03d", ic.containerSeq)
}

func (ic *interpretationContext) nextItemID() string {
	ic.itemSeq++
	return fmt.Sprintf("tmp-i-%03d", ic.itemSeq)
}

// addContainer mints a tempId, registers the external id mapping, and
// appends the container to the plan.
func (ic *interpretationContext) addContainer(externalID string, c *types.PlanContainer) *types.PlanContainer {
	c.TempID = ic.nextContainerID()
	if externalID != "" {
		ic.tempIDs[externalID] = c.TempID
	}
	ic.plan.Containers = append(ic.plan.Containers, c)
	return c
}

// addItem mints a tempId, registers the external id mapping, and appends
// the item to the plan.
func (ic *interpretationContext) addItem(externalID string, item *types.PlanItem) *types.PlanItem {
	item.TempID = ic.nextItemID()
	if externalID != "" {
		ic.tempIDs[externalID] = item.TempID
	}
	ic.plan.Items = append(ic.plan.Items, item)
	return item
}

func (ic *interpretationContext) issue(severity types.Severity, message string) {
	ic.plan.ValidationIssues = append(ic.plan.ValidationIssues, types.ValidationIssue{
		Severity: severity,
		Message:  message,
	})
}

// parentRef is one deferred parent lookup: the item to patch and the external
// id it declared.
type parentRef struct {
	item       *types.PlanItem
	externalID string
}

func (ic *interpretationContext) deferParent(item *types.PlanItem, externalID string) {
	ic.parents = append(ic.parents, parentRef{item: item, externalID: externalID})
}

// resolveParents runs after every tempId exists. Items whose declared parent
// is not in the batch are flagged, never rejected: partial-batch imports must
// still produce a usable plan.
func (ic *interpretationContext) resolveParents() {
	for _, ref := range ic.parents {
		if ref.externalID == "" {
			continue
		}
		if tempID, ok := ic.tempIDs[ref.externalID]; ok {
			ref.item.ParentTempID = tempID
			continue
		}
		if ref.item.Metadata == nil {
			ref.item.Metadata = make(map[string]any)
		}
		ref.item.Metadata[types.MetaParentResolutionFailed] = true
		ref.item.Metadata[types.MetaOrphanedParentID] = ref.externalID
	}
}
