package agent

import (
	"fmt"
	"strings"

	"github.com/hupe1980/pharmamesh/core"
	"github.com/hupe1980/pharmamesh/graph"
)

// GraphLookupOptions configures a GraphLookupAgent.
type GraphLookupOptions struct {
	Brand string
}

// GraphLookupAgent is the third pipeline stage. It collects the CAPA ids the
// record filter surfaced, queries the knowledge graph for the brand's
// investigations restricted to those ids, and enriches each hit with its CAPA
// detail, batch record and PDF link validity.
type GraphLookupAgent struct {
	BaseAgent
	store *graph.InMemoryStore
	opts  GraphLookupOptions
}

// NewGraphLookupAgent creates the graph lookup stage.
func NewGraphLookupAgent(store *graph.InMemoryStore, optFns ...func(o *GraphLookupOptions)) *GraphLookupAgent {
	opts := GraphLookupOptions{Brand: DefaultBrand}

	for _, fn := range optFns {
		fn(&opts)
	}

	a := &GraphLookupAgent{
		BaseAgent: NewBaseAgent("graph_agent"),
		store:     store,
		opts:      opts,
	}
	a.SetDescription("Looks up brand investigations in the knowledge graph and enriches them")

	return a
}

// Run implements core.Agent. Failures are recorded in the stage result, not
// returned.
func (a *GraphLookupAgent) Run(rc *core.RunContext) error {
	capaIDs := a.collectCAPAIDs(rc)

	result := a.lookup(capaIDs)
	rc.SetState(core.StateKeyGraphResult, result)

	if !result.Success {
		rc.Logger.Warn("Graph lookup stage degraded", "error", result.Error)
		return a.emitMessage(rc, fmt.Sprintf("Investigation lookup failed: %s", result.Error))
	}

	return a.emitMessage(rc, fmt.Sprintf("Found %d investigations for brand %s", result.Count, result.Brand))
}

// collectCAPAIDs gathers the ids of the open records surfaced by the
// preceding stage. An empty slice means the graph query is unrestricted.
func (a *GraphLookupAgent) collectCAPAIDs(rc *core.RunContext) []string {
	v, ok := rc.GetState(core.StateKeyRecordResult)
	if !ok {
		return nil
	}

	recordResult, ok := v.(RecordResult)
	if !ok || !recordResult.Success {
		return nil
	}

	var ids []string
	for _, rec := range recordResult.Details {
		if rec.ID != "" {
			ids = append(ids, rec.ID)
		}
	}

	return ids
}

func (a *GraphLookupAgent) lookup(capaIDs []string) GraphResult {
	if a.store == nil {
		return GraphResult{Error: "no graph store configured", Brand: a.opts.Brand, CAPAIDs: capaIDs}
	}

	investigations := a.store.Investigations(a.opts.Brand, capaIDs)

	enriched := make([]EnrichedInvestigation, 0, len(investigations))
	for _, inv := range investigations {
		enriched = append(enriched, a.enrich(inv))
	}

	return GraphResult{
		Success:        true,
		Investigations: enriched,
		Count:          len(enriched),
		Brand:          a.opts.Brand,
		CAPAIDs:        capaIDs,
	}
}

// enrich joins an investigation with its CAPA detail and batch record and
// validates the PDF link format.
func (a *GraphLookupAgent) enrich(inv graph.Investigation) EnrichedInvestigation {
	out := EnrichedInvestigation{Investigation: inv}

	if inv.CAPAID != "" {
		if detail, ok := a.store.CAPADetails(inv.CAPAID); ok {
			out.CAPADetails = &detail
		}
	}

	if inv.BatchNumber != "" {
		if batch, ok := a.store.BatchInfo(inv.BatchNumber); ok {
			out.BatchInfo = &batch
		}
	}

	out.PDFAccessible = validPDFLink(inv.PDFLink)

	return out
}

// validPDFLink checks the link shape only; accessibility is not probed.
func validPDFLink(link string) bool {
	if link == "" {
		return false
	}
	if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
		return false
	}
	return strings.HasSuffix(link, ".pdf")
}
