package agent

import (
	"fmt"
	"strings"

	"github.com/hupe1980/pharmamesh/core"
	"github.com/hupe1980/pharmamesh/internal/util"
	"github.com/hupe1980/pharmamesh/model"
	"github.com/hupe1980/pharmamesh/vector"
)

// summaryPromptTemplate asks the model to condense the retrieved document
// chunks into one report paragraph.
const summaryPromptTemplate = `Please provide a comprehensive summary of the following content related to {{.Brand}}.

Focus on:
- Key findings and results
- Important safety information
- Clinical implications
- Critical data points

Content:
{{.Content}}

Provide a clear, concise summary in paragraph format.`

// summaryScoreCutoff is the minimum similarity for a document chunk to be
// included in the generated summary. It is stricter than the index's search
// threshold.
const summaryScoreCutoff = 0.7

// DocSearchOptions configures a DocSearchAgent.
type DocSearchOptions struct {
	Brand string
	TopK  int
}

// DocSearchAgent is the fourth pipeline stage. It searches the vector index
// for the brand's clinical documents, summarizes the high-confidence hits
// with the model and records the PDF links handed over by the graph stage.
type DocSearchAgent struct {
	BaseAgent
	index *vector.Index
	model model.Model
	opts  DocSearchOptions
}

// NewDocSearchAgent creates the document search stage.
func NewDocSearchAgent(index *vector.Index, m model.Model, optFns ...func(o *DocSearchOptions)) *DocSearchAgent {
	opts := DocSearchOptions{
		Brand: DefaultBrand,
		TopK:  vector.DefaultTopK,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	a := &DocSearchAgent{
		BaseAgent: NewBaseAgent("vector_agent"),
		index:     index,
		model:     m,
		opts:      opts,
	}
	a.SetDescription("Searches clinical documents by similarity and summarizes the hits")

	return a
}

// Run implements core.Agent. Failures are recorded in the stage result, not
// returned.
func (a *DocSearchAgent) Run(rc *core.RunContext) error {
	pdfLinks := a.collectPDFLinks(rc)

	result := a.search(rc, pdfLinks)
	rc.SetState(core.StateKeySearchResult, result)

	if !result.Success {
		rc.Logger.Warn("Document search stage degraded", "error", result.Error)
		return a.emitMessage(rc, fmt.Sprintf("Clinical document search failed: %s", result.Error))
	}

	return a.emitMessage(rc, fmt.Sprintf("Analyzed %d clinical documents for brand %s", result.DocumentsFound, result.Brand))
}

// collectPDFLinks gathers the investigation PDF links found by the graph
// stage.
func (a *DocSearchAgent) collectPDFLinks(rc *core.RunContext) []string {
	v, ok := rc.GetState(core.StateKeyGraphResult)
	if !ok {
		return nil
	}

	graphResult, ok := v.(GraphResult)
	if !ok || !graphResult.Success {
		return nil
	}

	var links []string
	for _, inv := range graphResult.Investigations {
		if inv.PDFLink != "" {
			links = append(links, inv.PDFLink)
		}
	}

	return links
}

func (a *DocSearchAgent) search(rc *core.RunContext, pdfLinks []string) SearchResult {
	if a.index == nil {
		return SearchResult{Error: "no vector index configured", Brand: a.opts.Brand, PDFLinks: pdfLinks}
	}

	query := fmt.Sprintf("clinical trial summary for brand %s", a.opts.Brand)

	hits, err := a.index.Search(rc.Context, query, func(o *vector.SearchOptions) {
		o.TopK = a.opts.TopK
		o.Filters = map[string]any{"brand": a.opts.Brand}
	})
	if err != nil {
		return SearchResult{Error: err.Error(), Brand: a.opts.Brand, PDFLinks: pdfLinks}
	}

	if len(hits) == 0 {
		return SearchResult{
			Success:  true,
			Brand:    a.opts.Brand,
			PDFLinks: pdfLinks,
			Query:    query,
		}
	}

	return SearchResult{
		Success:        true,
		Summary:        a.summarize(rc, hits),
		Brand:          a.opts.Brand,
		PDFLinks:       pdfLinks,
		DocumentsFound: len(hits),
		Results:        hits,
		Query:          query,
	}
}

// summarize condenses the high-confidence hits into one paragraph. Model
// failures degrade to a diagnostic string rather than failing the stage.
func (a *DocSearchAgent) summarize(rc *core.RunContext, hits []vector.SearchResult) string {
	var contents []string
	for _, hit := range hits {
		if hit.Score > summaryScoreCutoff {
			contents = append(contents, hit.Document.Content)
		}
	}

	if len(contents) == 0 {
		return fmt.Sprintf("No high-confidence clinical trial data found for brand %s.", a.opts.Brand)
	}

	combined := strings.Join(contents, "\n\n")

	prompt, err := util.RenderTemplate(summaryPromptTemplate, map[string]any{
		"Brand":   a.opts.Brand,
		"Content": combined,
	})
	if err != nil {
		return fmt.Sprintf("Summary generation failed for %s. Content length: %d characters.", a.opts.Brand, len(combined))
	}

	if err := rc.Limiter.Increment(); err != nil {
		return fmt.Sprintf("Summary generation failed for %s. Content length: %d characters.", a.opts.Brand, len(combined))
	}

	summary, err := model.GenerateText(rc.Context, a.model, model.Request{
		Contents: []core.Content{core.NewTextContent("user", prompt)},
	})
	if err != nil {
		rc.Logger.Warn("Clinical summary generation failed", "error", err.Error())
		return fmt.Sprintf("Summary generation failed for %s. Content length: %d characters.", a.opts.Brand, len(combined))
	}

	return summary
}
