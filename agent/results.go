package agent

import (
	"github.com/hupe1980/pharmamesh/capa"
	"github.com/hupe1980/pharmamesh/graph"
	"github.com/hupe1980/pharmamesh/vector"
)

// DefaultBrand is the product brand the pipeline reports on when the
// decomposed query names no other.
const DefaultBrand = "Avino"

// Breakdown is the decomposer's structured output: one sub-question per
// downstream stage plus the reasoning that produced them.
type Breakdown struct {
	Reasoning    string            `json:"reasoning"`
	SubQuestions []string          `json:"sub_questions"`
	AgentMapping map[string]string `json:"agent_mapping"`
}

// RecordResult is the record filter stage's output.
type RecordResult struct {
	Success        bool          `json:"success"`
	Error          string        `json:"error,omitempty"`
	Count          int           `json:"count"`
	Details        []capa.Record `json:"details"`
	QueryProcessed string        `json:"query_processed,omitempty"`
	AnalysisDate   string        `json:"analysis_date,omitempty"`
}

// EnrichedInvestigation is an investigation joined with its CAPA detail,
// batch record and a PDF link validity flag.
type EnrichedInvestigation struct {
	graph.Investigation
	CAPADetails   *graph.CAPADetail `json:"capa_details,omitempty"`
	BatchInfo     *graph.Batch      `json:"batch_info,omitempty"`
	PDFAccessible bool              `json:"pdf_accessible"`
}

// GraphResult is the graph lookup stage's output.
type GraphResult struct {
	Success        bool                    `json:"success"`
	Error          string                  `json:"error,omitempty"`
	Investigations []EnrichedInvestigation `json:"investigations"`
	Count          int                     `json:"count"`
	Brand          string                  `json:"brand"`
	CAPAIDs        []string                `json:"capa_ids"`
}

// SearchResult is the document search stage's output.
type SearchResult struct {
	Success        bool                  `json:"success"`
	Error          string                `json:"error,omitempty"`
	Summary        string                `json:"summary"`
	Brand          string                `json:"brand"`
	PDFLinks       []string              `json:"pdf_links"`
	DocumentsFound int                   `json:"documents_found"`
	Results        []vector.SearchResult `json:"search_results,omitempty"`
	Query          string                `json:"query,omitempty"`
}
