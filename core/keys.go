package core

// Well-known session state keys written by the pipeline stages. Each stage
// reads the keys of its predecessors and writes exactly one of its own, in
// pipeline order.
const (
	// StateKeyQuery holds the original user query string.
	StateKeyQuery = "query"

	// StateKeyBreakdown holds the decomposer output (*agent.Breakdown).
	StateKeyBreakdown = "breakdown"

	// StateKeyRecordResult holds the structured-record stage result.
	StateKeyRecordResult = "record_result"

	// StateKeyGraphResult holds the graph lookup stage result.
	StateKeyGraphResult = "graph_result"

	// StateKeySearchResult holds the similarity search stage result.
	StateKeySearchResult = "search_result"

	// StateKeyFinalSummary holds the consolidated narrative report string.
	StateKeyFinalSummary = "final_summary"
)
