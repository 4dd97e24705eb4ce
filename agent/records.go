package agent

import (
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/pharmamesh/capa"
	"github.com/hupe1980/pharmamesh/core"
)

// defaultRecordQuestion is used when the breakdown offers no CAPA question.
const defaultRecordQuestion = "How many open CAPA are present in the last one year?"

// RecordFilterOptions configures a RecordFilterAgent.
type RecordFilterOptions struct {
	// WindowDays bounds how far back open records are counted.
	WindowDays int
}

// RecordFilterAgent is the second pipeline stage. It selects the CAPA
// sub-question from the breakdown and answers it by filtering the record
// store for open records inside the reporting window.
type RecordFilterAgent struct {
	BaseAgent
	store *capa.FileStore
	opts  RecordFilterOptions
}

// NewRecordFilterAgent creates the record filter stage.
func NewRecordFilterAgent(store *capa.FileStore, optFns ...func(o *RecordFilterOptions)) *RecordFilterAgent {
	opts := RecordFilterOptions{WindowDays: 365}

	for _, fn := range optFns {
		fn(&opts)
	}

	a := &RecordFilterAgent{
		BaseAgent: NewBaseAgent("capa_agent"),
		store:     store,
		opts:      opts,
	}
	a.SetDescription("Filters CAPA records for open items inside the reporting window")

	return a
}

// Run implements core.Agent. Failures are recorded in the stage result, not
// returned.
func (a *RecordFilterAgent) Run(rc *core.RunContext) error {
	question := a.selectQuestion(rc)

	result := a.process(question)
	rc.SetState(core.StateKeyRecordResult, result)

	if !result.Success {
		rc.Logger.Warn("Record filter stage degraded", "error", result.Error)
		return a.emitMessage(rc, fmt.Sprintf("CAPA analysis failed: %s", result.Error))
	}

	return a.emitMessage(rc, fmt.Sprintf("Found %d open CAPAs in the last %d days", result.Count, a.opts.WindowDays))
}

// selectQuestion picks the CAPA-related sub-question from the breakdown.
func (a *RecordFilterAgent) selectQuestion(rc *core.RunContext) string {
	v, ok := rc.GetState(core.StateKeyBreakdown)
	if !ok {
		return defaultRecordQuestion
	}

	breakdown, ok := v.(Breakdown)
	if !ok {
		return defaultRecordQuestion
	}

	for _, q := range breakdown.SubQuestions {
		if strings.Contains(strings.ToUpper(q), "CAPA") {
			return q
		}
	}

	return defaultRecordQuestion
}

func (a *RecordFilterAgent) process(question string) RecordResult {
	if a.store == nil {
		return RecordResult{Error: "no CAPA store configured"}
	}

	records := a.store.Records()
	if len(records) == 0 {
		return RecordResult{Error: "no CAPA data found or file not accessible"}
	}

	open := a.store.OpenWithinDays(a.opts.WindowDays)

	return RecordResult{
		Success:        true,
		Count:          len(open),
		Details:        open,
		QueryProcessed: question,
		AnalysisDate:   time.Now().UTC().Format(time.RFC3339),
	}
}
