package agent

import (
	"fmt"
	"strings"

	"github.com/hupe1980/pharmamesh/core"
	"github.com/hupe1980/pharmamesh/model"
)

// consolidatorInstructions steer the model towards a structured report.
const consolidatorInstructions = `You are a pharmaceutical data analyst creating a comprehensive summary report.

Based on the consolidated data from multiple specialized agents, create a clear,
professional summary that answers the original user query.

Format the summary with:
1. Executive Summary (2-3 sentences)
2. Key Findings (bullet points)
3. Detailed Results (organized by data source)
4. Recommendations or Next Steps (if applicable)

Keep the tone professional and data-driven.`

// ConsolidatorOptions configures a Consolidator.
type ConsolidatorOptions struct {
	Temperature float64
}

// Consolidator is the final pipeline stage. It folds the three stage results
// into one line each, asks the model for a narrative report and publishes it
// as the run's final summary. Model failures degrade to the raw consolidated
// lines prefixed with the error.
type Consolidator struct {
	BaseAgent
	model model.Model
	opts  ConsolidatorOptions
}

// NewConsolidator creates the consolidation stage.
func NewConsolidator(m model.Model, optFns ...func(o *ConsolidatorOptions)) *Consolidator {
	opts := ConsolidatorOptions{Temperature: 0.1}

	for _, fn := range optFns {
		fn(&opts)
	}

	a := &Consolidator{
		BaseAgent: NewBaseAgent("consolidator"),
		model:     m,
		opts:      opts,
	}
	a.SetDescription("Consolidates all stage results into the final summary report")

	return a
}

// Run implements core.Agent. The final event carries the summary text and is
// marked final.
func (a *Consolidator) Run(rc *core.RunContext) error {
	consolidated := a.consolidate(rc)

	summary, err := a.narrate(rc, consolidated)
	if err != nil {
		if rc.Err() != nil {
			return rc.Err()
		}

		rc.Logger.Warn("Final summary generation failed", "error", err.Error())
		summary = fmt.Sprintf("Summary generation failed: %s\n\nRaw Data:\n%s", err.Error(), consolidated)
	}

	rc.SetState(core.StateKeyFinalSummary, summary)

	ev := core.NewMessageEvent(rc.RunID, a.Name(), summary)
	ev.Final = true

	return rc.EmitEvent(ev)
}

// consolidate renders one line per stage result, in pipeline order.
func (a *Consolidator) consolidate(rc *core.RunContext) string {
	var parts []string

	if v, ok := rc.GetState(core.StateKeyRecordResult); ok {
		if r, ok := v.(RecordResult); ok {
			if r.Success {
				parts = append(parts, fmt.Sprintf("**CAPA Analysis:** Found %d open CAPAs in the last year.", r.Count))
			} else {
				parts = append(parts, fmt.Sprintf("**CAPA Analysis:** Error - %s", errorOrUnknown(r.Error)))
			}
		}
	}

	if v, ok := rc.GetState(core.StateKeyGraphResult); ok {
		if r, ok := v.(GraphResult); ok {
			if r.Success {
				parts = append(parts, fmt.Sprintf("**Investigations:** Found %d investigations for brand %s.", r.Count, r.Brand))
			} else {
				parts = append(parts, fmt.Sprintf("**Investigations:** Error - %s", errorOrUnknown(r.Error)))
			}
		}
	}

	if v, ok := rc.GetState(core.StateKeySearchResult); ok {
		if r, ok := v.(SearchResult); ok {
			switch {
			case r.Success && r.Summary != "":
				parts = append(parts, fmt.Sprintf("**Clinical Trials:** %s", r.Summary))
			case r.Success:
				parts = append(parts, fmt.Sprintf("**Clinical Trials:** No clinical trial data found for brand %s.", r.Brand))
			default:
				parts = append(parts, fmt.Sprintf("**Clinical Trials:** Error - %s", errorOrUnknown(r.Error)))
			}
		}
	}

	return strings.Join(parts, "\n")
}

func (a *Consolidator) narrate(rc *core.RunContext, consolidated string) (string, error) {
	if err := rc.Limiter.Increment(); err != nil {
		return "", err
	}

	return model.GenerateText(rc.Context, a.model, model.Request{
		Instructions: consolidatorInstructions,
		Contents: []core.Content{
			core.NewTextContent("user", fmt.Sprintf("Consolidated Data:\n%s", consolidated)),
		},
		Temperature: model.Temperature(a.opts.Temperature),
	})
}

func errorOrUnknown(s string) string {
	if s == "" {
		return "Unknown error"
	}
	return s
}
