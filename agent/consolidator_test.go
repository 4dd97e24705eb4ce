package agent

import (
	"errors"
	"strings"
	"testing"

	"github.com/hupe1980/pharmamesh/core"
	"github.com/hupe1980/pharmamesh/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedStageResults(rc *core.RunContext) {
	rc.SetState(core.StateKeyRecordResult, RecordResult{Success: true, Count: 2})
	rc.SetState(core.StateKeyGraphResult, GraphResult{Success: true, Count: 3, Brand: "Avino"})
	rc.SetState(core.StateKeySearchResult, SearchResult{Success: true, Summary: "Trial outcomes were favorable.", Brand: "Avino"})
}

func TestConsolidatorRun(t *testing.T) {
	mock := model.NewMockModel("mock", "mock")
	rc, events := newTestRunContext(t, "query")
	seedStageResults(rc)

	a := NewConsolidator(mock)
	require.NoError(t, a.Run(rc))

	ev := nextEvent(t, events)
	assert.True(t, ev.Final)
	assert.Equal(t, "consolidator", ev.Author)

	summary := ev.StateDelta[core.StateKeyFinalSummary].(string)
	assert.True(t, strings.HasPrefix(summary, "Mock response to:"))
	assert.Equal(t, summary, ev.Content.Text())

	// The model received the stage lines in pipeline order.
	assert.Contains(t, summary, "**CAPA Analysis:** Found 2 open CAPAs in the last year.")
	assert.Contains(t, summary, "**Investigations:** Found 3 investigations for brand Avino.")
	assert.Contains(t, summary, "**Clinical Trials:** Trial outcomes were favorable.")

	capaIdx := strings.Index(summary, "**CAPA Analysis:**")
	invIdx := strings.Index(summary, "**Investigations:**")
	trialIdx := strings.Index(summary, "**Clinical Trials:**")
	assert.Less(t, capaIdx, invIdx)
	assert.Less(t, invIdx, trialIdx)
}

func TestConsolidatorDegradedStages(t *testing.T) {
	mock := model.NewMockModel("mock", "mock")
	rc, _ := newTestRunContext(t, "query")

	rc.SetState(core.StateKeyRecordResult, RecordResult{Success: false, Error: "file missing"})
	rc.SetState(core.StateKeyGraphResult, GraphResult{Success: false})
	rc.SetState(core.StateKeySearchResult, SearchResult{Success: true, Brand: "Avino"})

	a := NewConsolidator(mock)
	require.NoError(t, a.Run(rc))

	v, _ := rc.Session.GetState(core.StateKeyFinalSummary)
	summary := v.(string)

	assert.Contains(t, summary, "**CAPA Analysis:** Error - file missing")
	assert.Contains(t, summary, "**Investigations:** Error - Unknown error")
	assert.Contains(t, summary, "**Clinical Trials:** No clinical trial data found for brand Avino.")
}

func TestConsolidatorModelFailureKeepsRawData(t *testing.T) {
	mock := model.NewMockModel("mock", "mock")
	mock.FailWith(errors.New("quota exceeded"))

	rc, events := newTestRunContext(t, "query")
	seedStageResults(rc)

	a := NewConsolidator(mock)
	require.NoError(t, a.Run(rc))

	ev := nextEvent(t, events)
	assert.True(t, ev.Final)

	summary := ev.StateDelta[core.StateKeyFinalSummary].(string)
	assert.True(t, strings.HasPrefix(summary, "Summary generation failed: quota exceeded"))
	assert.Contains(t, summary, "Raw Data:")
	assert.Contains(t, summary, "**CAPA Analysis:** Found 2 open CAPAs in the last year.")
}
