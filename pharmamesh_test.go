package pharmamesh

import (
	"context"
	"strings"
	"testing"

	"github.com/hupe1980/pharmamesh/config"
	"github.com/hupe1980/pharmamesh/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPipeline(t *testing.T, relay notify.Relay) *Pipeline {
	t.Helper()

	cfg := config.Default()
	cfg.Model.Provider = "mock"
	cfg.Data.CapaFile = "" // record stage degrades

	p, err := New(context.Background(), func(o *Options) {
		o.Config = cfg
		o.Relay = relay
	})
	require.NoError(t, err)

	return p
}

func TestPipelineRunSync(t *testing.T) {
	p := newMockPipeline(t, notify.NewMockRelay())

	result, err := p.RunSync(context.Background(), "How is Avino performing?")
	require.NoError(t, err)

	assert.NotEmpty(t, result.SessionID)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "How is Avino performing?", result.Query)
	assert.NotEmpty(t, result.Events)

	// The mock model cannot produce valid JSON, so the decomposer falls back
	// to its canned breakdown.
	require.Len(t, result.Breakdown.SubQuestions, 3)

	assert.False(t, result.RecordResult.Success)
	assert.Equal(t, "no CAPA store configured", result.RecordResult.Error)

	assert.True(t, result.GraphResult.Success)
	assert.Equal(t, 3, result.GraphResult.Count)

	assert.True(t, result.SearchResult.Success)
	assert.NotEmpty(t, result.FinalSummary)
	assert.True(t, strings.HasPrefix(result.FinalSummary, "Mock response to:"))
}

func TestPipelineSendReport(t *testing.T) {
	relay := notify.NewMockRelay()
	p := newMockPipeline(t, relay)

	result, err := p.RunSync(context.Background(), "query")
	require.NoError(t, err)

	receipt, err := p.SendReport(context.Background(), result)
	require.NoError(t, err)
	assert.Equal(t, "analyst@company.com", receipt.Recipient)
	assert.True(t, strings.HasPrefix(receipt.MessageID, "mock_"))

	sent := relay.Sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Text, "PHARMACEUTICAL DATA ANALYSIS SUMMARY")
	assert.Contains(t, sent[0].Text, result.FinalSummary)
	assert.Contains(t, sent[0].Subject, "Pharmaceutical Analysis Summary - ")
}

func TestPipelineValidateDelivery(t *testing.T) {
	p := newMockPipeline(t, notify.NewMockRelay())
	assert.NoError(t, p.ValidateDelivery(context.Background()))
}

func TestPipelineRunStreaming(t *testing.T) {
	p := newMockPipeline(t, notify.NewMockRelay())

	runID, events, errs, err := p.Run(context.Background(), "sess-stream", "query")
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	var sawFinal bool

	for ev := range events {
		if ev.Final {
			sawFinal = true
		}
	}

	if err, ok := <-errs; ok && err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}

	assert.True(t, sawFinal)
}
