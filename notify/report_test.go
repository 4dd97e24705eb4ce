package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/hupe1980/pharmamesh/agent"
	"github.com/hupe1980/pharmamesh/capa"
	"github.com/hupe1980/pharmamesh/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReportData() ReportData {
	return ReportData{
		Query:        "Quality overview for Avino",
		FinalSummary: "All stages completed.\nNo critical findings.",
		GeneratedAt:  time.Date(2024, 4, 2, 9, 30, 0, 0, time.UTC),
		Record: &agent.RecordResult{
			Success: true,
			Count:   2,
			Details: []capa.Record{
				{ID: "CAPA2024001", Title: "Coating deviation"},
				{ID: "CAPA2024002", Title: "Assay result out of spec"},
			},
		},
		Graph: &agent.GraphResult{
			Success: true,
			Brand:   "Avino",
			Investigations: []agent.EnrichedInvestigation{
				{Investigation: graph.Investigation{
					ID:          "INV001",
					CAPAID:      "CAPA2024001",
					Name:        "Batch Documentation Investigation",
					BatchNumber: "AV2024001",
				}},
			},
		},
		Search: &agent.SearchResult{
			Success:        true,
			Brand:          "Avino",
			DocumentsFound: 3,
			Summary:        "Phase III results were positive.",
		},
	}
}

func TestComposeReport(t *testing.T) {
	report, err := ComposeReport(sampleReportData())
	require.NoError(t, err)

	assert.Equal(t, "Pharmaceutical Analysis Summary - 2024-04-02 09:30", report.Subject)

	assert.True(t, strings.HasPrefix(report.Text, "PHARMACEUTICAL DATA ANALYSIS SUMMARY\n"))
	assert.Contains(t, report.Text, "Original Query: Quality overview for Avino")
	assert.Contains(t, report.Text, "EXECUTIVE SUMMARY:")
	assert.Contains(t, report.Text, "All stages completed.\nNo critical findings.")
	assert.Contains(t, report.Text, "1. CAPA ANALYSIS:")
	assert.Contains(t, report.Text, "   - Open CAPAs found: 2")
	assert.Contains(t, report.Text, "     * CAPA2024001: Coating deviation")
	assert.Contains(t, report.Text, "2. INVESTIGATION ANALYSIS:")
	assert.Contains(t, report.Text, "     * CAPA ID: CAPA2024001")
	assert.Contains(t, report.Text, "       Investigation: Batch Documentation Investigation")
	assert.Contains(t, report.Text, "       Batch: AV2024001")
	assert.Contains(t, report.Text, "3. CLINICAL TRIAL SUMMARY:")
	assert.Contains(t, report.Text, "   - Documents analyzed: 3")
	assert.Contains(t, report.Text, "Phase III results were positive.")

	assert.Contains(t, report.HTML, "<h2>Pharmaceutical Data Analysis Summary</h2>")
	assert.Contains(t, report.HTML, "<strong>CAPA2024001:</strong> Coating deviation")
	assert.Contains(t, report.HTML, "All stages completed.<br>No critical findings.")
}

func TestComposeReportCapsDetailLists(t *testing.T) {
	data := sampleReportData()

	data.Record.Details = nil
	for i := 0; i < 8; i++ {
		data.Record.Details = append(data.Record.Details, capa.Record{
			ID:    "CAPA" + string(rune('A'+i)),
			Title: "Finding",
		})
	}

	data.Graph.Investigations = nil
	for i := 0; i < 5; i++ {
		data.Graph.Investigations = append(data.Graph.Investigations, agent.EnrichedInvestigation{
			Investigation: graph.Investigation{ID: "INV" + string(rune('A'+i)), CAPAID: "CAPA" + string(rune('A'+i))},
		})
	}

	report, err := ComposeReport(data)
	require.NoError(t, err)

	assert.Contains(t, report.Text, "CAPAE") // fifth record
	assert.NotContains(t, report.Text, "CAPAF")
	assert.Contains(t, report.Text, "CAPA ID: CAPAC") // third investigation
	assert.NotContains(t, report.Text, "CAPA ID: CAPAD")
}

func TestComposeReportTruncatesSummary(t *testing.T) {
	data := sampleReportData()
	data.Search.Summary = strings.Repeat("x", 250)

	report, err := ComposeReport(data)
	require.NoError(t, err)

	assert.Contains(t, report.Text, strings.Repeat("x", 200)+"...")
	assert.NotContains(t, report.Text, strings.Repeat("x", 201))
}

func TestComposeReportFailedStages(t *testing.T) {
	data := sampleReportData()
	data.Record = &agent.RecordResult{Success: false, Error: "file missing"}
	data.Graph = nil
	data.Search = &agent.SearchResult{Success: false}

	report, err := ComposeReport(data)
	require.NoError(t, err)

	assert.Contains(t, report.Text, "1. CAPA ANALYSIS:\n   - Error: file missing")
	assert.Contains(t, report.Text, "2. INVESTIGATION ANALYSIS:\n   - Error: Unknown error")
	assert.Contains(t, report.Text, "3. CLINICAL TRIAL SUMMARY:\n   - Error: Unknown error")

	assert.Contains(t, report.HTML, "<strong>Error:</strong> file missing")
}

func TestComposeReportEscapesHTML(t *testing.T) {
	data := sampleReportData()
	data.FinalSummary = "<script>alert(1)</script>"

	report, err := ComposeReport(data)
	require.NoError(t, err)

	assert.NotContains(t, report.HTML, "<script>")
	assert.Contains(t, report.HTML, "&lt;script&gt;")
}
