package notify

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/hupe1980/pharmamesh/agent"
	"github.com/hupe1980/pharmamesh/capa"
)

// Default addresses used when the caller configures none.
const (
	DefaultRecipient = "analyst@company.com"
	DefaultSender    = "system@company.com"
)

// ReportData is everything a pipeline run produces that the report renders.
// Nil stage results render as errors, matching a run where the stage never
// wrote its output.
type ReportData struct {
	Query        string
	FinalSummary string
	Record       *agent.RecordResult
	Graph        *agent.GraphResult
	Search       *agent.SearchResult
	GeneratedAt  time.Time
}

// Report is a composed email report with plain text and HTML renderings.
type Report struct {
	Subject string
	Text    string
	HTML    string
}

// ComposeReport renders the analysis report from the given run data.
func ComposeReport(data ReportData) (Report, error) {
	if data.GeneratedAt.IsZero() {
		data.GeneratedAt = time.Now()
	}

	html, err := renderHTML(data)
	if err != nil {
		return Report{}, fmt.Errorf("render html report: %w", err)
	}

	return Report{
		Subject: fmt.Sprintf("Pharmaceutical Analysis Summary - %s", data.GeneratedAt.Format("2006-01-02 15:04")),
		Text:    renderText(data),
		HTML:    html,
	}, nil
}

func renderText(data ReportData) string {
	var b strings.Builder

	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	line("PHARMACEUTICAL DATA ANALYSIS SUMMARY")
	line(strings.Repeat("=", 50))
	line("")
	line("Analysis Date: %s", data.GeneratedAt.Format("2006-01-02 15:04:05"))
	line("Original Query: %s", valueOrNA(data.Query))
	line("")
	line("EXECUTIVE SUMMARY:")
	line(strings.Repeat("-", 20))
	line("%s", data.FinalSummary)
	line("")
	line("DETAILED RESULTS:")
	line(strings.Repeat("-", 20))

	line("")
	line("1. CAPA ANALYSIS:")

	if data.Record != nil && data.Record.Success {
		line("   - Open CAPAs found: %d", data.Record.Count)
		line("   - Analysis period: Last 12 months")

		if len(data.Record.Details) > 0 {
			line("   - CAPA Details:")

			for _, rec := range capRecords(data.Record.Details, 5) {
				line("     * %s: %s", rec.ID, rec.Title)
			}
		}
	} else {
		line("   - Error: %s", stageError(data.Record == nil, recordError(data.Record)))
	}

	line("")
	line("2. INVESTIGATION ANALYSIS:")

	if data.Graph != nil && data.Graph.Success {
		line("   - Investigations found: %d", len(data.Graph.Investigations))
		line("   - Brand: %s", valueOrNA(data.Graph.Brand))

		if len(data.Graph.Investigations) > 0 {
			line("   - Investigation Details:")

			for _, inv := range capInvestigations(data.Graph.Investigations, 3) {
				line("     * CAPA ID: %s", valueOrNA(inv.CAPAID))
				line("       Investigation: %s", valueOrNA(inv.Name))
				line("       Batch: %s", valueOrNA(inv.BatchNumber))
			}
		}
	} else {
		line("   - Error: %s", stageError(data.Graph == nil, graphError(data.Graph)))
	}

	line("")
	line("3. CLINICAL TRIAL SUMMARY:")

	if data.Search != nil && data.Search.Success {
		line("   - Documents analyzed: %d", data.Search.DocumentsFound)
		line("   - Brand: %s", valueOrNA(data.Search.Brand))

		if data.Search.Summary != "" {
			line("   - Summary:")
			line("     %s", truncate(data.Search.Summary, 200))
		}
	} else {
		line("   - Error: %s", stageError(data.Search == nil, searchError(data.Search)))
	}

	line("")
	line(strings.Repeat("=", 50))
	line("This report was generated automatically by the Multi-Agent GenAI System.")
	line("For questions or clarifications, please contact the Data Analysis Team.")

	return b.String()
}

var htmlReport = template.Must(template.New("report").Funcs(template.FuncMap{
	"breaks": func(s string) template.HTML {
		return template.HTML(strings.ReplaceAll(template.HTMLEscapeString(s), "\n", "<br>")) //nolint:gosec // escaped above
	},
}).Parse(`<html><body>
<h2>Pharmaceutical Data Analysis Summary</h2>
<p><strong>Analysis Date:</strong> {{.Date}}</p>
<p><strong>Original Query:</strong> <em>{{.Query}}</em></p>
<hr>
<h3>Executive Summary</h3>
<p>{{breaks .Summary}}</p>
<hr>
<h3>Detailed Results</h3>
<h4>1. CAPA Analysis</h4>
{{if .Record}}<p><strong>Open CAPAs found:</strong> {{.Record.Count}}</p>
<p><strong>Analysis period:</strong> Last 12 months</p>
{{if .RecordDetails}}<h5>CAPA Details:</h5><ul>
{{range .RecordDetails}}<li><strong>{{.ID}}:</strong> {{.Title}}</li>
{{end}}</ul>{{end}}{{else}}<p style="color: red;"><strong>Error:</strong> {{.RecordError}}</p>{{end}}
<h4>2. Investigation Analysis</h4>
{{if .Graph}}<p><strong>Investigations found:</strong> {{len .Graph.Investigations}}</p>
<p><strong>Brand:</strong> {{.Graph.Brand}}</p>
{{if .Investigations}}<h5>Investigation Details:</h5><ul>
{{range .Investigations}}<li><strong>CAPA ID:</strong> {{.CAPAID}}<br><strong>Investigation:</strong> {{.Name}}<br><strong>Batch:</strong> {{.BatchNumber}}</li>
{{end}}</ul>{{end}}{{else}}<p style="color: red;"><strong>Error:</strong> {{.GraphError}}</p>{{end}}
<h4>3. Clinical Trial Summary</h4>
{{if .Search}}<p><strong>Documents analyzed:</strong> {{.Search.DocumentsFound}}</p>
<p><strong>Brand:</strong> {{.Search.Brand}}</p>
{{if .Search.Summary}}<p><strong>Summary:</strong><br>{{breaks .Search.Summary}}</p>{{end}}
{{else}}<p style="color: red;"><strong>Error:</strong> {{.SearchError}}</p>{{end}}
<hr>
<p><small>This report was generated automatically by the Multi-Agent GenAI System.<br>
For questions or clarifications, please contact the Data Analysis Team.</small></p>
</body></html>`))

func renderHTML(data ReportData) (string, error) {
	view := struct {
		Date           string
		Query          string
		Summary        string
		Record         *agent.RecordResult
		RecordDetails  []capa.Record
		RecordError    string
		Graph          *agent.GraphResult
		Investigations []agent.EnrichedInvestigation
		GraphError     string
		Search         *agent.SearchResult
		SearchError    string
	}{
		Date:    data.GeneratedAt.Format("2006-01-02 15:04:05"),
		Query:   valueOrNA(data.Query),
		Summary: data.FinalSummary,
	}

	if data.Record != nil && data.Record.Success {
		view.Record = data.Record
		view.RecordDetails = capRecords(data.Record.Details, 5)
	} else {
		view.RecordError = stageError(data.Record == nil, recordError(data.Record))
	}

	if data.Graph != nil && data.Graph.Success {
		view.Graph = data.Graph
		view.Investigations = capInvestigations(data.Graph.Investigations, 3)
	} else {
		view.GraphError = stageError(data.Graph == nil, graphError(data.Graph))
	}

	if data.Search != nil && data.Search.Success {
		view.Search = data.Search
	} else {
		view.SearchError = stageError(data.Search == nil, searchError(data.Search))
	}

	var b strings.Builder
	if err := htmlReport.Execute(&b, view); err != nil {
		return "", err
	}

	return b.String(), nil
}

func capRecords(records []capa.Record, limit int) []capa.Record {
	if len(records) > limit {
		return records[:limit]
	}

	return records
}

func capInvestigations(invs []agent.EnrichedInvestigation, limit int) []agent.EnrichedInvestigation {
	if len(invs) > limit {
		return invs[:limit]
	}

	return invs
}

func truncate(s string, limit int) string {
	if len(s) > limit {
		return s[:limit] + "..."
	}

	return s
}

func valueOrNA(s string) string {
	if s == "" {
		return "N/A"
	}

	return s
}

func stageError(missing bool, errMsg string) string {
	if missing || errMsg == "" {
		return "Unknown error"
	}

	return errMsg
}

func recordError(r *agent.RecordResult) string {
	if r == nil {
		return ""
	}

	return r.Error
}

func graphError(r *agent.GraphResult) string {
	if r == nil {
		return ""
	}

	return r.Error
}

func searchError(r *agent.SearchResult) string {
	if r == nil {
		return ""
	}

	return r.Error
}
