package capa

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/hupe1980/pharmamesh/logging"
)

// defaultHeaders is the positional column order assumed when the file carries
// no header row.
var defaultHeaders = []string{"capa_id", "title", "region", "status", "date", "priority", "assigned_to"}

// StoreOptions configures a FileStore.
type StoreOptions struct {
	Logger logging.Logger
}

// FileStore loads CAPA records from a tab-separated file and answers the
// queries the record filter stage needs. Records are held in memory after
// Load; the store itself is read-only afterwards and safe for concurrent use.
type FileStore struct {
	path    string
	records []Record
	opts    StoreOptions
}

// NewFileStore creates a store for the given TSV file path. Call Load before
// querying.
func NewFileStore(path string, optFns ...func(o *StoreOptions)) *FileStore {
	opts := StoreOptions{Logger: logging.NoOpLogger{}}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &FileStore{path: path, opts: opts}
}

// Load reads and parses the backing file, replacing any previously loaded
// records.
func (s *FileStore) Load() error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("failed to open capa file %s: %w", s.path, err)
	}
	defer f.Close()

	records, err := Parse(f)
	if err != nil {
		return fmt.Errorf("failed to parse capa file %s: %w", s.path, err)
	}

	s.records = records
	s.opts.Logger.Info("Loaded CAPA records", "path", s.path, "count", len(records))

	return nil
}

// Parse reads tab-separated CAPA data. A header row is recognized by the
// presence of a capa_id column; without one the default column order applies
// and the first row is treated as data. Short rows are padded with empty
// fields and missing required fields are filled with defaults (a generated
// id, "Untitled CAPA", today's date). Rows with no content at all are
// skipped.
func Parse(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("tsv read error: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	headers := defaultHeaders
	start := 0
	if isHeaderRow(rows[0]) {
		headers = make([]string, len(rows[0]))
		for i, h := range rows[0] {
			headers[i] = strings.ToLower(strings.TrimSpace(h))
		}
		start = 1
	}

	var records []Record
	for _, row := range rows[start:] {
		if isEmptyRow(row) {
			continue
		}
		records = append(records, parseRow(headers, row))
	}

	return records, nil
}

func isEmptyRow(row []string) bool {
	for _, field := range row {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

func isHeaderRow(row []string) bool {
	for _, field := range row {
		if strings.EqualFold(strings.TrimSpace(field), "capa_id") {
			return true
		}
	}
	return false
}

func parseRow(headers, row []string) Record {
	get := func(name string) string {
		for i, h := range headers {
			if h != name {
				continue
			}
			if i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return "" // Short row, pad with empty
		}
		return ""
	}

	rec := Record{
		ID:         get("capa_id"),
		Title:      get("title"),
		Region:     get("region"),
		Status:     NormalizeStatus(get("status")),
		Date:       NormalizeDate(get("date")),
		Priority:   strings.ToUpper(get("priority")),
		AssignedTo: get("assigned_to"),
	}

	// Required fields fall back to defaults instead of dropping the row.
	if rec.ID == "" {
		rec.ID = fmt.Sprintf("CAPA_%s", time.Now().Format("20060102_150405"))
	}
	if rec.Title == "" {
		rec.Title = "Untitled CAPA"
	}
	if rec.Date == "" {
		rec.Date = time.Now().Format("2006-01-02")
	}
	if rec.Region == "" {
		rec.Region = "Global"
	}
	if rec.Priority == "" {
		rec.Priority = "MEDIUM"
	}

	return rec
}

// Records returns a copy of all loaded records.
func (s *FileStore) Records() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// ByID returns the record with the given CAPA id, matched case-insensitively.
func (s *FileStore) ByID(id string) (Record, bool) {
	for _, rec := range s.records {
		if strings.EqualFold(rec.ID, id) {
			return rec, true
		}
	}
	return Record{}, false
}

// OpenSince returns open records dated on or after cutoff. Records whose date
// failed to normalize are excluded since their age cannot be established.
func (s *FileStore) OpenSince(cutoff time.Time) []Record {
	var out []Record
	for _, rec := range s.records {
		if !rec.IsOpen() {
			continue
		}
		opened, ok := rec.OpenedAt()
		if !ok {
			s.opts.Logger.Debug("Skipping record with unparseable date", "capa_id", rec.ID, "date", rec.Date)
			continue
		}
		if opened.Before(cutoff) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// OpenWithinDays returns open records dated within the last n days.
func (s *FileStore) OpenWithinDays(days int) []Record {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	return s.OpenSince(cutoff)
}

// Filter describes search criteria for Search. Empty fields match everything;
// Text matches against the title, case-insensitively.
type Filter struct {
	Region     string
	Status     string
	Priority   string
	AssignedTo string
	Text       string
}

// Search returns the records matching all set criteria.
func (s *FileStore) Search(f Filter) []Record {
	var out []Record
	for _, rec := range s.records {
		if f.Region != "" && !strings.EqualFold(rec.Region, f.Region) {
			continue
		}
		if f.Status != "" && NormalizeStatus(f.Status) != rec.Status {
			continue
		}
		if f.Priority != "" && !strings.EqualFold(rec.Priority, f.Priority) {
			continue
		}
		if f.AssignedTo != "" && !strings.EqualFold(rec.AssignedTo, f.AssignedTo) {
			continue
		}
		if f.Text != "" && !strings.Contains(strings.ToLower(rec.Title), strings.ToLower(f.Text)) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Statistics summarizes the loaded records.
type Statistics struct {
	Total        int            `json:"total"`
	Open         int            `json:"open"`
	ByStatus     map[string]int `json:"by_status"`
	ByRegion     map[string]int `json:"by_region"`
	ByPriority   map[string]int `json:"by_priority"`
	EarliestDate string         `json:"earliest_date,omitempty"`
	LatestDate   string         `json:"latest_date,omitempty"`
}

// Statistics computes per-status, per-region and per-priority counts plus the
// covered date range.
func (s *FileStore) Statistics() Statistics {
	stats := Statistics{
		ByStatus:   map[string]int{},
		ByRegion:   map[string]int{},
		ByPriority: map[string]int{},
	}
	for _, rec := range s.records {
		stats.Total++
		if rec.IsOpen() {
			stats.Open++
		}
		stats.ByStatus[rec.Status]++
		if rec.Region != "" {
			stats.ByRegion[rec.Region]++
		}
		if rec.Priority != "" {
			stats.ByPriority[rec.Priority]++
		}
		if _, ok := rec.OpenedAt(); ok {
			if stats.EarliestDate == "" || rec.Date < stats.EarliestDate {
				stats.EarliestDate = rec.Date
			}
			if rec.Date > stats.LatestDate {
				stats.LatestDate = rec.Date
			}
		}
	}
	return stats
}

// Regions returns the distinct regions present in the data, sorted.
func (s *FileStore) Regions() []string {
	seen := map[string]struct{}{}
	for _, rec := range s.records {
		if rec.Region != "" {
			seen[rec.Region] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}
