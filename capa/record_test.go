package capa

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"canonical open", "OPEN", StatusOpen},
		{"lowercase closed", "closed", StatusClosed},
		{"padded pending", "  Pending ", StatusPending},
		{"cancelled", "Cancelled", StatusCancelled},
		{"in progress with space", "In Progress", StatusInProgress},
		{"working maps to in progress", "working on it", StatusInProgress},
		{"complete maps to closed", "Complete", StatusClosed},
		{"completed maps to closed", "COMPLETED", StatusClosed},
		{"done maps to closed", "Done", StatusClosed},
		{"unknown defaults to open", "escalated", StatusOpen},
		{"empty defaults to open", "", StatusOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeStatus(tt.input))
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"iso", "2024-03-15", "2024-03-15"},
		{"slash iso", "2024/03/15", "2024-03-15"},
		{"us slashes", "03/28/2024", "2024-03-28"},
		{"us dashes", "03-28-2024", "2024-03-28"},
		{"abbrev month", "28-Mar-2024", "2024-03-28"},
		{"long month", "March 28, 2024", "2024-03-28"},
		{"timestamp", "2024-03-15 09:30:00", "2024-03-15"},
		{"unparseable kept raw", "sometime in spring", "sometime in spring"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeDate(tt.input))
		})
	}
}

func TestRecordIsOpen(t *testing.T) {
	assert.True(t, Record{Status: StatusOpen}.IsOpen())
	assert.True(t, Record{Status: StatusInProgress}.IsOpen())
	assert.True(t, Record{Status: StatusPending}.IsOpen())
	assert.False(t, Record{Status: StatusClosed}.IsOpen())
	assert.False(t, Record{Status: StatusCancelled}.IsOpen())
}

func TestRecordOpenedAt(t *testing.T) {
	rec := Record{Date: "2024-03-15"}
	opened, ok := rec.OpenedAt()
	assert.True(t, ok)
	assert.Equal(t, 2024, opened.Year())

	_, ok = Record{Date: "unknown"}.OpenedAt()
	assert.False(t, ok)
}
