// Package history provides the interactive execution-record browser.
package history

import (
	"strings"

	"github.com/razonbilstro/nucleo/internal/journal"
)

// OutcomeOptions are the cycling outcome filter options. Empty means all.
var OutcomeOptions = []string{
	"",
	"success",
	"failed",
	"timed_out",
}

// ClassOptions are the cycling classification filter options.
var ClassOptions = []string{
	"",
	"safe",
	"dangerous",
	"unknown",
}

// Filters represents the current filter state.
type Filters struct {
	OutcomeFilter string
	ClassFilter   string
	Search        string
	outcomeIdx    int
	classIdx      int
}

// NewFilters creates a filter state with nothing applied.
func NewFilters() Filters {
	return Filters{}
}

// CycleOutcome advances the outcome filter to the next option.
func (f *Filters) CycleOutcome() {
	f.outcomeIdx = (f.outcomeIdx + 1) % len(OutcomeOptions)
	f.OutcomeFilter = OutcomeOptions[f.outcomeIdx]
}

// CycleClass advances the classification filter to the next option.
func (f *Filters) CycleClass() {
	f.classIdx = (f.classIdx + 1) % len(ClassOptions)
	f.ClassFilter = ClassOptions[f.classIdx]
}

// Clear resets every filter.
func (f *Filters) Clear() {
	*f = Filters{}
}

// Active reports whether any filter is applied.
func (f *Filters) Active() bool {
	return f.OutcomeFilter != "" || f.ClassFilter != "" || f.Search != ""
}

// Apply returns the records that pass the current filters, preserving order.
func (f *Filters) Apply(records []journal.Record) []journal.Record {
	if !f.Active() {
		return records
	}
	search := strings.ToLower(f.Search)
	var out []journal.Record
	for _, rec := range records {
		if f.OutcomeFilter != "" && rec.Outcome != f.OutcomeFilter {
			continue
		}
		if f.ClassFilter != "" && rec.Class != f.ClassFilter {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(rec.Command), search) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Describe renders the filter state for the status line.
func (f *Filters) Describe() string {
	if !f.Active() {
		return "all records"
	}
	var parts []string
	if f.OutcomeFilter != "" {
		parts = append(parts, "outcome="+f.OutcomeFilter)
	}
	if f.ClassFilter != "" {
		parts = append(parts, "class="+f.ClassFilter)
	}
	if f.Search != "" {
		parts = append(parts, "search="+f.Search)
	}
	return strings.Join(parts, " ")
}
