// Package report renders the final outcome of an import run for the UI:
// summary counts, truncated identifier lists, and a downloadable error
// report.
package report

import (
	"fmt"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/FACorreiaa/contact-importer/internal/domain/importer/remote"
	"github.com/FACorreiaa/contact-importer/internal/domain/importer/service"
)

// headSize is how many identifiers or errors a summary names before
// collapsing the rest into an "and N more" suffix.
const headSize = 5

// Summary is the user-facing rendering of a finished run.
type Summary struct {
	State            service.State     `json:"state"`
	Imported         int               `json:"imported"`
	CompaniesCreated int               `json:"companiesCreated"`
	CompaniesUpdated int               `json:"companiesUpdated"`
	Failed           int               `json:"failed"`
	Skipped          int               `json:"skipped"`
	Message          string            `json:"message"`
	ImportedEmails   []string          `json:"importedEmails,omitempty"`
	ExistingEmails   []string          `json:"existingEmails,omitempty"`
	Errors           []remote.RowError `json:"errors,omitempty"`
	MoreImported     int               `json:"moreImported,omitempty"`
	MoreExisting     int               `json:"moreExisting,omitempty"`
	MoreErrors       int               `json:"moreErrors,omitempty"`
	Batches          int               `json:"batches,omitempty"`
}

// Summarize renders the outcome with the long lists truncated to a small
// head; the full lists stay available through the CSV export.
func Summarize(state service.State, outcome service.Outcome, batches int) Summary {
	importedHead, moreImported := truncate(outcome.ImportedEmails)
	existingHead, moreExisting := truncate(outcome.ExistingEmails)

	errorsHead := outcome.Errors
	moreErrors := 0
	if len(errorsHead) > headSize {
		moreErrors = len(errorsHead) - headSize
		errorsHead = errorsHead[:headSize]
	}

	return Summary{
		State:            state,
		Imported:         outcome.Imported,
		CompaniesCreated: outcome.CompaniesCreated,
		CompaniesUpdated: outcome.CompaniesUpdated,
		Failed:           outcome.Failed,
		Skipped:          len(outcome.ExistingEmails),
		Message:          message(state, outcome, batches),
		ImportedEmails:   importedHead,
		ExistingEmails:   existingHead,
		Errors:           errorsHead,
		MoreImported:     moreImported,
		MoreExisting:     moreExisting,
		MoreErrors:       moreErrors,
		Batches:          batches,
	}
}

// message builds the headline the dashboard shows when the run finishes.
func message(state service.State, outcome service.Outcome, batches int) string {
	switch state {
	case service.StateAborted:
		head, more := truncate(outcome.ExistingEmails)
		msg := "These contacts already exist in the database"
		if len(head) > 0 {
			msg += ": " + strings.Join(head, ", ")
			if more > 0 {
				msg += fmt.Sprintf(" and %d more", more)
			}
		}
		return msg
	case service.StateCompleted:
		companies := outcome.CompaniesCreated + outcome.CompaniesUpdated
		msg := fmt.Sprintf("Successfully imported %d contact(s)", outcome.Imported)
		if companies > 0 {
			msg += fmt.Sprintf(" and %d company/companies", companies)
		}
		if batches > 1 {
			msg += fmt.Sprintf(" (processed in %d batches)", batches)
		}
		return msg
	case service.StateIdle:
		if outcome.Imported == 0 {
			return "No contacts were imported. Please check your data and try again."
		}
		return ""
	default:
		return ""
	}
}

func truncate(values []string) ([]string, int) {
	if len(values) <= headSize {
		return values, 0
	}
	return values[:headSize], len(values) - headSize
}

// csvError is the row shape of the downloadable error report.
type csvError struct {
	Row   int    `csv:"row"`
	Email string `csv:"email"`
	Error string `csv:"error"`
}

// ErrorsCSV exports every recorded row error as a CSV document, untruncated.
func ErrorsCSV(outcome service.Outcome) ([]byte, error) {
	rows := make([]csvError, len(outcome.Errors))
	for i, e := range outcome.Errors {
		rows[i] = csvError{Row: e.Row, Email: e.Email, Error: e.Error}
	}
	data, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to encode error report: %w", err)
	}
	return data, nil
}
