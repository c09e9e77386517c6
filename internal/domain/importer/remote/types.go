// Package remote implements the HTTP clients for the contact store's bulk
// import endpoint and the activity-log follow-up call.
package remote

import (
	"errors"
	"fmt"
	"strings"
)

// RowError is one row the store rejected, with the row number local to the
// submitted batch.
type RowError struct {
	Row   int    `json:"row"`
	Email string `json:"email"`
	Error string `json:"error"`
}

// BatchResult is the store's response to one batch submission.
type BatchResult struct {
	Imported         int        `json:"imported"`
	CompaniesCreated int        `json:"companiesCreated"`
	CompaniesUpdated int        `json:"companiesUpdated"`
	Failed           int        `json:"failed"`
	ExistingEmails   []string   `json:"existingEmails"`
	ImportedEmails   []string   `json:"importedEmails"`
	Errors           []RowError `json:"errors"`
}

// errorKindDuplicate is the structured error kind the store returns when
// submitted rows reference contacts that already exist.
const errorKindDuplicate = "duplicate"

// errorPayload is the store's error response body.
type errorPayload struct {
	Message        string   `json:"message"`
	Kind           string   `json:"kind"`
	ExistingEmails []string `json:"existingEmails"`
}

// ConflictError signals a duplicate-contact conflict. It aborts the whole
// import run rather than being folded into per-row failures.
type ConflictError struct {
	Message        string
	ExistingEmails []string
}

func (e *ConflictError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("contacts already exist (%d conflicting emails)", len(e.ExistingEmails))
}

// AsConflict unwraps err into a ConflictError when it is one.
func AsConflict(err error) (*ConflictError, bool) {
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return conflict, true
	}
	return nil, false
}

// isDuplicatePayload classifies an error payload as a duplicate conflict.
// The structured kind is authoritative; the message substring check is the
// legacy fallback for stores that predate the kind field.
func isDuplicatePayload(p *errorPayload) bool {
	if p.Kind != "" {
		return p.Kind == errorKindDuplicate
	}
	if len(p.ExistingEmails) > 0 {
		return true
	}
	return strings.Contains(p.Message, "already exist")
}
