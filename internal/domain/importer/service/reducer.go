package service

import (
	"github.com/FACorreiaa/contact-importer/internal/domain/importer/projector"
	"github.com/FACorreiaa/contact-importer/internal/domain/importer/remote"
)

// Outcome is the running sum of every batch processed so far. It is owned
// by the run and mutated only through the reducers below, never
// concurrently.
type Outcome struct {
	Imported         int               `json:"imported"`
	CompaniesCreated int               `json:"companiesCreated"`
	CompaniesUpdated int               `json:"companiesUpdated"`
	Failed           int               `json:"failed"`
	Errors           []remote.RowError `json:"errors,omitempty"`
	ExistingEmails   []string          `json:"existingEmails,omitempty"`
	ImportedEmails   []string          `json:"importedEmails,omitempty"`
}

// partition splits rows into contiguous batches of at most batchCap rows,
// preserving file order: batch i holds rows [i*cap, min((i+1)*cap, total)).
func partition(rows []projector.ProjectedRow, batchCap int) [][]projector.ProjectedRow {
	if len(rows) == 0 {
		return nil
	}
	batches := make([][]projector.ProjectedRow, 0, (len(rows)+batchCap-1)/batchCap)
	for start := 0; start < len(rows); start += batchCap {
		end := start + batchCap
		if end > len(rows) {
			end = len(rows)
		}
		batches = append(batches, rows[start:end])
	}
	return batches
}

// progressFor computes the progress value published before submitting
// batch batchIndex. The final 10% is reserved for post-processing.
func progressFor(batchIndex, totalBatches int) int {
	return batchIndex * 90 / totalBatches
}

// applyBatch folds one successful batch response into the outcome. Server
// row numbers are local to the batch, so they are rebased by the batch's
// offset in the file before being recorded.
func applyBatch(o Outcome, batchIndex, batchCap int, res *remote.BatchResult) Outcome {
	o.Imported += res.Imported
	o.CompaniesCreated += res.CompaniesCreated
	o.CompaniesUpdated += res.CompaniesUpdated
	o.Failed += res.Failed

	offset := batchIndex * batchCap
	for _, rowErr := range res.Errors {
		rowErr.Row += offset
		o.Errors = append(o.Errors, rowErr)
	}

	o.ExistingEmails = append(o.ExistingEmails, res.ExistingEmails...)
	o.ImportedEmails = append(o.ImportedEmails, res.ImportedEmails...)
	return o
}

// applyBatchFailure folds a whole-batch failure into the outcome: every
// row in the batch counts as failed and one synthetic error entry points
// at the batch's first file row. The run continues with the next batch.
func applyBatchFailure(o Outcome, batchIndex, batchCap, batchLen int, err error) Outcome {
	o.Failed += batchLen

	message := "batch import failed"
	if err != nil {
		message = err.Error()
	}
	o.Errors = append(o.Errors, remote.RowError{
		Row:   batchIndex*batchCap + 1,
		Email: "N/A",
		Error: message,
	})
	return o
}
