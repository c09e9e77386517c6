// Package e2etest provides end-to-end tests for the whole import
// pipeline: workbook decode, mapping, validation, projection, chunked
// submission to a stand-in contact store, and the final summary.
package e2etest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/contact-importer/internal/domain/importer/field"
	"github.com/FACorreiaa/contact-importer/internal/domain/importer/mapping"
	"github.com/FACorreiaa/contact-importer/internal/domain/importer/projector"
	"github.com/FACorreiaa/contact-importer/internal/domain/importer/remote"
	"github.com/FACorreiaa/contact-importer/internal/domain/importer/report"
	"github.com/FACorreiaa/contact-importer/internal/domain/importer/service"
	"github.com/FACorreiaa/contact-importer/internal/domain/importer/sheet"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// buildWorkbook creates an in-memory .xlsx with messy, realistic headers
// and n generated contact rows.
func buildWorkbook(t *testing.T, n int) *bytes.Buffer {
	t.Helper()
	gofakeit.Seed(42)

	f := excelize.NewFile()
	name := f.GetSheetName(0)

	headers := []any{
		"First Name", "Last Name", "Title", "E-mail",
		"Company", "Employee Size", "Revenue", "Job Role/Department",
	}
	require.NoError(t, f.SetSheetRow(name, "A1", &headers))

	for i := 0; i < n; i++ {
		row := []any{
			gofakeit.FirstName(),
			gofakeit.LastName(),
			gofakeit.JobTitle(),
			fmt.Sprintf("person%d@%s", i, gofakeit.DomainName()),
			gofakeit.Company(),
			fmt.Sprintf("%d", gofakeit.Number(1, 50000)),
			fmt.Sprintf("$%d M", gofakeit.Number(1, 500)),
			gofakeit.JobDescriptor(),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(name, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

// contactStore is a stand-in for the remote bulk endpoint. It accepts
// every row and remembers what it saw.
type contactStore struct {
	mu           sync.Mutex
	batchSizes   []int
	activityLogs []int
}

func (cs *contactStore) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Data                       []map[string]string `json:"data"`
			SkipActivityLog            bool                `json:"skipActivityLog"`
			CreateActivityLogWithTotal int                 `json:"createActivityLogWithTotal"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		cs.mu.Lock()
		defer cs.mu.Unlock()

		if len(req.Data) == 0 && req.CreateActivityLogWithTotal > 0 {
			cs.activityLogs = append(cs.activityLogs, req.CreateActivityLogWithTotal)
			w.WriteHeader(http.StatusOK)
			return
		}

		cs.batchSizes = append(cs.batchSizes, len(req.Data))
		emails := make([]string, 0, len(req.Data))
		for _, row := range req.Data {
			emails = append(emails, row["email"])
		}
		_ = json.NewEncoder(w).Encode(remote.BatchResult{
			Imported:         len(req.Data),
			CompaniesCreated: len(req.Data),
			ImportedEmails:   emails,
		})
	}
}

func TestFullImportFlow(t *testing.T) {
	const totalRows = 250
	const batchSize = 100

	store := &contactStore{}
	server := httptest.NewServer(store.handler())
	defer server.Close()

	// Decode the workbook the way the upload endpoint does.
	decoded, err := sheet.DecodeXLSX(buildWorkbook(t, totalRows))
	require.NoError(t, err)
	require.Len(t, decoded.Rows, totalRows)

	// The messy headers auto-map onto every mandatory field.
	build := mapping.Build(decoded.Headers)
	require.NoError(t, mapping.ValidateStructure(build.Mapping))
	require.NoError(t, mapping.ValidateRows(decoded, build.Mapping))

	// "Job Role/Department" matches the optional jobRole field, so it is
	// suggested rather than silently assigned.
	assert.Equal(t, field.JobRole, build.Suggested["Job Role/Department"])
	require.NoError(t, build.Mapping.Assign("Job Role/Department", field.JobRole))

	build.Mapping.Freeze()
	rows := projector.ProjectAll(decoded, build.Mapping)
	require.Len(t, rows, totalRows)

	// Revenue values were generated as "$N M" and must arrive compact.
	assert.NotContains(t, rows[0][field.Revenue], "$")
	assert.NotContains(t, rows[0][field.Revenue], " ")

	client := remote.NewClient(remote.Config{BaseURL: server.URL}, testLogger())
	svc := service.NewImportService(client, testLogger()).
		WithActivityLogger(client).
		WithBatchSize(batchSize)

	run := svc.NewRun()
	var progress []int
	run.OnProgress = func(p int) { progress = append(progress, p) }

	outcome, err := svc.Execute(context.Background(), run, rows)
	require.NoError(t, err)

	assert.Equal(t, totalRows, outcome.Imported)
	assert.Equal(t, []int{100, 100, 50}, store.batchSizes)

	// Progress was published before every batch and finished at 100.
	assert.Equal(t, []int{0, 30, 60, 100}, progress)

	state, _, _, _ := run.Snapshot()
	assert.Equal(t, service.StateCompleted, state)

	// Exactly one audit entry, carrying the final total.
	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.activityLogs) == 1
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, totalRows, store.activityLogs[0])

	summary := report.Summarize(state, outcome, len(store.batchSizes))
	assert.Equal(t,
		fmt.Sprintf("Successfully imported %d contact(s) and %d company/companies (processed in 3 batches)",
			totalRows, totalRows),
		summary.Message)
}

func TestFullImportFlow_ConflictAborts(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		calls++
		if calls == 1 {
			_ = json.NewEncoder(w).Encode(remote.BatchResult{Imported: 100})
			return
		}
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message":        "contacts already exist",
			"kind":           "duplicate",
			"existingEmails": []string{"dup@example.com"},
		})
	}))
	defer server.Close()

	decoded, err := sheet.DecodeXLSX(buildWorkbook(t, 300))
	require.NoError(t, err)

	build := mapping.Build(decoded.Headers)
	require.NoError(t, mapping.ValidateStructure(build.Mapping))
	build.Mapping.Freeze()

	client := remote.NewClient(remote.Config{BaseURL: server.URL}, testLogger())
	svc := service.NewImportService(client, testLogger()).WithBatchSize(100)

	run := svc.NewRun()
	outcome, err := svc.Execute(context.Background(), run, projector.ProjectAll(decoded, build.Mapping))

	var conflict *remote.ConflictError
	require.ErrorAs(t, err, &conflict)

	// The conflict in batch 2 kept batch 3 from being submitted.
	assert.Equal(t, 2, calls)
	assert.Equal(t, 100, outcome.Imported)
	assert.Equal(t, []string{"dup@example.com"}, outcome.ExistingEmails)

	state, progress, _, _ := run.Snapshot()
	assert.Equal(t, service.StateAborted, state)
	assert.Equal(t, 100, progress)

	summary := report.Summarize(state, outcome, 2)
	assert.Equal(t, "These contacts already exist in the database: dup@example.com", summary.Message)
}
