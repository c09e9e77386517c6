// Package handler exposes the import pipeline over HTTP for the admin UI:
// upload, mapping review, preview, start, progress polling, and the
// row-error report.
package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/FACorreiaa/contact-importer/internal/domain/importer/field"
	"github.com/FACorreiaa/contact-importer/internal/domain/importer/mapping"
	"github.com/FACorreiaa/contact-importer/internal/domain/importer/projector"
	"github.com/FACorreiaa/contact-importer/internal/domain/importer/report"
	"github.com/FACorreiaa/contact-importer/internal/domain/importer/service"
	"github.com/FACorreiaa/contact-importer/internal/domain/importer/session"
	"github.com/FACorreiaa/contact-importer/internal/domain/importer/sheet"
)

// maxUploadBytes caps the spreadsheet upload size.
const maxUploadBytes = 32 << 20

const (
	defaultPreviewLimit = 10
	maxPreviewLimit     = 100
)

// Handler wires the session store and the import service to the router.
type Handler struct {
	sessions  *session.Store
	importer  *service.ImportService
	batchSize int
	logger    *slog.Logger
}

func NewHandler(sessions *session.Store, importer *service.ImportService, batchSize int, logger *slog.Logger) *Handler {
	if batchSize <= 0 {
		batchSize = service.DefaultBatchSize
	}
	return &Handler{
		sessions:  sessions,
		importer:  importer,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Register mounts the import endpoints on the router.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/v1/imports", h.Upload).Methods(http.MethodPost)
	r.HandleFunc("/v1/imports/{id}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/v1/imports/{id}", h.Delete).Methods(http.MethodDelete)
	r.HandleFunc("/v1/imports/{id}/mapping", h.PutMapping).Methods(http.MethodPut)
	r.HandleFunc("/v1/imports/{id}/preview", h.Preview).Methods(http.MethodGet)
	r.HandleFunc("/v1/imports/{id}/start", h.Start).Methods(http.MethodPost)
	r.HandleFunc("/v1/imports/{id}/errors.csv", h.ErrorsCSV).Methods(http.MethodGet)
}

type sessionResponse struct {
	ID          string                        `json:"id"`
	FileName    string                        `json:"fileName"`
	Headers     []string                      `json:"headers"`
	RowCount    int                           `json:"rowCount"`
	Assignments map[string]string             `json:"assignments"`
	Suggested   map[string]string             `json:"suggested,omitempty"`
	Unmatched   map[string][]field.Suggestion `json:"unmatched,omitempty"`
	State       service.State                 `json:"state"`
	Progress    int                           `json:"progress"`
	Summary     *report.Summary               `json:"summary,omitempty"`
}

func (h *Handler) sessionResponse(sess *session.Session) sessionResponse {
	assignments := sess.Mapping().Assignments()
	resp := sessionResponse{
		ID:          sess.ID.String(),
		FileName:    sess.FileName,
		Headers:     sess.Sheet.Headers,
		RowCount:    len(sess.Sheet.Rows),
		Assignments: make(map[string]string, len(assignments)),
		State:       service.StateIdle,
	}
	for header, f := range assignments {
		resp.Assignments[header] = string(f)
	}
	if len(sess.Suggested) > 0 {
		resp.Suggested = make(map[string]string, len(sess.Suggested))
		for header, f := range sess.Suggested {
			resp.Suggested[header] = string(f)
		}
	}
	if len(sess.Unmatched) > 0 {
		resp.Unmatched = sess.Unmatched
	}

	if run := sess.Run(); run != nil {
		state, progress, outcome, _ := run.Snapshot()
		resp.State = state
		resp.Progress = progress
		if state == service.StateCompleted || state == service.StateAborted {
			summary := report.Summarize(state, outcome, h.batches(len(sess.Sheet.Rows)))
			resp.Summary = &summary
		}
	}
	return resp
}

func (h *Handler) batches(rows int) int {
	if rows == 0 {
		return 0
	}
	return (rows + h.batchSize - 1) / h.batchSize
}

// Upload accepts a multipart spreadsheet, decodes it, and opens an import
// session with the automatic column mapping applied.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "IMPORT_INVALID_UPLOAD", "invalid multipart body")
		return
	}
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "IMPORT_INVALID_UPLOAD", "missing file part")
		return
	}
	defer file.Close()

	var decoded *sheet.Sheet
	switch ext := strings.ToLower(filepath.Ext(fileHeader.Filename)); ext {
	case ".csv":
		decoded, err = sheet.DecodeCSV(file)
	case ".xlsx", ".xlsm":
		decoded, err = sheet.DecodeXLSX(file)
	default:
		writeError(w, http.StatusUnsupportedMediaType, "IMPORT_UNSUPPORTED_FORMAT",
			fmt.Sprintf("unsupported file type %q, expected .csv or .xlsx", ext))
		return
	}
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "IMPORT_UNDECODABLE", err.Error())
		return
	}

	sess := h.sessions.Create(fileHeader.Filename, decoded, mapping.Build(decoded.Headers))
	h.logger.Info("import session opened",
		slog.String("session_id", sess.ID.String()),
		slog.String("file", sess.FileName),
		slog.Int("rows", len(decoded.Rows)))

	writeJSON(w, http.StatusCreated, h.sessionResponse(sess))
}

// Get returns the session state, including progress and the outcome
// summary once the run finishes. The UI polls this during the import.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.sessionResponse(sess))
}

type putMappingRequest struct {
	// Assignments maps sheet headers to canonical field names; an empty
	// value skips the column.
	Assignments map[string]string `json:"assignments"`
}

// PutMapping replaces the header assignments wholesale. Rejected once the
// import has started; the mapping is frozen for the life of the run.
func (h *Handler) PutMapping(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req putMappingRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "IMPORT_INVALID_BODY", "invalid json body")
		return
	}

	known := make(map[string]bool, len(sess.Sheet.Headers))
	for _, header := range sess.Sheet.Headers {
		known[header] = true
	}

	next := mapping.New()
	for header, name := range req.Assignments {
		if !known[header] {
			writeError(w, http.StatusUnprocessableEntity, "IMPORT_UNKNOWN_HEADER",
				fmt.Sprintf("header %q is not in the uploaded sheet", header))
			return
		}
		if name == "" || name == string(field.Skip) {
			continue
		}
		if err := next.Assign(header, field.CanonicalField(name)); err != nil {
			writeError(w, http.StatusUnprocessableEntity, "IMPORT_UNKNOWN_FIELD", err.Error())
			return
		}
	}

	if err := sess.ReplaceMapping(next); err != nil {
		writeError(w, http.StatusConflict, "IMPORT_MAPPING_FROZEN", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.sessionResponse(sess))
}

type previewResponse struct {
	Offset int                      `json:"offset"`
	Limit  int                      `json:"limit"`
	Total  int                      `json:"total"`
	Rows   []projector.ProjectedRow `json:"rows"`
}

// Preview returns a window of rows as they will be submitted, cleaning
// rules applied, so the user can sanity-check the mapping before starting.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", defaultPreviewLimit)
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultPreviewLimit
	}
	if limit > maxPreviewLimit {
		limit = maxPreviewLimit
	}

	total := len(sess.Sheet.Rows)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	m := sess.Mapping()
	rows := make([]projector.ProjectedRow, 0, end-offset)
	for i := offset; i < end; i++ {
		rows = append(rows, projector.Project(sess.Sheet.Rows[i], m))
	}

	writeJSON(w, http.StatusOK, previewResponse{
		Offset: offset,
		Limit:  limit,
		Total:  total,
		Rows:   rows,
	})
}

type startResponse struct {
	ID      string `json:"id"`
	RunID   string `json:"runId"`
	Batches int    `json:"batches"`
}

// Start validates the mapping and every row, freezes the mapping, and
// launches the chunked import in the background. Progress is observed
// through Get.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	m := sess.Mapping()
	if err := mapping.ValidateStructure(m); err != nil {
		writeValidationError(w, err)
		return
	}
	if err := mapping.ValidateRows(sess.Sheet, m); err != nil {
		writeValidationError(w, err)
		return
	}

	rows := projector.ProjectAll(sess.Sheet, m)
	run := h.importer.NewRun()
	if err := sess.TryStart(run); err != nil {
		writeError(w, http.StatusConflict, "IMPORT_ALREADY_STARTED", err.Error())
		return
	}

	go func() {
		// The run outlives the HTTP request; progress and outcome are read
		// back through the session.
		if _, err := h.importer.Execute(context.Background(), run, rows); err != nil {
			h.logger.Warn("import run finished with error",
				slog.String("session_id", sess.ID.String()),
				slog.String("run_id", run.ID.String()),
				slog.Any("error", err))
		}
	}()

	writeJSON(w, http.StatusAccepted, startResponse{
		ID:      sess.ID.String(),
		RunID:   run.ID.String(),
		Batches: h.batches(len(rows)),
	})
}

// ErrorsCSV streams the full row-error report for a finished run. The
// polled summary truncates long lists; this download never does.
func (h *Handler) ErrorsCSV(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	run := sess.Run()
	if run == nil {
		writeError(w, http.StatusNotFound, "IMPORT_NOT_STARTED", "import has not run yet")
		return
	}

	_, _, outcome, _ := run.Snapshot()
	body, err := report.ErrorsCSV(outcome)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "IMPORT_REPORT_FAILED", err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="import-errors.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// Delete discards the session. A running import keeps its session until
// it finishes.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if run := sess.Run(); run != nil {
		if state, _, _, _ := run.Snapshot(); state == service.StateRunning {
			writeError(w, http.StatusConflict, "IMPORT_ALREADY_RUNNING", "cannot discard a running import")
			return
		}
	}

	h.sessions.Delete(sess.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "IMPORT_INVALID_ID", "invalid session id")
		return nil, false
	}
	sess, err := h.sessions.Get(id)
	if err != nil {
		writeSessionError(w, err)
		return nil, false
	}
	return sess, true
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
