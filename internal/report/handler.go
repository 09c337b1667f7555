package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/zackfin/ledgerview/internal/ledger"
	"github.com/zackfin/ledgerview/internal/mapping"
)

const maxUploadBytes = 32 << 20

// Handler wires the reporting endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	warmup   func(snapshotID string)
}

// NewHandler builds a Handler. warmup is invoked after a successful upload
// to schedule report prebuilding; nil disables scheduling.
func NewHandler(logger *slog.Logger, service *Service, warmup func(snapshotID string)) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
		warmup:   warmup,
	}
}

// MountRoutes registers the HTTP routes for the reporting module.
func (h *Handler) MountRoutes(r chi.Router) {
	uploadLimit := httprate.Limit(6, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP))
	r.With(uploadLimit).Post("/snapshots", h.handleUpload)
	r.Get("/snapshots", h.handleList)
	r.Route("/snapshots/{id}", func(r chi.Router) {
		r.Get("/trial-balance", h.handleTrialBalance)
		r.Get("/trial-balance/export", h.handleTrialBalanceExport)
		r.Get("/income-statement", h.handleIncomeStatement)
		r.Get("/income-statement/export", h.handleIncomeStatementExport)
		r.Get("/balance-sheet", h.handleBalanceSheet)
		r.Get("/balance-sheet/export", h.handleBalanceSheetExport)
		r.Get("/dashboard", h.handleDashboard)
	})
}

type rangeQuery struct {
	From string `validate:"omitempty,datetime=2006-01"`
	To   string `validate:"omitempty,datetime=2006-01"`
}

type asOfQuery struct {
	AsOf string `validate:"omitempty,datetime=2006-01-02"`
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("parse upload: %w", err))
		return
	}
	gl, err := formFile(r, "gl")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	defer gl.Close()
	incomeMap, err := formFile(r, "income_map")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	defer incomeMap.Close()
	balanceMap, err := formFile(r, "balance_map")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	defer balanceMap.Close()

	in := IngestInput{
		Name:           r.FormValue("name"),
		GL:             gl,
		IncomeMapping:  incomeMap,
		BalanceMapping: balanceMap,
	}
	if opening, _, err := r.FormFile("opening"); err == nil {
		defer opening.Close()
		in.OpeningBalances = opening
	}
	if in.Name == "" {
		in.Name = "upload " + time.Now().UTC().Format("2006-01-02 15:04:05")
	}

	meta, diags, err := h.service.Ingest(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if h.warmup != nil {
		h.warmup(meta.ID.String())
	}
	h.writeJSON(w, http.StatusCreated, struct {
		Snapshot    SnapshotMeta   `json:"snapshot"`
		Diagnostics DiagnosticsDTO `json:"diagnostics"`
	}{meta, diags})
}

func formFile(r *http.Request, field string) (multipart.File, error) {
	f, _, err := r.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("file %q required", field)
	}
	return f, nil
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	metas, err := h.service.ListSnapshots(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if metas == nil {
		metas = []SnapshotMeta{}
	}
	h.writeJSON(w, http.StatusOK, metas)
}

func (h *Handler) snapshotID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, errors.New("invalid snapshot id"))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) periodRange(w http.ResponseWriter, r *http.Request) (*ledger.Period, *ledger.Period, bool) {
	q := rangeQuery{From: r.URL.Query().Get("from"), To: r.URL.Query().Get("to")}
	if err := h.validate.Struct(q); err != nil {
		h.writeError(w, http.StatusBadRequest, errors.New("from/to must be YYYY-MM"))
		return nil, nil, false
	}
	var from, to *ledger.Period
	if q.From != "" {
		p, _ := ledger.ParsePeriod(q.From)
		from = &p
	}
	if q.To != "" {
		p, _ := ledger.ParsePeriod(q.To)
		to = &p
	}
	if from != nil && to != nil && to.Before(*from) {
		h.writeError(w, http.StatusBadRequest, errors.New("from must not be after to"))
		return nil, nil, false
	}
	return from, to, true
}

func (h *Handler) asOf(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	q := asOfQuery{AsOf: r.URL.Query().Get("as_of")}
	if err := h.validate.Struct(q); err != nil {
		h.writeError(w, http.StatusBadRequest, errors.New("as_of must be YYYY-MM-DD"))
		return time.Time{}, false
	}
	if q.AsOf == "" {
		return time.Time{}, true
	}
	t, _ := time.Parse("2006-01-02", q.AsOf)
	return t, true
}

func (h *Handler) handleTrialBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := h.snapshotID(w, r)
	if !ok {
		return
	}
	from, to, ok := h.periodRange(w, r)
	if !ok {
		return
	}
	dto, err := h.service.TrialBalance(r.Context(), id, from, to)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, dto)
}

func (h *Handler) handleTrialBalanceExport(w http.ResponseWriter, r *http.Request) {
	id, ok := h.snapshotID(w, r)
	if !ok {
		return
	}
	from, to, ok := h.periodRange(w, r)
	if !ok {
		return
	}
	dto, err := h.service.TrialBalance(r.Context(), id, from, to)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeCSV(w, "rolling_trial_balance.csv", func(wr http.ResponseWriter) error {
		return WriteTrialBalanceCSV(wr, dto)
	})
}

func (h *Handler) handleIncomeStatement(w http.ResponseWriter, r *http.Request) {
	id, ok := h.snapshotID(w, r)
	if !ok {
		return
	}
	asOf, ok := h.asOf(w, r)
	if !ok {
		return
	}
	dto, err := h.service.IncomeStatement(r.Context(), id, asOf)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, dto)
}

func (h *Handler) handleIncomeStatementExport(w http.ResponseWriter, r *http.Request) {
	id, ok := h.snapshotID(w, r)
	if !ok {
		return
	}
	asOf, ok := h.asOf(w, r)
	if !ok {
		return
	}
	dto, err := h.service.IncomeStatement(r.Context(), id, asOf)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeCSV(w, "income_statement.csv", func(wr http.ResponseWriter) error {
		return WriteIncomeStatementCSV(wr, dto)
	})
}

func (h *Handler) handleBalanceSheet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.snapshotID(w, r)
	if !ok {
		return
	}
	asOf, ok := h.asOf(w, r)
	if !ok {
		return
	}
	dto, err := h.service.BalanceSheet(r.Context(), id, asOf)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, dto)
}

func (h *Handler) handleBalanceSheetExport(w http.ResponseWriter, r *http.Request) {
	id, ok := h.snapshotID(w, r)
	if !ok {
		return
	}
	asOf, ok := h.asOf(w, r)
	if !ok {
		return
	}
	dto, err := h.service.BalanceSheet(r.Context(), id, asOf)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeCSV(w, "balance_sheet.csv", func(wr http.ResponseWriter) error {
		return WriteBalanceSheetCSV(wr, dto)
	})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	id, ok := h.snapshotID(w, r)
	if !ok {
		return
	}
	dto, err := h.service.Dashboard(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, dto)
}

func (h *Handler) writeCSV(w http.ResponseWriter, filename string, write func(http.ResponseWriter) error) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := write(w); err != nil {
		h.logger.Error("write csv export", slog.Any("error", err))
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("encode response", slog.Any("error", err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeServiceError maps domain errors to HTTP statuses. Structural input
// problems are the client's to fix; everything else is a server fault.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var schemaErr *ledger.SchemaError
	var dupErr *ledger.DuplicateAccountError
	var tableErr *mapping.TableError
	switch {
	case errors.Is(err, ErrSnapshotNotFound):
		h.writeError(w, http.StatusNotFound, err)
	case errors.As(err, &schemaErr), errors.As(err, &dupErr), errors.As(err, &tableErr):
		h.writeError(w, http.StatusUnprocessableEntity, err)
	default:
		h.logger.Error("report request failed", slog.Any("error", err))
		h.writeError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}
