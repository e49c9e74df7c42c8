package handlers

import (
	stderrors "errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/services"
)

const maxPreviewRows = 100

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

func (h *APIHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	defaults, err := h.analytics.DefaultSelection(r.Context())
	if err != nil {
		errors.WriteError(w, r, h.logger, errors.DatasetUnavailable(err))
		return
	}

	sel, err := selectionFromQuery(r.URL.Query(), defaults)
	if err != nil {
		errors.WriteError(w, r, h.logger, errors.BadRequestWrap(err, err.Error()))
		return
	}

	dash, err := h.analytics.Run(r.Context(), sel)
	if err != nil {
		errors.WriteError(w, r, h.logger, pipelineError(err))
		return
	}

	errors.WriteSuccess(w, dash)
}

func (h *APIHandlers) HandleOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.analytics.Options(r.Context())
	if err != nil {
		errors.WriteError(w, r, h.logger, errors.DatasetUnavailable(err))
		return
	}

	headers := map[string]string{
		"Cache-Control": "public, max-age=300",
	}

	errors.WriteSuccessWithHeaders(w, opts, headers)
}

func (h *APIHandlers) HandlePreview(w http.ResponseWriter, r *http.Request) {
	rows := 0
	if raw := r.URL.Query().Get("rows"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPreviewRows {
			errors.WriteError(w, r, h.logger, errors.Validation("rows must be an integer between 1 and 100"))
			return
		}
		rows = n
	}

	preview, err := h.analytics.Preview(r.Context(), rows)
	if err != nil {
		errors.WriteError(w, r, h.logger, errors.DatasetUnavailable(err))
		return
	}

	errors.WriteSuccess(w, preview)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {

	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {

	stats := h.analytics.Stats()

	errors.WriteSuccess(w, stats)
}

// HandleReload clears the dataset cache and re-reads the source file.
func (h *APIHandlers) HandleReload(w http.ResponseWriter, r *http.Request) {
	if err := h.analytics.Reload(r.Context()); err != nil {
		errors.WriteError(w, r, h.logger, errors.DatasetUnavailable(err))
		return
	}

	h.logger.InfoContext(r.Context(), "dataset cache cleared")
	errors.WriteSuccess(w, h.analytics.Stats())
}

func pipelineError(err error) *errors.AppError {
	switch {
	case stderrors.Is(err, services.ErrInvalidDateRange):
		return errors.ValidationWrap(err)
	case stderrors.Is(err, services.ErrNoData):
		return errors.NoDataWrap(err)
	default:
		return errors.DatasetUnavailable(err)
	}
}
