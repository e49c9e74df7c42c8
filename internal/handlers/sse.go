package handlers

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/ui/templates"
)

const loadFailedMessage = "Dashboard data is unavailable"

type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

// HandleDashboard is the re-run loop: the page calls it with the current
// filter signals whenever an input changes. A halted pass patches only the
// warning and clears metrics and charts.
func (h *SSEHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	var signals dashboardSignals
	signalsErr := datastar.ReadSignals(r, &signals)

	sse := datastar.NewSSE(w, r)

	if signalsErr != nil {
		h.logger.WarnContext(r.Context(), "read signals", "error", signalsErr)
		h.patchHalt(r, sse, services.ErrInvalidDateRange.Error())
		return
	}

	dash, err := h.analytics.Run(r.Context(), signals.selection())
	switch {
	case err == nil:
	case stderrors.Is(err, services.ErrInvalidDateRange), stderrors.Is(err, services.ErrNoData):
		h.patchHalt(r, sse, err.Error())
		return
	default:
		h.logger.ErrorContext(r.Context(), "dashboard pass failed", "error", err)
		h.patchHalt(r, sse, loadFailedMessage)
		return
	}

	if err := h.patchComponent(r, sse, templates.Warning("")); err != nil {
		return
	}
	if err := h.patchComponent(r, sse, templates.Metrics(dash.Metrics)); err != nil {
		return
	}
	h.patchCharts(sse, dash.Charts)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) patchHalt(r *http.Request, sse *datastar.ServerSentEventGenerator, message string) {
	if err := h.patchComponent(r, sse, templates.Warning(message)); err != nil {
		return
	}
	if err := h.patchComponent(r, sse, templates.Metrics(nil)); err != nil {
		return
	}
	h.patchCharts(sse, []models.ChartSpec{})
}

func (h *SSEHandlers) patchComponent(r *http.Request, sse *datastar.ServerSentEventGenerator, c templ.Component) error {
	var buf strings.Builder
	if err := c.Render(r.Context(), &buf); err != nil {
		h.logger.Error("render component", "error", err)
		return err
	}
	if err := sse.PatchElements(buf.String()); err != nil {
		h.logger.Error("patch elements", "error", err)
		return err
	}
	return nil
}

func (h *SSEHandlers) patchCharts(sse *datastar.ServerSentEventGenerator, charts []models.ChartSpec) {
	jsonData, err := json.Marshal(map[string]any{
		templates.ChartsSignal: charts,
	})
	if err != nil {
		h.logger.Error("marshal chart signals", "error", err)
		return
	}
	if err := sse.PatchSignals(jsonData); err != nil {
		h.logger.Error("patch signals", "error", err)
	}
}
