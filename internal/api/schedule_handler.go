package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/371050/study-pwa/internal/api/shared"
	"github.com/371050/study-pwa/internal/domain/srs"
	"github.com/371050/study-pwa/internal/service"
)

// ScheduleHandler serves the due and upcoming lists.
type ScheduleHandler struct {
	schedule service.ScheduleService
	logger   *slog.Logger
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(schedule service.ScheduleService, logger *slog.Logger) *ScheduleHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ScheduleHandler")
	}
	return &ScheduleHandler{
		schedule: schedule,
		logger:   logger.With(slog.String("component", "schedule_handler")),
	}
}

// Due handles GET /schedule/due.
func (h *ScheduleHandler) Due(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.schedule.DueList, "Failed to compute due list")
}

// Upcoming handles GET /schedule/upcoming.
func (h *ScheduleHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.schedule.UpcomingList, "Failed to compute upcoming list")
}

func (h *ScheduleHandler) respond(
	w http.ResponseWriter,
	r *http.Request,
	list func(context.Context) ([]srs.Entry, error),
	failure string,
) {
	entries, err := list(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, failure)
		return
	}
	if entries == nil {
		entries = []srs.Entry{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ScheduleResponse{Today: h.schedule.Today(), Entries: entries})
}
