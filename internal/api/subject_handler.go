package api

import (
	"log/slog"
	"net/http"

	"github.com/371050/study-pwa/internal/api/shared"
	"github.com/371050/study-pwa/internal/platform/logger"
	"github.com/371050/study-pwa/internal/service"
)

// SubjectHandler handles subject listing, creation and ordering.
type SubjectHandler struct {
	subjects  service.SubjectService
	snapshots SnapshotService
	logger    *slog.Logger
}

// NewSubjectHandler creates a new SubjectHandler.
func NewSubjectHandler(subjects service.SubjectService, snapshots SnapshotService, logger *slog.Logger) *SubjectHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for SubjectHandler")
	}
	return &SubjectHandler{
		subjects:  subjects,
		snapshots: snapshots,
		logger:    logger.With(slog.String("component", "subject_handler")),
	}
}

// ListSubjects handles GET /subjects.
func (h *SubjectHandler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	list, err := h.subjects.ListSubjects(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list subjects")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, list)
}

// AddSubject handles POST /subjects.
func (h *SubjectHandler) AddSubject(w http.ResponseWriter, r *http.Request) {
	var req AddSubjectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	subject, err := h.subjects.AddSubject(r.Context(), req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to add subject")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("subject added",
		slog.Int64("subject_id", subject.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, subject)
}

// MoveSubject handles POST /subjects/{id}/move and responds with the
// reordered list.
func (h *SubjectHandler) MoveSubject(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id", h.logger)
	if !ok {
		return
	}
	var req MoveSubjectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.subjects.MoveSubject(r.Context(), id, req.Direction); err != nil {
		HandleAPIError(w, r, err, "Failed to move subject")
		return
	}
	h.ListSubjects(w, r)
}

// SeedSubjects handles POST /subjects/seed.
func (h *SubjectHandler) SeedSubjects(w http.ResponseWriter, r *http.Request) {
	n, err := h.snapshots.SeedDefaultSubjects(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to seed subjects")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, SeedResponse{Seeded: n})
}
