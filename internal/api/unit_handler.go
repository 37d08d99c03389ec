package api

import (
	"log/slog"
	"net/http"

	"github.com/371050/study-pwa/internal/api/shared"
	"github.com/371050/study-pwa/internal/platform/logger"
	"github.com/371050/study-pwa/internal/service"
	"github.com/371050/study-pwa/internal/service/ingest"
)

// UnitHandler handles units and the entry paths that create them.
type UnitHandler struct {
	ledger   service.LedgerService
	schedule service.ScheduleService
	entries  EntryService
	logger   *slog.Logger
}

// NewUnitHandler creates a new UnitHandler.
func NewUnitHandler(
	ledger service.LedgerService,
	schedule service.ScheduleService,
	entries EntryService,
	logger *slog.Logger,
) *UnitHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for UnitHandler")
	}
	return &UnitHandler{
		ledger:   ledger,
		schedule: schedule,
		entries:  entries,
		logger:   logger.With(slog.String("component", "unit_handler")),
	}
}

// ListUnits handles GET /subjects/{id}/units.
func (h *UnitHandler) ListUnits(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := handlePathID(w, r, "id", h.logger)
	if !ok {
		return
	}
	units, err := h.ledger.ListUnitsBySubject(r.Context(), subjectID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list units")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, UnitListResponse{SubjectID: subjectID, Units: units})
}

// CreateUnit handles POST /subjects/{id}/units. It is idempotent: an
// existing unit with the code is returned as is.
func (h *UnitHandler) CreateUnit(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := handlePathID(w, r, "id", h.logger)
	if !ok {
		return
	}
	var req CreateUnitRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	unitID, err := h.ledger.GetOrCreateUnit(r.Context(), subjectID, req.UnitCode)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create unit")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, UnitCreatedResponse{UnitID: unitID})
}

// ApplyEntries handles POST /subjects/{id}/entries.
func (h *UnitHandler) ApplyEntries(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := handlePathID(w, r, "id", h.logger)
	if !ok {
		return
	}
	var req ApplyEntriesRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.entries.Apply(r.Context(), subjectID, req.Text, req.Overwrite)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to apply entries")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("entries applied",
		slog.Int64("subject_id", subjectID),
		slog.Int("recorded", result.Recorded()),
		slog.Int("skipped", result.Skipped()))
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// RecordEntry handles POST /subjects/{id}/record.
func (h *UnitHandler) RecordEntry(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := handlePathID(w, r, "id", h.logger)
	if !ok {
		return
	}
	var req RecordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	review, err := h.entries.Record(r.Context(), ingest.RecordRequest{
		SubjectID: subjectID,
		UnitCode:  req.UnitCode,
		Title:     req.Title,
		ReviewNo:  req.ReviewNo,
		DoneDate:  req.DoneDate,
		Overwrite: req.Overwrite,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record review")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, review)
}

// UpdateTitle handles PUT /units/{id}/title.
func (h *UnitHandler) UpdateTitle(w http.ResponseWriter, r *http.Request) {
	unitID, ok := handlePathID(w, r, "id", h.logger)
	if !ok {
		return
	}
	var req UpdateTitleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.ledger.UpdateUnitTitle(r.Context(), unitID, req.Title); err != nil {
		HandleAPIError(w, r, err, "Failed to update title")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteUnit handles DELETE /units/{id}. Deleting a missing unit succeeds.
func (h *UnitHandler) DeleteUnit(w http.ResponseWriter, r *http.Request) {
	unitID, ok := handlePathID(w, r, "id", h.logger)
	if !ok {
		return
	}
	if err := h.ledger.DeleteUnit(r.Context(), unitID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete unit")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UnitStatus handles GET /units/{id}/status.
func (h *UnitHandler) UnitStatus(w http.ResponseWriter, r *http.Request) {
	unitID, ok := handlePathID(w, r, "id", h.logger)
	if !ok {
		return
	}
	status, err := h.schedule.UnitStatus(r.Context(), unitID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute unit status")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, status)
}
