package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/371050/study-pwa/internal/api/shared"
	"github.com/371050/study-pwa/internal/platform/logger"
)

// MaxSnapshotBytes bounds the body of PUT /snapshot.
const MaxSnapshotBytes = 32 << 20

// SnapshotHandler exports, imports and resets the whole ledger.
type SnapshotHandler struct {
	snapshots SnapshotService
	logger    *slog.Logger
}

// NewSnapshotHandler creates a new SnapshotHandler.
func NewSnapshotHandler(snapshots SnapshotService, logger *slog.Logger) *SnapshotHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for SnapshotHandler")
	}
	return &SnapshotHandler{
		snapshots: snapshots,
		logger:    logger.With(slog.String("component", "snapshot_handler")),
	}
}

// Export handles GET /snapshot. The document is offered as a download
// named study-sync-YYYY-MM-DD.json.
func (h *SnapshotHandler) Export(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshots.Export(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to export snapshot")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.snapshots.ExportFileName()))
	w.WriteHeader(http.StatusOK)
	if err := snap.Encode(w); err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).Error("failed to write snapshot",
			slog.String("error", err.Error()))
	}
}

// Import handles PUT /snapshot, replacing the whole ledger.
func (h *SnapshotHandler) Import(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxSnapshotBytes))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusRequestEntityTooLarge, "Snapshot too large", err,
			shared.WithKind(shared.KindValidation))
		return
	}

	if err := h.snapshots.ImportOverwrite(r.Context(), raw); err != nil {
		HandleAPIError(w, r, err, "Failed to import snapshot")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Clear handles DELETE /snapshot. With ?reseed=true the default subjects
// are seeded again in the same transaction.
func (h *SnapshotHandler) Clear(w http.ResponseWriter, r *http.Request) {
	reseed := false
	if v := r.URL.Query().Get("reseed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid reseed: must be a boolean",
				shared.WithKind(shared.KindValidation))
			return
		}
		reseed = b
	}

	var err error
	if reseed {
		err = h.snapshots.Wipe(r.Context())
	} else {
		err = h.snapshots.ClearAll(r.Context())
	}
	if err != nil {
		HandleAPIError(w, r, err, "Failed to clear ledger")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
