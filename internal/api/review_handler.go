package api

import (
	"log/slog"
	"net/http"

	"github.com/371050/study-pwa/internal/api/shared"
	"github.com/371050/study-pwa/internal/service"
)

// ReviewHandler handles a unit's review ledger.
type ReviewHandler struct {
	ledger service.LedgerService
	logger *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(ledger service.LedgerService, logger *slog.Logger) *ReviewHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ReviewHandler")
	}
	return &ReviewHandler{
		ledger: ledger,
		logger: logger.With(slog.String("component", "review_handler")),
	}
}

// ListReviews handles GET /units/{id}/reviews.
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	unitID, ok := handlePathID(w, r, "id", h.logger)
	if !ok {
		return
	}
	reviews, err := h.ledger.ListReviewsByUnit(r.Context(), unitID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list reviews")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ReviewListResponse{UnitID: unitID, Reviews: reviews})
}

// NextReviewNo handles GET /units/{id}/reviews/next.
func (h *ReviewHandler) NextReviewNo(w http.ResponseWriter, r *http.Request) {
	unitID, ok := handlePathID(w, r, "id", h.logger)
	if !ok {
		return
	}
	no, err := h.ledger.GetNextReviewNo(r.Context(), unitID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute next review number")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, NextReviewNoResponse{UnitID: unitID, ReviewNo: no})
}

// InsertReview handles POST /units/{id}/reviews. A taken number or date
// is a 409.
func (h *ReviewHandler) InsertReview(w http.ResponseWriter, r *http.Request) {
	unitID, ok := handlePathID(w, r, "id", h.logger)
	if !ok {
		return
	}
	var req InsertReviewRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	review, err := h.ledger.InsertReview(r.Context(), unitID, req.ReviewNo, req.DoneDate)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record review")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, review)
}

// RenumberReviews handles POST /units/{id}/reviews/renumber and responds
// with the renumbered list.
func (h *ReviewHandler) RenumberReviews(w http.ResponseWriter, r *http.Request) {
	unitID, ok := handlePathID(w, r, "id", h.logger)
	if !ok {
		return
	}
	if err := h.ledger.RenumberReviews(r.Context(), unitID); err != nil {
		HandleAPIError(w, r, err, "Failed to renumber reviews")
		return
	}
	h.ListReviews(w, r)
}

// UpdateReview handles PUT /reviews/{id}.
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := handlePathID(w, r, "id", h.logger)
	if !ok {
		return
	}
	var req UpdateReviewRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	err := h.ledger.UpdateReview(r.Context(), reviewID, req.UnitID, req.ReviewNo, req.DoneDate)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update review")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteReview handles DELETE /reviews/{id}. Deleting a missing review succeeds.
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := handlePathID(w, r, "id", h.logger)
	if !ok {
		return
	}
	if err := h.ledger.DeleteReview(r.Context(), reviewID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete review")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
