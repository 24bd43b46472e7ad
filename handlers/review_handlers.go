package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/camden-git/vimlbackend/database"
	"github.com/camden-git/vimlbackend/services"
)

type ReviewHandler struct {
	DB      *sql.DB
	Service *services.ReviewService
}

type metadataUpdateRequest struct {
	ReviewStatus string  `json:"review_status"`
	Details      *string `json:"details"`
	Title        *string `json:"title"`
	Organization *string `json:"organization"`
	Role         *string `json:"role"`
}

// UpdateMetadata is the human review endpoint: it sets the occurrence's
// review status and optionally corrects the person's name (which can trigger
// a merge), title, organization or role. The response reports the person id
// the occurrence belongs to after the edit.
func (rh *ReviewHandler) UpdateMetadata(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "occurrence_id")
	occurrenceID, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid occurrence ID format"})
		return
	}

	var req metadataUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}

	personID, err := rh.Service.ApplyEdit(uint(occurrenceID), services.ReviewEdit{
		ReviewStatus: req.ReviewStatus,
		Details:      req.Details,
		Title:        req.Title,
		Organization: req.Organization,
		Role:         req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidReviewStatus):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid status"})
		case errors.Is(err, gorm.ErrRecordNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Occurrence not found"})
		default:
			log.Printf("Error applying review edit to occurrence %d: %v", occurrenceID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to apply review edit"})
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "updated",
		"occurrence_id":  occurrenceID,
		"person_updated": personID,
	})
}

// GetReviewQueue lists occurrences awaiting review, filtered by job and/or
// status. With grouped=true the flat rows fold into the person-centric
// hosts/guests view.
func (rh *ReviewHandler) GetReviewQueue(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := database.ReviewQueueFilter{
		JobID:  query.Get("job_id"),
		Status: query.Get("status"),
		Limit:  50,
	}
	if filter.Status == "" {
		filter.Status = "pending"
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if parsed, err := strconv.ParseUint(limitStr, 10, 64); err == nil && parsed > 0 {
			filter.Limit = parsed
		}
	}

	rows, err := database.ListReviewQueue(rh.DB, filter)
	if err != nil {
		log.Printf("Error listing review queue: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve review queue"})
		return
	}

	if query.Get("grouped") == "true" {
		writeJSON(w, http.StatusOK, services.GroupQueue(rows))
		return
	}

	if rows == nil {
		rows = []database.ReviewQueueRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}
