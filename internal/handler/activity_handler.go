// internal/handler/activity_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/serphawk/outreach-backend/internal/repository"
)

const defaultActivityLimit = 10

// ActivityHandler serves the read side: the recent activity feed the UI
// polls, and the health endpoint.
type ActivityHandler struct {
	Repo        repository.ActivityRepositoryInterface
	SenderEmail string
}

func NewActivityHandler(repo repository.ActivityRepositoryInterface, senderEmail string) *ActivityHandler {
	return &ActivityHandler{Repo: repo, SenderEmail: senderEmail}
}

// GetActivitiesHandler handles GET /activities?limit=N, most recent first.
func (h *ActivityHandler) GetActivitiesHandler(w http.ResponseWriter, r *http.Request) {
	limit := defaultActivityLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 100 {
		limit = 100
	}

	activities, err := h.Repo.ListRecent(limit)
	if err != nil {
		http.Error(w, "failed to fetch activities: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"activities": activities,
	})
}

// HealthHandler handles GET /health. Reports the send count in the
// trailing hour so operators can see remaining outreach budget at a glance.
func (h *ActivityHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	sentLastHour, err := h.Repo.CountSentSince(h.SenderEmail, time.Now().Add(-time.Hour))
	if err != nil {
		http.Error(w, "failed to count recent sends: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":                "healthy",
		"timestamp":             time.Now().UTC().Format(time.RFC3339),
		"service":               "outreach-backend",
		"emails_sent_last_hour": sentLastHour,
	})
}
