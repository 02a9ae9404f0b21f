// internal/controller/outreach_controller.go
package controller

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	appErrors "github.com/serphawk/outreach-backend/internal/errors"
	"github.com/serphawk/outreach-backend/internal/model"
	"github.com/serphawk/outreach-backend/internal/service"
)

type OutreachController struct {
	OutreachService *service.OutreachService
	Dispatcher      *service.Dispatcher
}

// statusFor maps pipeline failure kinds to HTTP statuses.
func statusFor(err error) int {
	var (
		ve *appErrors.ValidationError
		de *appErrors.DuplicateError
		re *appErrors.RateLimitError
		ae *appErrors.AnalysisError
		ce *appErrors.CompositionError
		le *appErrors.DeliveryError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &de):
		return http.StatusConflict
	case errors.As(err, &re):
		return http.StatusTooManyRequests
	case errors.As(err, &ae), errors.As(err, &ce), errors.As(err, &le):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeFailure(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]any{
		"success": false,
		"error":   err.Error(),
	})
}

// DraftLead handles POST /draft-lead: analyze the prospect website and
// return a draft for operator review. Never touches the activity store.
func (c *OutreachController) DraftLead(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CompanyName  string `json:"company_name"`
		WebsiteURL   string `json:"website_url"`
		PrimaryEmail string `json:"primary_email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeFailure(w, appErrors.NewValidation("invalid request body"))
		return
	}

	draft, err := c.OutreachService.DraftLead(r.Context(), body.CompanyName, body.WebsiteURL, body.PrimaryEmail)
	if err != nil {
		log.Println("⚠️ draft failed:", err)
		writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"draft":   draft,
	})
}

// SendLead handles POST /send-lead: run the approved draft through the
// dispatcher gates and transmit it.
func (c *OutreachController) SendLead(w http.ResponseWriter, r *http.Request) {
	var draft model.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeFailure(w, appErrors.NewValidation("invalid request body"))
		return
	}

	activity, err := c.Dispatcher.SendLead(r.Context(), draft)
	if err != nil {
		log.Println("⚠️ send failed:", err)
		writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"activity": activity,
	})
}
