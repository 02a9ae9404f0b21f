// internal/model/draft.go
package model

// Draft is a proposed outreach email awaiting operator approval.
// It is never persisted: the operator either sends it (which produces an
// Activity) or discards it.
type Draft struct {
	CompanyName         string `json:"company_name"`
	WebsiteURL          string `json:"website_url"`
	PrimaryEmail        string `json:"primary_email"`
	Subject             string `json:"subject"`
	Body                string `json:"body"` // HTML
	RecommendedServices string `json:"recommended_services,omitempty"`
}
