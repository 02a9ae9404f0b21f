// internal/model/company.go
package model

import "time"

// Company is a prospect we have reached out to. One row per website; the
// unique website_url lets repeat sends upsert instead of duplicating.
type Company struct {
	ID                  int       `db:"id" json:"id"`
	CompanyName         string    `db:"company_name" json:"company_name"`
	WebsiteURL          string    `db:"website_url" json:"website_url"`
	PrimaryEmail        string    `db:"primary_email" json:"primary_email"`
	EmailSender         string    `db:"email_sender" json:"email_sender"`
	EmailSentStatus     bool      `db:"email_sent_status" json:"email_sent_status"`
	RecommendedServices string    `db:"recommended_services" json:"recommended_services,omitempty"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}
