// internal/model/activity.go
package model

import "time"

// Activity statuses. Only successful sends are persisted today, but the
// column is a string so failed/bounced states can be added without a
// migration.
const (
	ActivityStatusSent = "sent"
)

// Activity is one durable log entry for a successfully sent outreach email.
// Rows are append-only; nothing in the service mutates or deletes them.
type Activity struct {
	ID                  int       `db:"id" json:"id"`
	CompanyID           int       `db:"company_id" json:"-"`
	CompanyName         string    `db:"company_name" json:"company_name"`
	WebsiteURL          string    `db:"website_url" json:"website_url"`
	RecipientEmail      string    `db:"recipient_email" json:"email"`
	SenderEmail         string    `db:"sender_email" json:"-"`
	Status              string    `db:"status" json:"status"`
	RecommendedServices string    `db:"recommended_services" json:"recommended_services,omitempty"`
	SentAt              time.Time `db:"sent_at" json:"sent_at"`
}
