// internal/repository/activity_repository.go
package repository

import (
	"database/sql"
	"time"

	"github.com/serphawk/outreach-backend/internal/model"
)

type ActivityRepositoryInterface interface {
	// Duplicate guard
	HasPriorContact(companyName, email string) (bool, error)

	// Rate limiting
	CountSentSince(senderEmail string, since time.Time) (int, error)
	SentTimestampsSince(senderEmail string, since time.Time) ([]time.Time, error)

	// Activity feed
	ListRecent(limit int) ([]model.Activity, error)
	GetByID(id int) (*model.Activity, error)

	// Recording
	RecordSend(draft model.Draft, senderEmail string, sentAt time.Time) (*model.Activity, error)
}

type ActivityRepository struct {
	DB *sql.DB
}

// ====================== Duplicate Guard ======================

// HasPriorContact reports whether a successful send already exists for this
// company/contact pair. Company name matches exactly, email
// case-insensitively. Pair scope is a policy choice pending product
// confirmation; it is the strictest of the candidate scopes.
func (r *ActivityRepository) HasPriorContact(companyName, email string) (bool, error) {
	query := `
        SELECT EXISTS (
            SELECT 1 FROM email_logs
            WHERE company_name = $1
              AND LOWER(recipient_email) = LOWER($2)
              AND status = 'sent'
        )
    `
	var exists bool
	if err := r.DB.QueryRow(query, companyName, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ====================== Rate Limiting ======================

func (r *ActivityRepository) CountSentSince(senderEmail string, since time.Time) (int, error) {
	query := `
        SELECT COUNT(*) FROM email_logs
        WHERE sender_email = $1 AND sent_at > $2
    `
	var count int
	if err := r.DB.QueryRow(query, senderEmail, since).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// SentTimestampsSince returns the send times inside the trailing window,
// oldest first. Used to prime the in-process rate limiter on startup so a
// restart can't reset the hourly budget.
func (r *ActivityRepository) SentTimestampsSince(senderEmail string, since time.Time) ([]time.Time, error) {
	query := `
        SELECT sent_at FROM email_logs
        WHERE sender_email = $1 AND sent_at > $2
        ORDER BY sent_at ASC
    `
	rows, err := r.DB.Query(query, senderEmail, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	times := []time.Time{}
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		times = append(times, t)
	}
	return times, rows.Err()
}

// ====================== Activity Feed ======================

func (r *ActivityRepository) ListRecent(limit int) ([]model.Activity, error) {
	query := `
        SELECT id, company_id, company_name, website_url, recipient_email,
               sender_email, status, COALESCE(recommended_services, ''), sent_at
        FROM email_logs
        ORDER BY sent_at DESC
        LIMIT $1
    `
	rows, err := r.DB.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := []model.Activity{}
	for rows.Next() {
		var a model.Activity
		if err := rows.Scan(
			&a.ID, &a.CompanyID, &a.CompanyName, &a.WebsiteURL, &a.RecipientEmail,
			&a.SenderEmail, &a.Status, &a.RecommendedServices, &a.SentAt,
		); err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

func (r *ActivityRepository) GetByID(id int) (*model.Activity, error) {
	query := `
        SELECT id, company_id, company_name, website_url, recipient_email,
               sender_email, status, COALESCE(recommended_services, ''), sent_at
        FROM email_logs
        WHERE id = $1
    `
	var a model.Activity
	err := r.DB.QueryRow(query, id).Scan(
		&a.ID, &a.CompanyID, &a.CompanyName, &a.WebsiteURL, &a.RecipientEmail,
		&a.SenderEmail, &a.Status, &a.RecommendedServices, &a.SentAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// ====================== Recording ======================

// RecordSend appends the activity row for a successful transmission. The
// company upsert and the log insert run in one transaction: observers either
// see both or neither.
func (r *ActivityRepository) RecordSend(draft model.Draft, senderEmail string, sentAt time.Time) (*model.Activity, error) {
	tx, err := r.DB.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	upsert := `
        INSERT INTO companies (company_name, website_url, primary_email, email_sender,
                               email_sent_status, recommended_services, created_at)
        VALUES ($1, $2, $3, $4, TRUE, NULLIF($5, ''), $6)
        ON CONFLICT (website_url) DO UPDATE
        SET email_sent_status = TRUE,
            primary_email = EXCLUDED.primary_email,
            recommended_services = COALESCE(EXCLUDED.recommended_services, companies.recommended_services)
        RETURNING id
    `
	var companyID int
	if err := tx.QueryRow(upsert,
		draft.CompanyName, draft.WebsiteURL, draft.PrimaryEmail,
		senderEmail, draft.RecommendedServices, sentAt,
	).Scan(&companyID); err != nil {
		return nil, err
	}

	insert := `
        INSERT INTO email_logs (company_id, company_name, website_url, recipient_email,
                                sender_email, status, recommended_services, sent_at)
        VALUES ($1, $2, $3, $4, $5, 'sent', NULLIF($6, ''), $7)
        RETURNING id
    `
	activity := &model.Activity{
		CompanyID:           companyID,
		CompanyName:         draft.CompanyName,
		WebsiteURL:          draft.WebsiteURL,
		RecipientEmail:      draft.PrimaryEmail,
		SenderEmail:         senderEmail,
		Status:              model.ActivityStatusSent,
		RecommendedServices: draft.RecommendedServices,
		SentAt:              sentAt,
	}
	if err := tx.QueryRow(insert,
		companyID, draft.CompanyName, draft.WebsiteURL, draft.PrimaryEmail,
		senderEmail, draft.RecommendedServices, sentAt,
	).Scan(&activity.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return activity, nil
}

var _ ActivityRepositoryInterface = (*ActivityRepository)(nil)
