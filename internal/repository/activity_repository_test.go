package repository

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/serphawk/outreach-backend/internal/model"
)

func TestHasPriorContact(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := &ActivityRepository{DB: db}

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("Acme", "OPS@Acme.Test").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	got, err := repo.HasPriorContact("Acme", "OPS@Acme.Test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got {
		t.Error("expected prior contact")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCountSentSince(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := &ActivityRepository{DB: db}

	since := time.Date(2026, 8, 1, 11, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM email_logs`).
		WithArgs("sales@serphawk.com", since).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountSentSince("sales@serphawk.com", since)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 7 {
		t.Errorf("expected 7, got %d", count)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestListRecentOrdersAndScans(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := &ActivityRepository{DB: db}

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "company_id", "company_name", "website_url", "recipient_email",
		"sender_email", "status", "recommended_services", "sent_at",
	}).
		AddRow(2, 1, "Beta", "https://beta.test", "hi@beta.test", "sales@serphawk.com", "sent", "Local SEO", now).
		AddRow(1, 1, "Acme", "https://acme.test", "ops@acme.test", "sales@serphawk.com", "sent", "", now.Add(-time.Minute))

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY sent_at DESC`)).
		WithArgs(10).
		WillReturnRows(rows)

	activities, err := repo.ListRecent(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(activities) != 2 {
		t.Fatalf("expected 2 activities, got %d", len(activities))
	}
	if activities[0].CompanyName != "Beta" || activities[1].CompanyName != "Acme" {
		t.Errorf("expected most-recent-first ordering, got %+v", activities)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRecordSendIsTransactional(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := &ActivityRepository{DB: db}

	draft := model.Draft{
		CompanyName:         "Acme",
		WebsiteURL:          "https://acme.test",
		PrimaryEmail:        "ops@acme.test",
		Subject:             "Imagine",
		Body:                "<p>Hi</p>",
		RecommendedServices: "Organic SEO",
	}
	sentAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO companies`).
		WithArgs("Acme", "https://acme.test", "ops@acme.test", "sales@serphawk.com", "Organic SEO", sentAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectQuery(`INSERT INTO email_logs`).
		WithArgs(42, "Acme", "https://acme.test", "ops@acme.test", "sales@serphawk.com", "Organic SEO", sentAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit()

	activity, err := repo.RecordSend(draft, "sales@serphawk.com", sentAt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if activity.ID != 7 || activity.CompanyID != 42 {
		t.Errorf("unexpected ids: %+v", activity)
	}
	if activity.Status != model.ActivityStatusSent {
		t.Errorf("expected sent status, got %q", activity.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRecordSendRollsBackOnLogFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := &ActivityRepository{DB: db}

	draft := model.Draft{
		CompanyName:  "Acme",
		WebsiteURL:   "https://acme.test",
		PrimaryEmail: "ops@acme.test",
	}
	sentAt := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO companies`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectQuery(`INSERT INTO email_logs`).
		WillReturnError(sqlmock.ErrCancelled)
	mock.ExpectRollback()

	if _, err := repo.RecordSend(draft, "sales@serphawk.com", sentAt); err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
