package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	appErrors "github.com/serphawk/outreach-backend/internal/errors"
	"github.com/serphawk/outreach-backend/internal/mailer"
	"github.com/serphawk/outreach-backend/internal/model"
	"github.com/serphawk/outreach-backend/internal/queue"
)

// --- Mocks ---

// memoryActivityRepo is an in-memory ActivityRepository for dispatcher
// tests. Behaves like the SQL one: case-insensitive email match, exact
// company match, append-only records.
type memoryActivityRepo struct {
	mu         sync.Mutex
	activities []model.Activity
	nextID     int
}

func newMemoryActivityRepo() *memoryActivityRepo {
	return &memoryActivityRepo{nextID: 1}
}

func (r *memoryActivityRepo) HasPriorContact(companyName, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.activities {
		if a.CompanyName == companyName && strings.EqualFold(a.RecipientEmail, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryActivityRepo) CountSentSince(senderEmail string, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, a := range r.activities {
		if a.SenderEmail == senderEmail && a.SentAt.After(since) {
			count++
		}
	}
	return count, nil
}

func (r *memoryActivityRepo) SentTimestampsSince(senderEmail string, since time.Time) ([]time.Time, error) {
	return nil, nil
}

func (r *memoryActivityRepo) ListRecent(limit int) ([]model.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Activity, 0, limit)
	for i := len(r.activities) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.activities[i])
	}
	return out, nil
}

func (r *memoryActivityRepo) GetByID(id int) (*model.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.activities {
		if a.ID == id {
			copied := a
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memoryActivityRepo) RecordSend(draft model.Draft, senderEmail string, sentAt time.Time) (*model.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	activity := model.Activity{
		ID:                  r.nextID,
		CompanyName:         draft.CompanyName,
		WebsiteURL:          draft.WebsiteURL,
		RecipientEmail:      draft.PrimaryEmail,
		SenderEmail:         senderEmail,
		Status:              model.ActivityStatusSent,
		RecommendedServices: draft.RecommendedServices,
		SentAt:              sentAt,
	}
	r.nextID++
	r.activities = append(r.activities, activity)
	return &activity, nil
}

func (r *memoryActivityRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.activities)
}

// mockMailer records sends and can be told to fail.
type mockMailer struct {
	mu    sync.Mutex
	sent  []mailer.Message
	fail  error
	delay time.Duration
}

func (m *mockMailer) Send(ctx context.Context, msg mailer.Message) error {
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *mockMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func testDraft(company, email string) model.Draft {
	return model.Draft{
		CompanyName:         company,
		WebsiteURL:          "https://" + strings.ToLower(strings.ReplaceAll(company, " ", "")) + ".test",
		PrimaryEmail:        email,
		Subject:             "Imagine more leads",
		Body:                "<p>Hi " + company + " Team,</p>",
		RecommendedServices: "Organic SEO",
	}
}

func newTestDispatcher(limit int) (*Dispatcher, *memoryActivityRepo, *mockMailer) {
	repo := newMemoryActivityRepo()
	mail := &mockMailer{}
	d := &Dispatcher{
		Activities:  repo,
		Mailer:      mail,
		Limiter:     NewRateLimiter(limit, time.Hour),
		SenderEmail: "sales@serphawk.com",
	}
	return d, repo, mail
}

// --- Tests ---

func TestSendLeadRecordsActivity(t *testing.T) {
	d, repo, mail := newTestDispatcher(50)

	activity, err := d.SendLead(context.Background(), testDraft("Acme", "ops@acme.test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if activity.Status != model.ActivityStatusSent {
		t.Errorf("expected status sent, got %q", activity.Status)
	}
	if activity.CompanyName != "Acme" || activity.RecipientEmail != "ops@acme.test" {
		t.Errorf("activity fields wrong: %+v", activity)
	}
	if repo.count() != 1 {
		t.Errorf("expected 1 record, got %d", repo.count())
	}
	if mail.sentCount() != 1 {
		t.Errorf("expected 1 transmission, got %d", mail.sentCount())
	}
	if d.Limiter.InWindow() != 1 {
		t.Errorf("expected 1 send counted, got %d", d.Limiter.InWindow())
	}
}

func TestSendLeadMalformedEmail(t *testing.T) {
	d, repo, _ := newTestDispatcher(50)

	_, err := d.SendLead(context.Background(), testDraft("Acme", "not-an-email"))
	var ve *appErrors.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if repo.count() != 0 {
		t.Errorf("validation failure must not create records, got %d", repo.count())
	}
}

func TestSendLeadMissingFields(t *testing.T) {
	d, _, _ := newTestDispatcher(50)

	cases := []model.Draft{
		{WebsiteURL: "https://a.test", PrimaryEmail: "a@a.test", Subject: "s", Body: "b"},
		{CompanyName: "A", WebsiteURL: "https://a.test", PrimaryEmail: "a@a.test", Body: "b"},
		{CompanyName: "A", WebsiteURL: "https://a.test", PrimaryEmail: "a@a.test", Subject: "s"},
		{CompanyName: "A", PrimaryEmail: "a@a.test", Subject: "s", Body: "b"},
	}
	for i, draft := range cases {
		_, err := d.SendLead(context.Background(), draft)
		var ve *appErrors.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("case %d: expected ValidationError, got %v", i, err)
		}
	}
}

func TestSendLeadDuplicatePair(t *testing.T) {
	d, repo, _ := newTestDispatcher(50)

	if _, err := d.SendLead(context.Background(), testDraft("Acme", "ops@acme.test")); err != nil {
		t.Fatalf("first send failed: %v", err)
	}

	// Same pair, different email casing: still a duplicate.
	_, err := d.SendLead(context.Background(), testDraft("Acme", "OPS@Acme.Test"))
	var de *appErrors.DuplicateError
	if !errors.As(err, &de) {
		t.Fatalf("expected DuplicateError, got %v", err)
	}
	if repo.count() != 1 {
		t.Errorf("duplicate rejection must not add records, got %d", repo.count())
	}

	// Different company, same email: allowed under pair scoping.
	if _, err := d.SendLead(context.Background(), testDraft("Acme GmbH", "ops@acme.test")); err != nil {
		t.Errorf("pair-scoped guard should allow a different company: %v", err)
	}
}

func TestSendLeadRateLimit(t *testing.T) {
	d, repo, _ := newTestDispatcher(2)

	companies := []string{"Alpha", "Beta", "Gamma"}
	var lastErr error
	for i, company := range companies {
		_, err := d.SendLead(context.Background(), testDraft(company, "info@"+strings.ToLower(company)+".test"))
		if i < 2 && err != nil {
			t.Fatalf("send %d should succeed: %v", i+1, err)
		}
		lastErr = err
	}

	var re *appErrors.RateLimitError
	if !errors.As(lastErr, &re) {
		t.Fatalf("expected RateLimitError on third send, got %v", lastErr)
	}
	if re.Limit != 2 {
		t.Errorf("expected limit 2 in error, got %d", re.Limit)
	}
	if repo.count() != 2 {
		t.Errorf("expected exactly 2 records, got %d", repo.count())
	}
}

func TestSendLeadDuplicateBeatsRateLimit(t *testing.T) {
	d, _, _ := newTestDispatcher(1)

	if _, err := d.SendLead(context.Background(), testDraft("Acme", "ops@acme.test")); err != nil {
		t.Fatalf("first send failed: %v", err)
	}

	// Limit is now exhausted AND the pair is a duplicate. The duplicate
	// rejection must win.
	_, err := d.SendLead(context.Background(), testDraft("Acme", "ops@acme.test"))
	var de *appErrors.DuplicateError
	if !errors.As(err, &de) {
		t.Fatalf("expected DuplicateError to take precedence, got %v", err)
	}
}

func TestSendLeadDeliveryFailureLeavesNoTrace(t *testing.T) {
	d, repo, mail := newTestDispatcher(50)
	mail.fail = errors.New("connection refused")

	_, err := d.SendLead(context.Background(), testDraft("Acme", "ops@acme.test"))
	var le *appErrors.DeliveryError
	if !errors.As(err, &le) {
		t.Fatalf("expected DeliveryError, got %v", err)
	}
	if repo.count() != 0 {
		t.Errorf("failed delivery must not create records, got %d", repo.count())
	}
	if d.Limiter.InWindow() != 0 {
		t.Errorf("failed delivery must not consume rate budget, got %d", d.Limiter.InWindow())
	}

	// Operator resubmits after the outage: the same pair must go through.
	mail.fail = nil
	if _, err := d.SendLead(context.Background(), testDraft("Acme", "ops@acme.test")); err != nil {
		t.Fatalf("resubmit after failure should succeed: %v", err)
	}
}

func TestSendLeadConcurrentSamePair(t *testing.T) {
	d, repo, mail := newTestDispatcher(50)
	mail.delay = 10 * time.Millisecond // widen the race window

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = d.SendLead(context.Background(), testDraft("Acme", "ops@acme.test"))
		}(i)
	}
	wg.Wait()

	successes, duplicates := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case appErrors.IsDuplicate(err):
			duplicates++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Errorf("expected exactly one success, got %d", successes)
	}
	if duplicates != workers-1 {
		t.Errorf("expected %d duplicate rejections, got %d", workers-1, duplicates)
	}
	if repo.count() != 1 {
		t.Errorf("expected exactly one record, got %d", repo.count())
	}
}

func TestSendLeadPublishesActivityEvent(t *testing.T) {
	d, _, _ := newTestDispatcher(50)

	q := queue.NewInMemoryQueue()
	events := make(chan queue.ActivityEvent, 1)
	q.Subscribe(queue.TopicEmailActivities, func(payload any) error {
		events <- payload.(queue.ActivityEvent)
		return nil
	})
	d.Queue = q

	activity, err := d.SendLead(context.Background(), testDraft("Acme", "ops@acme.test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case event := <-events:
		if event.ActivityID != activity.ID {
			t.Errorf("expected event for activity %d, got %d", activity.ID, event.ActivityID)
		}
	case <-time.After(time.Second):
		t.Fatal("expected an activity event")
	}
}
