// internal/service/dispatcher.go
package service

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	appErrors "github.com/serphawk/outreach-backend/internal/errors"
	"github.com/serphawk/outreach-backend/internal/mailer"
	"github.com/serphawk/outreach-backend/internal/model"
	"github.com/serphawk/outreach-backend/internal/queue"
	"github.com/serphawk/outreach-backend/internal/repository"
)

const transmitTimeout = 60 * time.Second

// Dispatcher runs the send side of the pipeline:
//
//	RECEIVED -> DUPLICATE_CHECK -> RATE_CHECK -> TRANSMITTING -> RECORDED
//
// The mutex covers duplicate check through recording. Two concurrent sends
// for the same company/contact pair would otherwise both pass the duplicate
// check before either records its activity; serializing the whole critical
// section closes that race. Outreach throughput is tens of sends an hour,
// so one global lock costs nothing.
type Dispatcher struct {
	Activities  repository.ActivityRepositoryInterface
	Mailer      mailer.Sender
	Limiter     *RateLimiter
	Queue       queue.Queue // optional; events for downstream consumers
	SenderEmail string

	mu sync.Mutex
}

// validateDraft is the RECEIVED stage: reject malformed shapes before any
// gate or side effect.
func validateDraft(draft *model.Draft) error {
	if strings.TrimSpace(draft.CompanyName) == "" {
		return appErrors.NewValidation("company_name is required")
	}
	if !validEmail(draft.PrimaryEmail) {
		return appErrors.NewValidation("primary_email is not a valid email address")
	}
	if strings.TrimSpace(draft.Subject) == "" {
		return appErrors.NewValidation("subject is required")
	}
	if strings.TrimSpace(draft.Body) == "" {
		return appErrors.NewValidation("body is required")
	}
	normalized, err := normalizeURL(draft.WebsiteURL)
	if err != nil {
		return err
	}
	draft.WebsiteURL = normalized
	return nil
}

// SendLead transmits an approved draft and records the outcome. Exactly one
// attempt; a failed transmission leaves no record and consumes no rate
// budget, and the operator must resubmit.
func (d *Dispatcher) SendLead(ctx context.Context, draft model.Draft) (*model.Activity, error) {
	if err := validateDraft(&draft); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	// Duplicate rejection must never be masked by a rate-limit rejection
	// for the same request, so this check comes first.
	prior, err := d.Activities.HasPriorContact(draft.CompanyName, draft.PrimaryEmail)
	if err != nil {
		return nil, err
	}
	if prior {
		return nil, appErrors.NewDuplicate(draft.CompanyName, draft.PrimaryEmail)
	}

	if !d.Limiter.Allow() {
		return nil, appErrors.NewRateLimit(d.Limiter.Limit())
	}

	sendCtx, cancel := context.WithTimeout(ctx, transmitTimeout)
	err = d.Mailer.Send(sendCtx, mailer.Message{
		From:     d.SenderEmail,
		To:       draft.PrimaryEmail,
		Subject:  draft.Subject,
		HTMLBody: draft.Body,
	})
	cancel()
	if err != nil {
		return nil, appErrors.NewDelivery("smtp transmission failed", err)
	}

	activity, err := d.Activities.RecordSend(draft, d.SenderEmail, time.Now().UTC())
	if err != nil {
		// The email left the building but the record write failed. Surface
		// loudly: the duplicate guard will not know about this send.
		log.Println("❌ sent but failed to record activity for", draft.PrimaryEmail, ":", err)
		return nil, err
	}
	d.Limiter.Record()

	log.Println("✅ Email sent to", draft.PrimaryEmail, "(", draft.CompanyName, ")")

	if d.Queue != nil {
		if err := d.Queue.Publish(queue.TopicEmailActivities, queue.ActivityEvent{ActivityID: activity.ID}); err != nil {
			// Best effort: the record is durable, the event is not.
			log.Println("⚠️ failed to publish activity event:", err)
		}
	}

	return activity, nil
}
