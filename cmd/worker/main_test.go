package main

import (
	"testing"

	"github.com/streadway/amqp"

	"github.com/serphawk/outreach-backend/internal/queue"
)

type capturePublisher struct {
	key  string
	last amqp.Publishing
	sent int
}

func (p *capturePublisher) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	p.key = key
	p.last = msg
	p.sent++
	return nil
}

func TestRetryCountFromHeaderTypes(t *testing.T) {
	cases := []struct {
		name    string
		headers amqp.Table
		want    int
	}{
		{"nil headers", nil, 0},
		{"missing header", amqp.Table{}, 0},
		{"int", amqp.Table{"x-retry-count": 1}, 1},
		{"int32", amqp.Table{"x-retry-count": int32(2)}, 2},
		{"int64", amqp.Table{"x-retry-count": int64(3)}, 3},
		{"unexpected type", amqp.Table{"x-retry-count": "2"}, 0},
	}
	for _, tc := range cases {
		if got := retryCountFrom(tc.headers); got != tc.want {
			t.Errorf("%s: expected %d, got %d", tc.name, tc.want, got)
		}
	}
}

func TestRequeueEventRecordsAttempt(t *testing.T) {
	pub := &capturePublisher{}
	body := []byte(`{"activity_id": 7}`)

	if err := requeueEvent(pub, body, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pub.key != queue.TopicEmailActivities {
		t.Errorf("expected publish to %s, got %s", queue.TopicEmailActivities, pub.key)
	}
	if string(pub.last.Body) != string(body) {
		t.Errorf("expected body passed through, got %s", pub.last.Body)
	}
	if got := retryCountFrom(pub.last.Headers); got != 1 {
		t.Errorf("expected attempt 1 in headers, got %d", got)
	}
}

func TestFailingEventStopsAfterMaxRetries(t *testing.T) {
	// Model a handler that fails on every delivery: each failure republishes
	// with the count bumped, until the count exceeds the cap.
	pub := &capturePublisher{}
	headers := amqp.Table(nil) // first delivery carries no header

	for i := 0; i < 10; i++ {
		attempt := retryCountFrom(headers) + 1
		if attempt > maxRetries {
			break
		}
		if err := requeueEvent(pub, []byte(`{"activity_id": 7}`), attempt); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		headers = pub.last.Headers
	}

	if pub.sent != maxRetries {
		t.Fatalf("expected exactly %d requeues, got %d", maxRetries, pub.sent)
	}
	if got := retryCountFrom(pub.last.Headers); got != maxRetries {
		t.Errorf("expected final attempt %d recorded, got %d", maxRetries, got)
	}
}
