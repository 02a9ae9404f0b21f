// internal/queue/amqp.go
package queue

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
)

// ActivityEvent is the wire payload published for each recorded send.
type ActivityEvent struct {
	ActivityID int `json:"activity_id"`
}

// AMQPQueue publishes activity events to RabbitMQ. Subscribe is not
// supported here; consumers run their own channel loop (see cmd/worker).
type AMQPQueue struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPQueue dials the broker and declares the durable activity queue.
func NewAMQPQueue(url string) (*AMQPQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("queue: connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("queue: open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		TopicEmailActivities,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("queue: declare queue: %w", err)
	}

	return &AMQPQueue{conn: conn, ch: ch}, nil
}

func (q *AMQPQueue) Publish(topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("queue: marshal payload: %w", err)
	}

	return q.ch.Publish(
		"",    // default exchange
		topic, // routing key = queue name
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

func (q *AMQPQueue) Subscribe(topic string, handler func(payload any) error) error {
	return fmt.Errorf("queue: amqp subscribe is handled by cmd/worker, not this publisher")
}

func (q *AMQPQueue) Close() {
	if q.ch != nil {
		q.ch.Close()
	}
	if q.conn != nil {
		q.conn.Close()
	}
}

var _ Queue = (*AMQPQueue)(nil)
