package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartUserEventConsumer connects to RabbitMQ, declares the user.events
// queue and appends every event to logs/user-events.log as a structured
// audit line. It runs a reconnect loop with capped exponential backoff
// and never returns under normal operation; malformed messages are
// rejected without requeue so the loop cannot spin on a poison message.
func StartUserEventConsumer(url string) error {
	audit, err := openAuditLogger()
	if err != nil {
		return err
	}

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("user-events: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(conn, audit); err != nil {
			log.Printf("user-events: consume loop ended: %v; reconnecting", err)
			_ = conn.Close()
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, audit *slog.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("user-events: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(UserEventsQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(UserEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body, audit); err != nil {
			log.Printf("user-events: handle message failed: %v", err)
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte, audit *slog.Logger) error {
	var ev UserEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	audit.Info(ev.Type,
		slog.String("user_id", ev.UserID),
		slog.String("email", ev.Email),
		slog.String("role", ev.Role),
		slog.String("occurred_at", ev.OccurredAt),
	)
	return nil
}

func openAuditLogger() (*slog.Logger, error) {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return nil, fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join("logs", "user-events.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return slog.New(slog.NewTextHandler(f, nil)), nil
}
