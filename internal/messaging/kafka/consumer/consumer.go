package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cerven-ot/internal/events"
	"cerven-ot/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumer loop uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

const maxDeliveryAttempts = 5

var retryBackoff = time.Second

// ErrDeliveryExhausted stops the consumer with the failed message
// uncommitted, so the group offset stays on it and the next run
// fetches it again.
var ErrDeliveryExhausted = errors.New("approval notification delivery exhausted")

// ConsumeApprovalDecided delivers approval notifications. A message is
// committed once delivered, when its payload cannot be decoded, or when it
// has no reachable recipient. Other failures are retried in place; when
// every attempt fails the loop returns ErrDeliveryExhausted without
// committing. It returns nil when ctx is cancelled.
func ConsumeApprovalDecided(
	ctx context.Context,
	reader MessageReader,
	notifier notification.Notifier,
	logger *zap.Logger,
) error {
	log := logger.Named("kafka.consumer.approval_decided")
	log.Info("approval decided consumer started")

	fetchFailures := 0
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("approval decided consumer stopped")
				return nil
			}
			fetchFailures++
			log.Error("fetch approval decided message failed",
				zap.Int("consecutive_failures", fetchFailures),
				zap.Error(err),
			)
			if !sleep(ctx, fetchBackoff(fetchFailures)) {
				log.Info("approval decided consumer stopped")
				return nil
			}
			continue
		}
		fetchFailures = 0

		var event events.ApprovalDecidedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode approval decided event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		err = deliver(ctx, notifier, event, log)
		if errors.Is(err, notification.ErrNoRecipient) {
			log.Warn("approval notification has no recipient, skipping",
				zap.String("entity_id", event.EntityID),
				zap.String("requester_id", event.RequesterID),
				zap.Error(err),
			)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				log.Info("approval decided consumer stopped")
				return nil
			}
			log.Error("approval notification failed, leaving uncommitted",
				zap.String("entity_id", event.EntityID),
				zap.String("company_id", event.CompanyID),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			return fmt.Errorf("%w: offset %d: %v", ErrDeliveryExhausted, msg.Offset, err)
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit approval decided message failed", zap.Error(err))
			continue
		}
	}
}

func deliver(ctx context.Context, notifier notification.Notifier, event events.ApprovalDecidedEvent, log *zap.Logger) error {
	var err error
	for attempt := 1; attempt <= maxDeliveryAttempts; attempt++ {
		err = notifier.NotifyApprovalDecided(ctx, event)
		if err == nil || errors.Is(err, notification.ErrNoRecipient) {
			return err
		}
		log.Warn("approval notification attempt failed",
			zap.Int("attempt", attempt),
			zap.String("entity_id", event.EntityID),
			zap.Error(err),
		)
		if attempt == maxDeliveryAttempts {
			break
		}
		if !sleep(ctx, retryBackoff*time.Duration(attempt)) {
			return ctx.Err()
		}
	}
	return err
}

// fetchBackoff grows linearly with consecutive fetch failures, capped at
// ten steps.
func fetchBackoff(failures int) time.Duration {
	if failures > 10 {
		failures = 10
	}
	return retryBackoff * time.Duration(failures)
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
