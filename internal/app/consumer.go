package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cerven-ot/internal/config"
	"cerven-ot/internal/employee"
	"cerven-ot/internal/events"
	"cerven-ot/internal/messaging/kafka/consumer"
	"cerven-ot/internal/notification"
	"cerven-ot/internal/shared/connection"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func RunConsumer(cfg config.Config) error {
	logger := zap.L().Named("app.consumer")

	gormDB, err := connection.ConnectGORMWithRetry(cfg.DB, 5)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.KafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	employeeRepo := employee.NewRepository(gormDB)
	provider := notification.NewProvider(cfg.Notify, logger)
	notifier := notification.NewNotifier(employeeRepo, provider, logger)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.KafkaBroker},
		Topic:          events.ApprovalDecidedTopic,
		GroupID:        "cerven-ot-approval-notifier",
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- consumer.ConsumeApprovalDecided(ctx, reader, notifier, logger)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("consumer shutting down")
		cancel()
		return <-done
	case err := <-done:
		// Exit without committing so a restart resumes at the failed offset.
		return err
	}
}
