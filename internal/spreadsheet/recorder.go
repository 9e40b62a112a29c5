package spreadsheet

import (
	"context"
	"database/sql"
	"time"

	"cerven-ot/internal/events"
	"cerven-ot/internal/messaging/kafka"
)

// Recorder persists the ImportRun and its ImportCompleted outbox event in
// one transaction.
type Recorder struct {
	db     *sql.DB
	runs   RunRepository
	outbox kafka.OutboxRepository
	now    func() time.Time
}

func NewRecorder(db *sql.DB, runs RunRepository, outboxRepo kafka.OutboxRepository) *Recorder {
	return &Recorder{db: db, runs: runs, outbox: outboxRepo, now: time.Now}
}

func (r *Recorder) Record(ctx context.Context, run *ImportRun) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := r.runs.WithTx(tx).Create(ctx, run); err != nil {
		return err
	}

	if r.outbox != nil {
		event, err := kafka.NewOutboxEvent(ctx, "import_run", run.ID.String(), events.ImportCompletedEventType, events.ImportCompletedTopic,
			events.ImportCompletedEvent{
				EventType:  events.ImportCompletedEventType,
				RunID:      run.ID.String(),
				Kind:       run.Kind,
				CompanyID:  run.CompanyID.String(),
				StartedBy:  run.StartedBy.String(),
				Total:      run.Total,
				Succeeded:  run.Succeeded,
				Failed:     run.Failed,
				Skipped:    run.Skipped,
				OccurredAt: r.now().UTC(),
			})
		if err != nil {
			return err
		}
		if err := r.outbox.WithTx(tx).Create(ctx, event); err != nil {
			return err
		}
	}

	return tx.Commit()
}
