package postgres

import (
	"context"
	"fmt"
	"time"

	"fooddelivery/internal/domain"
	"fooddelivery/internal/repository/inbox_repo"
)

type inboxRepository struct{}

func NewInboxRepository() inbox_repo.InboxRepository {
	return &inboxRepository{}
}

func (r *inboxRepository) CreateMessageTx(ctx context.Context, querier domain.Querier, msg *domain.InboxMessage) error {
	query := `
		INSERT INTO inbox_messages (id, topic, aggregate_id, payload, status, received_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`
	res, err := querier.ExecContext(ctx, query,
		msg.ID,
		msg.Topic,
		msg.AggregateID,
		string(msg.Payload),
		msg.Status,
		msg.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert inbox message: %w", err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for inbox insert: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrMessageAlreadyProcessed
	}
	return nil
}

func (r *inboxRepository) MarkProcessedTx(ctx context.Context, querier domain.Querier, id string) error {
	query := `UPDATE inbox_messages SET status = $1, processed_at = $2 WHERE id = $3`
	res, err := querier.ExecContext(ctx, query, domain.InboxStatusProcessed, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update inbox message status %s: %w", id, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for inbox message update: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("inbox message with id %s not found for status update", id)
	}
	return nil
}
