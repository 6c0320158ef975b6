package outbox_repo

import (
	"context"

	"fooddelivery/internal/domain"
)

type OutboxRepository interface {
	CreateMessageTx(ctx context.Context, querier domain.Querier, msg *domain.OutboxMessage) error
	GetPendingMessagesTx(ctx context.Context, querier domain.Querier, limit int) ([]domain.OutboxMessage, error)
	MarkMessagesAsSentTx(ctx context.Context, querier domain.Querier, ids []string) error
}
