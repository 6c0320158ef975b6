package inbox_repo

import (
	"context"

	"fooddelivery/internal/domain"
)

type InboxRepository interface {
	// CreateMessageTx returns domain.ErrMessageAlreadyProcessed when a message
	// with the same id was stored before.
	CreateMessageTx(ctx context.Context, querier domain.Querier, msg *domain.InboxMessage) error
	MarkProcessedTx(ctx context.Context, querier domain.Querier, id string) error
}
