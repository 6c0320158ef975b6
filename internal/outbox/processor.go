package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	kafkaInfra "fooddelivery/internal/infrastructure/kafka"
	"fooddelivery/internal/repository/outbox_repo"
)

type Processor struct {
	db            *sql.DB
	outboxRepo    outbox_repo.OutboxRepository
	kafkaProducer kafkaInfra.Producer
	defaultTopic  string
	pollInterval  time.Duration
	pollTimeout   time.Duration
	batchSize     int
	logger        *zap.Logger
}

func NewProcessor(
	db *sql.DB,
	outboxRepo outbox_repo.OutboxRepository,
	kafkaProducer kafkaInfra.Producer,
	defaultTopic string,
	pollInterval time.Duration,
	pollTimeout time.Duration,
	batchSize int,
	logger *zap.Logger,
) *Processor {
	return &Processor{
		db:            db,
		outboxRepo:    outboxRepo,
		kafkaProducer: kafkaProducer,
		defaultTopic:  defaultTopic,
		pollInterval:  pollInterval,
		pollTimeout:   pollTimeout,
		batchSize:     batchSize,
		logger:        logger,
	}
}

// Start polls the outbox until ctx is cancelled.
func (p *Processor) Start(ctx context.Context) {
	p.logger.Info("Starting outbox processor", zap.Duration("poll_interval", p.pollInterval))
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Outbox processor stopped")
			return
		case <-ticker.C:
			if _, err := p.ProcessBatch(ctx); err != nil {
				p.logger.Error("Outbox batch failed", zap.Error(err))
			}
		}
	}
}

// ProcessBatch relays one batch of pending messages in creation order and
// returns how many were marked as sent. Relaying stops at the first message
// Kafka rejects so that later events for the same order do not overtake it.
func (p *Processor) ProcessBatch(ctx context.Context) (int, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin outbox transaction: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	queryCtx, cancel := context.WithTimeout(ctx, p.pollTimeout)
	messages, err := p.outboxRepo.GetPendingMessagesTx(queryCtx, tx, p.batchSize)
	cancel()
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if len(messages) == 0 {
		_ = tx.Rollback()
		p.logger.Debug("No pending outbox messages")
		return 0, nil
	}

	sent := make([]string, 0, len(messages))
	for _, msg := range messages {
		topic := msg.Topic
		if topic == "" {
			topic = p.defaultTopic
		}
		if err := p.kafkaProducer.Produce(ctx, msg.Key, topic, msg.Payload); err != nil {
			p.logger.Error("Failed to send outbox message to Kafka",
				zap.String("message_id", msg.ID),
				zap.String("topic", topic),
				zap.Error(err))
			break
		}
		sent = append(sent, msg.ID)
	}

	if len(sent) == 0 {
		_ = tx.Rollback()
		return 0, nil
	}
	if err := p.outboxRepo.MarkMessagesAsSentTx(ctx, tx, sent); err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit outbox transaction: %w", err)
	}

	p.logger.Info("Outbox messages relayed", zap.Int("count", len(sent)))
	return len(sent), nil
}
