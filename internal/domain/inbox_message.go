package domain

import (
	"errors"
	"time"
)

var ErrMessageAlreadyProcessed = errors.New("message already processed")

type InboxMessageStatus string

const (
	InboxStatusNew       InboxMessageStatus = "NEW"
	InboxStatusProcessed InboxMessageStatus = "PROCESSED"
)

// InboxMessage remembers a consumed event so that redelivery is ignored.
type InboxMessage struct {
	ID          string
	Topic       string
	AggregateID string
	Payload     []byte
	Status      InboxMessageStatus
	ReceivedAt  time.Time
	ProcessedAt *time.Time
}
