package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nemopss/fin-ng/backend/models"
)

type Kind string

const (
	TransactionCreated Kind = "transaction.created"
	TransactionUpdated Kind = "transaction.updated"
	TransactionDeleted Kind = "transaction.deleted"
)

// TransactionEvent is published after a successful write. Transaction is
// nil for deletions.
type TransactionEvent struct {
	Kind          Kind                `json:"kind"`
	TransactionID string              `json:"transactionId"`
	UserID        string              `json:"userId"`
	Transaction   *models.Transaction `json:"transaction,omitempty"`
	OccurredAt    time.Time           `json:"occurredAt"`
}

func NewTransactionEvent(kind Kind, id, userID string, tx *models.Transaction) TransactionEvent {
	return TransactionEvent{
		Kind:          kind,
		TransactionID: id,
		UserID:        userID,
		Transaction:   tx,
		OccurredAt:    time.Now().UTC(),
	}
}

func (e TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

type Publisher interface {
	Publish(ctx context.Context, e TransactionEvent) error
	Close() error
}

// Nop отбрасывает события; используется, когда AMQP_URL не задан.
type Nop struct{}

func (Nop) Publish(context.Context, TransactionEvent) error { return nil }
func (Nop) Close() error                                    { return nil }
