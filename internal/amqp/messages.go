package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"spendwise/internal/core"
)

// Activity event names.
const (
	EventTransactionRecorded = "transaction.recorded"
	EventBudgetSet           = "budget.set"
)

// ActivityMessage announces a change to a session's state. It never carries
// the session id.
type ActivityMessage struct {
	ID            string    `json:"id"`
	Event         string    `json:"event"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Category      string    `json:"category"`
	Amount        string    `json:"amount"`
	Date          string    `json:"date,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewTransactionRecorded describes a transaction that reached the store.
func NewTransactionRecorded(tx core.Transaction) *ActivityMessage {
	return &ActivityMessage{
		ID:            uuid.NewString(),
		Event:         EventTransactionRecorded,
		TransactionID: tx.ID,
		Category:      tx.Category.String(),
		Amount:        tx.Amount.String(),
		Date:          tx.Date.String(),
		Timestamp:     time.Now().UTC(),
	}
}

// NewBudgetSet describes a budget change. A cleared budget has amount 0.00.
func NewBudgetSet(c core.Category, b core.BudgetEntry) *ActivityMessage {
	return &ActivityMessage{
		ID:        uuid.NewString(),
		Event:     EventBudgetSet,
		Category:  c.String(),
		Amount:    b.Amount.String(),
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ActivityMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ActivityMessageFromJSON creates a message from JSON bytes
func ActivityMessageFromJSON(data []byte) (*ActivityMessage, error) {
	var msg ActivityMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
