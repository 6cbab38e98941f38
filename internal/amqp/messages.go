package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"finboard/internal/core"
)

// BudgetAlertMessage carries one budget overage from the API process to the
// alert worker, which turns it into an email.
type BudgetAlertMessage struct {
	MessageID string           `json:"message_id"`
	To        string           `json:"to"`
	Alert     core.BudgetAlert `json:"alert"`
	Timestamp time.Time        `json:"timestamp"`
}

// NewBudgetAlertMessage creates a message with a fresh id.
func NewBudgetAlertMessage(to string, alert core.BudgetAlert) *BudgetAlertMessage {
	return &BudgetAlertMessage{
		MessageID: uuid.NewString(),
		To:        to,
		Alert:     alert,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BudgetAlertMessageFromJSON decodes and sanity-checks a message body.
func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.To == "" {
		return nil, errors.New("budget alert message without recipient")
	}
	return &msg, nil
}
