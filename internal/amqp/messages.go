package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// BillSubmittedMessage announces that an employee saved a pending bill.
// The worker loads the full bill from the database.
type BillSubmittedMessage struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Timestamp time.Time `json:"timestamp"`
}

func NewBillSubmittedMessage(id, email string) *BillSubmittedMessage {
	return &BillSubmittedMessage{
		ID:        id,
		Email:     email,
		Timestamp: time.Now(),
	}
}

func (m *BillSubmittedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BillSubmittedMessageFromJSON decodes a message and rejects one without a bill ID.
func BillSubmittedMessageFromJSON(data []byte) (*BillSubmittedMessage, error) {
	var msg BillSubmittedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" {
		return nil, errors.New("message without bill id")
	}
	return &msg, nil
}
