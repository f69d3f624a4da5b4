package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"registro/internal/core"
)

// LedgerSavedMessage announces that a bin's document was saved upstream.
// The archive worker fetches the full document from the store, so the
// message carries only identity and summary data.
type LedgerSavedMessage struct {
	EventID    string      `json:"eventId"`
	BinID      string      `json:"binId"`
	EntryCount int         `json:"entryCount"`
	Totals     core.Totals `json:"totals"`
	SavedAt    time.Time   `json:"savedAt"`
}

func NewLedgerSavedMessage(binID string, entryCount int, totals core.Totals) *LedgerSavedMessage {
	return &LedgerSavedMessage{
		EventID:    uuid.NewString(),
		BinID:      binID,
		EntryCount: entryCount,
		Totals:     totals,
		SavedAt:    time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerSavedMessageFromJSON creates a message from JSON bytes
func LedgerSavedMessageFromJSON(data []byte) (*LedgerSavedMessage, error) {
	var msg LedgerSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
