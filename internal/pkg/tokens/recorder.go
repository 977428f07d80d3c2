package tokens

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/versemind/VerseMind/app/models"
)

// Recorder appends immutable analytics events for ledger mutations. It is a
// best-effort side channel: the consume/top-up paths log recorder failures
// and move on, they never turn one into a business failure or roll back the
// committed balance write.
type Recorder struct {
	db *gorm.DB
}

// NewRecorder creates an event recorder over the given DB handle.
func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// Record appends one event and returns its UUID.
func (r *Recorder) Record(identifier, eventType string, payload EventPayload) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	event := &models.TokenEvent{
		EventUUID:   uuid.NewString(),
		Identifier:  identifier,
		EventType:   eventType,
		PayloadJSON: string(raw),
	}
	if err := r.db.Create(event).Error; err != nil {
		return "", err
	}
	return event.EventUUID, nil
}
