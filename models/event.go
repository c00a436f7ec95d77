package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Quote event types.
const (
	EventCreated  = "created"
	EventSent     = "sent"
	EventViewed   = "viewed"
	EventAccepted = "accepted"
	EventDeclined = "declined"
)

// QuoteEvent is an append-only audit record. Events are never updated and only
// removed when their quote is deleted.
type QuoteEvent struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	QuoteID uuid.UUID `gorm:"type:uuid;index;not null" json:"quoteId"`

	EventType string `gorm:"not null" json:"eventType"`
	Metadata  JSONB  `gorm:"type:jsonb;default:'{}'" json:"metadata"`

	CreatedAt time.Time `json:"createdAt"`
}

func (e *QuoteEvent) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}

// JSONB holds schemaless event metadata.
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	case nil:
		return nil
	}
	return errors.New("type assertion to []byte failed")
}
