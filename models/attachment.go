package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuoteAttachment is a file persisted alongside a quote. Uploads are staged in
// a temp directory during generation and promoted here when the quote is saved.
type QuoteAttachment struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	QuoteID uuid.UUID `gorm:"type:uuid;index;not null" json:"quoteId"`

	Filename     string `gorm:"not null" json:"filename"`
	OriginalName string `json:"originalName"`
	MimeType     string `json:"mimeType"`
	Size         int64  `gorm:"default:0" json:"size"`

	CreatedAt time.Time `json:"createdAt"`
}

func (a *QuoteAttachment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}

func (a *QuoteAttachment) IsImage() bool {
	return strings.HasPrefix(a.MimeType, "image/")
}
