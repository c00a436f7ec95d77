package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Quote lifecycle statuses.
const (
	StatusDraft    = "draft"
	StatusSent     = "sent"
	StatusViewed   = "viewed"
	StatusAccepted = "accepted"
	StatusDeclined = "declined"
)

// Line item categories.
const (
	CategoryLabour    = "labour"
	CategoryMaterials = "materials"
)

// DefaultTemplate is the visual template used when none is selected.
const DefaultTemplate = "clean-modern"

type Quote struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`

	ClientName    string `json:"clientName"`
	ClientEmail   string `json:"clientEmail"`
	ClientPhone   string `json:"clientPhone"`
	ClientAddress string `json:"clientAddress"`

	TradeType      string `json:"tradeType"`
	JobDescription string `gorm:"type:text" json:"jobDescription"`
	Status         string `gorm:"type:varchar(20);default:'draft'" json:"status"`

	// Derived money fields, recomputed whenever the items change.
	Subtotal float64 `gorm:"type:decimal(10,2);default:0" json:"subtotal"`
	Tax      float64 `gorm:"type:decimal(10,2);default:0" json:"tax"`
	Total    float64 `gorm:"type:decimal(10,2);default:0" json:"total"`

	ValidityDays int    `gorm:"default:30" json:"validityDays"`
	Notes        string `gorm:"type:text" json:"notes"`
	Template     string `gorm:"default:'clean-modern'" json:"template"`

	BusinessSnapshot BusinessSnapshot `gorm:"type:jsonb" json:"businessSnapshot"`

	SentAt     *time.Time `json:"sentAt"`
	ViewedAt   *time.Time `json:"viewedAt"`
	AcceptedAt *time.Time `json:"acceptedAt"`
	DeclinedAt *time.Time `json:"declinedAt"`

	Items       []QuoteItem       `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE" json:"items"`
	Attachments []QuoteAttachment `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE" json:"attachments"`
	Events      []QuoteEvent      `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE" json:"events"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (q *Quote) BeforeCreate(tx *gorm.DB) (err error) {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return
}

// ShortID is the human-facing quote reference used in documents and filenames.
func (q *Quote) ShortID() string {
	return strings.ToUpper(q.ID.String()[:8])
}

// Expired reports whether the validity period has lapsed.
func (q *Quote) Expired(now time.Time) bool {
	if q.ValidityDays <= 0 {
		return false
	}
	return now.After(q.CreatedAt.AddDate(0, 0, q.ValidityDays))
}

type QuoteItem struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	QuoteID uuid.UUID `gorm:"type:uuid;index;not null" json:"quoteId"`

	Description string  `json:"description"`
	Quantity    float64 `gorm:"type:decimal(10,2);default:1" json:"quantity"`
	Unit        string  `gorm:"default:'each'" json:"unit"`
	UnitPrice   float64 `gorm:"type:decimal(10,2);default:0" json:"unitPrice"`
	Total       float64 `gorm:"type:decimal(10,2);default:0" json:"total"`
	Category    string  `gorm:"default:'labour'" json:"category"`
	SortOrder   int     `gorm:"default:0" json:"sortOrder"`
}

func (i *QuoteItem) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}

// Units a line item may be priced in.
var Units = []string{"each", "m", "m²", "hr", "day", "lot", "kg", "L"}

// ValidUnit reports whether u is one of the recognised pricing units.
func ValidUnit(u string) bool {
	for _, known := range Units {
		if u == known {
			return true
		}
	}
	return false
}
