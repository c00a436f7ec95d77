package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultTaxRate is the GST fraction applied when an account has not
// configured its own rate.
const DefaultTaxRate = 0.10

type User struct {
	ID    uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Email string    `gorm:"uniqueIndex;not null" json:"email"`
	Name  string    `json:"name"`

	// Business profile. Quotes capture a snapshot of these fields at
	// creation time, so edits here never change already-issued quotes.
	BusinessName  string  `json:"businessName"`
	ABN           string  `json:"abn"`
	LicenceNumber string  `json:"licenceNumber"`
	Phone         string  `json:"phone"`
	BusinessEmail string  `json:"businessEmail"`
	Address       string  `json:"address"`
	Logo          string  `json:"logo"`
	PaymentTerms  string  `gorm:"type:text" json:"paymentTerms"`
	BankDetails   string  `gorm:"type:text" json:"bankDetails"`
	TradeType     string  `json:"tradeType"`
	TaxRate       float64 `gorm:"type:decimal(5,4);default:0.10" json:"taxRate"`

	Quotes []Quote `gorm:"foreignKey:UserID" json:"-"`

	LastLogin *time.Time `json:"lastLogin"`
	IsActive  bool       `gorm:"default:true" json:"isActive"`

	gorm.Model `json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.TaxRate == 0 {
		u.TaxRate = DefaultTaxRate
	}
	return
}

// BusinessSnapshot is an immutable copy of the business profile frozen into a
// quote when it is created.
type BusinessSnapshot struct {
	BusinessName  string  `json:"businessName"`
	ABN           string  `json:"abn"`
	LicenceNumber string  `json:"licenceNumber"`
	Phone         string  `json:"phone"`
	Email         string  `json:"email"`
	Address       string  `json:"address"`
	Logo          string  `json:"logo"`
	PaymentTerms  string  `json:"paymentTerms"`
	BankDetails   string  `json:"bankDetails"`
	TradeType     string  `json:"tradeType"`
	TaxRate       float64 `json:"taxRate"`
}

// Snapshot freezes the current profile fields into a value object.
func (u *User) Snapshot() BusinessSnapshot {
	return BusinessSnapshot{
		BusinessName:  u.BusinessName,
		ABN:           u.ABN,
		LicenceNumber: u.LicenceNumber,
		Phone:         u.Phone,
		Email:         u.BusinessEmail,
		Address:       u.Address,
		Logo:          u.Logo,
		PaymentTerms:  u.PaymentTerms,
		BankDetails:   u.BankDetails,
		TradeType:     u.TradeType,
		TaxRate:       u.TaxRate,
	}
}

func (s BusinessSnapshot) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *BusinessSnapshot) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	case nil:
		return nil
	}
	return errors.New("type assertion to []byte failed")
}
