package models

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestShortID(t *testing.T) {
	q := Quote{ID: uuid.MustParse("a1b2c3d4-0000-0000-0000-000000000000")}
	assert.Equal(t, "A1B2C3D4", q.ShortID())
	assert.Equal(t, strings.ToUpper(q.ShortID()), q.ShortID())
}

func TestExpired(t *testing.T) {
	created := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	q := Quote{CreatedAt: created, ValidityDays: 30}

	assert.False(t, q.Expired(created.AddDate(0, 0, 29)))
	assert.False(t, q.Expired(created.AddDate(0, 0, 30)))
	assert.True(t, q.Expired(created.AddDate(0, 0, 31)))

	// Zero validity never expires.
	q.ValidityDays = 0
	assert.False(t, q.Expired(created.AddDate(10, 0, 0)))
}

func TestValidUnit(t *testing.T) {
	for _, u := range Units {
		assert.True(t, ValidUnit(u), u)
	}
	assert.False(t, ValidUnit("visit"))
	assert.False(t, ValidUnit(""))
}

func TestAttachmentIsImage(t *testing.T) {
	assert.True(t, (&QuoteAttachment{MimeType: "image/jpeg"}).IsImage())
	assert.False(t, (&QuoteAttachment{MimeType: "application/pdf"}).IsImage())
}
