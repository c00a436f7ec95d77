package controllers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotecraft-backend/models"
)

func TestGetProfile(t *testing.T) {
	user := setupTestDB(t)

	w, c := authedContext(t, user, http.MethodGet, "/api/profile", nil)
	GetProfile(c)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, user.Email, got.Email)
	assert.Equal(t, "Spark Bros Electrical", got.BusinessName)
}

func TestUpdateProfilePartial(t *testing.T) {
	user := setupTestDB(t)

	name := "Spark Bros & Co"
	rate := 0.15
	w, c := authedContext(t, user, http.MethodPut, "/api/profile", UpdateProfileInput{
		BusinessName: &name,
		TaxRate:      &rate,
	})
	UpdateProfile(c)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Spark Bros & Co", got.BusinessName)
	assert.InDelta(t, 0.15, got.TaxRate, 1e-9)
	// Untouched fields keep their values.
	assert.Equal(t, "12 345 678 901", got.ABN)
}

func TestUpdateProfileRejectsBadRate(t *testing.T) {
	user := setupTestDB(t)

	rate := 1.5
	w, c := authedContext(t, user, http.MethodPut, "/api/profile", UpdateProfileInput{TaxRate: &rate})
	UpdateProfile(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
