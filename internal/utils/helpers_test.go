package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/senyabanana/marketplace-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLimitOffset(t *testing.T) {
	limit, offset, err := ParseLimitOffset("", "")
	require.NoError(t, err)
	assert.Equal(t, 5, limit)
	assert.Equal(t, 0, offset)

	limit, offset, err = ParseLimitOffset("50", "10")
	require.NoError(t, err)
	assert.Equal(t, 50, limit)
	assert.Equal(t, 10, offset)

	for _, bad := range [][2]string{{"0", ""}, {"51", ""}, {"x", ""}, {"", "-1"}, {"", "y"}} {
		_, _, err = ParseLimitOffset(bad[0], bad[1])
		assert.Error(t, err, bad)
	}
}

func TestContains(t *testing.T) {
	allowed := models.RequestTransitions[models.OpenRequest]
	assert.True(t, Contains(allowed, models.CancelledRequest))
	assert.False(t, Contains(allowed, models.AcceptedRequest))
	assert.False(t, Contains(models.RequestTransitions[models.DeclinedRequest], models.OpenRequest))
}

func TestSendErrorWritesCodeAndReason(t *testing.T) {
	rec := httptest.NewRecorder()
	SendError(rec, models.ErrOfferExists)

	require.Equal(t, http.StatusConflict, rec.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "conflict", body["code"])
	assert.Equal(t, models.ErrOfferExists.Message, body["reason"])
}

func TestAsErrorResponse(t *testing.T) {
	assert.Same(t, models.ErrOrderNotFound, AsErrorResponse(models.ErrOrderNotFound))

	wrapped := AsErrorResponse(errors.New("connection reset"))
	assert.Equal(t, http.StatusInternalServerError, wrapped.StatusCode)
	assert.Equal(t, models.CodeStorageFailure, wrapped.Code)
}

func TestValidateID(t *testing.T) {
	require.NoError(t, ValidateID("offerId", "4f1c5d1e-8a3b-4c2d-9e6f-7a8b9c0d1e2f"))

	err := ValidateID("offerId", "nope")
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeInvalidInput))
}

func TestValidateEmail(t *testing.T) {
	require.NoError(t, ValidateEmail("anna@example.com"))

	for _, email := range []string{"", "anna", "anna@"} {
		err := ValidateEmail(email)
		require.Error(t, err, email)
		assert.True(t, models.HasCode(err, models.CodeInvalidInput))
	}
}

func TestValidateStruct(t *testing.T) {
	err := ValidateStruct(models.Credentials{Email: "not-an-email"})
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeInvalidInput))
	assert.Contains(t, err.Error(), "Email (email)")
	assert.Contains(t, err.Error(), "Password (required)")

	require.NoError(t, ValidateStruct(models.Credentials{Email: "a@b.co", Password: "secret"}))
}
