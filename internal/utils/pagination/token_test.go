package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeToken(t *testing.T) {
	changedAt := time.Date(2026, 3, 15, 14, 30, 45, 123456789, time.UTC)
	rowID := "5b7c9a2e-1f0d-4c3b-9a8e-6d5f4e3c2b1a"

	token := EncodeToken(changedAt, rowID)
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedChangedAt, decodedRowID, err := DecodeToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.True(t, changedAt.Equal(decodedChangedAt), "Changed at time should match after decode")
	assert.Equal(t, rowID, decodedRowID, "Row id should match after decode")
}

func TestDecodeTokenError(t *testing.T) {
	// Test invalid base64
	_, _, err := DecodeToken("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode", "Error should mention base64 decoding")

	// Test invalid format (missing separator)
	invalidToken := "MjAyNi0wMy0xNVQwMDowMDowMFo=" // Base64 encoded date without separator
	_, _, err = DecodeToken(invalidToken)
	assert.Error(t, err, "Should return an error for invalid token format")
	assert.Contains(t, err.Error(), "split", "Error should mention splitting issue")

	// Test invalid date format
	_, _, err = DecodeToken("bm90YWRhdGV8cm93LWlk") // Base64 encoded "notadate|row-id"
	assert.Error(t, err, "Should return an error for invalid date format")
	assert.Contains(t, err.Error(), "changed_at parse", "Error should mention date parsing issue")
}

func TestEncodeDateBasedToken(t *testing.T) {
	testDate := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	token := EncodeDateBasedToken(testDate)

	decodedDate, err := DecodeDateBasedToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.True(t, testDate.Equal(decodedDate), "Date should match after decode")
}
