package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeToken(t *testing.T) {
	entryDate := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)

	token := EncodeToken(entryDate, 42)
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedDate, decodedSeq, err := DecodeToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, entryDate, decodedDate, "Entry date should match after decode")
	assert.Equal(t, int64(42), decodedSeq, "Sequence should match after decode")
}

func TestDecodeTokenError(t *testing.T) {
	_, _, err := DecodeToken("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode")

	noSep := base64.StdEncoding.EncodeToString([]byte("2025-01-05"))
	_, _, err = DecodeToken(noSep)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "split")

	badDate := base64.StdEncoding.EncodeToString([]byte("notadate|3"))
	_, _, err = DecodeToken(badDate)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "entry date parse")

	badSeq := base64.StdEncoding.EncodeToString([]byte("2025-01-05|x"))
	_, _, err = DecodeToken(badSeq)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "sequence parse")
}
