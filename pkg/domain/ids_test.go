package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "mbatrack/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs".
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseClientID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseMBAID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseInvoiceID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.New()
		id, err := ParseClientID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, ClientID(valid), id)
	})
}

// TestTypeDistinction verifies the compiler enforces type safety.
// This is a compile-time check - if this compiles, the invariant holds.
func TestTypeDistinction(t *testing.T) {
	clientID := ClientID(uuid.New())
	mbaID := MBAID(uuid.New())

	// These would fail to compile if types were interchangeable:
	// var _ ClientID = mbaID   // compile error
	// var _ MBAID = clientID   // compile error

	assert.NotEqual(t, uuid.UUID(clientID), uuid.UUID(mbaID))
}

func TestTextRoundTrip(t *testing.T) {
	orig := SpendEntryID(uuid.New())
	text, err := orig.MarshalText()
	require.NoError(t, err)

	var decoded SpendEntryID
	require.NoError(t, decoded.UnmarshalText(text))
	assert.Equal(t, orig, decoded)
}
