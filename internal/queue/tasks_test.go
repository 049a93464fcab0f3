package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSweepAccountTask(t *testing.T) {
	t.Run("creates payload", func(t *testing.T) {
		payload, err := NewSweepAccountTask(7, "creator", 42, map[string]any{"source": "scheduler"})
		require.NoError(t, err)
		assert.Equal(t, int64(7), payload.AccountID)
		assert.Equal(t, "creator", payload.Username)
		assert.Equal(t, int64(42), payload.OwnerUserID)
		assert.Equal(t, "scheduler", payload.Metadata["source"])
	})

	t.Run("nil metadata becomes empty map", func(t *testing.T) {
		payload, err := NewSweepAccountTask(7, "creator", 42, nil)
		require.NoError(t, err)
		assert.NotNil(t, payload.Metadata)
	})

	t.Run("username is required", func(t *testing.T) {
		_, err := NewSweepAccountTask(7, "", 42, nil)
		require.Error(t, err)
	})
}

func TestSweepAccountPayload_Roundtrip(t *testing.T) {
	payload, err := NewSweepAccountTask(7, "creator", 42, map[string]any{"source": "scheduler"})
	require.NoError(t, err)

	data, err := payload.Marshal()
	require.NoError(t, err)

	decoded, err := UnmarshalSweepAccountPayload(data)
	require.NoError(t, err)
	assert.Equal(t, payload.AccountID, decoded.AccountID)
	assert.Equal(t, payload.Username, decoded.Username)
	assert.Equal(t, payload.OwnerUserID, decoded.OwnerUserID)
	assert.Equal(t, "scheduler", decoded.Metadata["source"])
}

func TestUnmarshalSweepAccountPayload_Invalid(t *testing.T) {
	_, err := UnmarshalSweepAccountPayload([]byte("not json"))
	require.Error(t, err)
}
