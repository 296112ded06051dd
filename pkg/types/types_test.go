package types

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadResultStates(t *testing.T) {
	pending := Pending("sepolia", 11155111)
	require.True(t, pending.IsPending())
	require.False(t, pending.IsSuccess())
	require.Empty(t, pending.Value)
	require.True(t, pending.ReadAt.IsZero())

	ok := Success("sepolia", 11155111, []string{"42", "0xabc"})
	require.True(t, ok.IsSuccess())
	require.Equal(t, "42, 0xabc", ok.Value)
	require.False(t, ok.ReadAt.IsZero())

	failed := Failure("sepolia", 11155111, errors.New("execution reverted"))
	require.True(t, failed.IsError())
	require.Equal(t, "execution reverted", failed.Reason)
	require.Empty(t, failed.Value)

	require.Equal(t, "unknown error", Failure("base", 8453, nil).Reason)

	var nilResult *ReadResult
	require.True(t, nilResult.IsPending())
	require.False(t, nilResult.IsError())
}

func TestReadStatusJSON(t *testing.T) {
	data, err := json.Marshal(Success("base", 8453, []string{"7"}))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Equal(t, "success", raw["status"])
	require.Equal(t, "7", raw["value"])
	require.NotContains(t, raw, "reason")

	var decoded ReadResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, ReadStatusSuccess, decoded.Status)

	var status ReadStatus
	require.Error(t, json.Unmarshal([]byte(`"done"`), &status))
}
