package mcp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONRPCRequest_NumericID(t *testing.T) {
	var req JSONRPCRequest
	require.NoError(t, json.Unmarshal([]byte(`{"jsonrpc":"2.0","id":7,"method":"ping"}`), &req))
	assert.True(t, req.HasID())
	assert.False(t, req.HasInvalidID())
	assert.Equal(t, float64(7), req.ID)
}

func TestJSONRPCRequest_StringID(t *testing.T) {
	var req JSONRPCRequest
	require.NoError(t, json.Unmarshal([]byte(`{"jsonrpc":"2.0","id":"abc","method":"ping"}`), &req))
	assert.True(t, req.HasID())
	assert.Equal(t, "abc", req.ID)
}

func TestJSONRPCRequest_MissingIDIsNotification(t *testing.T) {
	var req JSONRPCRequest
	require.NoError(t, json.Unmarshal([]byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`), &req))
	assert.False(t, req.HasID())
	assert.False(t, req.HasInvalidID())
}

func TestJSONRPCRequest_ExplicitNullID(t *testing.T) {
	var req JSONRPCRequest
	require.NoError(t, json.Unmarshal([]byte(`{"jsonrpc":"2.0","id":null,"method":"ping"}`), &req))
	assert.False(t, req.HasID())
	assert.True(t, req.HasInvalidID())
}

func TestJSONRPCRequest_InvalidIDFormat(t *testing.T) {
	var req JSONRPCRequest
	require.NoError(t, json.Unmarshal([]byte(`{"jsonrpc":"2.0","id":{"nested":true},"method":"ping"}`), &req))
	assert.False(t, req.HasID())
	assert.True(t, req.HasInvalidID())
}
