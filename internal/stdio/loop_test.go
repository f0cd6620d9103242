package stdio

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studiobridge/mcp-bridge/internal/orchestrator"
	"github.com/studiobridge/mcp-bridge/internal/state"
)

func newTestLoop() *Loop {
	o := orchestrator.New(state.New(), zap.NewNop().Sugar())
	return New(o, "0.1.0-test", zap.NewNop().Sugar())
}

func runLoop(t *testing.T, l *Loop, input string) []map[string]any {
	t.Helper()
	var out bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, l.Run(ctx, strings.NewReader(input), &out))

	var responses []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		responses = append(responses, m)
	}
	return responses
}

func TestRun_Initialize(t *testing.T) {
	l := newTestLoop()
	out := runLoop(t, l, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`+"\n")

	require.Len(t, out, 1)
	result := out[0]["result"].(map[string]any)
	assert.Equal(t, "2025-11-25", result["protocolVersion"])
	serverInfo := result["serverInfo"].(map[string]any)
	assert.Equal(t, "studio-bridge", serverInfo["name"])
}

func TestRun_Ping(t *testing.T) {
	l := newTestLoop()
	out := runLoop(t, l, `{"jsonrpc":"2.0","id":2,"method":"ping","params":{}}`+"\n")
	require.Len(t, out, 1)
	assert.Equal(t, map[string]any{}, out[0]["result"])
}

func TestRun_ToolsList_IncludesBaselineCatalog(t *testing.T) {
	l := newTestLoop()
	out := runLoop(t, l, `{"jsonrpc":"2.0","id":3,"method":"tools/list","params":{}}`+"\n")
	require.Len(t, out, 1)
	result := out[0]["result"].(map[string]any)
	toolsList := result["tools"].([]any)
	assert.NotEmpty(t, toolsList)
}

func TestRun_UnknownMethod(t *testing.T) {
	l := newTestLoop()
	out := runLoop(t, l, `{"jsonrpc":"2.0","id":4,"method":"resources/list","params":{}}`+"\n")
	require.Len(t, out, 1)
	errObj := out[0]["error"].(map[string]any)
	assert.Equal(t, float64(-32601), errObj["code"])
}

func TestRun_ParseError(t *testing.T) {
	l := newTestLoop()
	out := runLoop(t, l, `{bad json`+"\n")
	require.Len(t, out, 1)
	assert.Nil(t, out[0]["id"])
	errObj := out[0]["error"].(map[string]any)
	assert.Equal(t, float64(-32700), errObj["code"])
}

func TestRun_InvalidIDFormatRejected(t *testing.T) {
	l := newTestLoop()
	out := runLoop(t, l, `{"jsonrpc":"2.0","id":{"nested":true},"method":"ping"}`+"\n")
	require.Len(t, out, 1)
	assert.Nil(t, out[0]["id"])
	errObj := out[0]["error"].(map[string]any)
	assert.Equal(t, float64(-32600), errObj["code"])
}

func TestRun_ExplicitNullIDRejected(t *testing.T) {
	l := newTestLoop()
	out := runLoop(t, l, `{"jsonrpc":"2.0","id":null,"method":"ping"}`+"\n")
	require.Len(t, out, 1)
	errObj := out[0]["error"].(map[string]any)
	assert.Equal(t, float64(-32600), errObj["code"])
}

func TestRun_NotificationGetsNoResponse(t *testing.T) {
	l := newTestLoop()
	out := runLoop(t, l, `{"jsonrpc":"2.0","method":"notifications/initialized","params":{}}`+"\n")
	assert.Empty(t, out)
}

func TestRun_ToolsCall_StatusShortcut(t *testing.T) {
	l := newTestLoop()
	out := runLoop(t, l, `{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"studio-status"}}`+"\n")
	require.Len(t, out, 1)
	result := out[0]["result"].(map[string]any)
	assert.NotNil(t, result["content"])
}

// TestRun_CancelUnblocksReadAlreadyInFlight guards against a deadlock on
// shutdown: an MCP host holds stdin open indefinitely, so a blocked read
// must not prevent Run from returning once ctx is cancelled.
func TestRun_CancelUnblocksReadAlreadyInFlight(t *testing.T) {
	l := newTestLoop()
	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- l.Run(ctx, pr, io.Discard)
	}()

	// Give Run a moment to block inside the read, then cancel.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after ctx cancellation while a read was in flight")
	}
}
