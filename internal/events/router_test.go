package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studiobridge/mcp-bridge/internal/state"
)

func TestDispatch_Log_DefaultsLevelAndMessage(t *testing.T) {
	s := state.New()
	r := New(s, zap.NewNop().Sugar())

	r.Dispatch(Event{EventType: "studio.log", Data: json.RawMessage(`{}`)})

	logs := s.GetLogs(0, 10)
	require.Len(t, logs, 1)
	assert.Equal(t, "output", logs[0].Level)
	assert.Equal(t, "", logs[0].Message)
}

func TestDispatch_Log_WithSessionID(t *testing.T) {
	s := state.New()
	r := New(s, zap.NewNop().Sugar())

	r.Dispatch(Event{EventType: "studio.log", Data: json.RawMessage(`{"level":"warning","message":"hi","sessionId":"s1"}`)})

	logs := s.GetLogs(0, 10)
	require.Len(t, logs, 1)
	assert.Equal(t, "warning", logs[0].Level)
	assert.Equal(t, "hi", logs[0].Message)
	require.NotNil(t, logs[0].SessionID)
	assert.Equal(t, "s1", *logs[0].SessionID)
}

func TestDispatch_PlaytestState_WholesaleUpdate(t *testing.T) {
	s := state.New()
	r := New(s, zap.NewNop().Sugar())

	r.Dispatch(Event{EventType: "studio.playtest_state", Data: json.RawMessage(`{"active":true,"sessionId":"s1","mode":"play"}`)})
	assert.True(t, s.IsPlaytestActive())
	info := s.PlaytestInfo()
	require.NotNil(t, info.Mode)
	assert.Equal(t, "play", *info.Mode)

	r.Dispatch(Event{EventType: "studio.playtest_state", Data: json.RawMessage(`{"active":false}`)})
	assert.False(t, s.IsPlaytestActive())
	assert.Nil(t, s.PlaytestInfo().SessionID)
}

func TestDispatch_UnknownEventType_Ignored(t *testing.T) {
	s := state.New()
	r := New(s, zap.NewNop().Sugar())

	r.Dispatch(Event{EventType: "studio.mystery", Data: json.RawMessage(`{}`)})
	assert.Equal(t, 0, s.LogBufferSize())
}

func TestDispatch_MalformedData_DoesNotPanic(t *testing.T) {
	s := state.New()
	r := New(s, zap.NewNop().Sugar())

	assert.NotPanics(t, func() {
		r.Dispatch(Event{EventType: "studio.log", Data: json.RawMessage(`not json`)})
	})
}
