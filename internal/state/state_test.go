package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterClient_UniqueIDs(t *testing.T) {
	s := New()
	a := s.RegisterClient("1.0.0")
	b := s.RegisterClient("1.0.0")
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, s.ConnectedClientCount())
}

func TestHasConnectedClient_EmptyRegistry(t *testing.T) {
	s := New()
	assert.False(t, s.HasConnectedClient())
}

func TestEnqueueToolRequest_NoClientsReturnsFalse(t *testing.T) {
	s := New()
	ok := s.EnqueueToolRequest(ToolRequest{RequestID: "r1", ToolName: "studio-status"})
	assert.False(t, ok)
}

func TestEnqueueAndDrainOutbound_FIFO(t *testing.T) {
	s := New()
	clientID := s.RegisterClient("1.0.0")

	require.True(t, s.EnqueueToolRequest(ToolRequest{RequestID: "r1", ToolName: "studio-run_script"}))
	require.True(t, s.EnqueueToolRequest(ToolRequest{RequestID: "r2", ToolName: "studio-run_script"}))

	drained := s.DrainOutbound(clientID)
	require.Len(t, drained, 2)
	assert.Equal(t, "r1", drained[0].RequestID)
	assert.Equal(t, "r2", drained[1].RequestID)

	again := s.DrainOutbound(clientID)
	assert.Empty(t, again)
	assert.NotNil(t, again)
}

func TestDrainOutbound_UnknownClientReturnsEmptyNotNil(t *testing.T) {
	s := New()
	drained := s.DrainOutbound("does-not-exist")
	assert.NotNil(t, drained)
	assert.Empty(t, drained)
}

func TestEnqueueToolRequest_RoutesToPlaytestBridgeForControlSurfaceTools(t *testing.T) {
	s := New()
	main := s.RegisterClient("1.0.0")
	bridge := s.RegisterClient("1.0.0-playtest")

	require.True(t, s.EnqueueToolRequest(ToolRequest{RequestID: "r1", ToolName: "studio-virtualuser_key"}))

	assert.Empty(t, s.DrainOutbound(main))
	bridgeDrain := s.DrainOutbound(bridge)
	require.Len(t, bridgeDrain, 1)
	assert.Equal(t, "r1", bridgeDrain[0].RequestID)
}

func TestEnqueueToolRequest_FallsBackToMostRecentlyPolled(t *testing.T) {
	s := New()
	older := s.RegisterClient("1.0.0")
	newer := s.RegisterClient("1.0.0")

	s.DrainOutbound(older)
	time.Sleep(2 * time.Millisecond)
	s.DrainOutbound(newer)

	// A bridge-preferring tool with no playtest bridge registered: no client
	// matches the preference, so the most-recently-polled fallback applies.
	require.True(t, s.EnqueueToolRequest(ToolRequest{RequestID: "r1", ToolName: "studio-virtualuser_key"}))

	assert.Empty(t, s.DrainOutbound(older))
	newerDrain := s.DrainOutbound(newer)
	require.Len(t, newerDrain, 1)
}

func TestGetWake_SignaledOnEnqueue(t *testing.T) {
	s := New()
	clientID := s.RegisterClient("1.0.0")
	wake, ok := s.GetWake(clientID)
	require.True(t, ok)

	require.True(t, s.EnqueueToolRequest(ToolRequest{RequestID: "r1", ToolName: "studio-status"}))

	select {
	case <-wake:
	case <-time.After(time.Second):
		t.Fatal("expected wake signal after enqueue")
	}
}

func TestGetWake_UnknownClient(t *testing.T) {
	s := New()
	_, ok := s.GetWake("nope")
	assert.False(t, ok)
}

func TestRegisterAndResolvePending(t *testing.T) {
	s := New()
	slot := make(chan ToolResponse, 1)
	s.RegisterPending("req-1", slot)
	assert.Equal(t, 1, s.PendingCallCount())

	ok := s.ResolvePending("req-1", ToolResponse{RequestID: "req-1", Success: true})
	assert.True(t, ok)
	assert.Equal(t, 0, s.PendingCallCount())

	resp := <-slot
	assert.True(t, resp.Success)
}

func TestResolvePending_UnknownRequestID(t *testing.T) {
	s := New()
	ok := s.ResolvePending("ghost", ToolResponse{})
	assert.False(t, ok)
}

func TestResolvePending_RedundantDeliveryDiscarded(t *testing.T) {
	s := New()
	slot := make(chan ToolResponse, 1)
	s.RegisterPending("req-1", slot)
	require.True(t, s.ResolvePending("req-1", ToolResponse{RequestID: "req-1", Success: true}))
	assert.False(t, s.ResolvePending("req-1", ToolResponse{RequestID: "req-1", Success: true}))
}

func TestPushLog_EvictsOldestWhenFull(t *testing.T) {
	s := New()
	for i := 0; i < MaxLogBuffer+10; i++ {
		s.PushLog("output", "line", nil)
	}
	assert.Equal(t, MaxLogBuffer, s.LogBufferSize())

	logs := s.GetLogs(0, MaxLogBuffer)
	require.Len(t, logs, MaxLogBuffer)
	assert.Equal(t, uint64(11), logs[0].Seq)
}

func TestPushLog_SeqMonotonic(t *testing.T) {
	s := New()
	s.PushLog("output", "a", nil)
	s.PushLog("warning", "b", nil)
	logs := s.GetLogs(0, 10)
	require.Len(t, logs, 2)
	assert.Equal(t, uint64(1), logs[0].Seq)
	assert.Equal(t, uint64(2), logs[1].Seq)
}

func TestGetLogs_FiltersBySinceSeqAndLimit(t *testing.T) {
	s := New()
	for i := 0; i < 5; i++ {
		s.PushLog("output", "line", nil)
	}
	logs := s.GetLogs(2, 2)
	require.Len(t, logs, 2)
	assert.Equal(t, uint64(3), logs[0].Seq)
	assert.Equal(t, uint64(4), logs[1].Seq)
}

func TestUpdatePlaytest_WholesaleOverwrite(t *testing.T) {
	s := New()
	assert.False(t, s.IsPlaytestActive())

	session := "sess-1"
	mode := "play"
	s.UpdatePlaytest(true, &session, &mode)
	assert.True(t, s.IsPlaytestActive())

	info := s.PlaytestInfo()
	require.NotNil(t, info.SessionID)
	assert.Equal(t, "sess-1", *info.SessionID)

	s.UpdatePlaytest(false, nil, nil)
	assert.False(t, s.IsPlaytestActive())
	assert.Nil(t, s.PlaytestInfo().SessionID)
}

func TestClientInfo_StableOrder(t *testing.T) {
	s := New()
	s.RegisterClient("a")
	s.RegisterClient("b")
	first := s.ClientInfo()
	second := s.ClientInfo()
	require.Len(t, first, 2)
	assert.Equal(t, first[0].ClientID, second[0].ClientID)
	assert.Equal(t, first[1].ClientID, second[1].ClientID)
}
