// state.go — Shared state machine: client registry, pending-reply table,
// bounded log ring, and playtest snapshot. Exclusive custody of all
// mutable cross-task data, mirroring the teacher's daemonState pattern of
// a struct with private sync.Mutex-guarded fields and public accessors.
package state

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MaxLogBuffer bounds the in-memory log ring.
const MaxLogBuffer = 500

// ToolRequest is an outbound request queued for a plugin to pull.
type ToolRequest struct {
	RequestID string          `json:"request_id"`
	ToolName  string          `json:"tool_name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolResponse is an inbound reply correlated to a ToolRequest by RequestID.
type ToolResponse struct {
	RequestID string          `json:"request_id"`
	Success   bool            `json:"success"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// LogEntry is a single buffered log line emitted by a plugin.
type LogEntry struct {
	Seq       uint64  `json:"seq"`
	TS        float64 `json:"ts"`
	Level     string  `json:"level"`
	Message   string  `json:"message"`
	SessionID *string `json:"session_id,omitempty"`
}

// PlaytestState is a process-wide singleton snapshot, replaced wholesale
// on each studio.playtest_state event.
type PlaytestState struct {
	Active    bool    `json:"active"`
	SessionID *string `json:"session_id,omitempty"`
	Mode      *string `json:"mode,omitempty"`
}

// ClientSummary is a read-only introspection view of a registered client.
type ClientSummary struct {
	ClientID         string
	PluginVersion    string
	LastPoll         time.Time
	IsPlaytestBridge bool
}

// client is a registered plugin session. Guarded by SharedState.clientsMu.
type client struct {
	pluginVersion string
	outboundQueue []ToolRequest
	wake          chan struct{}
	lastPoll      time.Time
}

func (c *client) isPlaytestBridge() bool {
	return strings.Contains(c.pluginVersion, "playtest")
}

// preferBridgeTools names tools that must execute in the playtest context
// (the second plugin session registered while a playtest is running).
var preferBridgeTools = map[string]bool{
	"studio-virtualuser_key":          true,
	"studio-virtualuser_mouse_button": true,
	"studio-virtualuser_move_mouse":   true,
	"studio-npc_driver_start":         true,
	"studio-npc_driver_command":       true,
	"studio-npc_driver_stop":          true,
	"studio-playtest_stop":            true,
}

// SharedState holds every piece of mutable cross-task data behind
// fine-grained locks: one per logical field, per the concurrency model.
type SharedState struct {
	clientsMu sync.Mutex
	clients   map[string]*client

	pendingMu sync.Mutex
	pending   map[string]chan ToolResponse

	logSeqMu sync.Mutex
	logSeq   uint64

	logBufMu sync.Mutex
	logBuf   []LogEntry

	playtestMu sync.Mutex
	playtest   PlaytestState
}

// New returns an empty SharedState ready for use.
func New() *SharedState {
	return &SharedState{
		clients: make(map[string]*client),
		pending: make(map[string]chan ToolResponse),
		logBuf:  make([]LogEntry, 0, MaxLogBuffer),
	}
}

// ─── Client management ────────────────────────────────────────────────

// RegisterClient inserts a fresh client entry and returns its minted ID.
func (s *SharedState) RegisterClient(pluginVersion string) string {
	clientID := uuid.NewString()
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[clientID] = &client{
		pluginVersion: pluginVersion,
		wake:          make(chan struct{}, 1),
		lastPoll:      time.Now(),
	}
	return clientID
}

// pruneStaleLocked removes clients whose last completed /pull is before
// cutoff. Must be called with clientsMu held.
func (s *SharedState) pruneStaleLocked(cutoff time.Time) {
	for id, c := range s.clients {
		if c.lastPoll.Before(cutoff) {
			delete(s.clients, id)
		}
	}
}

// HasConnectedClient prunes stale clients, then reports whether any remain.
func (s *SharedState) HasConnectedClient() bool {
	return s.ConnectedClientCount() > 0
}

// ConnectedClientCount prunes stale clients, then returns the live count.
func (s *SharedState) ConnectedClientCount() int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.pruneStaleLocked(time.Now().Add(-clientPruneTimeout))
	return len(s.clients)
}

// FirstClientID returns an arbitrary connected client's ID, or "" if none.
func (s *SharedState) FirstClientID() string {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for id := range s.clients {
		return id
	}
	return ""
}

// ClientInfo returns a stable-ordered snapshot of every registered client.
func (s *SharedState) ClientInfo() []ClientSummary {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	out := make([]ClientSummary, 0, len(s.clients))
	for id, c := range s.clients {
		out = append(out, ClientSummary{
			ClientID:         id,
			PluginVersion:    c.pluginVersion,
			LastPoll:         c.lastPoll,
			IsPlaytestBridge: c.isPlaytestBridge(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClientID < out[j].ClientID })
	return out
}

// EnqueueToolRequest applies the routing policy to pick a target client,
// appends req to its queue, and signals its wake channel. Returns false
// iff no clients are registered.
func (s *SharedState) EnqueueToolRequest(req ToolRequest) bool {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	if len(s.clients) == 0 {
		return false
	}

	prefersBridge := preferBridgeTools[req.ToolName]

	ids := make([]string, 0, len(s.clients))
	for id := range s.clients {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var targetID string
	for _, id := range ids {
		if s.clients[id].isPlaytestBridge() == prefersBridge {
			targetID = id
			break
		}
	}
	if targetID == "" {
		// >= rather than strict After: on an exact-timestamp tie, keep the
		// last candidate in sorted-id order, matching the original's
		// max_by_key (which returns the last maximal element).
		var bestPoll time.Time
		for _, id := range ids {
			c := s.clients[id]
			if targetID == "" || !c.lastPoll.Before(bestPoll) {
				targetID = id
				bestPoll = c.lastPoll
			}
		}
	}

	target := s.clients[targetID]
	target.outboundQueue = append(target.outboundQueue, req)
	select {
	case target.wake <- struct{}{}:
	default:
	}
	return true
}

// DrainOutbound atomically takes clientID's queue and refreshes its
// last-poll timestamp. Returns an empty (non-nil) slice if the client is
// unknown or has nothing queued.
func (s *SharedState) DrainOutbound(clientID string) []ToolRequest {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	c, ok := s.clients[clientID]
	if !ok {
		return []ToolRequest{}
	}
	c.lastPoll = time.Now()
	drained := c.outboundQueue
	c.outboundQueue = nil
	if drained == nil {
		return []ToolRequest{}
	}
	return drained
}

// GetWake returns clientID's wakeup channel and whether it is known.
func (s *SharedState) GetWake(clientID string) (chan struct{}, bool) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	c, ok := s.clients[clientID]
	if !ok {
		return nil, false
	}
	return c.wake, true
}

// ─── Pending calls ─────────────────────────────────────────────────────

// RegisterPending stores the one-shot reply slot keyed by requestID.
func (s *SharedState) RegisterPending(requestID string, slot chan ToolResponse) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	s.pending[requestID] = slot
}

// ResolvePending delivers resp to the pending slot and removes it.
// Returns false if no slot was registered under requestID.
func (s *SharedState) ResolvePending(requestID string, resp ToolResponse) bool {
	s.pendingMu.Lock()
	slot, ok := s.pending[requestID]
	if ok {
		delete(s.pending, requestID)
	}
	s.pendingMu.Unlock()
	if !ok {
		return false
	}
	select {
	case slot <- resp:
	default:
	}
	return true
}

// DropPending removes requestID's slot without delivering a response,
// used when the orchestrator's wait deadline expires.
func (s *SharedState) DropPending(requestID string) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	delete(s.pending, requestID)
}

// PendingCallCount reports how many tool calls are awaiting a reply.
func (s *SharedState) PendingCallCount() int {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	return len(s.pending)
}

// ─── Log buffer ─────────────────────────────────────────────────────────

// PushLog appends a new log entry, evicting the oldest if the ring is full.
func (s *SharedState) PushLog(level, message string, sessionID *string) {
	s.logSeqMu.Lock()
	s.logSeq++
	seq := s.logSeq
	s.logSeqMu.Unlock()

	entry := LogEntry{
		Seq:       seq,
		TS:        float64(time.Now().UnixMilli()) / 1000.0,
		Level:     level,
		Message:   message,
		SessionID: sessionID,
	}

	s.logBufMu.Lock()
	defer s.logBufMu.Unlock()
	if len(s.logBuf) >= MaxLogBuffer {
		s.logBuf = s.logBuf[1:]
	}
	s.logBuf = append(s.logBuf, entry)
}

// GetLogs returns buffered entries with Seq > sinceSeq, oldest first,
// capped at limit entries.
func (s *SharedState) GetLogs(sinceSeq uint64, limit int) []LogEntry {
	s.logBufMu.Lock()
	defer s.logBufMu.Unlock()
	out := make([]LogEntry, 0, limit)
	for _, e := range s.logBuf {
		if e.Seq <= sinceSeq {
			continue
		}
		out = append(out, e)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// LogBufferSize reports the current number of buffered log entries.
func (s *SharedState) LogBufferSize() int {
	s.logBufMu.Lock()
	defer s.logBufMu.Unlock()
	return len(s.logBuf)
}

// ─── Playtest state ─────────────────────────────────────────────────────

// UpdatePlaytest wholesale-overwrites the playtest snapshot.
func (s *SharedState) UpdatePlaytest(active bool, sessionID, mode *string) {
	s.playtestMu.Lock()
	defer s.playtestMu.Unlock()
	s.playtest = PlaytestState{Active: active, SessionID: sessionID, Mode: mode}
}

// IsPlaytestActive reports whether a playtest session is currently active.
func (s *SharedState) IsPlaytestActive() bool {
	s.playtestMu.Lock()
	defer s.playtestMu.Unlock()
	return s.playtest.Active
}

// PlaytestInfo returns a copy of the current playtest snapshot.
func (s *SharedState) PlaytestInfo() PlaytestState {
	s.playtestMu.Lock()
	defer s.playtestMu.Unlock()
	return s.playtest
}

const clientPruneTimeout = 60 * time.Second
