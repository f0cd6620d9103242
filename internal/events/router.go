// Package events classifies inbound events pushed by plugins and applies
// them to shared state: studio.log entries feed the log ring, and
// studio.playtest_state updates replace the playtest snapshot wholesale.
package events

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/studiobridge/mcp-bridge/internal/state"
)

// Event is one inbound event carried by a /push payload.
type Event struct {
	EventType string          `json:"event_type"`
	Data      json.RawMessage `json:"data"`
}

// Router applies inbound events to shared state, with all fields
// extracted defensively: missing or ill-typed fields fall back to
// defaults without failing the whole push.
type Router struct {
	state *state.SharedState
	log   *zap.SugaredLogger
}

// New returns a Router bound to the given shared state.
func New(s *state.SharedState, log *zap.SugaredLogger) *Router {
	return &Router{state: s, log: log}
}

// Dispatch classifies and applies a single event.
func (r *Router) Dispatch(ev Event) {
	switch ev.EventType {
	case "studio.log":
		r.handleLog(ev.Data)
	case "studio.playtest_state":
		r.handlePlaytestState(ev.Data)
	case "studio.capture":
		r.log.Debugw("capture event received", "data", string(ev.Data))
	default:
		r.log.Debugw("unknown event type", "event_type", ev.EventType)
	}
}

func (r *Router) handleLog(data json.RawMessage) {
	var fields struct {
		Level     string `json:"level"`
		Message   string `json:"message"`
		SessionID string `json:"sessionId"`
	}
	_ = json.Unmarshal(data, &fields)
	if fields.Level == "" {
		fields.Level = "output"
	}
	var sessionID *string
	if fields.SessionID != "" {
		sessionID = &fields.SessionID
	}
	r.state.PushLog(fields.Level, fields.Message, sessionID)
}

func (r *Router) handlePlaytestState(data json.RawMessage) {
	var fields struct {
		Active    bool   `json:"active"`
		SessionID string `json:"sessionId"`
		Mode      string `json:"mode"`
	}
	_ = json.Unmarshal(data, &fields)
	var sessionID, mode *string
	if fields.SessionID != "" {
		sessionID = &fields.SessionID
	}
	if fields.Mode != "" {
		mode = &fields.Mode
	}
	r.state.UpdatePlaytest(fields.Active, sessionID, mode)
}
