// Package orchestrator implements the tool-call orchestrator: given a
// tools/call request, it allocates a request id, registers a pending
// waiter, routes the request to a plugin, and awaits the reply with a
// deadline, per the bridge's routing and timeout policy.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/studiobridge/mcp-bridge/internal/bridge"
	"github.com/studiobridge/mcp-bridge/internal/mcp"
	"github.com/studiobridge/mcp-bridge/internal/state"
	"github.com/studiobridge/mcp-bridge/internal/tools"
)

// Orchestrator routes tools/call requests to connected plugins and
// surfaces their replies (or failures) as MCP tool results.
type Orchestrator struct {
	state *state.SharedState
	log   *zap.SugaredLogger
}

// New returns an Orchestrator bound to the given shared state.
func New(s *state.SharedState, log *zap.SugaredLogger) *Orchestrator {
	return &Orchestrator{state: s, log: log}
}

type callParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// HandleToolsCall executes the orchestration steps for a tools/call
// request and returns the result payload for a JSON-RPC success response.
// Protocol-level failures (missing/invalid "name") are returned as a
// JSON-RPC error instead.
func (o *Orchestrator) HandleToolsCall(ctx context.Context, params json.RawMessage) (json.RawMessage, *mcp.JSONRPCError) {
	var p callParams
	if err := json.Unmarshal(params, &p); err != nil || p.Name == "" {
		return nil, &mcp.JSONRPCError{Code: -32602, Message: "Invalid params: missing 'name'"}
	}
	if p.Arguments == nil {
		p.Arguments = json.RawMessage("{}")
	}

	if p.Name == "studio-status" {
		return o.handleStatusTool(), nil
	}

	if msg, disabled := tools.Unsupported(p.Name); disabled {
		return mcp.ErrorResponse(msg), nil
	}

	if def, known := tools.Lookup(p.Name); known {
		if warnings := mcp.ValidateParamsAgainstSchema(p.Arguments, def.InputSchema); len(warnings) > 0 {
			o.log.Warnw("tool call has unexpected arguments", "tool", p.Name, "warnings", warnings)
		}
	}

	if !o.state.HasConnectedClient() {
		return mcp.ErrorResponse("No Roblox Studio plugin connected."), nil
	}

	requestID := uuid.NewString()
	slot := make(chan state.ToolResponse, 1)
	o.state.RegisterPending(requestID, slot)

	req := state.ToolRequest{RequestID: requestID, ToolName: p.Name, Arguments: p.Arguments}
	if !o.state.EnqueueToolRequest(req) {
		o.state.DropPending(requestID)
		return mcp.ErrorResponse("Failed to enqueue tool request to plugin"), nil
	}

	o.log.Infow("forwarding tool call to plugin", "tool", p.Name, "request_id", requestID)

	waitCtx, cancel := context.WithTimeout(ctx, bridge.ToolCallTimeout)
	defer cancel()

	select {
	case resp, ok := <-slot:
		if !ok {
			return mcp.ErrorResponse("Plugin disconnected while processing tool call"), nil
		}
		return o.formatReply(resp), nil
	case <-waitCtx.Done():
		o.state.DropPending(requestID)
		o.log.Warnw("tool call timed out", "tool", p.Name, "request_id", requestID)
		return mcp.ErrorResponse(fmt.Sprintf(
			"Tool call '%s' timed out after %ds. Is the Studio plugin running?",
			p.Name, int(bridge.ToolCallTimeout.Seconds()),
		)), nil
	}
}

func (o *Orchestrator) formatReply(resp state.ToolResponse) json.RawMessage {
	if !resp.Success {
		errMsg := resp.Error
		if errMsg == "" {
			errMsg = "Unknown plugin error"
		}
		return mcp.ErrorResponse(errMsg)
	}

	if len(resp.Result) == 0 {
		return mcp.TextResponse("ok")
	}

	var asString string
	if json.Unmarshal(resp.Result, &asString) == nil {
		return mcp.TextResponse(asString)
	}

	pretty, err := json.MarshalIndent(json.RawMessage(resp.Result), "", "  ")
	if err != nil {
		return mcp.TextResponse(string(resp.Result))
	}
	return mcp.TextResponse(string(pretty))
}

func (o *Orchestrator) handleStatusTool() json.RawMessage {
	connected := o.state.HasConnectedClient()
	clientID := o.state.FirstClientID()
	playtest := o.state.PlaytestInfo()

	clients := o.state.ClientInfo()
	summaries := make([]map[string]any, 0, len(clients))
	for _, c := range clients {
		summaries = append(summaries, map[string]any{
			"clientId":         c.ClientID,
			"pluginVersion":    c.PluginVersion,
			"isPlaytestBridge": c.IsPlaytestBridge,
		})
	}

	body := map[string]any{
		"connected": connected,
		"clientId":  clientID,
		"clients":   summaries,
		"playtest": map[string]any{
			"active":    playtest.Active,
			"sessionId": playtest.SessionID,
			"mode":      playtest.Mode,
		},
	}
	pretty, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		return mcp.ErrorResponse("Internal error: failed to marshal status")
	}
	return mcp.TextResponse(string(pretty))
}
