package httpbridge

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/studiobridge/mcp-bridge/internal/bridge"
	"github.com/studiobridge/mcp-bridge/internal/events"
	"github.com/studiobridge/mcp-bridge/internal/state"
	"github.com/studiobridge/mcp-bridge/internal/util"
)

type registerRequest struct {
	PluginVersion string `json:"plugin_version"`
}

type registerResponse struct {
	ClientID      string `json:"client_id"`
	ServerVersion string `json:"server_version"`
}

func (srv *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body registerRequest
	_ = json.NewDecoder(r.Body).Decode(&body)
	version := body.PluginVersion
	if version == "" {
		version = "unknown"
	}

	clientID := srv.state.RegisterClient(version)
	srv.log.Infow("plugin registered", "client_id", clientID, "plugin_version", version)

	util.JSONResponse(w, http.StatusOK, registerResponse{
		ClientID:      clientID,
		ServerVersion: ServerVersion,
	})
}

func (srv *Server) handlePull(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("clientId")

	if reqs := srv.state.DrainOutbound(clientID); len(reqs) > 0 {
		util.JSONResponse(w, http.StatusOK, reqs)
		return
	}

	wake, ok := srv.state.GetWake(clientID)
	if !ok {
		http.Error(w, "Unknown clientId", http.StatusNotFound)
		return
	}

	select {
	case <-wake:
		util.JSONResponse(w, http.StatusOK, srv.state.DrainOutbound(clientID))
	case <-time.After(bridge.PullTimeout):
		util.JSONResponse(w, http.StatusOK, []state.ToolRequest{})
	case <-r.Context().Done():
	}
}

type pushPayload struct {
	Responses []state.ToolResponse `json:"responses"`
	Events    []events.Event       `json:"events"`
}

func (srv *Server) handlePush(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("clientId")

	var body pushPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	srv.log.Debugw("push received", "client_id", clientID, "responses", len(body.Responses), "events", len(body.Events))

	for _, resp := range body.Responses {
		if !srv.state.ResolvePending(resp.RequestID, resp) {
			srv.log.Warnw("no pending call found for response", "request_id", resp.RequestID)
		}
	}

	for _, ev := range body.Events {
		srv.events.Dispatch(ev)
	}

	util.JSONResponse(w, http.StatusOK, map[string]bool{"ok": true})
}

func (srv *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type statusResponse struct {
	ConnectedClients int  `json:"connected_clients"`
	PendingCalls     int  `json:"pending_calls"`
	LogBufferSize    int  `json:"log_buffer_size"`
	PlaytestActive   bool `json:"playtest_active"`
}

func (srv *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	util.JSONResponse(w, http.StatusOK, statusResponse{
		ConnectedClients: srv.state.ConnectedClientCount(),
		PendingCalls:     srv.state.PendingCallCount(),
		LogBufferSize:    srv.state.LogBufferSize(),
		PlaytestActive:   srv.state.IsPlaytestActive(),
	})
}
