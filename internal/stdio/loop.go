// Package stdio implements the MCP stdio JSON-RPC loop: a line-delimited
// reader over stdin, a single serializing writer goroutine over stdout,
// and method dispatch for initialize/ping/tools/list/tools/call.
package stdio

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	brg "github.com/studiobridge/mcp-bridge/internal/bridge"
	"github.com/studiobridge/mcp-bridge/internal/mcp"
	"github.com/studiobridge/mcp-bridge/internal/orchestrator"
	"github.com/studiobridge/mcp-bridge/internal/tools"
	"github.com/studiobridge/mcp-bridge/internal/util"
)

const (
	serverName      = "studio-bridge"
	protocolVersion = "2025-11-25"

	// writerQueueDepth bounds the channel feeding the sole stdout writer,
	// matching the "bounded channel capacity 64" requirement.
	writerQueueDepth = 64
)

// Loop reads line-delimited JSON-RPC requests from r and writes responses
// to w through a single serializing writer goroutine.
type Loop struct {
	orch          *orchestrator.Orchestrator
	log           *zap.SugaredLogger
	serverVersion string
}

// New returns a Loop that dispatches tools/call through orch.
func New(orch *orchestrator.Orchestrator, serverVersion string, log *zap.SugaredLogger) *Loop {
	return &Loop{orch: orch, serverVersion: serverVersion, log: log}
}

// Run blocks reading requests from r until EOF or ctx is cancelled,
// writing every response (and any in-flight tools/call replies) to w.
func (l *Loop) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	writeCh := make(chan []byte, writerQueueDepth)
	writerDone := make(chan struct{})
	util.SafeGo(func() {
		defer close(writerDone)
		for line := range writeCh {
			if _, err := w.Write(line); err != nil {
				return
			}
			if _, err := w.Write([]byte("\n")); err != nil {
				return
			}
			if f, ok := w.(interface{ Flush() error }); ok {
				_ = f.Flush()
			}
		}
	})

	reader := bufio.NewReader(r)

	// ReadStdioMessage blocks on the underlying reader and cannot itself
	// observe ctx cancellation: an MCP host normally holds stdin open for
	// the life of the process, so a read started before shutdown would
	// otherwise never return. Run it on its own goroutine and select
	// against ctx.Done() so a SIGINT/SIGTERM can end the loop without
	// waiting on stdin; the goroutine is abandoned (and reaped with the
	// process) if a read is in flight when that happens.
	lines := make(chan readResult, 1)
	util.SafeGo(func() {
		for {
			line, err := brg.ReadStdioMessage(reader)
			lines <- readResult{line: line, err: err}
			if err != nil {
				return
			}
		}
	})

	var inflight sync.WaitGroup

readLoop:
	for {
		var res readResult
		select {
		case <-ctx.Done():
			break readLoop
		case res = <-lines:
		}

		if res.err != nil {
			if res.err != io.EOF {
				l.log.Warnw("stdin read error", "error", res.err)
			}
			break readLoop
		}
		line := res.line

		var req mcp.JSONRPCRequest
		if parseErr := json.Unmarshal(line, &req); parseErr != nil {
			resp := mcp.JSONRPCResponse{
				JSONRPC: "2.0",
				ID:      nil,
				Error:   &mcp.JSONRPCError{Code: -32700, Message: fmt.Sprintf("Parse error: %v", parseErr)},
			}
			l.send(writeCh, resp)
			continue
		}

		if req.HasInvalidID() {
			resp := mcp.JSONRPCResponse{
				JSONRPC: "2.0",
				ID:      nil,
				Error:   &mcp.JSONRPCError{Code: -32600, Message: "Invalid Request: id must be a string, number, or omitted"},
			}
			l.send(writeCh, resp)
			continue
		}

		if !req.HasID() {
			l.handleNotification(req.Method)
			continue
		}

		if req.Method == "tools/call" {
			reqCopy := req
			inflight.Add(1)
			util.SafeGo(func() {
				defer inflight.Done()
				resp := l.handleRequest(ctx, reqCopy)
				l.send(writeCh, resp)
			})
			continue
		}

		resp := l.handleRequest(ctx, req)
		l.send(writeCh, resp)
	}

	inflight.Wait()
	close(writeCh)
	<-writerDone
	l.log.Infow("stdin closed, MCP session ending")
	return nil
}

// readResult carries one line read from stdin (or the error that ended the
// read loop) across the goroutine boundary described in Run.
type readResult struct {
	line []byte
	err  error
}

func (l *Loop) send(writeCh chan []byte, resp mcp.JSONRPCResponse) {
	encoded, err := json.Marshal(resp)
	if err != nil {
		l.log.Errorw("failed to marshal response", "error", err)
		return
	}
	writeCh <- encoded
}

func (l *Loop) handleNotification(method string) {
	switch method {
	case "notifications/initialized":
		l.log.Infow("MCP client initialized")
	case "notifications/cancelled":
		l.log.Infow("MCP client cancelled a request")
	default:
		l.log.Debugw("unknown notification", "method", method)
	}
}

func (l *Loop) handleRequest(ctx context.Context, req mcp.JSONRPCRequest) mcp.JSONRPCResponse {
	var result json.RawMessage
	var rpcErr *mcp.JSONRPCError

	switch req.Method {
	case "initialize":
		result = l.handleInitialize()
	case "ping":
		result = json.RawMessage(`{}`)
	case "tools/list":
		result = l.handleToolsList()
	case "tools/call":
		result, rpcErr = l.orch.HandleToolsCall(ctx, req.Params)
	default:
		rpcErr = &mcp.JSONRPCError{Code: -32601, Message: fmt.Sprintf("Method not found: %s", req.Method)}
	}

	resp := mcp.JSONRPCResponse{JSONRPC: "2.0", ID: req.ID}
	if rpcErr != nil {
		resp.Error = rpcErr
	} else {
		resp.Result = result
	}
	return resp
}

func (l *Loop) handleInitialize() json.RawMessage {
	result := mcp.MCPInitializeResult{
		ProtocolVersion: protocolVersion,
		ServerInfo:      mcp.MCPServerInfo{Name: serverName, Version: l.serverVersion},
		Capabilities:    mcp.MCPCapabilities{Tools: mcp.MCPToolsCapability{}},
	}
	return mcp.SafeMarshal(result, `{"protocolVersion":"2025-11-25","capabilities":{"tools":{}},"serverInfo":{"name":"studio-bridge","version":"0.0.0"}}`)
}

func (l *Loop) handleToolsList() json.RawMessage {
	defs := tools.Catalog()
	list := make([]mcp.MCPTool, 0, len(defs))
	for _, d := range defs {
		list = append(list, mcp.MCPTool{
			Name:        d.Name,
			Description: d.Description,
			InputSchema: d.InputSchema,
		})
	}
	return mcp.SafeMarshal(mcp.MCPToolsListResult{Tools: list}, `{"tools":[]}`)
}
