// Package httpbridge exposes the HTTP polling side of the bridge: plugin
// registration, long-poll dequeue, response/event ingestion, and a thin
// status endpoint. Binds to loopback only.
package httpbridge

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/studiobridge/mcp-bridge/internal/events"
	"github.com/studiobridge/mcp-bridge/internal/state"
	"github.com/studiobridge/mcp-bridge/internal/util"
)

// ServerVersion is reported to plugins in the /register response.
const ServerVersion = "0.1.0"

// Server is the HTTP polling bridge.
type Server struct {
	state   *state.SharedState
	events  *events.Router
	token   string
	log     *zap.SugaredLogger
	httpSrv *http.Server
}

// New builds a Server bound to the given state and bearer token. An empty
// token disables authentication entirely.
func New(s *state.SharedState, router *events.Router, token string, log *zap.SugaredLogger) *Server {
	return &Server{state: s, events: router, token: token, log: log}
}

// Router builds the gorilla/mux router with every bridge endpoint wired
// and the bearer-token middleware applied to all routes but /health.
func (srv *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", srv.handleHealth).Methods(http.MethodGet)

	authed := r.NewRoute().Subrouter()
	authed.Use(srv.authMiddleware)
	authed.HandleFunc("/register", srv.handleRegister).Methods(http.MethodPost)
	authed.HandleFunc("/pull", srv.handlePull).Methods(http.MethodGet)
	authed.HandleFunc("/push", srv.handlePush).Methods(http.MethodPost)
	authed.HandleFunc("/status", srv.handleStatus).Methods(http.MethodGet)

	return r
}

// ListenAndServe binds to 127.0.0.1:port and serves until ctx is
// cancelled, at which point it shuts down with a short grace window.
func (srv *Server) ListenAndServe(ctx context.Context, port int) error {
	addr := "127.0.0.1:" + strconv.Itoa(port)
	srv.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	util.SafeGo(func() {
		srv.log.Infow("http bridge listening", "addr", addr)
		if err := srv.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	})

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
