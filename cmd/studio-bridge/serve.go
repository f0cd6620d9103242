package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/studiobridge/mcp-bridge/internal/config"
	"github.com/studiobridge/mcp-bridge/internal/events"
	"github.com/studiobridge/mcp-bridge/internal/httpbridge"
	"github.com/studiobridge/mcp-bridge/internal/logging"
	"github.com/studiobridge/mcp-bridge/internal/orchestrator"
	"github.com/studiobridge/mcp-bridge/internal/state"
	"github.com/studiobridge/mcp-bridge/internal/stdio"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP bridge (default command)",
	RunE:  runServe,
}

func init() {
	rootCmd.RunE = runServe
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logFile, err := prepareLogFile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[studio-bridge] warning: no file log sink: %v\n", err)
	}

	log, err := logging.New(cfg.LogLevel, logFile)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	if cfg.CaptureDir != "" {
		if err := os.MkdirAll(cfg.CaptureDir, 0o755); err != nil {
			return fmt.Errorf("create capture_dir: %w", err)
		}
	}

	if pidPath, err := writePIDFile(cfg.Port); err != nil {
		log.Warnw("failed to write pid file", "error", err)
	} else {
		defer func() { _ = os.Remove(pidPath) }()
	}

	sharedState := state.New()
	router := events.New(sharedState, log)
	orch := orchestrator.New(sharedState, log)
	bridgeSrv := httpbridge.New(sharedState, router, cfg.Token, log)
	loop := stdio.New(orch, version, log)

	log.Infow("studio-bridge starting", "port", cfg.Port, "log_level", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpErrCh := make(chan error, 1)
	go func() {
		httpErrCh <- bridgeSrv.ListenAndServe(ctx, cfg.Port)
	}()

	stdioErrCh := make(chan error, 1)
	go func() {
		stdioErrCh <- loop.Run(ctx, os.Stdin, os.Stdout)
	}()

	select {
	case err := <-stdioErrCh:
		// The MCP client closed stdin: shut the HTTP bridge down too.
		stop()
		<-httpErrCh
		return err
	case err := <-httpErrCh:
		stop()
		<-stdioErrCh
		return err
	case <-ctx.Done():
		<-httpErrCh
		<-stdioErrCh
		return nil
	}
}

// prepareLogFile resolves the default structured-log path under the state
// root and ensures its parent directory exists. A non-fatal error here
// just means logging falls back to stderr only.
func prepareLogFile() (string, error) {
	dir, err := state.LogsDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create logs dir: %w", err)
	}
	return state.DefaultLogFile()
}

// writePIDFile records the running process's pid under the state root so
// an operator can locate and signal a stray instance bound to this port.
func writePIDFile(port int) (string, error) {
	path, err := state.PIDFile(port)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create pid dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		return "", fmt.Errorf("write pid file: %w", err)
	}
	return path, nil
}
