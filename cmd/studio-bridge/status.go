package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/studiobridge/mcp-bridge/internal/bridge"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Query a running studio-bridge's /status endpoint once and exit",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().Duration("wait", 0, "wait up to this duration for the server to come up before querying it")
	statusCmd.Flags().Bool("check-register", false, "probe the /register endpoint instead of /status, as a plugin would on connect")
}

func runStatus(cmd *cobra.Command, args []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return err
	}
	token, err := cmd.Flags().GetString("token")
	if err != nil {
		return err
	}
	wait, err := cmd.Flags().GetDuration("wait")
	if err != nil {
		return err
	}
	checkRegister, err := cmd.Flags().GetBool("check-register")
	if err != nil {
		return err
	}

	if wait > 0 {
		if !bridge.WaitForServer(port, wait) {
			return fmt.Errorf("no studio-bridge server responding on port %d after waiting %s", port, wait)
		}
	} else if !bridge.IsServerRunning(port) {
		return fmt.Errorf("no studio-bridge server responding on port %d", port)
	}

	if checkRegister {
		return runRegisterCheck(cmd, port, token)
	}

	client := &http.Client{Timeout: 2 * time.Second}
	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("http://127.0.0.1:%d/status", port), nil) // #nosec G704 -- localhost-only status probe
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request /status: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read /status response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("/status returned %d: %s", resp.StatusCode, string(body))
	}

	printPretty(cmd, body)
	return nil
}

// registerProbe mirrors the plugin registration payload, used to verify the
// full HTTP round-trip a Studio plugin would make on connect.
type registerProbe struct {
	PluginVersion string `json:"plugin_version"`
}

func runRegisterCheck(cmd *cobra.Command, port int, token string) error {
	headers := map[string]string{}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}

	body, err := json.Marshal(registerProbe{PluginVersion: "studio-bridge-cli-diagnostic"})
	if err != nil {
		return fmt.Errorf("build register probe: %w", err)
	}

	client := &http.Client{Timeout: 2 * time.Second}
	endpoint := fmt.Sprintf("http://127.0.0.1:%d/register", port)
	resp, err := bridge.DoHTTP(cmd.Context(), client, endpoint, body, headers)
	if err != nil {
		return fmt.Errorf("register probe: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read register probe response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("register probe returned %d: %s", resp.StatusCode, string(respBody))
	}

	printPretty(cmd, respBody)
	return nil
}

func printPretty(cmd *cobra.Command, body []byte) {
	var pretty map[string]any
	if err := json.Unmarshal(body, &pretty); err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), string(body))
		return
	}
	encoded, err := json.MarshalIndent(pretty, "", "  ")
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), string(body))
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
}
