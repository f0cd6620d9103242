// catalog.go — Baseline studio-* tool definitions and the unsupported-tool
// rejection table, ported from the Rust original's tool_definitions().
package tools

// ToolDefinition describes one MCP tool: its name, a one-line human
// description, and its JSON Schema for argument validation.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
}

func schema(properties map[string]any, required ...string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func noProps() map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           map[string]any{},
		"additionalProperties": false,
	}
}

// Catalog returns the full baseline studio-* tool list in a stable order.
func Catalog() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        "studio-status",
			Description: "Get Studio connection status and playtest state",
			InputSchema: noProps(),
		},
		{
			Name:        "studio-run_script",
			Description: "Execute Luau code in Roblox Studio. Returns the result and any captured log output.",
			InputSchema: schema(map[string]any{
				"code": map[string]any{
					"type":        "string",
					"description": "Luau source code to execute in Studio's plugin context",
				},
				"mode": map[string]any{
					"type":        "string",
					"enum":        []string{"module", "command"},
					"description": "Execution mode (default: module)",
				},
				"allowInPlay": map[string]any{
					"type":        "boolean",
					"description": "Allow execution during a playtest session (default: false)",
				},
				"captureLogsMs": map[string]any{
					"type":        "number",
					"description": "Milliseconds to capture log output after execution (default: 0)",
				},
			}, "code"),
		},
		{
			Name:        "studio-checkpoint_begin",
			Description: "Begin a ChangeHistoryService recording for undo/redo tracking",
			InputSchema: schema(map[string]any{
				"name": map[string]any{
					"type":        "string",
					"description": "Human-readable name for this checkpoint",
				},
			}, "name"),
		},
		{
			Name:        "studio-checkpoint_end",
			Description: "End and commit a ChangeHistoryService recording",
			InputSchema: schema(map[string]any{
				"checkpointId": map[string]any{
					"type":        "string",
					"description": "Recording ID from checkpoint_begin",
				},
				"commitMessage": map[string]any{
					"type":        "string",
					"description": "Optional commit description",
				},
			}, "checkpointId"),
		},
		{
			Name:        "studio-checkpoint_undo",
			Description: "Undo the last checkpoint or a specific checkpoint",
			InputSchema: schema(map[string]any{
				"checkpointId": map[string]any{
					"type":        "string",
					"description": "Optional: specific checkpoint to undo to",
				},
			}),
		},
		{
			Name:        "studio-playtest_start",
			Description: "Start a playtest session in Roblox Studio",
			InputSchema: schema(map[string]any{
				"mode": map[string]any{
					"type":        "string",
					"enum":        []string{"play", "run", "startServer"},
					"description": "Playtest mode: 'play' (client+server), 'run' (server only), 'startServer' (team test)",
				},
			}, "mode"),
		},
		{
			Name:        "studio-playtest_stop",
			Description: "Stop the current playtest session",
			InputSchema: schema(map[string]any{
				"sessionId": map[string]any{
					"type":        "string",
					"description": "Optional session ID to stop",
				},
			}),
		},
		{
			Name:        "studio-logs_subscribe",
			Description: "Subscribe to Studio log output via LogService. Returns existing history.",
			InputSchema: schema(map[string]any{
				"channels": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string", "enum": []string{"output", "info", "warning", "error"}},
					"description": "Log levels to subscribe to (default: all)",
				},
				"includeHistory": map[string]any{
					"type":        "boolean",
					"description": "Include existing log history (default: true)",
				},
				"maxHistory": map[string]any{
					"type":        "number",
					"description": "Max history entries to return (default: 200)",
				},
			}),
		},
		{
			Name:        "studio-logs_unsubscribe",
			Description: "Unsubscribe from Studio log output",
			InputSchema: noProps(),
		},
		{
			Name:        "studio-logs_get",
			Description: "Fetch buffered log entries",
			InputSchema: schema(map[string]any{
				"sinceSeq": map[string]any{
					"type":        "number",
					"description": "Return logs after this sequence number",
				},
				"limit": map[string]any{
					"type":        "number",
					"description": "Max entries to return (default: 200)",
				},
				"levels": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string", "enum": []string{"output", "info", "warning", "error"}},
					"description": "Filter by log level",
				},
			}),
		},
		{
			Name:        "studio-virtualuser_attach",
			Description: "Attach VirtualUser controller for input simulation during playtests",
			InputSchema: schema(map[string]any{
				"target": map[string]any{
					"type":        "string",
					"enum":        []string{"playtest", "edit"},
					"description": "Target context (default: playtest)",
				},
			}),
		},
		{
			Name:        "studio-virtualuser_key",
			Description: "Simulate keyboard input via VirtualUser",
			InputSchema: schema(map[string]any{
				"keyCode": map[string]any{
					"type":        "string",
					"description": "Roblox KeyCode name (e.g. 'W', 'Space', 'Return', 'LeftShift')",
				},
				"action": map[string]any{
					"type":        "string",
					"enum":        []string{"down", "up", "type"},
					"description": "'type' = press+release, 'down' = hold, 'up' = release",
				},
			}, "keyCode", "action"),
		},
		{
			Name:        "studio-virtualuser_mouse_button",
			Description: "Simulate mouse button input via VirtualUser",
			InputSchema: schema(map[string]any{
				"button": map[string]any{
					"type":        "integer",
					"enum":        []int{1, 2},
					"description": "Mouse button: 1=left, 2=right",
				},
				"action": map[string]any{
					"type":        "string",
					"enum":        []string{"down", "up", "click"},
					"description": "'click' = press+release",
				},
				"position": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"x": map[string]any{"type": "number"},
						"y": map[string]any{"type": "number"},
					},
					"required":    []string{"x", "y"},
					"description": "Screen-space pixel coordinates",
				},
			}, "button", "action"),
		},
		{
			Name:        "studio-virtualuser_move_mouse",
			Description: "Move the virtual mouse cursor to screen coordinates",
			InputSchema: schema(map[string]any{
				"position": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"x": map[string]any{"type": "number"},
						"y": map[string]any{"type": "number"},
					},
					"required": []string{"x", "y"},
				},
			}, "position"),
		},
		{
			Name:        "studio-npc_driver_start",
			Description: "Start an NPC automation driver to control a character in a playtest",
			InputSchema: schema(map[string]any{
				"driverName": map[string]any{
					"type":        "string",
					"description": "Name for this driver instance (default: MCPDriver)",
				},
				"mode": map[string]any{
					"type": "string",
					"enum": []string{"playerInput", "scriptedNPC"},
				},
				"npcPath": map[string]any{
					"type":        "string",
					"description": "Path to NPC model in workspace (required if scriptedNPC mode)",
				},
			}, "mode"),
		},
		{
			Name:        "studio-npc_driver_command",
			Description: "Send a command to an active NPC driver",
			InputSchema: schema(map[string]any{
				"driverId": map[string]any{
					"type":        "string",
					"description": "Driver ID from npc_driver_start",
				},
				"command": map[string]any{
					"type":        "object",
					"description": "Command object with 'type' field: move_to, jump, interact, wait, set_walkspeed",
					"properties": map[string]any{
						"type": map[string]any{
							"type": "string",
							"enum": []string{"move_to", "jump", "interact", "wait", "set_walkspeed"},
						},
						"position": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"x": map[string]any{"type": "number"},
								"y": map[string]any{"type": "number"},
								"z": map[string]any{"type": "number"},
							},
						},
						"targetPath": map[string]any{"type": "string"},
						"ms":         map[string]any{"type": "number"},
						"value":      map[string]any{"type": "number"},
					},
					"required": []string{"type"},
				},
			}, "driverId", "command"),
		},
		{
			Name:        "studio-npc_driver_stop",
			Description: "Stop an active NPC driver",
			InputSchema: schema(map[string]any{
				"driverId": map[string]any{
					"type":        "string",
					"description": "Driver ID to stop",
				},
			}, "driverId"),
		},
		{
			Name:        "studio-capture_screenshot",
			Description: "Capture a screenshot of the Studio viewport. Saves to the capture folder on disk.",
			InputSchema: schema(map[string]any{
				"tag": map[string]any{
					"type":        "string",
					"description": "Tag for this capture (e.g. 'after_jump', 'menu_open')",
				},
				"includeUI": map[string]any{
					"type":        "boolean",
					"description": "Include UI elements if supported",
				},
			}),
		},
		{
			Name:        "studio-capture_video_start",
			Description: "Start recording video of the Studio viewport",
			InputSchema: schema(map[string]any{
				"tag": map[string]any{
					"type":        "string",
					"description": "Tag for this recording",
				},
				"maxSeconds": map[string]any{
					"type":        "number",
					"description": "Maximum recording duration in seconds (default: 10)",
				},
			}),
		},
		{
			Name:        "studio-capture_video_stop",
			Description: "Stop video recording",
			InputSchema: schema(map[string]any{
				"recordingId": map[string]any{
					"type":        "string",
					"description": "Recording ID to stop",
				},
			}),
		},
	}
}

// unsupported maps a disabled tool name to the fixed rejection message
// returned in its place. Empty by default; an operator can populate this
// to disable specific tools without a code change.
var unsupported = map[string]string{}

// Unsupported reports whether name is disabled, and if so, the message to
// surface to the caller in place of forwarding the call.
func Unsupported(name string) (string, bool) {
	msg, ok := unsupported[name]
	return msg, ok
}

// Lookup returns the ToolDefinition for name, if present in the catalog.
func Lookup(name string) (ToolDefinition, bool) {
	for _, t := range Catalog() {
		if t.Name == name {
			return t, true
		}
	}
	return ToolDefinition{}, false
}
