// timeout.go — Fixed deadlines for the bridge's two blocking operations.
package bridge

import "time"

// PullTimeout bounds how long GET /pull may block awaiting a wakeup
// before returning an empty drain.
const PullTimeout = 25 * time.Second

// ToolCallTimeout bounds how long a tools/call orchestration may wait
// for a plugin reply before surfacing a timeout error to the caller.
const ToolCallTimeout = 30 * time.Second

// ClientPruneTimeout is the liveness cutoff: a client with no completed
// /pull within this window is considered gone.
const ClientPruneTimeout = 60 * time.Second
