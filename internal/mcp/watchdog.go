package mcp

import (
	"context"
	"os"
	"time"

	"waypoint/internal/logging"
)

// WatchParent monitors for parent process death in a background
// goroutine. When the parent PID changes (the editor disconnected or
// restarted its extension host), it calls cancelFn to trigger graceful
// shutdown so waypoint MCP processes do not accumulate as zombies.
//
// This must NOT read from stdin — the SDK's StdioTransport owns stdin
// exclusively; stealing bytes here would corrupt the JSON-RPC stream.
func WatchParent(ctx context.Context, cancelFn context.CancelFunc) {
	ppid := os.Getppid()
	log := logging.New("mcp")
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(2 * time.Second):
				if os.Getppid() != ppid {
					log.Warn("parent process died, initiating shutdown", "was_pid", ppid)
					cancelFn()
					return
				}
			}
		}
	}()
}
