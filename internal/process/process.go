// Package process ties external converter processes to a context so a
// cancelled render never leaves a converter (or its children) running.
package process

import (
	"os/exec"
	"time"
)

// waitDelay bounds how long Wait blocks on output pipes after the process is killed.
const waitDelay = 2 * time.Second

// BindToContext prepares a command created with exec.CommandContext so that
// context cancellation kills the whole process group, not just the leader.
func BindToContext(cmd *exec.Cmd) {
	Isolate(cmd)
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		KillProcessGroup(cmd.Process.Pid)
		return cmd.Process.Kill()
	}
	cmd.WaitDelay = waitDelay
}
