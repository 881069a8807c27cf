//go:build windows

package proc

import (
	"os/exec"
	"syscall"
)

// setProcessGroup Windows系统实现
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}
