//go:build unix

package proc

import (
	"os/exec"
	"syscall"
)

// setProcessGroup 把服务器放到独立的进程组，终端的 Ctrl-C 不会直接打断 JVM
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}
