//go:build !unix && !windows

package proc

import "os/exec"

// 默认实现，用于不支持的构建目标
func setProcessGroup(cmd *exec.Cmd) {}
