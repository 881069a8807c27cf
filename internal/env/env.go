package env

import (
	"os"
	"path/filepath"
)

// 由构建脚本通过 -ldflags 注入
var Version string = "dev"

// (default: %USERPROFILE%/.mcsmp on Windows, $HOME/.mcsmp on Linux)
var McsmpDir string = GetMcsmpDir()

/**
 * Get mcsmp directory path
 * @returns {string} Returns mcsmp directory path
 */
func GetMcsmpDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".mcsmp")
}

/**
 * Get default directory holding server instances
 * @returns {string} Returns absolute path of the working directory, or "." on failure
 */
func GetDefaultInstancesDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
