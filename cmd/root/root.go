package root

import (
	"io"
	"os"

	"github.com/System-rat/mcsmp/internal/config"
	"github.com/System-rat/mcsmp/internal/logger"
	"github.com/System-rat/mcsmp/internal/proc"
	"github.com/System-rat/mcsmp/internal/utils"
	"github.com/System-rat/mcsmp/internal/versions"
	"github.com/System-rat/mcsmp/services"

	"github.com/spf13/cobra"
)

var (
	configPath    string
	instancesPath string
)

var RootCmd = &cobra.Command{
	Use:          "mcsmp",
	Short:        "Minecraft 服务器管理程序",
	Long:         `mcsmp管理多个Minecraft服务器实例的下载、更新、启动、配置和控制台`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if instancesPath != "" {
			cfg.Instances.Path = instancesPath
		}
		// 服务器模式下日志同时写控制台
		return logger.InitLogger(logger.Options{
			Level:   cfg.Log.Level,
			Path:    cfg.Log.Path,
			Format:  cfg.Log.Format,
			Console: cmd.Name() == "server",
		})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

/**
 * Build a connector from the loaded configuration
 * @param {*config.AppConfig} cfg - Application configuration
 * @param {bool} progress - Print download progress to stdout
 * @param {io.Writer} output - Receives server output lines, may be nil
 * @returns {*services.Connector} Connector over cfg.Instances.Path, not loaded yet
 */
func NewConnector(cfg *config.AppConfig, progress bool, output io.Writer) *services.Connector {
	catalog := versions.NewCatalog(versions.CatalogConfig{
		ManifestURL: cfg.Versions.ManifestURL,
		Timeout:     cfg.Versions.TimeoutDuration(),
	})
	jvm := proc.NewJVMArguments().
		WithInitialMemory(cfg.Runner.InitialMemory).
		WithMaxMemory(cfg.Runner.MaxMemory).
		WithAggressive(cfg.Runner.Aggressive)

	opts := services.InstanceOptions{
		PollInterval:   cfg.Instances.PollDuration(),
		VerifyChecksum: cfg.Instances.VerifyChecksum,
	}
	if progress {
		opts.Progress = func(total int64) func(int) {
			return utils.NewProgressBar(total, utils.DefaultProgressThreshold, os.Stdout).Start()
		}
	}
	return services.NewConnector(services.ConnectorConfig{
		Path:        cfg.Instances.Path,
		Java:        cfg.Runner.Java,
		JvmArgs:     jvm,
		LogLimit:    cfg.Runner.LogLimit,
		StopTimeout: cfg.Runner.StopDuration(),
		Instance:    opts,
		Output:      output,
	}, catalog)
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config.yaml file or directory")
	RootCmd.PersistentFlags().StringVarP(&instancesPath, "path", "p", "", "Directory holding the server instances")
}
