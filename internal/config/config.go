package config

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/System-rat/mcsmp/internal/env"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

/**
 * HTTP server configuration parameters
 * @property {string} address - Server listening address (e.g. "localhost:1337")
 * @property {string} mode - gin mode (debug/release/test)
 */
type ServerConfig struct {
	Address string `mapstructure:"address"`
	Mode    string `mapstructure:"mode"`
}

/**
 * Logging configuration
 * @property {string} level - Log level (debug/info/warn/error)
 * @property {string} path - Log file path, empty or "console" writes to stderr
 * @property {string} format - console/json
 */
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Path   string `mapstructure:"path"`
	Format string `mapstructure:"format"`
}

/**
 * Server instance configuration
 * @property {string} path - Directory that holds one sub-directory per instance
 * @property {int} poll_interval - server.properties polling interval in seconds
 * @property {bool} verify_checksum - Verify the SHA-1 of every downloaded server.jar
 * @property {int} cache_invalidate - Version manifest cache lifetime in seconds, 0 disables it
 */
type InstancesConfig struct {
	Path            string `mapstructure:"path"`
	PollInterval    int    `mapstructure:"poll_interval"`
	VerifyChecksum  bool   `mapstructure:"verify_checksum"`
	CacheInvalidate int    `mapstructure:"cache_invalidate"`
}

/**
 * Server process configuration
 * @property {string} java - Java executable
 * @property {string} initial_memory - -Xms value
 * @property {string} max_memory - -Xmx value
 * @property {bool} aggressive - Add the aggressive G1 flag set
 * @property {int} log_limit - Number of output lines kept per server
 * @property {int} stop_timeout - Seconds to wait for a graceful stop before killing, 0 waits forever
 */
type RunnerConfig struct {
	Java          string `mapstructure:"java"`
	InitialMemory string `mapstructure:"initial_memory"`
	MaxMemory     string `mapstructure:"max_memory"`
	Aggressive    bool   `mapstructure:"aggressive"`
	LogLimit      int    `mapstructure:"log_limit"`
	StopTimeout   int    `mapstructure:"stop_timeout"`
}

type VersionsConfig struct {
	ManifestURL string `mapstructure:"manifest_url"`
	Timeout     int    `mapstructure:"timeout"`
}

type AppConfig struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Instances InstancesConfig `mapstructure:"instances"`
	Runner    RunnerConfig    `mapstructure:"runner"`
	Versions  VersionsConfig  `mapstructure:"versions"`
}

const DefaultManifestURL = "https://launchermeta.mojang.com/mc/game/version_manifest.json"

var (
	appConfig *AppConfig
	appLock   sync.RWMutex
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "localhost:1337")
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", "")
	v.SetDefault("log.format", "console")
	v.SetDefault("instances.path", env.GetDefaultInstancesDir())
	v.SetDefault("instances.poll_interval", 1)
	v.SetDefault("instances.verify_checksum", false)
	v.SetDefault("instances.cache_invalidate", 300)
	v.SetDefault("runner.java", "java")
	v.SetDefault("runner.initial_memory", "1G")
	v.SetDefault("runner.max_memory", "1G")
	v.SetDefault("runner.aggressive", false)
	v.SetDefault("runner.log_limit", 1000)
	v.SetDefault("runner.stop_timeout", 0)
	v.SetDefault("versions.manifest_url", DefaultManifestURL)
	v.SetDefault("versions.timeout", 30)
}

/**
 * Load application configuration
 * @param {string} path - Directory or file to read config.yaml from, empty uses the search path
 * @returns {*AppConfig} Loaded configuration
 * @returns {error} Returns error if the config file exists but cannot be parsed
 * @description
 * - Overlays variables from .env (missing file is ignored)
 * - Reads config.yaml from path, $HOME/.mcsmp and the working directory
 * - MCSMP_* environment variables override file values (MCSMP_RUNNER_JAVA -> runner.java)
 * - Stores the result for Get()
 * @example
 * cfg, err := config.LoadConfig("")
 * if err != nil {
 *     logger.Fatal(err)
 * }
 */
func LoadConfig(path string) (*AppConfig, error) {
	envPath := ".env"
	if path != "" {
		envPath = filepath.Join(configDir(path), ".env")
	}
	_ = godotenv.Overload(envPath)

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("MCSMP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" && strings.HasSuffix(path, ".yaml") {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if path != "" {
			v.AddConfigPath(path)
		}
		v.AddConfigPath(env.McsmpDir)
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	correctConfig(&cfg)

	appLock.Lock()
	appConfig = &cfg
	appLock.Unlock()
	return &cfg, nil
}

func configDir(path string) string {
	if strings.HasSuffix(path, ".yaml") {
		return filepath.Dir(path)
	}
	return path
}

func correctConfig(cfg *AppConfig) {
	if cfg.Instances.PollInterval <= 0 {
		cfg.Instances.PollInterval = 1
	}
	if cfg.Runner.LogLimit <= 0 {
		cfg.Runner.LogLimit = 1000
	}
	if cfg.Versions.ManifestURL == "" {
		cfg.Versions.ManifestURL = DefaultManifestURL
	}
	if abs, err := filepath.Abs(cfg.Instances.Path); err == nil {
		cfg.Instances.Path = abs
	}
}

/**
 * Get loaded application configuration
 * @returns {*AppConfig} Returns the configuration stored by LoadConfig, or defaults if none was loaded
 */
func Get() *AppConfig {
	appLock.RLock()
	cfg := appConfig
	appLock.RUnlock()
	if cfg != nil {
		return cfg
	}
	v := viper.New()
	setDefaults(v)
	var def AppConfig
	_ = v.Unmarshal(&def)
	correctConfig(&def)
	return &def
}

func (c *InstancesConfig) PollDuration() time.Duration {
	return time.Duration(c.PollInterval) * time.Second
}

func (c *InstancesConfig) InvalidateDuration() time.Duration {
	return time.Duration(c.CacheInvalidate) * time.Second
}

func (c *RunnerConfig) StopDuration() time.Duration {
	return time.Duration(c.StopTimeout) * time.Second
}

func (c *VersionsConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}
