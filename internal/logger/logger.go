package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	defaultLogger = zap.NewNop()
	sugar         = defaultLogger.Sugar()
	mu            sync.RWMutex
)

// Options 日志初始化参数
type Options struct {
	Level   string // debug/info/warn/error
	Path    string // 为空或"console"时输出到标准错误
	Format  string // console/json
	Console bool   // 写文件的同时输出到控制台(服务器模式)
}

// GetLogLevelFromString 将字符串转换为日志级别
func GetLogLevelFromString(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel // 默认级别
	}
}

/**
 * Initialize logging system
 * @param {Options} opts - Log level, output path and format
 * @returns {error} Returns error if the log file cannot be opened
 * @description
 * - Builds a zap logger and replaces the package level logger
 * - Writes to the log file, and to stderr as well when opts.Console is set
 */
func InitLogger(opts Options) error {
	var cfg zap.Config
	if strings.ToLower(opts.Level) == "debug" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(GetLogLevelFromString(opts.Level))

	if opts.Format == "json" {
		cfg.Encoding = "json"
	} else {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.DisableStacktrace = true
	}
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if opts.Path == "" || opts.Path == "console" {
		cfg.OutputPaths = []string{"stderr"}
	} else {
		// 确保日志目录存在
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
			return fmt.Errorf("创建日志目录失败: %w", err)
		}
		cfg.OutputPaths = []string{opts.Path}
		if opts.Console {
			cfg.OutputPaths = append(cfg.OutputPaths, "stderr")
		}
	}
	cfg.ErrorOutputPaths = []string{"stderr"}

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	SetLogger(l)
	return nil
}

// SetLogger 替换全局日志器，测试中可传入 zaptest 或 zap.NewNop()
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	defaultLogger = l
	sugar = l.Sugar()
	mu.Unlock()
}

// L 返回结构化日志器
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

func s() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

// Sync 刷新缓冲日志
func Sync() {
	_ = L().Sync()
}

// Debug 输出调试日志
func Debug(v ...interface{}) {
	s().Debug(v...)
}

// Debugf 输出格式化调试日志
func Debugf(format string, v ...interface{}) {
	s().Debugf(format, v...)
}

// Info 输出信息日志
func Info(v ...interface{}) {
	s().Info(v...)
}

// Infof 输出格式化信息日志
func Infof(format string, v ...interface{}) {
	s().Infof(format, v...)
}

// Warn 输出警告日志
func Warn(v ...interface{}) {
	s().Warn(v...)
}

// Warnf 输出格式化警告日志
func Warnf(format string, v ...interface{}) {
	s().Warnf(format, v...)
}

// Error 输出错误日志
func Error(v ...interface{}) {
	s().Error(v...)
}

// Errorf 输出格式化错误日志
func Errorf(format string, v ...interface{}) {
	s().Errorf(format, v...)
}

// Fatal 输出致命错误日志并退出程序
func Fatal(v ...interface{}) {
	s().Fatal(v...)
	os.Exit(1)
}

// Fatalf 输出格式化致命错误日志并退出程序
func Fatalf(format string, v ...interface{}) {
	s().Fatalf(format, v...)
	os.Exit(1)
}
