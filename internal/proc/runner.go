package proc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/System-rat/mcsmp/internal/logger"
	"github.com/System-rat/mcsmp/internal/models"

	"mvdan.cc/sh/v3/shell"
)

const (
	JarFile       = "server.jar"
	ArgumentsFile = "arguments.txt"
	// 优雅退出命令
	StopCommand = "stop\n"
)

// Instance 运行器需要的服务器实例信息
type Instance interface {
	Name() string
	PhysicalPath() string
	Exists() bool
	StartWatcher()
}

/**
 * Runner configuration
 * @property {string} Java - Java executable, default "java"
 * @property {*JVMArguments} JvmArgs - Launch arguments used when arguments.txt is absent
 * @property {int} LogLimit - Number of output lines kept
 * @property {func(string)} OnLine - Called for every output line, may be nil
 * @property {func(*Runner)} OnExit - Called after the process exited, may be nil
 */
type RunnerConfig struct {
	Java     string
	JvmArgs  *JVMArguments
	LogLimit int
	OnLine   func(line string)
	OnExit   func(r *Runner)
}

/**
 * Runner 服务器进程运行器
 * @property {string} Title - 显示用的名字(实例名)
 * @property {models.RunStatus} Status - running/exited/stopped/error
 * @description
 * - 同一时间最多运行一个进程
 * - 标准输出和标准错误合并后逐行写入有界日志缓冲
 */
type Runner struct {
	Title          string           //显示用的名字
	Command        string           //进程启动命令
	Args           []string         //进程参数
	WorkDir        string           //工作目录
	Status         models.RunStatus //状态
	StartTime      time.Time        //启动时间
	LastExitTime   time.Time        //最后一次退出的时间
	LastExitReason string           //最后一次退出的原因

	instance Instance
	cfg      RunnerConfig
	log      *LogBuffer
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	done     chan struct{} //进程退出且输出读完后关闭
	stopping bool
	mutex    sync.Mutex
}

/**
 * Create a runner bound to an instance
 * @param {Instance} instance - Server instance, must exist on disk
 * @param {RunnerConfig} cfg - Runner configuration
 * @returns {*Runner} Idle runner
 * @returns {error} Returns error if the instance does not exist yet
 */
func NewRunner(instance Instance, cfg RunnerConfig) (*Runner, error) {
	if instance == nil || !instance.Exists() {
		return nil, fmt.Errorf("server instance doesn't exist on the machine, create it first")
	}
	if cfg.Java == "" {
		cfg.Java = "java"
	}
	if cfg.JvmArgs == nil {
		cfg.JvmArgs = NewJVMArguments()
	}
	return &Runner{
		Title:    instance.Name(),
		Command:  cfg.Java,
		WorkDir:  instance.PhysicalPath(),
		Status:   models.StatusExited,
		instance: instance,
		cfg:      cfg,
		log:      NewLogBuffer(cfg.LogLimit),
	}, nil
}

func (r *Runner) Instance() Instance {
	return r.instance
}

func (r *Runner) JvmArguments() *JVMArguments {
	return r.cfg.JvmArgs
}

// launchArguments arguments.txt 存在时优先使用其内容
func (r *Runner) launchArguments() ([]string, error) {
	text := r.cfg.JvmArgs.String()
	data, err := os.ReadFile(filepath.Join(r.WorkDir, ArgumentsFile))
	if err == nil {
		text = strings.NewReplacer("\r", " ", "\n", " ").Replace(string(data))
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	fields, err := shell.Fields(text, nil)
	if err != nil {
		return nil, fmt.Errorf("parsing launch arguments %q: %w", text, err)
	}
	return append(fields, "-jar", filepath.Join(r.WorkDir, JarFile)), nil
}

/**
 * Start the server process
 * @returns {error} Wraps models.ErrProcessSpawn if the command cannot be executed
 * @description
 * - No-op if already running
 * - Resets the log buffer and starts one goroutine that reads output and waits for exit
 * - Resumes the instance's properties watcher
 */
func (r *Runner) Start() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.runningLocked() {
		return nil
	}

	args, err := r.launchArguments()
	if err != nil {
		r.Status = models.StatusError
		r.LastExitReason = fmt.Sprintf("start failed: %v", err)
		return fmt.Errorf("starting %s: %v: %w", r.Title, err, models.ErrProcessSpawn)
	}
	r.Args = args
	logger.Infof("Executing command: %s %s", r.Command, strings.Join(args, " "))

	cmd := exec.Command(r.Command, args...)
	cmd.Dir = r.WorkDir
	setProcessGroup(cmd)

	// stdout 和 stderr 共用一个管道，保持子进程的输出顺序
	pr, pw, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("starting %s: %v: %w", r.Title, err, models.ErrProcessSpawn)
	}
	cmd.Stdout = pw
	cmd.Stderr = pw
	stdin, err := cmd.StdinPipe()
	if err != nil {
		pr.Close()
		pw.Close()
		return fmt.Errorf("starting %s: %v: %w", r.Title, err, models.ErrProcessSpawn)
	}

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		r.Status = models.StatusError
		r.LastExitReason = fmt.Sprintf("start failed: %v", err)
		logger.Errorf("Failed to start server '%s', error: %v", r.Title, err)
		return fmt.Errorf("starting %s: %v: %w", r.Title, err, models.ErrProcessSpawn)
	}
	pw.Close()

	r.log.Reset()
	r.cmd = cmd
	r.stdin = stdin
	r.done = make(chan struct{})
	r.stopping = false
	r.Status = models.StatusRunning
	r.StartTime = time.Now()
	logger.Infof("Server '%s' started (PID: %d)", r.Title, cmd.Process.Pid)

	go r.supervise(cmd, pr, r.done)
	r.instance.StartWatcher()
	return nil
}

func (r *Runner) supervise(cmd *exec.Cmd, output io.ReadCloser, done chan struct{}) {
	scanner := bufio.NewScanner(output)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		r.log.Append(line)
		if r.cfg.OnLine != nil {
			r.cfg.OnLine(line)
		}
	}
	output.Close()
	err := cmd.Wait()

	r.mutex.Lock()
	r.LastExitTime = time.Now()
	switch {
	case r.stopping:
		r.Status = models.StatusStopped
		r.LastExitReason = "stopped by user"
	case err != nil:
		r.Status = models.StatusError
		r.LastExitReason = fmt.Sprintf("exited with error: %v", err)
	default:
		r.Status = models.StatusExited
		r.LastExitReason = "exited normally"
	}
	r.stdin.Close()
	logger.Infof("Server '%s' (PID: %d) %s", r.Title, cmd.Process.Pid, r.LastExitReason)
	close(done)
	r.mutex.Unlock()

	if r.cfg.OnExit != nil {
		r.cfg.OnExit(r)
	}
}

// Stop 发送 stop 命令并阻塞到进程退出，没有超时
func (r *Runner) Stop() error {
	return r.StopContext(context.Background())
}

/**
 * Stop the server process
 * @param {context.Context} ctx - Bounds the wait, the process is killed when ctx ends first
 * @returns {error} ctx.Err() if the process had to be killed
 * @description
 * - No-op if not running
 * - Writes the graceful shutdown command and waits for exit
 */
func (r *Runner) StopContext(ctx context.Context) error {
	r.mutex.Lock()
	if !r.runningLocked() {
		r.mutex.Unlock()
		return nil
	}
	r.stopping = true
	done, cmd := r.done, r.cmd
	if _, err := io.WriteString(r.stdin, StopCommand); err != nil {
		logger.Warnf("Failed to send stop to '%s': %v", r.Title, err)
	}
	r.mutex.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
	}
	logger.Warnf("Server '%s' did not stop in time, killing (PID: %d)", r.Title, cmd.Process.Pid)
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		logger.Errorf("Failed to kill server '%s': %v", r.Title, err)
	}
	<-done
	return ctx.Err()
}

// SendText 向进程标准输入写入文本，未运行时不做任何事
func (r *Runner) SendText(text string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if !r.runningLocked() {
		return nil
	}
	_, err := io.WriteString(r.stdin, text)
	return err
}

func (r *Runner) Running() bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.runningLocked()
}

func (r *Runner) runningLocked() bool {
	if r.done == nil {
		return false
	}
	select {
	case <-r.done:
		return false
	default:
		return true
	}
}

// Wait 阻塞到当前进程退出
func (r *Runner) Wait() {
	r.mutex.Lock()
	done := r.done
	r.mutex.Unlock()
	if done != nil {
		<-done
	}
}

// Log 返回日志缓冲的副本
func (r *Runner) Log() []string {
	return r.log.Snapshot()
}

func (r *Runner) Last(n int) []string {
	return r.log.Last(n)
}

func (r *Runner) Pid() int {
	if r.cmd == nil || r.cmd.Process == nil {
		return 0
	}
	return r.cmd.Process.Pid
}

func (r *Runner) GetDetail() models.RunnerDetail {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	pid := 0
	if r.runningLocked() {
		pid = r.Pid()
	}
	return models.RunnerDetail{
		Title:          r.Title,
		Command:        r.Command,
		Args:           r.Args,
		WorkDir:        r.WorkDir,
		JvmArguments:   r.cfg.JvmArgs.String(),
		Pid:            pid,
		Status:         r.Status,
		LogLimit:       r.log.Capacity(),
		LogLines:       r.log.Len(),
		StartTime:      r.StartTime,
		LastExitTime:   r.LastExitTime,
		LastExitReason: r.LastExitReason,
	}
}
