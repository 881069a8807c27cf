package watcher

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/System-rat/mcsmp/internal/logger"
)

const DefaultInterval = time.Second

// ChangeFunc 文件修改时间变化时调用
type ChangeFunc func(path string, modTime time.Time)

/**
 * Polling watcher for a single file
 * @description
 * - Compares the modification time at a fixed interval, content is not inspected
 * - Stops itself when the file disappears
 * - Stop waits for the polling goroutine, no callback runs after it returns
 */
type ConfigWatcher struct {
	path     string
	interval time.Duration
	onChange ChangeFunc

	mu      sync.Mutex
	lastMod time.Time
	cancel  context.CancelFunc
	done    chan struct{}
}

/**
 * Create a watcher bound to one file
 * @param {string} path - Watched file
 * @param {time.Duration} interval - Polling interval, DefaultInterval if not positive
 * @param {ChangeFunc} onChange - Change callback
 * @returns {*ConfigWatcher} Stopped watcher
 * @returns {error} Returns error if the file cannot be stat'ed
 */
func New(path string, interval time.Duration, onChange ChangeFunc) (*ConfigWatcher, error) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("watching %s: %w", path, err)
	}
	return &ConfigWatcher{
		path:     path,
		interval: interval,
		onChange: onChange,
		lastMod:  fi.ModTime(),
	}, nil
}

func (w *ConfigWatcher) Path() string {
	return w.path
}

// Start 开始轮询，已在运行时不做任何事
func (w *ConfigWatcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.runningLocked() {
		return
	}
	// 重新读取修改时间，调用方自己的写入不算外部修改
	if fi, err := os.Stat(w.path); err == nil {
		w.lastMod = fi.ModTime()
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	w.cancel = cancel
	w.done = done
	go w.run(ctx, done)
}

// Stop 停止轮询并等待轮询协程退出
func (w *ConfigWatcher) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel = nil
	w.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (w *ConfigWatcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runningLocked()
}

func (w *ConfigWatcher) runningLocked() bool {
	if w.done == nil || w.cancel == nil {
		return false
	}
	select {
	case <-w.done:
		return false
	default:
		return true
	}
}

func (w *ConfigWatcher) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		fi, err := os.Stat(w.path)
		if err != nil {
			logger.Debugf("watcher: %s is gone, stopping", w.path)
			return
		}
		w.mu.Lock()
		changed := !fi.ModTime().Equal(w.lastMod)
		w.mu.Unlock()
		if !changed || ctx.Err() != nil {
			continue
		}
		if w.onChange != nil {
			w.onChange(w.path, fi.ModTime())
		}
		w.mu.Lock()
		w.lastMod = fi.ModTime()
		w.mu.Unlock()
	}
}
