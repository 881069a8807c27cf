package utils

import (
	"io"
	"os"
	"sync"
)

const DefaultProgressThreshold = 0.05

/**
 * Textual download progress indicator
 * @property {int64} Total - Declared size in bytes
 * @property {float64} Threshold - Fraction printed per mark, default 0.05
 * @description
 * - Prints one '=' each time the downloaded fraction passes the next threshold
 */
type ProgressBar struct {
	Total     int64
	Threshold float64

	out     io.Writer
	mu      sync.Mutex
	current int64
	next    float64
}

func NewProgressBar(total int64, threshold float64, out io.Writer) *ProgressBar {
	if threshold <= 0 {
		threshold = DefaultProgressThreshold
	}
	if out == nil {
		out = os.Stdout
	}
	return &ProgressBar{Total: total, Threshold: threshold, out: out, next: threshold}
}

// Start 返回传给下载函数的进度回调
func (p *ProgressBar) Start() func(int) {
	return func(n int) {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.current += int64(n)
		if p.Total <= 0 {
			return
		}
		if float64(p.current)/float64(p.Total) >= p.next {
			_, _ = io.WriteString(p.out, "=")
			p.next += p.Threshold
		}
	}
}

func (p *ProgressBar) Current() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}
