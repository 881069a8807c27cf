package proc

import "sync"

const DefaultLogLimit = 1000

// LogBuffer 固定容量的输出缓冲，超出容量时丢弃最早的行
type LogBuffer struct {
	mu    sync.Mutex
	lines []string
	start int
	count int
}

func NewLogBuffer(capacity int) *LogBuffer {
	if capacity <= 0 {
		capacity = DefaultLogLimit
	}
	return &LogBuffer{lines: make([]string, capacity)}
}

func (b *LogBuffer) Capacity() int {
	return len(b.lines)
}

func (b *LogBuffer) Append(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	capacity := len(b.lines)
	if b.count < capacity {
		b.lines[(b.start+b.count)%capacity] = line
		b.count++
		return
	}
	b.lines[b.start] = line
	b.start = (b.start + 1) % capacity
}

// Snapshot 返回当前全部内容的副本，按写入顺序
func (b *LogBuffer) Snapshot() []string {
	return b.Last(-1)
}

// Last 返回最新的 n 行，n<0 返回全部
func (b *LogBuffer) Last(n int) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n < 0 || n > b.count {
		n = b.count
	}
	out := make([]string, n)
	capacity := len(b.lines)
	first := b.start + b.count - n
	for i := 0; i < n; i++ {
		out[i] = b.lines[(first+i)%capacity]
	}
	return out
}

func (b *LogBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

func (b *LogBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.lines {
		b.lines[i] = ""
	}
	b.start = 0
	b.count = 0
}
