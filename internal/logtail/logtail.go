package logtail

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"
)

// Read returns at most maxLines from the end of the file at path.
// A missing file yields no lines and no error.
func Read(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := NewRing(maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		ring.add(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	return ring.Lines(), nil
}

// Ring keeps the last N complete lines written to it. It is an io.Writer so it
// can sit behind a slog handler next to the log file.
type Ring struct {
	mu      sync.Mutex
	lines   []string
	next    int
	count   int
	partial []byte
	version uint64
}

// NewRing returns a Ring holding up to size lines (at least one).
func NewRing(size int) *Ring {
	if size < 1 {
		size = 1
	}
	return &Ring{lines: make([]string, size)}
}

// Write splits p on newlines. A trailing fragment is buffered until its
// newline arrives.
func (r *Ring) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := p
	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		line := data[:i]
		if len(r.partial) > 0 {
			line = append(r.partial, line...)
			r.partial = r.partial[:0]
		}
		r.addLocked(string(bytes.TrimRight(line, "\r")))
		data = data[i+1:]
	}
	if len(data) > 0 {
		r.partial = append(r.partial, data...)
	}
	return len(p), nil
}

// Seed appends lines, oldest first, e.g. the tail of a previous session's log.
func (r *Ring) Seed(lines []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, line := range lines {
		r.addLocked(line)
	}
}

// Lines returns the buffered lines, oldest first.
func (r *Ring) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, r.count)
	start := (r.next - r.count + len(r.lines)) % len(r.lines)
	for i := 0; i < r.count; i++ {
		out[i] = r.lines[(start+i)%len(r.lines)]
	}
	return out
}

// Version increases on every stored line; readers use it to skip redraws.
func (r *Ring) Version() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.version
}

func (r *Ring) add(line string) {
	r.mu.Lock()
	r.addLocked(line)
	r.mu.Unlock()
}

func (r *Ring) addLocked(line string) {
	r.lines[r.next] = line
	r.next = (r.next + 1) % len(r.lines)
	if r.count < len(r.lines) {
		r.count++
	}
	r.version++
}
