package automation

import (
	"bytes"
	"log/slog"
	"sync"
)

// logWriter turns a byte stream into one log record per line.
type logWriter struct {
	logger *slog.Logger
	mu     sync.Mutex
	buf    bytes.Buffer
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		line, err := w.buf.ReadBytes('\n')
		if err != nil {
			// Keep the partial line for the next write.
			w.buf.Write(line)
			break
		}
		if line = bytes.TrimSpace(line); len(line) > 0 {
			w.logger.Debug(string(line))
		}
	}
	return len(p), nil
}
