package logging

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// RotableLogger is an io.Writer backed by a log file which can be
// rotated on demand. Rotation renames the current file with a date
// suffix and starts a fresh one at the original path.
type RotableLogger struct {
	mu   sync.Mutex
	path string
	fd   *os.File
}

func NewRotableLogger(path string) (*RotableLogger, error) {
	fd, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	return &RotableLogger{path: path, fd: fd}, nil
}

func (l *RotableLogger) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.fd.Write(p)
}

func (l *RotableLogger) Rotate() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.fd.Close(); err != nil {
		return err
	}

	archived := fmt.Sprintf("%s.%s", l.path, time.Now().Format(time.DateOnly))
	if err := os.Rename(l.path, archived); err != nil {
		return err
	}

	fd, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	l.fd = fd
	return nil
}

func (l *RotableLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.fd.Close()
}
