package cookies

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	allowedExtension = ".txt"
	// Uploaded files are swept once they are older than this.
	maxAge = 24 * time.Hour
	// Name of the pre-provisioned record, never swept.
	DefaultName = "default"
)

var (
	ErrNotFound     = errors.New("cookie file not found")
	ErrEmptyFile    = errors.New("cookie file is empty")
	ErrBadExtension = errors.New("only .txt files are allowed")
	ErrDuplicate    = errors.New("cookie file already exists")
)

// Record describes one credential file known to the store.
type Record struct {
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	Uploaded   bool      `json:"uploaded"`
	UploadTime time.Time `json:"upload_time,omitempty"`
}

// Store manages uploaded credential files on disk plus an optional
// long-lived default file outside the uploads directory. Uploaded
// files expire after 24 hours; the sweep runs opportunistically before
// each listing rather than on a timer, staleness only costs disk.
type Store struct {
	mu          sync.Mutex
	dir         string
	defaultPath string
}

func NewStore(dir, defaultPath string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	return &Store{dir: dir, defaultPath: defaultPath}, nil
}

// Upload stores content under a collision-resistant name derived from
// filename plus an upload timestamp. The file is removed again if the
// content turns out to be empty.
func (s *Store) Upload(filename string, content io.Reader) (*Record, error) {
	if !strings.EqualFold(filepath.Ext(filename), allowedExtension) {
		return nil, ErrBadExtension
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	base := sanitizeName(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
	name := fmt.Sprintf("%s_%s", base, time.Now().Format("20060102_150405"))
	path := filepath.Join(s.dir, name+allowedExtension)

	if _, err := os.Stat(path); err == nil {
		return nil, ErrDuplicate
	}

	fd, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	written, err := io.Copy(fd, content)
	fd.Close()

	if err != nil {
		os.Remove(path)
		return nil, err
	}
	if written == 0 {
		os.Remove(path)
		return nil, ErrEmptyFile
	}

	slog.Info("cookie file uploaded", slog.String("name", name))

	return &Record{
		Name:       name,
		Path:       path,
		Uploaded:   true,
		UploadTime: time.Now(),
	}, nil
}

func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, sanitizeName(name)+allowedExtension)
	if _, err := os.Stat(path); err != nil {
		return ErrNotFound
	}

	if err := os.Remove(path); err != nil {
		return err
	}

	slog.Info("cookie file deleted", slog.String("name", name))
	return nil
}

// List sweeps expired uploads, then returns the default record first
// (when its file exists) followed by uploaded records newest first.
func (s *Store) List() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep()

	var records []Record

	if _, err := os.Stat(s.defaultPath); err == nil {
		records = append(records, Record{
			Name:     DefaultName,
			Path:     s.defaultPath,
			Uploaded: false,
		})
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		slog.Warn("failed to read cookies directory", slog.Any("err", err))
		return records
	}

	var uploaded []Record
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), allowedExtension) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		uploaded = append(uploaded, Record{
			Name:       strings.TrimSuffix(entry.Name(), allowedExtension),
			Path:       filepath.Join(s.dir, entry.Name()),
			Uploaded:   true,
			UploadTime: info.ModTime(),
		})
	}

	sort.Slice(uploaded, func(i, j int) bool {
		return uploaded[i].UploadTime.After(uploaded[j].UploadTime)
	})

	return append(records, uploaded...)
}

// Resolve maps a logical cookie name to the backing file path,
// verifying the file exists. DefaultName maps to the fixed default
// path, everything else to <dir>/<name>.txt.
func (s *Store) Resolve(name string) (string, error) {
	var path string
	if name == DefaultName {
		path = s.defaultPath
	} else {
		path = filepath.Join(s.dir, sanitizeName(name)+allowedExtension)
	}

	if _, err := os.Stat(path); err != nil {
		return "", ErrNotFound
	}

	return path, nil
}

// Available reports whether any cookie file (default or uploaded) is
// usable right now.
func (s *Store) Available() bool {
	return len(s.List()) > 0
}

// DefaultPath is the fixed location of the non-uploaded record.
func (s *Store) DefaultPath() string { return s.defaultPath }

// sweep removes uploaded files older than maxAge. Callers hold s.mu.
func (s *Store) sweep() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		slog.Warn("cookie sweep failed", slog.Any("err", err))
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if time.Since(info.ModTime()) > maxAge {
			if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
				slog.Warn("failed to remove expired cookie file",
					slog.String("name", entry.Name()),
					slog.Any("err", err),
				)
				continue
			}
			slog.Info("removed expired cookie file", slog.String("name", entry.Name()))
		}
	}
}

// sanitizeName strips anything that could escape the store directory.
func sanitizeName(name string) string {
	name = filepath.Base(name)
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, name)
}
