package session

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

type Status string

const (
	StatusQueued      Status = "queued"
	StatusStarting    Status = "starting"
	StatusDownloading Status = "downloading"
	StatusProcessing  Status = "processing"
	StatusCompleted   Status = "completed"
	StatusError       Status = "error"
	StatusCancelled   Status = "cancelled"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError || s == StatusCancelled
}

// Session is the mutable state of one download job. All fields except
// the cancellation flag are written by the owning job goroutine only;
// readers go through Snapshot. The cancellation flag can be flipped by
// an HTTP handler, hence the atomic.
type Session struct {
	Id      string
	URL     string
	Kind    string
	Quality string

	mu         sync.Mutex
	status     Status
	progress   float64
	speed      string
	eta        string
	totalSize  string
	downloaded string
	filename   string
	filePath   string
	err        string
	cookieFile string
	finishedAt time.Time

	cancelled atomic.Bool
}

// Snapshot is the observable view of a session, safe to serialize.
type Snapshot struct {
	SessionId  string  `json:"session_id"`
	Status     Status  `json:"status"`
	Progress   float64 `json:"progress"`
	Speed      string  `json:"speed"`
	Eta        string  `json:"eta"`
	FileSize   string  `json:"file_size"`
	Downloaded string  `json:"downloaded"`
	Filename   string  `json:"filename"`
	Error      string  `json:"error,omitempty"`
}

func newSession(id, url, kind, quality string) *Session {
	return &Session{
		Id:         id,
		URL:        url,
		Kind:       kind,
		Quality:    quality,
		status:     StatusQueued,
		speed:      "N/A",
		eta:        "N/A",
		totalSize:  "N/A",
		downloaded: "0 B",
	}
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// MarkStarting records the job pickup and the cookie file in use.
func (s *Session) MarkStarting(cookieFile string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusStarting
	s.cookieFile = cookieFile
}

// ApplyProgress folds one progress callback into the session. Percent
// is derived from downloaded/total when the total is known, otherwise
// the last known value is kept. The result is clamped to [0,100] and
// never decreases within a session.
func (s *Session) ApplyProgress(filename string, downloaded, total int64, speed, eta string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = StatusDownloading
	if filename != "" {
		s.filename = filename
	}

	if total > 0 {
		percent := float64(downloaded) / float64(total) * 100
		percent = math.Min(100, math.Max(0, percent))
		if percent > s.progress {
			s.progress = percent
		}
		s.totalSize = humanize.Bytes(uint64(total))
	}
	if downloaded > 0 {
		s.downloaded = humanize.Bytes(uint64(downloaded))
	}

	s.speed = orNA(speed)
	s.eta = orNA(eta)
}

// MarkProcessing pins progress to 100 and records the tentative output
// path; post-processing (remux, transcode) may still change the final
// extension.
func (s *Session) MarkProcessing(tentativePath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusProcessing
	s.progress = 100
	if tentativePath != "" {
		s.filePath = tentativePath
	}
}

func (s *Session) Complete(path, filename string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusCompleted
	s.progress = 100
	s.filePath = path
	s.filename = filename
	s.finishedAt = time.Now()
}

func (s *Session) Fail(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusError
	s.err = message
	s.finishedAt = time.Now()
}

// Cancel flags the session. The in-flight job is not interrupted, the
// flag only stops further progress forwarding; this is a documented
// limitation of the wrapped extractor.
func (s *Session) Cancel() {
	s.cancelled.Store(true)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusCancelled
	s.finishedAt = time.Now()
}

func (s *Session) Cancelled() bool { return s.cancelled.Load() }

func (s *Session) FilePath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filePath
}

func (s *Session) TentativePath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filePath
}

func (s *Session) CookieFile() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cookieFile
}

func (s *Session) Filename() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filename
}

// reapable reports whether the session reached a terminal state longer
// than ttl ago.
func (s *Session) reapable(ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status.Terminal() && !s.finishedAt.IsZero() && time.Since(s.finishedAt) > ttl
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		SessionId:  s.Id,
		Status:     s.status,
		Progress:   math.Round(s.progress*10) / 10,
		Speed:      s.speed,
		Eta:        s.eta,
		FileSize:   s.totalSize,
		Downloaded: s.downloaded,
		Filename:   s.filename,
		Error:      s.err,
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
