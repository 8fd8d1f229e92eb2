package rest

import (
	"context"
	"errors"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/eliotdl/yt-any/server/activity"
	"github.com/eliotdl/yt-any/server/broadcast"
	"github.com/eliotdl/yt-any/server/cookies"
	"github.com/eliotdl/yt-any/server/formats"
	"github.com/eliotdl/yt-any/server/internal/extractor"
	"github.com/eliotdl/yt-any/server/internal/queue"
	"github.com/eliotdl/yt-any/server/internal/runner"
	"github.com/eliotdl/yt-any/server/internal/session"
	"github.com/eliotdl/yt-any/server/platform"
)

var (
	ErrMissingURL = errors.New("URL is required")
	ErrNotReady   = errors.New("file not ready")
)

const (
	maxDescription = 200
	maxRenditions  = 10
	minHeight      = 144
)

type Service struct {
	registry    *platform.Registry
	cookies     *cookies.Store
	builder     *formats.Builder
	extractor   *extractor.Extractor
	sessions    *session.Store
	runner      *runner.Runner
	mq          *queue.MessageQueue
	broadcaster *broadcast.Broadcaster
	activity    *activity.Service
}

func NewService(args *ContainerArgs) *Service {
	return &Service{
		registry:    args.Registry,
		cookies:     args.Cookies,
		builder:     args.Builder,
		extractor:   args.Extractor,
		sessions:    args.Sessions,
		runner:      args.Runner,
		mq:          args.MQ,
		broadcaster: args.Broadcaster,
		activity:    args.Activity,
	}
}

// Rendition is one selectable quality in a probe response.
type Rendition struct {
	FormatId string `json:"format_id"`
	Quality  string `json:"quality"`
	Ext      string `json:"ext"`
	Filesize string `json:"filesize"`
}

// ProbePayload is the pre-flight metadata for a URL.
type ProbePayload struct {
	Title        string            `json:"title"`
	Duration     float64           `json:"duration"`
	Uploader     string            `json:"uploader"`
	Thumbnail    string            `json:"thumbnail"`
	Description  string            `json:"description"`
	Formats      []Rendition       `json:"formats"`
	PlatformInfo platform.Advisory `json:"platform_info"`
}

// Probe extracts metadata without downloading. Failures come back as
// classified, user-facing messages.
func (s *Service) Probe(ctx context.Context, url, cookieName string) (*ProbePayload, error) {
	if url == "" {
		return nil, ErrMissingURL
	}

	cookiePath, err := s.resolveCookie(cookieName)
	if err != nil {
		return nil, err
	}

	advisory := s.registry.CheckRequirements(url, s.cookies.Available())

	policy := s.registry.Resolve(url)
	cfg := s.builder.Build(url, formats.KindVideo, formats.BestSentinel, policy, cookiePath)

	meta, err := s.extractor.Probe(ctx, url, cfg)
	if err != nil {
		return nil, errors.New(platform.ClassifyError(policy, err.Error()))
	}

	return buildProbePayload(meta, advisory), nil
}

func buildProbePayload(meta *extractor.Metadata, advisory platform.Advisory) *ProbePayload {
	seen := make(map[int]bool)
	heights := make(map[string]int)
	renditions := []Rendition{}

	for _, f := range meta.Formats {
		if f.VCodec == "none" || f.Height < minHeight || seen[f.Height] {
			continue
		}
		seen[f.Height] = true

		ext := f.Ext
		if ext == "" {
			ext = "mp4"
		}

		size := "N/A"
		if f.Size() > 0 {
			size = humanize.Bytes(uint64(f.Size()))
		}

		quality := strconv.Itoa(f.Height) + "p"
		heights[quality] = f.Height

		renditions = append(renditions, Rendition{
			FormatId: f.FormatId,
			Quality:  quality,
			Ext:      ext,
			Filesize: size,
		})
	}

	sort.Slice(renditions, func(i, j int) bool {
		return heights[renditions[i].Quality] > heights[renditions[j].Quality]
	})

	if len(renditions) > maxRenditions {
		renditions = renditions[:maxRenditions]
	}

	title := meta.Title
	if title == "" {
		title = "Unknown"
	}
	uploader := meta.Uploader
	if uploader == "" {
		uploader = "Unknown"
	}

	description := meta.Description
	if runes := []rune(description); len(runes) > maxDescription {
		description = string(runes[:maxDescription]) + "..."
	}

	return &ProbePayload{
		Title:        title,
		Duration:     meta.Duration,
		Uploader:     uploader,
		Thumbnail:    meta.Thumbnail,
		Description:  description,
		Formats:      renditions,
		PlatformInfo: advisory,
	}
}

// StartRequest is a download submission.
type StartRequest struct {
	URL        string `json:"url"`
	Format     string `json:"format"`
	Quality    string `json:"quality"`
	CookieName string `json:"cookie_file"`
}

// Start registers a session and queues the job. It returns the new
// session id immediately, the work happens on the pool.
func (s *Service) Start(req StartRequest, caller string) (string, error) {
	if req.URL == "" {
		return "", ErrMissingURL
	}

	kind, err := formats.ParseKind(req.Format)
	if err != nil {
		return "", err
	}

	quality := req.Quality
	if quality == "" {
		quality = formats.BestSentinel
	}

	cookiePath, err := s.resolveCookie(req.CookieName)
	if err != nil {
		return "", err
	}

	if caller != "" {
		s.activity.Record(caller, activity.KindDownloadStarted, activity.Entry{
			URL:     req.URL,
			Format:  string(kind),
			Quality: quality,
			Status:  "started",
		})
	}

	sess := s.sessions.Create(req.URL, string(kind), quality)
	s.mq.Publish(s.runner.NewJob(sess, kind, cookiePath, caller))

	return sess.Id, nil
}

func (s *Service) Snapshot(id string) (session.Snapshot, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return session.Snapshot{}, err
	}
	return sess.Snapshot(), nil
}

// Cancel flags the session and emits a cancellation event. Best
// effort: the in-flight fetch is not interrupted.
func (s *Service) Cancel(id string) error {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return err
	}

	sess.Cancel()
	s.broadcaster.Cancelled(id)
	return nil
}

// ArtifactPath returns the resolved file of a completed session.
func (s *Service) ArtifactPath(id string) (string, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return "", err
	}

	if sess.Status() != session.StatusCompleted {
		return "", ErrNotReady
	}

	path := sess.FilePath()
	if path == "" {
		return "", ErrNotReady
	}
	if _, err := os.Stat(path); err != nil {
		return "", ErrNotReady
	}

	return path, nil
}

func (s *Service) ListCookies() []cookies.Record {
	return s.cookies.List()
}

func (s *Service) UploadCookie(filename string, content io.Reader) (*cookies.Record, error) {
	return s.cookies.Upload(filename, content)
}

func (s *Service) DeleteCookie(name string) error {
	return s.cookies.Delete(name)
}

func (s *Service) Advisory(url string) platform.Advisory {
	return s.registry.CheckRequirements(url, s.cookies.Available())
}

func (s *Service) RecentActivity(ctx context.Context, limit int) ([]activity.Entry, error) {
	return s.activity.Recent(ctx, limit)
}

// resolveCookie maps an optional cookie name to its file path. An
// unknown name is a synchronous configuration error.
func (s *Service) resolveCookie(name string) (string, error) {
	if name == "" {
		return "", nil
	}
	return s.cookies.Resolve(name)
}
