package runner

import (
	"context"
	"log/slog"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/eliotdl/yt-any/server/activity"
	"github.com/eliotdl/yt-any/server/broadcast"
	"github.com/eliotdl/yt-any/server/cookies"
	"github.com/eliotdl/yt-any/server/formats"
	"github.com/eliotdl/yt-any/server/internal/extractor"
	"github.com/eliotdl/yt-any/server/internal/session"
	"github.com/eliotdl/yt-any/server/platform"
)

// Fetcher is the extraction capability consumed by the runner.
type Fetcher interface {
	Fetch(ctx context.Context, url string, cfg *formats.FetchConfig, onProgress extractor.ProgressFunc) (*extractor.Result, error)
}

// Recorder is the activity log sink. Implementations must swallow
// their own failures.
type Recorder interface {
	Record(caller, kind string, entry activity.Entry)
}

// Runner executes download jobs: it builds the fetch configuration,
// drives the extraction capability, folds progress callbacks into the
// session and broadcasts every change.
type Runner struct {
	registry    *platform.Registry
	cookies     *cookies.Store
	builder     *formats.Builder
	fetcher     Fetcher
	broadcaster *broadcast.Broadcaster
	activity    Recorder
}

func New(
	registry *platform.Registry,
	cookieStore *cookies.Store,
	builder *formats.Builder,
	fetcher Fetcher,
	broadcaster *broadcast.Broadcaster,
	recorder Recorder,
) *Runner {
	return &Runner{
		registry:    registry,
		cookies:     cookieStore,
		builder:     builder,
		fetcher:     fetcher,
		broadcaster: broadcaster,
		activity:    recorder,
	}
}

// Job is one queued download with its owning session. Caller is the
// optional authenticated identity, empty for anonymous requests; it is
// used for attribution only.
type Job struct {
	Session    *session.Session
	Kind       formats.MediaKind
	CookieFile string
	Caller     string

	runner *Runner
}

func (r *Runner) NewJob(sess *session.Session, kind formats.MediaKind, cookieFile, caller string) *Job {
	return &Job{
		Session:    sess,
		Kind:       kind,
		CookieFile: cookieFile,
		Caller:     caller,
		runner:     r,
	}
}

func (j *Job) Id() string { return j.Session.Id }

func (j *Job) Run(ctx context.Context) { j.runner.run(ctx, j) }

func (r *Runner) run(ctx context.Context, job *Job) {
	sess := job.Session

	sess.MarkStarting(job.CookieFile)

	advisory := r.registry.CheckRequirements(sess.URL, r.cookies.Available())
	slog.Info("platform check",
		slog.String("id", sess.Id),
		slog.String("message", advisory.Message),
	)

	// stagger bursts of simultaneous requests against the same host
	stagger(ctx)

	policy := r.registry.Resolve(sess.URL)
	cfg := r.builder.Build(sess.URL, job.Kind, sess.Quality, policy, job.CookieFile)

	if cfg.CookieNote != "" {
		slog.Warn("cookie policy note",
			slog.String("id", sess.Id),
			slog.String("note", cfg.CookieNote),
		)
	}

	result, err := r.fetcher.Fetch(ctx, sess.URL, cfg, func(p extractor.Progress) {
		// cancellation is honored at the callback boundary: the
		// process keeps running but updates stop flowing out
		if sess.Cancelled() {
			return
		}

		switch p.Kind {
		case extractor.ProgressDownloading:
			var name string
			if p.Filename != "" {
				name = filepath.Base(p.Filename)
			}
			sess.ApplyProgress(name, p.Downloaded, p.Total, p.Speed, p.Eta)
		case extractor.ProgressProcessing:
			sess.MarkProcessing(p.FilePath)
		}

		r.broadcaster.Progress(sess.Snapshot())
	})

	if err == nil {
		tentative := result.TentativePath
		if tentative == "" {
			tentative = sess.TentativePath()
		}

		var path string
		path, err = ResolveArtifact(tentative, job.Kind)
		if err == nil {
			r.complete(job, path)
			return
		}
	}

	r.fail(job, err.Error())
}

func (r *Runner) complete(job *Job, path string) {
	sess := job.Session
	filename := filepath.Base(path)

	sess.Complete(path, filename)
	slog.Info("download completed",
		slog.String("id", sess.Id),
		slog.String("filename", filename),
	)

	if job.Caller != "" {
		r.activity.Record(job.Caller, activity.KindDownloadCompleted, activity.Entry{
			URL:      sess.URL,
			Format:   string(job.Kind),
			Quality:  sess.Quality,
			Filename: filename,
			Status:   "completed",
		})
	}

	r.broadcaster.Progress(sess.Snapshot())
	r.broadcaster.Completed(sess.Id, filename)
}

func (r *Runner) fail(job *Job, raw string) {
	sess := job.Session

	message := platform.ClassifyError(r.registry.Resolve(sess.URL), raw)

	// the classified message is for the user, the raw text stays here
	slog.Error("download failed",
		slog.String("id", sess.Id),
		slog.String("url", sess.URL),
		slog.String("err", raw),
	)

	sess.Fail(message)

	if job.Caller != "" {
		r.activity.Record(job.Caller, activity.KindDownloadFailed, activity.Entry{
			URL:     sess.URL,
			Format:  string(job.Kind),
			Quality: sess.Quality,
			Status:  "failed",
		})
	}

	r.broadcaster.Progress(sess.Snapshot())
	r.broadcaster.Errored(sess.Id, message)
}

// stagger sleeps a random 0.2-0.9s, bailing early on cancellation.
func stagger(ctx context.Context) {
	delay := time.Duration(200+rand.Intn(700)) * time.Millisecond

	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}
}
