package formats

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/eliotdl/yt-any/server/platform"
	"github.com/eliotdl/yt-any/server/sys"
)

// MediaKind selects the download branch: video, audio or photo.
type MediaKind string

const (
	KindVideo MediaKind = "video"
	KindAudio MediaKind = "audio"
	KindPhoto MediaKind = "photo"
)

var ErrUnknownKind = errors.New("unknown media kind")

func ParseKind(s string) (MediaKind, error) {
	switch MediaKind(s) {
	case KindVideo, KindAudio, KindPhoto:
		return MediaKind(s), nil
	case "":
		return KindVideo, nil
	}
	return "", ErrUnknownKind
}

// FetchConfig is the merged option set for one job, assembled fresh
// from the platform policy, the cookie selection and the requested
// media kind. It is never shared across jobs.
type FetchConfig struct {
	URL      string
	Kind     MediaKind
	Quality  string
	Selector string

	// merged in order: user agent, custom headers, referer; later
	// entries overwrite earlier keys
	HTTPHeaders map[string]string

	CookieFile string
	// Warning-level note set when a mandated cookie file is missing.
	// Not an error: the job proceeds without cookies.
	CookieNote string

	OutputTemplate string

	// container for merged video+audio output
	MergeOutputFormat string

	// NAME:ARGS entries for the extractor, and live replay handling;
	// set for unconfigured platforms and youtube links
	ExtractorArgs []string
	LiveFromStart bool

	Retries             int
	FragmentRetries     int
	ExtractorRetries    int
	ConcurrentFragments int
	SocketTimeout       time.Duration

	ExtractAudio bool
	AudioCodec   string
	AudioQuality string

	SkipSideFiles bool

	FFmpegLocation string
}

// Builder resolves per-job fetch configuration against a platform
// registry and the local environment.
type Builder struct {
	DownloadDir       string
	FFmpegDir         string
	DefaultCookieFile string
}

// Build produces the FetchConfig for one request. cookiePath is the
// already-resolved cookie file, empty when the caller supplied none.
func (b *Builder) Build(url string, kind MediaKind, quality string, pol *platform.Config, cookiePath string) *FetchConfig {
	cfg := &FetchConfig{
		URL:                 url,
		Kind:                kind,
		Quality:             quality,
		OutputTemplate:      filepath.Join(b.DownloadDir, "%(title).150B-%(id)s.%(ext)s"),
		Retries:             20,
		FragmentRetries:     20,
		ExtractorRetries:    10,
		ConcurrentFragments: 5,
		SocketTimeout:       30 * time.Second,
	}

	if pol != nil {
		headers := make(map[string]string)
		if pol.UserAgent != "" {
			headers["User-Agent"] = pol.UserAgent
		}
		for k, v := range pol.Headers {
			headers[k] = v
		}
		if pol.Referer != "" {
			headers["Referer"] = pol.Referer
		}
		if len(headers) > 0 {
			cfg.HTTPHeaders = headers
		}
	}

	cfg.CookieFile, cfg.CookieNote = b.selectCookie(pol, cookiePath)

	switch kind {
	case KindAudio:
		cfg.Selector = AudioSelector
		cfg.ExtractAudio = true
		cfg.AudioCodec = AudioCodec
		cfg.AudioQuality = AudioQuality
	case KindPhoto:
		cfg.Selector = PhotoSelector
		cfg.SkipSideFiles = true
	default:
		cfg.Selector = VideoSelector(quality)
		cfg.MergeOutputFormat = "mp4"
	}

	if pol == nil || strings.Contains(strings.ToLower(url), "youtube.com") {
		cfg.ExtractorArgs = []string{"youtube:player_client=web,android,ios,tv_embedded;max_comments=0"}
		cfg.LiveFromStart = true
	}

	if sys.FFmpegAvailable(b.FFmpegDir) {
		cfg.FFmpegLocation = b.FFmpegDir
	}

	return cfg
}

// selectCookie applies the cookie policy. A mandated cookie prefers
// the supplied file, falls back to the default file, else proceeds
// bare with a note. Without a mandate a supplied file is still used
// opportunistically.
func (b *Builder) selectCookie(pol *platform.Config, cookiePath string) (path, note string) {
	if pol != nil && pol.RequiresCookies {
		if cookiePath != "" && exists(cookiePath) {
			return cookiePath, ""
		}
		if exists(b.DefaultCookieFile) {
			return b.DefaultCookieFile, ""
		}
		return "", "platform may require cookies for full access"
	}

	if cookiePath != "" && exists(cookiePath) {
		return cookiePath, ""
	}

	return "", ""
}

// Args renders the config as extractor command line arguments.
func (c *FetchConfig) Args() []string {
	args := []string{
		"-f", c.Selector,
		"-o", c.OutputTemplate,
		"--no-playlist",
		"--retries", strconv.Itoa(c.Retries),
		"--fragment-retries", strconv.Itoa(c.FragmentRetries),
		"--extractor-retries", strconv.Itoa(c.ExtractorRetries),
		"--retry-sleep", "http:exp=1:30",
		"--retry-sleep", "fragment:exp=1:30",
		"--retry-sleep", "extractor:exp=1:30",
		"--concurrent-fragments", strconv.Itoa(c.ConcurrentFragments),
		"--socket-timeout", strconv.Itoa(int(c.SocketTimeout.Seconds())),
	}

	args = append(args, c.commonArgs()...)

	if c.MergeOutputFormat != "" {
		args = append(args, "--merge-output-format", c.MergeOutputFormat)
	}

	if c.ExtractAudio {
		args = append(args,
			"-x",
			"--audio-format", c.AudioCodec,
			"--audio-quality", c.AudioQuality,
		)
	}

	if c.SkipSideFiles {
		args = append(args, "--no-write-thumbnail", "--no-write-info-json")
	}

	if c.FFmpegLocation != "" {
		args = append(args, "--ffmpeg-location", c.FFmpegLocation)
	}

	return args
}

// ProbeArgs renders only the arguments relevant to a metadata lookup.
func (c *FetchConfig) ProbeArgs() []string {
	args := []string{
		"--no-playlist",
		"--socket-timeout", strconv.Itoa(int(c.SocketTimeout.Seconds())),
	}
	return append(args, c.commonArgs()...)
}

func (c *FetchConfig) commonArgs() []string {
	var args []string

	keys := make([]string, 0, len(c.HTTPHeaders))
	for k := range c.HTTPHeaders {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "--add-header", fmt.Sprintf("%s:%s", k, c.HTTPHeaders[k]))
	}

	if c.CookieFile != "" {
		args = append(args, "--cookies", c.CookieFile)
	}

	for _, ea := range c.ExtractorArgs {
		args = append(args, "--extractor-args", ea)
	}
	if c.LiveFromStart {
		args = append(args, "--live-from-start")
	}

	return args
}

func exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
