package formats

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/eliotdl/yt-any/server/platform"
)

func TestVideoSelector(t *testing.T) {
	tests := []struct {
		quality string
		height  string
	}{
		{"1080p", "1080"},
		{"720p", "720"},
		{"480p", "480"},
		{"144p", "144"},
	}

	for _, tt := range tests {
		sel := VideoSelector(tt.quality)
		if !strings.Contains(sel, "height<="+tt.height) {
			t.Errorf("VideoSelector(%q) = %q, want height bound %s", tt.quality, sel, tt.height)
		}
		if !strings.Contains(sel, "ext=mp4") {
			t.Errorf("VideoSelector(%q) = %q, want mp4 preference", tt.quality, sel)
		}
	}
}

func TestVideoSelectorBest(t *testing.T) {
	for _, quality := range []string{BestSentinel, "", "abc"} {
		sel := VideoSelector(quality)
		if sel != "bv*+ba/b" {
			t.Errorf("VideoSelector(%q) = %q, want unbounded selector", quality, sel)
		}
		if strings.Contains(sel, "height") {
			t.Errorf("VideoSelector(%q) must not cap height", quality)
		}
	}
}

func TestParseKind(t *testing.T) {
	for _, valid := range []string{"video", "audio", "photo"} {
		if _, err := ParseKind(valid); err != nil {
			t.Errorf("ParseKind(%q) failed: %v", valid, err)
		}
	}

	if kind, err := ParseKind(""); err != nil || kind != KindVideo {
		t.Errorf("ParseKind(\"\") = %q, %v; want video default", kind, err)
	}

	if _, err := ParseKind("playlist"); err == nil {
		t.Error("ParseKind(\"playlist\") should fail")
	}
}

func TestBuildHeaderMergeOrder(t *testing.T) {
	b := &Builder{DownloadDir: t.TempDir()}

	pol := &platform.Config{
		UserAgent: "agent-from-policy",
		Headers: map[string]string{
			"User-Agent": "agent-from-headers",
			"DNT":        "1",
		},
		Referer: "https://example.com/",
	}

	cfg := b.Build("https://example.com/v", KindVideo, "best", pol, "")

	// custom headers overwrite the user agent, referer lands last
	if got := cfg.HTTPHeaders["User-Agent"]; got != "agent-from-headers" {
		t.Errorf("User-Agent = %q, want custom header to win", got)
	}
	if got := cfg.HTTPHeaders["Referer"]; got != "https://example.com/" {
		t.Errorf("Referer = %q", got)
	}
	if got := cfg.HTTPHeaders["DNT"]; got != "1" {
		t.Errorf("DNT = %q", got)
	}
}

func TestBuildCookiePolicy(t *testing.T) {
	dir := t.TempDir()

	supplied := filepath.Join(dir, "supplied.txt")
	if err := os.WriteFile(supplied, []byte("c"), 0644); err != nil {
		t.Fatal(err)
	}
	fallback := filepath.Join(dir, "cookies.txt")

	mandatory := &platform.Config{RequiresCookies: true, Description: "p"}

	t.Run("mandated prefers supplied", func(t *testing.T) {
		b := &Builder{DownloadDir: dir, DefaultCookieFile: fallback}
		cfg := b.Build("u", KindVideo, "best", mandatory, supplied)
		if cfg.CookieFile != supplied || cfg.CookieNote != "" {
			t.Errorf("got file=%q note=%q", cfg.CookieFile, cfg.CookieNote)
		}
	})

	t.Run("mandated falls back to default", func(t *testing.T) {
		if err := os.WriteFile(fallback, []byte("d"), 0644); err != nil {
			t.Fatal(err)
		}
		defer os.Remove(fallback)

		b := &Builder{DownloadDir: dir, DefaultCookieFile: fallback}
		cfg := b.Build("u", KindVideo, "best", mandatory, "")
		if cfg.CookieFile != fallback || cfg.CookieNote != "" {
			t.Errorf("got file=%q note=%q", cfg.CookieFile, cfg.CookieNote)
		}
	})

	t.Run("mandated with nothing proceeds with note", func(t *testing.T) {
		b := &Builder{DownloadDir: dir, DefaultCookieFile: fallback}
		cfg := b.Build("u", KindVideo, "best", mandatory, "")
		if cfg.CookieFile != "" {
			t.Errorf("expected no cookie file, got %q", cfg.CookieFile)
		}
		if cfg.CookieNote == "" {
			t.Error("expected a warning note")
		}
	})

	t.Run("opportunistic without mandate", func(t *testing.T) {
		b := &Builder{DownloadDir: dir, DefaultCookieFile: fallback}
		cfg := b.Build("u", KindVideo, "best", nil, supplied)
		if cfg.CookieFile != supplied {
			t.Errorf("expected supplied cookie applied, got %q", cfg.CookieFile)
		}

		cfg = b.Build("u", KindVideo, "best", nil, "")
		if cfg.CookieFile != "" || cfg.CookieNote != "" {
			t.Errorf("expected bare config, got file=%q note=%q", cfg.CookieFile, cfg.CookieNote)
		}
	})
}

func TestBuildKindBranches(t *testing.T) {
	b := &Builder{DownloadDir: t.TempDir()}

	audio := b.Build("u", KindAudio, "best", nil, "")
	if audio.Selector != AudioSelector || !audio.ExtractAudio {
		t.Errorf("audio config = %+v", audio)
	}
	if audio.AudioCodec != AudioCodec || audio.AudioQuality != AudioQuality {
		t.Errorf("audio transcode = %s/%s", audio.AudioCodec, audio.AudioQuality)
	}

	photo := b.Build("u", KindPhoto, "best", nil, "")
	if photo.Selector != PhotoSelector || !photo.SkipSideFiles {
		t.Errorf("photo config = %+v", photo)
	}

	video := b.Build("u", KindVideo, "720p", nil, "")
	if !strings.Contains(video.Selector, "height<=720") {
		t.Errorf("video selector = %q", video.Selector)
	}
	if video.MergeOutputFormat != "mp4" {
		t.Errorf("video merge format = %q, want mp4", video.MergeOutputFormat)
	}
	if audio.MergeOutputFormat != "" || photo.MergeOutputFormat != "" {
		t.Error("merge format only applies to the video branch")
	}
}

func TestBuildExtractorTuning(t *testing.T) {
	b := &Builder{DownloadDir: t.TempDir()}

	// unconfigured platform and youtube links carry the tuned player
	// client list and live replay support
	for _, url := range []string{
		"https://example.com/watch/1",
		"https://www.youtube.com/watch?v=abc",
	} {
		cfg := b.Build(url, KindVideo, "best", nil, "")
		if len(cfg.ExtractorArgs) == 0 || !cfg.LiveFromStart {
			t.Errorf("%s: missing extractor tuning: %+v", url, cfg)
			continue
		}
		if !strings.Contains(cfg.ExtractorArgs[0], "player_client=web,android,ios,tv_embedded") {
			t.Errorf("%s: player clients = %q", url, cfg.ExtractorArgs[0])
		}
	}

	configured := b.Build("https://vimeo.com/1", KindVideo, "best", &platform.Config{}, "")
	if len(configured.ExtractorArgs) != 0 || configured.LiveFromStart {
		t.Errorf("configured platform should not get youtube tuning: %+v", configured)
	}
}

func TestArgsRendering(t *testing.T) {
	b := &Builder{DownloadDir: t.TempDir()}
	cfg := b.Build("u", KindAudio, "best", nil, "")

	args := cfg.Args()

	for _, want := range []string{"--no-playlist", "-x", "--retries", "--concurrent-fragments"} {
		if !slices.Contains(args, want) {
			t.Errorf("Args() missing %q: %v", want, args)
		}
	}

	// header args are sorted for deterministic command lines
	cfg.HTTPHeaders = map[string]string{"Z": "1", "A": "2"}
	args = cfg.Args()
	first := slices.Index(args, "A:2")
	second := slices.Index(args, "Z:1")
	if first == -1 || second == -1 || first > second {
		t.Errorf("expected sorted headers in %v", args)
	}

	video := b.Build("https://youtube.com/watch?v=abc", KindVideo, "best", nil, "")
	args = video.Args()
	for _, want := range []string{"--merge-output-format", "mp4", "--extractor-args", "--live-from-start"} {
		if !slices.Contains(args, want) {
			t.Errorf("Args() missing %q: %v", want, args)
		}
	}
}
