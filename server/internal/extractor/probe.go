package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os/exec"
	"syscall"

	"github.com/eliotdl/yt-any/server/formats"
)

// Metadata is the probe result for a single item.
type Metadata struct {
	Title       string   `json:"title"`
	Duration    float64  `json:"duration"`
	Uploader    string   `json:"uploader"`
	Thumbnail   string   `json:"thumbnail"`
	Description string   `json:"description"`
	Formats     []Format `json:"formats"`
}

// Format is one available rendition.
type Format struct {
	FormatId       string `json:"format_id"`
	Height         int    `json:"height"`
	VCodec         string `json:"vcodec"`
	Ext            string `json:"ext"`
	Filesize       int64  `json:"filesize"`
	FilesizeApprox int64  `json:"filesize_approx"`
}

// Size returns the best known rendition size in bytes, 0 when unknown.
func (f Format) Size() int64 {
	if f.Filesize > 0 {
		return f.Filesize
	}
	return f.FilesizeApprox
}

// Probe extracts metadata without downloading. Like Fetch, a failure
// surfaces the raw stderr as opaque error text.
func (e *Extractor) Probe(ctx context.Context, url string, cfg *formats.FetchConfig) (*Metadata, error) {
	params := append([]string{url, "-J", "--no-warnings"}, cfg.ProbeArgs()...)

	cmd := exec.CommandContext(ctx, e.binaryPath, params...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}

	// exec copies into the buffer itself and Wait joins that copy
	var bufferedStderr bytes.Buffer
	cmd.Stderr = &bufferedStderr

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	slog.Info("retrieving metadata", slog.String("url", url))

	var meta Metadata
	decodeErr := json.NewDecoder(stdout).Decode(&meta)

	if err := cmd.Wait(); err != nil {
		return nil, errors.New(bufferedStderr.String())
	}

	if decodeErr != nil {
		return nil, decodeErr
	}

	return &meta, nil
}
