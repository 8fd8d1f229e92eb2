package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"syscall"

	"github.com/eliotdl/yt-any/server/formats"
)

// Extractor shells out to the downloader binary. It is the process
// boundary around the external extraction capability: callers get
// progress callbacks and an opaque error text, nothing else.
type Extractor struct {
	binaryPath string
}

func New(binaryPath string) *Extractor {
	return &Extractor{binaryPath: binaryPath}
}

// Fetch performs one download, invoking onProgress for every progress
// line the process emits. The returned error text is the raw stderr
// of the process and must be treated as opaque by callers.
func (e *Extractor) Fetch(ctx context.Context, url string, cfg *formats.FetchConfig, onProgress ProgressFunc) (*Result, error) {
	params := []string{
		url,
		"--newline",
		"--no-colors",
		"--no-warnings",
		"--progress-template",
		templateReplacer.Replace(downloadTemplate),
		"--progress-template",
		templateReplacer.Replace(postprocessTemplate),
		"--no-exec",
	}
	params = append(params, cfg.Args()...)

	slog.Info("requesting download", slog.String("url", url), slog.Any("params", params))

	cmd := exec.CommandContext(ctx, e.binaryPath, params...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}

	// exec copies into the buffer itself and Wait joins that copy,
	// so the text is complete once Wait returns
	var bufferedStderr bytes.Buffer
	cmd.Stderr = &bufferedStderr

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	consumeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	result := &Result{}

	lines := make(chan []byte)
	done := make(chan struct{})

	go produceLines(consumeCtx, stdout, lines)
	go func() {
		defer close(done)
		consumeLines(consumeCtx, lines, func(entry []byte) {
			parseLine(entry, result, onProgress)
		})
	}()

	// stdout reads must finish before Wait closes the pipe
	<-done

	if err := cmd.Wait(); err != nil {
		raw := strings.TrimSpace(bufferedStderr.String())
		if raw == "" {
			raw = err.Error()
		}
		return nil, errors.New(raw)
	}

	return result, nil
}

// parseLine dispatches one stdout line to the progress callback. The
// two template shapes share a JSON container; the status field marks
// download ticks, the filepath field postprocess steps.
func parseLine(entry []byte, result *Result, onProgress ProgressFunc) {
	var progress progressLine
	if err := json.Unmarshal(entry, &progress); err == nil && progress.Status == "downloading" {
		total := asBytes(progress.TotalBytes)
		if total <= 0 {
			total = asBytes(progress.TotalBytesEstimate)
		}

		if progress.Filename != "" {
			result.TentativePath = progress.Filename
		}

		onProgress(Progress{
			Kind:       ProgressDownloading,
			Filename:   progress.Filename,
			Downloaded: asBytes(progress.DownloadedBytes),
			Total:      total,
			Speed:      strings.TrimSpace(progress.SpeedStr),
			Eta:        strings.TrimSpace(progress.EtaStr),
		})
		return
	}

	var postprocess postprocessLine
	if err := json.Unmarshal(entry, &postprocess); err == nil && postprocess.FilePath != "" {
		result.TentativePath = postprocess.FilePath

		onProgress(Progress{
			Kind:     ProgressProcessing,
			FilePath: postprocess.FilePath,
		})
	}
}

func asBytes(v *float64) int64 {
	if v == nil {
		return -1
	}
	return int64(*v)
}
