package runner

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/eliotdl/yt-any/server/formats"
)

var ErrArtifactNotFound = errors.New("downloaded file not found")

// Plausible output extensions per media kind. Post-processing (remux,
// audio transcode, image conversion) can change the extension the
// progress stream reported, so the tentative path is probed against
// each candidate in order.
var candidateExtensions = map[formats.MediaKind][]string{
	formats.KindVideo: {".mp4", ".mkv", ".webm"},
	formats.KindAudio: {".mp3", ".m4a", ".opus"},
	formats.KindPhoto: {".jpg", ".jpeg", ".png", ".gif", ".webp"},
}

// ResolveArtifact returns the first existing path among the tentative
// path and its per-kind extension substitutions. A miss on every
// candidate is fatal for the job, never retried.
func ResolveArtifact(tentative string, kind formats.MediaKind) (string, error) {
	if tentative == "" {
		return "", ErrArtifactNotFound
	}

	base := strings.TrimSuffix(tentative, filepath.Ext(tentative))

	candidates := []string{tentative}
	for _, ext := range candidateExtensions[kind] {
		candidates = append(candidates, base+ext)
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", ErrArtifactNotFound
}
