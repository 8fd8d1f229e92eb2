package runner

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/eliotdl/yt-any/server/formats"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestResolveArtifactPrefersTentative(t *testing.T) {
	dir := t.TempDir()
	tentative := filepath.Join(dir, "clip.webm")
	touch(t, tentative)
	touch(t, filepath.Join(dir, "clip.mp4"))

	got, err := ResolveArtifact(tentative, formats.KindVideo)
	if err != nil {
		t.Fatal(err)
	}
	if got != tentative {
		t.Errorf("got %q, want the tentative path itself", got)
	}
}

func TestResolveArtifactSubstitutesExtension(t *testing.T) {
	dir := t.TempDir()

	// remux case: reported .webm, remuxed artifact is .mp4
	touch(t, filepath.Join(dir, "clip.mp4"))
	got, err := ResolveArtifact(filepath.Join(dir, "clip.webm"), formats.KindVideo)
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(dir, "clip.mp4") {
		t.Errorf("got %q", got)
	}

	// transcode case: reported .m4a source, artifact is .mp3
	touch(t, filepath.Join(dir, "song.mp3"))
	got, err = ResolveArtifact(filepath.Join(dir, "song.m4a"), formats.KindAudio)
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(dir, "song.mp3") {
		t.Errorf("got %q", got)
	}

	// image conversion
	touch(t, filepath.Join(dir, "pic.webp"))
	got, err = ResolveArtifact(filepath.Join(dir, "pic.jpg"), formats.KindPhoto)
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(dir, "pic.webp") {
		t.Errorf("got %q", got)
	}
}

func TestResolveArtifactNotFound(t *testing.T) {
	dir := t.TempDir()

	// an audio candidate must not satisfy a video request
	touch(t, filepath.Join(dir, "clip.mp3"))

	_, err := ResolveArtifact(filepath.Join(dir, "clip.webm"), formats.KindVideo)
	if !errors.Is(err, ErrArtifactNotFound) {
		t.Errorf("expected ErrArtifactNotFound, got %v", err)
	}

	if _, err := ResolveArtifact("", formats.KindVideo); !errors.Is(err, ErrArtifactNotFound) {
		t.Errorf("expected ErrArtifactNotFound for empty tentative, got %v", err)
	}
}
