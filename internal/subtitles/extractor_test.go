package subtitles

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sera/internal/logging"
)

func TestExtractCacheHit(t *testing.T) {
	dir := t.TempDir()
	cached := "Previously extracted dialogue"
	if err := os.WriteFile(filepath.Join(dir, "ep1.txt"), []byte(cached), 0o644); err != nil {
		t.Fatal(err)
	}

	e := NewExtractor(logging.NewNop())
	e.WithCommandRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		t.Fatal("command runner invoked on cache hit")
		return nil, nil
	})

	sub, err := e.Extract(context.Background(), filepath.Join(dir, "ep1.mkv"), "ep1.mkv", dir)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if sub == nil || sub.Content != cached {
		t.Fatalf("sub = %+v, want cached content", sub)
	}
	if sub.FileName != "ep1.txt" {
		t.Fatalf("FileName = %q", sub.FileName)
	}
}

func TestExtractSidecar(t *testing.T) {
	dir := t.TempDir()
	media := filepath.Join(dir, "ep2.mkv")
	srt := "1\n00:00:01,000 --> 00:00:02,000\nSidecar dialogue\n"
	if err := os.WriteFile(media, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ep2.srt"), []byte(srt), 0o644); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(dir, "_subtitles")

	e := NewExtractor(logging.NewNop())
	e.WithCommandRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		t.Fatal("command runner invoked with a sidecar present")
		return nil, nil
	})

	sub, err := e.Extract(context.Background(), media, "ep2.mkv", target)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if sub == nil {
		t.Fatal("expected subtitle from sidecar")
	}
	if sub.Source != "external" {
		t.Fatalf("Source = %q, want external", sub.Source)
	}
	if sub.Content != "Sidecar dialogue" {
		t.Fatalf("Content = %q", sub.Content)
	}

	cache, err := os.ReadFile(filepath.Join(target, "ep2.txt"))
	if err != nil {
		t.Fatalf("cache file not written: %v", err)
	}
	if string(cache) != sub.Content {
		t.Fatal("cache content differs from returned content")
	}
}

func TestExtractEmbedded(t *testing.T) {
	dir := t.TempDir()
	media := filepath.Join(dir, "ep3.mkv")
	if err := os.WriteFile(media, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}

	probe := `{"streams":[
		{"index":2,"codec_name":"hdmv_pgs_subtitle","codec_type":"subtitle"},
		{"index":3,"codec_name":"subrip","codec_type":"subtitle","tags":{"language":"jpn"}},
		{"index":4,"codec_name":"ass","codec_type":"subtitle","tags":{"language":"eng"}}
	]}`
	srt := "1\n00:00:01,000 --> 00:00:02,000\nEmbedded dialogue\n"

	var ffmpegArgs []string
	e := NewExtractor(logging.NewNop())
	e.WithCommandRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		switch name {
		case "ffprobe":
			return []byte(probe), nil
		case "ffmpeg":
			ffmpegArgs = args
			return []byte(srt), nil
		default:
			return nil, fmt.Errorf("unexpected command %q", name)
		}
	})

	sub, err := e.Extract(context.Background(), media, "ep3.mkv", filepath.Join(dir, "_subtitles"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if sub == nil {
		t.Fatal("expected embedded subtitle")
	}
	if sub.Source != "embedded" || sub.Language != "eng" {
		t.Fatalf("sub = %+v, want embedded/eng", sub)
	}
	if sub.Content != "Embedded dialogue" {
		t.Fatalf("Content = %q", sub.Content)
	}
	if !strings.Contains(strings.Join(ffmpegArgs, " "), "0:4") {
		t.Fatalf("ffmpeg args %v should map the English track", ffmpegArgs)
	}
}

func TestExtractNoSubtitles(t *testing.T) {
	dir := t.TempDir()
	media := filepath.Join(dir, "ep4.mkv")
	if err := os.WriteFile(media, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}

	e := NewExtractor(logging.NewNop())
	e.WithCommandRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		if name == "ffprobe" {
			return []byte(`{"streams":[{"index":2,"codec_name":"hdmv_pgs_subtitle","codec_type":"subtitle"}]}`), nil
		}
		return nil, fmt.Errorf("unexpected command %q", name)
	})

	sub, err := e.Extract(context.Background(), media, "ep4.mkv", filepath.Join(dir, "_subtitles"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if sub != nil {
		t.Fatalf("sub = %+v, want nil for bitmap-only streams", sub)
	}
}

func TestExtractPrefersNonEnglishFallback(t *testing.T) {
	dir := t.TempDir()
	media := filepath.Join(dir, "ep5.mkv")
	if err := os.WriteFile(media, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}

	probe := `{"streams":[{"index":1,"codec_name":"subrip","codec_type":"subtitle","tags":{"language":"jpn"}}]}`
	srt := "1\n00:00:01,000 --> 00:00:02,000\nJapanese dialogue\n"

	e := NewExtractor(logging.NewNop())
	e.WithCommandRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		if name == "ffprobe" {
			return []byte(probe), nil
		}
		return []byte(srt), nil
	})

	sub, err := e.Extract(context.Background(), media, "ep5.mkv", filepath.Join(dir, "_subtitles"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if sub == nil || sub.Language != "jpn" {
		t.Fatalf("sub = %+v, want the jpn fallback track", sub)
	}
}
