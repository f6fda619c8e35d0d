package subtitles

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"sera/internal/logging"
	"sera/internal/organize"
	"sera/internal/services"
)

const (
	ffprobeBinary = "ffprobe"
	ffmpegBinary  = "ffmpeg"
)

var sidecarExtensions = []string{".srt", ".ass", ".ssa", ".vtt", ".sub"}

// textCodecs are embedded subtitle codecs ffmpeg can render as SRT.
// Bitmap formats (PGS, VobSub) are skipped.
var textCodecs = map[string]struct{}{
	"subrip":   {},
	"srt":      {},
	"ass":      {},
	"ssa":      {},
	"mov_text": {},
	"webvtt":   {},
}

type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func defaultRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Extractor extracts plain-text dialogue from media files.
type Extractor struct {
	logger *slog.Logger
	run    commandRunner
}

// NewExtractor constructs a subtitle extractor.
func NewExtractor(logger *slog.Logger) *Extractor {
	return &Extractor{
		logger: logging.NewComponentLogger(logger, "subtitles"),
		run:    defaultRunner,
	}
}

// WithCommandRunner injects a custom command runner (used in tests).
func (e *Extractor) WithCommandRunner(r commandRunner) {
	if e != nil && r != nil {
		e.run = r
	}
}

// Extract returns the dialogue text for mediaPath, writing the cache file
// under targetDir. Returns nil when the file carries no usable subtitles;
// per-file failures are the caller's to tolerate.
func (e *Extractor) Extract(ctx context.Context, mediaPath, mediaName, targetDir string) (*organize.SubtitleFile, error) {
	base := strings.TrimSuffix(mediaName, filepath.Ext(mediaName))
	cachePath := filepath.Join(targetDir, base+".txt")

	if data, err := os.ReadFile(cachePath); err == nil {
		e.logger.Debug("subtitle cache hit", logging.String("file", mediaName))
		return &organize.SubtitleFile{
			FilePath: cachePath,
			FileName: filepath.Base(cachePath),
			Content:  string(data),
			Source:   sourceForCached(mediaPath),
		}, nil
	}

	text, source, language, err := e.extractText(ctx, mediaPath)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return nil, fmt.Errorf("create subtitle directory: %w", err)
	}
	if err := os.WriteFile(cachePath, []byte(text), 0o644); err != nil {
		return nil, fmt.Errorf("write subtitle cache: %w", err)
	}

	return &organize.SubtitleFile{
		FilePath: cachePath,
		FileName: filepath.Base(cachePath),
		Content:  text,
		Source:   source,
		Language: language,
	}, nil
}

func sourceForCached(mediaPath string) string {
	if _, ok := findSidecar(mediaPath); ok {
		return "external"
	}
	return "embedded"
}

func (e *Extractor) extractText(ctx context.Context, mediaPath string) (text, source, language string, err error) {
	if sidecar, ok := findSidecar(mediaPath); ok {
		data, readErr := os.ReadFile(sidecar)
		if readErr != nil {
			return "", "", "", fmt.Errorf("read sidecar: %w", readErr)
		}
		return ToPlainText(string(data), filepath.Ext(sidecar)), "external", "", nil
	}

	stream, ok, probeErr := e.probeSubtitleStream(ctx, mediaPath)
	if probeErr != nil {
		return "", "", "", probeErr
	}
	if !ok {
		return "", "", "", nil
	}

	out, runErr := e.run(ctx, ffmpegBinary,
		"-v", "error",
		"-i", mediaPath,
		"-map", fmt.Sprintf("0:%d", stream.Index),
		"-f", "srt",
		"-",
	)
	if runErr != nil {
		return "", "", "", services.Wrap(services.ErrExternalTool, "subtitles", "ffmpeg", "subtitle extraction", runErr)
	}
	return ToPlainText(string(out), ".srt"), "embedded", stream.Tags.Language, nil
}

func findSidecar(mediaPath string) (string, bool) {
	base := strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath))
	for _, ext := range sidecarExtensions {
		for _, candidate := range []string{base + ext, base + strings.ToUpper(ext)} {
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true
			}
		}
	}
	return "", false
}

type probeStream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Tags      struct {
		Language string `json:"language"`
	} `json:"tags"`
}

type probeResult struct {
	Streams []probeStream `json:"streams"`
}

// probeSubtitleStream picks the embedded text subtitle stream to extract,
// preferring English tracks.
func (e *Extractor) probeSubtitleStream(ctx context.Context, mediaPath string) (probeStream, bool, error) {
	out, err := e.run(ctx, ffprobeBinary,
		"-v", "error",
		"-show_streams",
		"-select_streams", "s",
		"-of", "json",
		"--", mediaPath,
	)
	if err != nil {
		return probeStream{}, false, services.Wrap(services.ErrExternalTool, "subtitles", "ffprobe", "stream probe", err)
	}
	var result probeResult
	if err := json.Unmarshal(out, &result); err != nil {
		return probeStream{}, false, services.Wrap(services.ErrExternalTool, "subtitles", "ffprobe", "parse output", err)
	}

	var fallback *probeStream
	for i := range result.Streams {
		stream := result.Streams[i]
		if _, textual := textCodecs[strings.ToLower(stream.CodecName)]; !textual {
			continue
		}
		if strings.EqualFold(stream.Tags.Language, "eng") {
			return stream, true, nil
		}
		if fallback == nil {
			fallback = &result.Streams[i]
		}
	}
	if fallback != nil {
		return *fallback, true, nil
	}
	return probeStream{}, false, nil
}
