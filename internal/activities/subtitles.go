package activities

import (
	"context"
	"fmt"

	"sera/internal/logging"
	"sera/internal/subtitles"
)

// SubtitleRef is the workflow-facing view of an extracted dialogue file. The
// full text stays on disk in the subtitle cache so coordinator state stays
// small; only the snippet travels.
type SubtitleRef struct {
	MediaPath    string `json:"mediaPath"`
	MediaName    string `json:"mediaName"`
	SubtitlePath string `json:"subtitlePath"`
	Source       string `json:"source"`
	Language     string `json:"language,omitempty"`
	Snippet      string `json:"snippet,omitempty"`
}

// ExtractSubtitlesInput names one media file and the cache directory.
type ExtractSubtitlesInput struct {
	MediaPath string `json:"mediaPath"`
	MediaName string `json:"mediaName"`
	TargetDir string `json:"targetDir"`
}

// ExtractSubtitlesResult carries the extraction outcome. Subtitle is nil
// when the file has no usable dialogue.
type ExtractSubtitlesResult struct {
	Subtitle *SubtitleRef `json:"subtitle,omitempty"`
}

// ExtractSubtitles pulls plain-text dialogue for one media file, serving
// repeat requests from the cache written on the first pass.
func (a *Activities) ExtractSubtitles(ctx context.Context, in ExtractSubtitlesInput) (ExtractSubtitlesResult, error) {
	subtitle, err := a.extractor.Extract(ctx, in.MediaPath, in.MediaName, in.TargetDir)
	if err != nil {
		return ExtractSubtitlesResult{}, fmt.Errorf("extract subtitles for %s: %w", in.MediaName, err)
	}
	if subtitle == nil {
		a.logger.Warn("no usable subtitles", logging.String("file", in.MediaName))
		return ExtractSubtitlesResult{}, nil
	}
	return ExtractSubtitlesResult{Subtitle: &SubtitleRef{
		MediaPath:    in.MediaPath,
		MediaName:    in.MediaName,
		SubtitlePath: subtitle.FilePath,
		Source:       subtitle.Source,
		Language:     subtitle.Language,
		Snippet:      subtitles.Snippet(subtitle.Content),
	}}, nil
}
