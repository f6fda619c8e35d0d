package activities

import (
	"context"
	"fmt"
	"os"

	"sera/internal/logging"
	"sera/internal/organize"
	"sera/internal/services/anthropic"
	"sera/internal/subtitles"
)

// MatchDocument points the matcher at one media file's cached dialogue.
type MatchDocument struct {
	FileName     string `json:"fileName"`
	FilePath     string `json:"filePath"`
	SubtitlePath string `json:"subtitlePath"`
}

// MatchEpisodesInput is one matcher call over a folder's episode set.
type MatchEpisodesInput struct {
	Documents []MatchDocument         `json:"documents"`
	Metadata  organize.SeriesMetadata `json:"metadata"`
}

// MatchEpisodesResult lists the validated assignments.
type MatchEpisodesResult struct {
	Matches []organize.EpisodeMatch `json:"matches"`
}

// MatchEpisodes loads the cached dialogue for every document, trims the
// combined text to the matcher budget, and asks the model for assignments.
func (a *Activities) MatchEpisodes(ctx context.Context, in MatchEpisodesInput) (MatchEpisodesResult, error) {
	contents := make([]string, len(in.Documents))
	for i, doc := range in.Documents {
		data, err := os.ReadFile(doc.SubtitlePath)
		if err != nil {
			return MatchEpisodesResult{}, fmt.Errorf("read dialogue for %s: %w", doc.FileName, err)
		}
		contents[i] = string(data)
	}
	contents = subtitles.TruncateProportionally(contents, subtitles.MatcherBudget)

	docs := make([]anthropic.Document, len(in.Documents))
	for i, doc := range in.Documents {
		docs[i] = anthropic.Document{
			FileName: doc.FileName,
			FilePath: doc.FilePath,
			Content:  contents[i],
		}
	}

	matches, err := a.matcher.MatchEpisodes(ctx, docs, in.Metadata)
	if err != nil {
		return MatchEpisodesResult{}, serviceError(fmt.Errorf("match episodes: %w", err))
	}
	a.logger.Info("episode matching finished",
		logging.Int("documents", len(docs)),
		logging.Int("matches", len(matches)),
	)
	return MatchEpisodesResult{Matches: matches}, nil
}
