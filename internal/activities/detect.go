package activities

import (
	"context"
	"fmt"

	"sera/internal/detector"
	"sera/internal/logging"
	"sera/internal/organize"
)

// DetectEpisodesInput names the folder to classify.
type DetectEpisodesInput struct {
	FolderPath string `json:"folderPath"`
}

// DetectEpisodes partitions a folder's video files into episodes and
// non-episodes using the size-cluster heuristic.
func (a *Activities) DetectEpisodes(ctx context.Context, in DetectEpisodesInput) (organize.DetectionResult, error) {
	result, err := detector.Detect(in.FolderPath)
	if err != nil {
		return organize.DetectionResult{}, fmt.Errorf("detect episodes in %s: %w", in.FolderPath, err)
	}
	a.logger.Info("episode detection finished",
		logging.String("folder", in.FolderPath),
		logging.Int("episodes", len(result.Episodes)),
		logging.Int("nonEpisodes", len(result.NonEpisodes)),
		logging.String("confidence", string(result.Confidence)),
	)
	return result, nil
}
