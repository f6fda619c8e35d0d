package activities

import (
	"log/slog"

	"go.temporal.io/sdk/temporal"

	"sera/internal/config"
	"sera/internal/history"
	"sera/internal/logging"
	"sera/internal/services"
	"sera/internal/services/anilist"
	"sera/internal/services/anthropic"
	"sera/internal/subtitles"
)

// Activities carries the worker-side dependencies shared by all activity
// implementations. One instance is registered per worker process.
type Activities struct {
	cfg       *config.Config
	logger    *slog.Logger
	catalogue *anilist.Client
	matcher   *anthropic.Client
	extractor *subtitles.Extractor
	runs      *history.Store
}

// New constructs the activity set from process configuration.
func New(cfg *config.Config, logger *slog.Logger, runs *history.Store) *Activities {
	return &Activities{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "activities"),
		catalogue: anilist.NewClient(
			anilist.WithBaseURL(cfg.AniList.BaseURL),
		),
		matcher: anthropic.NewClient(anthropic.Config{
			APIKey:  cfg.Anthropic.APIKey,
			BaseURL: cfg.Anthropic.BaseURL,
			Model:   cfg.Anthropic.Model,
		}),
		extractor: subtitles.NewExtractor(logger),
		runs:      runs,
	}
}

// serviceError keeps validation, configuration, and not-found failures from
// burning retry attempts that cannot succeed.
func serviceError(err error) error {
	if err == nil {
		return nil
	}
	if services.NonRetryable(err) {
		return temporal.NewNonRetryableApplicationError(err.Error(), "ServiceError", err)
	}
	return err
}

// NewWithDependencies allows injecting collaborators (used in tests).
func NewWithDependencies(cfg *config.Config, logger *slog.Logger, catalogue *anilist.Client, matcher *anthropic.Client, extractor *subtitles.Extractor, runs *history.Store) *Activities {
	return &Activities{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "activities"),
		catalogue: catalogue,
		matcher:   matcher,
		extractor: extractor,
		runs:      runs,
	}
}
