package config

const (
	defaultTemporalAddress     = "localhost:7233"
	defaultTemporalNamespace   = "default"
	defaultTaskQueue           = "SERA"
	defaultMaxActivities       = 10
	defaultMaxWorkflowTasks    = 10
	defaultInputRoot           = "/mnt/media/input"
	defaultProcessingRoot      = "/mnt/media/processing"
	defaultStagingRoot         = "/mnt/media/staging"
	defaultOutputRoot          = "/mnt/media/output"
	defaultAnthropicBaseURL    = "https://api.anthropic.com"
	defaultAnthropicModel      = "claude-3-5-haiku-latest"
	defaultAniListBaseURL      = "https://graphql.anilist.co"
	defaultConfidenceThreshold = 0.85
	defaultLogLevel            = "info"
	defaultLogFormat           = "console"
	defaultHistoryDBPath       = "~/.local/share/sera/history.db"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Temporal: Temporal{
			Address:   defaultTemporalAddress,
			Namespace: defaultTemporalNamespace,
			TaskQueue: defaultTaskQueue,
		},
		Worker: Worker{
			MaxConcurrentActivities:    defaultMaxActivities,
			MaxConcurrentWorkflowTasks: defaultMaxWorkflowTasks,
		},
		Media: Media{
			InputRoot:      defaultInputRoot,
			ProcessingRoot: defaultProcessingRoot,
			StagingRoot:    defaultStagingRoot,
			OutputRoot:     defaultOutputRoot,
		},
		Anthropic: Anthropic{
			BaseURL: defaultAnthropicBaseURL,
			Model:   defaultAnthropicModel,
		},
		AniList: AniList{
			BaseURL: defaultAniListBaseURL,
		},
		Matching: Matching{
			ConfidenceThreshold: defaultConfidenceThreshold,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		HistoryDBPath: defaultHistoryDBPath,
	}
}
