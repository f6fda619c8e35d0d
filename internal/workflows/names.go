package workflows

// Registered workflow names.
const (
	OrganizeLibraryWorkflowName = "OrganizeLibrary"
	ProcessFolderWorkflowName   = "ProcessFolder"
)

// Query names. Both coordinators answer getProgress; the library
// additionally answers getStagingTree once Stage 4 has captured the layout.
const (
	QueryGetProgress    = "getProgress"
	QueryGetStagingTree = "getStagingTree"
)

// Signal names.
const (
	SignalFinalize              = "finalize"
	SignalReviewDecision        = "reviewDecision"
	SignalDetectionConfirmation = "detectionConfirmation"
)

// Activity names, matching the method names on activities.Activities.
const (
	activityEnumerateFiles      = "EnumerateFiles"
	activityCopyFile            = "CopyFile"
	activityCopyEpisodeFile     = "CopyEpisodeFile"
	activityMoveFile            = "MoveFile"
	activityVerifyOutput        = "VerifyOutput"
	activityRemoveDirectory     = "RemoveDirectory"
	activityListSubdirectories  = "ListSubdirectories"
	activityListEpisodeFiles    = "ListEpisodeFiles"
	activityListExtraFiles      = "ListExtraFiles"
	activityBuildStagingTree    = "BuildStagingTree"
	activityDetectEpisodes      = "DetectEpisodes"
	activityExtractSubtitles    = "ExtractSubtitles"
	activitySearchAnime         = "SearchAnime"
	activityDiscoverSeasons     = "DiscoverSeasons"
	activityFetchSeasonEpisodes = "FetchSeasonEpisodes"
	activityMatchEpisodes       = "MatchEpisodes"
	activityRecordRun           = "RecordRun"
)
