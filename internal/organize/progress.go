package organize

// WorkflowStage is the library coordinator's pipeline position. The string
// form is the wire representation for the query surface.
type WorkflowStage string

const (
	StageCopying           WorkflowStage = "copying"
	StageFetchingMetadata  WorkflowStage = "fetching_metadata"
	StageProcessingFolders WorkflowStage = "processing_folders"
	StageStructuring       WorkflowStage = "structuring"
	StageAwaitingFinalize  WorkflowStage = "awaiting_finalize"
	StageFinalizing        WorkflowStage = "finalizing"
	StageCompleted         WorkflowStage = "completed"
	StageFailed            WorkflowStage = "failed"
	StageCanceled          WorkflowStage = "canceled"
)

// FolderStatus is a folder coordinator's state-machine position.
type FolderStatus string

const (
	FolderPending                 FolderStatus = "pending"
	FolderScanning                FolderStatus = "scanning"
	FolderExtracting              FolderStatus = "extracting"
	FolderMatching                FolderStatus = "matching"
	FolderRenaming                FolderStatus = "renaming"
	FolderAwaitingDetectionReview FolderStatus = "awaiting_detection_review"
	FolderAwaitingReview          FolderStatus = "awaiting_review"
	FolderCompleted               FolderStatus = "completed"
	FolderFailed                  FolderStatus = "failed"
)

// Terminal reports whether the status is an end state.
func (s FolderStatus) Terminal() bool {
	return s == FolderCompleted || s == FolderFailed
}

// AwaitingHuman reports whether the folder is blocked on operator input.
func (s FolderStatus) AwaitingHuman() bool {
	return s == FolderAwaitingReview || s == FolderAwaitingDetectionReview
}

// CopyProgress tracks a parallel copy batch. CurrentFiles holds the names
// currently in flight.
type CopyProgress struct {
	TotalFiles   int      `json:"totalFiles"`
	FilesCopied  int      `json:"filesCopied"`
	TotalBytes   int64    `json:"totalBytes"`
	BytesCopied  int64    `json:"bytesCopied"`
	CurrentFiles []string `json:"currentFiles"`
}

// StructuringProgress tracks the local restructure of Stage 4.
type StructuringProgress struct {
	TotalFiles      int    `json:"totalFiles"`
	FilesStructured int    `json:"filesStructured"`
	CurrentFile     string `json:"currentFile,omitempty"`
}

// MetadataStatus tracks the catalogue lookup of Stage 2.
type MetadataStatus string

const (
	MetadataSearching        MetadataStatus = "searching"
	MetadataFound            MetadataStatus = "found"
	MetadataTraversing       MetadataStatus = "traversing"
	MetadataFetchingEpisodes MetadataStatus = "fetching_episodes"
	MetadataComplete         MetadataStatus = "complete"
)

// MetadataSummary is the query-surface view of the metadata lookup.
type MetadataSummary struct {
	Status     MetadataStatus `json:"status"`
	SeriesName string         `json:"seriesName,omitempty"`
	Seasons    []SeasonOption `json:"seasons,omitempty"`
}

// OrganizeLibraryProgress is the library coordinator's query snapshot.
type OrganizeLibraryProgress struct {
	Stage                      WorkflowStage           `json:"stage"`
	CopyProgress               *CopyProgress           `json:"copyProgress,omitempty"`
	MetadataSummary            *MetadataSummary        `json:"metadataSummary,omitempty"`
	StructuringProgress        *StructuringProgress    `json:"structuringProgress,omitempty"`
	OutputProgress             *CopyProgress           `json:"outputProgress,omitempty"`
	TotalFolders               int                     `json:"totalFolders"`
	FoldersCompleted           int                     `json:"foldersCompleted"`
	FoldersFailed              int                     `json:"foldersFailed"`
	FoldersInProgress          int                     `json:"foldersInProgress"`
	FoldersPendingReview       int                     `json:"foldersPendingReview"`
	FolderStatuses             map[string]FolderStatus `json:"folderStatuses"`
	ExpectedCoreEpisodeCount   int                     `json:"expectedCoreEpisodeCount"`
	ResolvedCoreEpisodeCount   int                     `json:"resolvedCoreEpisodeCount"`
	UnresolvedCoreEpisodeCount int                     `json:"unresolvedCoreEpisodeCount"`
	CanFinalize                bool                    `json:"canFinalize"`
	AwaitingFinalApproval      bool                    `json:"awaitingFinalApproval"`
}

// ProcessFolderProgress is a folder coordinator's query snapshot.
type ProcessFolderProgress struct {
	FolderName           string              `json:"folderName"`
	Status               FolderStatus        `json:"status"`
	TotalVideoFiles      int                 `json:"totalVideoFiles,omitempty"`
	DetectedEpisodeCount int                 `json:"detectedEpisodeCount,omitempty"`
	DetectionConfidence  DetectionConfidence `json:"detectionConfidence,omitempty"`
	TotalEpisodeFiles    int                 `json:"totalEpisodeFiles,omitempty"`
	SubtitlesExtracted   int                 `json:"subtitlesExtracted"`
	CurrentFile          string              `json:"currentFile,omitempty"`
	MatchesFound         int                 `json:"matchesFound,omitempty"`
	TotalToMatch         int                 `json:"totalToMatch,omitempty"`
	EpisodesCopied       int                 `json:"episodesCopied"`
	TotalEpisodesToCopy  int                 `json:"totalEpisodesToCopy,omitempty"`
	PendingReviews       []ReviewItem        `json:"pendingReviews"`
}

// ProcessFolderInput is the folder coordinator's input.
type ProcessFolderInput struct {
	FolderPath          string         `json:"folderPath"`
	FolderName          string         `json:"folderName"`
	SeriesRoot          string         `json:"seriesRoot"`
	ShowName            string         `json:"showName"`
	Metadata            SeriesMetadata `json:"metadata"`
	DryRun              bool           `json:"dryRun,omitempty"`
	ConfidenceThreshold float64        `json:"confidenceThreshold"`
}

// ProcessFolderResult is the folder coordinator's final report. Errors are
// projected into Error rather than failing the workflow so siblings and the
// parent continue.
type ProcessFolderResult struct {
	FolderName           string        `json:"folderName"`
	Status               FolderStatus  `json:"status"`
	TotalVideoFiles      int           `json:"totalVideoFiles"`
	EpisodesRenamed      int           `json:"episodesRenamed"`
	RenamedFiles         []RenamedFile `json:"renamedFiles"`
	EpisodeOriginalPaths []string      `json:"episodeOriginalPaths"`
	UnprocessedFiles     []string      `json:"unprocessedFiles"`
	Error                string        `json:"error,omitempty"`
}

// OrganizeLibraryInput starts a library run over one series directory. The
// three working roots come from the caller's configuration snapshot so the
// coordinator itself never reads the environment.
type OrganizeLibraryInput struct {
	SourceDir           string  `json:"sourceDir"`
	SeriesName          string  `json:"seriesName,omitempty"` // defaults to basename of SourceDir
	ProcessingRoot      string  `json:"processingRoot"`
	StagingRoot         string  `json:"stagingRoot"`
	OutputRoot          string  `json:"outputRoot"`
	DryRun              bool    `json:"dryRun,omitempty"`
	ConfidenceThreshold float64 `json:"confidenceThreshold,omitempty"`
}

// FolderResult summarizes one folder in the final library result.
type FolderResult struct {
	FolderName      string       `json:"folderName"`
	Status          FolderStatus `json:"status"`
	EpisodesRenamed int          `json:"episodesRenamed"`
	Error           string       `json:"error,omitempty"`
}

// OrganizeLibraryResult is the library coordinator's final report.
type OrganizeLibraryResult struct {
	SeriesName           string         `json:"seriesName"`
	ShowName             string         `json:"showName,omitempty"`
	Stage                WorkflowStage  `json:"stage"`
	FoldersCompleted     int            `json:"completed"`
	FoldersFailed        int            `json:"failed"`
	FoldersPendingReview int            `json:"pendingReview"`
	Folders              []FolderResult `json:"folders"`
	TotalEpisodesRenamed int            `json:"totalEpisodesRenamed"`
	OutputDir            string         `json:"outputDir,omitempty"`
	Error                string         `json:"error,omitempty"`
}
