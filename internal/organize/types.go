package organize

// SourceFile describes one file discovered under an enumeration root.
// Immutable once created for a given root.
type SourceFile struct {
	Path         string `json:"path"`
	RelativePath string `json:"relativePath"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
}

// Episode is a single catalogue episode entry.
type Episode struct {
	Number      int    `json:"number"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// Season is one broadcast run of a series, 1-indexed in catalogue order.
type Season struct {
	SeasonNumber int       `json:"seasonNumber"`
	AnilistID    int       `json:"anilistId"`
	TitleRomaji  string    `json:"titleRomaji"`
	TitleEnglish string    `json:"titleEnglish,omitempty"`
	EpisodeCount int       `json:"episodeCount"`
	Episodes     []Episode `json:"episodes"`
}

// SeriesMetadata is the full multi-season picture of a series.
type SeriesMetadata struct {
	Seasons       []Season `json:"seasons"`
	TotalEpisodes int      `json:"totalEpisodes"`
}

// FindEpisode returns the catalogue entry for (season, episode), if any.
func (m SeriesMetadata) FindEpisode(season, episode int) (Episode, bool) {
	for _, s := range m.Seasons {
		if s.SeasonNumber != season {
			continue
		}
		for _, e := range s.Episodes {
			if e.Number == episode {
				return e, true
			}
		}
	}
	return Episode{}, false
}

// HasSlot reports whether (season, episode) points at an existing slot,
// counting seasons whose episode list is sparse but whose count covers the
// episode number.
func (m SeriesMetadata) HasSlot(season, episode int) bool {
	for _, s := range m.Seasons {
		if s.SeasonNumber != season {
			continue
		}
		if episode >= 1 && episode <= s.EpisodeCount {
			return true
		}
		_, ok := m.FindEpisode(season, episode)
		return ok
	}
	return false
}

// DetectionConfidence grades the episode cluster detector's certainty.
type DetectionConfidence string

const (
	ConfidenceHigh   DetectionConfidence = "high"
	ConfidenceMedium DetectionConfidence = "medium"
	ConfidenceLow    DetectionConfidence = "low"
)

// DetectionResult partitions a folder's video files into episodes and
// non-episodes. The two sets are disjoint and together cover every video
// file found under the folder (reserved _ directories skipped).
type DetectionResult struct {
	Episodes      []SourceFile        `json:"episodes"`
	NonEpisodes   []SourceFile        `json:"nonEpisodes"`
	Confidence    DetectionConfidence `json:"confidence"`
	ClusterMedian int64               `json:"clusterMedian"`
	ClusterMin    int64               `json:"clusterMin"`
	ClusterMax    int64               `json:"clusterMax"`
}

// SubtitleFile is the dialogue extraction result for one media file.
type SubtitleFile struct {
	FilePath string `json:"filePath"`
	FileName string `json:"fileName"`
	Content  string `json:"content"`
	Source   string `json:"source"` // "embedded" or "external"
	Language string `json:"language,omitempty"`
}

// EpisodeMatch is the matcher's assignment of one file to a season/episode
// slot. Season and episode numbers always point at an existing metadata
// entry; matches that do not are rejected at the boundary.
type EpisodeMatch struct {
	FileName      string  `json:"fileName"`
	FilePath      string  `json:"filePath"`
	SeasonNumber  int     `json:"seasonNumber"`
	EpisodeNumber int     `json:"episodeNumber"`
	EpisodeTitle  string  `json:"episodeTitle,omitempty"`
	Confidence    float64 `json:"confidence"`
	Reasoning     string  `json:"reasoning,omitempty"`
}

// RenamedFile records one episode copied into the canonical working layout.
type RenamedFile struct {
	OriginalPath         string `json:"originalPath"`
	OriginalRelativePath string `json:"originalRelativePath"`
	NewPath              string `json:"newPath"`
	NewFileName          string `json:"newFileName"`
	SeasonNumber         int    `json:"seasonNumber"`
	EpisodeNumber        int    `json:"episodeNumber"`
}

// SeasonOption summarizes a season for manual episode selection.
type SeasonOption struct {
	SeasonNumber int    `json:"seasonNumber"`
	Title        string `json:"title"`
	EpisodeCount int    `json:"episodeCount"`
}

// EpisodeOption is one selectable episode in the cross-season list shown to
// the reviewer.
type EpisodeOption struct {
	SeasonNumber  int    `json:"seasonNumber"`
	EpisodeNumber int    `json:"episodeNumber"`
	Title         string `json:"title,omitempty"`
}

// ReviewItem is a low-confidence match awaiting a human decision.
type ReviewItem struct {
	ID               string          `json:"id"` // "<folder>-<file>"
	FileName         string          `json:"fileName"`
	FilePath         string          `json:"filePath"`
	SuggestedSeason  int             `json:"suggestedSeason"`
	SuggestedEpisode int             `json:"suggestedEpisode"`
	Confidence       float64         `json:"confidence"`
	Reasoning        string          `json:"reasoning,omitempty"`
	Snippet          string          `json:"snippet,omitempty"`
	AvailableSeasons []SeasonOption  `json:"availableSeasons"`
	AvailableEpisodes []EpisodeOption `json:"availableEpisodes"`
}

// ReviewDecision settles a review item. A decision only settles the item
// when Approved is true; rejections are discarded so the operator can
// resubmit.
type ReviewDecision struct {
	ReviewItemID     string `json:"reviewItemId"`
	Approved         bool   `json:"approved"`
	CorrectedSeason  *int   `json:"correctedSeason,omitempty"`
	CorrectedEpisode *int   `json:"correctedEpisode,omitempty"`
}

// DetectionConfirmation adjusts and confirms a low-confidence detection.
// AddedPaths must name current non-episodes; RemovedPaths current episodes.
type DetectionConfirmation struct {
	Confirmed    bool     `json:"confirmed"`
	AddedPaths   []string `json:"addedPaths,omitempty"`
	RemovedPaths []string `json:"removedPaths,omitempty"`
}

// FinalizeDecision approves or rejects publishing the staged layout.
type FinalizeDecision struct {
	Approved bool `json:"approved"`
}

// TreeNode is one entry of the captured staging tree. Directories sort
// before files; both groups are alphabetical.
type TreeNode struct {
	Name         string     `json:"name"`
	Type         string     `json:"type"` // "directory" or "file"
	RelativePath string     `json:"relativePath"`
	Size         int64      `json:"size,omitempty"`
	Children     []TreeNode `json:"children,omitempty"`
}
