package workflows

import (
	"fmt"
	"path/filepath"

	"go.temporal.io/sdk/workflow"

	"sera/internal/activities"
	"sera/internal/naming"
	"sera/internal/organize"
)

type discState struct {
	progress  organize.ProcessFolderProgress
	reviews   map[string]organize.ReviewDecision
	detection *organize.DetectionConfirmation
}

// ProcessFolder is the per-disc coordinator. Errors inside the state machine
// are projected into the result's Error field so the parent and sibling
// folders continue.
func ProcessFolder(ctx workflow.Context, input organize.ProcessFolderInput) (organize.ProcessFolderResult, error) {
	if input.ConfidenceThreshold <= 0 {
		input.ConfidenceThreshold = defaultConfidenceThreshold
	}
	state := &discState{
		progress: organize.ProcessFolderProgress{
			FolderName:     input.FolderName,
			Status:         organize.FolderScanning,
			PendingReviews: []organize.ReviewItem{},
		},
		reviews: make(map[string]organize.ReviewDecision),
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetProgress, func() (organize.ProcessFolderProgress, error) {
		return state.progress, nil
	}); err != nil {
		return organize.ProcessFolderResult{}, err
	}
	drainDiscSignals(ctx, state)

	result, err := runDisc(ctx, input, state)
	result.FolderName = input.FolderName
	result.Status = state.progress.Status
	if err != nil {
		workflow.GetLogger(ctx).Error("folder processing failed",
			"folder", input.FolderName, "error", err)
		state.progress.Status = organize.FolderFailed
		result.Status = organize.FolderFailed
		result.Error = err.Error()
	}
	return result, nil
}

func drainDiscSignals(ctx workflow.Context, state *discState) {
	reviewCh := workflow.GetSignalChannel(ctx, SignalReviewDecision)
	workflow.Go(ctx, func(gctx workflow.Context) {
		for {
			var decision organize.ReviewDecision
			reviewCh.Receive(gctx, &decision)
			state.reviews[decision.ReviewItemID] = decision
		}
	})
	confirmCh := workflow.GetSignalChannel(ctx, SignalDetectionConfirmation)
	workflow.Go(ctx, func(gctx workflow.Context) {
		for {
			var confirmation organize.DetectionConfirmation
			confirmCh.Receive(gctx, &confirmation)
			state.detection = &confirmation
		}
	})
}

func runDisc(ctx workflow.Context, input organize.ProcessFolderInput, state *discState) (organize.ProcessFolderResult, error) {
	logger := workflow.GetLogger(ctx)
	result := organize.ProcessFolderResult{FolderName: input.FolderName}

	var detection organize.DetectionResult
	if err := workflow.ExecuteActivity(withLocalFSOptions(ctx), activityDetectEpisodes,
		activities.DetectEpisodesInput{FolderPath: input.FolderPath}).Get(ctx, &detection); err != nil {
		return result, err
	}
	totalVideos := len(detection.Episodes) + len(detection.NonEpisodes)
	state.progress.TotalVideoFiles = totalVideos
	state.progress.DetectedEpisodeCount = len(detection.Episodes)
	state.progress.DetectionConfidence = detection.Confidence
	result.TotalVideoFiles = totalVideos

	if totalVideos == 0 {
		state.progress.Status = organize.FolderCompleted
		return result, nil
	}

	if input.DryRun {
		// Plan only: report what detection would hand downstream.
		result.EpisodesRenamed = len(detection.Episodes)
		result.UnprocessedFiles = fileNames(detection.NonEpisodes)
		state.progress.Status = organize.FolderCompleted
		return result, nil
	}

	if detection.Confidence != organize.ConfidenceHigh {
		state.progress.Status = organize.FolderAwaitingDetectionReview
		var err error
		detection, err = awaitDetectionConfirmation(ctx, state, detection)
		if err != nil {
			return result, err
		}
		state.progress.DetectedEpisodeCount = len(detection.Episodes)
	}

	state.progress.Status = organize.FolderExtracting
	state.progress.TotalEpisodeFiles = len(detection.Episodes)
	subtitleDir := filepath.Join(input.SeriesRoot, "_subtitles", input.FolderName)
	serviceCtx := withServiceOptions(ctx)

	var subtitleRefs []activities.SubtitleRef
	for _, file := range detection.Episodes {
		state.progress.CurrentFile = file.Name
		var extracted activities.ExtractSubtitlesResult
		err := workflow.ExecuteActivity(serviceCtx, activityExtractSubtitles, activities.ExtractSubtitlesInput{
			MediaPath: file.Path,
			MediaName: file.Name,
			TargetDir: subtitleDir,
		}).Get(ctx, &extracted)
		if err != nil {
			logger.Warn("subtitle extraction failed", "file", file.Name, "error", err)
			continue
		}
		if extracted.Subtitle == nil {
			continue
		}
		subtitleRefs = append(subtitleRefs, *extracted.Subtitle)
		state.progress.SubtitlesExtracted++
	}
	state.progress.CurrentFile = ""
	if len(subtitleRefs) == 0 {
		return result, fmt.Errorf("no subtitles extracted from any of %d episode files", len(detection.Episodes))
	}

	state.progress.Status = organize.FolderMatching
	state.progress.TotalToMatch = len(subtitleRefs)
	docs := make([]activities.MatchDocument, len(subtitleRefs))
	snippets := make(map[string]string, len(subtitleRefs))
	for i, ref := range subtitleRefs {
		docs[i] = activities.MatchDocument{
			FileName:     ref.MediaName,
			FilePath:     ref.MediaPath,
			SubtitlePath: ref.SubtitlePath,
		}
		snippets[ref.MediaName] = ref.Snippet
	}
	var matched activities.MatchEpisodesResult
	if err := workflow.ExecuteActivity(serviceCtx, activityMatchEpisodes, activities.MatchEpisodesInput{
		Documents: docs,
		Metadata:  input.Metadata,
	}).Get(ctx, &matched); err != nil {
		return result, err
	}
	state.progress.MatchesFound = len(matched.Matches)

	state.progress.Status = organize.FolderRenaming
	state.progress.TotalEpisodesToCopy = len(matched.Matches)

	// Duplicate slot claims go to review alongside low-confidence matches;
	// the first claim keeps the slot.
	assigned := make(map[[2]int]string)
	var accepted, needsReview []organize.EpisodeMatch
	for _, match := range matched.Matches {
		slot := [2]int{match.SeasonNumber, match.EpisodeNumber}
		switch {
		case match.Confidence < input.ConfidenceThreshold:
			needsReview = append(needsReview, match)
		case assigned[slot] != "":
			logger.Warn("duplicate slot assignment routed to review",
				"file", match.FileName, "holder", assigned[slot],
				"season", match.SeasonNumber, "episode", match.EpisodeNumber)
			needsReview = append(needsReview, match)
		default:
			assigned[slot] = match.FileName
			accepted = append(accepted, match)
		}
	}

	for _, match := range accepted {
		if err := copyEpisode(ctx, input, match, state, &result); err != nil {
			return result, err
		}
	}

	if len(needsReview) > 0 {
		items := make([]organize.ReviewItem, 0, len(needsReview))
		for _, match := range needsReview {
			items = append(items, buildReviewItem(input, match, snippets[match.FileName]))
		}
		state.progress.PendingReviews = items
		state.progress.Status = organize.FolderAwaitingReview

		for _, match := range needsReview {
			id := reviewItemID(input.FolderName, match.FileName)
			decision, err := awaitApproval(ctx, state, id)
			if err != nil {
				return result, err
			}

			season, episode := match.SeasonNumber, match.EpisodeNumber
			if decision.CorrectedSeason != nil {
				season = *decision.CorrectedSeason
			}
			if decision.CorrectedEpisode != nil {
				episode = *decision.CorrectedEpisode
			}
			title := fmt.Sprintf("Episode %d", episode)
			if entry, ok := input.Metadata.FindEpisode(season, episode); ok && entry.Title != "" {
				title = entry.Title
			}
			final := organize.EpisodeMatch{
				FileName:      match.FileName,
				FilePath:      match.FilePath,
				SeasonNumber:  season,
				EpisodeNumber: episode,
				EpisodeTitle:  title,
				Confidence:    1.0,
				Reasoning:     "user-approved",
			}
			if err := copyEpisode(ctx, input, final, state, &result); err != nil {
				return result, err
			}
			state.progress.PendingReviews = dropReviewItem(state.progress.PendingReviews, id)
		}
	}

	copied := make(map[string]bool, len(result.EpisodeOriginalPaths))
	for _, path := range result.EpisodeOriginalPaths {
		copied[path] = true
	}
	for _, file := range detection.Episodes {
		if !copied[file.Path] {
			result.UnprocessedFiles = append(result.UnprocessedFiles, file.Name)
		}
	}
	result.UnprocessedFiles = append(result.UnprocessedFiles, fileNames(detection.NonEpisodes)...)

	state.progress.Status = organize.FolderCompleted
	return result, nil
}

// awaitDetectionConfirmation blocks until the operator confirms the cluster,
// applying their additions and removals. Unconfirmed submissions are
// discarded so the operator can resubmit.
func awaitDetectionConfirmation(ctx workflow.Context, state *discState, detection organize.DetectionResult) (organize.DetectionResult, error) {
	for {
		if err := workflow.Await(ctx, func() bool { return state.detection != nil }); err != nil {
			return detection, err
		}
		confirmation := *state.detection
		state.detection = nil
		if !confirmation.Confirmed {
			continue
		}
		return applyConfirmation(detection, confirmation), nil
	}
}

func applyConfirmation(detection organize.DetectionResult, confirmation organize.DetectionConfirmation) organize.DetectionResult {
	removed := pathSet(confirmation.RemovedPaths)
	added := pathSet(confirmation.AddedPaths)

	var episodes, nonEpisodes []organize.SourceFile
	for _, file := range detection.Episodes {
		if matchesAny(file, removed) {
			nonEpisodes = append(nonEpisodes, file)
		} else {
			episodes = append(episodes, file)
		}
	}
	for _, file := range detection.NonEpisodes {
		if matchesAny(file, added) {
			episodes = append(episodes, file)
		} else {
			nonEpisodes = append(nonEpisodes, file)
		}
	}
	detection.Episodes = episodes
	detection.NonEpisodes = nonEpisodes
	return detection
}

func awaitApproval(ctx workflow.Context, state *discState, id string) (organize.ReviewDecision, error) {
	for {
		if err := workflow.Await(ctx, func() bool {
			_, ok := state.reviews[id]
			return ok
		}); err != nil {
			return organize.ReviewDecision{}, err
		}
		decision := state.reviews[id]
		delete(state.reviews, id)
		if decision.Approved {
			return decision, nil
		}
	}
}

func copyEpisode(ctx workflow.Context, input organize.ProcessFolderInput, match organize.EpisodeMatch, state *discState, result *organize.ProcessFolderResult) error {
	fileName := naming.EpisodeFileName(input.ShowName, match.SeasonNumber, match.EpisodeNumber, match.EpisodeTitle, match.FileName)
	destPath := filepath.Join(input.SeriesRoot, "_episodes", naming.SeasonDirName(match.SeasonNumber), fileName)
	if err := workflow.ExecuteActivity(withTransferOptions(ctx), activityCopyEpisodeFile, activities.CopyEpisodeFileInput{
		SourcePath: match.FilePath,
		DestPath:   destPath,
		DryRun:     input.DryRun,
	}).Get(ctx, nil); err != nil {
		return err
	}

	rel, err := filepath.Rel(input.SeriesRoot, match.FilePath)
	if err != nil {
		rel = match.FileName
	}
	result.RenamedFiles = append(result.RenamedFiles, organize.RenamedFile{
		OriginalPath:         match.FilePath,
		OriginalRelativePath: rel,
		NewPath:              destPath,
		NewFileName:          fileName,
		SeasonNumber:         match.SeasonNumber,
		EpisodeNumber:        match.EpisodeNumber,
	})
	result.EpisodeOriginalPaths = append(result.EpisodeOriginalPaths, match.FilePath)
	result.EpisodesRenamed++
	state.progress.EpisodesCopied++
	return nil
}

func buildReviewItem(input organize.ProcessFolderInput, match organize.EpisodeMatch, snippet string) organize.ReviewItem {
	var seasons []organize.SeasonOption
	var episodes []organize.EpisodeOption
	for _, season := range input.Metadata.Seasons {
		title := season.TitleEnglish
		if title == "" {
			title = season.TitleRomaji
		}
		seasons = append(seasons, organize.SeasonOption{
			SeasonNumber: season.SeasonNumber,
			Title:        title,
			EpisodeCount: season.EpisodeCount,
		})
		for _, episode := range season.Episodes {
			episodes = append(episodes, organize.EpisodeOption{
				SeasonNumber:  season.SeasonNumber,
				EpisodeNumber: episode.Number,
				Title:         episode.Title,
			})
		}
	}
	return organize.ReviewItem{
		ID:                reviewItemID(input.FolderName, match.FileName),
		FileName:          match.FileName,
		FilePath:          match.FilePath,
		SuggestedSeason:   match.SeasonNumber,
		SuggestedEpisode:  match.EpisodeNumber,
		Confidence:        match.Confidence,
		Reasoning:         match.Reasoning,
		Snippet:           snippet,
		AvailableSeasons:  seasons,
		AvailableEpisodes: episodes,
	}
}

func reviewItemID(folderName, fileName string) string {
	return folderName + "-" + fileName
}

func dropReviewItem(items []organize.ReviewItem, id string) []organize.ReviewItem {
	kept := make([]organize.ReviewItem, 0, len(items))
	for _, item := range items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	return kept
}

func pathSet(paths []string) map[string]bool {
	set := make(map[string]bool, len(paths))
	for _, path := range paths {
		set[path] = true
	}
	return set
}

// matchesAny accepts absolute path, folder-relative path, or bare name so
// operators can reference files however their tooling shows them.
func matchesAny(file organize.SourceFile, set map[string]bool) bool {
	return set[file.Path] || set[file.RelativePath] || set[file.Name]
}

func fileNames(files []organize.SourceFile) []string {
	names := make([]string, 0, len(files))
	for _, file := range files {
		names = append(names, file.Name)
	}
	return names
}
