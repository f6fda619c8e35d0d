package workflows

import (
	"fmt"
	"path/filepath"
	"time"

	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"sera/internal/activities"
	"sera/internal/fileutil"
	"sera/internal/history"
	"sera/internal/naming"
	"sera/internal/organize"
)

type libraryState struct {
	progress    organize.OrganizeLibraryProgress
	stagingTree *organize.TreeNode
	finalize    *organize.FinalizeDecision
	renamed     []organize.RenamedFile
	originals   []string
}

// OrganizeLibrary drives one series through the six-stage pipeline. The
// workflow itself only fails on infrastructure errors; pipeline failures end
// in a result with stage "failed" and a descriptive error.
func OrganizeLibrary(ctx workflow.Context, input organize.OrganizeLibraryInput) (organize.OrganizeLibraryResult, error) {
	if input.ConfidenceThreshold <= 0 {
		input.ConfidenceThreshold = defaultConfidenceThreshold
	}
	seriesName := input.SeriesName
	if seriesName == "" {
		seriesName = filepath.Base(input.SourceDir)
	}

	state := &libraryState{
		progress: organize.OrganizeLibraryProgress{
			Stage:          organize.StageCopying,
			FolderStatuses: map[string]organize.FolderStatus{},
		},
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetProgress, func() (organize.OrganizeLibraryProgress, error) {
		snapshot := state.progress
		snapshot.FoldersInProgress = foldersInProgress(snapshot.FolderStatuses)
		return snapshot, nil
	}); err != nil {
		return organize.OrganizeLibraryResult{}, err
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetStagingTree, func() (*organize.TreeNode, error) {
		return state.stagingTree, nil
	}); err != nil {
		return organize.OrganizeLibraryResult{}, err
	}

	finalizeCh := workflow.GetSignalChannel(ctx, SignalFinalize)
	workflow.Go(ctx, func(gctx workflow.Context) {
		for {
			var decision organize.FinalizeDecision
			finalizeCh.Receive(gctx, &decision)
			state.finalize = &decision
		}
	})

	result := runLibrary(ctx, input, seriesName, state)
	recordRun(ctx, result)
	return result, nil
}

func runLibrary(ctx workflow.Context, input organize.OrganizeLibraryInput, seriesName string, state *libraryState) organize.OrganizeLibraryResult {
	logger := workflow.GetLogger(ctx)
	localCtx := withLocalFSOptions(ctx)
	serviceCtx := withServiceOptions(ctx)
	wfID := workflow.GetInfo(ctx).WorkflowExecution.ID

	processingSeriesDir := filepath.Join(input.ProcessingRoot, wfID, seriesName)
	if input.DryRun {
		// Planning runs read the source tree in place; nothing is staged in.
		processingSeriesDir = input.SourceDir
	}

	result := organize.OrganizeLibraryResult{SeriesName: seriesName}
	fail := func(err error) organize.OrganizeLibraryResult {
		stage := organize.StageFailed
		if ctx.Err() != nil {
			stage = organize.StageCanceled
		}
		state.progress.Stage = stage
		result.Stage = stage
		result.Error = err.Error()
		logger.Error("library run failed", "series", seriesName, "error", err)
		return result
	}

	// Stage 1: copy the source series into the processing sandbox.
	var enumerated activities.EnumerateFilesResult
	if err := workflow.ExecuteActivity(localCtx, activityEnumerateFiles,
		activities.EnumerateFilesInput{Root: input.SourceDir}).Get(ctx, &enumerated); err != nil {
		return fail(fmt.Errorf("enumerate source: %w", err))
	}
	state.progress.CopyProgress = &organize.CopyProgress{
		TotalFiles: len(enumerated.Files),
		TotalBytes: enumerated.TotalBytes,
	}
	if !input.DryRun {
		if err := runCopyBatch(ctx, enumerated.Files, processingSeriesDir, false, state.progress.CopyProgress); err != nil {
			return fail(fmt.Errorf("copy into processing: %w", err))
		}
	} else {
		state.progress.CopyProgress.FilesCopied = len(enumerated.Files)
		state.progress.CopyProgress.BytesCopied = enumerated.TotalBytes
	}

	// Stage 2: resolve the full multi-season metadata from the catalogue.
	state.progress.Stage = organize.StageFetchingMetadata
	summary := &organize.MetadataSummary{Status: organize.MetadataSearching}
	state.progress.MetadataSummary = summary

	cleanedName := naming.CleanSearchName(seriesName)
	var search activities.SearchAnimeResult
	if err := workflow.ExecuteActivity(serviceCtx, activitySearchAnime,
		activities.SearchAnimeInput{Name: cleanedName}).Get(ctx, &search); err != nil {
		return fail(fmt.Errorf("catalogue search: %w", err))
	}
	if search.Result == nil {
		return fail(fmt.Errorf("no catalogue match for %q", cleanedName))
	}
	summary.Status = organize.MetadataFound
	summary.SeriesName = firstNonEmpty(search.Result.TitleEnglish, search.Result.TitleRomaji)

	summary.Status = organize.MetadataTraversing
	var discovered activities.DiscoverSeasonsResult
	if err := workflow.ExecuteActivity(serviceCtx, activityDiscoverSeasons,
		activities.DiscoverSeasonsInput{FirstID: search.Result.ID}).Get(ctx, &discovered); err != nil {
		return fail(fmt.Errorf("discover seasons: %w", err))
	}
	if len(discovered.Entries) == 0 {
		return fail(fmt.Errorf("no seasons discovered for %q", summary.SeriesName))
	}

	summary.Status = organize.MetadataFetchingEpisodes
	var metadata organize.SeriesMetadata
	for i, entry := range discovered.Entries {
		var fetched activities.FetchSeasonEpisodesResult
		if err := workflow.ExecuteActivity(serviceCtx, activityFetchSeasonEpisodes,
			activities.FetchSeasonEpisodesInput{ID: entry.ID, ExpectedCount: entry.Episodes}).Get(ctx, &fetched); err != nil {
			return fail(fmt.Errorf("fetch episodes for season %d: %w", i+1, err))
		}
		season := organize.Season{
			SeasonNumber: i + 1,
			AnilistID:    entry.ID,
			TitleRomaji:  entry.TitleRomaji,
			TitleEnglish: entry.TitleEnglish,
			EpisodeCount: len(fetched.Episodes),
			Episodes:     fetched.Episodes,
		}
		if season.EpisodeCount == 0 {
			season.EpisodeCount = entry.Episodes
		}
		metadata.Seasons = append(metadata.Seasons, season)
		metadata.TotalEpisodes += season.EpisodeCount
		summary.Seasons = append(summary.Seasons, organize.SeasonOption{
			SeasonNumber: season.SeasonNumber,
			Title:        firstNonEmpty(season.TitleEnglish, season.TitleRomaji),
			EpisodeCount: season.EpisodeCount,
		})
	}
	summary.Status = organize.MetadataComplete
	state.progress.ExpectedCoreEpisodeCount = metadata.TotalEpisodes
	state.progress.UnresolvedCoreEpisodeCount = metadata.TotalEpisodes

	showName := seriesName
	if len(metadata.Seasons) > 0 {
		showName = firstNonEmpty(metadata.Seasons[0].TitleEnglish, metadata.Seasons[0].TitleRomaji, seriesName)
	}
	cleanShow := naming.CleanShowName(showName)
	result.ShowName = cleanShow

	// Stage 3: fan out one child coordinator per disc folder.
	state.progress.Stage = organize.StageProcessingFolders
	var listed activities.ListSubdirectoriesResult
	if err := workflow.ExecuteActivity(localCtx, activityListSubdirectories,
		activities.ListSubdirectoriesInput{Root: processingSeriesDir}).Get(ctx, &listed); err != nil {
		return fail(fmt.Errorf("list disc folders: %w", err))
	}
	type folderRef struct {
		name string
		path string
	}
	var folders []folderRef
	if len(listed.Names) == 0 {
		// A flat series directory is processed as a single disc.
		folders = []folderRef{{name: seriesName, path: processingSeriesDir}}
	} else {
		for _, name := range listed.Names {
			folders = append(folders, folderRef{name: name, path: filepath.Join(processingSeriesDir, name)})
		}
	}
	state.progress.TotalFolders = len(folders)
	for _, folder := range folders {
		state.progress.FolderStatuses[folder.name] = organize.FolderPending
	}

	selector := workflow.NewSelector(ctx)
	next, inFlight := 0, 0
	launch := func() {
		folder := folders[next]
		next++
		inFlight++
		state.progress.FolderStatuses[folder.name] = organize.FolderScanning
		childCtx := workflow.WithChildOptions(ctx, workflow.ChildWorkflowOptions{
			WorkflowID:        wfID + "-" + folder.name,
			ParentClosePolicy: enumspb.PARENT_CLOSE_POLICY_TERMINATE,
		})
		future := workflow.ExecuteChildWorkflow(childCtx, ProcessFolderWorkflowName, organize.ProcessFolderInput{
			FolderPath:          folder.path,
			FolderName:          folder.name,
			SeriesRoot:          processingSeriesDir,
			ShowName:            cleanShow,
			Metadata:            metadata,
			DryRun:              input.DryRun,
			ConfidenceThreshold: input.ConfidenceThreshold,
		})
		selector.AddFuture(future, func(f workflow.Future) {
			inFlight--
			var folderResult organize.ProcessFolderResult
			if err := f.Get(ctx, &folderResult); err != nil {
				folderResult = organize.ProcessFolderResult{
					FolderName: folder.name,
					Status:     organize.FolderFailed,
					Error:      err.Error(),
				}
			}
			absorbFolderResult(state, &result, folderResult)
		})
	}
	for next < len(folders) || inFlight > 0 {
		for next < len(folders) && inFlight < discWindow {
			launch()
		}
		if inFlight == 0 {
			break
		}
		selector.Select(ctx)
	}

	// Stage 4: restructure locally, then stage the show tree.
	state.progress.Stage = organize.StageStructuring
	structuredShowDir := filepath.Join(processingSeriesDir, "_structured", cleanShow)

	var episodeFiles activities.ListEpisodeFilesResult
	if err := workflow.ExecuteActivity(localCtx, activityListEpisodeFiles,
		activities.ListEpisodeFilesInput{Dir: filepath.Join(processingSeriesDir, "_episodes")}).Get(ctx, &episodeFiles); err != nil {
		return fail(fmt.Errorf("list collected episodes: %w", err))
	}
	var extras activities.ListExtraFilesResult
	if err := workflow.ExecuteActivity(localCtx, activityListExtraFiles, activities.ListExtraFilesInput{
		SeriesRoot:           processingSeriesDir,
		EpisodeOriginalPaths: state.originals,
	}).Get(ctx, &extras); err != nil {
		return fail(fmt.Errorf("list extra files: %w", err))
	}

	structuring := &organize.StructuringProgress{TotalFiles: len(episodeFiles.Files) + len(extras.Files)}
	state.progress.StructuringProgress = structuring
	for _, file := range episodeFiles.Files {
		structuring.CurrentFile = file.Name
		if err := workflow.ExecuteActivity(localCtx, activityMoveFile, activities.MoveFileInput{
			SourcePath: file.Path,
			DestPath:   filepath.Join(structuredShowDir, file.RelativePath),
			DryRun:     input.DryRun,
		}).Get(ctx, nil); err != nil {
			return fail(fmt.Errorf("structure episode %s: %w", file.Name, err))
		}
		structuring.FilesStructured++
	}
	transferCtx := withTransferOptions(ctx)
	for _, file := range extras.Files {
		structuring.CurrentFile = file.Name
		if err := workflow.ExecuteActivity(transferCtx, activityCopyFile, activities.CopyFileInput{
			SourcePath: file.Path,
			DestPath:   filepath.Join(structuredShowDir, "Extras", file.RelativePath),
			DryRun:     input.DryRun,
		}).Get(ctx, nil); err != nil {
			return fail(fmt.Errorf("structure extra %s: %w", file.Name, err))
		}
		structuring.FilesStructured++
	}
	structuring.CurrentFile = ""

	stagingShowDir := filepath.Join(input.StagingRoot, wfID, cleanShow)
	if !input.DryRun {
		var structured activities.EnumerateFilesResult
		if err := workflow.ExecuteActivity(localCtx, activityEnumerateFiles,
			activities.EnumerateFilesInput{Root: structuredShowDir}).Get(ctx, &structured); err != nil {
			return fail(fmt.Errorf("enumerate structured tree: %w", err))
		}
		stagingProgress := &organize.CopyProgress{TotalFiles: len(structured.Files), TotalBytes: structured.TotalBytes}
		state.progress.CopyProgress = stagingProgress
		if err := runCopyBatch(ctx, structured.Files, stagingShowDir, false, stagingProgress); err != nil {
			return fail(fmt.Errorf("copy into staging: %w", err))
		}
		var tree organize.TreeNode
		if err := workflow.ExecuteActivity(localCtx, activityBuildStagingTree,
			activities.BuildStagingTreeInput{Root: stagingShowDir}).Get(ctx, &tree); err != nil {
			return fail(fmt.Errorf("capture staging tree: %w", err))
		}
		state.stagingTree = &tree
	}

	// Stage 5: hold for the operator's publish decision.
	state.progress.Stage = organize.StageAwaitingFinalize
	canFinalize := state.progress.FoldersFailed == 0 && len(state.renamed) > 0
	state.progress.CanFinalize = canFinalize

	if input.DryRun {
		state.progress.Stage = organize.StageCompleted
		result.Stage = organize.StageCompleted
		return result
	}

	state.progress.AwaitingFinalApproval = true
	for {
		if err := workflow.Await(ctx, func() bool { return state.finalize != nil }); err != nil {
			return fail(err)
		}
		decision := *state.finalize
		state.finalize = nil
		if !decision.Approved {
			state.progress.AwaitingFinalApproval = false
			return fail(fmt.Errorf("finalize rejected; staging preserved at %s", stagingShowDir))
		}
		if canFinalize {
			break
		}
		logger.Warn("finalize approved but gate closed",
			"foldersFailed", state.progress.FoldersFailed,
			"renamedFiles", len(state.renamed))
	}
	state.progress.AwaitingFinalApproval = false

	// Stage 6: publish to the output root, verify, clean up.
	state.progress.Stage = organize.StageFinalizing
	outputShowDir := filepath.Join(input.OutputRoot, cleanShow)

	var staged activities.EnumerateFilesResult
	if err := workflow.ExecuteActivity(localCtx, activityEnumerateFiles,
		activities.EnumerateFilesInput{Root: stagingShowDir}).Get(ctx, &staged); err != nil {
		return fail(fmt.Errorf("enumerate staging tree: %w", err))
	}
	outputProgress := &organize.CopyProgress{TotalFiles: len(staged.Files), TotalBytes: staged.TotalBytes}
	state.progress.OutputProgress = outputProgress
	if err := runCopyBatch(ctx, staged.Files, outputShowDir, false, outputProgress); err != nil {
		return fail(fmt.Errorf("copy into output: %w", err))
	}

	var verified fileutil.VerifyResult
	if err := workflow.ExecuteActivity(localCtx, activityVerifyOutput, activities.VerifyOutputInput{
		SourceRoot: stagingShowDir,
		OutputRoot: outputShowDir,
	}).Get(ctx, &verified); err != nil {
		return fail(fmt.Errorf("verify output: %w", err))
	}
	if !verified.Verified {
		return fail(fmt.Errorf("output verification failed, %d files missing or truncated", len(verified.Missing)))
	}

	for _, dir := range []string{filepath.Join(input.StagingRoot, wfID), filepath.Join(input.ProcessingRoot, wfID)} {
		if err := workflow.ExecuteActivity(localCtx, activityRemoveDirectory,
			activities.RemoveDirectoryInput{Path: dir}).Get(ctx, nil); err != nil {
			logger.Warn("cleanup failed", "dir", dir, "error", err)
		}
	}

	state.progress.Stage = organize.StageCompleted
	result.Stage = organize.StageCompleted
	result.OutputDir = outputShowDir
	return result
}

func absorbFolderResult(state *libraryState, result *organize.OrganizeLibraryResult, folder organize.ProcessFolderResult) {
	state.progress.FolderStatuses[folder.FolderName] = folder.Status
	switch folder.Status {
	case organize.FolderCompleted:
		state.progress.FoldersCompleted++
		result.FoldersCompleted++
	case organize.FolderFailed:
		state.progress.FoldersFailed++
		result.FoldersFailed++
	}
	state.progress.ResolvedCoreEpisodeCount += folder.EpisodesRenamed
	unresolved := state.progress.ExpectedCoreEpisodeCount - state.progress.ResolvedCoreEpisodeCount
	if unresolved < 0 {
		unresolved = 0
	}
	state.progress.UnresolvedCoreEpisodeCount = unresolved

	state.renamed = append(state.renamed, folder.RenamedFiles...)
	state.originals = append(state.originals, folder.EpisodeOriginalPaths...)
	result.TotalEpisodesRenamed += folder.EpisodesRenamed
	result.Folders = append(result.Folders, organize.FolderResult{
		FolderName:      folder.FolderName,
		Status:          folder.Status,
		EpisodesRenamed: folder.EpisodesRenamed,
		Error:           folder.Error,
	})
}

// foldersInProgress counts folders that are neither waiting to start, nor
// blocked on a human, nor finished.
func foldersInProgress(statuses map[string]organize.FolderStatus) int {
	count := 0
	for _, status := range statuses {
		if status == organize.FolderPending || status.Terminal() || status.AwaitingHuman() {
			continue
		}
		count++
	}
	return count
}

// recordRun appends the final result to the local run history. Best effort;
// a failed append never fails the run.
func recordRun(ctx workflow.Context, result organize.OrganizeLibraryResult) {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	})
	record := history.Record{
		WorkflowID:       workflow.GetInfo(ctx).WorkflowExecution.ID,
		SeriesName:       result.SeriesName,
		ShowName:         result.ShowName,
		Stage:            string(result.Stage),
		FoldersCompleted: result.FoldersCompleted,
		FoldersFailed:    result.FoldersFailed,
		EpisodesRenamed:  result.TotalEpisodesRenamed,
		Error:            result.Error,
	}
	if err := workflow.ExecuteActivity(ctx, activityRecordRun, record).Get(ctx, nil); err != nil {
		workflow.GetLogger(ctx).Warn("record run failed", "error", err)
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
