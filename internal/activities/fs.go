package activities

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"go.temporal.io/sdk/activity"

	"sera/internal/detector"
	"sera/internal/fileutil"
	"sera/internal/logging"
	"sera/internal/organize"
)

// heartbeatInterval paces liveness reports during long transfers.
const heartbeatInterval = 30 * time.Second

// EnumerateFilesInput names the root to walk.
type EnumerateFilesInput struct {
	Root string `json:"root"`
}

// EnumerateFilesResult lists every regular file under the root.
type EnumerateFilesResult struct {
	Files      []organize.SourceFile `json:"files"`
	TotalBytes int64                 `json:"totalBytes"`
}

// EnumerateFiles walks the root recursively.
func (a *Activities) EnumerateFiles(ctx context.Context, in EnumerateFilesInput) (EnumerateFilesResult, error) {
	files, totalBytes, err := fileutil.Enumerate(in.Root)
	if err != nil {
		return EnumerateFilesResult{}, fmt.Errorf("enumerate %s: %w", in.Root, err)
	}
	return EnumerateFilesResult{Files: files, TotalBytes: totalBytes}, nil
}

// CopyFileInput describes one transfer.
type CopyFileInput struct {
	SourcePath string `json:"sourcePath"`
	DestPath   string `json:"destPath"`
	DryRun     bool   `json:"dryRun,omitempty"`
}

// CopyFile streams one file, heartbeating while the transfer runs so stalled
// copies are detected and retried.
func (a *Activities) CopyFile(ctx context.Context, in CopyFileInput) error {
	if in.DryRun {
		return nil
	}
	var written atomic.Int64
	stop := startHeartbeat(ctx, &written)
	defer stop()

	if err := fileutil.CopyFile(in.SourcePath, in.DestPath, func(w int64) { written.Store(w) }); err != nil {
		return fmt.Errorf("copy %s: %w", in.SourcePath, err)
	}
	return nil
}

// CopyEpisodeFileInput copies one matched episode into the working layout.
type CopyEpisodeFileInput struct {
	SourcePath string `json:"sourcePath"`
	DestPath   string `json:"destPath"`
	DryRun     bool   `json:"dryRun,omitempty"`
}

// CopyEpisodeFileResult reports whether the copy actually ran.
type CopyEpisodeFileResult struct {
	Copied bool `json:"copied"`
}

// CopyEpisodeFile copies a matched episode to its canonical path. An existing
// destination of the same size is treated as an earlier attempt's output and
// left in place, which keeps retries idempotent.
func (a *Activities) CopyEpisodeFile(ctx context.Context, in CopyEpisodeFileInput) (CopyEpisodeFileResult, error) {
	if in.DryRun {
		return CopyEpisodeFileResult{Copied: true}, nil
	}
	srcInfo, err := os.Stat(in.SourcePath)
	if err != nil {
		return CopyEpisodeFileResult{}, fmt.Errorf("stat source %s: %w", in.SourcePath, err)
	}
	if dstInfo, statErr := os.Stat(in.DestPath); statErr == nil && dstInfo.Size() == srcInfo.Size() {
		a.logger.Debug("episode already copied", logging.String("dest", in.DestPath))
		return CopyEpisodeFileResult{Copied: false}, nil
	}

	var written atomic.Int64
	stop := startHeartbeat(ctx, &written)
	defer stop()

	if err := fileutil.CopyFile(in.SourcePath, in.DestPath, func(w int64) { written.Store(w) }); err != nil {
		return CopyEpisodeFileResult{}, fmt.Errorf("copy episode %s: %w", in.SourcePath, err)
	}
	return CopyEpisodeFileResult{Copied: true}, nil
}

// MoveFileInput describes one rename or cross-device move.
type MoveFileInput struct {
	SourcePath string `json:"sourcePath"`
	DestPath   string `json:"destPath"`
	DryRun     bool   `json:"dryRun,omitempty"`
}

// MoveFileResult reports whether the move actually ran.
type MoveFileResult struct {
	Moved bool `json:"moved"`
}

// MoveFile relocates one file. A destination left behind by an earlier
// attempt is accepted as done so retries after a crash converge.
func (a *Activities) MoveFile(ctx context.Context, in MoveFileInput) (MoveFileResult, error) {
	if in.DryRun {
		return MoveFileResult{Moved: true}, nil
	}
	if fileutil.Exists(in.DestPath) {
		return MoveFileResult{Moved: false}, nil
	}
	if !fileutil.Exists(in.SourcePath) {
		return MoveFileResult{}, fmt.Errorf("move: source %s missing and destination absent", in.SourcePath)
	}
	if err := fileutil.MoveFile(in.SourcePath, in.DestPath); err != nil {
		return MoveFileResult{}, fmt.Errorf("move %s: %w", in.SourcePath, err)
	}
	return MoveFileResult{Moved: true}, nil
}

// VerifyOutputInput names the trees to compare.
type VerifyOutputInput struct {
	SourceRoot string `json:"sourceRoot"`
	OutputRoot string `json:"outputRoot"`
}

// VerifyOutput checks that every staged file landed in the output tree with
// the expected size.
func (a *Activities) VerifyOutput(ctx context.Context, in VerifyOutputInput) (fileutil.VerifyResult, error) {
	result, err := fileutil.VerifyTree(in.SourceRoot, in.OutputRoot)
	if err != nil {
		return fileutil.VerifyResult{}, fmt.Errorf("verify output: %w", err)
	}
	return result, nil
}

// RemoveDirectoryInput names the tree to delete.
type RemoveDirectoryInput struct {
	Path   string `json:"path"`
	DryRun bool   `json:"dryRun,omitempty"`
}

// RemoveDirectory deletes a working tree after a verified publish.
func (a *Activities) RemoveDirectory(ctx context.Context, in RemoveDirectoryInput) error {
	if in.DryRun {
		return nil
	}
	if err := os.RemoveAll(in.Path); err != nil {
		return fmt.Errorf("remove %s: %w", in.Path, err)
	}
	return nil
}

// ListSubdirectoriesInput names the parent directory.
type ListSubdirectoriesInput struct {
	Root string `json:"root"`
}

// ListSubdirectoriesResult lists immediate subdirectory names.
type ListSubdirectoriesResult struct {
	Names []string `json:"names"`
}

// ListSubdirectories returns the folder names to process, skipping reserved
// working directories.
func (a *Activities) ListSubdirectories(ctx context.Context, in ListSubdirectoriesInput) (ListSubdirectoriesResult, error) {
	names, err := fileutil.ListSubdirectories(in.Root)
	if err != nil {
		return ListSubdirectoriesResult{}, fmt.Errorf("list subdirectories of %s: %w", in.Root, err)
	}
	return ListSubdirectoriesResult{Names: names}, nil
}

// ListEpisodeFilesInput names the collected-episodes directory.
type ListEpisodeFilesInput struct {
	Dir string `json:"dir"`
}

// ListEpisodeFilesResult lists the canonical episode files found.
type ListEpisodeFilesResult struct {
	Files []organize.SourceFile `json:"files"`
}

// ListEpisodeFiles enumerates the episode working directory. A missing
// directory means no folder produced episodes and yields an empty set.
func (a *Activities) ListEpisodeFiles(ctx context.Context, in ListEpisodeFilesInput) (ListEpisodeFilesResult, error) {
	if !fileutil.Exists(in.Dir) {
		return ListEpisodeFilesResult{}, nil
	}
	files, _, err := fileutil.Enumerate(in.Dir)
	if err != nil {
		return ListEpisodeFilesResult{}, fmt.Errorf("list episode files: %w", err)
	}
	return ListEpisodeFilesResult{Files: files}, nil
}

// ListExtraFilesInput identifies the extras left after episode collection.
type ListExtraFilesInput struct {
	SeriesRoot           string   `json:"seriesRoot"`
	EpisodeOriginalPaths []string `json:"episodeOriginalPaths"`
}

// ListExtraFilesResult lists unclaimed video files relative to the series
// root.
type ListExtraFilesResult struct {
	Files []organize.SourceFile `json:"files"`
}

// ListExtraFiles returns every video file under the series root that no
// folder claimed as an episode. Reserved working directories are skipped.
func (a *Activities) ListExtraFiles(ctx context.Context, in ListExtraFilesInput) (ListExtraFilesResult, error) {
	videos, err := detector.CollectVideoFiles(in.SeriesRoot)
	if err != nil {
		return ListExtraFilesResult{}, fmt.Errorf("list extra files: %w", err)
	}
	claimed := make(map[string]bool, len(in.EpisodeOriginalPaths))
	for _, path := range in.EpisodeOriginalPaths {
		claimed[path] = true
	}
	var extras []organize.SourceFile
	for _, video := range videos {
		if !claimed[video.Path] {
			extras = append(extras, video)
		}
	}
	return ListExtraFilesResult{Files: extras}, nil
}

// BuildStagingTreeInput names the staged series root.
type BuildStagingTreeInput struct {
	Root string `json:"root"`
}

// BuildStagingTree captures the staged layout for operator inspection.
func (a *Activities) BuildStagingTree(ctx context.Context, in BuildStagingTreeInput) (organize.TreeNode, error) {
	tree, err := fileutil.BuildTree(in.Root)
	if err != nil {
		return organize.TreeNode{}, fmt.Errorf("build staging tree: %w", err)
	}
	return tree, nil
}

// startHeartbeat reports the running byte count until the returned stop
// function is called. Recording only starts after the first interval, so
// short transfers never touch the heartbeat API.
func startHeartbeat(ctx context.Context, written *atomic.Int64) func() {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				activity.RecordHeartbeat(ctx, written.Load())
			}
		}
	}()
	return func() { close(done) }
}
