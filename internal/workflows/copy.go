package workflows

import (
	"path/filepath"

	"go.temporal.io/sdk/workflow"

	"sera/internal/activities"
	"sera/internal/organize"
)

// runCopyBatch copies every file to destRoot/<relativePath> through per-file
// copy activities, keeping at most copyWindow transfers in flight. The
// progress sink is mutated on launch and completion; the caller seeds
// TotalFiles and TotalBytes. The first copy error aborts the batch after the
// in-flight transfers drain.
func runCopyBatch(ctx workflow.Context, files []organize.SourceFile, destRoot string, dryRun bool, progress *organize.CopyProgress) error {
	ctx = withTransferOptions(ctx)
	selector := workflow.NewSelector(ctx)

	var firstErr error
	next := 0
	inFlight := 0

	launch := func() {
		file := files[next]
		next++
		inFlight++
		progress.CurrentFiles = append(progress.CurrentFiles, file.Name)
		future := workflow.ExecuteActivity(ctx, activityCopyFile, activities.CopyFileInput{
			SourcePath: file.Path,
			DestPath:   filepath.Join(destRoot, file.RelativePath),
			DryRun:     dryRun,
		})
		selector.AddFuture(future, func(f workflow.Future) {
			inFlight--
			progress.CurrentFiles = removeFirst(progress.CurrentFiles, file.Name)
			if err := f.Get(ctx, nil); err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			progress.FilesCopied++
			progress.BytesCopied += file.Size
		})
	}

	for next < len(files) || inFlight > 0 {
		for firstErr == nil && next < len(files) && inFlight < copyWindow {
			launch()
		}
		if inFlight == 0 {
			break
		}
		selector.Select(ctx)
	}
	return firstErr
}

func removeFirst(names []string, name string) []string {
	for i, candidate := range names {
		if candidate == name {
			return append(names[:i], names[i+1:]...)
		}
	}
	return names
}
