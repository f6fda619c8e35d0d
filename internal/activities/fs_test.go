package activities

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"sera/internal/logging"
)

func testActivities(t *testing.T) *Activities {
	t.Helper()
	return NewWithDependencies(nil, logging.NewNop(), nil, nil, nil, nil)
}

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCopyEpisodeFile(t *testing.T) {
	acts := testActivities(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "t00.mkv")
	dst := filepath.Join(dir, "_episodes", "Season 01", "Show - S01E01.mkv")
	writeFile(t, src, []byte("episode payload"))

	result, err := acts.CopyEpisodeFile(context.Background(), CopyEpisodeFileInput{SourcePath: src, DestPath: dst})
	if err != nil {
		t.Fatalf("CopyEpisodeFile: %v", err)
	}
	if !result.Copied {
		t.Fatal("first copy should run")
	}

	// A retry against the finished destination is a no-op.
	result, err = acts.CopyEpisodeFile(context.Background(), CopyEpisodeFileInput{SourcePath: src, DestPath: dst})
	if err != nil {
		t.Fatalf("CopyEpisodeFile retry: %v", err)
	}
	if result.Copied {
		t.Fatal("retry should skip the same-size destination")
	}
}

func TestCopyEpisodeFileDryRun(t *testing.T) {
	acts := testActivities(t)
	dir := t.TempDir()
	dst := filepath.Join(dir, "dest.mkv")

	result, err := acts.CopyEpisodeFile(context.Background(), CopyEpisodeFileInput{
		SourcePath: filepath.Join(dir, "absent.mkv"),
		DestPath:   dst,
		DryRun:     true,
	})
	if err != nil {
		t.Fatalf("CopyEpisodeFile: %v", err)
	}
	if !result.Copied {
		t.Fatal("dry run reports the planned copy")
	}
	if _, statErr := os.Stat(dst); statErr == nil {
		t.Fatal("dry run must not write the destination")
	}
}

func TestMoveFileConverges(t *testing.T) {
	acts := testActivities(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "src.mkv")
	dst := filepath.Join(dir, "structured", "dst.mkv")
	writeFile(t, src, []byte("payload"))

	result, err := acts.MoveFile(context.Background(), MoveFileInput{SourcePath: src, DestPath: dst})
	if err != nil {
		t.Fatalf("MoveFile: %v", err)
	}
	if !result.Moved {
		t.Fatal("first move should run")
	}

	// After a crash between move and history write, the retry sees the
	// destination and accepts it as done.
	result, err = acts.MoveFile(context.Background(), MoveFileInput{SourcePath: src, DestPath: dst})
	if err != nil {
		t.Fatalf("MoveFile retry: %v", err)
	}
	if result.Moved {
		t.Fatal("retry should accept the existing destination")
	}
}

func TestMoveFileMissingBoth(t *testing.T) {
	acts := testActivities(t)
	dir := t.TempDir()
	_, err := acts.MoveFile(context.Background(), MoveFileInput{
		SourcePath: filepath.Join(dir, "absent-src.mkv"),
		DestPath:   filepath.Join(dir, "absent-dst.mkv"),
	})
	if err == nil {
		t.Fatal("expected error when source and destination are both missing")
	}
}

func TestListEpisodeFilesMissingDir(t *testing.T) {
	acts := testActivities(t)
	result, err := acts.ListEpisodeFiles(context.Background(), ListEpisodeFilesInput{
		Dir: filepath.Join(t.TempDir(), "_episodes"),
	})
	if err != nil {
		t.Fatalf("ListEpisodeFiles: %v", err)
	}
	if len(result.Files) != 0 {
		t.Fatalf("files = %d, want 0", len(result.Files))
	}
}

func TestListExtraFiles(t *testing.T) {
	acts := testActivities(t)
	root := t.TempDir()
	claimed := filepath.Join(root, "disc1", "t00.mkv")
	extra := filepath.Join(root, "disc1", "menu.mkv")
	writeFile(t, claimed, []byte("claimed"))
	writeFile(t, extra, []byte("extra"))
	writeFile(t, filepath.Join(root, "disc1", "notes.txt"), []byte("text"))
	writeFile(t, filepath.Join(root, "_episodes", "copied.mkv"), []byte("copied"))

	result, err := acts.ListExtraFiles(context.Background(), ListExtraFilesInput{
		SeriesRoot:           root,
		EpisodeOriginalPaths: []string{claimed},
	})
	if err != nil {
		t.Fatalf("ListExtraFiles: %v", err)
	}
	if len(result.Files) != 1 {
		t.Fatalf("files = %v, want only the menu", result.Files)
	}
	if result.Files[0].Path != extra {
		t.Fatalf("extra = %q, want %q", result.Files[0].Path, extra)
	}
}
