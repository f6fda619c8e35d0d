package detector

import (
	"os"
	"path/filepath"
	"testing"

	"sera/internal/organize"
)

const mib = int64(1) << 20

func sized(name string, size int64) organize.SourceFile {
	return organize.SourceFile{Path: "/media/disc/" + name, RelativePath: name, Name: name, Size: size}
}

func TestIsVideoFile(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"episode.mkv", true},
		{"episode.MKV", true},
		{"movie.mp4", true},
		{"clip.webm", true},
		{"notes.txt", false},
		{"cover.jpg", false},
		{"noext", false},
	}
	for _, tc := range cases {
		if got := IsVideoFile(tc.name); got != tc.want {
			t.Errorf("IsVideoFile(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestClassifyEmpty(t *testing.T) {
	result := Classify(nil)
	if result.Confidence != organize.ConfidenceLow {
		t.Fatalf("confidence = %s, want low", result.Confidence)
	}
	if len(result.Episodes) != 0 || len(result.NonEpisodes) != 0 {
		t.Fatalf("expected empty result, got %d/%d", len(result.Episodes), len(result.NonEpisodes))
	}
}

func TestClassifySingleFile(t *testing.T) {
	result := Classify([]organize.SourceFile{sized("ep1.mkv", 1400*mib)})
	if result.Confidence != organize.ConfidenceMedium {
		t.Fatalf("confidence = %s, want medium", result.Confidence)
	}
	if len(result.Episodes) != 1 {
		t.Fatalf("episodes = %d, want 1", len(result.Episodes))
	}
}

func TestClassifyTwoFiles(t *testing.T) {
	result := Classify([]organize.SourceFile{sized("ep1.mkv", 1400*mib), sized("ep2.mkv", 1450*mib)})
	if result.Confidence != organize.ConfidenceLow {
		t.Fatalf("confidence = %s, want low", result.Confidence)
	}
	if len(result.Episodes) != 2 {
		t.Fatalf("episodes = %d, want 2", len(result.Episodes))
	}
}

func TestClassifyEpisodesWithMenu(t *testing.T) {
	files := []organize.SourceFile{sized("menu.mkv", 80 * mib)}
	for i := 0; i < 12; i++ {
		files = append(files, sized("ep.mkv", (1300+int64(i)*10)*mib))
	}
	result := Classify(files)

	if result.Confidence != organize.ConfidenceHigh {
		t.Fatalf("confidence = %s, want high", result.Confidence)
	}
	if len(result.Episodes) != 12 {
		t.Fatalf("episodes = %d, want 12", len(result.Episodes))
	}
	if len(result.NonEpisodes) != 1 || result.NonEpisodes[0].Name != "menu.mkv" {
		t.Fatalf("non-episodes = %v, want the menu only", result.NonEpisodes)
	}
	if len(result.Episodes)+len(result.NonEpisodes) != len(files) {
		t.Fatal("partition does not cover the input set")
	}
	for _, f := range result.Episodes {
		if f.Size < result.ClusterMin || f.Size > result.ClusterMax {
			t.Errorf("episode %s size %d outside window [%d, %d]", f.Name, f.Size, result.ClusterMin, result.ClusterMax)
		}
	}
	for _, f := range result.NonEpisodes {
		if f.Size >= result.ClusterMin && f.Size <= result.ClusterMax {
			t.Errorf("non-episode %s size %d inside window", f.Name, f.Size)
		}
	}
}

func TestClassifyTwoClusters(t *testing.T) {
	var files []organize.SourceFile
	for i := 0; i < 5; i++ {
		files = append(files, sized("big.mkv", (1100+int64(i)*10)*mib))
	}
	for i := 0; i < 4; i++ {
		files = append(files, sized("small.mkv", (700+int64(i)*10)*mib))
	}
	result := Classify(files)

	// Densest bin is the five-file cluster; 5 episodes of 9 is below the
	// high bar on both count and share.
	if result.Confidence != organize.ConfidenceMedium {
		t.Fatalf("confidence = %s, want medium", result.Confidence)
	}
	if len(result.Episodes) != 5 {
		t.Fatalf("episodes = %d, want 5", len(result.Episodes))
	}
	if len(result.NonEpisodes) != 4 {
		t.Fatalf("non-episodes = %d, want 4", len(result.NonEpisodes))
	}
}

func TestClassifyTieBreaksToSmallerSizes(t *testing.T) {
	files := []organize.SourceFile{
		sized("a.mkv", 100*mib), sized("b.mkv", 110*mib), sized("c.mkv", 120*mib),
		sized("x.mkv", 300*mib), sized("y.mkv", 310*mib), sized("z.mkv", 320*mib),
	}
	result := Classify(files)

	if len(result.Episodes) != 3 {
		t.Fatalf("episodes = %d, want 3", len(result.Episodes))
	}
	for _, f := range result.Episodes {
		if f.Size > 150*mib {
			t.Fatalf("episode %s from the larger cluster; tie should pick smaller sizes", f.Name)
		}
	}
}

func TestCollectVideoFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "ep1.mkv"), 10)
	writeFile(t, filepath.Join(dir, "sub", "ep2.mp4"), 20)
	writeFile(t, filepath.Join(dir, "notes.txt"), 5)
	writeFile(t, filepath.Join(dir, "_episodes", "skip.mkv"), 30)

	files, err := CollectVideoFiles(dir)
	if err != nil {
		t.Fatalf("CollectVideoFiles: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("files = %d, want 2", len(files))
	}
	for _, f := range files {
		if f.Name == "skip.mkv" {
			t.Fatal("reserved _episodes directory was not skipped")
		}
		if f.Name == "notes.txt" {
			t.Fatal("non-video file collected")
		}
	}
}

func TestCollectVideoFilesMissingFolder(t *testing.T) {
	files, err := CollectVideoFiles(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("CollectVideoFiles: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("files = %d, want 0", len(files))
	}
}

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
}
