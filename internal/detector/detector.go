package detector

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"sera/internal/organize"
)

const (
	// minBinWidth keeps the histogram coarse enough that per-episode
	// bitrate variation stays inside one bin.
	minBinWidth = 50 << 20 // 50 MiB

	binCount = 20

	// windowLow/windowHigh bound the accepted size window around the
	// cluster median.
	windowLow  = 0.8
	windowHigh = 1.2

	highConfidenceMinEpisodes = 6
	highConfidenceMinShare    = 0.6
	mediumConfidenceMin       = 3
)

var videoExtensions = map[string]struct{}{
	".mkv":  {},
	".mp4":  {},
	".avi":  {},
	".webm": {},
	".m4v":  {},
	".mov":  {},
	".wmv":  {},
	".flv":  {},
}

// IsVideoFile reports whether name carries a recognized video extension.
func IsVideoFile(name string) bool {
	_, ok := videoExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// CollectVideoFiles walks folder recursively and returns every video file,
// skipping reserved working directories (leading underscore). A missing
// folder yields an empty set.
func CollectVideoFiles(folder string) ([]organize.SourceFile, error) {
	var files []organize.SourceFile
	err := filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == folder && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() {
			if path != folder && strings.HasPrefix(d.Name(), "_") {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsVideoFile(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(folder, path)
		if err != nil {
			return err
		}
		files = append(files, organize.SourceFile{
			Path:         path,
			RelativePath: rel,
			Name:         d.Name(),
			Size:         info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// Detect partitions the video files under folder into episodes and
// non-episodes with a confidence grade.
func Detect(folder string) (organize.DetectionResult, error) {
	files, err := CollectVideoFiles(folder)
	if err != nil {
		return organize.DetectionResult{}, err
	}
	return Classify(files), nil
}

// Classify runs the size-histogram heuristic over an already-collected
// video file set.
func Classify(files []organize.SourceFile) organize.DetectionResult {
	n := len(files)
	switch {
	case n == 0:
		return organize.DetectionResult{Confidence: organize.ConfidenceLow}
	case n == 1:
		return allEpisodes(files, organize.ConfidenceMedium)
	case n == 2:
		return allEpisodes(files, organize.ConfidenceLow)
	}

	sorted := make([]organize.SourceFile, n)
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Size < sorted[j].Size })

	minSize := sorted[0].Size
	maxSize := sorted[n-1].Size
	width := (maxSize - minSize) / binCount
	if width < minBinWidth {
		width = minBinWidth
	}

	bins := make(map[int][]organize.SourceFile)
	for _, f := range sorted {
		idx := int((f.Size - minSize) / width)
		bins[idx] = append(bins[idx], f)
	}

	// Densest bin wins; ties go to the smaller-size bin.
	best := -1
	for idx, members := range bins {
		if best == -1 || len(members) > len(bins[best]) || (len(members) == len(bins[best]) && idx < best) {
			best = idx
		}
	}

	median := medianSize(bins[best])
	low := int64(float64(median) * windowLow)
	high := int64(float64(median) * windowHigh)

	var episodes, nonEpisodes []organize.SourceFile
	for _, f := range files {
		if f.Size >= low && f.Size <= high {
			episodes = append(episodes, f)
		} else {
			nonEpisodes = append(nonEpisodes, f)
		}
	}

	confidence := organize.ConfidenceLow
	share := float64(len(episodes)) / float64(n)
	switch {
	case len(episodes) >= highConfidenceMinEpisodes && share > highConfidenceMinShare:
		confidence = organize.ConfidenceHigh
	case len(episodes) >= mediumConfidenceMin:
		confidence = organize.ConfidenceMedium
	}

	return organize.DetectionResult{
		Episodes:      episodes,
		NonEpisodes:   nonEpisodes,
		Confidence:    confidence,
		ClusterMedian: median,
		ClusterMin:    low,
		ClusterMax:    high,
	}
}

func allEpisodes(files []organize.SourceFile, confidence organize.DetectionConfidence) organize.DetectionResult {
	median := medianSize(files)
	return organize.DetectionResult{
		Episodes:      files,
		Confidence:    confidence,
		ClusterMedian: median,
		ClusterMin:    int64(float64(median) * windowLow),
		ClusterMax:    int64(float64(median) * windowHigh),
	}
}

// medianSize assumes members are sorted by size, which holds for histogram
// bins built from a sorted slice.
func medianSize(members []organize.SourceFile) int64 {
	if len(members) == 0 {
		return 0
	}
	mid := len(members) / 2
	if len(members)%2 == 1 {
		return members[mid].Size
	}
	return (members[mid-1].Size + members[mid].Size) / 2
}
