package naming

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// invalidCharReplacer strips characters that are not valid in library
// directory and file names.
var invalidCharReplacer = strings.NewReplacer(
	"<", "",
	">", "",
	":", "",
	"\"", "",
	"/", "",
	"\\", "",
	"|", "",
	"?", "",
	"*", "",
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// CleanShowName strips filesystem-invalid characters, collapses whitespace
// runs to a single space, and trims. Titles from the catalogue are NFC
// normalized so equivalent unicode spellings produce one directory.
func CleanShowName(name string) string {
	name = norm.NFC.String(name)
	name = invalidCharReplacer.Replace(name)
	name = whitespaceRun.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// EpisodeFileName builds a Plex-style file name:
// "<Show> - S<ss>E<ee>[ - <Title>].<ext>". The extension is taken from the
// original file name. Title is optional.
func EpisodeFileName(show string, season, episode int, title, originalName string) string {
	ext := filepath.Ext(originalName)
	base := fmt.Sprintf("%s - S%02dE%02d", CleanShowName(show), season, episode)
	if cleaned := CleanShowName(title); cleaned != "" {
		base += " - " + cleaned
	}
	return base + ext
}

// SeasonDirName returns the zero-padded season directory name.
func SeasonDirName(season int) string {
	return fmt.Sprintf("Season %02d", season)
}

var episodeTag = regexp.MustCompile(`(?i)S(\d{2,})E(\d{2,})`)

// ParseEpisodeTag extracts (season, episode) from an S<ss>E<ee> tag in a
// file name. Returns ok=false when no tag is present.
func ParseEpisodeTag(name string) (season, episode int, ok bool) {
	m := episodeTag.FindStringSubmatch(name)
	if m == nil {
		return 0, 0, false
	}
	season, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false
	}
	episode, err = strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, false
	}
	return season, episode, true
}

var (
	bracketGroup = regexp.MustCompile(`\[[^\]]*\]`)
	parenGroup   = regexp.MustCompile(`\([^)]*\)`)
	seasonToken  = regexp.MustCompile(`(?i)\bS(\d+)\b`)
	separatorRun = regexp.MustCompile(`[_.\-]+`)

	// Release-name noise removed before catalogue search.
	qualityToken = regexp.MustCompile(`(?i)\b(1080p|720p|480p|2160p|4K|x264|x265|HEVC|AVC|FLAC|AAC|BD|BluRay|BDRip|WEB-?DL|WEBRip)\b`)
)

// CleanSearchName turns a raw release folder name into a catalogue search
// query: bracket and paren groups removed, quality tokens removed, S<n>
// rewritten to "Season <n>", separators replaced with spaces, whitespace
// collapsed.
func CleanSearchName(folderName string) string {
	name := bracketGroup.ReplaceAllString(folderName, " ")
	name = parenGroup.ReplaceAllString(name, " ")
	name = qualityToken.ReplaceAllString(name, " ")
	name = separatorRun.ReplaceAllString(name, " ")
	name = seasonToken.ReplaceAllString(name, "Season $1")
	name = whitespaceRun.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}
