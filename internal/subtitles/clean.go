package subtitles

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	srtTimestampLine = regexp.MustCompile(`-->`)
	htmlTag          = regexp.MustCompile(`<[^>]*>`)
	assOverride      = regexp.MustCompile(`\{[^}]*\}`)

	adPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)opensubtitles`),
		regexp.MustCompile(`(?i)subtitles? by`),
		regexp.MustCompile(`(?i)synced? and corrected`),
		regexp.MustCompile(`(?i)http(s)?://`),
		regexp.MustCompile(`(?i)\bwww\.`),
	}
)

// ToPlainText converts raw subtitle data into dialogue-only text, one cue
// line per output line. The extension selects the parser; unknown formats
// fall back to SRT handling.
func ToPlainText(raw, ext string) string {
	switch strings.ToLower(ext) {
	case ".ass", ".ssa":
		return assToText(raw)
	default:
		return srtToText(raw)
	}
}

// srtToText strips cue counters, timestamp lines, markup tags, and
// advertisement cues from SRT (and VTT, which shares the cue shape).
func srtToText(raw string) string {
	normalized := strings.ReplaceAll(raw, "\r\n", "\n")
	var lines []string
	for _, block := range strings.Split(strings.TrimSpace(normalized), "\n\n") {
		if blockIsAdvertisement(block) {
			continue
		}
		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || srtTimestampLine.MatchString(line) {
				continue
			}
			if _, err := strconv.Atoi(line); err == nil {
				continue
			}
			line = htmlTag.ReplaceAllString(line, "")
			line = assOverride.ReplaceAllString(line, "")
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
	}
	return strings.Join(lines, "\n")
}

// assToText pulls the dialogue text field from ASS/SSA event lines.
func assToText(raw string) string {
	normalized := strings.ReplaceAll(raw, "\r\n", "\n")
	var lines []string
	for _, line := range strings.Split(normalized, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "Dialogue:") {
			continue
		}
		// Format: Dialogue: Layer,Start,End,Style,Name,MarginL,MarginR,MarginV,Effect,Text
		parts := strings.SplitN(trimmed, ",", 10)
		if len(parts) < 10 {
			continue
		}
		text := assOverride.ReplaceAllString(parts[9], "")
		text = strings.ReplaceAll(text, `\N`, "\n")
		text = strings.ReplaceAll(text, `\n`, "\n")
		for _, piece := range strings.Split(text, "\n") {
			if piece = strings.TrimSpace(piece); piece != "" && !lineIsAdvertisement(piece) {
				lines = append(lines, piece)
			}
		}
	}
	return strings.Join(lines, "\n")
}

func blockIsAdvertisement(block string) bool {
	for _, line := range strings.Split(block, "\n") {
		if lineIsAdvertisement(line) {
			return true
		}
	}
	return false
}

func lineIsAdvertisement(line string) bool {
	for _, pattern := range adPatterns {
		if pattern.MatchString(line) {
			return true
		}
	}
	return false
}
