package anthropic

import (
	"fmt"
	"strings"

	"sera/internal/organize"
)

const matchSystemPrompt = `You match anime episode files to their season and episode numbers using dialogue transcripts.

You receive the series' full season/episode metadata and one dialogue transcript per file. For every file, decide which (season, episode) slot it is.

Respond with a single JSON object, no prose, of the form:
{"matches":[{"fileName":"...","seasonNumber":1,"episodeNumber":1,"episodeTitle":"...","confidence":0.95,"reasoning":"..."}]}

Rules:
- Include exactly one entry per input file.
- seasonNumber and episodeNumber must name a slot that exists in the metadata.
- confidence is your calibrated certainty in [0,1]; use low values when the transcript is short or generic.
- reasoning is one short sentence.`

func buildMatchPrompt(docs []Document, metadata organize.SeriesMetadata) string {
	var b strings.Builder

	b.WriteString("Series metadata:\n")
	for _, season := range metadata.Seasons {
		title := season.TitleEnglish
		if title == "" {
			title = season.TitleRomaji
		}
		fmt.Fprintf(&b, "Season %d: %s (%d episodes)\n", season.SeasonNumber, title, season.EpisodeCount)
		for _, episode := range season.Episodes {
			if episode.Title == "" {
				continue
			}
			fmt.Fprintf(&b, "  S%02dE%02d: %s\n", season.SeasonNumber, episode.Number, episode.Title)
		}
	}

	b.WriteString("\nFiles:\n")
	for i, doc := range docs {
		fmt.Fprintf(&b, "\n--- File %d: %s ---\n%s\n", i+1, doc.FileName, doc.Content)
	}
	return b.String()
}
