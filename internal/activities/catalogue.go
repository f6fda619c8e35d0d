package activities

import (
	"context"
	"fmt"

	"sera/internal/logging"
	"sera/internal/organize"
	"sera/internal/services/anilist"
)

// SearchAnimeInput carries the cleaned series name.
type SearchAnimeInput struct {
	Name string `json:"name"`
}

// SearchAnimeResult holds the best catalogue match, nil on a miss.
type SearchAnimeResult struct {
	Result *anilist.SearchResult `json:"result,omitempty"`
}

// SearchAnime queries the catalogue for the series.
func (a *Activities) SearchAnime(ctx context.Context, in SearchAnimeInput) (SearchAnimeResult, error) {
	result, err := a.catalogue.Search(ctx, in.Name)
	if err != nil {
		return SearchAnimeResult{}, serviceError(fmt.Errorf("search catalogue for %q: %w", in.Name, err))
	}
	if result == nil {
		a.logger.Warn("catalogue search missed", logging.String("name", in.Name))
	}
	return SearchAnimeResult{Result: result}, nil
}

// DiscoverSeasonsInput carries the entry the search found.
type DiscoverSeasonsInput struct {
	FirstID int `json:"firstId"`
}

// DiscoverSeasonsResult lists the relation chain's TV entries in broadcast
// order.
type DiscoverSeasonsResult struct {
	Entries []anilist.Entry `json:"entries"`
}

// DiscoverSeasons walks the catalogue relation chain from the matched entry.
func (a *Activities) DiscoverSeasons(ctx context.Context, in DiscoverSeasonsInput) (DiscoverSeasonsResult, error) {
	entries, err := a.catalogue.DiscoverSeasons(ctx, in.FirstID)
	if err != nil {
		return DiscoverSeasonsResult{}, serviceError(fmt.Errorf("discover seasons from %d: %w", in.FirstID, err))
	}
	return DiscoverSeasonsResult{Entries: entries}, nil
}

// FetchSeasonEpisodesInput names one season entry.
type FetchSeasonEpisodesInput struct {
	ID            int `json:"id"`
	ExpectedCount int `json:"expectedCount"`
}

// FetchSeasonEpisodesResult lists the season's numbered episodes.
type FetchSeasonEpisodesResult struct {
	Episodes []organize.Episode `json:"episodes"`
}

// FetchSeasonEpisodes pulls one season's episode list with titles.
func (a *Activities) FetchSeasonEpisodes(ctx context.Context, in FetchSeasonEpisodesInput) (FetchSeasonEpisodesResult, error) {
	episodes, err := a.catalogue.SeasonEpisodes(ctx, in.ID, in.ExpectedCount)
	if err != nil {
		return FetchSeasonEpisodesResult{}, serviceError(fmt.Errorf("fetch episodes for %d: %w", in.ID, err))
	}
	return FetchSeasonEpisodesResult{Episodes: episodes}, nil
}
