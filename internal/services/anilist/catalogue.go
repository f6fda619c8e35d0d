package anilist

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"sera/internal/organize"
	"sera/internal/services"
)

// SearchResult is the best catalogue match for a cleaned series name.
type SearchResult struct {
	ID           int    `json:"id"`
	TitleRomaji  string `json:"titleRomaji"`
	TitleEnglish string `json:"titleEnglish,omitempty"`
	Episodes     int    `json:"episodes"`
	Format       string `json:"format"`
}

// Entry is one TV entry in a series' relation chain.
type Entry struct {
	ID           int    `json:"id"`
	TitleRomaji  string `json:"titleRomaji"`
	TitleEnglish string `json:"titleEnglish,omitempty"`
	Episodes     int    `json:"episodes"`
}

const searchQuery = `
query ($search: String) {
  Media(search: $search, type: ANIME, format_in: [TV]) {
    id
    format
    episodes
    title { romaji english }
  }
}`

type mediaTitle struct {
	Romaji  string `json:"romaji"`
	English string `json:"english"`
}

type searchPayload struct {
	Media *struct {
		ID       int        `json:"id"`
		Format   string     `json:"format"`
		Episodes int        `json:"episodes"`
		Title    mediaTitle `json:"title"`
	} `json:"Media"`
}

// Search finds the closest TV anime for the cleaned name. Returns nil when
// the catalogue has no match.
func (c *Client) Search(ctx context.Context, name string) (*SearchResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, services.Wrap(services.ErrValidation, "anilist", "search", "name required", nil)
	}
	var payload searchPayload
	err := c.query(ctx, searchQuery, map[string]any{"search": name}, &payload)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if payload.Media == nil {
		return nil, nil
	}
	return &SearchResult{
		ID:           payload.Media.ID,
		TitleRomaji:  payload.Media.Title.Romaji,
		TitleEnglish: payload.Media.Title.English,
		Episodes:     payload.Media.Episodes,
		Format:       payload.Media.Format,
	}, nil
}

const relationsQuery = `
query ($id: Int) {
  Media(id: $id, type: ANIME) {
    id
    format
    episodes
    title { romaji english }
    relations {
      edges {
        relationType
        node { id type format episodes title { romaji english } }
      }
    }
  }
}`

type relationNode struct {
	ID       int        `json:"id"`
	Type     string     `json:"type"`
	Format   string     `json:"format"`
	Episodes int        `json:"episodes"`
	Title    mediaTitle `json:"title"`
}

type relationEdge struct {
	RelationType string       `json:"relationType"`
	Node         relationNode `json:"node"`
}

type relationsMedia struct {
	ID        int        `json:"id"`
	Format    string     `json:"format"`
	Episodes  int        `json:"episodes"`
	Title     mediaTitle `json:"title"`
	Relations struct {
		Edges []relationEdge `json:"edges"`
	} `json:"relations"`
}

type relationsPayload struct {
	Media *relationsMedia `json:"Media"`
}

// DiscoverSeasons walks the relation chain from any entry: prequels back to
// the first season, then sequels forward, keeping TV entries only. A visited
// set terminates relation cycles. The result is in broadcast order.
func (c *Client) DiscoverSeasons(ctx context.Context, firstID int) ([]Entry, error) {
	visited := make(map[int]bool)

	rootID := firstID
	for {
		media, err := c.relations(ctx, rootID)
		if err != nil {
			return nil, err
		}
		if media == nil {
			return nil, services.Wrap(services.ErrNotFound, "anilist", "discover", fmt.Sprintf("media %d missing", rootID), nil)
		}
		visited[rootID] = true
		prequelID, ok := findRelation(media, "PREQUEL")
		if !ok || visited[prequelID] {
			break
		}
		rootID = prequelID
	}

	var seasons []Entry
	visited = map[int]bool{}
	currentID := rootID
	for {
		media, err := c.relations(ctx, currentID)
		if err != nil {
			return nil, err
		}
		if media == nil {
			break
		}
		visited[currentID] = true
		if strings.EqualFold(media.Format, "TV") {
			seasons = append(seasons, Entry{
				ID:           media.ID,
				TitleRomaji:  media.Title.Romaji,
				TitleEnglish: media.Title.English,
				Episodes:     media.Episodes,
			})
		}
		sequelID, ok := findRelation(media, "SEQUEL")
		if !ok || visited[sequelID] {
			break
		}
		currentID = sequelID
	}
	return seasons, nil
}

func (c *Client) relations(ctx context.Context, id int) (*relationsMedia, error) {
	var payload relationsPayload
	err := c.query(ctx, relationsQuery, map[string]any{"id": id}, &payload)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload.Media, nil
}

// findRelation returns the first TV anime related by the given type,
// preferring TV format when several edges share the relation type.
func findRelation(media *relationsMedia, relationType string) (int, bool) {
	candidate := 0
	for _, edge := range media.Relations.Edges {
		if !strings.EqualFold(edge.RelationType, relationType) {
			continue
		}
		if !strings.EqualFold(edge.Node.Type, "ANIME") {
			continue
		}
		if strings.EqualFold(edge.Node.Format, "TV") {
			return edge.Node.ID, true
		}
		if candidate == 0 {
			candidate = edge.Node.ID
		}
	}
	return candidate, candidate != 0
}

const episodesQuery = `
query ($id: Int) {
  Media(id: $id, type: ANIME) {
    id
    episodes
    streamingEpisodes { title }
  }
}`

type episodesPayload struct {
	Media *struct {
		ID                int `json:"id"`
		Episodes          int `json:"episodes"`
		StreamingEpisodes []struct {
			Title string `json:"title"`
		} `json:"streamingEpisodes"`
	} `json:"Media"`
}

var episodeTitlePattern = regexp.MustCompile(`(?i)^episode\s+(\d+)\s*[-–:]?\s*(.*)$`)

// SeasonEpisodes returns the numbered episode list for one season entry.
// Titles come from the catalogue's streaming episode names when present;
// the list is padded to expectedCount with untitled entries.
func (c *Client) SeasonEpisodes(ctx context.Context, id, expectedCount int) ([]organize.Episode, error) {
	var payload episodesPayload
	err := c.query(ctx, episodesQuery, map[string]any{"id": id}, &payload)
	if errors.Is(err, errNotFound) {
		return nil, services.Wrap(services.ErrNotFound, "anilist", "episodes", fmt.Sprintf("media %d missing", id), nil)
	}
	if err != nil {
		return nil, err
	}

	count := expectedCount
	if payload.Media != nil && payload.Media.Episodes > count {
		count = payload.Media.Episodes
	}
	if count <= 0 {
		return nil, nil
	}

	titles := make(map[int]string)
	if payload.Media != nil {
		for i, streaming := range payload.Media.StreamingEpisodes {
			number := i + 1
			title := strings.TrimSpace(streaming.Title)
			if m := episodeTitlePattern.FindStringSubmatch(title); m != nil {
				if parsed, err := strconv.Atoi(m[1]); err == nil {
					number = parsed
					title = strings.TrimSpace(m[2])
				}
			}
			if number >= 1 && number <= count && titles[number] == "" {
				titles[number] = title
			}
		}
	}

	episodes := make([]organize.Episode, 0, count)
	for number := 1; number <= count; number++ {
		episodes = append(episodes, organize.Episode{Number: number, Title: titles[number]})
	}
	return episodes, nil
}
