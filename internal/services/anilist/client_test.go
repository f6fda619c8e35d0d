package anilist

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// graphqlStub routes requests by the id variable (or its absence, for
// search) to canned GraphQL response bodies.
type graphqlStub struct {
	t         *testing.T
	search    string
	relations map[int]string
	episodes  map[int]string
}

func (s *graphqlStub) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.t.Errorf("decode request: %v", err)
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")

		if _, ok := req.Variables["search"]; ok {
			fmt.Fprint(w, s.search)
			return
		}
		id := int(req.Variables["id"].(float64))
		if body, ok := s.relations[id]; ok && strings.Contains(req.Query, "relations") {
			fmt.Fprint(w, body)
			return
		}
		if body, ok := s.episodes[id]; ok {
			fmt.Fprint(w, body)
			return
		}
		fmt.Fprint(w, `{"data":null,"errors":[{"message":"Not Found.","status":404}]}`)
	}
}

func newTestClient(t *testing.T, stub *graphqlStub) *Client {
	t.Helper()
	stub.t = t
	server := httptest.NewServer(stub.handler())
	t.Cleanup(server.Close)
	return NewClient(WithBaseURL(server.URL), WithHTTPClient(server.Client()))
}

func TestSearch(t *testing.T) {
	client := newTestClient(t, &graphqlStub{
		search: `{"data":{"Media":{"id":101,"format":"TV","episodes":12,
			"title":{"romaji":"Sousou no Frieren","english":"Frieren: Beyond Journey's End"}}}}`,
	})

	result, err := client.Search(context.Background(), "Sousou no Frieren")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result == nil {
		t.Fatal("expected a match")
	}
	if result.ID != 101 || result.Episodes != 12 {
		t.Fatalf("result = %+v", result)
	}
	if result.TitleEnglish != "Frieren: Beyond Journey's End" {
		t.Fatalf("TitleEnglish = %q", result.TitleEnglish)
	}
}

func TestSearchNotFound(t *testing.T) {
	client := newTestClient(t, &graphqlStub{
		search: `{"data":null,"errors":[{"message":"Not Found.","status":404}]}`,
	})

	result, err := client.Search(context.Background(), "No Such Show")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result != nil {
		t.Fatalf("result = %+v, want nil", result)
	}
}

func TestSearchEmptyName(t *testing.T) {
	client := NewClient()
	if _, err := client.Search(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func relationsBody(id int, romaji string, episodes int, prequelID, sequelID int) string {
	var edges []string
	if prequelID != 0 {
		edges = append(edges, fmt.Sprintf(
			`{"relationType":"PREQUEL","node":{"id":%d,"type":"ANIME","format":"TV","episodes":12,"title":{"romaji":"p"}}}`, prequelID))
	}
	if sequelID != 0 {
		edges = append(edges, fmt.Sprintf(
			`{"relationType":"SEQUEL","node":{"id":%d,"type":"ANIME","format":"TV","episodes":12,"title":{"romaji":"s"}}}`, sequelID))
	}
	edges = append(edges,
		`{"relationType":"SIDE_STORY","node":{"id":900,"type":"ANIME","format":"OVA","episodes":1,"title":{"romaji":"ova"}}}`)

	body := fmt.Sprintf(`{"data":{"Media":{"id":%d,"format":"TV","episodes":%d,"title":{"romaji":%q},"relations":{"edges":[`,
		id, episodes, romaji)
	for i, edge := range edges {
		if i > 0 {
			body += ","
		}
		body += edge
	}
	return body + `]}}}}`
}

func TestDiscoverSeasonsWalksToFirst(t *testing.T) {
	// Start from season 2 of a three-season chain.
	client := newTestClient(t, &graphqlStub{
		relations: map[int]string{
			10: relationsBody(10, "Show", 12, 0, 20),
			20: relationsBody(20, "Show 2nd Season", 12, 10, 30),
			30: relationsBody(30, "Show 3rd Season", 12, 20, 0),
		},
	})

	seasons, err := client.DiscoverSeasons(context.Background(), 20)
	if err != nil {
		t.Fatalf("DiscoverSeasons: %v", err)
	}
	if len(seasons) != 3 {
		t.Fatalf("seasons = %d, want 3", len(seasons))
	}
	for i, wantID := range []int{10, 20, 30} {
		if seasons[i].ID != wantID {
			t.Errorf("seasons[%d].ID = %d, want %d", i, seasons[i].ID, wantID)
		}
	}
	if seasons[0].TitleRomaji != "Show" {
		t.Errorf("first season title = %q", seasons[0].TitleRomaji)
	}
}

func TestDiscoverSeasonsTerminatesCycles(t *testing.T) {
	// Two entries pointing at each other as both prequel and sequel.
	client := newTestClient(t, &graphqlStub{
		relations: map[int]string{
			10: relationsBody(10, "A", 12, 20, 20),
			20: relationsBody(20, "B", 12, 10, 10),
		},
	})

	seasons, err := client.DiscoverSeasons(context.Background(), 10)
	if err != nil {
		t.Fatalf("DiscoverSeasons: %v", err)
	}
	if len(seasons) != 2 {
		t.Fatalf("seasons = %d, want 2", len(seasons))
	}
}

func TestDiscoverSeasonsMissingMedia(t *testing.T) {
	client := newTestClient(t, &graphqlStub{relations: map[int]string{}})
	if _, err := client.DiscoverSeasons(context.Background(), 999); err == nil {
		t.Fatal("expected error for missing media")
	}
}

func TestSeasonEpisodes(t *testing.T) {
	client := newTestClient(t, &graphqlStub{
		episodes: map[int]string{
			10: `{"data":{"Media":{"id":10,"episodes":4,"streamingEpisodes":[
				{"title":"Episode 2 - The Second One"},
				{"title":"Episode 1: The First One"},
				{"title":"Just A Title"}
			]}}}`,
		},
	})

	episodes, err := client.SeasonEpisodes(context.Background(), 10, 3)
	if err != nil {
		t.Fatalf("SeasonEpisodes: %v", err)
	}
	if len(episodes) != 4 {
		t.Fatalf("episodes = %d, want 4 (catalogue count wins over expected)", len(episodes))
	}
	if episodes[0].Title != "The First One" {
		t.Errorf("episode 1 title = %q", episodes[0].Title)
	}
	if episodes[1].Title != "The Second One" {
		t.Errorf("episode 2 title = %q", episodes[1].Title)
	}
	// The unnumbered title lands on its list position.
	if episodes[2].Title != "Just A Title" {
		t.Errorf("episode 3 title = %q", episodes[2].Title)
	}
	if episodes[3].Title != "" {
		t.Errorf("episode 4 title = %q, want untitled padding", episodes[3].Title)
	}
	for i, ep := range episodes {
		if ep.Number != i+1 {
			t.Errorf("episodes[%d].Number = %d", i, ep.Number)
		}
	}
}

func TestSeasonEpisodesMissing(t *testing.T) {
	client := newTestClient(t, &graphqlStub{episodes: map[int]string{}})
	if _, err := client.SeasonEpisodes(context.Background(), 42, 12); err == nil {
		t.Fatal("expected error for missing media")
	}
}
