package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sera/internal/organize"
	"sera/internal/services"
)

const (
	defaultBaseURL     = "https://api.anthropic.com"
	apiVersion         = "2023-06-01"
	defaultHTTPTimeout = 120 * time.Second
	maxResponseTokens  = 8192
)

// Config captures the runtime settings required to talk to the API.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Client wraps the Anthropic Messages API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs an Anthropic API client.
func NewClient(cfg Config, opts ...Option) *Client {
	client := &Client{
		cfg: Config{
			APIKey:  strings.TrimSpace(cfg.APIKey),
			BaseURL: strings.TrimSpace(cfg.BaseURL),
			Model:   strings.TrimSpace(cfg.Model),
		},
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// Document is one dialogue text the matcher should place.
type Document struct {
	FileName string
	FilePath string
	Content  string
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

type matchPayload struct {
	Matches []organize.EpisodeMatch `json:"matches"`
}

// MatchEpisodes asks the model to assign every document to a season/episode
// slot of the supplied metadata. Matches naming unknown files or
// nonexistent slots are discarded; confidences are clamped to [0, 1].
func (c *Client) MatchEpisodes(ctx context.Context, docs []Document, metadata organize.SeriesMetadata) ([]organize.EpisodeMatch, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	if c.cfg.APIKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "anthropic", "match", "api key required", nil)
	}
	if c.cfg.Model == "" {
		return nil, services.Wrap(services.ErrConfiguration, "anthropic", "match", "model required", nil)
	}

	endpoint, err := url.JoinPath(c.cfg.BaseURL, "/v1/messages")
	if err != nil {
		return nil, fmt.Errorf("anthropic match: build url: %w", err)
	}
	request := messagesRequest{
		Model:     c.cfg.Model,
		MaxTokens: maxResponseTokens,
		System:    matchSystemPrompt,
		Messages:  []message{{Role: "user", Content: buildMatchPrompt(docs, metadata)}},
	}
	encoded, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("anthropic match: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("anthropic match: request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("anthropic match: request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("anthropic match: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("anthropic match: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var completion messagesResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return nil, fmt.Errorf("anthropic match: decode response: %w", err)
	}
	if completion.Error != nil {
		return nil, fmt.Errorf("anthropic match: api error: %s", strings.TrimSpace(completion.Error.Message))
	}
	text := ""
	for _, block := range completion.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	text = extractJSONObject(text)
	if text == "" {
		return nil, services.Wrap(services.ErrValidation, "anthropic", "match", "empty content", nil)
	}

	var payload matchPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, services.Wrap(services.ErrValidation, "anthropic", "match", "parse payload", err)
	}
	return validateMatches(payload.Matches, docs, metadata), nil
}

// extractJSONObject tolerates prose or code fences around the JSON body.
func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return text[start : end+1]
}

func validateMatches(matches []organize.EpisodeMatch, docs []Document, metadata organize.SeriesMetadata) []organize.EpisodeMatch {
	paths := make(map[string]string, len(docs))
	for _, doc := range docs {
		paths[doc.FileName] = doc.FilePath
	}
	valid := make([]organize.EpisodeMatch, 0, len(matches))
	for _, match := range matches {
		path, known := paths[match.FileName]
		if !known {
			continue
		}
		if !metadata.HasSlot(match.SeasonNumber, match.EpisodeNumber) {
			continue
		}
		if match.FilePath == "" {
			match.FilePath = path
		}
		if match.Confidence < 0 {
			match.Confidence = 0
		}
		if match.Confidence > 1 {
			match.Confidence = 1
		}
		if match.EpisodeTitle == "" {
			if episode, ok := metadata.FindEpisode(match.SeasonNumber, match.EpisodeNumber); ok {
				match.EpisodeTitle = episode.Title
			}
		}
		valid = append(valid, match)
	}
	return valid
}
