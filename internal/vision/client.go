// Package vision asks an OpenAI vision model which cards are on a
// blackjack table photo.
package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultModel     = openai.GPT4o
	DefaultMaxTokens = 1000
)

var (
	ErrNoAPIKey     = errors.New("openai api key is not set")
	ErrEmptyImage   = errors.New("image is empty")
	ErrEmptyReply   = errors.New("model returned no choices")
	ErrClassifyFail = errors.New("failed to analyze cards")
)

type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	MaxTokens  int
	HTTPClient *http.Client
}

// Client is owned by the caller; every Classify call may use its own key.
type Client struct {
	cfg Config
}

func New(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	return &Client{cfg: cfg}
}

func (c *Client) Model() string { return c.cfg.Model }

// HasDefaultKey reports whether callers may omit their own key.
func (c *Client) HasDefaultKey() bool { return c.cfg.APIKey != "" }

func (c *Client) api(apiKey string) (*openai.Client, error) {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		key = c.cfg.APIKey
	}
	if key == "" {
		return nil, ErrNoAPIKey
	}

	oc := openai.DefaultConfig(key)
	if c.cfg.BaseURL != "" {
		oc.BaseURL = c.cfg.BaseURL
	}
	if c.cfg.HTTPClient != nil {
		oc.HTTPClient = c.cfg.HTTPClient
	}
	return openai.NewClientWithConfig(oc), nil
}

// Classify sends the photo to the model and parses the cards it reports.
// apiKey overrides the client's default key when non-empty.
func (c *Client) Classify(ctx context.Context, apiKey string, image []byte) (*Classification, error) {
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}

	api, err := c.api(apiKey)
	if err != nil {
		return nil, err
	}

	resp, err := api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: Prompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL(image),
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClassifyFail, err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyReply
	}

	return ParseResponse(resp.Choices[0].Message.Content)
}

func dataURL(image []byte) string {
	mime := http.DetectContentType(image)
	if !strings.HasPrefix(mime, "image/") {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(image)
}
