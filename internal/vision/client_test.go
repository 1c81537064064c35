package vision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blackjack-helper/internal/game"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fakeOpenAI struct {
	*httptest.Server
	authHeader string
	request    map[string]any
}

func newFakeOpenAI(t *testing.T, status int, reply string) *fakeOpenAI {
	t.Helper()
	f := &fakeOpenAI{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		f.authHeader = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&f.request))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error": {"message": "invalid api key", "type": "invalid_request_error"}}`))
			return
		}
		body, _ := json.Marshal(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-4o",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": reply},
			}},
		})
		_, _ = w.Write(body)
	}))
	t.Cleanup(f.Close)
	return f
}

func TestClassify_SendsImageAndParsesReply(t *testing.T) {
	srv := newFakeOpenAI(t, http.StatusOK,
		"```json\n{\"playerCards\":[{\"rank\":\"A\",\"suit\":\"hearts\"},{\"rank\":\"K\",\"suit\":\"clubs\"}],\"dealerCards\":[{\"rank\":\"6\",\"suit\":\"spades\"}],\"confidence\":0.8}\n```")

	c := New(Config{APIKey: "sk-default", BaseURL: srv.URL + "/v1"})
	got, err := c.Classify(context.Background(), "", pngHeader)
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk-default", srv.authHeader)
	assert.Equal(t, DefaultModel, srv.request["model"])
	assert.EqualValues(t, DefaultMaxTokens, srv.request["max_tokens"])

	messages := srv.request["messages"].([]any)
	require.Len(t, messages, 1)
	parts := messages[0].(map[string]any)["content"].([]any)
	require.Len(t, parts, 2)
	assert.Equal(t, Prompt, parts[0].(map[string]any)["text"])
	url := parts[1].(map[string]any)["image_url"].(map[string]any)["url"].(string)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"), url)

	assert.Equal(t, game.Hand{game.NewCard(game.Ace, game.Hearts), game.NewCard(game.King, game.Clubs)}, got.Player)
	assert.Equal(t, game.Hand{game.NewCard(game.Six, game.Spades)}, got.Dealer)
	assert.InDelta(t, 0.8, got.Confidence, 1e-9)
}

func TestClassify_PerCallKeyOverridesDefault(t *testing.T) {
	srv := newFakeOpenAI(t, http.StatusOK, `{"playerCards":[],"dealerCards":[]}`)

	c := New(Config{APIKey: "sk-default", BaseURL: srv.URL + "/v1", Model: "gpt-4o-mini"})
	got, err := c.Classify(context.Background(), " sk-user ", []byte{0xff, 0xd8, 0xff})
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk-user", srv.authHeader)
	assert.Equal(t, "gpt-4o-mini", srv.request["model"])
	assert.True(t, got.Empty())
}

func TestClassify_NoKey(t *testing.T) {
	c := New(Config{})
	assert.False(t, c.HasDefaultKey())

	_, err := c.Classify(context.Background(), "", pngHeader)
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestClassify_EmptyImage(t *testing.T) {
	c := New(Config{APIKey: "sk"})
	_, err := c.Classify(context.Background(), "", nil)
	assert.ErrorIs(t, err, ErrEmptyImage)
}

func TestClassify_APIError(t *testing.T) {
	srv := newFakeOpenAI(t, http.StatusUnauthorized, "")

	c := New(Config{BaseURL: srv.URL + "/v1"})
	_, err := c.Classify(context.Background(), "sk-bad", pngHeader)
	require.ErrorIs(t, err, ErrClassifyFail)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestClassify_UnparseableReply(t *testing.T) {
	srv := newFakeOpenAI(t, http.StatusOK, "Sorry, I can't help with that.")

	c := New(Config{APIKey: "sk", BaseURL: srv.URL + "/v1"})
	_, err := c.Classify(context.Background(), "", pngHeader)
	assert.ErrorIs(t, err, ErrNoJSON)
}

func TestDataURL_FallsBackToJPEG(t *testing.T) {
	assert.True(t, strings.HasPrefix(dataURL([]byte("plain text")), "data:image/jpeg;base64,"))
}
