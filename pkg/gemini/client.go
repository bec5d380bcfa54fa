// Package gemini calls the Gemini text generation endpoint.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Client issues one generation request per call. The API key is supplied per call because it
// lives in user settings and may change between requests.
type Client struct {
	attemptTimeout time.Duration
}

// NewClient builds a client. attemptTimeout bounds each call; zero keeps the transport default.
func NewClient(attemptTimeout time.Duration) *Client {
	return &Client{attemptTimeout: attemptTimeout}
}

// Generate sends prompt to model and returns the concatenated text parts of the first candidate.
// A successful call without text returns an empty string.
func (c *Client) Generate(ctx context.Context, apiKey, model, prompt string) (string, error) {
	if c.attemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.attemptTimeout)
		defer cancel()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", fmt.Errorf("create gemini client: %w", err)
	}
	defer client.Close()

	resp, err := client.GenerativeModel(model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	return responseText(resp), nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}
