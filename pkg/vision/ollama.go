package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
)

// queryTimeout bounds a model call when the caller's context carries no
// deadline. Large vision models on CPU are slow.
const queryTimeout = 5 * time.Minute

// OllamaClient queries a vision model through an Ollama server.
type OllamaClient struct {
	client *api.Client
}

// NewOllamaClient creates a client for the Ollama server at serverURL. Any
// path on the URL is dropped; only scheme and host are used.
func NewOllamaClient(serverURL string) (*OllamaClient, error) {
	parsed, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("ollama URL %q needs a scheme and host", serverURL)
	}

	base := &url.URL{Scheme: parsed.Scheme, Host: parsed.Host}
	return &OllamaClient{client: api.NewClient(base, http.DefaultClient)}, nil
}

// Query sends a single non-streaming chat turn with the image attached.
func (c *OllamaClient) Query(ctx context.Context, model, prompt, imageB64 string) (string, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, queryTimeout)
		defer cancel()
	}

	imgBytes, err := base64.StdEncoding.DecodeString(imageB64)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64 image: %w", err)
	}

	stream := false
	req := &api.ChatRequest{
		Model: model,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: prompt,
				Images:  []api.ImageData{api.ImageData(imgBytes)},
			},
		},
		Stream: &stream,
	}

	var content string
	err = c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content = resp.Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat error: %w", err)
	}
	return content, nil
}

// Annotate queries the model and parses the response into an Annotation.
func (c *OllamaClient) Annotate(ctx context.Context, model, prompt, imageB64 string) (*Annotation, error) {
	content, err := c.Query(ctx, model, prompt, imageB64)
	if err != nil {
		return nil, err
	}
	if content == "" {
		return nil, fmt.Errorf("empty response from ollama")
	}
	return parseAnnotation(content)
}
