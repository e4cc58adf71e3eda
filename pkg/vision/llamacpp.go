package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// LlamaCppClient queries a vision model through a llama.cpp server's
// OpenAI-compatible chat endpoint.
type LlamaCppClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewLlamaCppClient creates a client for the llama.cpp server at serverURL.
// An empty URL defaults to the server's standard local address.
func NewLlamaCppClient(serverURL string) (*LlamaCppClient, error) {
	if serverURL == "" {
		serverURL = "http://localhost:8080"
	}
	return &LlamaCppClient{
		baseURL:    strings.TrimSuffix(serverURL, "/"),
		httpClient: &http.Client{Timeout: queryTimeout},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"` // string or []contentPart
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Query sends a single chat completion with the image attached as a data URL.
func (c *LlamaCppClient) Query(ctx context.Context, model, prompt, imageB64 string) (string, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, queryTimeout)
		defer cancel()
	}

	content := []contentPart{{Type: "text", Text: prompt}}
	if imageB64 != "" {
		content = append(content, contentPart{
			Type:     "image_url",
			ImageURL: &imageURL{URL: "data:image/jpeg;base64," + imageB64},
		})
	}

	req := chatRequest{
		Model:       model,
		Messages:    []chatMessage{{Role: "user", Content: content}},
		Temperature: 0.7,
		MaxTokens:   2048,
		Stream:      false,
	}

	body, err := c.send(ctx, "/v1/chat/completions", req)
	if err != nil {
		return "", err
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	// Servers answer with either a plain string or a part list.
	switch content := resp.Choices[0].Message.Content.(type) {
	case string:
		return content, nil
	case []any:
		for _, item := range content {
			part, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if text, ok := part["text"].(string); ok && text != "" {
				return text, nil
			}
		}
	}
	return "", fmt.Errorf("no text content in response")
}

// Annotate queries the model and parses the response into an Annotation.
func (c *LlamaCppClient) Annotate(ctx context.Context, model, prompt, imageB64 string) (*Annotation, error) {
	content, err := c.Query(ctx, model, prompt, imageB64)
	if err != nil {
		return nil, err
	}
	if content == "" {
		return nil, fmt.Errorf("empty response from llama.cpp server")
	}
	return parseAnnotation(content)
}

func (c *LlamaCppClient) send(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
