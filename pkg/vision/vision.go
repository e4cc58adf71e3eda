// Package vision talks to locally hosted vision-language models.
//
// Two backends are supported: an Ollama server (native API) and a llama.cpp
// server (OpenAI-compatible API). Both satisfy Client, so modules that
// annotate images stay backend-agnostic. Model output is treated as hostile:
// responses pass through a sanitizer that strips code fences, comments and
// trailing commas before JSON decoding, and parse failures degrade to a
// low-confidence fallback annotation instead of an error.
package vision

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
)

// DefaultPrompt asks the model for exactly the JSON shape Annotation decodes.
const DefaultPrompt = `Describe this image. Respond with strict JSON only, no prose:
{"label": "<main subject in 2-4 words>", "confidence": <0.0-1.0>, "description": "<one sentence>", "tags": ["<tag>", "<tag>"]}`

// Client is a vision-language model backend.
type Client interface {
	// Query sends a prompt plus a base64-encoded image and returns the raw
	// model response.
	Query(ctx context.Context, model, prompt, imageB64 string) (string, error)
	// Annotate sends a prompt plus a base64-encoded image and parses the
	// response into an Annotation.
	Annotate(ctx context.Context, model, prompt, imageB64 string) (*Annotation, error)
}

// Annotation is the structured description a vision model produces for one
// image.
type Annotation struct {
	Label       string   `json:"label"`
	Confidence  float64  `json:"confidence"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

var (
	reBlockComment  = regexp.MustCompile(`(?s)/\*.*?\*/`)
	reLineComment   = regexp.MustCompile(`(?m)^\s*//.*$`)
	reInlineComment = regexp.MustCompile(`(?m)//.*$`)
	reTrailingComma = regexp.MustCompile(`,(\s*[}\]])`)
)

// parseAnnotation decodes a model response, degrading to a fallback
// annotation when the model ignored the JSON instruction.
func parseAnnotation(raw string) (*Annotation, error) {
	raw = sanitizeModelJSON(raw)

	if !strings.HasPrefix(raw, "{") {
		return &Annotation{
			Label:       "unclear image",
			Confidence:  0.1,
			Description: "model returned a non-JSON response",
			Tags:        []string{"unclear", "non-json", "fallback"},
		}, nil
	}

	var a Annotation
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return &Annotation{
			Label:       "parse error",
			Confidence:  0.1,
			Description: "failed to parse model response",
			Tags:        []string{"parse-error", "fallback"},
		}, nil
	}
	if a.Label == "" {
		a.Label = "unlabeled"
	}
	return &a, nil
}

// sanitizeModelJSON strips code fences, comments and trailing commas, then
// keeps only the outermost JSON object.
func sanitizeModelJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.TrimSpace(raw)
	raw = strings.Trim(raw, "`")

	raw = reBlockComment.ReplaceAllString(raw, "")
	raw = reLineComment.ReplaceAllString(raw, "")
	raw = reInlineComment.ReplaceAllString(raw, "")
	raw = reTrailingComma.ReplaceAllString(raw, "$1")

	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}
	return strings.TrimSpace(raw)
}
