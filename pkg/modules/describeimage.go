package modules

import (
	"fmt"
	"strings"

	"github.com/menta2k/image-pipeline/pkg/log"
	"github.com/menta2k/image-pipeline/pkg/pipeline"
	"github.com/menta2k/image-pipeline/pkg/setting"
	"github.com/menta2k/image-pipeline/pkg/vision"
)

// Vision backend options.
const (
	BackendOllama   = "ollama"
	BackendLlamaCpp = "llamacpp"
)

// DescribePrefix starts every measurement this module records.
const DescribePrefix = "Describe_"

// DescribeImage sends a named image to a vision-language model and records
// the annotation as measurements: Describe_<image>_Label, _Confidence,
// _Description and _Tags.
type DescribeImage struct {
	image      *setting.Text
	backend    *setting.Choice
	serverURL  *setting.Text
	model      *setting.Text
	prompt     *setting.Text
	maxDim     *setting.Integer
	sendFormat *setting.Choice
	quality    *setting.Integer

	client vision.Client
}

// NewDescribeImage creates the module with its default settings.
func NewDescribeImage() *DescribeImage {
	return &DescribeImage{
		image:   setting.NewText("Which image do you want to describe?", "OrigBlue"),
		backend: setting.NewChoice("Which model server do you use?", []string{BackendOllama, BackendLlamaCpp}),
		serverURL: setting.NewText("What is the server URL?", "http://localhost:11434").
			WithDoc("For llamacpp the default port is usually 8080."),
		model: setting.NewText("Which model should describe the image?", "llava"),
		prompt: setting.NewText("Custom prompt (blank uses the builtin one)", "").
			WithDoc("The builtin prompt asks for strict JSON with label, confidence, description and tags."),
		maxDim:     setting.NewInteger("Longest side sent to the model (0 sends full size)", 768),
		sendFormat: setting.NewChoice("Encoding for the transfer", []string{"jpg", "png"}),
		quality:    setting.NewInteger("Transfer quality for jpg (1-100)", 85),
	}
}

// SetClient injects the vision backend, bypassing the URL/backend settings.
func (m *DescribeImage) SetClient(c vision.Client) { m.client = c }

// Name implements pipeline.Module.
func (m *DescribeImage) Name() string { return "DescribeImage" }

// Category implements pipeline.Module.
func (m *DescribeImage) Category() string { return "Measurement" }

// Revision implements pipeline.Module.
func (m *DescribeImage) Revision() int { return 1 }

// Settings implements pipeline.Module.
func (m *DescribeImage) Settings() []setting.Setting {
	return []setting.Setting{m.image, m.backend, m.serverURL, m.model, m.prompt, m.maxDim, m.sendFormat, m.quality}
}

// VisibleSettings implements pipeline.Module.
func (m *DescribeImage) VisibleSettings() []setting.Setting { return m.Settings() }

// PrepareSettings implements pipeline.Module; the setting count is fixed.
func (m *DescribeImage) PrepareSettings([]string) error { return nil }

func (m *DescribeImage) visionClient() (vision.Client, error) {
	if m.client != nil {
		return m.client, nil
	}
	switch m.backend.Text() {
	case BackendLlamaCpp:
		return vision.NewLlamaCppClient(m.serverURL.Text())
	default:
		return vision.NewOllamaClient(m.serverURL.Text())
	}
}

// Run queries the model about this cycle's image and records the annotation.
func (m *DescribeImage) Run(ws *pipeline.Workspace) error {
	imageName := m.image.Text()
	img, err := ws.Set.Image(imageName)
	if err != nil {
		return err
	}

	imgB64, err := vision.PrepareForModel(img.Pixels, m.sendFormat.Text(), m.maxDim.Value(), m.quality.Value())
	if err != nil {
		return fmt.Errorf("failed to prepare image %q for the model: %w", imageName, err)
	}

	client, err := m.visionClient()
	if err != nil {
		return err
	}

	prompt := m.prompt.Text()
	if prompt == "" {
		prompt = vision.DefaultPrompt
	}

	annotation, err := client.Annotate(ws.Context(), m.model.Text(), prompt, imgB64)
	if err != nil {
		return fmt.Errorf("failed to describe image %q: %w", imageName, err)
	}
	log.Debug("described image", "image", imageName, "label", annotation.Label, "confidence", annotation.Confidence)

	prefix := DescribePrefix + imageName + "_"
	ws.Measurements.Add(prefix+"Label", annotation.Label)
	ws.Measurements.Add(prefix+"Confidence", annotation.Confidence)
	ws.Measurements.Add(prefix+"Description", annotation.Description)
	ws.Measurements.Add(prefix+"Tags", strings.Join(annotation.Tags, ", "))

	ws.Display(fmt.Sprintf("Describe image: image set #%d", ws.Set.Number), [][2]string{
		{"Image name", imageName},
		{"Label", annotation.Label},
		{"Confidence", fmt.Sprintf("%.2f", annotation.Confidence)},
		{"Description", annotation.Description},
		{"Tags", strings.Join(annotation.Tags, ", ")},
	})
	return nil
}
