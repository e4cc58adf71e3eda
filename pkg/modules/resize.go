package modules

import (
	"fmt"
	"math"

	"github.com/disintegration/imaging"

	"github.com/menta2k/image-pipeline/pkg/pipeline"
	"github.com/menta2k/image-pipeline/pkg/setting"
)

// Resize method options.
const (
	ResizeByFactor     = "Resize by a factor"
	ResizeToDimensions = "Resize to exact dimensions"
)

var resampleFilters = map[string]imaging.ResampleFilter{
	"Lanczos":         imaging.Lanczos,
	"Linear":          imaging.Linear,
	"CatmullRom":      imaging.CatmullRom,
	"NearestNeighbor": imaging.NearestNeighbor,
}

// Resize scales a named image by a factor or to exact dimensions and
// registers the result under a new name.
type Resize struct {
	input  *setting.Text
	output *setting.ImageName
	method *setting.Choice
	factor *setting.Float
	width  *setting.Integer
	height *setting.Integer
	filter *setting.Choice
}

// NewResize creates the module with its default settings.
func NewResize() *Resize {
	return &Resize{
		input:  setting.NewText("Which image do you want to resize?", "OrigBlue"),
		output: setting.NewImageName("What do you want to call the resized image?", "ResizedBlue"),
		method: setting.NewChoice("How do you want to resize?", []string{ResizeByFactor, ResizeToDimensions}),
		factor: setting.NewFloat("Resizing factor", 0.25),
		width:  setting.NewInteger("Target width in pixels", 100),
		height: setting.NewInteger("Target height in pixels", 100),
		filter: setting.NewChoice("Which resampling filter?", []string{"Lanczos", "Linear", "CatmullRom", "NearestNeighbor"}),
	}
}

// Name implements pipeline.Module.
func (m *Resize) Name() string { return "Resize" }

// Category implements pipeline.Module.
func (m *Resize) Category() string { return "Image Processing" }

// Revision implements pipeline.Module.
func (m *Resize) Revision() int { return 1 }

// Settings implements pipeline.Module.
func (m *Resize) Settings() []setting.Setting {
	return []setting.Setting{m.input, m.output, m.method, m.factor, m.width, m.height, m.filter}
}

// VisibleSettings shows the factor or the dimensions depending on the method.
func (m *Resize) VisibleSettings() []setting.Setting {
	result := []setting.Setting{m.input, m.output, m.method}
	if m.method.Is(ResizeByFactor) {
		result = append(result, m.factor)
	} else {
		result = append(result, m.width, m.height)
	}
	return append(result, m.filter)
}

// PrepareSettings implements pipeline.Module; the setting count is fixed.
func (m *Resize) PrepareSettings([]string) error { return nil }

// Run resizes the input image and registers the result for this cycle.
func (m *Resize) Run(ws *pipeline.Workspace) error {
	img, err := ws.Set.Image(m.input.Text())
	if err != nil {
		return err
	}

	var width, height int
	if m.method.Is(ResizeByFactor) {
		factor := m.factor.Value()
		if factor <= 0 {
			return fmt.Errorf("resizing factor must be positive, got %g", factor)
		}
		bounds := img.Pixels.Bounds()
		width = int(math.Round(float64(bounds.Dx()) * factor))
		height = int(math.Round(float64(bounds.Dy()) * factor))
		if width < 1 {
			width = 1
		}
		if height < 1 {
			height = 1
		}
	} else {
		width, height = m.width.Value(), m.height.Value()
		if width < 1 || height < 1 {
			return fmt.Errorf("target dimensions must be positive, got %dx%d", width, height)
		}
	}

	resized := imaging.Resize(img.Pixels, width, height, resampleFilters[m.filter.Text()])
	ws.Set.Add(m.output.Text(), resized)
	return nil
}
