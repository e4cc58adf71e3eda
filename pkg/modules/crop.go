package modules

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/menta2k/image-pipeline/pkg/pipeline"
	"github.com/menta2k/image-pipeline/pkg/setting"
)

// Crop cuts a normalized box out of a named image and registers the result
// under a new name. With a target size set, the crop is center-filled to
// those exact dimensions.
type Crop struct {
	input        *setting.Text
	output       *setting.ImageName
	x, y, w, h   *setting.Float
	targetWidth  *setting.Integer
	targetHeight *setting.Integer
}

// NewCrop creates the module with a centered half-size box.
func NewCrop() *Crop {
	return &Crop{
		input:        setting.NewText("Which image do you want to crop?", "OrigBlue"),
		output:       setting.NewImageName("What do you want to call the cropped image?", "CropBlue"),
		x:            setting.NewFloat("Box left edge (0-1)", 0.25),
		y:            setting.NewFloat("Box top edge (0-1)", 0.25),
		w:            setting.NewFloat("Box width (0-1)", 0.5),
		h:            setting.NewFloat("Box height (0-1)", 0.5),
		targetWidth:  setting.NewInteger("Exact output width (0 keeps the crop size)", 0),
		targetHeight: setting.NewInteger("Exact output height (0 keeps the crop size)", 0),
	}
}

// Name implements pipeline.Module.
func (m *Crop) Name() string { return "Crop" }

// Category implements pipeline.Module.
func (m *Crop) Category() string { return "Image Processing" }

// Revision implements pipeline.Module.
func (m *Crop) Revision() int { return 1 }

// Settings implements pipeline.Module.
func (m *Crop) Settings() []setting.Setting {
	return []setting.Setting{m.input, m.output, m.x, m.y, m.w, m.h, m.targetWidth, m.targetHeight}
}

// VisibleSettings implements pipeline.Module.
func (m *Crop) VisibleSettings() []setting.Setting { return m.Settings() }

// PrepareSettings implements pipeline.Module; the setting count is fixed.
func (m *Crop) PrepareSettings([]string) error { return nil }

// Run crops the input image and registers the result for this cycle.
func (m *Crop) Run(ws *pipeline.Workspace) error {
	img, err := ws.Set.Image(m.input.Text())
	if err != nil {
		return err
	}

	bounds := img.Pixels.Bounds()
	fw, fh := float64(bounds.Dx()), float64(bounds.Dy())

	x0 := int(clamp(m.x.Value(), 0, 1)*fw + 0.5)
	y0 := int(clamp(m.y.Value(), 0, 1)*fh + 0.5)
	x1 := int(clamp(m.x.Value()+m.w.Value(), 0, 1)*fw + 0.5)
	y1 := int(clamp(m.y.Value()+m.h.Value(), 0, 1)*fh + 0.5)

	rect := image.Rect(x0, y0, x1, y1).Intersect(bounds)
	if rect.Empty() {
		return fmt.Errorf("crop box (%g, %g, %g, %g) leaves nothing of image %q",
			m.x.Value(), m.y.Value(), m.w.Value(), m.h.Value(), m.input.Text())
	}

	cropped := imaging.Crop(img.Pixels, rect)
	if tw, th := m.targetWidth.Value(), m.targetHeight.Value(); tw > 0 && th > 0 {
		cropped = imaging.Fill(cropped, tw, th, imaging.Center, imaging.Lanczos)
	}

	ws.Set.Add(m.output.Text(), cropped)
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
