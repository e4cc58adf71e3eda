package modules

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/image-pipeline/pkg/imageset"
	"github.com/menta2k/image-pipeline/pkg/pipeline"
	"github.com/menta2k/image-pipeline/pkg/vision"
)

type fakeVisionClient struct {
	gotModel  string
	gotPrompt string
	gotB64    string

	annotation *vision.Annotation
	err        error
}

func (f *fakeVisionClient) Query(_ context.Context, model, prompt, imageB64 string) (string, error) {
	f.gotModel, f.gotPrompt, f.gotB64 = model, prompt, imageB64
	return "", f.err
}

func (f *fakeVisionClient) Annotate(_ context.Context, model, prompt, imageB64 string) (*vision.Annotation, error) {
	f.gotModel, f.gotPrompt, f.gotB64 = model, prompt, imageB64
	return f.annotation, f.err
}

func TestDescribeImageRecordsMeasurements(t *testing.T) {
	ws := newTestWorkspace(afero.NewMemMapFs())
	ws.Set.Add("OrigBlue", createTestImage(64, 64))

	fake := &fakeVisionClient{annotation: &vision.Annotation{
		Label:       "stained nuclei",
		Confidence:  0.87,
		Description: "A field of stained cell nuclei.",
		Tags:        []string{"cells", "fluorescence"},
	}}

	m := NewDescribeImage()
	m.SetClient(fake)
	require.NoError(t, m.Run(ws))

	assert.Equal(t, "llava", fake.gotModel)
	assert.Equal(t, vision.DefaultPrompt, fake.gotPrompt)
	assert.NotEmpty(t, fake.gotB64)

	label, ok := ws.Measurements.GetString(DescribePrefix + "OrigBlue_Label")
	require.True(t, ok)
	assert.Equal(t, "stained nuclei", label)

	confidence, ok := ws.Measurements.Get(DescribePrefix + "OrigBlue_Confidence")
	require.True(t, ok)
	assert.InDelta(t, 0.87, confidence.(float64), 1e-9)

	tags, ok := ws.Measurements.GetString(DescribePrefix + "OrigBlue_Tags")
	require.True(t, ok)
	assert.Equal(t, "cells, fluorescence", tags)

	tables := ws.Frame.Tables()
	require.Len(t, tables, 1)
	assert.Equal(t, [2]string{"Label", "stained nuclei"}, tables[0].Rows[1])
}

func TestDescribeImageCustomPromptAndModel(t *testing.T) {
	ws := newTestWorkspace(afero.NewMemMapFs())
	ws.Set.Add("OrigBlue", createTestImage(16, 16))

	fake := &fakeVisionClient{annotation: &vision.Annotation{Label: "x"}}
	m := NewDescribeImage()
	m.SetClient(fake)
	require.NoError(t, pipeline.ApplySettings(m, []string{
		"OrigBlue", BackendOllama, "http://localhost:11434", "minicpm-v", "What is this?", "768", "jpg", "85",
	}))
	require.NoError(t, m.Run(ws))

	assert.Equal(t, "minicpm-v", fake.gotModel)
	assert.Equal(t, "What is this?", fake.gotPrompt)
}

func TestDescribeImageDownscalesForTransfer(t *testing.T) {
	ws := newTestWorkspace(afero.NewMemMapFs())
	ws.Set.Add("OrigBlue", createTestImage(2000, 1000))

	fake := &fakeVisionClient{annotation: &vision.Annotation{Label: "x"}}
	m := NewDescribeImage()
	m.SetClient(fake)
	require.NoError(t, m.Run(ws))

	raw, err := base64.StdEncoding.DecodeString(fake.gotB64)
	require.NoError(t, err)
	sent, _, err := image.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 768, sent.Bounds().Dx())
	assert.Equal(t, 384, sent.Bounds().Dy())
}

func TestDescribeImageClientError(t *testing.T) {
	ws := newTestWorkspace(afero.NewMemMapFs())
	ws.Set.Add("OrigBlue", createTestImage(8, 8))

	boom := errors.New("server unreachable")
	m := NewDescribeImage()
	m.SetClient(&fakeVisionClient{err: boom})

	err := m.Run(ws)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `failed to describe image "OrigBlue"`)
}

func TestDescribeImageMissingImage(t *testing.T) {
	m := NewDescribeImage()
	m.SetClient(&fakeVisionClient{annotation: &vision.Annotation{}})

	err := m.Run(newTestWorkspace(afero.NewMemMapFs()))
	require.Error(t, err)
	assert.ErrorIs(t, err, imageset.ErrNoSuchImage)
}
