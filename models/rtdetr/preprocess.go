// Package rtdetr - preprocess input images for RT-DETR inference.
package rtdetr

import (
	"image"

	"github.com/pkg/errors"

	"github.com/visionml/go-detr/models/model"
)

// PreProcess letterboxes the input image into the square, scale-filled frame
// the model expects and converts it to a CHW float32 tensor, planes ordered
// per the configured color mode and pixel values normalized per the
// configured normalization mode ([0, 1] by default).
//
// Arguments:
//   - img: The decoded input image.
//
// Returns:
//   - The tensor data plus the resize geometry.
//   - An error if the image is unusable.
func (m *RTDETR) PreProcess(img image.Image) (*model.PreProcessed, error) {
	if img == nil {
		return nil, errors.New("image is nil")
	}

	bounds := img.Bounds()
	origWidth := bounds.Dx()
	origHeight := bounds.Dy()
	if origWidth <= 0 || origHeight <= 0 {
		return nil, errors.Errorf("invalid image dimensions: %dx%d", origWidth, origHeight)
	}

	resized := m.letterbox.Apply(img)

	size := m.options.InputSize
	channelSize := size * size
	data := make([]float32, 3*channelSize)
	// Plane order follows ColorMode: RGB by default, BGR when swapped.
	plane0 := data[0:channelSize]
	plane1 := data[channelSize : channelSize*2]
	plane2 := data[channelSize*2 : channelSize*3]

	frame := resized.Image
	norm := channelNormalizers(m.options)
	swap := m.options.ColorMode == model.ColorModeBGR
	i := 0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, g, b, _ := frame.At(x, y).RGBA()
			first := float32(r >> 8)
			last := float32(b >> 8)
			if swap {
				first, last = last, first
			}
			plane0[i] = norm[0](first)
			plane1[i] = norm[1](float32(g >> 8))
			plane2[i] = norm[2](last)
			i++
		}
	}

	return &model.PreProcessed{
		Data:           data,
		Shape:          []int64{1, 3, int64(size), int64(size)},
		OriginalWidth:  origWidth,
		OriginalHeight: origHeight,
		ScaleX:         resized.ScaleX,
		ScaleY:         resized.ScaleY,
		PadLeft:        resized.PadLeft,
		PadTop:         resized.PadTop,
	}, nil
}

// channelNormalizers returns one pixel scaling function per color plane for
// the configured normalization mode.
func channelNormalizers(cfg model.Config) [3]func(float32) float32 {
	var norm [3]func(float32) float32
	for c := range norm {
		norm[c] = normalizer(cfg, c)
	}
	return norm
}

func normalizer(cfg model.Config, channel int) func(float32) float32 {
	switch cfg.Normalization {
	case model.NormalizationNone:
		return func(v float32) float32 { return v }
	case model.NormalizationCentered:
		return func(v float32) float32 { return v/127.5 - 1.0 }
	case model.NormalizationStandardize:
		mean := cfg.Mean[channel]
		std := cfg.Std[channel]
		return func(v float32) float32 { return (v/255.0 - mean) / std }
	default:
		return func(v float32) float32 { return v / 255.0 }
	}
}
