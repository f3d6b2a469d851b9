// Package rtdetr - RT-DETR (Real-Time Detection Transformer) model glue.
//
// RT-DETR predicts a fixed set of object queries, each carrying a normalized
// cxcywh box and per-class scores. The package implements the two pieces of
// inference glue around the ONNX graph: letterboxing input images into the
// square, scale-filled tensor the model expects, and decoding the raw output
// tensor into scored, classed boxes in original image coordinates.
package rtdetr

import (
	"github.com/pkg/errors"

	"github.com/visionml/go-detr/images"
	"github.com/visionml/go-detr/models/model"
)

// RTDETR is the instance of the RT-DETR model.
type RTDETR struct {
	options   model.Config
	letterbox images.Letterbox
}

// NewModel creates a new RT-DETR model from the given configuration.
//
// Arguments:
//   - cfg: The model configuration. Zero-valued fields are defaulted.
//
// Returns:
//   - The model.
//   - An error if the configuration is invalid.
func NewModel(cfg model.Config) (*RTDETR, error) {
	cfg.Name = model.ModelNameRTDETR
	cfg = cfg.WithDefaults()

	if cfg.InputSize < 0 {
		return nil, errors.Errorf("invalid input size %d", cfg.InputSize)
	}
	if cfg.NumClasses <= 0 {
		return nil, errors.Errorf("invalid class count %d", cfg.NumClasses)
	}
	if cfg.Normalization == model.NormalizationStandardize &&
		(len(cfg.Mean) != 3 || len(cfg.Std) != 3) {
		return nil, errors.Errorf(
			"standardize normalization needs 3 mean and 3 std values, got %d and %d",
			len(cfg.Mean), len(cfg.Std))
	}

	return &RTDETR{
		options: cfg,
		// The input must be square and scale-filled: the model was trained
		// on stretched images, not padded ones.
		letterbox: images.Letterbox{
			TargetWidth:  cfg.InputSize,
			TargetHeight: cfg.InputSize,
			ScaleFill:    true,
			Interp:       images.InterpCatmullRom,
		},
	}, nil
}

// Options returns the options for the RT-DETR model.
func (m *RTDETR) Options() model.Config {
	return m.options
}
