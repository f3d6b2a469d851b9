// Package model - Model options.
package model

// Normalization selects how pixel values are scaled during preprocessing.
type Normalization string

const (
	// NormalizationNone passes raw 0-255 values through.
	NormalizationNone Normalization = "none"
	// NormalizationScale maps pixels to [0, 1]. This is what RT-DETR
	// checkpoints are trained with.
	NormalizationScale Normalization = "scale"
	// NormalizationCentered maps pixels to [-1, 1].
	NormalizationCentered Normalization = "centered"
	// NormalizationStandardize scales to [0, 1] then subtracts the
	// per-channel mean and divides by the per-channel std.
	NormalizationStandardize Normalization = "standardize"
)

// ColorMode orders the color channels of the input tensor.
type ColorMode string

const (
	// ColorModeRGB is the channel order RT-DETR exports expect.
	ColorModeRGB ColorMode = "rgb"
	// ColorModeBGR swaps the red and blue planes, for checkpoints trained
	// on OpenCV-decoded frames.
	ColorModeBGR ColorMode = "bgr"
)

// DefaultMean and DefaultStd are the ImageNet per-channel statistics used
// when standardize normalization is configured without explicit values.
var (
	DefaultMean = []float32{0.485, 0.456, 0.406}
	DefaultStd  = []float32{0.229, 0.224, 0.225}
)

// Precision represents the numeric precision of a model.
type Precision string

const (
	// PrecisionFP32 represents 32-bit floating point precision.
	PrecisionFP32 Precision = "FP32"
	// PrecisionFP16 represents 16-bit floating point precision.
	PrecisionFP16 Precision = "FP16"
	// PrecisionINT8 represents 8-bit integer precision.
	PrecisionINT8 Precision = "INT8"
)

const (
	// DefaultInputSize is the square input edge length used when Config
	// leaves InputSize unset.
	DefaultInputSize = 640
	// DefaultNumClasses matches COCO-trained checkpoints.
	DefaultNumClasses = 80
	// DefaultQueryCount is the number of object queries in standard
	// detection-transformer exports.
	DefaultQueryCount = 300
	// DefaultMaxDetections matches the detector's query count.
	DefaultMaxDetections = 300
	// DefaultConfidenceThreshold filters the bulk of background queries.
	DefaultConfidenceThreshold = 0.25
)

// WithDefaults fills in zero-valued fields with the package defaults.
func (c Config) WithDefaults() Config {
	if c.InputSize == 0 {
		c.InputSize = DefaultInputSize
	}
	if c.NumClasses == 0 {
		c.NumClasses = DefaultNumClasses
	}
	if c.MaxDetections == 0 {
		c.MaxDetections = DefaultMaxDetections
	}
	if c.ConfidenceThreshold == 0 {
		c.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	if c.Normalization == "" {
		c.Normalization = NormalizationScale
	}
	if c.Normalization == NormalizationStandardize {
		if len(c.Mean) == 0 {
			c.Mean = DefaultMean
		}
		if len(c.Std) == 0 {
			c.Std = DefaultStd
		}
	}
	if c.ColorMode == "" {
		c.ColorMode = ColorModeRGB
	}
	if c.Queries == 0 {
		c.Queries = DefaultQueryCount
	}
	return c
}
