// Package model - Shared definitions for detection models.
package model

import (
	"image"

	"github.com/visionml/go-detr/models/postprocess"
)

// Family is the family of models.
type Family string

const (
	// ModelFamilyDETR is the detection-transformer model family.
	ModelFamilyDETR Family = "detr"
	// ModelFamilyYOLO is the YOLO model family.
	ModelFamilyYOLO Family = "yolo"
)

// Name is the unique identifier of a model.
type Name string

const (
	// ModelNameRTDETR is the name of the RT-DETR model.
	ModelNameRTDETR Name = "rtdetr"
)

// Config carries everything needed to construct a model and its
// pre/post-processing glue.
type Config struct {
	// Name identifies the model implementation.
	Name Name `json:"name" yaml:"name"`
	// Path is the location of the ONNX model file.
	Path string `json:"path" yaml:"path"`
	// InputSize is the square model input edge length (default 640).
	InputSize int `json:"input_size" yaml:"input_size"`
	// NumClasses is the number of output classes (default 80).
	NumClasses int `json:"num_classes" yaml:"num_classes"`
	// ConfidenceThreshold filters detections below this score.
	ConfidenceThreshold float32 `json:"confidence_threshold" yaml:"confidence_threshold"`
	// MaxDetections caps the number of detections kept per image.
	MaxDetections int `json:"max_detections" yaml:"max_detections"`
	// Classes is an optional class index whitelist (empty = all classes).
	Classes []int `json:"classes" yaml:"classes"`
	// Logits applies a sigmoid to raw class scores, for checkpoints
	// exported without the activation baked into the graph.
	Logits bool `json:"logits" yaml:"logits"`
	// Normalization scales pixel values during preprocessing
	// (default "scale", i.e. [0, 1]).
	Normalization Normalization `json:"normalization" yaml:"normalization"`
	// Mean holds per-channel means for standardize normalization
	// (default ImageNet statistics).
	Mean []float32 `json:"mean" yaml:"mean"`
	// Std holds per-channel standard deviations for standardize
	// normalization (default ImageNet statistics).
	Std []float32 `json:"std" yaml:"std"`
	// ColorMode orders the tensor color planes (default "rgb").
	ColorMode ColorMode `json:"color_mode" yaml:"color_mode"`
	// Queries is the number of object queries in the model output
	// (default 300).
	Queries int `json:"queries" yaml:"queries"`
	// NMS enables suppression for exported model variants that need it.
	NMS *postprocess.NMSConfig `json:"nms" yaml:"nms"`
	// Inputs are the ONNX graph input names.
	Inputs []string `json:"inputs" yaml:"inputs"`
	// Outputs are the ONNX graph output names.
	Outputs []string `json:"outputs" yaml:"outputs"`
}

// PreProcessed is the output of a model's preprocessing step: the input
// tensor data plus the geometry needed to map detections back to the
// original image.
type PreProcessed struct {
	// Data is the NCHW float32 tensor data.
	Data []float32
	// Shape is the tensor shape, [1, C, H, W].
	Shape []int64
	// OriginalWidth is the source image width before resizing.
	OriginalWidth int
	// OriginalHeight is the source image height before resizing.
	OriginalHeight int
	// ScaleX is the horizontal scale applied to the source.
	ScaleX float64
	// ScaleY is the vertical scale applied to the source.
	ScaleY float64
	// PadLeft is the left letterbox border in pixels.
	PadLeft int
	// PadTop is the top letterbox border in pixels.
	PadTop int
}

// Model is a detection model with its inference glue: preprocessing of the
// input image into the tensor the model expects, and postprocessing of the
// raw output tensor into scored, classed boxes in original image
// coordinates.
type Model interface {
	Options() Config
	PreProcess(img image.Image) (*PreProcessed, error)
	PostProcess(raw []float32, origWidth, origHeight int) ([]postprocess.Result, error)
}
