package pipeline

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/visionml/go-detr/images"
	"github.com/visionml/go-detr/models/model"
	"github.com/visionml/go-detr/models/postprocess"
)

func TestAssembleOutput(t *testing.T) {
	results := []postprocess.Result{
		{Box: images.Rect{X1: 10, Y1: 20, X2: 110, Y2: 220}, Score: 0.9, Class: 0},
		{Box: images.Rect{X1: 50, Y1: 60, X2: 150, Y2: 160}, Score: 0.7, Class: 2},
	}

	out := assembleOutput(results, 15*time.Millisecond)
	require.NotNil(t, out)

	_, err := uuid.Parse(out.FrameID)
	assert.NoError(t, err, "frame ID should be a valid UUID")
	assert.Equal(t, 15*time.Millisecond, out.Elapsed)

	require.Len(t, out.Detections, 2)
	assert.Equal(t, "person", out.Detections[0].Label)
	assert.Equal(t, "car", out.Detections[1].Label)
	assert.Equal(t, results[0].Box, out.Detections[0].Box)
}

func TestAssembleOutputEmpty(t *testing.T) {
	out := assembleOutput(nil, 0)

	require.NotNil(t, out)
	assert.Empty(t, out.Detections)
	assert.NotEmpty(t, out.FrameID)
}

func TestConfigYAML(t *testing.T) {
	raw := `
model:
  name: rtdetr
  path: /models/rtdetr-l.onnx
  input_size: 640
  num_classes: 80
  confidence_threshold: 0.4
  classes: [0, 2]
  queries: 100
library_path: /opt/onnxruntime/libonnxruntime.so
intra_op_threads: 4
`
	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(raw), &cfg))

	assert.Equal(t, model.ModelNameRTDETR, cfg.Model.Name)
	assert.Equal(t, "/models/rtdetr-l.onnx", cfg.Model.Path)
	assert.Equal(t, float32(0.4), cfg.Model.ConfidenceThreshold)
	assert.Equal(t, []int{0, 2}, cfg.Model.Classes)
	assert.Equal(t, 100, cfg.Model.Queries)
	assert.Equal(t, "/opt/onnxruntime/libonnxruntime.so", cfg.LibraryPath)
	assert.Equal(t, 4, cfg.IntraOpThreads)
}
