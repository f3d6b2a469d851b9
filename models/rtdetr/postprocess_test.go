package rtdetr

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visionml/go-detr/models/model"
	"github.com/visionml/go-detr/models/postprocess"
)

// testConfig keeps rows short: 4 box columns + 4 class columns.
func testConfig() model.Config {
	return model.Config{
		Path:                "rtdetr.onnx",
		NumClasses:          4,
		ConfidenceThreshold: 0.5,
	}
}

// query builds one output row from a normalized cxcywh box and class scores.
func query(cx, cy, w, h float32, scores ...float32) []float32 {
	return append([]float32{cx, cy, w, h}, scores...)
}

func flatten(rows ...[]float32) []float32 {
	var out []float32
	for _, r := range rows {
		out = append(out, r...)
	}
	return out
}

func TestPostProcessDecodesAndScales(t *testing.T) {
	m, err := NewModel(testConfig())
	require.NoError(t, err)

	raw := flatten(
		query(0.5, 0.5, 0.2, 0.4, 0.1, 0.9, 0.1, 0.1),
	)

	results, err := m.PostProcess(raw, 640, 480)
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, 1, r.Class)
	assert.InDelta(t, 0.9, r.Score, 1e-6)

	// cxcywh (0.5, 0.5, 0.2, 0.4) on a 640x480 image.
	assert.InDelta(t, 256, r.Box.X1, 0.5)
	assert.InDelta(t, 144, r.Box.Y1, 0.5)
	assert.InDelta(t, 384, r.Box.X2, 0.5)
	assert.InDelta(t, 336, r.Box.Y2, 0.5)
}

func TestPostProcessConfidenceFilter(t *testing.T) {
	m, err := NewModel(testConfig())
	require.NoError(t, err)

	raw := flatten(
		query(0.5, 0.5, 0.2, 0.2, 0.4, 0.3, 0.2, 0.1),
		query(0.2, 0.2, 0.1, 0.1, 0.1, 0.1, 0.8, 0.1),
	)

	results, err := m.PostProcess(raw, 100, 100)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].Class)
}

func TestPostProcessClassWhitelist(t *testing.T) {
	cfg := testConfig()
	cfg.Classes = []int{3}
	m, err := NewModel(cfg)
	require.NoError(t, err)

	raw := flatten(
		query(0.5, 0.5, 0.2, 0.2, 0.0, 0.9, 0.0, 0.0),
		query(0.3, 0.3, 0.1, 0.1, 0.0, 0.0, 0.0, 0.8),
	)

	results, err := m.PostProcess(raw, 100, 100)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 3, results[0].Class)
}

func TestPostProcessSortsAndCaps(t *testing.T) {
	cfg := testConfig()
	cfg.MaxDetections = 2
	m, err := NewModel(cfg)
	require.NoError(t, err)

	raw := flatten(
		query(0.1, 0.1, 0.05, 0.05, 0.6, 0.0, 0.0, 0.0),
		query(0.5, 0.5, 0.05, 0.05, 0.0, 0.9, 0.0, 0.0),
		query(0.8, 0.8, 0.05, 0.05, 0.0, 0.0, 0.7, 0.0),
	)

	results, err := m.PostProcess(raw, 100, 100)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.InDelta(t, 0.9, results[0].Score, 1e-6)
	assert.InDelta(t, 0.7, results[1].Score, 1e-6)
}

func TestPostProcessClampsToImageBounds(t *testing.T) {
	m, err := NewModel(testConfig())
	require.NoError(t, err)

	// Box hanging over the right and bottom edges.
	raw := query(0.95, 0.95, 0.3, 0.3, 0.9, 0.0, 0.0, 0.0)

	results, err := m.PostProcess(raw, 200, 100)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.LessOrEqual(t, results[0].Box.X2, float32(200))
	assert.LessOrEqual(t, results[0].Box.Y2, float32(100))
	assert.GreaterOrEqual(t, results[0].Box.X1, float32(0))
	assert.GreaterOrEqual(t, results[0].Box.Y1, float32(0))
}

func TestPostProcessLogits(t *testing.T) {
	cfg := testConfig()
	cfg.Logits = true
	m, err := NewModel(cfg)
	require.NoError(t, err)

	logit := float32(2.0)
	raw := query(0.5, 0.5, 0.2, 0.2, logit, -5, -5, -5)

	results, err := m.PostProcess(raw, 100, 100)
	require.NoError(t, err)
	require.Len(t, results, 1)

	want := 1.0 / (1.0 + math32.Exp(-logit))
	assert.InDelta(t, want, results[0].Score, 1e-6)
}

func TestPostProcessOptionalNMS(t *testing.T) {
	cfg := testConfig()
	cfg.NMS = &postprocess.NMSConfig{IoUThreshold: 0.5}
	m, err := NewModel(cfg)
	require.NoError(t, err)

	// Two near-identical boxes, one weaker duplicate.
	raw := flatten(
		query(0.5, 0.5, 0.2, 0.2, 0.0, 0.9, 0.0, 0.0),
		query(0.5, 0.5, 0.21, 0.21, 0.0, 0.8, 0.0, 0.0),
	)

	results, err := m.PostProcess(raw, 100, 100)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 0.9, results[0].Score, 1e-6)
}

func TestPostProcessSingleQuerySingleClass(t *testing.T) {
	// A 1x1 score view materializes to a bare scalar inside the tensor
	// library; the degenerate shape must still decode.
	cfg := testConfig()
	cfg.NumClasses = 1
	m, err := NewModel(cfg)
	require.NoError(t, err)

	raw := query(0.5, 0.5, 0.2, 0.2, 0.9)

	results, err := m.PostProcess(raw, 100, 100)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0, results[0].Class)
	assert.InDelta(t, 0.9, results[0].Score, 1e-6)
	assert.InDelta(t, 40, results[0].Box.X1, 0.5)
	assert.InDelta(t, 60, results[0].Box.X2, 0.5)
}

func TestPostProcessMalformedOutput(t *testing.T) {
	m, err := NewModel(testConfig())
	require.NoError(t, err)

	for _, raw := range [][]float32{nil, {}, make([]float32, 7)} {
		results, err := m.PostProcess(raw, 100, 100)
		assert.Error(t, err)
		assert.Nil(t, results)
	}
}

func TestPostProcessNoDetections(t *testing.T) {
	m, err := NewModel(testConfig())
	require.NoError(t, err)

	raw := query(0.5, 0.5, 0.2, 0.2, 0.1, 0.1, 0.1, 0.1)

	results, err := m.PostProcess(raw, 100, 100)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func BenchmarkPostProcess(b *testing.B) {
	cfg := model.Config{NumClasses: 80, ConfidenceThreshold: 0.25}
	m, err := NewModel(cfg)
	if err != nil {
		b.Fatal(err)
	}

	// 300 queries, the standard RT-DETR export.
	raw := make([]float32, 300*(4+80))
	for i := range raw {
		raw[i] = float32(i%100) / 100.0
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := m.PostProcess(raw, 1920, 1080); err != nil {
			b.Fatal(err)
		}
	}
}
