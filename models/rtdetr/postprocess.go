// Package rtdetr - postprocess RT-DETR model outputs.
package rtdetr

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/visionml/go-detr/images"
	"github.com/visionml/go-detr/models/postprocess"
)

// PostProcess transforms the raw output tensor of a single image into a
// slice of detections in original image coordinates by:
//   - Splitting each query row into its box and per-class score columns.
//   - Taking the best class and score per query.
//   - Filtering by confidence threshold and the optional class whitelist.
//   - Sorting by descending score and capping at MaxDetections.
//   - Converting normalized cxcywh boxes to xyxy and scaling them to the
//     original image size.
//
// The transformer deduplicates queries internally, so no suppression runs
// unless the configuration asks for it.
//
// Arguments:
//   - raw: The flattened model output, [queries * (4 + NumClasses)].
//   - origWidth: Original image width for coordinate scaling.
//   - origHeight: Original image height for coordinate scaling.
//
// Returns:
//   - A slice of detections, highest score first.
//   - An error if the output shape does not match the configuration.
func (m *RTDETR) PostProcess(raw []float32, origWidth, origHeight int) ([]postprocess.Result, error) {
	rowSize := 4 + m.options.NumClasses
	if len(raw) == 0 || len(raw)%rowSize != 0 {
		return nil, errors.Errorf(
			"output length %d is not a multiple of row size %d", len(raw), rowSize)
	}
	queries := len(raw) / rowSize

	boxes, scores, err := splitOutput(raw, queries, rowSize)
	if err != nil {
		return nil, err
	}

	numClasses := m.options.NumClasses
	results := make([]postprocess.Result, 0, queries)

	for q := 0; q < queries; q++ {
		best := float32(math32.Inf(-1))
		class := -1
		for c := 0; c < numClasses; c++ {
			if s := scores[q*numClasses+c]; s > best {
				best = s
				class = c
			}
		}

		score := best
		if m.options.Logits {
			score = sigmoid(best)
		}
		if score < m.options.ConfidenceThreshold {
			continue
		}

		// Boxes stay normalized until after the sort/cap below.
		cx := boxes[q*4+0]
		cy := boxes[q*4+1]
		w := boxes[q*4+2]
		h := boxes[q*4+3]

		results = append(results, postprocess.Result{
			Box: images.Rect{
				X1: cx - w/2,
				Y1: cy - h/2,
				X2: cx + w/2,
				Y2: cy + h/2,
			},
			Score: score,
			Class: class,
		})
	}

	results = postprocess.FilterClasses(results, m.options.Classes)
	postprocess.SortByScore(results)
	results = postprocess.Limit(results, m.options.MaxDetections)

	fw := float32(origWidth)
	fh := float32(origHeight)
	for i := range results {
		b := results[i].Box
		b.X1 *= fw
		b.X2 *= fw
		b.Y1 *= fh
		b.Y2 *= fh
		results[i].Box = b.Clamp(fw, fh)
	}

	if m.options.NMS != nil {
		results = postprocess.ApplyNMS(results, m.options.NMS)
	}
	return results, nil
}

// splitOutput views the flat output as a (queries, rowSize) matrix and
// slices it into contiguous box and score columns.
func splitOutput(raw []float32, queries, rowSize int) (boxes, scores []float32, err error) {
	t := tensor.New(tensor.WithShape(queries, rowSize), tensor.WithBacking(raw))

	boxView, err := t.Slice(nil, tensor.S(0, 4))
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to slice box columns")
	}
	scoreView, err := t.Slice(nil, tensor.S(4, rowSize))
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to slice score columns")
	}

	boxes, err = columnData(boxView)
	if err != nil {
		return nil, nil, errors.Wrap(err, "box columns")
	}
	scores, err = columnData(scoreView)
	if err != nil {
		return nil, nil, errors.Wrap(err, "score columns")
	}
	return boxes, scores, nil
}

// columnData flattens a materialized column view. A 1x1 view materializes
// to a bare scalar rather than a slice.
func columnData(view tensor.View) ([]float32, error) {
	switch data := view.Materialize().Data().(type) {
	case []float32:
		return data, nil
	case float32:
		return []float32{data}, nil
	default:
		return nil, errors.Errorf("unexpected column data type %T", data)
	}
}

func sigmoid(x float32) float32 {
	return 1.0 / (1.0 + math32.Exp(-x))
}
