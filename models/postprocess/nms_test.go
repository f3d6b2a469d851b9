package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/visionml/go-detr/images"
)

func TestApplyNMSSuppressesOverlaps(t *testing.T) {
	detections := []Result{
		{Box: images.Rect{X1: 0, Y1: 0, X2: 100, Y2: 100}, Score: 0.9, Class: 1},
		// Heavy overlap with the first box, lower score: suppressed.
		{Box: images.Rect{X1: 5, Y1: 5, X2: 105, Y2: 105}, Score: 0.8, Class: 1},
		// Far away: kept.
		{Box: images.Rect{X1: 300, Y1: 300, X2: 400, Y2: 400}, Score: 0.7, Class: 2},
	}

	filtered := ApplyNMS(detections, &NMSConfig{IoUThreshold: 0.5})

	assert.Len(t, filtered, 2)
	assert.Equal(t, float32(0.9), filtered[0].Score)
	assert.Equal(t, float32(0.7), filtered[1].Score)
}

func TestApplyNMSClassAware(t *testing.T) {
	detections := []Result{
		{Box: images.Rect{X1: 0, Y1: 0, X2: 100, Y2: 100}, Score: 0.9, Class: 1},
		// Same box, different class: kept in class-aware mode.
		{Box: images.Rect{X1: 0, Y1: 0, X2: 100, Y2: 100}, Score: 0.8, Class: 2},
	}

	assert.Len(t, ApplyNMS(detections, &NMSConfig{IoUThreshold: 0.5, ClassAware: true}), 2)
	assert.Len(t, ApplyNMS(detections, &NMSConfig{IoUThreshold: 0.5}), 1)
}

func TestApplyNMSEmpty(t *testing.T) {
	assert.Nil(t, ApplyNMS(nil, &NMSConfig{IoUThreshold: 0.5}))
}

func TestSortByScore(t *testing.T) {
	results := []Result{{Score: 0.2}, {Score: 0.9}, {Score: 0.5}}
	SortByScore(results)

	assert.Equal(t, []Result{{Score: 0.9}, {Score: 0.5}, {Score: 0.2}}, results)
}

func TestLimit(t *testing.T) {
	results := []Result{{Score: 0.9}, {Score: 0.5}, {Score: 0.2}}

	assert.Len(t, Limit(results, 2), 2)
	assert.Len(t, Limit(results, 10), 3)
	assert.Len(t, Limit(results, 0), 3)
}

func TestFilterClasses(t *testing.T) {
	results := []Result{{Class: 0}, {Class: 2}, {Class: 5}, {Class: 2}}

	filtered := FilterClasses(results, []int{2})
	assert.Len(t, filtered, 2)
	for _, r := range filtered {
		assert.Equal(t, 2, r.Class)
	}

	// Empty whitelist keeps everything.
	assert.Len(t, FilterClasses(results, nil), 4)
}
