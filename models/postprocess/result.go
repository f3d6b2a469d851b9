// Package postprocess - Postprocessing utilities shared across models.
package postprocess

import (
	"sort"

	"github.com/visionml/go-detr/images"
)

// Result represents a single detection result.
type Result struct {
	// The bounding box of the result.
	Box images.Rect
	// The confidence score of the result.
	Score float32
	// The predicted class index of the result.
	Class int
}

// SortByScore orders results by descending confidence in place.
func SortByScore(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}

// Limit caps the slice at n results. A non-positive n leaves the slice
// untouched.
func Limit(results []Result, n int) []Result {
	if n <= 0 || len(results) <= n {
		return results
	}
	return results[:n]
}

// FilterClasses keeps only results whose class is in the whitelist. An empty
// whitelist keeps everything.
func FilterClasses(results []Result, classes []int) []Result {
	if len(classes) == 0 {
		return results
	}

	allowed := make(map[int]bool, len(classes))
	for _, c := range classes {
		allowed[c] = true
	}

	filtered := make([]Result, 0, len(results))
	for _, r := range results {
		if allowed[r.Class] {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
