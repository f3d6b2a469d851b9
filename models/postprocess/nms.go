// Package postprocess - Non-Maximum Suppression for detection results.
package postprocess

import "github.com/visionml/go-detr/images"

// NMSConfig defines parameters for Non-Maximum Suppression.
type NMSConfig struct {
	// IoUThreshold is the overlap above which a box is suppressed.
	IoUThreshold float32 `json:"iou_threshold" yaml:"iou_threshold"`
	// ClassAware suppresses only within the same class when true.
	ClassAware bool `json:"class_aware" yaml:"class_aware"`
}

// ApplyNMS performs greedy Non-Maximum Suppression.
//
// Detection transformers deduplicate queries internally, so the default
// pipeline skips this; it remains for exported model variants whose output
// still carries overlapping candidates.
//
// Arguments:
//   - detections: Slice of detections sorted by descending confidence.
//   - config: Suppression parameters.
//
// Returns:
//   - Filtered slice of detections, nil when the input is empty.
func ApplyNMS(detections []Result, config *NMSConfig) []Result {
	n := len(detections)
	if n == 0 {
		return nil
	}

	filtered := make([]Result, 0, n)
	used := make([]bool, n)

	for i := 0; i < n; i++ {
		if used[i] {
			continue
		}

		anchor := detections[i]
		filtered = append(filtered, anchor)
		used[i] = true

		for j := i + 1; j < n; j++ {
			if used[j] {
				continue
			}
			if config.ClassAware && anchor.Class != detections[j].Class {
				continue
			}
			if images.CalculateIoU(anchor.Box, detections[j].Box) > config.IoUThreshold {
				used[j] = true
			}
		}
	}

	return filtered
}
