// Package models - registry for models.
package models

import (
	"github.com/pkg/errors"

	"github.com/visionml/go-detr/models/model"
	"github.com/visionml/go-detr/models/rtdetr"
)

// NewModel creates a detection model instance based on the configured name.
//
// The factory is the single entry point for model creation: adding a model
// family means adding a package under models/ and a case here.
//
// Arguments:
//   - cfg: Configuration naming the model and its location.
//
// Returns:
//   - model.Model: A configured model implementing the Model interface.
//   - error: An error if the model name is unsupported or the
//     configuration is invalid.
func NewModel(cfg model.Config) (model.Model, error) {
	switch cfg.Name {
	case model.ModelNameRTDETR:
		return rtdetr.NewModel(cfg)
	default:
		return nil, errors.Errorf("unsupported model name: %q", cfg.Name)
	}
}
