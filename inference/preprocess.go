package inference

import (
	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/visionml/go-detr/models/model"
)

// PrepareInput copies preprocessed tensor data into the session's input
// tensor, typically right before Run.
//
// Arguments:
//   - pre: The preprocessed image tensor.
//   - dst: The destination input tensor.
//
// Returns:
//   - error: An error if the tensor sizes do not match.
func PrepareInput(pre *model.PreProcessed, dst *ort.Tensor[float32]) error {
	if pre == nil {
		return errors.New("preprocessed input is nil")
	}

	data := dst.GetData()
	if len(data) != len(pre.Data) {
		return errors.Errorf(
			"destination tensor holds %d floats, preprocessed input has %d "+
				"(make sure it's the right shape)", len(data), len(pre.Data))
	}

	copy(data, pre.Data)
	return nil
}
