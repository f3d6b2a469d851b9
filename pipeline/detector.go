// Package pipeline - end-to-end detection: decode, preprocess, run the ONNX
// session, postprocess into labelled detections.
package pipeline

import (
	"context"
	stdimage "image"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/visionml/go-detr/images"
	"github.com/visionml/go-detr/inference"
	"github.com/visionml/go-detr/models"
	"github.com/visionml/go-detr/models/model"
	"github.com/visionml/go-detr/models/postprocess"
)

// Config configures a Detector.
type Config struct {
	// Model configures the detection model and its thresholds.
	Model model.Config `json:"model" yaml:"model"`
	// LibraryPath overrides the ONNX Runtime shared library location.
	LibraryPath string `json:"library_path" yaml:"library_path"`
	// IntraOpThreads parallelizes execution within graph nodes (0 = default).
	IntraOpThreads int `json:"intra_op_threads" yaml:"intra_op_threads"`
	// InterOpThreads parallelizes execution across graph nodes (0 = default).
	InterOpThreads int `json:"inter_op_threads" yaml:"inter_op_threads"`
	// UseCoreML enables the CoreML execution provider on macOS.
	UseCoreML bool `json:"use_coreml" yaml:"use_coreml"`
	// Logger receives per-frame debug logs. Defaults to a no-op logger.
	Logger *zap.Logger `json:"-" yaml:"-"`
}

// Detection is a single labelled detection in original image coordinates.
type Detection struct {
	// Label is the class name.
	Label string `json:"label"`
	// Class is the class index.
	Class int `json:"class"`
	// Score is the confidence score.
	Score float32 `json:"score"`
	// Box is the bounding box in original image pixels.
	Box images.Rect `json:"box"`
}

// Output is the result of running the pipeline over one frame.
type Output struct {
	// FrameID uniquely identifies this inference run.
	FrameID string `json:"frame_id"`
	// Detections are the labelled detections, highest score first.
	Detections []Detection `json:"detections"`
	// Elapsed is the wall time of the model run, excluding decode.
	Elapsed time.Duration `json:"elapsed"`
}

// Detector runs the full detection pipeline over single frames. It is safe
// for concurrent use; frames are serialized over the one ONNX session.
type Detector struct {
	model   model.Model
	session *inference.Session
	log     *zap.Logger

	// mu serializes access to the session's tensors.
	mu sync.Mutex
}

// New builds a Detector from the given configuration.
//
// Arguments:
//   - cfg: The pipeline configuration.
//
// Returns:
//   - The detector, ready to Detect. Callers own Close.
//   - An error if the model or session cannot be constructed.
func New(cfg Config) (*Detector, error) {
	m, err := models.NewModel(cfg.Model)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create model")
	}
	opts := m.Options()

	session, err := inference.NewSession(inference.SessionConfig{
		ModelPath:      opts.Path,
		LibraryPath:    cfg.LibraryPath,
		InputNames:     opts.Inputs,
		OutputNames:    opts.Outputs,
		InputShape:     []int64{1, 3, int64(opts.InputSize), int64(opts.InputSize)},
		OutputShape:    []int64{1, int64(opts.Queries), int64(4 + opts.NumClasses)},
		IntraOpThreads: cfg.IntraOpThreads,
		InterOpThreads: cfg.InterOpThreads,
		UseCoreML:      cfg.UseCoreML,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create session")
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Detector{
		model:   m,
		session: session,
		log:     log,
	}, nil
}

// Detect runs the pipeline over one decoded frame.
//
// Arguments:
//   - ctx: Cancellation context, checked before the model run.
//   - img: The decoded input image.
//
// Returns:
//   - The labelled detections for this frame.
//   - An error if any stage fails or the context is cancelled.
func (d *Detector) Detect(ctx context.Context, img stdimage.Image) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pre, err := d.model.PreProcess(img)
	if err != nil {
		return nil, errors.Wrap(err, "preprocessing failed")
	}

	start := time.Now()

	d.mu.Lock()
	if err := inference.PrepareInput(pre, d.session.Input); err != nil {
		d.mu.Unlock()
		return nil, errors.Wrap(err, "failed to prepare input")
	}
	if err := d.session.Run(); err != nil {
		d.mu.Unlock()
		return nil, errors.Wrap(err, "inference failed")
	}
	// Copy out before releasing the session: the tensor backing array is
	// overwritten by the next frame.
	raw := make([]float32, len(d.session.Output.GetData()))
	copy(raw, d.session.Output.GetData())
	d.mu.Unlock()

	results, err := d.model.PostProcess(raw, pre.OriginalWidth, pre.OriginalHeight)
	if err != nil {
		return nil, errors.Wrap(err, "postprocessing failed")
	}

	out := assembleOutput(results, time.Since(start))

	d.log.Debug("frame processed",
		zap.String("frame_id", out.FrameID),
		zap.Int("detections", len(out.Detections)),
		zap.Duration("elapsed", out.Elapsed),
	)
	return out, nil
}

// assembleOutput labels postprocessed results and stamps the run with a
// fresh frame ID.
func assembleOutput(results []postprocess.Result, elapsed time.Duration) *Output {
	out := &Output{
		FrameID:    uuid.NewString(),
		Detections: make([]Detection, 0, len(results)),
		Elapsed:    elapsed,
	}
	for _, r := range results {
		out.Detections = append(out.Detections, Detection{
			Label: inference.ClassName(r.Class),
			Class: r.Class,
			Score: r.Score,
			Box:   r.Box,
		})
	}
	return out
}

// DetectBytes decodes an encoded image and runs Detect on it.
func (d *Detector) DetectBytes(ctx context.Context, img *images.Image) (*Output, error) {
	decoded, err := images.Decode(img)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode image")
	}
	return d.Detect(ctx, decoded)
}

// Options returns the options of the underlying model.
func (d *Detector) Options() model.Config {
	return d.model.Options()
}

// Close releases the ONNX session resources.
func (d *Detector) Close() error {
	return d.session.Close()
}
