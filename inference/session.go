// Package inference - ONNX Runtime session management.
package inference

import (
	"fmt"
	"runtime"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var (
	ortInitOnce sync.Once
	ortInitErr  error
)

// SessionConfig configures an ONNX Runtime session.
type SessionConfig struct {
	// ModelPath is the location of the ONNX model file.
	ModelPath string
	// LibraryPath overrides the ONNX Runtime shared library location.
	LibraryPath string
	// InputNames are the graph input names (default ["images"]).
	InputNames []string
	// OutputNames are the graph output names (default ["output0"]).
	OutputNames []string
	// InputShape is the input tensor shape, [1, C, H, W].
	InputShape []int64
	// OutputShape is the output tensor shape, [1, queries, 4+classes].
	OutputShape []int64
	// IntraOpThreads parallelizes execution within graph nodes (0 = default).
	IntraOpThreads int
	// InterOpThreads parallelizes execution across graph nodes (0 = default).
	InterOpThreads int
	// UseCoreML enables the CoreML execution provider on macOS.
	UseCoreML bool
}

// Session owns an ONNX Runtime session and its pre-allocated input and
// output tensors.
type Session struct {
	Session *ort.AdvancedSession
	Input   *ort.Tensor[float32]
	Output  *ort.Tensor[float32]
}

// NewSession creates an ONNX Runtime session with pre-allocated tensors.
//
// Arguments:
//   - cfg: The session configuration.
//
// Returns:
//   - The session, ready to Run.
//   - An error if the runtime or session cannot be initialized.
func NewSession(cfg SessionConfig) (*Session, error) {
	libPath := cfg.LibraryPath
	if libPath == "" {
		libPath = DefaultLibraryPath()
	}

	ortInitOnce.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortInitErr = ort.InitializeEnvironment()
	})
	if ortInitErr != nil {
		return nil, fmt.Errorf("error initializing ORT environment: %w", ortInitErr)
	}

	inputNames := cfg.InputNames
	if len(inputNames) == 0 {
		inputNames = []string{"images"}
	}
	outputNames := cfg.OutputNames
	if len(outputNames) == 0 {
		outputNames = []string{"output0"}
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(cfg.InputShape...))
	if err != nil {
		return nil, fmt.Errorf("error creating input tensor: %w", err)
	}
	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(cfg.OutputShape...))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("error creating output tensor: %w", err)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("error creating ORT session options: %w", err)
	}
	defer options.Destroy()

	if cfg.IntraOpThreads > 0 {
		options.SetIntraOpNumThreads(cfg.IntraOpThreads)
	}
	if cfg.InterOpThreads > 0 {
		options.SetInterOpNumThreads(cfg.InterOpThreads)
	}
	options.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableExtended)

	if cfg.UseCoreML {
		if err := options.AppendExecutionProviderCoreML(0); err != nil {
			inputTensor.Destroy()
			outputTensor.Destroy()
			return nil, fmt.Errorf("error enabling CoreML: %w", err)
		}
	}

	session, err := ort.NewAdvancedSession(
		cfg.ModelPath,
		inputNames,
		outputNames,
		[]ort.ArbitraryTensor{inputTensor},
		[]ort.ArbitraryTensor{outputTensor},
		options,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("error creating ORT session: %w", err)
	}

	return &Session{
		Session: session,
		Input:   inputTensor,
		Output:  outputTensor,
	}, nil
}

// Run executes the session over the current input tensor contents.
func (s *Session) Run() error {
	return s.Session.Run()
}

// Close releases the resources associated with the Session.
func (s *Session) Close() error {
	if s.Input != nil {
		s.Input.Destroy()
		s.Input = nil
	}
	if s.Output != nil {
		s.Output.Destroy()
		s.Output = nil
	}
	if s.Session != nil {
		err := s.Session.Destroy()
		s.Session = nil
		if err != nil {
			return fmt.Errorf("error destroying ORT session: %w", err)
		}
	}
	return nil
}

// DefaultLibraryPath returns the ONNX Runtime shared library path for the
// current platform.
func DefaultLibraryPath() string {
	switch runtime.GOOS {
	case "windows":
		return "third_party/onnxruntime.dll"
	case "darwin":
		if runtime.GOARCH == "arm64" {
			return "third_party/onnxruntime_arm64.dylib"
		}
		return "third_party/onnxruntime_amd64.dylib"
	default:
		if runtime.GOARCH == "arm64" {
			return "third_party/onnxruntime_arm64.so"
		}
		return "third_party/onnxruntime.so"
	}
}
