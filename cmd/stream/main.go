// Command stream runs RT-DETR inference over a webcam or video file and
// logs the detections per frame.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/visionml/go-detr/images"
	"github.com/visionml/go-detr/models/model"
	"github.com/visionml/go-detr/pipeline"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		source     string
		modelPath  string
		libPath    string
		confidence float64
	)
	flag.StringVar(&source, "source", "0", "Capture device ID or video file path")
	flag.StringVar(&modelPath, "model", "rtdetr-l.onnx", "Path to RT-DETR ONNX model file")
	flag.StringVar(&libPath, "lib", "", "Path to the ONNX Runtime shared library")
	flag.Float64Var(&confidence, "confidence", 0.5, "Confidence threshold")
	flag.Parse()

	log, err := zap.NewProduction()
	if err != nil {
		return 1
	}
	defer log.Sync()

	detector, err := pipeline.New(pipeline.Config{
		Model: model.Config{
			Name:                model.ModelNameRTDETR,
			Path:                modelPath,
			ConfidenceThreshold: float32(confidence),
		},
		LibraryPath: libPath,
		Logger:      log,
	})
	if err != nil {
		log.Error("failed to build pipeline", zap.Error(err))
		return 1
	}
	defer detector.Close()

	capture, err := gocv.OpenVideoCapture(source)
	if err != nil {
		log.Error("failed to open capture source", zap.String("source", source), zap.Error(err))
		return 1
	}
	defer capture.Close()

	frame := gocv.NewMat()
	defer frame.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("reading frames", zap.String("source", source))

	// Stalled sources repeat their last frame; skip those instead of
	// re-running inference on identical pixels.
	lastChecksum := ""

	for ctx.Err() == nil {
		if ok := capture.Read(&frame); !ok {
			log.Info("capture source drained", zap.String("source", source))
			return 0
		}
		if frame.Empty() {
			continue
		}

		checksum := images.MatChecksum(frame)
		if checksum == lastChecksum {
			continue
		}
		lastChecksum = checksum

		img, err := frame.ToImage()
		if err != nil {
			log.Error("failed to convert frame", zap.Error(err))
			continue
		}

		out, err := detector.Detect(ctx, img)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Error("detection failed", zap.Error(err))
			continue
		}

		for _, det := range out.Detections {
			log.Info("detection",
				zap.String("frame_id", out.FrameID),
				zap.String("label", det.Label),
				zap.Float32("score", det.Score),
			)
		}
	}

	log.Info("shutting down")
	return 0
}
