// Command detect runs RT-DETR inference over a single image or a directory
// of frames and logs the detections.
package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/8ff/prettyTimer"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/visionml/go-detr/images"
	"github.com/visionml/go-detr/models/model"
	"github.com/visionml/go-detr/pipeline"
	"github.com/visionml/go-detr/util"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath string
		modelPath  string
		imagePath  string
		dirPath    string
		confidence float64
		libPath    string
		debug      bool
	)
	flag.StringVar(&configPath, "config", "", "Path to YAML pipeline config")
	flag.StringVar(&modelPath, "model", "", "Path to RT-DETR ONNX model file")
	flag.StringVar(&imagePath, "image", "", "Path to a single image file")
	flag.StringVar(&dirPath, "dir", "", "Path to a directory of frames")
	flag.Float64Var(&confidence, "confidence", 0, "Confidence threshold override")
	flag.StringVar(&libPath, "lib", "", "Path to the ONNX Runtime shared library")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.Parse()

	log, err := newLogger(debug)
	if err != nil {
		return 1
	}
	defer log.Sync()

	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Error("failed to load config", zap.String("path", configPath), zap.Error(err))
		return 1
	}
	cfg.Model.Name = model.ModelNameRTDETR
	if modelPath != "" {
		cfg.Model.Path = modelPath
	}
	if confidence > 0 {
		cfg.Model.ConfidenceThreshold = float32(confidence)
	}
	if libPath != "" {
		cfg.LibraryPath = libPath
	}
	cfg.Logger = log

	if cfg.Model.Path == "" {
		log.Error("no model configured, pass -model or a config file")
		return 1
	}
	if (imagePath == "") == (dirPath == "") {
		log.Error("pass exactly one of -image or -dir")
		return 1
	}

	detector, err := pipeline.New(cfg)
	if err != nil {
		log.Error("failed to build pipeline", zap.Error(err))
		return 1
	}
	defer detector.Close()

	files, err := loadInputs(imagePath, dirPath)
	if err != nil {
		log.Error("failed to load inputs", zap.Error(err))
		return 1
	}

	timing := prettyTimer.NewTimingStats()
	ctx := context.Background()

	for _, file := range files {
		img := &images.Image{
			Format: formatFromExt(file.Path),
			Data:   file.Data,
		}

		timing.Start()
		out, err := detector.DetectBytes(ctx, img)
		if err != nil {
			log.Error("detection failed", zap.String("path", file.Path), zap.Error(err))
			return 1
		}
		timing.Finish()

		log.Info("frame",
			zap.String("path", file.Path),
			zap.String("frame_id", out.FrameID),
			zap.Int("detections", len(out.Detections)),
			zap.Duration("elapsed", out.Elapsed),
		)
		for _, det := range out.Detections {
			log.Info("detection",
				zap.String("label", det.Label),
				zap.Float32("score", det.Score),
				zap.Float32("x1", det.Box.X1),
				zap.Float32("y1", det.Box.Y1),
				zap.Float32("x2", det.Box.X2),
				zap.Float32("y2", det.Box.Y2),
			)
		}
	}

	timing.PrintStats()
	return 0
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// loadConfig reads the YAML pipeline config, or returns defaults when no
// path is given.
func loadConfig(path string) (pipeline.Config, error) {
	var cfg pipeline.Config
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadInputs(imagePath, dirPath string) ([]util.ImageFile, error) {
	if dirPath != "" {
		return util.LoadDirectoryImageFiles(dirPath)
	}
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, err
	}
	return []util.ImageFile{{Path: imagePath, Data: data, Frame: -1}}, nil
}

func formatFromExt(path string) images.ImageFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return images.FormatPNG
	case ".webp":
		return images.FormatWebP
	default:
		return images.FormatJPEG
	}
}
