package images

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/nfnt/resize"
	xdraw "golang.org/x/image/draw"
)

// Interpolation selects the scaling kernel used for letterbox resizing.
type Interpolation int

const (
	// InterpBilinear is a fast approximate bilinear kernel.
	InterpBilinear Interpolation = iota
	// InterpCatmullRom is a sharper bicubic kernel.
	InterpCatmullRom
	// InterpLanczos is a Lanczos3 kernel, the slowest and highest quality.
	InterpLanczos
)

// Letterbox resizes images into a fixed target frame before inference.
//
// Two modes are supported. ScaleFill stretches the source to cover the whole
// target regardless of aspect ratio, which is what detection transformers
// with a square, scale-filled input expect. The default mode preserves the
// aspect ratio and pads the remainder with PadColor, centering the image.
type Letterbox struct {
	// TargetWidth is the width of the output frame.
	TargetWidth int `json:"target_width" yaml:"target_width"`
	// TargetHeight is the height of the output frame.
	TargetHeight int `json:"target_height" yaml:"target_height"`
	// ScaleFill stretches instead of padding when true.
	ScaleFill bool `json:"scale_fill" yaml:"scale_fill"`
	// PadColor fills the letterbox borders (default black).
	PadColor color.RGBA `json:"-" yaml:"-"`
	// Interp selects the scaling kernel.
	Interp Interpolation `json:"interp" yaml:"interp"`
}

// LetterboxResult carries the resized frame plus the geometry needed to map
// detected coordinates back to the source image.
type LetterboxResult struct {
	// Image is the resized frame, exactly TargetWidth x TargetHeight.
	Image image.Image
	// ScaleX is the horizontal scale applied to the source.
	ScaleX float64
	// ScaleY is the vertical scale applied to the source.
	ScaleY float64
	// PadLeft is the left border width in pixels (0 in scale-fill mode).
	PadLeft int
	// PadTop is the top border height in pixels (0 in scale-fill mode).
	PadTop int
}

// Apply resizes src into the target frame.
func (l Letterbox) Apply(src image.Image) LetterboxResult {
	bounds := src.Bounds()
	srcW := bounds.Dx()
	srcH := bounds.Dy()

	if l.ScaleFill {
		return LetterboxResult{
			Image:  l.scale(src, l.TargetWidth, l.TargetHeight),
			ScaleX: float64(l.TargetWidth) / float64(srcW),
			ScaleY: float64(l.TargetHeight) / float64(srcH),
		}
	}

	scale := math.Min(
		float64(l.TargetWidth)/float64(srcW),
		float64(l.TargetHeight)/float64(srcH),
	)
	newW := int(float64(srcW) * scale)
	newH := int(float64(srcH) * scale)

	padLeft := (l.TargetWidth - newW) / 2
	padTop := (l.TargetHeight - newH) / 2

	canvas := image.NewRGBA(image.Rect(0, 0, l.TargetWidth, l.TargetHeight))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{l.PadColor}, image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(padLeft, padTop, padLeft+newW, padTop+newH),
		l.scale(src, newW, newH), image.Point{}, draw.Over)

	return LetterboxResult{
		Image:   canvas,
		ScaleX:  scale,
		ScaleY:  scale,
		PadLeft: padLeft,
		PadTop:  padTop,
	}
}

// scale resizes src to width x height with the configured kernel.
func (l Letterbox) scale(src image.Image, width, height int) image.Image {
	if l.Interp == InterpLanczos {
		return resize.Resize(uint(width), uint(height), src, resize.Lanczos3)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	var kernel xdraw.Interpolator = xdraw.ApproxBiLinear
	if l.Interp == InterpCatmullRom {
		kernel = xdraw.CatmullRom
	}
	kernel.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}
