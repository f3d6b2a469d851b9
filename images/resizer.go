package images

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// MatResizer scales gocv.Mat frames to the model input size. The scaling
// geometry is computed once at construction so per-frame work is just the
// resize and border fill.
type MatResizer struct {
	srcWidth  int
	srcHeight int
	dstWidth  int
	dstHeight int

	// tmp holds the intermediate resize before padding.
	tmp gocv.Mat

	scale   float32
	xPad    int
	yPad    int
	resizeW int
	resizeH int
}

// NewMatResizer returns a resizer for frames of the given source dimensions.
func NewMatResizer(srcWidth, srcHeight, dstWidth, dstHeight int) *MatResizer {
	r := &MatResizer{
		srcWidth:  srcWidth,
		srcHeight: srcHeight,
		dstWidth:  dstWidth,
		dstHeight: dstHeight,
		tmp:       gocv.NewMat(),
	}
	r.precalc()
	return r
}

// Close frees the intermediate Mat.
func (r *MatResizer) Close() error {
	return r.tmp.Close()
}

// precalc computes the aspect-preserving scale and the padding that centers
// the scaled frame in the destination.
func (r *MatResizer) precalc() {
	r.resizeW = r.dstWidth
	r.resizeH = r.dstHeight

	scaleW := float32(r.dstWidth) / float32(r.srcWidth)
	scaleH := float32(r.dstHeight) / float32(r.srcHeight)

	r.scale = scaleH
	if scaleW < scaleH {
		r.scale = scaleW
		r.resizeH = int(float32(r.srcHeight) * r.scale)
	} else {
		r.resizeW = int(float32(r.srcWidth) * r.scale)
	}

	r.xPad = (r.dstWidth - r.resizeW) / 2
	r.yPad = (r.dstHeight - r.resizeH) / 2
}

// LetterboxResize scales src preserving aspect ratio and pads the remainder
// with pad color, writing the result into dst.
func (r *MatResizer) LetterboxResize(src gocv.Mat, dst *gocv.Mat, pad color.RGBA) {
	gocv.Resize(src, &r.tmp, image.Pt(r.resizeW, r.resizeH),
		0, 0, gocv.InterpolationArea)

	gocv.CopyMakeBorder(r.tmp, dst,
		r.yPad, r.dstHeight-r.resizeH-r.yPad,
		r.xPad, r.dstWidth-r.resizeW-r.xPad,
		gocv.BorderConstant, pad)
}

// ScaleFillResize stretches src to cover the full destination frame,
// ignoring aspect ratio. No padding is applied.
func (r *MatResizer) ScaleFillResize(src gocv.Mat, dst *gocv.Mat) {
	gocv.Resize(src, dst, image.Pt(r.dstWidth, r.dstHeight),
		0, 0, gocv.InterpolationArea)
}

// ScaleFactor returns the aspect-preserving scale used by LetterboxResize.
func (r *MatResizer) ScaleFactor() float32 { return r.scale }

// XPad returns the left border width used by LetterboxResize.
func (r *MatResizer) XPad() int { return r.xPad }

// YPad returns the top border height used by LetterboxResize.
func (r *MatResizer) YPad() int { return r.yPad }
