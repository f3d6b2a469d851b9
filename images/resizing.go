package images

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/chai2010/webp"
	"github.com/cshum/vipsgen/vips"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// thumbnail resizes encoded image bytes with libvips and returns the
// re-encoded bytes in the same format.
func thumbnail(data []byte, width, height int, format ImageFormat) ([]byte, error) {
	img, err := vips.NewImageFromBuffer(data, &vips.LoadOptions{
		Access: vips.AccessSequential,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load image")
	}
	defer img.Close()

	err = img.ThumbnailImage(width, &vips.ThumbnailImageOptions{
		Height: height,
		FailOn: vips.FailOnError,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to resize image")
	}

	var out []byte
	switch format {
	case FormatJPEG:
		out, err = img.JpegsaveBuffer(&vips.JpegsaveBufferOptions{})
	case FormatPNG:
		out, err = img.PngsaveBuffer(&vips.PngsaveBufferOptions{})
	case FormatWebP:
		out, err = img.WebpsaveBuffer(&vips.WebpsaveBufferOptions{})
	default:
		return nil, errors.Errorf("unsupported image format: %s", format)
	}
	if err != nil || len(out) == 0 {
		return nil, errors.New("failed to encode resized image")
	}
	return out, nil
}

// ResizeToImage resizes encoded image bytes to the given dimensions and
// decodes the result into a Go-native image.Image, ready for tensor
// conversion.
//
// Arguments:
//   - img: The encoded image with its format.
//   - width: The width to resize the image to.
//   - height: The height to resize the image to.
//
// Returns:
//   - image.Image: The resized, decoded image.
//   - error: An error if resizing or decoding fails.
func ResizeToImage(img *Image, width, height int) (image.Image, error) {
	if img == nil || len(img.Data) == 0 {
		return nil, errors.New("empty image data")
	}
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid dimensions: width=%d, height=%d", width, height)
	}

	resized, err := thumbnail(img.Data, width, height, img.Format)
	if err != nil {
		return nil, err
	}

	var decoded image.Image
	switch img.Format {
	case FormatJPEG:
		decoded, err = jpeg.Decode(bytes.NewReader(resized))
	case FormatPNG:
		decoded, err = png.Decode(bytes.NewReader(resized))
	case FormatWebP:
		decoded, err = webp.Decode(bytes.NewReader(resized))
	default:
		return nil, errors.Errorf("unsupported image format: %s", img.Format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode resized %s", img.Format)
	}
	return decoded, nil
}

// ResizeToMat resizes encoded image bytes to the given dimensions and decodes
// the result into a gocv.Mat for use with OpenCV pipelines.
func ResizeToMat(img *Image, width, height int) (gocv.Mat, error) {
	if img == nil || len(img.Data) == 0 {
		return gocv.NewMat(), errors.New("empty image data")
	}

	resized, err := thumbnail(img.Data, width, height, img.Format)
	if err != nil {
		return gocv.NewMat(), err
	}

	mat, err := gocv.IMDecode(resized, gocv.IMReadColor)
	if err != nil || mat.Empty() {
		return gocv.NewMat(), errors.New("failed to decode resized image")
	}
	return mat, nil
}

// Decode decodes encoded image bytes into an image.Image without resizing.
func Decode(img *Image) (image.Image, error) {
	if img == nil || len(img.Data) == 0 {
		return nil, errors.New("empty image data")
	}

	switch img.Format {
	case FormatWebP:
		return webp.Decode(bytes.NewReader(img.Data))
	default:
		decoded, _, err := image.Decode(bytes.NewReader(img.Data))
		return decoded, errors.Wrap(err, "failed to decode image")
	}
}
