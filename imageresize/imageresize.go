// Package imageresize scales artwork to a bounding box while keeping the
// aspect ratio. Callers hand in encoded image bytes and get encoded image
// bytes back; caching happens a layer up.
package imageresize

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
)

type Options struct {
	// JPEGQuality used when re-encoding, 1-100. 0 picks a default.
	JPEGQuality int
}

type Resizer struct {
	jpegQuality int
}

const defaultJPEGQuality = 85

func New(o Options) *Resizer {
	r := &Resizer{
		jpegQuality: o.JPEGQuality,
	}
	if r.jpegQuality <= 0 || r.jpegQuality > 100 {
		r.jpegQuality = defaultJPEGQuality
	}
	return r
}

// Fit scales the image down so both dimensions fit within size pixels.
// Images already within the box are returned unchanged. The returned mime
// type reflects the encoding of the returned bytes.
func (r *Resizer) Fit(data []byte, size int) ([]byte, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("imageresize: decode: %w", err)
	}

	bounds := img.Bounds()
	if size <= 0 || (bounds.Dx() <= size && bounds.Dy() <= size) {
		return data, "image/" + format, nil
	}

	resized := imaging.Fit(img, size, size, imaging.Lanczos)

	var buf bytes.Buffer
	switch format {
	case "png":
		if err := png.Encode(&buf, resized); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "image/png", nil
	default:
		// anything else is re-encoded as jpeg
		if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: r.jpegQuality}); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "image/jpeg", nil
	}
}
