// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package importer

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"github.com/h2non/filetype/types"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxTextureSize is the largest width/height of an image
// converted by RGBA. Larger images are scaled down.
const MaxTextureSize = 2048

// Image formats that DecodeImage accepts.
var imageTypes = [...]types.Type{
	matchers.TypePng,
	matchers.TypeJpeg,
	matchers.TypeGif,
	matchers.TypeBmp,
	matchers.TypeTiff,
	matchers.TypeWebp,
}

// DecodeImage decodes an image.
// The format is detected from the content.
func DecodeImage(data []byte) (image.Image, error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return nil, err
	}
	ok := false
	for _, t := range imageTypes {
		if kind == t {
			ok = true
			break
		}
	}
	if !ok {
		return nil, fmt.Errorf("%w: image type %q", ErrUnsupported, kind.MIME.Value)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

// LoadImage reads and decodes the image file at path.
func LoadImage(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, err := DecodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("importer: %s: %w", path, err)
	}
	return img, nil
}

// RGBA converts img to 8-bit RGBA with origin at (0, 0),
// scaling it down if either dimension exceeds
// MaxTextureSize.
func RGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > MaxTextureSize || h > MaxTextureSize {
		s := float64(MaxTextureSize) / float64(max(w, h))
		w, h = max(int(float64(w)*s), 1), max(int(float64(h)*s), 1)
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.ApproxBiLinear.Scale(dst, dst.Rect, img, b, draw.Src, nil)
		return dst
	}
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) {
		return rgba
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return dst
}
