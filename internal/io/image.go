package ioutils

import (
	"bytes"
	"context"
	"image"
	_ "image/gif" // GIF decoder registration
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	"golang.org/x/image/draw"
)

// ImageService post-processes downloaded collages.
//
// Collages are saved byte-for-byte by default. ImageService is only used when
// a maximum size is configured, to scale a large collage (a 10x10 grid is
// 3000 pixels wide) down to something easier to share.
//
// Example usage:
//
//	svc := NewImageService()
//	small, err := svc.Fit(ctx, collage, 1200)
type ImageService struct {
	// Quality is the JPEG quality used when re-encoding.
	Quality int
}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{Quality: 90}
}

// Fit scales an image down so that neither side exceeds maxSize pixels.
//
// The aspect ratio is preserved and the Catmull-Rom kernel is used. Images
// that already fit are returned unchanged, without being decoded twice or
// re-encoded. Scaled images are encoded as JPEG.
//
// Example:
//
//	// A 1500x1500 collage becomes 1000x1000
//	resized, err := svc.Fit(ctx, data, 1000)
func (s *ImageService) Fit(ctx context.Context, data []byte, maxSize int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	width, height := fitWithin(cfg.Width, cfg.Height, maxSize)
	if width == cfg.Width && height == cfg.Height {
		return data, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)

	quality := s.Quality
	if quality <= 0 || quality > 100 {
		quality = jpeg.DefaultQuality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fitWithin returns the largest dimensions with the same aspect ratio as
// width x height that fit in a maxSize square. Sizes already inside the
// square, and a non-positive maxSize, are returned as-is.
func fitWithin(width, height, maxSize int) (int, int) {
	if maxSize <= 0 || (width <= maxSize && height <= maxSize) {
		return width, height
	}
	if width >= height {
		h := height * maxSize / width
		if h < 1 {
			h = 1
		}
		return maxSize, h
	}
	w := width * maxSize / height
	if w < 1 {
		w = 1
	}
	return w, maxSize
}
