package ioutils

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{300, 300, 0, 300, 300},
		{300, 300, 300, 300, 300},
		{300, 300, 100, 100, 100},
		{400, 200, 100, 100, 50},
		{200, 400, 100, 50, 100},
		{1000, 1, 10, 10, 1},
	}

	for _, tt := range tests {
		gotW, gotH := fitWithin(tt.w, tt.h, tt.max)
		if gotW != tt.wantW || gotH != tt.wantH {
			t.Errorf("fitWithin(%d, %d, %d) = %dx%d, want %dx%d", tt.w, tt.h, tt.max, gotW, gotH, tt.wantW, tt.wantH)
		}
	}
}

func TestImageService_Fit_Shrinks(t *testing.T) {
	svc := NewImageService()
	data := encodePNG(t, 120, 60)

	out, err := svc.Fit(context.Background(), data, 40)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("DecodeConfig() error = %v", err)
	}
	if format != "jpeg" {
		t.Errorf("format = %q, want jpeg", format)
	}
	if cfg.Width != 40 || cfg.Height != 20 {
		t.Errorf("size = %dx%d, want 40x20", cfg.Width, cfg.Height)
	}
}

func TestImageService_Fit_KeepsSmallImages(t *testing.T) {
	svc := NewImageService()
	data := encodePNG(t, 30, 30)

	out, err := svc.Fit(context.Background(), data, 100)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Error("Fit() re-encoded an image that already fits")
	}
}

func TestImageService_Fit_InvalidData(t *testing.T) {
	svc := NewImageService()

	if _, err := svc.Fit(context.Background(), []byte("<html>rate limited</html>"), 100); err == nil {
		t.Error("Fit() error = nil, want decode error")
	}
}
