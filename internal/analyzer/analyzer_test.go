package analyzer

import (
	"image"
	"image/color"
	"testing"
)

func paint(size int, white func(x, y int) bool) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if white(x, y) {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

func TestSobelDetectorDirections(t *testing.T) {
	tests := []struct {
		name  string
		white func(x, y int) bool
		want  EdgeDirection
		glyph rune
	}{
		{"vertical", func(x, y int) bool { return x >= 16 }, EdgeVertical, '|'},
		{"horizontal", func(x, y int) bool { return y >= 16 }, EdgeHorizontal, '-'},
		{"diagonal", func(x, y int) bool { return x+y < 32 }, EdgeDiagonal, '/'},
		{"anti-diagonal", func(x, y int) bool { return x > y }, EdgeAntiDiagonal, '\\'},
		{"flat", func(x, y int) bool { return false }, EdgeNone, 0},
	}

	detector := NewSobelDetector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := detector.Detect(paint(32, tt.white), 32)
			if err != nil {
				t.Fatalf("Detect failed: %v", err)
			}
			if m.Cols != 1 || m.Rows != 1 {
				t.Fatalf("Expected a 1x1 grid, got %dx%d", m.Cols, m.Rows)
			}
			got := m.At(0, 0)
			if got != tt.want {
				t.Errorf("Expected direction %d, got %d", tt.want, got)
			}
			if got.Glyph() != tt.glyph {
				t.Errorf("Expected glyph %q, got %q", tt.glyph, got.Glyph())
			}
		})
	}
}

func TestSobelDetectorGrid(t *testing.T) {
	// 40 px wide with cell 16 gives a partial third column
	img := image.NewRGBA(image.Rect(0, 0, 40, 16))
	for y := 0; y < 16; y++ {
		for x := 8; x < 40; x++ {
			img.Set(x, y, color.White)
		}
	}

	m, err := NewSobelDetector().Detect(img, 16)
	if err != nil {
		t.Fatal(err)
	}
	if m.Cols != 3 || m.Rows != 1 {
		t.Fatalf("Expected 3x1 grid, got %dx%d", m.Cols, m.Rows)
	}
	if m.At(0, 0) != EdgeVertical {
		t.Errorf("Expected vertical edge in first cell, got %d", m.At(0, 0))
	}
	if m.At(1, 0) != EdgeNone || m.At(2, 0) != EdgeNone {
		t.Error("Expected flat cells after the edge")
	}
	if m.At(-1, 0) != EdgeNone || m.At(5, 5) != EdgeNone {
		t.Error("Out of range lookups should be EdgeNone")
	}

	for i, d := range m.Dirs {
		t.Logf("cell %d: %q", i, d.Glyph())
	}
}

func TestSobelDetectorRejectsCellSize(t *testing.T) {
	if _, err := NewSobelDetector().Detect(paint(8, func(int, int) bool { return true }), 0); err == nil {
		t.Error("Expected error for zero cell size")
	}
}

func TestGradientMagnitude(t *testing.T) {
	g := Sobel(paint(8, func(x, y int) bool { return x >= 4 }))
	if m := g.Magnitude(3, 4); m != 1020 {
		t.Errorf("Expected magnitude 1020 at the step, got %f", m)
	}
	if m := g.Magnitude(0, 0); m != 0 {
		t.Errorf("Border must stay zero, got %f", m)
	}
	if m := g.Magnitude(100, 0); m != 0 {
		t.Errorf("Out of range must be zero, got %f", m)
	}
}

func TestDetectorRegistry(t *testing.T) {
	tests := []struct {
		variant string
		wantNil bool
		wantErr bool
	}{
		{"sobel", false, false},
		{"", false, false}, // default
		{"none", true, false},
		{"ocr", true, true},
		{"invalid", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.variant, func(t *testing.T) {
			detector, err := NewDetector(tt.variant)

			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if (detector == nil) != tt.wantNil {
				t.Errorf("Detector nil=%v, want %v", detector == nil, tt.wantNil)
			}
		})
	}
}
