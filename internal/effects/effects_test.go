package effects

import (
	"image"
	"image/color"
	"math"
	"testing"

	"golang.org/x/image/draw"

	"github.com/ivlev/scrollscene/internal/analyzer"
	"github.com/ivlev/scrollscene/internal/scene"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

func testProps() scene.EffectProps {
	st := scene.NewState()
	return st.EffectProps()
}

func newEffect(t *testing.T, det analyzer.Detector) *ASCIIEffect {
	t.Helper()
	e, err := NewASCIIEffect(det)
	if err != nil {
		t.Fatalf("NewASCIIEffect failed: %v", err)
	}
	return e
}

func TestCellsGridAndGlyphs(t *testing.T) {
	e := newEffect(t, nil)

	img := solid(100, 40, color.RGBA{0, 0, 0, 255})
	draw.Draw(img, image.Rect(50, 0, 100, 40), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)

	props := testProps()
	props.CellSize = 25
	props.Texture.Characters = " .:#"

	grid, err := e.Cells(img, props)
	if err != nil {
		t.Fatal(err)
	}
	if grid.Cols != 4 || grid.Rows != 2 {
		t.Fatalf("Expected 4x2 grid, got %dx%d", grid.Cols, grid.Rows)
	}

	if g := grid.At(0, 0).Glyph; g != ' ' {
		t.Errorf("Dark cell should use the first character, got %q", g)
	}
	if g := grid.At(3, 1).Glyph; g != '#' {
		t.Errorf("Bright cell should use the last character, got %q", g)
	}
	if c := grid.At(3, 0).Color; c != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("Scene colour expected, got %v", c)
	}

	props.Inverted = true
	grid, _ = e.Cells(img, props)
	if g := grid.At(0, 0).Glyph; g != '#' {
		t.Errorf("Inverted dark cell should use the last character, got %q", g)
	}
}

func TestCellsPartialAndFixedColour(t *testing.T) {
	e := newEffect(t, nil)
	props := testProps()
	props.CellSize = 16
	props.UseSceneColor = false
	props.Color = "#00ff00"

	grid, err := e.Cells(solid(40, 20, color.RGBA{200, 10, 10, 255}), props)
	if err != nil {
		t.Fatal(err)
	}
	if grid.Cols != 3 || grid.Rows != 2 {
		t.Errorf("Expected 3x2 grid, got %dx%d", grid.Cols, grid.Rows)
	}
	for i, c := range grid.Cells {
		if c.Color != (color.RGBA{0, 255, 0, 255}) {
			t.Errorf("cell %d: expected fixed colour, got %v", i, c.Color)
		}
	}

	props.CellSize = 0
	if _, err := e.Cells(solid(4, 4, color.RGBA{}), props); err == nil {
		t.Error("Expected error for zero cell size")
	}
}

func TestCellsEdgeGlyphs(t *testing.T) {
	e := newEffect(t, analyzer.NewSobelDetector())

	img := solid(32, 32, color.RGBA{0, 0, 0, 255})
	draw.Draw(img, image.Rect(16, 0, 32, 32), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)

	props := testProps()
	props.CellSize = 32
	grid, err := e.Cells(img, props)
	if err != nil {
		t.Fatal(err)
	}
	if g := grid.At(0, 0).Glyph; g != '|' {
		t.Errorf("Expected edge glyph '|', got %q", g)
	}
}

func TestGlyphIndex(t *testing.T) {
	white := luminance(color.RGBA{255, 255, 255, 255})
	black := luminance(color.RGBA{0, 0, 0, 255})

	tests := []struct {
		name  string
		level float64
		n     int
		want  int
	}{
		{"white, 4 glyphs", white, 4, 3},
		{"white, default set", white, len(scene.DefaultCharacters), len(scene.DefaultCharacters) - 1},
		{"inverted black", 1 - black, 4, 3},
		{"black", black, 4, 0},
		{"inverted white", 1 - white, 4, 0},
		{"middle", 0.5, 5, 2},
		{"just below a step", 0.6, 4, 1},
		{"above range", 1.5, 4, 3},
		{"below range", -0.2, 4, 0},
		{"NaN", math.NaN(), 4, 0},
		{"single glyph", 0.9, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := glyphIndex(tt.level, tt.n); got != tt.want {
				t.Errorf("glyphIndex(%v, %d) = %d, want %d", tt.level, tt.n, got, tt.want)
			}
		})
	}
}

func TestGlyphPx(t *testing.T) {
	props := testProps() // texture 1024 / 16 = 64 px atlas cells
	tests := []struct {
		cell, font, want int
	}{
		{45, 15, 11},
		{9, 44, 6},
		{64, 64, 64},
		{1, 1, 1},
	}
	for _, tt := range tests {
		props.CellSize, props.Texture.FontSize = tt.cell, tt.font
		if got := glyphPx(props); got != tt.want {
			t.Errorf("cell=%d font=%d: expected %d px, got %d", tt.cell, tt.font, tt.want, got)
		}
	}
}

func TestApplySkipLeavesFrame(t *testing.T) {
	e := newEffect(t, nil)
	img := solid(20, 20, color.RGBA{10, 20, 30, 255})

	props := testProps()
	props.Blend = scene.BlendSkip
	if err := e.Apply(img, props); err != nil {
		t.Fatal(err)
	}
	if img.RGBAAt(5, 5) != (color.RGBA{10, 20, 30, 255}) {
		t.Error("Skip must not touch the frame")
	}
}

func TestApplyDrawsGlyphs(t *testing.T) {
	e := newEffect(t, nil)
	img := solid(64, 64, color.RGBA{255, 255, 255, 255})

	props := testProps()
	props.CellSize = 32
	props.Texture.FontSize = 48
	props.Texture.Characters = "#"

	if err := e.Apply(img, props); err != nil {
		t.Fatal(err)
	}

	// Normal blend replaces the frame: black background with white glyphs
	var black, lit int
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			c := img.RGBAAt(x, y)
			if c.R == 0 {
				black++
			} else {
				lit++
			}
		}
	}
	if black == 0 || lit == 0 {
		t.Errorf("Expected glyphs on black, got %d black / %d lit pixels", black, lit)
	}
	t.Logf("black=%d lit=%d", black, lit)
}

func TestCompositeBlends(t *testing.T) {
	base := color.RGBA{128, 64, 255, 255}
	layerColor := color.RGBA{64, 128, 0, 255}

	tests := []struct {
		fn   scene.BlendFunction
		want color.RGBA
	}{
		{scene.BlendNormal, layerColor},
		{scene.BlendAlpha, layerColor},
		{scene.BlendAdd, color.RGBA{192, 192, 255, 255}},
		{scene.BlendMultiply, color.RGBA{32, 32, 0, 255}},
		{scene.BlendDarken, color.RGBA{64, 64, 0, 255}},
		{scene.BlendLighten, color.RGBA{128, 128, 255, 255}},
		{scene.BlendDifference, color.RGBA{64, 64, 255, 255}},
		{scene.BlendSubtract, color.RGBA{0, 0, 0, 255}},
	}

	for _, tt := range tests {
		t.Run(string(tt.fn), func(t *testing.T) {
			dst := solid(2, 2, base)
			if err := Composite(dst, solid(2, 2, layerColor), tt.fn, 1); err != nil {
				t.Fatal(err)
			}
			got := dst.RGBAAt(0, 0)
			if !near(got, tt.want, 1) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCompositeTransparentLayer(t *testing.T) {
	base := color.RGBA{100, 100, 100, 255}
	empty := image.NewRGBA(image.Rect(0, 0, 2, 2))

	dst := solid(2, 2, base)
	Composite(dst, empty, scene.BlendAlpha, 1)
	if dst.RGBAAt(0, 0) != base {
		t.Errorf("Alpha blend over an empty layer must keep the frame, got %v", dst.RGBAAt(0, 0))
	}

	dst = solid(2, 2, base)
	Composite(dst, empty, scene.BlendNormal, 1)
	if dst.RGBAAt(0, 0) != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("Normal blend over an empty layer is black, got %v", dst.RGBAAt(0, 0))
	}
}

func TestCompositeOpacity(t *testing.T) {
	dst := solid(1, 1, color.RGBA{0, 0, 0, 255})
	Composite(dst, solid(1, 1, color.RGBA{200, 100, 50, 255}), scene.BlendNormal, 0.5)
	if got := dst.RGBAAt(0, 0); !near(got, color.RGBA{100, 50, 25, 255}, 1) {
		t.Errorf("Expected half-way colour, got %v", got)
	}

	dst = solid(1, 1, color.RGBA{10, 10, 10, 255})
	Composite(dst, solid(1, 1, color.RGBA{200, 200, 200, 255}), scene.BlendNormal, 0)
	if got := dst.RGBAAt(0, 0); got != (color.RGBA{10, 10, 10, 255}) {
		t.Errorf("Zero opacity must keep the frame, got %v", got)
	}
}

func TestCompositeColorBlend(t *testing.T) {
	// Grey base keeps its lightness, red layer gives hue and saturation
	dst := solid(1, 1, color.RGBA{128, 128, 128, 255})
	Composite(dst, solid(1, 1, color.RGBA{255, 0, 0, 255}), scene.BlendColor, 1)
	got := dst.RGBAAt(0, 0)
	if got.R <= got.G || got.G != got.B {
		t.Errorf("Expected a red tint, got %v", got)
	}
}

func TestCompositeErrors(t *testing.T) {
	if err := Composite(solid(2, 2, color.RGBA{}), solid(3, 3, color.RGBA{}), scene.BlendNormal, 1); err == nil {
		t.Error("Expected bounds mismatch error")
	}
	if err := Composite(solid(1, 1, color.RGBA{}), solid(1, 1, color.RGBA{}), "bogus", 1); err == nil {
		t.Error("Expected unsupported blend error")
	}
	if err := Composite(solid(1, 1, color.RGBA{}), solid(2, 2, color.RGBA{}), scene.BlendSkip, 1); err != nil {
		t.Errorf("Skip must not fail: %v", err)
	}
}

func TestQROverlay(t *testing.T) {
	q, err := NewQROverlay("https://example.com", 64)
	if err != nil {
		t.Fatal(err)
	}

	for _, tt := range []struct{ p, want float64 }{
		{0, 0}, {0.85, 0}, {1, 1},
	} {
		if got := q.Alpha(tt.p); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Alpha(%.2f) = %f, want %f", tt.p, got, tt.want)
		}
	}

	frame := solid(200, 200, color.RGBA{255, 0, 0, 255})
	q.Draw(frame, 1)
	changed := false
	for y := 120; y < 184 && !changed; y++ {
		for x := 120; x < 184; x++ {
			if frame.RGBAAt(x, y) != (color.RGBA{255, 0, 0, 255}) {
				changed = true
				break
			}
		}
	}
	if !changed {
		t.Error("QR code not drawn in the corner")
	}

	small := solid(32, 32, color.RGBA{255, 0, 0, 255})
	q.Draw(small, 1)
	if small.RGBAAt(16, 16) != (color.RGBA{255, 0, 0, 255}) {
		t.Error("QR code must be skipped on frames too small to hold it")
	}
}

func near(a, b color.RGBA, tol int) bool {
	d := func(x, y uint8) bool {
		v := int(x) - int(y)
		return v <= tol && v >= -tol
	}
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && a.A == b.A
}
