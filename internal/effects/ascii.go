package effects

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ivlev/scrollscene/internal/analyzer"
	"github.com/ivlev/scrollscene/internal/keyframe"
	"github.com/ivlev/scrollscene/internal/scene"
)

// Cell is one character of the ASCII grid
type Cell struct {
	Glyph     rune
	Color     color.RGBA
	Luminance float64
}

// Grid is the frame reduced to CellSize x CellSize cells, row-major
type Grid struct {
	Cols, Rows int
	CellSize   int
	Cells      []Cell
}

func (g *Grid) At(col, row int) Cell {
	return g.Cells[row*g.Cols+col]
}

// Effect turns rendered frames into characters
type Effect interface {
	Cells(img *image.RGBA, props scene.EffectProps) (*Grid, error)
	Apply(dst *image.RGBA, props scene.EffectProps) error
}

// ASCIIEffect draws luminance-mapped glyphs, optionally replacing cells on
// strong edges with line glyphs.
type ASCIIEffect struct {
	// Detector is optional; nil disables edge glyphs
	Detector analyzer.Detector

	font *opentype.Font
}

func NewASCIIEffect(det analyzer.Detector) (*ASCIIEffect, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse glyph font: %w", err)
	}
	return &ASCIIEffect{Detector: det, font: f}, nil
}

// Cells averages every cell and picks its glyph. A partial last row or
// column still gets a cell.
func (e *ASCIIEffect) Cells(img *image.RGBA, props scene.EffectProps) (*Grid, error) {
	size := props.CellSize
	if size <= 0 {
		return nil, fmt.Errorf("cell size must be positive, got %d", size)
	}

	chars := []rune(props.Texture.Characters)
	if len(chars) == 0 {
		chars = []rune(scene.DefaultCharacters)
	}

	fixedColor := color.RGBA{255, 255, 255, 255}
	if !props.UseSceneColor {
		if c, err := colorful.Hex(props.Color); err == nil {
			r, g, b := c.RGB255()
			fixedColor = color.RGBA{r, g, b, 255}
		}
	}

	var edges *analyzer.EdgeMap
	if e.Detector != nil {
		m, err := e.Detector.Detect(img, size)
		if err != nil {
			return nil, fmt.Errorf("edge detection: %w", err)
		}
		edges = m
	}

	b := img.Bounds()
	cols := (b.Dx() + size - 1) / size
	rows := (b.Dy() + size - 1) / size
	grid := &Grid{Cols: cols, Rows: rows, CellSize: size, Cells: make([]Cell, cols*rows)}

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			r := image.Rect(col*size, row*size, (col+1)*size, (row+1)*size).Add(b.Min).Intersect(b)
			avg := average(img, r)
			lum := luminance(avg)

			level := lum
			if props.Inverted {
				level = 1 - level
			}
			cell := Cell{Glyph: chars[glyphIndex(level, len(chars))], Luminance: lum}

			if g := edges.At(col, row).Glyph(); g != 0 {
				cell.Glyph = g
			}

			if props.UseSceneColor {
				cell.Color = avg
			} else {
				cell.Color = fixedColor
			}
			grid.Cells[row*cols+col] = cell
		}
	}
	return grid, nil
}

// glyphIndex maps a 0..1 level onto n glyphs. Levels within float noise of
// a step boundary land on the upper glyph, so pure white reaches the last.
func glyphIndex(level float64, n int) int {
	if n <= 1 {
		return 0
	}
	level = keyframe.Clamp01(level)
	i := int(math.Floor(level*float64(n-1) + 1e-9))
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func average(img *image.RGBA, r image.Rectangle) color.RGBA {
	var sr, sg, sb, n uint64
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := img.RGBAAt(x, y)
			sr += uint64(c.R)
			sg += uint64(c.G)
			sb += uint64(c.B)
			n++
		}
	}
	if n == 0 {
		return color.RGBA{A: 255}
	}
	return color.RGBA{uint8(sr / n), uint8(sg / n), uint8(sb / n), 255}
}

// luminance is Rec. 709 relative luminance of an sRGB colour, 0..1
func luminance(c color.RGBA) float64 {
	return (0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)) / 255
}

// glyphPx is the drawn glyph height. fontSize is relative to an atlas
// cell of TextureSize/CellCount pixels, as the character texture is laid
// out, so the glyph scales with the on-screen cell.
func glyphPx(props scene.EffectProps) int {
	atlasCell := 64.0
	if props.Texture.Size > 0 && props.Texture.CellCount > 0 {
		atlasCell = float64(props.Texture.Size) / float64(props.Texture.CellCount)
	}
	px := int(math.Round(float64(props.CellSize) * float64(props.Texture.FontSize) / atlasCell))
	if px < 1 {
		px = 1
	}
	return px
}

// face is created per layer: a face keeps scratch buffers and must not be
// shared between goroutines rendering frames in parallel.
func (e *ASCIIEffect) face(px int) (font.Face, error) {
	return opentype.NewFace(e.font, &opentype.FaceOptions{
		Size:    float64(px),
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// Layer draws the grid glyphs centred in their cells on a transparent
// image of the given bounds.
func (e *ASCIIEffect) Layer(grid *Grid, bounds image.Rectangle, props scene.EffectProps) (*image.RGBA, error) {
	layer := image.NewRGBA(bounds)
	f, err := e.face(glyphPx(props))
	if err != nil {
		return nil, fmt.Errorf("glyph face: %w", err)
	}
	defer f.Close()

	m := f.Metrics()
	ascent := m.Ascent.Ceil()
	height := (m.Ascent + m.Descent).Ceil()

	d := &font.Drawer{Dst: layer, Face: f}
	for row := 0; row < grid.Rows; row++ {
		for col := 0; col < grid.Cols; col++ {
			cell := grid.At(col, row)
			adv, ok := f.GlyphAdvance(cell.Glyph)
			if !ok {
				continue
			}
			x := bounds.Min.X + col*grid.CellSize + (grid.CellSize-adv.Ceil())/2
			y := bounds.Min.Y + row*grid.CellSize + (grid.CellSize-height)/2 + ascent

			d.Src = image.NewUniform(cell.Color)
			d.Dot = fixed.P(x, y)
			d.DrawString(string(cell.Glyph))
		}
	}
	return layer, nil
}

// Apply replaces dst with the ASCII rendition blended per props. Skip
// leaves dst untouched.
func (e *ASCIIEffect) Apply(dst *image.RGBA, props scene.EffectProps) error {
	if props.Blend == scene.BlendSkip {
		return nil
	}
	grid, err := e.Cells(dst, props)
	if err != nil {
		return err
	}
	layer, err := e.Layer(grid, dst.Bounds(), props)
	if err != nil {
		return err
	}
	return Composite(dst, layer, props.Blend, props.Opacity)
}
