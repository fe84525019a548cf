package analyzer

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// SobelDetector classifies cell edges from the Sobel gradient
type SobelDetector struct {
	EdgeThreshold float64 // Gradient magnitude threshold
	// MinSpan is the number of strong pixels a cell needs, as a fraction
	// of the cell size. A line crossing the cell yields about 2x size.
	MinSpan float64
}

// NewSobelDetector creates a detector with default settings
func NewSobelDetector() *SobelDetector {
	return &SobelDetector{
		EdgeThreshold: 30.0, // Moderate sensitivity
		MinSpan:       0.5,
	}
}

// Gradient is the per-pixel Sobel response of a grayscale image
type Gradient struct {
	W, H   int
	GX, GY []float64
}

// Detect runs Sobel once over the frame and votes a direction per cell
func (d *SobelDetector) Detect(img image.Image, cellSize int) (*EdgeMap, error) {
	if cellSize <= 0 {
		return nil, fmt.Errorf("cell size must be positive, got %d", cellSize)
	}
	grad := Sobel(toGrayscale(img))

	cols := (grad.W + cellSize - 1) / cellSize
	rows := (grad.H + cellSize - 1) / cellSize
	m := &EdgeMap{Cols: cols, Rows: rows, Dirs: make([]EdgeDirection, cols*rows)}

	thr2 := d.EdgeThreshold * d.EdgeThreshold
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			m.Dirs[row*cols+col] = d.classify(grad, col*cellSize, row*cellSize, cellSize, thr2)
		}
	}
	return m, nil
}

// classify averages the doubled gradient angle of strong pixels. Doubling
// makes opposite gradients on either side of a line reinforce.
func (d *SobelDetector) classify(g *Gradient, x0, y0, size int, thr2 float64) EdgeDirection {
	var sxx, sxy float64
	strong := 0

	for y := y0; y < y0+size && y < g.H; y++ {
		for x := x0; x < x0+size && x < g.W; x++ {
			gx, gy := g.GX[y*g.W+x], g.GY[y*g.W+x]
			if gx*gx+gy*gy <= thr2 {
				continue
			}
			strong++
			sxx += gx*gx - gy*gy
			sxy += 2 * gx * gy
		}
	}

	if strong == 0 || float64(strong) < d.MinSpan*float64(size) {
		return EdgeNone
	}

	// Gradient orientation in (-pi/2, pi/2]. Image y grows downwards.
	theta := 0.5 * math.Atan2(sxy, sxx)
	a := math.Abs(theta)
	switch {
	case a < math.Pi/8:
		return EdgeVertical
	case a > 3*math.Pi/8:
		return EdgeHorizontal
	case theta > 0:
		return EdgeDiagonal
	default:
		return EdgeAntiDiagonal
	}
}

// toGrayscale converts an image to grayscale
func toGrayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}

	bounds := img.Bounds()
	gray := image.NewGray(bounds)

	if rgba, ok := img.(*image.RGBA); ok {
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				c := rgba.RGBAAt(x, y)
				gray.SetGray(x, y, color.GrayModel.Convert(c).(color.Gray))
			}
		}
		return gray
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return gray
}

// Sobel kernels
var (
	sobelX = [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY = [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}
)

// Sobel computes the gradient. Border pixels stay zero.
func Sobel(gray *image.Gray) *Gradient {
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	g := &Gradient{W: w, H: h, GX: make([]float64, w*h), GY: make([]float64, w*h)}

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			var sumX, sumY float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					pixel := float64(gray.GrayAt(bounds.Min.X+x+kx, bounds.Min.Y+y+ky).Y)
					sumX += pixel * sobelX[ky+1][kx+1]
					sumY += pixel * sobelY[ky+1][kx+1]
				}
			}
			g.GX[y*w+x] = sumX
			g.GY[y*w+x] = sumY
		}
	}
	return g
}

// Magnitude returns the gradient magnitude at x, y
func (g *Gradient) Magnitude(x, y int) float64 {
	if x < 0 || y < 0 || x >= g.W || y >= g.H {
		return 0
	}
	i := y*g.W + x
	return math.Hypot(g.GX[i], g.GY[i])
}
