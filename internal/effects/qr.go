package effects

import (
	"fmt"
	"image"
	"image/color"

	"github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"
)

const (
	// The QR code fades in over the last part of the camera phase
	qrFadeStart = 0.85
	qrMargin    = 16
)

// QROverlay stamps a contact QR code in the bottom-right corner
type QROverlay struct {
	URL  string
	Size int

	img image.Image
}

func NewQROverlay(url string, size int) (*QROverlay, error) {
	if size <= 0 {
		size = 128
	}
	q, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("qr %q: %w", url, err)
	}
	return &QROverlay{URL: url, Size: size, img: q.Image(size)}, nil
}

// Alpha is the overlay opacity for a camera progress value
func (q *QROverlay) Alpha(cameraProgress float64) float64 {
	if cameraProgress <= qrFadeStart {
		return 0
	}
	return clamp01((cameraProgress - qrFadeStart) / (1 - qrFadeStart))
}

// Draw composites the code over dst with the given opacity. The code is
// skipped when the frame is too small to hold it.
func (q *QROverlay) Draw(dst *image.RGBA, alpha float64) {
	if q == nil || alpha <= 0 {
		return
	}
	b := dst.Bounds()
	qb := q.img.Bounds()
	if qb.Dx()+qrMargin > b.Dx() || qb.Dy()+qrMargin > b.Dy() {
		return
	}

	r := image.Rect(b.Max.X-qrMargin-qb.Dx(), b.Max.Y-qrMargin-qb.Dy(), b.Max.X-qrMargin, b.Max.Y-qrMargin)
	mask := image.NewUniform(color.Alpha{A: uint8(clamp01(alpha)*255 + 0.5)})
	draw.DrawMask(dst, r, q.img, qb.Min, mask, image.Point{}, draw.Over)
}
