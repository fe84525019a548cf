package source

import (
	"fmt"
	"image"
	"sync"

	"golang.org/x/image/draw"
)

// Backdrop is a source page scaled once to the frame size. The renderer
// samples it as the scene's albedo.
type Backdrop struct {
	Image *image.RGBA
}

// LoadBackdrop renders page from src and fits it to w x h, cropping the
// overflow so the frame is always covered.
func LoadBackdrop(src Source, page, dpi, w, h int) (*Backdrop, error) {
	if src.PageCount() == 0 {
		return nil, fmt.Errorf("источник не содержит страниц/кадров")
	}
	if page >= src.PageCount() {
		page = src.PageCount() - 1
	}

	img, err := src.RenderPage(page, dpi)
	if err != nil {
		return nil, fmt.Errorf("render backdrop page %d: %w", page, err)
	}
	return &Backdrop{Image: Cover(img, w, h, draw.CatmullRom)}, nil
}

// Cover scales img to fill w x h keeping its aspect ratio and crops the
// centre.
func Cover(img image.Image, w, h int, scaler draw.Scaler) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	b := img.Bounds()
	if b.Empty() || w <= 0 || h <= 0 {
		return dst
	}

	sx := float64(w) / float64(b.Dx())
	sy := float64(h) / float64(b.Dy())
	scale := sx
	if sy > sx {
		scale = sy
	}

	cw := int(float64(w) / scale)
	ch := int(float64(h) / scale)
	if cw < 1 {
		cw = 1
	}
	if ch < 1 {
		ch = 1
	}
	x0 := b.Min.X + (b.Dx()-cw)/2
	y0 := b.Min.Y + (b.Dy()-ch)/2
	crop := image.Rect(x0, y0, x0+cw, y0+ch)

	scaler.Scale(dst, dst.Bounds(), img, crop, draw.Src, nil)
	return dst
}

// Sample returns the backdrop colour at normalised coordinates u, v in [0,1]
func (b *Backdrop) Sample(u, v float64) (r, g, bl float64) {
	if b == nil || b.Image == nil {
		return 1, 1, 1
	}
	bounds := b.Image.Bounds()
	x := bounds.Min.X + int(u*float64(bounds.Dx()-1))
	y := bounds.Min.Y + int(v*float64(bounds.Dy()-1))
	if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
		return 0, 0, 0
	}
	c := b.Image.RGBAAt(x, y)
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255
}

// Cache keeps the backdrop loaded for the current frame size
type Cache struct {
	mu   sync.Mutex
	src  Source
	page int
	dpi  int
	size image.Point
	bd   *Backdrop
}

func NewCache(src Source, page, dpi int) *Cache {
	return &Cache{src: src, page: page, dpi: dpi}
}

// Get returns the backdrop for w x h, reloading only when the size changes
func (c *Cache) Get(w, h int) (*Backdrop, error) {
	if c == nil || c.src == nil {
		return nil, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bd != nil && c.size == image.Pt(w, h) {
		return c.bd, nil
	}
	bd, err := LoadBackdrop(c.src, c.page, c.dpi, w, h)
	if err != nil {
		return nil, err
	}
	c.bd, c.size = bd, image.Pt(w, h)
	return bd, nil
}
