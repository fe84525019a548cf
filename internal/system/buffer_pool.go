package system

import (
	"image"
	"sync"
)

// ImagePool переиспользует кадры *image.RGBA одного размера, чтобы рендер
// не выделял по мегабайту на каждый кадр.
type ImagePool struct {
	pools map[image.Point]*sync.Pool
	mu    sync.RWMutex
}

func NewImagePool() *ImagePool {
	return &ImagePool{pools: make(map[image.Point]*sync.Pool)}
}

var globalPool = NewImagePool()

// GetImage returns a frame of w x h from the shared pool
func GetImage(w, h int) *image.RGBA {
	return globalPool.Get(w, h)
}

// PutImage hands a frame back to the shared pool
func PutImage(img *image.RGBA) {
	globalPool.Put(img)
}

// Get returns a frame anchored at the origin. Its pixels are whatever the
// previous user left; callers overwrite the whole frame.
func (p *ImagePool) Get(w, h int) *image.RGBA {
	key := image.Pt(w, h)

	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		pool, exists = p.pools[key]
		if !exists {
			pool = &sync.Pool{
				New: func() interface{} {
					return image.NewRGBA(image.Rect(0, 0, key.X, key.Y))
				},
			}
			p.pools[key] = pool
		}
		p.mu.Unlock()
	}

	return pool.Get().(*image.RGBA)
}

// Put ignores frames not anchored at the origin and sizes never requested
func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil || img.Rect.Min != (image.Point{}) {
		return
	}
	key := img.Rect.Size()

	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if exists {
		pool.Put(img)
	}
}
