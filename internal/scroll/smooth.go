package scroll

import (
	"math"
	"sync"
	"time"
)

// Provider exposes the current scroll offset in pixels
type Provider interface {
	Offset() float64
	Start()
	Stop()
	Destroy()
}

// Easing maps linear time in [0,1] to eased progress
type Easing func(t float64) float64

// ExpoOut is the default smooth-scroll easing curve
func ExpoOut(t float64) float64 {
	return math.Min(1, 1.001-math.Pow(2, -10*t))
}

// SmoothScroller eases the offset toward a target over a fixed duration.
// Safe for concurrent use: input arrives from the event goroutine while the
// frame loop reads Offset.
type SmoothScroller struct {
	Duration time.Duration
	Easing   Easing

	mu        sync.Mutex
	limit     float64
	from      float64
	current   float64
	target    float64
	elapsed   time.Duration
	animating bool
	stopped   bool
	destroyed bool
}

// NewSmoothScroller creates a scroller clamped to [0, limit]
func NewSmoothScroller(limit float64) *SmoothScroller {
	return &SmoothScroller{
		Duration: 1200 * time.Millisecond,
		Easing:   ExpoOut,
		limit:    math.Max(0, limit),
	}
}

func (s *SmoothScroller) Offset() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Target returns where the scroller is heading
func (s *SmoothScroller) Target() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target
}

// SetLimit changes the scrollable range (e.g. after a resize)
func (s *SmoothScroller) SetLimit(limit float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limit = math.Max(0, limit)
	s.target = s.clamp(s.target)
	s.current = s.clamp(s.current)
}

// ScrollTo starts an eased scroll toward target. Ignored while stopped.
func (s *SmoothScroller) ScrollTo(target float64, immediate bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || s.destroyed {
		return
	}

	s.target = s.clamp(target)
	if immediate || s.Duration <= 0 {
		s.current = s.target
		s.animating = false
		return
	}
	s.from = s.current
	s.elapsed = 0
	s.animating = true
}

// ScrollBy offsets the current target, as a wheel notch would
func (s *SmoothScroller) ScrollBy(delta float64) {
	s.ScrollTo(s.Target()+delta, false)
}

// Advance moves the animation forward by dt
func (s *SmoothScroller) Advance(dt time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.animating || s.destroyed {
		return
	}

	s.elapsed += dt
	t := float64(s.elapsed) / float64(s.Duration)
	if t >= 1 {
		s.current = s.target
		s.animating = false
		return
	}

	ease := s.Easing
	if ease == nil {
		ease = ExpoOut
	}
	s.current = s.from + (s.target-s.from)*ease(t)
}

func (s *SmoothScroller) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = false
}

// Stop freezes input; an animation already running is cut short
func (s *SmoothScroller) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.animating = false
	s.target = s.current
}

func (s *SmoothScroller) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyed = true
	s.animating = false
}

func (s *SmoothScroller) clamp(v float64) float64 {
	return math.Max(0, math.Min(s.limit, v))
}

// Fixed is a provider with a directly assigned offset, used for scripted
// sweeps and tests.
type Fixed struct {
	mu     sync.Mutex
	offset float64
}

func (f *Fixed) Set(offset float64) {
	f.mu.Lock()
	f.offset = offset
	f.mu.Unlock()
}

func (f *Fixed) Offset() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.offset
}

func (f *Fixed) Start()   {}
func (f *Fixed) Stop()    {}
func (f *Fixed) Destroy() {}
