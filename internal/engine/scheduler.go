package engine

import (
	"context"
	"sync"
	"time"
)

// FrameID identifies a scheduled frame callback. Zero means none.
type FrameID uint64

// Scheduler runs a callback before the next frame, once
type Scheduler interface {
	RequestFrame(cb func()) FrameID
	CancelFrame(id FrameID)
}

// ManualScheduler queues callbacks until RunNext is called. Deterministic,
// used by the exporter and tests.
type ManualScheduler struct {
	mu      sync.Mutex
	next    FrameID
	pending map[FrameID]func()
	order   []FrameID
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{pending: make(map[FrameID]func())}
}

func (s *ManualScheduler) RequestFrame(cb func()) FrameID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.pending[s.next] = cb
	s.order = append(s.order, s.next)
	return s.next
}

func (s *ManualScheduler) CancelFrame(id FrameID) {
	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()
}

// Pending reports how many callbacks are waiting
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// RunNext runs the callbacks that were queued before the call. Callbacks
// they schedule wait for the next RunNext. Returns how many ran.
func (s *ManualScheduler) RunNext() int {
	s.mu.Lock()
	order := s.order
	s.order = nil
	var due []func()
	for _, id := range order {
		if cb, ok := s.pending[id]; ok {
			due = append(due, cb)
			delete(s.pending, id)
		}
	}
	s.mu.Unlock()

	for _, cb := range due {
		cb()
	}
	return len(due)
}

// TickerScheduler fires queued callbacks on a fixed display cadence from a
// single goroutine, so frames never overlap.
type TickerScheduler struct {
	manual   *ManualScheduler
	interval time.Duration

	// OnFrame runs after each batch of callbacks (e.g. present the screen)
	OnFrame func(dt time.Duration)
}

func NewTickerScheduler(fps int) *TickerScheduler {
	if fps <= 0 {
		fps = 60
	}
	return &TickerScheduler{
		manual:   NewManualScheduler(),
		interval: time.Second / time.Duration(fps),
	}
}

func (s *TickerScheduler) RequestFrame(cb func()) FrameID { return s.manual.RequestFrame(cb) }

func (s *TickerScheduler) CancelFrame(id FrameID) { s.manual.CancelFrame(id) }

// Run drives frames until ctx is cancelled
func (s *TickerScheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			s.manual.RunNext()
			if s.OnFrame != nil {
				s.OnFrame(dt)
			}
		}
	}
}
