package engine

import (
	"log"
	"sync"

	"github.com/ivlev/scrollscene/internal/keyframe"
	"github.com/ivlev/scrollscene/internal/scene"
	"github.com/ivlev/scrollscene/internal/scroll"
)

// Environment answers the page geometry questions asked every tick
type Environment interface {
	ViewportHeight() float64
	// ScrollableHeight is the document height minus one viewport
	ScrollableHeight() float64
}

// StaticEnvironment is a fixed page geometry
type StaticEnvironment struct {
	Viewport   float64
	Scrollable float64
}

func (e StaticEnvironment) ViewportHeight() float64   { return e.Viewport }
func (e StaticEnvironment) ScrollableHeight() float64 { return e.Scrollable }

// Loop re-runs the animators once per frame while enabled
type Loop struct {
	Animator  *Animator
	Scroll    scroll.Provider
	Env       Environment
	Scheduler Scheduler

	// StartViewports overrides scroll.CameraStartViewports when positive
	StartViewports float64

	mu             sync.Mutex
	frame          FrameID
	scrollProgress float64
	cameraProgress float64
}

func NewLoop(a *Animator, sp scroll.Provider, env Environment, sched Scheduler) *Loop {
	return &Loop{
		Animator:  a,
		Scroll:    sp,
		Env:       env,
		Scheduler: sched,
	}
}

// Running reports whether a frame is scheduled
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frame != 0
}

// Progress returns the last computed intro and camera progress
func (l *Loop) Progress() (scrollProgress, cameraProgress float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.scrollProgress, l.cameraProgress
}

// Enable hands the camera to the scroll animation and starts the loop
func (l *Loop) Enable() {
	log.Println("[*] Enabling scroll animations")
	l.Animator.SetEnabled(true)
	l.Animator.State.SetCameraMode(scene.ModeScroll)
	l.Start()
}

// Disable hands the camera to the orbit controller and stops the loop
func (l *Loop) Disable() {
	log.Println("[*] Disabling scroll animations")
	l.Animator.SetEnabled(false)
	l.Animator.State.SetCameraMode(scene.ModeOrbit)
	l.Cleanup()
}

// Start schedules the first frame if enabled and not already running
func (l *Loop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.Animator.Enabled() || l.frame != 0 {
		return
	}
	l.schedule()
}

// schedule keeps at most one frame queued. Caller holds l.mu.
func (l *Loop) schedule() {
	if l.frame != 0 {
		l.Scheduler.CancelFrame(l.frame)
	}
	l.frame = l.Scheduler.RequestFrame(l.Tick)
}

// Cleanup cancels the scheduled frame
func (l *Loop) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.frame != 0 {
		l.Scheduler.CancelFrame(l.frame)
		l.frame = 0
	}
}

// Tick runs one animation frame and reschedules itself while enabled
func (l *Loop) Tick() {
	if !l.Animator.Enabled() || l.Scroll == nil {
		l.mu.Lock()
		l.frame = 0
		l.mu.Unlock()
		return
	}

	l.Step(l.Scroll.Offset())

	// Пока шел кадр, анимацию могли выключить
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Animator.Enabled() {
		l.schedule()
	} else {
		l.frame = 0
	}
}

// Step applies one scroll offset to every animator
func (l *Loop) Step(offset float64) scroll.Progress {
	viewports := l.StartViewports
	if viewports <= 0 {
		viewports = scroll.CameraStartViewports
	}
	p := scroll.MapWith(viewports, offset, l.Env.ViewportHeight(), l.Env.ScrollableHeight())

	a := l.Animator
	switch p.Phase {
	case scroll.PhaseIntro:
		a.UpdateSceneParams(p.Intro)
		a.UpdateLights(p.Intro)
		a.UpdateCamera(0)
	case scroll.PhaseCamera:
		// ASCII уже в конечном состоянии, свет держит последний ключ
		a.UpdateSceneParams(1)
		a.UpdateLights(LightContinuationProgress(p.Camera))
		a.UpdateCamera(p.Camera)
	}

	l.mu.Lock()
	l.scrollProgress, l.cameraProgress = p.Intro, p.Camera
	l.mu.Unlock()
	return p
}

// SetProgress jumps the ASCII parameters and the camera to a manual
// progress value. Lights keep their current state.
func (l *Loop) SetProgress(p float64) {
	p = keyframe.Clamp01(p)

	l.mu.Lock()
	l.scrollProgress = p
	l.mu.Unlock()

	l.Animator.UpdateSceneParams(p)
	l.Animator.UpdateCamera(p)
}
