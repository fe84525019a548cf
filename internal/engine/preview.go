package engine

import (
	"context"
	"fmt"
	"image"
	"log"
	"math"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/ivlev/scrollscene/internal/config"
	"github.com/ivlev/scrollscene/internal/director"
	"github.com/ivlev/scrollscene/internal/effects"
	"github.com/ivlev/scrollscene/internal/renderer"
	"github.com/ivlev/scrollscene/internal/scene"
	"github.com/ivlev/scrollscene/internal/scroll"
	"github.com/ivlev/scrollscene/internal/source"
)

const (
	wheelStep  = 120.0
	arrowStep  = 60.0
	orbitStep  = 0.05
	statusHelp = "o: orbit | 1-4: presets | e: light keys | a: ascii | r: reset | q: quit"
)

// TerminalCell is the pixel size one terminal cell stands for
var TerminalCell = image.Pt(8, 16)

// PresetKeys binds the number keys to light presets
var PresetKeys = map[rune]string{
	'1': "original",
	'2': "dramatic",
	'3': "soft",
	'4': "custom",
}

// terminalEnvironment measures the page against the terminal window, the
// way a browser measures it against its inner height.
type terminalEnvironment struct {
	mu       sync.Mutex
	document float64
	viewport float64
}

func (e *terminalEnvironment) ViewportHeight() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewport
}

func (e *terminalEnvironment) ScrollableHeight() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return math.Max(0, e.document-e.viewport)
}

func (e *terminalEnvironment) setViewport(v float64) {
	e.mu.Lock()
	e.viewport = v
	e.mu.Unlock()
}

// Preview is the interactive terminal session. The terminal plays the
// browser: its height is the viewport, input feeds the smooth scroller and
// the ticker drives the animation loop.
type Preview struct {
	Config    *config.Config
	State     *scene.State
	Renderer  *renderer.Renderer
	Effect    *effects.ASCIIEffect
	Terminal  *renderer.Terminal
	Backdrops *source.Cache
	Boot      *scene.Boot
	Scroller  *scroll.SmoothScroller
	Loop      *Loop

	env     *terminalEnvironment
	sched   *TickerScheduler
	started time.Time
	size    image.Point // терминал в ячейках на момент последнего кадра

	mu      sync.Mutex
	lastErr error
}

// NewPreview sizes the frame and the page viewport from the terminal.
// backdrops may be nil for the procedural grid.
func NewPreview(cfg *config.Config, st *scene.State, sc *director.Scenario, eff *effects.ASCIIEffect, term *renderer.Terminal, backdrops *source.Cache) *Preview {
	sched := NewTickerScheduler(cfg.FPS)
	env := &terminalEnvironment{document: cfg.DocumentHeight}
	scroller := scroll.NewSmoothScroller(0)

	loop := NewLoop(NewAnimator(st, sc), scroller, env, sched)
	loop.StartViewports = sc.Scroll.CameraStartViewports

	p := &Preview{
		Config:    cfg,
		State:     st,
		Renderer:  renderer.New(1, 1),
		Effect:    eff,
		Terminal:  term,
		Backdrops: backdrops,
		Boot:      scene.NewBoot(),
		Scroller:  scroller,
		Loop:      loop,
		env:       env,
		sched:     sched,
	}
	p.fitTerminal()
	sched.OnFrame = p.Frame
	return p
}

// fitTerminal follows a terminal resize: new frame size, new viewport and
// scroll limit. Runs on the scheduler goroutine only.
func (p *Preview) fitTerminal() {
	cols, rows := p.Terminal.Viewport()
	size := image.Pt(cols, rows)
	if size == p.size {
		return
	}
	p.size = size

	w, h := max(1, cols*TerminalCell.X), max(1, rows*TerminalCell.Y)
	p.Renderer.Width, p.Renderer.Height = w, h
	bd, err := p.Backdrops.Get(w, h)
	if err != nil {
		p.setErr(err)
		log.Printf("[!] Не удалось загрузить фон: %v", err)
	}
	p.Renderer.Backdrop = bd

	p.env.setViewport(float64(h))
	p.Scroller.SetLimit(p.env.ScrollableHeight())
}

// Viewport is the page viewport height in pixels
func (p *Preview) Viewport() float64 { return p.env.ViewportHeight() }

// Scrollable is the page height left to scroll
func (p *Preview) Scrollable() float64 { return p.env.ScrollableHeight() }

// Run boots the scene, starts the loop and blocks until ctx is done or the
// user quits.
func (p *Preview) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p.bootSequence()
	p.started = time.Now()

	p.Scroller.Start()
	defer p.Scroller.Destroy()
	p.Loop.Enable()
	defer p.Loop.Cleanup()

	go func() {
		for {
			ev := p.Terminal.Screen.PollEvent()
			if ev == nil {
				return
			}
			if p.HandleEvent(ev) {
				cancel()
				return
			}
		}
	}()

	err := p.sched.Run(ctx)
	if err == context.Canceled {
		return nil
	}
	return err
}

func (p *Preview) bootSequence() {
	p.Boot.Reset()
	for _, phase := range []scene.BootPhase{scene.BootBooting, scene.BootLoadingScene} {
		p.Boot.SetPhase(phase)
		p.Terminal.Status("[*] %s...", phase)
		p.Terminal.Show()
	}
	p.Boot.MarkSceneReady()
	p.Boot.CompleteBootSequence()
}

// HandleEvent applies one input event. It reports true when the user asked
// to quit.
func (p *Preview) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		p.Terminal.Screen.Sync()
	case *tcell.EventMouse:
		switch {
		case ev.Buttons()&tcell.WheelDown != 0:
			p.Scroller.ScrollBy(wheelStep)
		case ev.Buttons()&tcell.WheelUp != 0:
			p.Scroller.ScrollBy(-wheelStep)
		}
	case *tcell.EventKey:
		return p.handleKey(ev)
	}
	return false
}

func (p *Preview) handleKey(ev *tcell.EventKey) bool {
	orbit := p.State.CameraMode() == scene.ModeOrbit

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyPgDn:
		p.Scroller.ScrollBy(p.Viewport())
	case tcell.KeyPgUp:
		p.Scroller.ScrollBy(-p.Viewport())
	case tcell.KeyHome:
		p.Scroller.ScrollTo(0, false)
	case tcell.KeyEnd:
		p.Scroller.ScrollTo(p.Scrollable(), false)
	case tcell.KeyDown:
		if orbit {
			p.moveCamera(mgl64.Vec3{0, 0, orbitStep})
		} else {
			p.Scroller.ScrollBy(arrowStep)
		}
	case tcell.KeyUp:
		if orbit {
			p.moveCamera(mgl64.Vec3{0, 0, -orbitStep})
		} else {
			p.Scroller.ScrollBy(-arrowStep)
		}
	case tcell.KeyLeft:
		if orbit {
			p.moveCamera(mgl64.Vec3{-orbitStep, 0, 0})
		}
	case tcell.KeyRight:
		if orbit {
			p.moveCamera(mgl64.Vec3{orbitStep, 0, 0})
		}
	case tcell.KeyRune:
		return p.handleRune(ev.Rune())
	}
	return false
}

func (p *Preview) handleRune(r rune) bool {
	switch r {
	case 'q', 'Q':
		return true
	case 'o', 'O':
		if p.Loop.Animator.Enabled() {
			p.Loop.Disable()
		} else {
			p.Loop.Enable()
		}
	case 'a', 'A':
		p.State.UpdateToggles(func(t *scene.Toggles) { t.EnableASCII = !t.EnableASCII })
	case 'e', 'E':
		if err := scene.AttachAnimationExample(p.State); err != nil {
			p.setErr(err)
			log.Printf("[!] Анимация света: %v", err)
		}
	case 'r', 'R':
		p.reset()
	default:
		if name, ok := PresetKeys[r]; ok {
			if err := scene.ApplyPreset(p.State, name); err != nil {
				p.setErr(err)
				log.Printf("[!] Пресет %s: %v", name, err)
			}
		}
	}
	return false
}

// reset reloads the scene: defaults, top of the page, boot again
func (p *Preview) reset() {
	p.Loop.Disable()
	p.State.Reset()
	p.Scroller.ScrollTo(0, true)
	p.bootSequence()
	p.Loop.Enable()
	log.Println("[*] Сцена сброшена")
}

// moveCamera nudges the camera; only the orbit controller may do this
func (p *Preview) moveCamera(delta mgl64.Vec3) {
	c := p.State.Camera()
	c.Position = c.Position.Add(delta)
	p.State.SetCameraIfMode(scene.ModeOrbit, c)
}

// Frame advances the scroller and repaints the terminal. It runs on the
// scheduler goroutine right after the loop tick.
func (p *Preview) Frame(dt time.Duration) {
	// Размер терминала проверяем здесь, а не в обработчике событий:
	// рендерер принадлежит только этой горутине
	p.fitTerminal()
	p.Scroller.Advance(dt)

	snap := p.State.Snapshot()
	img := p.Renderer.Render(snap, time.Since(p.started).Seconds())
	grid, err := p.Effect.Cells(img, snap.Effect)
	p.Renderer.Pool.Put(img)
	if err != nil {
		p.setErr(err)
	}

	p.Terminal.Draw(grid)
	p.Terminal.Status("%s", p.StatusLine(snap))
	p.Terminal.Show()
}

// StatusLine describes the current scroll position and scene parameters
func (p *Preview) StatusLine(snap scene.Snapshot) string {
	intro, cam := p.Loop.Progress()
	line := fmt.Sprintf("[%s] %.0f/%.0f px | intro %.2f | camera %.2f | cell %d font %d | %s",
		snap.Mode, p.Scroller.Offset(), p.Scrollable(),
		intro, cam, snap.ASCII.CellSize, snap.ASCII.FontSize, statusHelp)
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lastErr != nil {
		line = fmt.Sprintf("[!] %v | %s", p.lastErr, line)
	}
	return line
}

func (p *Preview) setErr(err error) {
	p.mu.Lock()
	p.lastErr = err
	p.mu.Unlock()
}
