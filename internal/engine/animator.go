package engine

import (
	"math"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ivlev/scrollscene/internal/director"
	"github.com/ivlev/scrollscene/internal/keyframe"
	"github.com/ivlev/scrollscene/internal/scene"
)

// lightContinuation stretches light progress into the camera phase. The
// result is clamped to 1, so lights hold their final keyframe once the
// camera starts moving.
const lightContinuation = 0.5

// Animator maps progress values onto the shared scene state
type Animator struct {
	State *scene.State

	cellSize  keyframe.Track[float64]
	fontSize  keyframe.Track[float64]
	cameraPos keyframe.Track[mgl64.Vec3]
	cameraRot keyframe.Track[mgl64.Vec3]

	enabled atomic.Bool
}

// NewAnimator builds the animation tracks from a validated scenario.
// The tracks are fixed for the animator's lifetime.
func NewAnimator(st *scene.State, sc *director.Scenario) *Animator {
	pos, rot := sc.CameraTracks()
	a := &Animator{
		State: st,
		cellSize: keyframe.Track[float64]{
			{Progress: 0, Value: float64(sc.ASCII.CellSizeStart)},
			{Progress: 1, Value: float64(sc.ASCII.CellSizeEnd)},
		},
		fontSize: keyframe.Track[float64]{
			{Progress: 0, Value: float64(sc.ASCII.FontSizeStart)},
			{Progress: 1, Value: float64(sc.ASCII.FontSizeEnd)},
		},
		cameraPos: pos,
		cameraRot: rot,
	}
	a.enabled.Store(true)
	return a
}

func (a *Animator) Enabled() bool { return a.enabled.Load() }

func (a *Animator) SetEnabled(v bool) { a.enabled.Store(v) }

// SceneParams computes the rounded cell and font size for intro progress
func (a *Animator) SceneParams(p float64) (cellSize, fontSize int) {
	cellSize = int(math.Round(keyframe.Interpolate(a.cellSize, p, keyframe.Lerp)))
	fontSize = int(math.Round(keyframe.Interpolate(a.fontSize, p, keyframe.Lerp)))
	return cellSize, fontSize
}

// UpdateSceneParams writes the ASCII cell and font size for intro progress
func (a *Animator) UpdateSceneParams(p float64) (cellSize, fontSize int) {
	cellSize, fontSize = a.SceneParams(p)
	a.State.SetSceneParams(cellSize, fontSize)
	return cellSize, fontSize
}

// CameraPose interpolates the camera track
func (a *Animator) CameraPose(p float64) scene.Camera {
	return scene.Camera{
		Position: keyframe.Interpolate(a.cameraPos, p, keyframe.LerpVec3),
		Rotation: keyframe.Interpolate(a.cameraRot, p, keyframe.LerpVec3),
	}
}

// UpdateCamera moves the camera along its track. Nothing happens while the
// animator is disabled or an orbit controller owns the camera.
func (a *Animator) UpdateCamera(p float64) bool {
	if !a.Enabled() {
		return false
	}
	return a.State.SetCameraIfMode(scene.ModeScroll, a.CameraPose(p))
}

// UpdateLights animates every animatable light with a keyframe track
func (a *Animator) UpdateLights(p float64) {
	a.State.EachLight(func(l *scene.Light) {
		AnimateLight(l, p)
	})
}

// LightContinuationProgress is the progress fed to lights during the camera phase
func LightContinuationProgress(cameraProgress float64) float64 {
	return keyframe.Clamp01(1 + cameraProgress*lightContinuation)
}

// AnimateLight applies the light's keyframes at progress p. Only attributes
// defined on both bracketing keyframes are written.
func AnimateLight(l *scene.Light, p float64) {
	if !l.IsAnimated() {
		return
	}

	kfs := l.Keyframes
	seg := keyframe.Locate(len(kfs), func(i int) float64 { return kfs[i].Progress }, p)
	from, to := kfs[seg.From], kfs[seg.To]

	if from.Position != nil && to.Position != nil {
		l.Position = keyframe.LerpVec3(*from.Position, *to.Position, seg.Local)
	}
	if from.Intensity != nil && to.Intensity != nil {
		l.Intensity = keyframe.Lerp(*from.Intensity, *to.Intensity, seg.Local)
	}
	if from.Color != "" && to.Color != "" {
		l.Color = keyframe.StepColor(from.Color, to.Color, seg.Local)
	}
}
