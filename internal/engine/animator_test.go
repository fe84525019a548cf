package engine

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ivlev/scrollscene/internal/director"
	"github.com/ivlev/scrollscene/internal/scene"
)

func newTestAnimator() (*Animator, *scene.State) {
	st := scene.NewState()
	return NewAnimator(st, director.DefaultScenario()), st
}

func TestUpdateSceneParams(t *testing.T) {
	a, st := newTestAnimator()

	tests := []struct {
		p              float64
		cell, fontSize int
	}{
		{0, 45, 15},
		{0.5, 27, 30}, // 29.5 rounds up
		{1, 9, 44},
		{-1, 45, 15},
		{2, 9, 44},
	}

	for _, tt := range tests {
		cell, font := a.UpdateSceneParams(tt.p)
		if cell != tt.cell || font != tt.fontSize {
			t.Errorf("p=%.2f: expected %d/%d, got %d/%d", tt.p, tt.cell, tt.fontSize, cell, font)
		}
		ascii := st.ASCII()
		if ascii.CellSize != cell || ascii.FontSize != font {
			t.Errorf("p=%.2f: state not updated, got %d/%d", tt.p, ascii.CellSize, ascii.FontSize)
		}
	}
}

func TestCameraPoseAtKeyframes(t *testing.T) {
	a, _ := newTestAnimator()
	kfs := director.DefaultCameraKeyframes()

	tests := []struct {
		p  float64
		kf director.CameraKeyframe
	}{
		{0, kfs[0]},
		{0.5, kfs[1]},
		{1, kfs[2]},
	}

	for _, tt := range tests {
		pose := a.CameraPose(tt.p)
		if pose.Position != tt.kf.Position || pose.Rotation != tt.kf.Rotation {
			t.Errorf("p=%.1f: expected %v/%v, got %v/%v", tt.p, tt.kf.Position, tt.kf.Rotation, pose.Position, pose.Rotation)
		}
	}
}

func TestUpdateCameraRespectsMode(t *testing.T) {
	a, st := newTestAnimator()

	if !a.UpdateCamera(1) {
		t.Fatal("Expected camera update in scroll mode")
	}
	if st.Camera().Position != director.DefaultCameraKeyframes()[2].Position {
		t.Errorf("Unexpected camera position %v", st.Camera().Position)
	}

	st.SetCameraMode(scene.ModeOrbit)
	before := st.Camera()
	for _, p := range []float64{0, 0.3, 0.5, 1} {
		if a.UpdateCamera(p) {
			t.Errorf("p=%.1f: camera must not move in orbit mode", p)
		}
	}
	if st.Camera() != before {
		t.Error("Camera changed in orbit mode")
	}

	st.SetCameraMode(scene.ModeScroll)
	a.SetEnabled(false)
	if a.UpdateCamera(0) {
		t.Error("Camera must not move while animations are disabled")
	}
}

func TestAnimateLightPartialTrack(t *testing.T) {
	l := &scene.Light{
		ID: "spot", Type: scene.LightSpot, Position: mgl64.Vec3{4, 6, 2}, Color: "#ffffff",
		Intensity: 2, Animatable: true,
		Keyframes: []scene.LightKeyframe{
			{Progress: 0, Intensity: scene.Intensity(2.0)},
			{Progress: 1, Intensity: scene.Intensity(0.5)},
		},
	}

	AnimateLight(l, 0.5)

	if l.Intensity != 1.25 {
		t.Errorf("Expected intensity 1.25, got %f", l.Intensity)
	}
	if l.Position != (mgl64.Vec3{4, 6, 2}) {
		t.Errorf("Position must stay untouched, got %v", l.Position)
	}
	if l.Color != "#ffffff" {
		t.Errorf("Color must stay untouched, got %s", l.Color)
	}
}

func TestAnimateLightFieldsMissingAtOneEnd(t *testing.T) {
	l := &scene.Light{
		ID: "mixed", Type: scene.LightPoint, Position: mgl64.Vec3{1, 1, 1}, Intensity: 1, Color: "#000000",
		Animatable: true,
		Keyframes: []scene.LightKeyframe{
			{Progress: 0, Position: scene.Vec(0, 0, 0), Intensity: scene.Intensity(1), Color: "#ff0000"},
			{Progress: 0.5, Intensity: scene.Intensity(3)},
			{Progress: 1, Position: scene.Vec(10, 10, 10), Intensity: scene.Intensity(5), Color: "#0000ff"},
		},
	}

	AnimateLight(l, 0.25)

	if l.Position != (mgl64.Vec3{1, 1, 1}) {
		t.Errorf("Position defined on one side only must not change, got %v", l.Position)
	}
	if l.Color != "#000000" {
		t.Errorf("Color defined on one side only must not change, got %s", l.Color)
	}
	if l.Intensity != 2 {
		t.Errorf("Expected intensity 2, got %f", l.Intensity)
	}
}

func TestAnimateLightColorStep(t *testing.T) {
	l := &scene.Light{
		ID: "c", Type: scene.LightPoint, Color: "#ff0000", Animatable: true,
		Keyframes: []scene.LightKeyframe{
			{Progress: 0, Color: "#ff0000"},
			{Progress: 1, Color: "#00ff00"},
		},
	}

	AnimateLight(l, 0.49)
	if l.Color != "#ff0000" {
		t.Errorf("p=0.49: expected #ff0000, got %s", l.Color)
	}
	AnimateLight(l, 0.51)
	if l.Color != "#00ff00" {
		t.Errorf("p=0.51: expected #00ff00, got %s", l.Color)
	}
}

func TestAnimateLightInert(t *testing.T) {
	withoutTrack := &scene.Light{ID: "a", Type: scene.LightPoint, Intensity: 1, Animatable: true}
	AnimateLight(withoutTrack, 0.7)
	if withoutTrack.Intensity != 1 {
		t.Error("Animatable light without keyframes must stay inert")
	}

	notAnimatable := &scene.Light{ID: "b", Type: scene.LightPoint, Intensity: 1,
		Keyframes: []scene.LightKeyframe{
			{Progress: 0, Intensity: scene.Intensity(0)},
			{Progress: 1, Intensity: scene.Intensity(0)},
		}}
	AnimateLight(notAnimatable, 0.7)
	if notAnimatable.Intensity != 1 {
		t.Error("Non-animatable light must stay inert")
	}
}

func TestUpdateLightsThroughState(t *testing.T) {
	a, st := newTestAnimator()
	if err := scene.AttachAnimationExample(st); err != nil {
		t.Fatal(err)
	}

	a.UpdateLights(0.5)

	red, _ := st.Light("red")
	if red.Position != (mgl64.Vec3{2, 3, 2}) || red.Intensity != 2.0 {
		t.Errorf("Unexpected red light at 0.5: %v / %f", red.Position, red.Intensity)
	}

	spot, _ := st.Light("spotlight")
	if spot.Intensity != 1.25 {
		t.Errorf("Expected spotlight intensity 1.25, got %f", spot.Intensity)
	}
	if spot.Position != (mgl64.Vec3{4, 6, 2}) {
		t.Errorf("Spotlight position must stay, got %v", spot.Position)
	}

	green, _ := st.Light("green")
	if green.Intensity != 1.5 {
		t.Errorf("Inert green light changed: %f", green.Intensity)
	}
}

func TestLightContinuationProgress(t *testing.T) {
	for _, cam := range []float64{0, 0.25, 1} {
		if got := LightContinuationProgress(cam); got != 1 {
			t.Errorf("camera=%.2f: expected clamped 1, got %f", cam, got)
		}
	}
}
