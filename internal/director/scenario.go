package director

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ivlev/scrollscene/internal/keyframe"
	"github.com/ivlev/scrollscene/internal/scene"
	"github.com/ivlev/scrollscene/internal/scroll"
)

// Scenario describes how the scene reacts to scrolling
type Scenario struct {
	Version string             `yaml:"version"`
	Scroll  ScrollSettings     `yaml:"scroll"`
	ASCII   ASCIIRange         `yaml:"ascii"`
	Camera  []CameraKeyframe   `yaml:"camera"`
	Lights  []scene.Light      `yaml:"lights,omitempty"`
	Effect  *scene.ASCIIParams `yaml:"effect,omitempty"`
}

// ScrollSettings controls the intro/camera phase split
type ScrollSettings struct {
	CameraStartViewports float64 `yaml:"camera_start_viewports"`
}

// ASCIIRange is the start and end of the animated effect parameters
type ASCIIRange struct {
	CellSizeStart int `yaml:"cell_size_start"`
	CellSizeEnd   int `yaml:"cell_size_end"`
	FontSizeStart int `yaml:"font_size_start"`
	FontSizeEnd   int `yaml:"font_size_end"`
}

// CameraKeyframe represents a camera pose at a point of camera progress
type CameraKeyframe struct {
	Progress float64    `yaml:"progress"`
	Position mgl64.Vec3 `yaml:"position"` // World position
	Rotation mgl64.Vec3 `yaml:"rotation"` // Euler angles, radians
}

const (
	CellSizeStart = 45
	CellSizeEnd   = 9
	FontSizeStart = 15
	FontSizeEnd   = 44
)

// DefaultCameraKeyframes: start close, zoom out, then move to the side
func DefaultCameraKeyframes() []CameraKeyframe {
	return []CameraKeyframe{
		{Progress: 0, Position: mgl64.Vec3{0.06, 0.04, 0.48}, Rotation: mgl64.Vec3{-0.15, 0.15, 0.02}},
		{Progress: 0.5, Position: mgl64.Vec3{0.06, 0.04, 1.26}, Rotation: mgl64.Vec3{-0.06, 0.06, 0}},
		{Progress: 1, Position: mgl64.Vec3{-0.81, 0.04, 1.53}, Rotation: mgl64.Vec3{-0.04, -0.16, -0.01}},
	}
}

// DefaultScenario returns the built-in scroll choreography
func DefaultScenario() *Scenario {
	return &Scenario{
		Version: "1.0",
		Scroll:  ScrollSettings{CameraStartViewports: scroll.CameraStartViewports},
		ASCII: ASCIIRange{
			CellSizeStart: CellSizeStart,
			CellSizeEnd:   CellSizeEnd,
			FontSizeStart: FontSizeStart,
			FontSizeEnd:   FontSizeEnd,
		},
		Camera: DefaultCameraKeyframes(),
	}
}

// Validate rejects scenarios the animators cannot run
func (s *Scenario) Validate() error {
	if s.Scroll.CameraStartViewports <= 0 {
		return fmt.Errorf("camera_start_viewports must be positive, got %v", s.Scroll.CameraStartViewports)
	}
	if s.ASCII.CellSizeStart <= 0 || s.ASCII.CellSizeEnd <= 0 {
		return fmt.Errorf("cell sizes must be positive, got %d..%d", s.ASCII.CellSizeStart, s.ASCII.CellSizeEnd)
	}
	if s.ASCII.FontSizeStart <= 0 || s.ASCII.FontSizeEnd <= 0 {
		return fmt.Errorf("font sizes must be positive, got %d..%d", s.ASCII.FontSizeStart, s.ASCII.FontSizeEnd)
	}

	progresses := make([]float64, len(s.Camera))
	for i, kf := range s.Camera {
		progresses[i] = kf.Progress
	}
	if err := keyframe.Validate(progresses); err != nil {
		return fmt.Errorf("camera track: %w", err)
	}

	seen := make(map[string]bool, len(s.Lights))
	for i := range s.Lights {
		l := &s.Lights[i]
		if err := l.Validate(); err != nil {
			return err
		}
		if seen[l.ID] {
			return fmt.Errorf("duplicate light id %q", l.ID)
		}
		seen[l.ID] = true
	}
	return nil
}

// CameraTracks splits the camera keyframes into position and rotation tracks
func (s *Scenario) CameraTracks() (keyframe.Track[mgl64.Vec3], keyframe.Track[mgl64.Vec3]) {
	pos := make(keyframe.Track[mgl64.Vec3], len(s.Camera))
	rot := make(keyframe.Track[mgl64.Vec3], len(s.Camera))
	for i, kf := range s.Camera {
		pos[i] = keyframe.Keyframe[mgl64.Vec3]{Progress: kf.Progress, Value: kf.Position}
		rot[i] = keyframe.Keyframe[mgl64.Vec3]{Progress: kf.Progress, Value: kf.Rotation}
	}
	return pos, rot
}

// Apply pushes the scenario's lights and effect overrides into the state.
// A scenario without lights keeps the state's current rig.
func (s *Scenario) Apply(st *scene.State) error {
	if len(s.Lights) > 0 {
		lights := make([]*scene.Light, len(s.Lights))
		for i := range s.Lights {
			lights[i] = &s.Lights[i]
		}
		if err := st.ReplaceLights(lights); err != nil {
			return fmt.Errorf("apply lights: %w", err)
		}
	}

	if s.Effect != nil {
		effect := *s.Effect
		st.UpdateASCII(func(p *scene.ASCIIParams) { *p = effect })
	}
	return nil
}
