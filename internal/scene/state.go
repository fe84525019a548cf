package scene

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

var ErrUnknownLight = errors.New("unknown light")

// CameraMode selects who owns the camera: the scroll animator or a
// user-driven orbit controller.
type CameraMode string

const (
	ModeScroll CameraMode = "scroll"
	ModeOrbit  CameraMode = "orbit"
)

// Camera holds position and Euler rotation (radians, XYZ order)
type Camera struct {
	Position mgl64.Vec3 `yaml:"position"`
	Rotation mgl64.Vec3 `yaml:"rotation"`
}

// ASCIIParams are the post-processing effect parameters
type ASCIIParams struct {
	CellSize      int           `yaml:"cell_size"`
	FontSize      int           `yaml:"font_size"`
	Color         string        `yaml:"color"`
	UseSceneColor bool          `yaml:"use_scene_color"`
	Inverted      bool          `yaml:"inverted"`
	Characters    string        `yaml:"characters"`
	Font          string        `yaml:"font"`
	TextureSize   int           `yaml:"texture_size"`
	CellCount     int           `yaml:"cell_count"`
	Opacity       float64       `yaml:"opacity"`
	Blend         BlendFunction `yaml:"blend"`
}

// Toggles are the scene switches from the controls panel
type Toggles struct {
	ShowControlsPanel   bool `yaml:"show_controls_panel"`
	ShowWireframe       bool `yaml:"show_wireframe"`
	ShowRotationAxis    bool `yaml:"show_rotation_axis"`
	EnableASCII         bool `yaml:"enable_ascii"`
	EnableColoredLights bool `yaml:"enable_colored_lights"`
	ShowLightHelpers    bool `yaml:"show_light_helpers"`
}

// FloatEffect is the idle bobbing of the geometry
type FloatEffect struct {
	Enabled bool    `yaml:"enabled"`
	Speed   float64 `yaml:"speed"`
	Factor  float64 `yaml:"factor"`
	Range   float64 `yaml:"range"`
}

const DefaultCharacters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz1234567890"

func DefaultCamera() Camera {
	return Camera{
		Position: mgl64.Vec3{0.06, 0.04, 0.51},
		Rotation: mgl64.Vec3{-0.09, 0.13, 0.01},
	}
}

func DefaultASCII() ASCIIParams {
	return ASCIIParams{
		CellSize:      64,
		FontSize:      10,
		Color:         "#ffffff",
		UseSceneColor: true,
		Characters:    DefaultCharacters,
		Font:          "Arial",
		TextureSize:   1024,
		CellCount:     16,
		Opacity:       1,
		Blend:         BlendNormal,
	}
}

func DefaultToggles() Toggles {
	return Toggles{
		ShowControlsPanel:   true,
		ShowWireframe:       true,
		EnableASCII:         true,
		EnableColoredLights: true,
	}
}

// State is the scene-control state shared between animators and renderers.
// One instance lives for the whole session; every access goes through the
// same mutex.
type State struct {
	mu      sync.RWMutex
	camera  Camera
	mode    CameraMode
	lights  map[string]*Light
	ascii   ASCIIParams
	toggles Toggles
	float   FloatEffect
}

// NewState creates the state with the built-in defaults and original lights
func NewState() *State {
	s := &State{}
	s.reset()
	return s
}

// Reset restores the defaults, as a page reload would
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *State) reset() {
	s.camera = DefaultCamera()
	s.mode = ModeScroll
	s.ascii = DefaultASCII()
	s.toggles = DefaultToggles()
	s.float = FloatEffect{Speed: 1, Range: 0.1}
	s.resetLights()
}

func (s *State) resetLights() {
	s.lights = make(map[string]*Light)
	for _, l := range OriginalLights() {
		s.lights[l.ID] = l
	}
}

func (s *State) Camera() Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.camera
}

func (s *State) SetCamera(c Camera) {
	s.mu.Lock()
	s.camera = c
	s.mu.Unlock()
}

func (s *State) CameraMode() CameraMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

func (s *State) SetCameraMode(m CameraMode) {
	s.mu.Lock()
	s.mode = m
	s.mu.Unlock()
}

// SetCameraIfMode writes the camera only while mode still matches. The check
// and the write happen under one lock so an orbit switch cannot interleave.
func (s *State) SetCameraIfMode(mode CameraMode, c Camera) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != mode {
		return false
	}
	s.camera = c
	return true
}

func (s *State) ASCII() ASCIIParams {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ascii
}

// SetSceneParams writes the animated ASCII cell and font sizes
func (s *State) SetSceneParams(cellSize, fontSize int) {
	s.mu.Lock()
	s.ascii.CellSize = cellSize
	s.ascii.FontSize = fontSize
	s.mu.Unlock()
}

func (s *State) UpdateASCII(fn func(p *ASCIIParams)) {
	s.mu.Lock()
	fn(&s.ascii)
	s.mu.Unlock()
}

func (s *State) Toggles() Toggles {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.toggles
}

func (s *State) UpdateToggles(fn func(t *Toggles)) {
	s.mu.Lock()
	fn(&s.toggles)
	s.mu.Unlock()
}

func (s *State) FloatEffect() FloatEffect {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.float
}

func (s *State) SetFloatEffect(f FloatEffect) {
	s.mu.Lock()
	s.float = f
	s.mu.Unlock()
}

// AddLight stores a copy of l under its id, replacing any previous light
// with the same id.
func (s *State) AddLight(l Light) error {
	if err := l.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.lights[l.ID] = l.Clone()
	s.mu.Unlock()
	return nil
}

func (s *State) RemoveLight(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lights[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLight, id)
	}
	delete(s.lights, id)
	return nil
}

// UpdateLight mutates one light in place. Changes that leave the light
// invalid are rolled back.
func (s *State) UpdateLight(id string, fn func(l *Light)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lights[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLight, id)
	}

	next := l.Clone()
	fn(next)
	next.ID = id
	if err := next.Validate(); err != nil {
		return err
	}
	s.lights[id] = next
	return nil
}

func (s *State) ToggleLight(id string) error {
	return s.UpdateLight(id, func(l *Light) { l.Enabled = !l.Enabled })
}

// Light returns a copy of the light with the given id
func (s *State) Light(id string) (Light, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.lights[id]
	if !ok {
		return Light{}, false
	}
	return *l.Clone(), true
}

// Lights returns copies of all lights ordered by id
func (s *State) Lights() []Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(*Light) bool { return true })
}

func (s *State) LightsByType(t LightType) []Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(l *Light) bool { return l.Type == t })
}

func (s *State) EnabledLights() []Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(l *Light) bool { return l.Enabled })
}

// ReplaceLights swaps the whole collection
func (s *State) ReplaceLights(lights []*Light) error {
	next := make(map[string]*Light, len(lights))
	for _, l := range lights {
		if err := l.Validate(); err != nil {
			return err
		}
		next[l.ID] = l.Clone()
	}
	s.mu.Lock()
	s.lights = next
	s.mu.Unlock()
	return nil
}

// ResetLights restores the original rig
func (s *State) ResetLights() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLights()
}

// EachLight runs fn on every stored light under the write lock. Used by the
// light animator to mutate in place.
func (s *State) EachLight(fn func(l *Light)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.sortedIDs() {
		fn(s.lights[id])
	}
}

func (s *State) collect(keep func(*Light) bool) []Light {
	out := make([]Light, 0, len(s.lights))
	for _, id := range s.sortedIDs() {
		if l := s.lights[id]; keep(l) {
			out = append(out, *l.Clone())
		}
	}
	return out
}

func (s *State) sortedIDs() []string {
	ids := make([]string, 0, len(s.lights))
	for id := range s.lights {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Snapshot is an immutable copy of the state for one rendered frame
type Snapshot struct {
	Camera  Camera
	Mode    CameraMode
	Lights  []Light
	ASCII   ASCIIParams
	Effect  EffectProps
	Toggles Toggles
	Float   FloatEffect
}

func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Camera:  s.camera,
		Mode:    s.mode,
		Lights:  s.collect(func(*Light) bool { return true }),
		ASCII:   s.ascii,
		Effect:  effectProps(s.ascii, s.toggles),
		Toggles: s.toggles,
		Float:   s.float,
	}
}

func (s *State) EffectProps() EffectProps {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return effectProps(s.ascii, s.toggles)
}
