package scene

import (
	"fmt"
	"math"
	"sort"
)

// Preset rearranges the lights of a state for a mood
type Preset func(s *State) error

// Presets maps preset names to their setup functions
var Presets = map[string]Preset{
	"original": ApplyOriginal,
	"dramatic": ApplyDramatic,
	"soft":     ApplySoft,
	"custom":   ApplyCustomLights,
}

// PresetNames returns the registered preset names in stable order
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for n := range Presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ApplyPreset looks up and applies a preset by name
func ApplyPreset(s *State, name string) error {
	p, ok := Presets[name]
	if !ok {
		return fmt.Errorf("unknown light preset: %s", name)
	}
	return p(s)
}

// OriginalLights is the default rig: five coloured points and a spotlight.
// All are flagged animatable but carry no keyframes until some are attached.
func OriginalLights() []*Light {
	return []*Light{
		{ID: "red", Name: "Red Light", Type: LightPoint, Enabled: true, Position: *Vec(3, 2, 1), Color: "#ff0000", Intensity: 1.5, Distance: 10, Decay: 1, Animatable: true},
		{ID: "green", Name: "Green Light", Type: LightPoint, Enabled: true, Position: *Vec(-3, 2, 1), Color: "#00ff00", Intensity: 1.5, Distance: 10, Decay: 1, Animatable: true},
		{ID: "blue", Name: "Blue Light", Type: LightPoint, Enabled: true, Position: *Vec(0, 2, -3), Color: "#0088ff", Intensity: 1.5, Distance: 10, Decay: 1, Animatable: true},
		{ID: "yellow", Name: "Yellow Light", Type: LightPoint, Enabled: true, Position: *Vec(0, 1, 3), Color: "#ffff00", Intensity: 1.2, Distance: 8, Decay: 1, Animatable: true},
		{ID: "purple", Name: "Purple Light", Type: LightPoint, Enabled: true, Position: *Vec(0, 4, 0), Color: "#ff00ff", Intensity: 1.2, Distance: 10, Decay: 1, Animatable: true},
		{
			ID: "spotlight", Name: "Main Spotlight", Type: LightSpot, Enabled: true,
			Position: *Vec(4, 6, 2), Color: "#ffffff", Intensity: 2.0, Distance: 15, Decay: 1,
			Angle: math.Pi / 6, Penumbra: 0.3, Target: Vec(0, 0, 0), Animatable: true,
		},
	}
}

func ApplyOriginal(s *State) error {
	return s.ReplaceLights(OriginalLights())
}

func disableAll(s *State) {
	s.EachLight(func(l *Light) { l.Enabled = false })
}

func ApplyDramatic(s *State) error {
	disableAll(s)

	lights := []Light{
		{
			ID: "key_light", Name: "Key Light", Type: LightSpot, Enabled: true,
			Position: *Vec(5, 8, 3), Color: "#ff4757", Intensity: 3.0,
			Angle: math.Pi / 8, Penumbra: 0.2, Target: Vec(0, 0, 0),
		},
		{
			ID: "back_light", Name: "Back Light", Type: LightPoint, Enabled: true,
			Position: *Vec(-2, 2, -4), Color: "#3742fa", Intensity: 2.0, Distance: 15, Decay: 1,
		},
	}
	return addAll(s, lights)
}

func ApplySoft(s *State) error {
	disableAll(s)

	lights := []Light{
		{
			ID: "ambient_1", Name: "Soft Ambient 1", Type: LightPoint, Enabled: true,
			Position: *Vec(2, 4, 2), Color: "#ffeaa7", Intensity: 0.8, Distance: 20, Decay: 2,
		},
		{
			ID: "ambient_2", Name: "Soft Ambient 2", Type: LightPoint, Enabled: true,
			Position: *Vec(-2, 4, -2), Color: "#74b9ff", Intensity: 0.6, Distance: 20, Decay: 2,
		},
	}
	return addAll(s, lights)
}

// ApplyCustomLights adds the accent, rim and fill lights, each with its own
// animation track.
func ApplyCustomLights(s *State) error {
	lights := []Light{
		{
			ID: "accent_1", Name: "Accent Light 1", Type: LightPoint, Enabled: true,
			Position: *Vec(1.5, 3, 2), Color: "#ff6b6b", Intensity: 0.8, Distance: 8, Decay: 2,
			Animatable: true,
			Keyframes: []LightKeyframe{
				{Progress: 0, Position: Vec(1.5, 3, 2), Intensity: Intensity(0.8), Color: "#ff6b6b"},
				{Progress: 0.5, Position: Vec(-1.5, 4, 1), Intensity: Intensity(1.2), Color: "#4ecdc4"},
				{Progress: 1, Position: Vec(0, 2, -2), Intensity: Intensity(0.5), Color: "#45b7d1"},
			},
		},
		{
			ID: "rim_light", Name: "Rim Light", Type: LightSpot, Enabled: true,
			Position: *Vec(-4, 4, -2), Color: "#feca57", Intensity: 1.5, Distance: 12, Decay: 1,
			Angle: math.Pi / 4, Penumbra: 0.5, Target: Vec(0, 0, 0),
			Animatable: true,
			Keyframes: []LightKeyframe{
				{Progress: 0, Intensity: Intensity(1.5)},
				{Progress: 0.3, Intensity: Intensity(2.2)},
				{Progress: 0.7, Intensity: Intensity(0.8)},
				{Progress: 1, Intensity: Intensity(1.0)},
			},
		},
		{
			ID: "fill_light", Name: "Fill Light", Type: LightDirectional, Enabled: true,
			Position: *Vec(2, 6, 4), Color: "#ffffff", Intensity: 0.4, Direction: Vec(-1, -2, -2),
			Animatable: true,
			Keyframes: []LightKeyframe{
				{Progress: 0, Intensity: Intensity(0.4)},
				{Progress: 1, Intensity: Intensity(0.1)},
			},
		},
	}
	return addAll(s, lights)
}

// AttachAnimationExample gives the red light a moving, dimming track and
// fades the main spotlight.
func AttachAnimationExample(s *State) error {
	err := s.UpdateLight("red", func(l *Light) {
		l.Keyframes = []LightKeyframe{
			{Progress: 0, Position: Vec(3, 2, 1), Intensity: Intensity(1.5)},
			{Progress: 0.5, Position: Vec(2, 3, 2), Intensity: Intensity(2.0)},
			{Progress: 1, Position: Vec(1, 4, 3), Intensity: Intensity(0.8)},
		}
	})
	if err != nil {
		return err
	}

	return s.UpdateLight("spotlight", func(l *Light) {
		l.Keyframes = []LightKeyframe{
			{Progress: 0, Intensity: Intensity(2.0)},
			{Progress: 1, Intensity: Intensity(0.5)},
		}
	})
}

func addAll(s *State, lights []Light) error {
	for _, l := range lights {
		if err := s.AddLight(l); err != nil {
			return fmt.Errorf("preset light %s: %w", l.ID, err)
		}
	}
	return nil
}
