package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ivlev/scrollscene/internal/keyframe"
)

type LightType string

const (
	LightPoint       LightType = "point"
	LightSpot        LightType = "spot"
	LightDirectional LightType = "directional"
)

func (t LightType) Valid() bool {
	switch t {
	case LightPoint, LightSpot, LightDirectional:
		return true
	}
	return false
}

// Light is a dynamic light source. Type-specific fields are left at their
// zero value when they do not apply.
type Light struct {
	ID        string     `yaml:"id"`
	Name      string     `yaml:"name"`
	Type      LightType  `yaml:"type"`
	Enabled   bool       `yaml:"enabled"`
	Position  mgl64.Vec3 `yaml:"position"`
	Color     string     `yaml:"color"`
	Intensity float64    `yaml:"intensity"`

	// Point and spot
	Distance float64 `yaml:"distance,omitempty"`
	Decay    float64 `yaml:"decay,omitempty"`

	// Spot
	Angle    float64     `yaml:"angle,omitempty"`
	Penumbra float64     `yaml:"penumbra,omitempty"`
	Target   *mgl64.Vec3 `yaml:"target,omitempty"`

	// Directional
	Direction *mgl64.Vec3 `yaml:"direction,omitempty"`

	Animatable bool            `yaml:"animatable"`
	Keyframes  []LightKeyframe `yaml:"keyframes,omitempty"`
}

// LightKeyframe sparsely specifies animated attributes. Nil Position/Intensity
// and empty Color mean "not animated at this keyframe".
type LightKeyframe struct {
	Progress  float64     `yaml:"progress"`
	Position  *mgl64.Vec3 `yaml:"position,omitempty"`
	Intensity *float64    `yaml:"intensity,omitempty"`
	Color     string      `yaml:"color,omitempty"`
}

// Channel is a bit set of animated light attributes
type Channel uint8

const (
	ChannelPosition Channel = 1 << iota
	ChannelIntensity
	ChannelColor
)

func (c Channel) Has(o Channel) bool { return c&o != 0 }

func (c Channel) String() string {
	s := ""
	for _, ch := range []struct {
		bit  Channel
		name string
	}{{ChannelPosition, "position"}, {ChannelIntensity, "intensity"}, {ChannelColor, "color"}} {
		if c.Has(ch.bit) {
			if s != "" {
				s += "|"
			}
			s += ch.name
		}
	}
	if s == "" {
		return "none"
	}
	return s
}

// Channels returns the attributes defined on this keyframe
func (k LightKeyframe) Channels() Channel {
	var c Channel
	if k.Position != nil {
		c |= ChannelPosition
	}
	if k.Intensity != nil {
		c |= ChannelIntensity
	}
	if k.Color != "" {
		c |= ChannelColor
	}
	return c
}

// Channels returns every attribute the light's track can change. Inert
// lights report none.
func (l *Light) Channels() Channel {
	if !l.IsAnimated() {
		return 0
	}
	var c Channel
	for _, kf := range l.Keyframes {
		c |= kf.Channels()
	}
	return c
}

// IsAnimated reports whether the light animator will touch this light
func (l *Light) IsAnimated() bool {
	return l.Animatable && len(l.Keyframes) > 0
}

// Validate checks identity, type and the keyframe timeline
func (l *Light) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("light has empty id")
	}
	if !l.Type.Valid() {
		return fmt.Errorf("light %q: unknown type %q", l.ID, l.Type)
	}
	if len(l.Keyframes) == 0 {
		return nil
	}

	progresses := make([]float64, len(l.Keyframes))
	for i, kf := range l.Keyframes {
		progresses[i] = kf.Progress
	}
	if err := keyframe.Validate(progresses); err != nil {
		return fmt.Errorf("light %q: %w", l.ID, err)
	}
	return nil
}

// Clone returns a deep copy
func (l *Light) Clone() *Light {
	c := *l
	if l.Target != nil {
		t := *l.Target
		c.Target = &t
	}
	if l.Direction != nil {
		d := *l.Direction
		c.Direction = &d
	}
	if l.Keyframes != nil {
		c.Keyframes = make([]LightKeyframe, len(l.Keyframes))
		for i, kf := range l.Keyframes {
			c.Keyframes[i] = kf
			if kf.Position != nil {
				p := *kf.Position
				c.Keyframes[i].Position = &p
			}
			if kf.Intensity != nil {
				v := *kf.Intensity
				c.Keyframes[i].Intensity = &v
			}
		}
	}
	return &c
}

// Vec is shorthand for building optional keyframe positions
func Vec(x, y, z float64) *mgl64.Vec3 {
	v := mgl64.Vec3{x, y, z}
	return &v
}

// Intensity is shorthand for building optional keyframe intensities
func Intensity(v float64) *float64 {
	return &v
}
