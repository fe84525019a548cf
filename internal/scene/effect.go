package scene

import (
	"fmt"
	"strings"
)

// BlendFunction controls how the ASCII layer composites over the frame
type BlendFunction string

const (
	BlendSkip       BlendFunction = "skip"
	BlendNormal     BlendFunction = "normal"
	BlendAdd        BlendFunction = "add"
	BlendAlpha      BlendFunction = "alpha"
	BlendAverage    BlendFunction = "average"
	BlendColor      BlendFunction = "color"
	BlendDarken     BlendFunction = "darken"
	BlendDifference BlendFunction = "difference"
	BlendExclusion  BlendFunction = "exclusion"
	BlendLighten    BlendFunction = "lighten"
	BlendMultiply   BlendFunction = "multiply"
	BlendOverlay    BlendFunction = "overlay"
	BlendScreen     BlendFunction = "screen"
	BlendSubtract   BlendFunction = "subtract"
)

type BlendOption struct {
	Label string
	Value BlendFunction
}

// BlendOptions lists the user-selectable blend functions
var BlendOptions = []BlendOption{
	{"Normal", BlendNormal},
	{"Add", BlendAdd},
	{"Alpha", BlendAlpha},
	{"Average", BlendAverage},
	{"Color", BlendColor},
	{"Darken", BlendDarken},
	{"Difference", BlendDifference},
	{"Exclusion", BlendExclusion},
	{"Lighten", BlendLighten},
	{"Multiply", BlendMultiply},
	{"Overlay", BlendOverlay},
	{"Screen", BlendScreen},
	{"Subtract", BlendSubtract},
}

// ParseBlend accepts a value or label, case-insensitively
func ParseBlend(s string) (BlendFunction, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == string(BlendSkip) {
		return BlendSkip, nil
	}
	for _, o := range BlendOptions {
		if s == string(o.Value) || s == strings.ToLower(o.Label) {
			return o.Value, nil
		}
	}
	return "", fmt.Errorf("unknown blend function: %s", s)
}

// TextureProps describe the glyph atlas
type TextureProps struct {
	Characters string
	Font       string
	FontSize   int
	Size       int
	CellCount  int
}

// EffectProps is what the ASCII effect consumes each frame
type EffectProps struct {
	Blend         BlendFunction
	Opacity       float64
	CellSize      int
	Inverted      bool
	Color         string
	UseSceneColor bool
	Texture       TextureProps
}

func effectProps(a ASCIIParams, t Toggles) EffectProps {
	blend := a.Blend
	if !t.EnableASCII {
		blend = BlendSkip
	}
	return EffectProps{
		Blend:         blend,
		Opacity:       a.Opacity,
		CellSize:      a.CellSize,
		Inverted:      a.Inverted,
		Color:         a.Color,
		UseSceneColor: a.UseSceneColor,
		Texture: TextureProps{
			Characters: a.Characters,
			Font:       a.Font,
			FontSize:   a.FontSize,
			Size:       a.TextureSize,
			CellCount:  a.CellCount,
		},
	}
}
