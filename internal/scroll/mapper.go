package scroll

import (
	"math"

	"github.com/ivlev/scrollscene/internal/keyframe"
)

// CameraStartViewports is the number of viewport heights scrolled before
// the camera starts moving.
const CameraStartViewports = 2.0

// Phase names the part of the page the scroll offset is in
type Phase int

const (
	PhaseIntro Phase = iota
	PhaseCamera
)

func (p Phase) String() string {
	if p == PhaseCamera {
		return "camera"
	}
	return "intro"
}

// Progress is the normalized position along both animation phases
type Progress struct {
	Intro  float64
	Camera float64
	Phase  Phase
}

// Map converts a raw scroll offset into intro and camera progress using
// the default two-viewport threshold. scrollableHeight is the document
// height minus one viewport.
func Map(offset, viewportHeight, scrollableHeight float64) Progress {
	return MapWith(CameraStartViewports, offset, viewportHeight, scrollableHeight)
}

// MapWith is Map with a configurable threshold in viewport heights
func MapWith(startViewports, offset, viewportHeight, scrollableHeight float64) Progress {
	threshold := viewportHeight * startViewports
	if math.IsNaN(offset) {
		offset = 0
	}

	if offset <= threshold {
		return Progress{
			Intro:  keyframe.Clamp01(ratio(offset, threshold)),
			Camera: 0,
			Phase:  PhaseIntro,
		}
	}

	remaining := scrollableHeight - threshold
	return Progress{
		Intro:  1,
		Camera: keyframe.Clamp01(ratio(offset-threshold, remaining)),
		Phase:  PhaseCamera,
	}
}

// ratio guards the short-page case: an empty or negative range counts as
// already travelled when there is any distance to cover.
func ratio(num, den float64) float64 {
	if den <= 0 {
		if num > 0 {
			return 1
		}
		return 0
	}
	return num / den
}
