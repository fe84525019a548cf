package keyframe

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Keyframe is a known value at a point on a normalized timeline
type Keyframe[V any] struct {
	Progress float64 `yaml:"progress"`
	Value    V       `yaml:"value"`
}

// Track is an ordered sequence of keyframes (non-decreasing Progress, 0..1)
type Track[V any] []Keyframe[V]

// Mixer blends two values with a local factor in [0,1]
type Mixer[V any] func(from, to V, t float64) V

// Segment is the bracketing keyframe pair for a progress value
type Segment struct {
	From  int
	To    int
	Local float64 // position between From and To (0.0 to 1.0)
}

// Clamp01 limits p to [0,1]. NaN maps to 0.
func Clamp01(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Locate finds the first adjacent pair (a, b) with a <= p <= b among n
// keyframes whose progress is returned by at. p is clamped first.
// With no matching pair the first pair is used.
func Locate(n int, at func(i int) float64, p float64) Segment {
	if n == 0 {
		return Segment{}
	}
	if n == 1 {
		return Segment{From: 0, To: 0, Local: 0}
	}

	p = Clamp01(p)

	seg := Segment{From: 0, To: 1}
	for i := 0; i < n-1; i++ {
		if p >= at(i) && p <= at(i+1) {
			seg.From, seg.To = i, i+1
			break
		}
	}

	seg.Local = localProgress(at(seg.From), at(seg.To), p)
	return seg
}

// localProgress never divides by a zero-width span: it snaps to the
// nearest boundary instead.
func localProgress(from, to, p float64) float64 {
	span := to - from
	if span <= 0 {
		if p <= from {
			return 0
		}
		return 1
	}
	return Clamp01((p - from) / span)
}

// Interpolate returns the track value at progress p
func Interpolate[V any](track Track[V], p float64, mix Mixer[V]) V {
	var zero V
	switch len(track) {
	case 0:
		return zero
	case 1:
		return track[0].Value
	}

	seg := Locate(len(track), func(i int) float64 { return track[i].Progress }, p)
	return mix(track[seg.From].Value, track[seg.To].Value, seg.Local)
}

// Progresses extracts the progress column of a track
func (t Track[V]) Progresses() []float64 {
	out := make([]float64, len(t))
	for i, kf := range t {
		out[i] = kf.Progress
	}
	return out
}

// Lerp performs linear interpolation between a and b. The endpoints are
// returned exactly.
func Lerp(a, b, t float64) float64 {
	switch {
	case t <= 0:
		return a
	case t >= 1:
		return b
	}
	return a + (b-a)*t
}

// LerpVec3 interpolates every component with the same factor
func LerpVec3(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return mgl64.Vec3{
		Lerp(a[0], b[0], t),
		Lerp(a[1], b[1], t),
		Lerp(a[2], b[2], t),
	}
}

// StepColor switches from a to b once the local factor passes the midpoint.
// Colours are never blended.
func StepColor(a, b string, t float64) string {
	if t > 0.5 {
		return b
	}
	return a
}
