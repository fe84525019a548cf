package keyframe

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidTrack is returned for keyframe sequences that break the timeline rules
var ErrInvalidTrack = errors.New("invalid keyframe track")

// Validate checks a progress column: at least two entries, first 0, last 1,
// every value in [0,1] and non-decreasing order.
func Validate(progresses []float64) error {
	if len(progresses) < 2 {
		return fmt.Errorf("%w: need at least 2 keyframes, got %d", ErrInvalidTrack, len(progresses))
	}

	for i, p := range progresses {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return fmt.Errorf("%w: keyframe %d progress %v outside [0,1]", ErrInvalidTrack, i, p)
		}
		if i > 0 && p < progresses[i-1] {
			return fmt.Errorf("%w: keyframe %d progress %v before previous %v", ErrInvalidTrack, i, p, progresses[i-1])
		}
	}

	if progresses[0] != 0 {
		return fmt.Errorf("%w: first keyframe must start at 0, got %v", ErrInvalidTrack, progresses[0])
	}
	if last := progresses[len(progresses)-1]; last != 1 {
		return fmt.Errorf("%w: last keyframe must end at 1, got %v", ErrInvalidTrack, last)
	}

	return nil
}
