package scene

import (
	"fmt"
	"sort"
)

// Track is a sparse keyframe track for one animated property. Keyframes
// are kept sorted by frame with at most one keyframe per frame.
type Track struct {
	Property  string     `yaml:"property"`
	Keyframes []Keyframe `yaml:"keyframes"`
}

// Keyframe records a property value at a specific frame. Values are
// small fixed-arity vectors: one element for scalars like a field
// strength, three for rotations and scales, four for RGBA colors.
type Keyframe struct {
	Frame int       `yaml:"frame"`
	Value []float64 `yaml:"value,flow"`
}

// Value interpolates the track at the given frame. Before the first
// keyframe and after the last one the nearest end value is held, the
// same rule the host applies outside a curve's keyed range.
func (t *Track) Value(frame int) ([]float64, error) {
	if len(t.Keyframes) == 0 {
		return nil, fmt.Errorf("track %q has no keyframes", t.Property)
	}

	first := t.Keyframes[0]
	if frame <= first.Frame {
		return append([]float64(nil), first.Value...), nil
	}
	last := t.Keyframes[len(t.Keyframes)-1]
	if frame >= last.Frame {
		return append([]float64(nil), last.Value...), nil
	}

	// Find surrounding keyframes
	for i := 0; i < len(t.Keyframes)-1; i++ {
		prev, next := t.Keyframes[i], t.Keyframes[i+1]
		if frame < prev.Frame || frame >= next.Frame {
			continue
		}
		if frame == prev.Frame {
			return append([]float64(nil), prev.Value...), nil
		}
		f := float64(frame-prev.Frame) / float64(next.Frame-prev.Frame)
		n := len(prev.Value)
		if len(next.Value) < n {
			n = len(next.Value)
		}
		out := make([]float64, n)
		for c := 0; c < n; c++ {
			out[c] = lerp(prev.Value[c], next.Value[c], f)
		}
		return out, nil
	}
	return nil, fmt.Errorf("track %q: frame %d not covered", t.Property, frame)
}

// Set inserts or replaces the keyframe at the given frame.
func (t *Track) Set(frame int, value []float64) {
	v := append([]float64(nil), value...)
	i := sort.Search(len(t.Keyframes), func(i int) bool {
		return t.Keyframes[i].Frame >= frame
	})
	if i < len(t.Keyframes) && t.Keyframes[i].Frame == frame {
		t.Keyframes[i].Value = v
		return
	}
	t.Keyframes = append(t.Keyframes, Keyframe{})
	copy(t.Keyframes[i+1:], t.Keyframes[i:])
	t.Keyframes[i] = Keyframe{Frame: frame, Value: v}
}

// Frames returns the sorted frame numbers holding keyframes.
func (t *Track) Frames() []int {
	frames := make([]int, len(t.Keyframes))
	for i, kf := range t.Keyframes {
		frames[i] = kf.Frame
	}
	return frames
}

// Range returns the first and last keyframed frame. ok is false for an
// empty track.
func (t *Track) Range() (first, last int, ok bool) {
	if len(t.Keyframes) == 0 {
		return 0, 0, false
	}
	return t.Keyframes[0].Frame, t.Keyframes[len(t.Keyframes)-1].Frame, true
}

// lerp performs linear interpolation between a and b
func lerp(a, b, f float64) float64 {
	return a + (b-a)*f
}
