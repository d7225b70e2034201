package scene

import "math"

// Maintenance operations used by the pipeline between bakes: flipping a
// force's direction, retuning its magnitude, and thinning out dead
// keyframes left behind by the export.

// zeroEps treats values close to 0 as zero to avoid tiny float noise.
const zeroEps = 1e-6

// Invert negates every keyframe value whose magnitude exceeds zeroEps
// and returns the number of changed keyframes.
func (t *Track) Invert() int {
	changed := 0
	for i := range t.Keyframes {
		for c, v := range t.Keyframes[i].Value {
			if math.Abs(v) > zeroEps {
				t.Keyframes[i].Value[c] = -v
				changed++
			}
		}
	}
	return changed
}

// ScaleValues multiplies keyframe values by factor for every keyframe
// at or after the given frame, and returns the number of changed
// keyframes. Pass math.MinInt32 (or anything below the first frame) to
// scale the whole track.
func (t *Track) ScaleValues(factor float64, from int) int {
	changed := 0
	for i := range t.Keyframes {
		if t.Keyframes[i].Frame < from {
			continue
		}
		for c := range t.Keyframes[i].Value {
			t.Keyframes[i].Value[c] *= factor
		}
		changed++
	}
	return changed
}

// PruneZeros removes keyframes whose values are all zero, keeping the
// first and last keyframes so the track's range is preserved. Tracks
// with fewer than three keyframes are left alone. Returns the number
// of removed keyframes.
func (t *Track) PruneZeros() int {
	if len(t.Keyframes) < 3 {
		return 0
	}
	kept := t.Keyframes[:1]
	removed := 0
	for _, kf := range t.Keyframes[1 : len(t.Keyframes)-1] {
		if allZero(kf.Value) {
			removed++
			continue
		}
		kept = append(kept, kf)
	}
	kept = append(kept, t.Keyframes[len(t.Keyframes)-1])
	t.Keyframes = kept
	return removed
}

func allZero(v []float64) bool {
	for _, x := range v {
		if math.Abs(x) > zeroEps {
			return false
		}
	}
	return true
}
