package scene

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Key is one exported force-field sample: a frame number with the
// field's strength and flow at that frame.
type Key struct {
	Frame    int
	Strength float64
	Flow     float64
}

// ParseKeyData parses whitespace-separated numbers in groups of three
// (frame, strength, flow) as produced by the simulation export.
// Scientific notation like -7.76e-05 is accepted.
func ParseKeyData(s string) ([]Key, error) {
	toks := strings.Fields(s)
	if len(toks) == 0 {
		return nil, fmt.Errorf("no key data")
	}
	if len(toks)%3 != 0 {
		return nil, fmt.Errorf("key data must have a multiple of 3 numbers, got %d", len(toks))
	}

	keys := make([]Key, 0, len(toks)/3)
	for i := 0; i < len(toks); i += 3 {
		frame, err := strconv.ParseFloat(toks[i], 64)
		if err != nil {
			return nil, fmt.Errorf("bad frame %q: %w", toks[i], err)
		}
		strength, err := strconv.ParseFloat(toks[i+1], 64)
		if err != nil {
			return nil, fmt.Errorf("bad strength %q: %w", toks[i+1], err)
		}
		flow, err := strconv.ParseFloat(toks[i+2], 64)
		if err != nil {
			return nil, fmt.Errorf("bad flow %q: %w", toks[i+2], err)
		}
		keys = append(keys, Key{
			Frame:    int(math.Round(frame)),
			Strength: strength,
			Flow:     flow,
		})
	}
	return keys, nil
}

// SeedDriver replaces the named object's field.strength and field.flow
// tracks with the given keys. The object must already exist in the
// scene.
func (d *Document) SeedDriver(object string, keys []Key) error {
	o := d.Object(object)
	if o == nil {
		return fmt.Errorf("object %q not found", object)
	}
	if len(keys) == 0 {
		return fmt.Errorf("no keys to seed on %q", object)
	}

	strength := o.EnsureTrack("field.strength")
	flow := o.EnsureTrack("field.flow")
	strength.Keyframes = strength.Keyframes[:0]
	flow.Keyframes = flow.Keyframes[:0]

	for _, k := range keys {
		strength.Set(k.Frame, []float64{k.Strength})
		flow.Set(k.Frame, []float64{k.Flow})
	}
	return nil
}
