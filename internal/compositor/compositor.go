// Package compositor bakes a force field's time-varying strength into
// a rotation track: the terrain accumulates one rotation step per
// frame, an optional dynamic copy of the driver tracks the terrain's
// net displacement, and an optional cross marker visualizes the
// driver state.
package compositor

import (
	"fmt"
	"log"

	"github.com/ivlev/geovortex/internal/indicator"
	"github.com/ivlev/geovortex/internal/orient"
)

// Animated property names, matching the host application's data paths.
const (
	PropRotation = "rotation_euler"
	PropStrength = "field.strength"
	PropScale    = "scale"
	PropColor    = "color"
)

// Host is the slice of the host application's animation engine the
// compositor needs: interpolated reads, keyframe writes, keyframe
// enumeration, and object duplication. scene.Document implements it
// for file-backed scenes; tests implement it in memory.
type Host interface {
	Get(object, property string, frame int) ([]float64, error)
	SetKeyframe(object, property string, frame int, value []float64) error
	Frames(object, property string) ([]int, error)
	Duplicate(object, name string) error
}

// Options configures one bake pass.
//
// Sign convention: positive strength rotates counterclockwise about
// the rotation axis, adding positive degrees to the Euler Z component.
// Past the driver's last keyframe the strength and orientation hold
// their last keyframed values.
type Options struct {
	Target    string // object whose rotation is driven
	Driver    string // force field supplying strength and orientation
	Dynamic   string // name for the derived driver copy; "" disables it
	Indicator string // marker object; "" disables it

	Scale       float64 // degrees rotated per frame per unit of strength
	ExtraFrames int     // frames to keep rotating past the driver's last keyframe

	// DriverAxis rotates about the driver's local Z axis in world
	// space instead of the world Z axis. Euler angles on this path
	// come back wrapped to (-180, 180].
	DriverAxis bool

	// TrailingDriver samples the driver at f-1 instead of f. Only
	// needed when the driver object is itself rewritten by the pass.
	TrailingDriver bool

	Palette indicator.Palette

	Log *log.Logger // per-frame lines; nil silences them
}

// Result reports what a bake pass wrote.
type Result struct {
	First, Last int // driver keyframe range
	Frames      int // target keyframes written
}

// Compose runs the bake: one sequential pass over the driver's frame
// range, each frame's rotation step building on the previous frame's
// written result. All inputs are validated before the first write.
func Compose(host Host, opts Options) (*Result, error) {
	if err := validate(host, opts); err != nil {
		return nil, err
	}

	driverFrames, err := host.Frames(opts.Driver, PropStrength)
	if err != nil {
		return nil, err
	}
	first := driverFrames[0]
	last := driverFrames[len(driverFrames)-1]
	end := last + opts.ExtraFrames

	baseVal, err := host.Get(opts.Target, PropRotation, first)
	if err != nil {
		return nil, fmt.Errorf("target %q rotation at frame %d: %w", opts.Target, first, err)
	}
	base := orient.FromSlice(baseVal)

	// Re-key the baseline so the target has a keyframe on every frame
	// of the range. The frame-1 value itself is never changed.
	if err := host.SetKeyframe(opts.Target, PropRotation, first, baseVal); err != nil {
		return nil, err
	}

	if opts.Dynamic != "" {
		if err := host.Duplicate(opts.Driver, opts.Dynamic); err != nil {
			return nil, err
		}
		// Explicit baseline keyframe so the copy's displacement math
		// has a defined origin at the first frame.
		bv, err := host.Get(opts.Driver, PropRotation, first)
		if err != nil {
			return nil, err
		}
		if err := host.SetKeyframe(opts.Dynamic, PropRotation, first, bv); err != nil {
			return nil, err
		}
	}

	baseZ := 1.0
	if opts.Indicator != "" {
		if v, err := host.Get(opts.Indicator, PropScale, first); err == nil && len(v) > 2 {
			baseZ = v[2]
		}
	}

	logf := func(format string, args ...any) {
		if opts.Log != nil {
			opts.Log.Printf(format, args...)
		}
	}
	logf("[*] driver %q range %d..%d, scale %g, extra %d", opts.Driver, first, last, opts.Scale, opts.ExtraFrames)

	written := 0
	for f := first + 1; f <= end; f++ {
		sample := f
		if opts.TrailingDriver {
			sample = f - 1
		}

		sv, err := host.Get(opts.Driver, PropStrength, sample)
		if err != nil {
			return nil, fmt.Errorf("driver strength at frame %d: %w", sample, err)
		}
		strength := sv[0]

		pv, err := host.Get(opts.Target, PropRotation, f-1)
		if err != nil {
			return nil, fmt.Errorf("target rotation at frame %d: %w", f-1, err)
		}
		prev := orient.FromSlice(pv)

		delta := opts.Scale * strength

		var next orient.Euler
		if opts.DriverAxis {
			dv, err := host.Get(opts.Driver, PropRotation, sample)
			if err != nil {
				return nil, fmt.Errorf("driver rotation at frame %d: %w", sample, err)
			}
			axis := orient.LocalZ(orient.FromSlice(dv))
			next = orient.Rotate(prev, orient.AxisAngle(axis, delta))
		} else {
			// A world-Z step only advances the Euler Z component, so
			// apply it directly: exact, and free to accumulate past
			// 180 degrees.
			next = prev
			next.Z += delta
		}

		if err := host.SetKeyframe(opts.Target, PropRotation, f, next.Slice()); err != nil {
			return nil, err
		}
		written++

		disp := next.Sub(base)

		if opts.Dynamic != "" {
			bv, err := host.Get(opts.Driver, PropRotation, f)
			if err != nil {
				return nil, fmt.Errorf("driver rotation at frame %d: %w", f, err)
			}
			dyn := orient.FromSlice(bv).Add(disp)
			if err := host.SetKeyframe(opts.Dynamic, PropRotation, f, dyn.Slice()); err != nil {
				return nil, err
			}
		}

		if opts.Indicator != "" {
			if err := keyIndicator(host, opts, f, baseZ); err != nil {
				return nil, err
			}
		}

		logf("[frame %d] prev=(%.6f, %.6f, %.6f) delta=%+.6f new=(%.6f, %.6f, %.6f) disp=(%.6f, %.6f, %.6f)",
			f, prev.X, prev.Y, prev.Z, delta, next.X, next.Y, next.Z, disp.X, disp.Y, disp.Z)
	}

	logf("[+++] baked %d frames on %q (driver range %d..%d)", written, opts.Target, first, last)
	return &Result{First: first, Last: last, Frames: written}, nil
}

// keyIndicator writes the marker's color, scale and rotation for one
// frame from the driver's current-frame state.
func keyIndicator(host Host, opts Options, frame int, baseZ float64) error {
	sv, err := host.Get(opts.Driver, PropStrength, frame)
	if err != nil {
		return fmt.Errorf("driver strength at frame %d: %w", frame, err)
	}
	strength := sv[0]

	if err := host.SetKeyframe(opts.Indicator, PropScale, frame, indicator.ScaleFor(strength, baseZ)); err != nil {
		return err
	}
	if err := host.SetKeyframe(opts.Indicator, PropColor, frame, opts.Palette.ForStrength(strength)); err != nil {
		return err
	}

	dv, err := host.Get(opts.Driver, PropRotation, frame)
	if err != nil {
		return fmt.Errorf("driver rotation at frame %d: %w", frame, err)
	}
	return host.SetKeyframe(opts.Indicator, PropRotation, frame, dv)
}

// validate checks every required input up front so a failing run never
// leaves partial writes behind.
func validate(host Host, opts Options) error {
	if opts.Target == "" || opts.Driver == "" {
		return fmt.Errorf("target and driver object names are required")
	}
	if opts.Scale <= 0 {
		return fmt.Errorf("scale must be positive, got %g", opts.Scale)
	}
	if opts.ExtraFrames < 0 {
		return fmt.Errorf("extra frames must not be negative, got %d", opts.ExtraFrames)
	}

	tf, err := host.Frames(opts.Target, PropRotation)
	if err != nil {
		return fmt.Errorf("target: %w", err)
	}
	if len(tf) == 0 {
		return fmt.Errorf("target %q has no %s keyframes", opts.Target, PropRotation)
	}

	df, err := host.Frames(opts.Driver, PropStrength)
	if err != nil {
		return fmt.Errorf("driver: %w", err)
	}
	if len(df) < 2 {
		return fmt.Errorf("driver %q needs at least two %s keyframes, got %d", opts.Driver, PropStrength, len(df))
	}

	if opts.Dynamic != "" || opts.Indicator != "" || opts.DriverAxis {
		rf, err := host.Frames(opts.Driver, PropRotation)
		if err != nil {
			return fmt.Errorf("driver: %w", err)
		}
		if len(rf) == 0 {
			return fmt.Errorf("driver %q has no %s keyframes", opts.Driver, PropRotation)
		}
	}

	if opts.Indicator != "" {
		if _, err := host.Frames(opts.Indicator, PropRotation); err != nil {
			return fmt.Errorf("indicator: %w", err)
		}
	}
	return nil
}
