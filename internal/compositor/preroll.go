package compositor

import (
	"fmt"
	"log"

	"github.com/ivlev/geovortex/internal/indicator"
	"github.com/ivlev/geovortex/internal/orient"
)

// PrerollOptions configures backwards spin generation: constant-rate
// rotation keyframes on the frames before the animation starts, so a
// render can lead into the bake with the terrain already turning.
type PrerollOptions struct {
	Objects []string // objects to spin backwards from the base frame
	Whiten  string   // object whose color is held white over the preroll; "" disables

	BaseFrame   int     // first animated frame; keyframes go on the frames before it
	Frames      int     // how many preroll frames to generate
	DegPerFrame float64 // spin rate; the preroll subtracts it going backwards

	Log *log.Logger
}

// Preroll writes rotation keyframes on frames BaseFrame-1 down to
// BaseFrame-Frames for each object: frame BaseFrame-i gets the base
// orientation minus i*DegPerFrame about world Z. The base frame itself
// is never touched.
func Preroll(host Host, opts PrerollOptions) error {
	if len(opts.Objects) == 0 {
		return fmt.Errorf("no objects to preroll")
	}
	if opts.Frames < 0 {
		return fmt.Errorf("preroll frames must not be negative, got %d", opts.Frames)
	}

	bases := make(map[string]orient.Euler, len(opts.Objects))
	for _, name := range opts.Objects {
		v, err := host.Get(name, PropRotation, opts.BaseFrame)
		if err != nil {
			return fmt.Errorf("object %q: %w", name, err)
		}
		bases[name] = orient.FromSlice(v)
	}

	logf := func(format string, args ...any) {
		if opts.Log != nil {
			opts.Log.Printf(format, args...)
		}
	}

	if opts.Whiten != "" {
		// Re-key the current color at the base frame so the marker
		// returns to it when the animation proper begins.
		cv, err := host.Get(opts.Whiten, PropColor, opts.BaseFrame)
		if err != nil {
			cv = indicator.White
		}
		if err := host.SetKeyframe(opts.Whiten, PropColor, opts.BaseFrame, cv); err != nil {
			return err
		}
	}

	for i := 1; i <= opts.Frames; i++ {
		frame := opts.BaseFrame - i
		add := -float64(i) * opts.DegPerFrame

		for _, name := range opts.Objects {
			e := bases[name]
			e.Z += add
			if err := host.SetKeyframe(name, PropRotation, frame, e.Slice()); err != nil {
				return err
			}
		}
		if opts.Whiten != "" {
			if err := host.SetKeyframe(opts.Whiten, PropColor, frame, indicator.White); err != nil {
				return err
			}
		}
		logf("[frame %d] add=%+.3f", frame, add)
	}

	logf("[+++] prerolled %d frames before frame %d", opts.Frames, opts.BaseFrame)
	return nil
}
