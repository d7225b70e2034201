package compositor

import (
	"log"
	"math"
	"testing"

	"github.com/ivlev/geovortex/internal/indicator"
	"github.com/ivlev/geovortex/internal/scene"
)

const tolerance = 1e-6

// testScene builds the reference setup: a constant-zero terrain at
// frame 1, an upright vortex with the given strengths on frames 1..n,
// and a cross marker.
func testScene(t *testing.T, strengths []float64) *scene.Document {
	t.Helper()

	doc := scene.NewDocument()

	terrain := doc.AddObject("terrain")
	terrain.EnsureTrack(PropRotation).Set(1, []float64{0, 0, 0})

	vortex := doc.AddObject("Vortex")
	st := vortex.EnsureTrack(PropStrength)
	rt := vortex.EnsureTrack(PropRotation)
	for i, s := range strengths {
		st.Set(i+1, []float64{s})
		rt.Set(i+1, []float64{0, 0, 0})
	}

	cross := doc.AddObject("cross")
	cross.EnsureTrack(PropRotation).Set(1, []float64{0, 0, 0})
	cross.EnsureTrack(PropScale).Set(1, []float64{1, 1, 1})

	return doc
}

func testOptions() Options {
	palette, _ := indicator.NewPalette("blue", "red")
	return Options{
		Target:    "terrain",
		Driver:    "Vortex",
		Dynamic:   "Vortex-dynamic",
		Indicator: "cross",
		Scale:     10,
		Palette:   palette,
	}
}

func getZ(t *testing.T, doc *scene.Document, object string, frame int) float64 {
	t.Helper()
	v, err := doc.Get(object, PropRotation, frame)
	if err != nil {
		t.Fatalf("Get %s rotation at %d: %v", object, frame, err)
	}
	return v[2]
}

func TestComposeReferenceScenario(t *testing.T) {
	// Strengths [0, 1, -1, 2, 0] on frames 1..5 with scale 10: frame 2
	// picks up 10 degrees, frame 3 cancels it back to zero.
	doc := testScene(t, []float64{0, 1, -1, 2, 0})

	res, err := Compose(doc, testOptions())
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	if res.First != 1 || res.Last != 5 {
		t.Errorf("Expected driver range 1..5, got %d..%d", res.First, res.Last)
	}

	tests := []struct {
		frame int
		z     float64
	}{
		{1, 0},
		{2, 10},
		{3, 0},
		{4, 20},
		{5, 20},
	}
	for _, tt := range tests {
		if z := getZ(t, doc, "terrain", tt.frame); z != tt.z {
			t.Errorf("Frame %d: expected Z exactly %g, got %g", tt.frame, tt.z, z)
		}
	}
}

func TestComposeDeterminism(t *testing.T) {
	strengths := []float64{0, 0.5, -0.25, 1.75, 0.125, -1}

	run := func() *scene.Document {
		doc := testScene(t, strengths)
		if _, err := Compose(doc, testOptions()); err != nil {
			t.Fatalf("Compose failed: %v", err)
		}
		return doc
	}

	a, b := run(), run()
	frames, _ := a.Frames("terrain", PropRotation)
	for _, f := range frames {
		va, _ := a.Get("terrain", PropRotation, f)
		vb, _ := b.Get("terrain", PropRotation, f)
		for c := range va {
			if va[c] != vb[c] {
				t.Fatalf("Frame %d component %d differs between runs: %g vs %g", f, c, va[c], vb[c])
			}
		}
	}
}

func TestComposeFrame1Invariance(t *testing.T) {
	doc := testScene(t, []float64{0, 1, -1})
	doc.SetKeyframe("terrain", PropRotation, 1, []float64{5, -3, 42})

	if _, err := Compose(doc, testOptions()); err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	v, _ := doc.Get("terrain", PropRotation, 1)
	want := []float64{5, -3, 42}
	for i := range want {
		if v[i] != want[i] {
			t.Fatalf("Frame 1 changed: expected %v, got %v", want, v)
		}
	}
}

func TestComposeMonotonicCoverage(t *testing.T) {
	doc := testScene(t, []float64{0, 1, -1, 2, 0})

	opts := testOptions()
	opts.ExtraFrames = 3
	if _, err := Compose(doc, opts); err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	frames, _ := doc.Frames("terrain", PropRotation)
	if len(frames) != 8 {
		t.Fatalf("Expected 8 keyframes on 1..8, got %d: %v", len(frames), frames)
	}
	for i, f := range frames {
		if f != i+1 {
			t.Fatalf("Expected exactly one keyframe per frame in 1..8, got %v", frames)
		}
	}
}

func TestComposeExtraFramesHoldStrength(t *testing.T) {
	// Last keyframed strength is 1, so the rotation keeps advancing at
	// 10 degrees per frame past the driver's range.
	doc := testScene(t, []float64{0, 1})

	opts := testOptions()
	opts.ExtraFrames = 2
	if _, err := Compose(doc, opts); err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	for _, tt := range []struct {
		frame int
		z     float64
	}{{2, 10}, {3, 20}, {4, 30}} {
		if z := getZ(t, doc, "terrain", tt.frame); math.Abs(z-tt.z) > tolerance {
			t.Errorf("Frame %d: expected Z %g, got %g", tt.frame, tt.z, z)
		}
	}
}

func TestComposeDisplacementConsistency(t *testing.T) {
	// The driver has its own baseline motion; the dynamic copy must
	// track it plus the terrain's net displacement from frame 1.
	doc := testScene(t, []float64{0, 1, -0.5, 2, 0.25})
	rt := doc.Object("Vortex").EnsureTrack(PropRotation)
	for f := 1; f <= 5; f++ {
		rt.Set(f, []float64{0, 0, float64(f) * 3})
	}

	if _, err := Compose(doc, testOptions()); err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	base, _ := doc.Get("terrain", PropRotation, 1)
	for f := 1; f <= 5; f++ {
		dyn, err := doc.Get("Vortex-dynamic", PropRotation, f)
		if err != nil {
			t.Fatalf("Dynamic copy at frame %d: %v", f, err)
		}
		drv, _ := doc.Get("Vortex", PropRotation, f)
		tgt, _ := doc.Get("terrain", PropRotation, f)

		for c := 0; c < 3; c++ {
			left := dyn[c] - drv[c]
			right := tgt[c] - base[c]
			if math.Abs(left-right) > tolerance {
				t.Errorf("Frame %d component %d: copy displacement %g != target displacement %g", f, c, left, right)
			}
		}
	}
}

func TestComposeDynamicBaselineKeyframe(t *testing.T) {
	doc := testScene(t, []float64{0, 1, 0})

	if _, err := Compose(doc, testOptions()); err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	frames, err := doc.Frames("Vortex-dynamic", PropRotation)
	if err != nil {
		t.Fatalf("Dynamic copy missing: %v", err)
	}
	if len(frames) == 0 || frames[0] != 1 {
		t.Errorf("Dynamic copy needs an explicit frame-1 keyframe, got frames %v", frames)
	}
}

func TestComposeIndicator(t *testing.T) {
	doc := testScene(t, []float64{-2, -0.1, 0, 0.1, 2})
	doc.SetKeyframe("cross", PropScale, 1, []float64{1, 1, 5})
	rt := doc.Object("Vortex").EnsureTrack(PropRotation)
	for f := 1; f <= 5; f++ {
		rt.Set(f, []float64{0, float64(f), 0})
	}

	palette := testOptions().Palette
	if _, err := Compose(doc, testOptions()); err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	for f := 2; f <= 5; f++ {
		sv, _ := doc.Get("Vortex", PropStrength, f)
		s := sv[0]

		// Scale law: horizontal 1+s exactly, Z held at baseline
		sc, err := doc.Get("cross", PropScale, f)
		if err != nil {
			t.Fatalf("Indicator scale at frame %d: %v", f, err)
		}
		if sc[0] != 1+s || sc[1] != 1+s {
			t.Errorf("Frame %d: expected XY scale %g, got (%g, %g)", f, 1+s, sc[0], sc[1])
		}
		if sc[2] != 5 {
			t.Errorf("Frame %d: expected Z scale 5, got %g", f, sc[2])
		}

		// Color sign mapping
		col, err := doc.Get("cross", PropColor, f)
		if err != nil {
			t.Fatalf("Indicator color at frame %d: %v", f, err)
		}
		want := palette.ForStrength(s)
		for i := range want {
			if col[i] != want[i] {
				t.Errorf("Frame %d strength %g: expected color %v, got %v", f, s, want, col)
				break
			}
		}

		// Orientation copied from the driver
		rot, _ := doc.Get("cross", PropRotation, f)
		drv, _ := doc.Get("Vortex", PropRotation, f)
		for i := range drv {
			if rot[i] != drv[i] {
				t.Errorf("Frame %d: expected indicator rotation %v, got %v", f, drv, rot)
				break
			}
		}
	}
}

func TestComposeTrailingDriver(t *testing.T) {
	// Trailing sampling shifts every step one frame late: frame 2 sees
	// the frame-1 strength.
	doc := testScene(t, []float64{0, 1, -1, 2, 0})

	opts := testOptions()
	opts.TrailingDriver = true
	if _, err := Compose(doc, opts); err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	for _, tt := range []struct {
		frame int
		z     float64
	}{{2, 0}, {3, 10}, {4, 0}, {5, 20}} {
		if z := getZ(t, doc, "terrain", tt.frame); math.Abs(z-tt.z) > tolerance {
			t.Errorf("Frame %d: expected Z %g, got %g", tt.frame, tt.z, z)
		}
	}
}

func TestComposeDriverAxisUpright(t *testing.T) {
	// An upright driver's local Z is the world Z axis, so both modes
	// must agree.
	a := testScene(t, []float64{0, 1, -1, 2, 0})
	b := testScene(t, []float64{0, 1, -1, 2, 0})

	opts := testOptions()
	if _, err := Compose(a, opts); err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	opts.DriverAxis = true
	if _, err := Compose(b, opts); err != nil {
		t.Fatalf("Compose (driver axis) failed: %v", err)
	}

	for f := 1; f <= 5; f++ {
		va, _ := a.Get("terrain", PropRotation, f)
		vb, _ := b.Get("terrain", PropRotation, f)
		for c := range va {
			if math.Abs(va[c]-vb[c]) > tolerance {
				t.Errorf("Frame %d component %d: world-Z %g vs driver-axis %g", f, c, va[c], vb[c])
			}
		}
	}
}

func TestComposeValidation(t *testing.T) {
	valid := func() *scene.Document { return testScene(t, []float64{0, 1, 0}) }

	tests := []struct {
		name string
		doc  *scene.Document
		mod  func(*Options)
	}{
		{"non-positive scale", valid(), func(o *Options) { o.Scale = 0 }},
		{"negative scale", valid(), func(o *Options) { o.Scale = -1 }},
		{"negative extra frames", valid(), func(o *Options) { o.ExtraFrames = -1 }},
		{"missing target", valid(), func(o *Options) { o.Target = "ghost" }},
		{"missing driver", valid(), func(o *Options) { o.Driver = "ghost" }},
		{"missing indicator", valid(), func(o *Options) { o.Indicator = "ghost" }},
		{"single driver keyframe", testScene(t, []float64{1}), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions()
			if tt.mod != nil {
				tt.mod(&opts)
			}
			before := snapshotZ(t, tt.doc)
			if _, err := Compose(tt.doc, opts); err == nil {
				t.Fatal("Expected validation error")
			}
			// Failed validation must leave the scene untouched
			after := snapshotZ(t, tt.doc)
			if len(before) != len(after) {
				t.Fatalf("Scene mutated by failed run: %v -> %v", before, after)
			}
			for i := range before {
				if before[i] != after[i] {
					t.Fatalf("Scene mutated by failed run: %v -> %v", before, after)
				}
			}
		})
	}
}

func snapshotZ(t *testing.T, doc *scene.Document) []float64 {
	t.Helper()
	frames, err := doc.Frames("terrain", PropRotation)
	if err != nil {
		return nil
	}
	var out []float64
	for _, f := range frames {
		v, _ := doc.Get("terrain", PropRotation, f)
		out = append(out, v...)
	}
	return out
}

func TestComposeWithoutDynamicAndIndicator(t *testing.T) {
	doc := testScene(t, []float64{0, 1, 0})

	opts := testOptions()
	opts.Dynamic = ""
	opts.Indicator = ""
	opts.Log = log.Default()
	if _, err := Compose(doc, opts); err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	if doc.Object("Vortex-dynamic") != nil {
		t.Error("Dynamic copy created although disabled")
	}
	if frames, _ := doc.Frames("cross", PropScale); len(frames) > 1 {
		t.Errorf("Indicator keyed although disabled: %v", frames)
	}
}
