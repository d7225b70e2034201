package scene

import (
	"fmt"
)

// Document holds a host scene's baked animation data: a flat list of
// named objects, each with sparse keyframe tracks per animated property.
type Document struct {
	Version string    `yaml:"version"`
	Objects []*Object `yaml:"objects"`
}

// Object is a named scene object (terrain mesh, force field, marker).
type Object struct {
	Name   string   `yaml:"name"`
	Tracks []*Track `yaml:"tracks"`
}

// NewDocument creates an empty scene document.
func NewDocument() *Document {
	return &Document{Version: "1.0"}
}

// Object returns the named object, or nil if the scene does not have it.
func (d *Document) Object(name string) *Object {
	for _, o := range d.Objects {
		if o.Name == name {
			return o
		}
	}
	return nil
}

// AddObject appends a new empty object and returns it. An existing
// object with the same name is returned instead of being duplicated.
func (d *Document) AddObject(name string) *Object {
	if o := d.Object(name); o != nil {
		return o
	}
	o := &Object{Name: name}
	d.Objects = append(d.Objects, o)
	return o
}

// Track returns the object's track for the given property, or nil.
func (o *Object) Track(property string) *Track {
	for _, t := range o.Tracks {
		if t.Property == property {
			return t
		}
	}
	return nil
}

// EnsureTrack returns the object's track for the property, creating an
// empty one if needed.
func (o *Object) EnsureTrack(property string) *Track {
	if t := o.Track(property); t != nil {
		return t
	}
	t := &Track{Property: property}
	o.Tracks = append(o.Tracks, t)
	return t
}

// Get returns the interpolated value of an object property at a frame.
// Missing objects, missing tracks and empty tracks are errors; frames
// outside the track's keyframe range hold the nearest end value.
func (d *Document) Get(object, property string, frame int) ([]float64, error) {
	o := d.Object(object)
	if o == nil {
		return nil, fmt.Errorf("object %q not found", object)
	}
	t := o.Track(property)
	if t == nil {
		return nil, fmt.Errorf("object %q has no track for %q", object, property)
	}
	return t.Value(frame)
}

// SetKeyframe writes a keyframe on an object property, replacing any
// existing keyframe at the same frame. The object must already exist.
func (d *Document) SetKeyframe(object, property string, frame int, value []float64) error {
	o := d.Object(object)
	if o == nil {
		return fmt.Errorf("object %q not found", object)
	}
	o.EnsureTrack(property).Set(frame, value)
	return nil
}

// Frames returns the sorted keyframe frame numbers of an object
// property. A missing track yields an empty list; a missing object is
// an error.
func (d *Document) Frames(object, property string) ([]int, error) {
	o := d.Object(object)
	if o == nil {
		return nil, fmt.Errorf("object %q not found", object)
	}
	t := o.Track(property)
	if t == nil {
		return nil, nil
	}
	return t.Frames(), nil
}

// Duplicate copies an object and all of its tracks under a new name,
// so the copy starts out with the source's baseline animation. An
// existing object with the target name is reused, not replaced.
func (d *Document) Duplicate(object, name string) error {
	src := d.Object(object)
	if src == nil {
		return fmt.Errorf("object %q not found", object)
	}
	if d.Object(name) != nil {
		return nil
	}
	dup := &Object{Name: name}
	for _, t := range src.Tracks {
		nt := &Track{Property: t.Property, Keyframes: make([]Keyframe, len(t.Keyframes))}
		for i, kf := range t.Keyframes {
			nt.Keyframes[i] = Keyframe{Frame: kf.Frame, Value: append([]float64(nil), kf.Value...)}
		}
		dup.Tracks = append(dup.Tracks, nt)
	}
	d.Objects = append(d.Objects, dup)
	return nil
}
