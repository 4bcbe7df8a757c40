// Package document holds the live canvas: its objects, the selection over them,
// and the immutable snapshots the history and persistence layers exchange.
package document

import (
	"math"

	deep "github.com/brunoga/deep/v5"
)

// ObjectType names the kind of a canvas object.
type ObjectType string

const (
	TypeRect     ObjectType = "rect"
	TypeEllipse  ObjectType = "ellipse"
	TypeTriangle ObjectType = "triangle"
	TypeLine     ObjectType = "line"
	TypeText     ObjectType = "text"
	TypeImage    ObjectType = "image"
	TypeGroup    ObjectType = "group"
)

var knownTypes = map[ObjectType]struct{}{
	TypeRect: {}, TypeEllipse: {}, TypeTriangle: {}, TypeLine: {},
	TypeText: {}, TypeImage: {}, TypeGroup: {},
}

// Object describes one drawable on the canvas. Its z-order is its index in the
// canvas object list. Group children use coordinates relative to the group.
type Object struct {
	ID   string     `json:"id"`
	Type ObjectType `json:"type"`

	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Angle  float64 `json:"angle,omitempty"`
	ScaleX float64 `json:"scaleX,omitempty"`
	ScaleY float64 `json:"scaleY,omitempty"`

	Fill        string  `json:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	Opacity     float64 `json:"opacity,omitempty"`

	Text       string  `json:"text,omitempty"`
	FontSize   float64 `json:"fontSize,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty"`
	FontWeight int     `json:"fontWeight,omitempty"`
	TextAlign  string  `json:"textAlign,omitempty"`

	Src string `json:"src,omitempty"`

	// Selectable is nil for the default (selectable). An explicit false keeps the
	// object out of select-all, hit testing and manual selection.
	Selectable *bool `json:"selectable,omitempty"`

	Children []*Object `json:"objects,omitempty"`
}

// IsSelectable reports whether the object may join the selection.
func (o *Object) IsSelectable() bool {
	return o.Selectable == nil || *o.Selectable
}

// Clone returns a structural deep copy: no pointer or slice is shared with o.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	return deep.Clone(o)
}

// Bounds returns the axis-aligned box of the object in its parent's space,
// honouring scale but ignoring rotation.
func (o *Object) Bounds() (left, top, width, height float64) {
	sx, sy := o.ScaleX, o.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	return o.Left, o.Top, o.Width * sx, o.Height * sy
}

// Contains reports whether the point lies inside the object's bounds.
func (o *Object) Contains(x, y float64) bool {
	l, t, w, h := o.Bounds()
	return x >= l && x <= l+w && y >= t && y <= t+h
}

// walk visits o and its descendants depth first. A nil child is visited but
// not descended into.
func (o *Object) walk(fn func(*Object)) {
	fn(o)
	if o == nil {
		return
	}
	for _, child := range o.Children {
		child.walk(fn)
	}
}

func (o *Object) numbers() []float64 {
	return []float64{o.Left, o.Top, o.Width, o.Height, o.Angle, o.ScaleX, o.ScaleY,
		o.StrokeWidth, o.Opacity, o.FontSize}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Bool returns a pointer to b, for literal Selectable values.
func Bool(b bool) *bool { return &b }
