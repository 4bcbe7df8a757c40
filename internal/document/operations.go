package document

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrObjectNotFound is returned when an operation names an object the canvas lacks.
	ErrObjectNotFound = errors.New("object not found")
	// ErrInvalidOperation is returned for operations that could never apply.
	ErrInvalidOperation = errors.New("invalid operation")
)

// Operation is one user-level change to the canvas.
type Operation interface {
	// Name identifies the operation in logs and events.
	Name() string
	// CoalesceKey groups repeated operations on the same target. Empty never coalesces.
	CoalesceKey() string
	// Apply mutates c in place. It may leave c half-modified on error; the
	// document only ever hands it a scratch copy.
	Apply(c *Canvas) error
}

func idsKey(prefix string, ids []string) string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	return prefix + ":" + strings.Join(sorted, ",")
}

func lookup(c *Canvas, id string) (*Object, error) {
	if i := c.index(id); i >= 0 {
		return c.Objects[i], nil
	}
	return nil, fmt.Errorf("%w: %q", ErrObjectNotFound, id)
}

// AddObjects appends clones of Objects on top of the z-order.
type AddObjects struct {
	Objects []*Object
}

func (AddObjects) Name() string        { return "add" }
func (AddObjects) CoalesceKey() string { return "" }

func (op AddObjects) Apply(c *Canvas) error {
	if len(op.Objects) == 0 {
		return fmt.Errorf("%w: nothing to add", ErrInvalidOperation)
	}
	for _, o := range op.Objects {
		if o == nil {
			return fmt.Errorf("%w: nil object", ErrInvalidOperation)
		}
		c.Objects = append(c.Objects, o.Clone())
	}
	return nil
}

// RemoveObjects deletes the named top-level objects.
type RemoveObjects struct {
	IDs []string
}

func (RemoveObjects) Name() string        { return "remove" }
func (RemoveObjects) CoalesceKey() string { return "" }

func (op RemoveObjects) Apply(c *Canvas) error {
	if len(op.IDs) == 0 {
		return fmt.Errorf("%w: nothing to remove", ErrInvalidOperation)
	}
	drop := make(map[string]struct{}, len(op.IDs))
	for _, id := range op.IDs {
		if c.index(id) < 0 {
			return fmt.Errorf("%w: %q", ErrObjectNotFound, id)
		}
		drop[id] = struct{}{}
	}
	kept := c.Objects[:0]
	for _, o := range c.Objects {
		if _, gone := drop[o.ID]; !gone {
			kept = append(kept, o)
		}
	}
	c.Objects = kept
	return nil
}

// MoveObjects translates the named objects by (DX, DY).
type MoveObjects struct {
	IDs    []string
	DX, DY float64
}

func (MoveObjects) Name() string { return "move" }

func (op MoveObjects) CoalesceKey() string { return idsKey("move", op.IDs) }

func (op MoveObjects) Apply(c *Canvas) error {
	if len(op.IDs) == 0 {
		return fmt.Errorf("%w: nothing to move", ErrInvalidOperation)
	}
	for _, id := range op.IDs {
		o, err := lookup(c, id)
		if err != nil {
			return err
		}
		o.Left += op.DX
		o.Top += op.DY
	}
	return nil
}

// ResizeObject sets the unscaled size of one object.
type ResizeObject struct {
	ID            string
	Width, Height float64
}

func (ResizeObject) Name() string { return "resize" }

func (op ResizeObject) CoalesceKey() string { return "resize:" + op.ID }

func (op ResizeObject) Apply(c *Canvas) error {
	if op.Width < 0 || op.Height < 0 {
		return fmt.Errorf("%w: negative size %vx%v", ErrInvalidOperation, op.Width, op.Height)
	}
	o, err := lookup(c, op.ID)
	if err != nil {
		return err
	}
	o.Width, o.Height = op.Width, op.Height
	return nil
}

// RotateObject sets the rotation of one object in degrees, normalised to [0, 360).
type RotateObject struct {
	ID    string
	Angle float64
}

func (RotateObject) Name() string { return "rotate" }

func (op RotateObject) CoalesceKey() string { return "rotate:" + op.ID }

func (op RotateObject) Apply(c *Canvas) error {
	o, err := lookup(c, op.ID)
	if err != nil {
		return err
	}
	a := op.Angle
	for a < 0 {
		a += 360
	}
	for a >= 360 {
		a -= 360
	}
	o.Angle = a
	return nil
}

// Restyle changes the paint of the named objects. Nil fields are left alone.
type Restyle struct {
	IDs     []string
	Fill    *string
	Stroke  *string
	Opacity *float64
}

func (Restyle) Name() string        { return "restyle" }
func (Restyle) CoalesceKey() string { return "" }

func (op Restyle) Apply(c *Canvas) error {
	if op.Opacity != nil && (*op.Opacity < 0 || *op.Opacity > 1) {
		return fmt.Errorf("%w: opacity %v out of range", ErrInvalidOperation, *op.Opacity)
	}
	for _, id := range op.IDs {
		o, err := lookup(c, id)
		if err != nil {
			return err
		}
		if op.Fill != nil {
			o.Fill = *op.Fill
		}
		if op.Stroke != nil {
			o.Stroke = *op.Stroke
		}
		if op.Opacity != nil {
			o.Opacity = *op.Opacity
		}
	}
	return nil
}

// SetText replaces the content of a text object.
type SetText struct {
	ID   string
	Text string
}

func (SetText) Name() string { return "text" }

func (op SetText) CoalesceKey() string { return "text:" + op.ID }

func (op SetText) Apply(c *Canvas) error {
	o, err := lookup(c, op.ID)
	if err != nil {
		return err
	}
	if o.Type != TypeText {
		return fmt.Errorf("%w: object %q is a %s, not text", ErrInvalidOperation, op.ID, o.Type)
	}
	o.Text = op.Text
	return nil
}

// ReorderDirection says where Reorder moves an object in the z-order.
type ReorderDirection int

const (
	BringForward ReorderDirection = iota
	SendBackward
	BringToFront
	SendToBack
)

// Reorder moves one object within the z-order.
type Reorder struct {
	ID        string
	Direction ReorderDirection
}

func (Reorder) Name() string        { return "reorder" }
func (Reorder) CoalesceKey() string { return "" }

func (op Reorder) Apply(c *Canvas) error {
	i := c.index(op.ID)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrObjectNotFound, op.ID)
	}
	last := len(c.Objects) - 1
	var j int
	switch op.Direction {
	case BringForward:
		j = min(i+1, last)
	case SendBackward:
		j = max(i-1, 0)
	case BringToFront:
		j = last
	case SendToBack:
		j = 0
	default:
		return fmt.Errorf("%w: unknown reorder direction %d", ErrInvalidOperation, op.Direction)
	}
	o := c.Objects[i]
	c.Objects = append(c.Objects[:i], c.Objects[i+1:]...)
	c.Objects = append(c.Objects[:j], append([]*Object{o}, c.Objects[j:]...)...)
	return nil
}

// SetBackground changes the canvas background colour.
type SetBackground struct {
	Color string
}

func (SetBackground) Name() string        { return "background" }
func (SetBackground) CoalesceKey() string { return "background" }

func (op SetBackground) Apply(c *Canvas) error {
	c.Background = op.Color
	return nil
}

// ResizeCanvas changes the canvas dimensions. Objects keep their positions.
type ResizeCanvas struct {
	Width, Height float64
}

func (ResizeCanvas) Name() string        { return "resize-canvas" }
func (ResizeCanvas) CoalesceKey() string { return "resize-canvas" }

func (op ResizeCanvas) Apply(c *Canvas) error {
	if op.Width <= 0 || op.Height <= 0 {
		return fmt.Errorf("%w: canvas size %vx%v", ErrInvalidOperation, op.Width, op.Height)
	}
	c.Width, c.Height = op.Width, op.Height
	return nil
}
