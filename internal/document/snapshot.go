package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	deep "github.com/brunoga/deep/v5"
)

// SnapshotVersion is the only snapshot schema this package reads and writes.
const SnapshotVersion = 1

// ErrInvalidSnapshot is wrapped by every structural validation failure.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Canvas is the decoded, mutable form of a document.
type Canvas struct {
	Width      float64   `json:"width"`
	Height     float64   `json:"height"`
	Background string    `json:"background,omitempty"`
	Objects    []*Object `json:"objects"`
}

// NewCanvas returns an empty canvas of the given size.
func NewCanvas(width, height float64, background string) *Canvas {
	return &Canvas{Width: width, Height: height, Background: background, Objects: []*Object{}}
}

// Clone deep-copies the canvas.
func (c *Canvas) Clone() *Canvas {
	out := deep.Clone(c)
	if out.Objects == nil {
		out.Objects = []*Object{}
	}
	return out
}

// index returns the top-level position of id, or -1.
func (c *Canvas) index(id string) int {
	for i, o := range c.Objects {
		if o.ID == id {
			return i
		}
	}
	return -1
}

// Validate checks the structural rules a snapshot must satisfy to be loadable.
func (c *Canvas) Validate() error {
	if !finite(c.Width) || !finite(c.Height) || c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("%w: canvas size %vx%v", ErrInvalidSnapshot, c.Width, c.Height)
	}
	seen := make(map[string]struct{})
	var err error
	for i, top := range c.Objects {
		if top == nil {
			return fmt.Errorf("%w: object %d is null", ErrInvalidSnapshot, i)
		}
		top.walk(func(o *Object) {
			if err != nil {
				return
			}
			err = validateObject(o, seen)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func validateObject(o *Object, seen map[string]struct{}) error {
	if o == nil {
		return fmt.Errorf("%w: null child object", ErrInvalidSnapshot)
	}
	if o.ID == "" {
		return fmt.Errorf("%w: object without id", ErrInvalidSnapshot)
	}
	if _, dup := seen[o.ID]; dup {
		return fmt.Errorf("%w: duplicate object id %q", ErrInvalidSnapshot, o.ID)
	}
	seen[o.ID] = struct{}{}
	if _, ok := knownTypes[o.Type]; !ok {
		return fmt.Errorf("%w: object %q has unknown type %q", ErrInvalidSnapshot, o.ID, o.Type)
	}
	for _, v := range o.numbers() {
		if !finite(v) {
			return fmt.Errorf("%w: object %q has a non-finite number", ErrInvalidSnapshot, o.ID)
		}
	}
	if len(o.Children) > 0 && o.Type != TypeGroup {
		return fmt.Errorf("%w: object %q of type %q has children", ErrInvalidSnapshot, o.ID, o.Type)
	}
	return nil
}

// Snapshot is an immutable, self-contained encoding of a canvas at one instant.
// The zero Snapshot is empty and not loadable.
type Snapshot struct {
	raw []byte
}

type snapshotWire struct {
	Version int `json:"version"`
	Canvas
}

// NewSnapshot encodes a validated canvas.
func NewSnapshot(c *Canvas) (Snapshot, error) {
	if err := c.Validate(); err != nil {
		return Snapshot{}, err
	}
	return encode(c)
}

func encode(c *Canvas) (Snapshot, error) {
	wire := snapshotWire{Version: SnapshotVersion, Canvas: *c}
	if wire.Objects == nil {
		wire.Objects = []*Object{}
	}
	raw, err := json.Marshal(wire)
	if err != nil {
		return Snapshot{}, fmt.Errorf("encode snapshot: %w", err)
	}
	return Snapshot{raw: raw}, nil
}

// ParseSnapshot decodes and validates data, returning it in canonical form.
func ParseSnapshot(data []byte) (Snapshot, error) {
	c, err := decode(data)
	if err != nil {
		return Snapshot{}, err
	}
	return encode(c)
}

func decode(data []byte) (*Canvas, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty data", ErrInvalidSnapshot)
	}
	var wire snapshotWire
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if wire.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, wire.Version)
	}
	c := wire.Canvas
	if c.Objects == nil {
		c.Objects = []*Object{}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Decode returns a fresh mutable canvas for the snapshot.
func (s Snapshot) Decode() (*Canvas, error) {
	return decode(s.raw)
}

// Bytes returns a copy of the canonical JSON encoding.
func (s Snapshot) Bytes() []byte {
	return bytes.Clone(s.raw)
}

// IsZero reports whether the snapshot holds no data.
func (s Snapshot) IsZero() bool { return len(s.raw) == 0 }

// Equal reports whether both snapshots encode the same canvas.
func (s Snapshot) Equal(o Snapshot) bool { return bytes.Equal(s.raw, o.raw) }

// MarshalJSON embeds the snapshot verbatim.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	if s.IsZero() {
		return []byte("null"), nil
	}
	return s.Bytes(), nil
}

// UnmarshalJSON validates and canonicalises the embedded snapshot.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = Snapshot{}
		return nil
	}
	parsed, err := ParseSnapshot(data)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s Snapshot) String() string { return string(s.raw) }
