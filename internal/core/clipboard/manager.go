// Package clipboard implements the single-slot object clipboard.
package clipboard

import (
	"encoding/json"
	"fmt"

	deep "github.com/brunoga/deep/v5"
	"github.com/google/uuid"

	"github.com/bethropolis/easel/internal/document"
	"github.com/bethropolis/easel/internal/logger"
)

const (
	DefaultOffsetX = 10
	DefaultOffsetY = 10
)

// DocumentInterface defines what the clipboard needs from the document.
type DocumentInterface interface {
	Selected() []*document.Object
	Mutate(op document.Operation) error
	Select(ids ...string) error
}

// SystemClipboard is the operating system clipboard, holding plain text.
type SystemClipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

// Manager handles copy, cut and paste of canvas objects.
type Manager struct {
	doc    DocumentInterface
	system SystemClipboard // nil disables mirroring
	slot   []*document.Object
	dx, dy float64
	newID  func() string
}

// NewManager creates a clipboard that offsets each paste by (dx, dy).
// system may be nil.
func NewManager(doc DocumentInterface, dx, dy float64, system SystemClipboard) *Manager {
	return &Manager{
		doc:    doc,
		system: system,
		dx:     dx,
		dy:     dy,
		newID:  uuid.NewString,
	}
}

// Copy deep-copies the selection into the slot, replacing what was there.
func (m *Manager) Copy() (bool, error) {
	selected := m.doc.Selected()
	if len(selected) == 0 {
		return false, nil // Nothing to copy
	}
	m.slot = cloneAll(selected)
	logger.DebugTagf("clipboard", "Copied %d object(s)", len(m.slot))
	m.mirror()
	return true, nil
}

// Cut copies the selection and removes it from the document.
func (m *Manager) Cut() (bool, error) {
	ok, err := m.Copy()
	if !ok || err != nil {
		return ok, err
	}
	ids := make([]string, len(m.slot))
	for i, o := range m.slot {
		ids[i] = o.ID
	}
	if err := m.doc.Mutate(document.RemoveObjects{IDs: ids}); err != nil {
		return false, fmt.Errorf("cut: %w", err)
	}
	return true, nil
}

// Paste inserts a fresh copy of the slot, offset from where the previous
// paste (or the original) sat, selects it, and advances the slot.
func (m *Manager) Paste() (bool, error) {
	if len(m.slot) == 0 && !m.loadFromSystem() {
		return false, nil // Nothing in clipboard
	}

	pasted := cloneAll(m.slot)
	ids := make([]string, len(pasted))
	for i, o := range pasted {
		m.assignIDs(o)
		o.Left += m.dx
		o.Top += m.dy
		ids[i] = o.ID
	}

	if err := m.doc.Mutate(document.AddObjects{Objects: pasted}); err != nil {
		return false, fmt.Errorf("paste: %w", err)
	}
	for _, o := range m.slot {
		o.Left += m.dx
		o.Top += m.dy
	}
	if err := m.doc.Select(ids...); err != nil {
		return true, fmt.Errorf("select pasted objects: %w", err)
	}

	logger.DebugTagf("clipboard", "Pasted %d object(s)", len(pasted))
	return true, nil
}

func (m *Manager) assignIDs(o *document.Object) {
	if o == nil {
		return // rejected by the document's validation
	}
	o.ID = m.newID()
	for _, child := range o.Children {
		m.assignIDs(child)
	}
}

func cloneAll(objs []*document.Object) []*document.Object {
	return deep.Clone(objs)
}

// clip is the JSON form written to the system clipboard.
type clip struct {
	Format  string             `json:"format"`
	Objects []*document.Object `json:"objects"`
}

const clipFormat = "easel/objects+v1"

func (m *Manager) mirror() {
	if m.system == nil {
		return
	}
	data, err := json.Marshal(clip{Format: clipFormat, Objects: m.slot})
	if err != nil {
		logger.Warnf("clipboard: encode clip: %v", err)
		return
	}
	if err := m.system.WriteAll(string(data)); err != nil {
		logger.Warnf("clipboard: write system clipboard: %v", err)
	}
}

func (m *Manager) loadFromSystem() bool {
	if m.system == nil {
		return false
	}
	text, err := m.system.ReadAll()
	if err != nil {
		logger.Warnf("clipboard: read system clipboard: %v", err)
		return false
	}
	var c clip
	if err := json.Unmarshal([]byte(text), &c); err != nil || c.Format != clipFormat || len(c.Objects) == 0 {
		return false // Not one of ours
	}
	for _, o := range c.Objects {
		if o == nil {
			return false
		}
	}
	m.slot = c.Objects
	logger.DebugTagf("clipboard", "Loaded %d object(s) from system clipboard", len(m.slot))
	return true
}
