// internal/tui/drawing.go
package tui

import (
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/bethropolis/easel/internal/document"
	"github.com/bethropolis/easel/internal/theme"
)

// Viewport maps canvas units to terminal cells. The canvas origin sits at
// cell (Left, Top).
type Viewport struct {
	Left, Top  int
	CellWidth  float64
	CellHeight float64
}

// ToCell converts a canvas point to the cell containing it.
func (v Viewport) ToCell(x, y float64) (col, row int) {
	return v.Left + int(math.Floor(x/v.CellWidth)), v.Top + int(math.Floor(y/v.CellHeight))
}

// ToCanvas converts a cell to the canvas point at its centre.
func (v Viewport) ToCanvas(col, row int) (x, y float64) {
	return (float64(col-v.Left) + 0.5) * v.CellWidth, (float64(row-v.Top) + 0.5) * v.CellHeight
}

// CanvasView is what the renderer reads from the document.
type CanvasView interface {
	Size() (width, height float64)
	Objects() []*document.Object
	IsSelected(id string) bool
}

// TextEntry is a text object whose uncommitted content replaces its text.
type TextEntry struct {
	ID     string
	Text   string
	Active bool
}

// rect is a cell rectangle, inclusive of both corners.
type rect struct{ x0, y0, x1, y1 int }

type painter struct {
	screen tcell.Screen
	clip   rect
}

func (p painter) set(x, y int, r rune, style tcell.Style) {
	if x < p.clip.x0 || x > p.clip.x1 || y < p.clip.y0 || y > p.clip.y1 {
		return
	}
	p.screen.SetContent(x, y, r, nil, style)
}

// DrawCanvas renders the document into the area above the status bar.
func DrawCanvas(screen tcell.Screen, doc CanvasView, view Viewport, th *theme.Theme, entry TextEntry) {
	width, height := screen.Size()
	viewHeight := height - 1 // status bar
	if viewHeight <= 0 || width <= 0 {
		return
	}
	screenClip := rect{0, 0, width - 1, viewHeight - 1}

	cw, ch := doc.Size()
	x1, y1 := view.ToCell(cw, ch)
	area := rect{view.Left, view.Top, x1 - 1, y1 - 1}

	// Border around the canvas, then the canvas itself.
	border := painter{screen: screen, clip: screenClip}
	drawBox(border, rect{area.x0 - 1, area.y0 - 1, area.x1 + 1, area.y1 + 1}, th.GetStyle("CanvasBorder"), boxSquare)

	p := painter{screen: screen, clip: intersect(screenClip, area)}
	canvasStyle := th.GetStyle("Canvas")
	for y := p.clip.y0; y <= p.clip.y1; y++ {
		for x := p.clip.x0; x <= p.clip.x1; x++ {
			screen.SetContent(x, y, ' ', nil, canvasStyle)
		}
	}

	for _, o := range doc.Objects() {
		selected := doc.IsSelected(o.ID)
		drawObject(p, view, 0, 0, o, th, selected, entry)
	}
}

func intersect(a, b rect) rect {
	return rect{max(a.x0, b.x0), max(a.y0, b.y0), min(a.x1, b.x1), min(a.y1, b.y1)}
}

// drawObject draws o offset by its parent's origin (ox, oy).
func drawObject(p painter, view Viewport, ox, oy float64, o *document.Object, th *theme.Theme, selected bool, entry TextEntry) {
	l, t, w, h := o.Bounds()
	c0, r0 := view.ToCell(ox+l, oy+t)
	c1, r1 := view.ToCell(ox+l+w, oy+t+h)
	if c1 > c0 {
		c1--
	}
	if r1 > r0 {
		r1--
	}
	box := rect{c0, r0, c1, r1}

	style := th.ObjectStyle(string(o.Type), o.Fill)
	if o.Type == document.TypeLine && o.Stroke != "" {
		style = th.ObjectStyle(string(o.Type), o.Stroke)
	}
	if selected {
		style = th.GetStyle("Selection")
	}

	switch o.Type {
	case document.TypeLine:
		for x := box.x0; x <= box.x1; x++ {
			p.set(x, box.y0, '─', style)
		}
	case document.TypeText:
		text, textStyle := o.Text, style
		if entry.Active && entry.ID == o.ID {
			text, textStyle = entry.Text, th.GetStyle("TextEntry")
		}
		if selected {
			drawBox(p, box, style, boxDashed)
			drawText(p, rect{box.x0 + 1, box.y0 + 1, box.x1 - 1, box.y1 - 1}, text, textStyle)
		} else {
			drawText(p, box, text, textStyle)
		}
	case document.TypeEllipse:
		drawBox(p, box, style, boxRound)
	case document.TypeGroup:
		drawBox(p, box, style, boxDashed)
		for _, child := range o.Children {
			drawObject(p, view, ox+l, oy+t, child, th, false, entry)
		}
	default:
		drawBox(p, box, style, boxSquare)
	}
}

type boxRunes struct {
	h, v, tl, tr, bl, br rune
}

var (
	boxSquare = boxRunes{'─', '│', '┌', '┐', '└', '┘'}
	boxRound  = boxRunes{'─', '│', '╭', '╮', '╰', '╯'}
	boxDashed = boxRunes{'╌', '╎', '┌', '┐', '└', '┘'}
)

func drawBox(p painter, r rect, style tcell.Style, b boxRunes) {
	switch {
	case r.x0 == r.x1 && r.y0 == r.y1:
		p.set(r.x0, r.y0, '▪', style)
		return
	case r.y0 == r.y1:
		for x := r.x0 + 1; x < r.x1; x++ {
			p.set(x, r.y0, b.h, style)
		}
		p.set(r.x0, r.y0, '[', style)
		p.set(r.x1, r.y0, ']', style)
		return
	case r.x0 == r.x1:
		for y := r.y0; y <= r.y1; y++ {
			p.set(r.x0, y, b.v, style)
		}
		return
	}
	for x := r.x0 + 1; x < r.x1; x++ {
		p.set(x, r.y0, b.h, style)
		p.set(x, r.y1, b.h, style)
	}
	for y := r.y0 + 1; y < r.y1; y++ {
		p.set(r.x0, y, b.v, style)
		p.set(r.x1, y, b.v, style)
	}
	p.set(r.x0, r.y0, b.tl, style)
	p.set(r.x1, r.y0, b.tr, style)
	p.set(r.x0, r.y1, b.bl, style)
	p.set(r.x1, r.y1, b.br, style)
}

// drawText lays text into r, wrapping on cell width by grapheme cluster.
func drawText(p painter, r rect, text string, style tcell.Style) {
	if r.x1 < r.x0 {
		r.x1 = r.x0
	}
	x, y := r.x0, r.y0
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		runes := gr.Runes()
		if len(runes) == 1 && runes[0] == '\n' {
			x, y = r.x0, y+1
			continue
		}
		w := gr.Width()
		if x+w-1 > r.x1 && x > r.x0 {
			x, y = r.x0, y+1
		}
		if y > r.y1 {
			return
		}
		if x >= p.clip.x0 && x+w-1 <= p.clip.x1 && y >= p.clip.y0 && y <= p.clip.y1 {
			p.screen.SetContent(x, y, runes[0], runes[1:], style)
		}
		x += w
	}
}
