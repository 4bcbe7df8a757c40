// internal/theme/theme.go
package theme

import (
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/bethropolis/easel/internal/logger"
)

// Theme maps UI element names to terminal styles.
type Theme struct {
	Name   string
	IsDark bool
	Styles map[string]tcell.Style
}

// GetStyle resolves name, falling back to its base name (the part before the
// first dot) and then to "Default".
func (t *Theme) GetStyle(name string) tcell.Style {
	if style, ok := t.Styles[name]; ok {
		return style
	}

	if dotIndex := strings.Index(name, "."); dotIndex != -1 {
		baseName := name[:dotIndex]
		if style, ok := t.Styles[baseName]; ok {
			return style
		}
	}

	if defStyle, ok := t.Styles["Default"]; ok {
		return defStyle
	}

	logger.Warnf("Theme '%s': Style '%s' and 'Default' style not found, using tcell default.", t.Name, name)
	return tcell.StyleDefault
}

// ObjectStyle returns the style for an object with the given fill. Fills that
// parse as colours tint the object; anything else uses the theme's Object style.
func (t *Theme) ObjectStyle(kind, fill string) tcell.Style {
	style := t.GetStyle("Object." + kind)
	if fill == "" {
		return style
	}
	color, err := parseColorString(fill)
	if err != nil || color == tcell.ColorDefault {
		return style
	}
	return style.Foreground(color)
}

// Built-in themes
var (
	EaselDark  = newEaselDark()
	EaselLight = newEaselLight()
)

func newEaselDark() Theme {
	bg := tcell.NewHexColor(0x1f2430)
	panel := tcell.NewHexColor(0x2a2f38)
	fg := tcell.NewHexColor(0xc5cdd9)
	muted := tcell.NewHexColor(0x5c6370)
	accent := tcell.NewHexColor(0x61afef)
	yellow := tcell.NewHexColor(0xe5c07b)
	red := tcell.NewHexColor(0xe06c75)
	green := tcell.NewHexColor(0x98c379)

	base := tcell.StyleDefault.Background(tcell.ColorReset).Foreground(fg)
	canvas := tcell.StyleDefault.Background(bg).Foreground(fg)

	return Theme{
		Name:   "Easel Dark",
		IsDark: true,
		Styles: map[string]tcell.Style{
			"Default":      base,
			"Canvas":       canvas,
			"CanvasBorder": base.Foreground(muted),
			"Object":       canvas.Foreground(accent),
			"Object.text":  canvas.Foreground(fg).Bold(true),
			"Object.line":  canvas.Foreground(muted),
			"Selection":    canvas.Foreground(yellow).Bold(true),
			"TextEntry":    canvas.Foreground(yellow).Underline(true),

			"StatusBar":         tcell.StyleDefault.Background(panel).Foreground(fg),
			"StatusBarModified": tcell.StyleDefault.Background(panel).Foreground(yellow),
			"StatusBarSaved":    tcell.StyleDefault.Background(panel).Foreground(green),
			"StatusBarError":    tcell.StyleDefault.Background(panel).Foreground(red).Bold(true),
			"StatusBarMessage":  tcell.StyleDefault.Background(panel).Foreground(fg).Bold(true),
			"StatusBarMode":     tcell.StyleDefault.Background(accent).Foreground(panel).Bold(true),
		},
	}
}

func newEaselLight() Theme {
	bg := tcell.NewHexColor(0xffffff)
	panel := tcell.NewHexColor(0xe5e7eb)
	fg := tcell.NewHexColor(0x111827)
	muted := tcell.NewHexColor(0x9ca3af)
	accent := tcell.NewHexColor(0x4f46e5)
	amber := tcell.NewHexColor(0xb45309)
	red := tcell.NewHexColor(0xb91c1c)
	green := tcell.NewHexColor(0x15803d)

	base := tcell.StyleDefault.Background(tcell.ColorReset).Foreground(fg)
	canvas := tcell.StyleDefault.Background(bg).Foreground(fg)

	return Theme{
		Name: "Easel Light",
		Styles: map[string]tcell.Style{
			"Default":      base,
			"Canvas":       canvas,
			"CanvasBorder": base.Foreground(muted),
			"Object":       canvas.Foreground(accent),
			"Object.text":  canvas.Foreground(fg).Bold(true),
			"Object.line":  canvas.Foreground(muted),
			"Selection":    canvas.Foreground(amber).Bold(true),
			"TextEntry":    canvas.Foreground(amber).Underline(true),

			"StatusBar":         tcell.StyleDefault.Background(panel).Foreground(fg),
			"StatusBarModified": tcell.StyleDefault.Background(panel).Foreground(amber),
			"StatusBarSaved":    tcell.StyleDefault.Background(panel).Foreground(green),
			"StatusBarError":    tcell.StyleDefault.Background(panel).Foreground(red).Bold(true),
			"StatusBarMessage":  tcell.StyleDefault.Background(panel).Foreground(fg).Bold(true),
			"StatusBarMode":     tcell.StyleDefault.Background(accent).Foreground(bg).Bold(true),
		},
	}
}
