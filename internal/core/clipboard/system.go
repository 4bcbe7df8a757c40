package clipboard

import sysclip "github.com/atotto/clipboard"

type osClipboard struct{}

// System returns the operating system clipboard, or nil when the platform has
// no clipboard utility available.
func System() SystemClipboard {
	if sysclip.Unsupported {
		return nil
	}
	return osClipboard{}
}

func (osClipboard) ReadAll() (string, error)   { return sysclip.ReadAll() }
func (osClipboard) WriteAll(text string) error { return sysclip.WriteAll(text) }
