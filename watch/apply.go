// ABOUTME: Bridges watcher change events into a live playground session.
// ABOUTME: Changed files update a matching file in place or are added as new files.
package watch

import (
	"github.com/scratchpen/scratchpen/pad"
)

// Pad is the subset of a playground session the watcher needs. editor.Session
// satisfies it.
type Pad interface {
	State() (*pad.FileSet, pad.UIState)
	AddFile(kind pad.Kind) int
	RenameFile(kind pad.Kind, index int, newName string) error
	SetContent(kind pad.Kind, index int, text string) error
}

// ApplyTo returns a ChangeFunc that mirrors changed files into the pad. A
// change matching an existing file by name and kind updates it in place;
// otherwise a new file of that kind is added.
func ApplyTo(p Pad) ChangeFunc {
	return func(name string, kind pad.Kind, content string) error {
		fs, _ := p.State()
		for i, f := range fs.FilesOfKind(kind) {
			if f.Name == name {
				return p.SetContent(kind, i, content)
			}
		}

		idx := p.AddFile(kind)
		if err := p.RenameFile(kind, idx, name); err != nil {
			return err
		}
		return p.SetContent(kind, idx, content)
	}
}
