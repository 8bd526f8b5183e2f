// ABOUTME: JSON wire format for FileSet snapshots with versioning and strict decode.
// ABOUTME: EncodeSnapshot/DecodeSnapshot are shared by persistence and session undo stacks.
package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/scratchpen/scratchpen/pad"
)

// snapshotFormat is bumped when the wire shape changes incompatibly.
const snapshotFormat = 1

// fileJSON is the wire form of a single source file.
type fileJSON struct {
	Name    string   `json:"name"`
	Kind    pad.Kind `json:"kind"`
	Content string   `json:"content"`
}

// snapshotJSON is the wire form of a full session snapshot.
type snapshotJSON struct {
	Format  int            `json:"format"`
	Files   []fileJSON     `json:"files"`
	Active  map[string]int `json:"active"`
	UI      pad.UIState    `json:"ui"`
	SavedAt time.Time      `json:"saved_at"`
}

// EncodeSnapshot serializes a FileSet and UI state to the snapshot wire format.
func EncodeSnapshot(fs *pad.FileSet, ui pad.UIState) ([]byte, error) {
	snap := snapshotJSON{
		Format:  snapshotFormat,
		Active:  make(map[string]int),
		UI:      ui,
		SavedAt: time.Now().UTC(),
	}
	for _, f := range fs.Files() {
		snap.Files = append(snap.Files, fileJSON{Name: f.Name, Kind: f.Kind, Content: f.Content})
	}
	for _, k := range pad.Kinds() {
		if fs.CountOfKind(k) > 0 {
			snap.Active[k.String()] = fs.ActiveIndex(k)
		}
	}
	return json.Marshal(snap)
}

// DecodeSnapshot reconstructs a FileSet and UI state from snapshot bytes.
// Unknown formats and malformed payloads return an error; callers fall back
// to defaults rather than propagating it to the user.
func DecodeSnapshot(data []byte) (*pad.FileSet, pad.UIState, error) {
	var snap snapshotJSON
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, pad.UIState{}, fmt.Errorf("parse snapshot: %w", err)
	}
	if snap.Format != snapshotFormat {
		return nil, pad.UIState{}, fmt.Errorf("unsupported snapshot format %d", snap.Format)
	}

	fs := pad.NewFileSet()
	for _, f := range snap.Files {
		if !f.Kind.Valid() {
			return nil, pad.UIState{}, fmt.Errorf("snapshot file %q has invalid kind", f.Name)
		}
		fs.Append(pad.SourceFile{Name: f.Name, Kind: f.Kind, Content: f.Content})
	}
	for name, idx := range snap.Active {
		kind, err := pad.ParseKind(name)
		if err != nil {
			return nil, pad.UIState{}, fmt.Errorf("snapshot active map: %w", err)
		}
		// Clamp rather than reject: an index stranded by a removed file should
		// not invalidate the whole snapshot.
		if idx < 0 || idx >= fs.CountOfKind(kind) {
			idx = 0
		}
		if fs.CountOfKind(kind) > 0 {
			if err := fs.SetActive(kind, idx); err != nil {
				return nil, pad.UIState{}, err
			}
		}
	}
	return fs, snap.UI.Normalize(), nil
}
