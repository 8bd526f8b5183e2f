// ABOUTME: Zip bundle export/import for playground file sets.
// ABOUTME: A scratchpen.yaml manifest preserves kinds, order, and UI state; plain zips fall back to extension mapping.
package bundle

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/scratchpen/scratchpen/pad"
)

// ManifestName is the archive entry holding the bundle manifest.
const ManifestName = "scratchpen.yaml"

// manifestFormat is bumped when the manifest shape changes incompatibly.
const manifestFormat = 1

// maxEntrySize bounds a single decompressed entry to keep hostile archives
// from ballooning in memory.
const maxEntrySize = 10 << 20

// manifestFile describes one archive entry: which file it is and what kind it
// carries, independent of its extension.
type manifestFile struct {
	Path string `yaml:"path"`
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
}

// manifest is the scratchpen.yaml wire format.
type manifest struct {
	Format int            `yaml:"format"`
	Files  []manifestFile `yaml:"files"`
	Active map[string]int `yaml:"active"`
	UI     pad.UIState    `yaml:"ui"`
}

// Export serializes the FileSet into a zip archive of name→content entries
// plus a manifest. Entry paths derive from file names and kind extensions;
// duplicate paths (duplicate names are permitted in the model) are
// disambiguated with -2, -3, ... suffixes because zip readers disagree on
// duplicate entries.
func Export(fs *pad.FileSet, ui pad.UIState) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	man := manifest{
		Format: manifestFormat,
		Active: make(map[string]int),
		UI:     ui,
	}
	for _, k := range pad.Kinds() {
		if fs.CountOfKind(k) > 0 {
			man.Active[k.String()] = fs.ActiveIndex(k)
		}
	}

	used := make(map[string]int)
	for _, f := range fs.Files() {
		entryPath := entryPathFor(f, used)
		man.Files = append(man.Files, manifestFile{
			Path: entryPath,
			Name: f.Name,
			Kind: f.Kind.String(),
		})

		w, err := zw.Create(entryPath)
		if err != nil {
			return nil, fmt.Errorf("create entry %s: %w", entryPath, err)
		}
		if _, err := w.Write([]byte(f.Content)); err != nil {
			return nil, fmt.Errorf("write entry %s: %w", entryPath, err)
		}
	}

	manData, err := yaml.Marshal(man)
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	w, err := zw.Create(ManifestName)
	if err != nil {
		return nil, fmt.Errorf("create manifest entry: %w", err)
	}
	if _, err := w.Write(manData); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

// Import parses a zip bundle into a FileSet and UI state. When the archive
// carries a manifest, it is authoritative for names, kinds, order, and active
// selection. Without one, entries import in archive order with kinds mapped
// from extensions (unrecognized extensions become the generic text kind).
// Errors leave the caller's state untouched; the caller reports them.
func Import(data []byte) (*pad.FileSet, pad.UIState, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, pad.UIState{}, fmt.Errorf("read archive: %w", err)
	}

	entries := make(map[string]*zip.File)
	var order []string
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if _, seen := entries[f.Name]; !seen {
			order = append(order, f.Name)
		}
		entries[f.Name] = f
	}

	if manEntry, ok := entries[ManifestName]; ok {
		return importWithManifest(manEntry, entries)
	}

	fs := pad.NewFileSet()
	for _, name := range order {
		content, err := readEntry(entries[name])
		if err != nil {
			return nil, pad.UIState{}, err
		}
		base := path.Base(name)
		ext := path.Ext(base)
		fs.Append(pad.SourceFile{
			Name:    strings.TrimSuffix(base, ext),
			Kind:    pad.KindForExtension(ext),
			Content: content,
		})
	}
	if fs.Len() == 0 {
		return nil, pad.UIState{}, fmt.Errorf("archive contains no files")
	}
	return fs, pad.DefaultUIState(), nil
}

// importWithManifest rebuilds the FileSet exactly as the manifest describes.
func importWithManifest(manEntry *zip.File, entries map[string]*zip.File) (*pad.FileSet, pad.UIState, error) {
	manData, err := readEntry(manEntry)
	if err != nil {
		return nil, pad.UIState{}, err
	}

	var man manifest
	if err := yaml.Unmarshal([]byte(manData), &man); err != nil {
		return nil, pad.UIState{}, fmt.Errorf("parse manifest: %w", err)
	}
	if man.Format != manifestFormat {
		return nil, pad.UIState{}, fmt.Errorf("unsupported manifest format %d", man.Format)
	}
	if len(man.Files) == 0 {
		return nil, pad.UIState{}, fmt.Errorf("manifest lists no files")
	}

	fs := pad.NewFileSet()
	for _, mf := range man.Files {
		kind, err := pad.ParseKind(mf.Kind)
		if err != nil {
			return nil, pad.UIState{}, fmt.Errorf("manifest entry %s: %w", mf.Path, err)
		}
		entry, ok := entries[mf.Path]
		if !ok {
			return nil, pad.UIState{}, fmt.Errorf("manifest references missing entry %s", mf.Path)
		}
		content, err := readEntry(entry)
		if err != nil {
			return nil, pad.UIState{}, err
		}
		fs.Append(pad.SourceFile{Name: mf.Name, Kind: kind, Content: content})
	}

	for name, idx := range man.Active {
		kind, err := pad.ParseKind(name)
		if err != nil {
			return nil, pad.UIState{}, fmt.Errorf("manifest active map: %w", err)
		}
		if idx < 0 || idx >= fs.CountOfKind(kind) {
			idx = 0
		}
		if fs.CountOfKind(kind) > 0 {
			if err := fs.SetActive(kind, idx); err != nil {
				return nil, pad.UIState{}, err
			}
		}
	}

	return fs, man.UI.Normalize(), nil
}

// entryPathFor derives a unique archive path for a file, tracking used paths.
func entryPathFor(f pad.SourceFile, used map[string]int) string {
	base := sanitizeEntryName(f.Name)
	if base == "" {
		base = f.Kind.DefaultName()
	}
	candidate := base + f.Kind.Ext()
	// A suffixed candidate can itself collide with a file literally named
	// that way, so keep counting until the path is unused.
	for n := 2; used[candidate] > 0; n++ {
		candidate = fmt.Sprintf("%s-%d%s", base, n, f.Kind.Ext())
	}
	used[candidate]++
	return candidate
}

// sanitizeEntryName strips path separators and control characters so a file
// name can never escape the archive root.
func sanitizeEntryName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r == '/' || r == '\\' || r < 32 || r == 127 {
			continue
		}
		b.WriteRune(r)
	}
	out := strings.TrimSpace(b.String())
	out = strings.TrimPrefix(out, ".")
	return out
}

// readEntry decompresses one archive entry with a size cap.
func readEntry(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open entry %s: %w", f.Name, err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(io.LimitReader(rc, maxEntrySize+1))
	if err != nil {
		return "", fmt.Errorf("read entry %s: %w", f.Name, err)
	}
	if len(data) > maxEntrySize {
		return "", fmt.Errorf("entry %s exceeds %d bytes", f.Name, maxEntrySize)
	}
	return string(data), nil
}
