// ABOUTME: FileSet holds the ordered collection of source files and per-kind active selection.
// ABOUTME: Implements add/remove/rename/edit/select with the last-file-of-kind removal guard.
package pad

import "fmt"

// SourceFile is a single editable file in the playground. Names are
// user-editable and not required to be unique; duplicates are permitted.
type SourceFile struct {
	Name    string
	Kind    Kind
	Content string
}

// FileSet is the ordered collection of SourceFile entries, implicitly
// partitioned by kind, plus the active (displayed) file index per kind.
// Active indexes are positions within a kind's subsequence, not global
// positions. FileSet is not safe for concurrent use; callers that share one
// across goroutines must hold their own lock (editor.Session does).
type FileSet struct {
	files  []SourceFile
	active map[Kind]int
}

// NewFileSet creates an empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{active: make(map[Kind]int)}
}

// DefaultFileSet creates the starter FileSet for a fresh playground:
// one markup, one style, and one script file with placeholder content.
func DefaultFileSet() *FileSet {
	fs := NewFileSet()
	fs.AddFile(KindMarkup)
	fs.AddFile(KindStyle)
	fs.AddFile(KindScript)
	return fs
}

// Len returns the total number of files across all kinds.
func (fs *FileSet) Len() int {
	return len(fs.files)
}

// Files returns a copy of all files in insertion order.
func (fs *FileSet) Files() []SourceFile {
	out := make([]SourceFile, len(fs.files))
	copy(out, fs.files)
	return out
}

// FilesOfKind returns copies of the files of the given kind, in insertion order.
func (fs *FileSet) FilesOfKind(kind Kind) []SourceFile {
	var out []SourceFile
	for _, f := range fs.files {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

// CountOfKind returns the number of files of the given kind.
func (fs *FileSet) CountOfKind(kind Kind) int {
	n := 0
	for _, f := range fs.files {
		if f.Kind == kind {
			n++
		}
	}
	return n
}

// ActiveIndex returns the active file index for the kind. Kinds with no files
// report 0.
func (fs *FileSet) ActiveIndex(kind Kind) int {
	return fs.active[kind]
}

// ActiveFile returns a copy of the active file for the kind, or false if the
// kind has no files.
func (fs *FileSet) ActiveFile(kind Kind) (SourceFile, bool) {
	files := fs.FilesOfKind(kind)
	if len(files) == 0 {
		return SourceFile{}, false
	}
	idx := fs.active[kind]
	if idx < 0 || idx >= len(files) {
		idx = 0
	}
	return files[idx], true
}

// AddFile appends a new file of the given kind with a generated name and
// placeholder content, makes it the active file for its kind, and returns its
// index within the kind. The generated name is the kind's default name
// followed by the count of files of that kind plus one; it looks unique but
// uniqueness is not enforced.
func (fs *FileSet) AddFile(kind Kind) int {
	n := fs.CountOfKind(kind) + 1
	fs.files = append(fs.files, SourceFile{
		Name:    fmt.Sprintf("%s%d", kind.DefaultName(), n),
		Kind:    kind,
		Content: kind.Placeholder(),
	})
	idx := n - 1
	fs.active[kind] = idx
	return idx
}

// Append adds an already-constructed file (used by import and persistence
// restore). The file does not become active unless it is the first of its kind.
func (fs *FileSet) Append(f SourceFile) {
	fs.files = append(fs.files, f)
	if _, ok := fs.active[f.Kind]; !ok {
		fs.active[f.Kind] = 0
	}
}

// RemoveFile removes the file at the kind-relative index. Removing the last
// remaining file of a kind is not permitted and is a silent no-op; the return
// value reports whether a file was removed. After a successful removal the
// active index for that kind resets to 0.
func (fs *FileSet) RemoveFile(kind Kind, index int) bool {
	if fs.CountOfKind(kind) <= 1 {
		return false
	}
	global, ok := fs.globalIndex(kind, index)
	if !ok {
		return false
	}
	fs.files = append(fs.files[:global], fs.files[global+1:]...)
	fs.active[kind] = 0
	return true
}

// RenameFile replaces the name of the file at the kind-relative index.
// Duplicate names are permitted.
func (fs *FileSet) RenameFile(kind Kind, index int, newName string) error {
	global, ok := fs.globalIndex(kind, index)
	if !ok {
		return fmt.Errorf("no %s file at index %d", kind, index)
	}
	fs.files[global].Name = newName
	return nil
}

// SetContent replaces the content of the file at the kind-relative index
// verbatim. The body is opaque text; no validation or parsing is applied.
func (fs *FileSet) SetContent(kind Kind, index int, text string) error {
	global, ok := fs.globalIndex(kind, index)
	if !ok {
		return fmt.Errorf("no %s file at index %d", kind, index)
	}
	fs.files[global].Content = text
	return nil
}

// SetActive updates the active pointer for the kind. An out-of-range index is
// a caller error; callers presenting user input must clamp first.
func (fs *FileSet) SetActive(kind Kind, index int) error {
	if index < 0 || index >= fs.CountOfKind(kind) {
		return fmt.Errorf("active index %d out of range for kind %s", index, kind)
	}
	fs.active[kind] = index
	return nil
}

// Clone returns a deep copy of the FileSet.
func (fs *FileSet) Clone() *FileSet {
	clone := &FileSet{
		files:  make([]SourceFile, len(fs.files)),
		active: make(map[Kind]int, len(fs.active)),
	}
	copy(clone.files, fs.files)
	for k, v := range fs.active {
		clone.active[k] = v
	}
	return clone
}

// Equal reports whether two FileSets have identical files in identical order
// and identical active selections for every kind that has files.
func (fs *FileSet) Equal(other *FileSet) bool {
	if other == nil || len(fs.files) != len(other.files) {
		return false
	}
	for i := range fs.files {
		if fs.files[i] != other.files[i] {
			return false
		}
	}
	for _, k := range Kinds() {
		if fs.CountOfKind(k) > 0 && fs.active[k] != other.active[k] {
			return false
		}
	}
	return true
}

// globalIndex translates a kind-relative index into a position in the ordered
// file slice.
func (fs *FileSet) globalIndex(kind Kind, index int) (int, bool) {
	if index < 0 {
		return 0, false
	}
	seen := 0
	for i, f := range fs.files {
		if f.Kind != kind {
			continue
		}
		if seen == index {
			return i, true
		}
		seen++
	}
	return 0, false
}
