// ABOUTME: Kind enum for the language categories a source file can hold.
// ABOUTME: Provides parsing, JSON round-trip, extension mapping, and per-kind defaults.
package pad

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind is the language category of a source file. It is a closed enum rather
// than a free-form string so that a bad kind fails at parse time, not deep in
// the compositor.
type Kind int

const (
	KindMarkup Kind = iota // HTML
	KindStyle              // CSS
	KindScript             // JavaScript
	KindInterpreted        // Python
	KindNarrative          // Markdown
	KindText               // fallback for unrecognized imports
)

// kindNames maps each Kind to its canonical lowercase name used in JSON,
// manifests, and URLs.
var kindNames = map[Kind]string{
	KindMarkup:      "markup",
	KindStyle:       "style",
	KindScript:      "script",
	KindInterpreted: "interpreted",
	KindNarrative:   "narrative",
	KindText:        "text",
}

// Kinds returns all kinds in their fixed display order.
func Kinds() []Kind {
	return []Kind{KindMarkup, KindStyle, KindScript, KindInterpreted, KindNarrative, KindText}
}

// String returns the canonical lowercase name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind converts a canonical kind name back into a Kind.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown kind %q", name)
}

// MarshalJSON serializes the kind as its canonical name.
func (k Kind) MarshalJSON() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid kind %d", int(k))
	}
	return json.Marshal(k.String())
}

// UnmarshalJSON parses a kind from its canonical name.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseKind(name)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// DefaultName returns the base name used when generating a new file of this kind.
func (k Kind) DefaultName() string {
	switch k {
	case KindMarkup:
		return "index"
	case KindStyle:
		return "styles"
	case KindScript:
		return "script"
	case KindInterpreted:
		return "main"
	case KindNarrative:
		return "notes"
	default:
		return "file"
	}
}

// Placeholder returns the starter content for a newly created file of this kind.
func (k Kind) Placeholder() string {
	switch k {
	case KindMarkup:
		return "<h1>Hello</h1>\n"
	case KindStyle:
		return "body {\n  font-family: sans-serif;\n}\n"
	case KindScript:
		return "console.log(\"ready\");\n"
	case KindInterpreted:
		return "print(\"hello\")\n"
	case KindNarrative:
		return "# Notes\n"
	default:
		return ""
	}
}

// Ext returns the file extension used when exporting files of this kind.
func (k Kind) Ext() string {
	switch k {
	case KindMarkup:
		return ".html"
	case KindStyle:
		return ".css"
	case KindScript:
		return ".js"
	case KindInterpreted:
		return ".py"
	case KindNarrative:
		return ".md"
	default:
		return ".txt"
	}
}

// KindForExtension maps a file extension to the Kind it imports as.
// Unrecognized extensions map to KindText.
func KindForExtension(ext string) Kind {
	switch strings.ToLower(ext) {
	case ".html", ".htm":
		return KindMarkup
	case ".css":
		return KindStyle
	case ".js", ".mjs":
		return KindScript
	case ".py":
		return KindInterpreted
	case ".md", ".markdown":
		return KindNarrative
	default:
		return KindText
	}
}
