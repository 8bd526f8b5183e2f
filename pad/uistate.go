// ABOUTME: UIState is the single explicit record of cosmetic editor settings.
// ABOUTME: Passed through the view layer and persisted with snapshots; never ambient globals.
package pad

// Layout names the arrangement of the editor and preview panels.
const (
	LayoutColumns = "columns"
	LayoutRows    = "rows"
	LayoutZen     = "zen"
)

// UIState holds the cosmetic toggles for one playground session. It travels
// with the FileSet through persistence and export so a restored session looks
// the way it was left.
type UIState struct {
	Theme    string `json:"theme" yaml:"theme"`
	Font     string `json:"font" yaml:"font"`
	Layout   string `json:"layout" yaml:"layout"`
	TabWidth int    `json:"tab_width" yaml:"tab_width"`
}

// DefaultUIState returns the settings a brand new session starts with.
func DefaultUIState() UIState {
	return UIState{
		Theme:    "dark",
		Font:     "monospace",
		Layout:   LayoutColumns,
		TabWidth: 2,
	}
}

// Normalize fills zero-valued fields with defaults so partially populated
// records (old snapshots, hand-edited manifests) stay usable.
func (u UIState) Normalize() UIState {
	def := DefaultUIState()
	if u.Theme == "" {
		u.Theme = def.Theme
	}
	if u.Font == "" {
		u.Font = def.Font
	}
	if u.Layout != LayoutColumns && u.Layout != LayoutRows && u.Layout != LayoutZen {
		u.Layout = def.Layout
	}
	if u.TabWidth <= 0 {
		u.TabWidth = def.TabWidth
	}
	return u
}
