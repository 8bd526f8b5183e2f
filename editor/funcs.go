// ABOUTME: Template function map shared by every parsed template set.
// ABOUTME: Provides markdown rendering for narrative file previews.
package editor

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
)

// templateFuncs returns the FuncMap available to all templates.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"markdown": func(source string) template.HTML {
			var buf bytes.Buffer
			if err := goldmark.New().Convert([]byte(source), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(source))
			}
			return template.HTML(buf.String())
		},
	}
}
