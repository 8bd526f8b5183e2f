// ABOUTME: Pure compositor that flattens a FileSet into a single previewable HTML document.
// ABOUTME: Styles and scripts are merged into single blocks; narrative files render through goldmark.
package preview

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/scratchpen/scratchpen/pad"
)

// Compose builds the preview document for a FileSet. It is a pure function:
// identical FileSets produce byte-identical documents. The output contains,
// in order, one <style> block with every style file's content, a body holding
// every markup file's content followed by rendered narrative files, and one
// guarded <script> block with every script file's content. File order within
// each kind is insertion order, never alphabetical.
//
// Interpreted files are not executed into the preview; running Python is the
// render surface's concern, not the compositor's.
func Compose(fs *pad.FileSet) string {
	var buf strings.Builder

	buf.WriteString("<!doctype html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")

	styles := fs.FilesOfKind(pad.KindStyle)
	if len(styles) > 0 {
		buf.WriteString("<style>\n")
		for i, f := range styles {
			if i > 0 {
				buf.WriteString("\n")
			}
			buf.WriteString(f.Content)
		}
		buf.WriteString("\n</style>\n")
	}
	buf.WriteString("</head>\n<body>\n")

	for _, f := range fs.FilesOfKind(pad.KindMarkup) {
		buf.WriteString(f.Content)
		buf.WriteString("\n")
	}
	for _, f := range fs.FilesOfKind(pad.KindNarrative) {
		buf.WriteString(renderMarkdown(f.Content))
	}

	scripts := fs.FilesOfKind(pad.KindScript)
	if len(scripts) > 0 {
		buf.WriteString("<script>\ntry {\n")
		for i, f := range scripts {
			if i > 0 {
				buf.WriteString("\n")
			}
			buf.WriteString(f.Content)
		}
		buf.WriteString("\n} catch (err) {\n")
		// Surface the failure inside the preview body instead of letting the
		// sandbox swallow it.
		buf.WriteString("  var pre = document.createElement(\"pre\");\n")
		buf.WriteString("  pre.className = \"preview-error\";\n")
		buf.WriteString("  pre.textContent = \"Script error: \" + err;\n")
		buf.WriteString("  document.body.appendChild(pre);\n")
		buf.WriteString("}\n</script>\n")
	}

	buf.WriteString("</body>\n</html>\n")
	return buf.String()
}

// renderMarkdown converts a narrative file body to HTML using goldmark.
// On conversion failure the raw text is HTML-escaped rather than dropped.
func renderMarkdown(input string) string {
	var buf bytes.Buffer
	md := goldmark.New()
	if err := md.Convert([]byte(input), &buf); err != nil {
		return template.HTMLEscapeString(input)
	}
	return buf.String()
}
