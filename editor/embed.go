// ABOUTME: Embedded filesystem for editor templates and static assets.
// ABOUTME: Exports ContentFS for use by the server without runtime filesystem paths.
package editor

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html templates/partials/*.html static/css/*.css static/js/*.js
var ContentFS embed.FS

// staticFS returns the static asset subtree rooted at static/.
func staticFS() fs.FS {
	sub, err := fs.Sub(ContentFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
