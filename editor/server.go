// ABOUTME: HTTP server struct with chi router, session store, template sets, and websocket hubs.
// ABOUTME: Configures all routes and builds page/partial view models from session state.
package editor

import (
	"html/template"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/scratchpen/scratchpen/pad"
	"github.com/scratchpen/scratchpen/store"
)

// TemplateData holds the data passed to HTML templates for pages and partials.
type TemplateData struct {
	SessionID string
	UI        pad.UIState
	Groups    []KindGroup
	Revision  uint64
	Error     string
}

// KindGroup is the view model for one kind's tab strip.
type KindGroup struct {
	Kind   string
	Label  string
	Files  []FileView
	Active int
}

// FileView is the view model for a single file tab.
type FileView struct {
	Index   int
	Name    string
	Active  bool
	Content string
}

// Server holds the chi router, session store, snapshot store, and parsed
// templates. Each session gets its own websocket hub acting as its render
// surface.
type Server struct {
	router      chi.Router
	store       *Store
	snapshots   *store.Store
	templates   *template.Template
	landingTmpl *template.Template
	editorTmpl  *template.Template

	hubMu sync.Mutex
	hubs  map[string]*Hub
}

// ServerOption configures optional Server behavior.
type ServerOption func(*Server)

// WithSnapshots wires the persistent snapshot store into the server. Without
// it sessions are memory-only.
func WithSnapshots(snaps *store.Store) ServerOption {
	return func(s *Server) {
		s.snapshots = snaps
	}
}

// NewServer creates a Server with all routes configured and the embedded
// templates parsed.
func NewServer(sessions *Store, opts ...ServerOption) *Server {
	s := &Server{
		store: sessions,
		hubs:  make(map[string]*Hub),
	}
	for _, opt := range opts {
		opt(s)
	}

	// Hubs live as long as their sessions; the store tells us when one dies.
	sessions.OnClose(s.removeHub)

	// Shared partials, then page-specific sets built by cloning and adding
	// the page that defines "content".
	shared := template.Must(template.New("").Funcs(templateFuncs()).ParseFS(ContentFS, "templates/partials/*.html"))
	template.Must(shared.ParseFS(ContentFS, "templates/layout.html"))
	s.templates = shared

	landingClone := template.Must(shared.Clone())
	template.Must(landingClone.ParseFS(ContentFS, "templates/landing.html"))
	s.landingTmpl = landingClone

	editorClone := template.Must(shared.Clone())
	template.Must(editorClone.ParseFS(ContentFS, "templates/editor.html"))
	s.editorTmpl = editorClone

	r := chi.NewRouter()

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(staticFS())))

	r.Get("/", s.handleLanding)

	r.Post("/pads", s.handleCreatePad)
	r.Get("/pads/{id}", s.handleEditorPage)
	r.Get("/pads/{id}/preview", s.handlePreview)
	r.Get("/pads/{id}/export", s.handleExport)
	r.Post("/pads/{id}/import", s.handleImport)
	r.Get("/pads/{id}/history", s.handleHistory)
	r.Get("/pads/{id}/ws", s.handleWebsocket)

	r.Post("/pads/{id}/files", s.handleAddFile)
	r.Delete("/pads/{id}/files/{kind}/{index}", s.handleRemoveFile)
	r.Post("/pads/{id}/files/{kind}/{index}/rename", s.handleRenameFile)
	r.Post("/pads/{id}/content", s.handleSetContent)
	r.Post("/pads/{id}/select", s.handleSelectFile)
	r.Post("/pads/{id}/ui", s.handleSetUI)
	r.Post("/pads/{id}/undo", s.handleUndo)
	r.Post("/pads/{id}/redo", s.handleRedo)

	s.router = r
	return s
}

// ServeHTTP implements http.Handler, delegating to the chi router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// createSession builds a session whose render surface is a fresh websocket
// hub, and remembers the hub for the ws endpoint.
func (s *Server) createSession(fs *pad.FileSet, ui pad.UIState) *Session {
	hub := NewHub()
	sess := s.store.Create(fs, ui, hub)

	s.hubMu.Lock()
	s.hubs[sess.ID] = hub
	s.hubMu.Unlock()
	return sess
}

// CreatePad creates a session outside the HTTP flow (watch mode, tests). The
// pad behaves exactly like one created through POST /pads.
func (s *Server) CreatePad(fs *pad.FileSet, ui pad.UIState) *Session {
	return s.createSession(fs, ui)
}

// hubFor returns the websocket hub of a session, if the session is live.
func (s *Server) hubFor(id string) (*Hub, bool) {
	s.hubMu.Lock()
	defer s.hubMu.Unlock()
	hub, ok := s.hubs[id]
	return hub, ok
}

// removeHub disconnects and forgets the hub of a closed session.
func (s *Server) removeHub(id string) {
	s.hubMu.Lock()
	hub, ok := s.hubs[id]
	delete(s.hubs, id)
	s.hubMu.Unlock()

	if ok {
		hub.CloseAll()
	}
}

// SaverFromSnapshots adapts the snapshot store into a session Saver. Returns
// nil when persistence is disabled.
func SaverFromSnapshots(snaps *store.Store) Saver {
	if snaps == nil {
		return nil
	}
	return func(key string, fs *pad.FileSet, ui pad.UIState) {
		snaps.Save(key, fs, ui)
	}
}

// viewData builds the template view model for a session.
func viewData(sess *Session) TemplateData {
	fs, ui := sess.State()
	_, rev := sess.PreviewDocument()

	data := TemplateData{
		SessionID: sess.ID,
		UI:        ui,
		Revision:  rev,
	}
	for _, kind := range pad.Kinds() {
		files := fs.FilesOfKind(kind)
		if len(files) == 0 {
			continue
		}
		group := KindGroup{
			Kind:   kind.String(),
			Label:  kindLabel(kind),
			Active: fs.ActiveIndex(kind),
		}
		for i, f := range files {
			group.Files = append(group.Files, FileView{
				Index:   i,
				Name:    f.Name,
				Active:  i == group.Active,
				Content: f.Content,
			})
		}
		data.Groups = append(data.Groups, group)
	}
	return data
}

// kindLabel maps a kind to the label shown on its tab strip.
func kindLabel(kind pad.Kind) string {
	switch kind {
	case pad.KindMarkup:
		return "HTML"
	case pad.KindStyle:
		return "CSS"
	case pad.KindScript:
		return "JS"
	case pad.KindInterpreted:
		return "Python"
	case pad.KindNarrative:
		return "Markdown"
	default:
		return "Text"
	}
}
