// ABOUTME: HTTP handler methods for all server endpoints.
// ABOUTME: Covers landing, pad lifecycle, file mutations, undo/redo, import/export, preview, and websocket.
package editor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/scratchpen/scratchpen/bundle"
	"github.com/scratchpen/scratchpen/pad"
)

// maxBodySize caps uploads and form bodies at 10MB.
const maxBodySize = 10 << 20

// upgrader accepts websocket connections from the editor page. The server
// binds to loopback by default, so origin checks stay permissive.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleLanding renders the landing page with the new-pad form.
func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, TemplateData{}, http.StatusOK)
}

// handleCreatePad creates a new pad from, in order of preference: an uploaded
// zip bundle, a restored snapshot, or the default starter files.
func (s *Server) handleCreatePad(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	if err := r.ParseMultipartForm(maxBodySize); err != nil {
		if isBodyTooLarge(err) {
			s.renderPage(w, TemplateData{Error: "Upload too large (max 10MB)"}, http.StatusRequestEntityTooLarge)
			return
		}
		if err := r.ParseForm(); err != nil {
			s.renderPage(w, TemplateData{Error: "failed to parse form"}, http.StatusUnprocessableEntity)
			return
		}
	}

	fs := pad.DefaultFileSet()
	ui := pad.DefaultUIState()

	if file, _, err := r.FormFile("bundle"); err == nil {
		defer func() { _ = file.Close() }()
		data, err := io.ReadAll(file)
		if err != nil {
			s.renderPage(w, TemplateData{Error: "Upload too large (max 10MB)"}, http.StatusRequestEntityTooLarge)
			return
		}
		imported, importedUI, err := bundle.Import(data)
		if err != nil {
			s.renderPage(w, TemplateData{Error: fmt.Sprintf("Invalid bundle: %v", err)}, http.StatusUnprocessableEntity)
			return
		}
		fs, ui = imported, importedUI
	} else if key := strings.TrimSpace(r.FormValue("restore")); key != "" && s.snapshots != nil {
		fs, ui, _ = s.snapshots.Load(key)
	}

	sess := s.createSession(fs, ui)
	http.Redirect(w, r, "/pads/"+sess.ID, http.StatusSeeOther)
}

// handleEditorPage renders the editor for an existing pad.
func (s *Server) handleEditorPage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	s.renderEditor(w, viewData(sess), http.StatusOK)
}

// handlePreview serves the current composed document for the sandboxed
// preview frame.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	doc, _ := sess.PreviewDocument()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

// handleExport returns the pad as a downloadable zip bundle.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	fs, ui := sess.State()
	data, err := bundle.Export(fs, ui)
	if err != nil {
		http.Error(w, fmt.Sprintf("export failed: %v", err), http.StatusInternalServerError)
		return
	}

	filename := "scratchpen-" + shortID(sess.ID) + ".zip"
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleImport replaces the pad's files wholesale from an uploaded bundle.
// An unparseable bundle is reported with 422 and leaves the pad unchanged.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := r.ParseMultipartForm(maxBodySize); err != nil {
		if isBodyTooLarge(err) {
			http.Error(w, "Upload too large (max 10MB)", http.StatusRequestEntityTooLarge)
			return
		}
		s.renderError(w, sess, "failed to parse upload")
		return
	}

	file, _, err := r.FormFile("bundle")
	if err != nil {
		s.renderError(w, sess, "bundle file is required")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Upload too large (max 10MB)", http.StatusRequestEntityTooLarge)
		return
	}

	fs, ui, err := bundle.Import(data)
	if err != nil {
		s.renderError(w, sess, fmt.Sprintf("Import failed: %v", err))
		return
	}

	sess.Replace(fs, ui)
	s.renderWorkspace(w, sess)
}

// handleHistory lists retained snapshot history for the pad as JSON.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	type entry struct {
		ID      string `json:"id"`
		SavedAt string `json:"saved_at"`
	}
	entries := []entry{}
	if s.snapshots != nil {
		hist, err := s.snapshots.History(sess.ID, 20)
		if err == nil {
			for _, h := range hist {
				entries = append(entries, entry{ID: h.ID, SavedAt: h.SavedAt})
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(entries)
}

// handleWebsocket upgrades the connection and registers it with the pad's
// hub until the client goes away.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.store.Get(id); !ok {
		http.NotFound(w, r)
		return
	}
	hub, ok := s.hubFor(id)
	if !ok {
		http.NotFound(w, r)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	hub.Add(conn)

	// Drain client frames; the first read error means the client left.
	go func() {
		defer hub.Remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// handleAddFile appends a new file of the posted kind.
func (s *Server) handleAddFile(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.renderError(w, sess, "failed to parse form")
		return
	}

	kind, err := pad.ParseKind(r.FormValue("kind"))
	if err != nil {
		s.renderError(w, sess, err.Error())
		return
	}

	sess.AddFile(kind)
	s.renderWorkspace(w, sess)
}

// handleRemoveFile removes a file. Removing the last file of a kind is
// silently rejected: the response carries the unchanged workspace.
func (s *Server) handleRemoveFile(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	kind, index, err := kindIndexParams(r)
	if err != nil {
		s.renderError(w, sess, err.Error())
		return
	}

	sess.RemoveFile(kind, index)
	s.renderWorkspace(w, sess)
}

// handleRenameFile replaces a file's display name.
func (s *Server) handleRenameFile(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	kind, index, err := kindIndexParams(r)
	if err != nil {
		s.renderError(w, sess, err.Error())
		return
	}
	if err := r.ParseForm(); err != nil {
		s.renderError(w, sess, "failed to parse form")
		return
	}

	if err := sess.RenameFile(kind, index, r.FormValue("name")); err != nil {
		s.renderError(w, sess, fmt.Sprintf("Rename failed: %v", err))
		return
	}
	s.renderWorkspace(w, sess)
}

// handleSetContent replaces a file's content and schedules a debounced
// preview re-render.
func (s *Server) handleSetContent(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := r.ParseForm(); err != nil {
		if isBodyTooLarge(err) {
			http.Error(w, "Request body too large (max 10MB)", http.StatusRequestEntityTooLarge)
			return
		}
		s.renderError(w, sess, "failed to parse form")
		return
	}

	kind, index, err := kindIndexForm(r)
	if err != nil {
		s.renderError(w, sess, err.Error())
		return
	}

	if err := sess.SetContent(kind, index, r.FormValue("content")); err != nil {
		s.renderError(w, sess, fmt.Sprintf("Update failed: %v", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSelectFile updates the active file pointer for a kind. Out-of-range
// input is clamped, never an error.
func (s *Server) handleSelectFile(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.renderError(w, sess, "failed to parse form")
		return
	}

	kind, index, err := kindIndexForm(r)
	if err != nil {
		s.renderError(w, sess, err.Error())
		return
	}

	sess.SelectFile(kind, index)
	s.renderWorkspace(w, sess)
}

// handleSetUI replaces the session's UI settings record.
func (s *Server) handleSetUI(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.renderError(w, sess, "failed to parse form")
		return
	}

	tabWidth, _ := strconv.Atoi(r.FormValue("tab_width"))
	sess.SetUI(pad.UIState{
		Theme:    r.FormValue("theme"),
		Font:     r.FormValue("font"),
		Layout:   r.FormValue("layout"),
		TabWidth: tabWidth,
	})
	s.renderWorkspace(w, sess)
}

// handleUndo reverts the last mutation.
func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := sess.Undo(); err != nil {
		s.renderError(w, sess, err.Error())
		return
	}
	s.renderWorkspace(w, sess)
}

// handleRedo reapplies a previously undone mutation.
func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := sess.Redo(); err != nil {
		s.renderError(w, sess, err.Error())
		return
	}
	s.renderWorkspace(w, sess)
}

// kindIndexParams pulls kind and index from URL parameters.
func kindIndexParams(r *http.Request) (pad.Kind, int, error) {
	kind, err := pad.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		return 0, 0, err
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid index %q", chi.URLParam(r, "index"))
	}
	return kind, index, nil
}

// kindIndexForm pulls kind and index from form values.
func kindIndexForm(r *http.Request) (pad.Kind, int, error) {
	kind, err := pad.ParseKind(r.FormValue("kind"))
	if err != nil {
		return 0, 0, err
	}
	index, err := strconv.Atoi(r.FormValue("index"))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid index %q", r.FormValue("index"))
	}
	return kind, index, nil
}

// isBodyTooLarge detects the net/http request-body-too-large error.
func isBodyTooLarge(err error) bool {
	return err != nil && strings.Contains(err.Error(), "request body too large")
}

// shortID returns the first segment of a uuid for use in filenames.
func shortID(id string) string {
	if i := strings.Index(id, "-"); i > 0 {
		return id[:i]
	}
	return id
}

// renderPage renders the full layout with landing content.
func (s *Server) renderPage(w http.ResponseWriter, data TemplateData, status int) {
	var buf bytes.Buffer
	if err := s.landingTmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		http.Error(w, fmt.Sprintf("template error: %v", err), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderEditor renders the full layout with editor content.
func (s *Server) renderEditor(w http.ResponseWriter, data TemplateData, status int) {
	var buf bytes.Buffer
	if err := s.editorTmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		http.Error(w, fmt.Sprintf("template error: %v", err), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderWorkspace renders the workspace partial (tab strips + panels) for
// swap responses after a successful mutation.
func (s *Server) renderWorkspace(w http.ResponseWriter, sess *Session) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "workspace", viewData(sess)); err != nil {
		http.Error(w, fmt.Sprintf("template error: %v", err), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders the workspace partial with an error banner and a 422
// status. The session state is unchanged.
func (s *Server) renderError(w http.ResponseWriter, sess *Session, errMsg string) {
	data := viewData(sess)
	data.Error = errMsg

	w.WriteHeader(http.StatusUnprocessableEntity)
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "workspace", data); err != nil {
		_, _ = w.Write([]byte(errMsg))
		return
	}
	_, _ = w.Write(buf.Bytes())
}
