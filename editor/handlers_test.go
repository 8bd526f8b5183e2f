// ABOUTME: Test suite for HTTP handlers covering pages, mutations, import/export, and the websocket channel.
// ABOUTME: Uses httptest with the chi router; websocket tests dial a live httptest server.

package editor

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/scratchpen/scratchpen/bundle"
	"github.com/scratchpen/scratchpen/pad"
)

func newTestServer(t *testing.T) (*Server, *Store) {
	t.Helper()
	sessions := NewStore(100, time.Hour, WithRenderDelay(time.Millisecond))
	srv := NewServer(sessions)
	return srv, sessions
}

func createTestSession(t *testing.T, srv *Server) *Session {
	t.Helper()
	sess := srv.createSession(pad.DefaultFileSet(), pad.DefaultUIState())
	t.Cleanup(sess.Close)
	return sess
}

func doForm(t *testing.T, srv *Server, method, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestLandingPageReturns200(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doForm(t, srv, http.MethodGet, "/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "scratchpen") {
		t.Error("expected landing page to mention scratchpen")
	}
}

func TestStaticAssetsServed(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/static/css/app.css", "/static/js/app.js"} {
		w := doForm(t, srv, http.MethodGet, path, nil)
		if w.Code != http.StatusOK {
			t.Errorf("expected 200 for %s, got %d", path, w.Code)
		}
	}
}

func TestTemplatesParse(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, name := range []string{"layout", "workspace", "kindgroup"} {
		if srv.templates.Lookup(name) == nil {
			t.Errorf("expected shared template %q to be defined", name)
		}
	}
	if srv.landingTmpl.Lookup("content") == nil {
		t.Error("expected landing template set to define content")
	}
	if srv.editorTmpl.Lookup("content") == nil {
		t.Error("expected editor template set to define content")
	}
}

func TestCreatePadRedirectsToEditor(t *testing.T) {
	srv, sessions := newTestServer(t)

	w := doForm(t, srv, http.MethodPost, "/pads", url.Values{})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 redirect, got %d", w.Code)
	}
	loc := w.Header().Get("Location")
	if !strings.HasPrefix(loc, "/pads/") {
		t.Fatalf("expected redirect to /pads/{id}, got %q", loc)
	}
	if sessions.Len() != 1 {
		t.Errorf("expected 1 session, got %d", sessions.Len())
	}
}

func TestEditorPageShowsDefaultFiles(t *testing.T) {
	srv, _ := newTestServer(t)
	sess := createTestSession(t, srv)

	w := doForm(t, srv, http.MethodGet, "/pads/"+sess.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, name := range []string{"index1", "styles1", "script1"} {
		if !strings.Contains(body, name) {
			t.Errorf("expected editor page to show file %q", name)
		}
	}
}

func TestEditorPageRendersNarrativePreview(t *testing.T) {
	srv, _ := newTestServer(t)
	sess := createTestSession(t, srv)

	sess.AddFile(pad.KindNarrative)
	if err := sess.SetContent(pad.KindNarrative, 0, "some **bold** words"); err != nil {
		t.Fatalf("SetContent: %v", err)
	}

	w := doForm(t, srv, http.MethodGet, "/pads/"+sess.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "narrative-preview") {
		t.Fatal("expected a rendered preview alongside the notes editor")
	}
	if !strings.Contains(body, "<strong>bold</strong>") {
		t.Error("expected markdown to render as HTML, not escaped text")
	}
}

func TestEditorPageUnknownSessionRedirectsHome(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doForm(t, srv, http.MethodGet, "/pads/nonexistent", nil)
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302 redirect, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Errorf("expected redirect to /, got %q", loc)
	}
}

func TestSetContentUpdatesPreview(t *testing.T) {
	srv, _ := newTestServer(t)
	sess := createTestSession(t, srv)

	form := url.Values{
		"kind":    {"markup"},
		"index":   {"0"},
		"content": {"<h1>From the handler</h1>"},
	}
	w := doForm(t, srv, http.MethodPost, "/pads/"+sess.ID+"/content", form)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", w.Code, w.Body.String())
	}

	sess.Flush()
	pw := doForm(t, srv, http.MethodGet, "/pads/"+sess.ID+"/preview", nil)
	if pw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", pw.Code)
	}
	if !strings.Contains(pw.Body.String(), "<h1>From the handler</h1>") {
		t.Error("expected preview document to contain the new markup")
	}
}

func TestSetContentUnknownIndexReturns422(t *testing.T) {
	srv, _ := newTestServer(t)
	sess := createTestSession(t, srv)

	form := url.Values{"kind": {"markup"}, "index": {"9"}, "content": {"x"}}
	w := doForm(t, srv, http.MethodPost, "/pads/"+sess.ID+"/content", form)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
}

func TestAddFileRendersNewTab(t *testing.T) {
	srv, _ := newTestServer(t)
	sess := createTestSession(t, srv)

	w := doForm(t, srv, http.MethodPost, "/pads/"+sess.ID+"/files", url.Values{"kind": {"style"}})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "styles2") {
		t.Error("expected workspace to show the new style file")
	}
}

func TestAddFileInvalidKindReturns422(t *testing.T) {
	srv, _ := newTestServer(t)
	sess := createTestSession(t, srv)

	w := doForm(t, srv, http.MethodPost, "/pads/"+sess.ID+"/files", url.Values{"kind": {"bogus"}})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
}

func TestRemoveLastFileOfKindIsSilentNoOp(t *testing.T) {
	srv, _ := newTestServer(t)
	sess := createTestSession(t, srv)

	w := doForm(t, srv, http.MethodDelete, "/pads/"+sess.ID+"/files/markup/0", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	fs, _ := sess.State()
	if fs.CountOfKind(pad.KindMarkup) != 1 {
		t.Error("expected the last markup file to survive removal")
	}
	if !strings.Contains(w.Body.String(), "index1") {
		t.Error("expected unchanged workspace in response")
	}
}

func TestRenameFile(t *testing.T) {
	srv, _ := newTestServer(t)
	sess := createTestSession(t, srv)

	w := doForm(t, srv, http.MethodPost, "/pads/"+sess.ID+"/files/markup/0/rename", url.Values{"name": {"home"}})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	fs, _ := sess.State()
	f, _ := fs.ActiveFile(pad.KindMarkup)
	if f.Name != "home" {
		t.Errorf("expected renamed file, got %q", f.Name)
	}
}

func TestUndoWithNothingToUndoReturns422(t *testing.T) {
	srv, _ := newTestServer(t)
	sess := createTestSession(t, srv)

	w := doForm(t, srv, http.MethodPost, "/pads/"+sess.ID+"/undo", nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
}

func TestExportRoundTripsThroughBundle(t *testing.T) {
	srv, _ := newTestServer(t)
	sess := createTestSession(t, srv)
	_ = sess.SetContent(pad.KindMarkup, 0, "<h1>exported</h1>")

	w := doForm(t, srv, http.MethodGet, "/pads/"+sess.ID+"/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/zip" {
		t.Errorf("expected zip content type, got %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, ".zip") {
		t.Errorf("expected zip attachment, got %q", cd)
	}

	fs, _, err := bundle.Import(w.Body.Bytes())
	if err != nil {
		t.Fatalf("exported archive did not import: %v", err)
	}
	want, _ := sess.State()
	if !fs.Equal(want) {
		t.Error("expected imported FileSet to equal exported state")
	}
}

func TestImportReplacesFiles(t *testing.T) {
	srv, _ := newTestServer(t)
	sess := createTestSession(t, srv)

	imported := pad.NewFileSet()
	imported.Append(pad.SourceFile{Name: "page", Kind: pad.KindMarkup, Content: "<p>new</p>"})
	archive, err := bundle.Export(imported, pad.DefaultUIState())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	w := postBundle(t, srv, "/pads/"+sess.ID+"/import", archive)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	fs, _ := sess.State()
	if fs.Len() != 1 {
		t.Fatalf("expected 1 file after import, got %d", fs.Len())
	}
	f, _ := fs.ActiveFile(pad.KindMarkup)
	if f.Content != "<p>new</p>" {
		t.Errorf("expected imported content, got %q", f.Content)
	}
}

func TestImportInvalidBundleLeavesSessionUnchanged(t *testing.T) {
	srv, _ := newTestServer(t)
	sess := createTestSession(t, srv)
	before, _ := sess.State()

	w := postBundle(t, srv, "/pads/"+sess.ID+"/import", []byte("not a zip archive"))
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}

	after, _ := sess.State()
	if !after.Equal(before) {
		t.Error("expected session unchanged after failed import")
	}
}

func TestCreatePadFromBundle(t *testing.T) {
	srv, sessions := newTestServer(t)

	imported := pad.NewFileSet()
	imported.Append(pad.SourceFile{Name: "page", Kind: pad.KindMarkup, Content: "<p>seeded</p>"})
	archive, err := bundle.Export(imported, pad.DefaultUIState())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	w := postBundle(t, srv, "/pads", archive)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", w.Code, w.Body.String())
	}

	id := strings.TrimPrefix(w.Header().Get("Location"), "/pads/")
	sess, ok := sessions.Get(id)
	if !ok {
		t.Fatal("expected session created from bundle")
	}
	fs, _ := sess.State()
	if fs.Len() != 1 {
		t.Errorf("expected 1 imported file, got %d", fs.Len())
	}
}

func TestWebsocketReceivesReloadAfterRender(t *testing.T) {
	srv, _ := newTestServer(t)
	sess := createTestSession(t, srv)

	ts := httptest.NewServer(srv)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/pads/" + sess.ID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	defer func() { _ = conn.Close() }()

	hub, ok := srv.hubFor(sess.ID)
	if !ok {
		t.Fatal("expected a hub for the session")
	}
	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered with hub")
		}
		time.Sleep(time.Millisecond)
	}

	_ = sess.SetContent(pad.KindMarkup, 0, "<h1>push</h1>")
	sess.Flush()

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var msg struct {
		Type     string `json:"type"`
		Revision uint64 `json:"rev"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("reading reload message: %v", err)
	}
	if msg.Type != "reload" {
		t.Errorf("expected reload message, got %q", msg.Type)
	}
	if msg.Revision == 0 {
		t.Error("expected a nonzero revision")
	}
}

func TestExpiredSessionHubIsReleased(t *testing.T) {
	srv, sessions := newTestServer(t)
	sess := createTestSession(t, srv)

	ts := httptest.NewServer(srv)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/pads/" + sess.ID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	defer func() { _ = conn.Close() }()

	hub, ok := srv.hubFor(sess.ID)
	if !ok {
		t.Fatal("expected a hub for the live session")
	}
	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered with hub")
		}
		time.Sleep(time.Millisecond)
	}

	sessions.mu.Lock()
	sessions.sessions[sess.ID].LastAccess = time.Now().Add(-2 * time.Hour)
	sessions.mu.Unlock()
	sessions.Cleanup()

	if _, ok := srv.hubFor(sess.ID); ok {
		t.Error("expected hub removed with its expired session")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("expected hub clients disconnected, %d remain", hub.ClientCount())
	}
}

func TestEvictedSessionHubIsReleased(t *testing.T) {
	srv, sessions := newTestServer(t)
	first := createTestSession(t, srv)

	sessions.mu.Lock()
	sessions.maxSessions = 1
	sessions.mu.Unlock()

	second := createTestSession(t, srv)

	if _, ok := srv.hubFor(first.ID); ok {
		t.Error("expected evicted session's hub removed")
	}
	if _, ok := srv.hubFor(second.ID); !ok {
		t.Error("expected surviving session's hub kept")
	}
}

func TestHubDropsDeadClients(t *testing.T) {
	srv, _ := newTestServer(t)
	sess := createTestSession(t, srv)

	ts := httptest.NewServer(srv)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/pads/" + sess.ID + "/ws"
	alive, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	defer func() { _ = alive.Close() }()

	dead, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}

	hub, _ := srv.hubFor(sess.ID)
	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("clients never registered with hub")
		}
		time.Sleep(time.Millisecond)
	}

	_ = dead.Close()

	// Two broadcasts: the first may only detect the closed socket, the second
	// must still reach the live client.
	hub.SetContent("")
	hub.SetContent("")

	_ = alive.SetReadDeadline(time.Now().Add(time.Second))
	var msg struct {
		Type string `json:"type"`
	}
	if err := alive.ReadJSON(&msg); err != nil {
		t.Fatalf("live client should still receive broadcasts: %v", err)
	}
	if msg.Type != "reload" {
		t.Errorf("expected reload, got %q", msg.Type)
	}
}

// postBundle uploads a zip archive as the bundle form field.
func postBundle(t *testing.T, srv *Server, path string, archive []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("bundle", "pad.zip")
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	if _, err := fw.Write(archive); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}
