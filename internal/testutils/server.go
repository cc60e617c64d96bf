package testutils

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

// Upload is an asset bundle received by a SyncServer.
type Upload struct {
	ClientID  string
	SessionID string
	// Files maps the names inside the bundle to their content.
	Files map[string][]byte
}

// SyncServer is a fake synchronization server.
type SyncServer struct {
	*httptest.Server

	mu        sync.Mutex
	missing   map[string][]string
	submitErr *serverReply
	uploadErr *serverReply
	saves     map[string]json.RawMessage

	snapshots []map[string]json.RawMessage
	uploads   []Upload
}

type serverReply struct {
	status int
	code   string
}

// NewSyncServer starts a SyncServer, closed with the test.
func NewSyncServer(t *testing.T) *SyncServer {
	t.Helper()

	s := &SyncServer{saves: make(map[string]json.RawMessage)}
	r := chi.NewRouter()
	r.Post("/api/save", s.submit)
	r.Post("/api/data", s.upload)
	r.Get("/api/save/user/{clientID}", s.list)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// SetMissing sets the manifest answered to the next submissions.
func (s *SyncServer) SetMissing(m map[string][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.missing = m
}

// FailSubmit makes submissions fail with status and, when not empty, the error code.
func (s *SyncServer) FailSubmit(status int, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitErr = &serverReply{status: status, code: code}
}

// FailUpload makes asset uploads fail with status and, when not empty, the error code.
func (s *SyncServer) FailUpload(status int, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploadErr = &serverReply{status: status, code: code}
}

// SetSaves sets the raw JSON list of saves returned for clientID.
func (s *SyncServer) SetSaves(clientID, saves string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves[clientID] = json.RawMessage(saves)
}

// Snapshots returns the top level members of every received snapshot.
func (s *SyncServer) Snapshots() []map[string]json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]json.RawMessage(nil), s.snapshots...)
}

// Uploads returns every received asset bundle.
func (s *SyncServer) Uploads() []Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Upload(nil), s.uploads...)
}

func (s *SyncServer) submit(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var snap map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		reply(w, http.StatusBadRequest, map[string]string{"errorCode": "INVALID_SAVE"})
		return
	}
	s.snapshots = append(s.snapshots, snap)
	if s.submitErr != nil {
		replyError(w, *s.submitErr)
		return
	}

	var id string
	if err := json.Unmarshal(snap["id"], &id); err != nil || id == "" {
		id = "server-id"
	}
	reply(w, http.StatusOK, map[string]any{
		"id":            id,
		"resultLink":    s.URL + "/save/" + id,
		"missingAssets": s.missing,
	})
}

func (s *SyncServer) upload(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		reply(w, http.StatusBadRequest, map[string]string{"errorCode": "INVALID_ASSETS"})
		return
	}
	var u Upload
	var meta struct {
		ClientID  string `json:"clientId"`
		SessionID string `json:"sessionId"`
	}
	if d := r.MultipartForm.Value["data"]; len(d) == 1 {
		_ = json.Unmarshal([]byte(d[0]), &meta)
	}
	u.ClientID, u.SessionID = meta.ClientID, meta.SessionID

	if f, _, err := r.FormFile("assets"); err == nil {
		defer f.Close()
		u.Files = unzip(f)
	}
	s.uploads = append(s.uploads, u)

	if s.uploadErr != nil {
		replyError(w, *s.uploadErr)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *SyncServer) list(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saves, ok := s.saves[chi.URLParam(r, "clientID")]
	if !ok {
		saves = json.RawMessage("[]")
	}
	reply(w, http.StatusOK, saves)
}

func unzip(r io.Reader) map[string][]byte {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil
	}
	files := make(map[string][]byte)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			continue
		}
		files[f.Name], _ = io.ReadAll(rc)
		rc.Close()
	}
	return files
}

func replyError(w http.ResponseWriter, e serverReply) {
	if e.code == "" {
		w.WriteHeader(e.status)
		return
	}
	reply(w, e.status, map[string]string{"errorCode": e.code})
}

func reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ReadZip returns the files of the zip archive data, by name.
func ReadZip(t *testing.T, data []byte) map[string][]byte {
	t.Helper()

	files := unzip(bytes.NewReader(data))
	require.NotNil(t, files, "Setup: data should be a zip archive")
	return files
}
