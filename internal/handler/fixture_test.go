package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gorilla/mux"

	"proposal-client/internal/config"
	"proposal-client/internal/session"
)

// fakeService stands in for the remote proposal service.
type fakeService struct {
	server *httptest.Server
	// expired makes every authenticated endpoint answer 401.
	expired atomic.Bool
	// rejectValidation makes validate-excel decline the workbook.
	rejectValidation atomic.Bool
}

func newFakeService(t *testing.T) *fakeService {
	t.Helper()
	f := &fakeService{}
	r := mux.NewRouter()

	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if f.expired.Load() || r.Header.Get("Authorization") != "Bearer jwt-manager" {
				respond(w, http.StatusUnauthorized, `{"error":"token expired"}`)
				return
			}
			next(w, r)
		}
	}

	r.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["username"] != "manager" || body["password"] != "secret" {
			respond(w, http.StatusUnauthorized, `{"error":"invalid"}`)
			return
		}
		respond(w, http.StatusOK, `{"id":1,"username":"manager","token":"jwt-manager"}`)
	}).Methods(http.MethodPost)

	r.HandleFunc("/api/reset-password", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, `{"message":"sent"}`)
	}).Methods(http.MethodPost)

	r.HandleFunc("/api/validate-excel", authed(func(w http.ResponseWriter, r *http.Request) {
		if f.rejectValidation.Load() {
			respond(w, http.StatusOK, `{"success":false,"error":{"message":"bad headers"}}`)
			return
		}
		respond(w, http.StatusOK, `{"success":true,"preview":[{"sku":"A-1","qty":2}]}`)
	})).Methods(http.MethodPost)

	r.HandleFunc("/api/create-proposal", authed(func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, `{"success":true,"file_url":"/api/download/proposal_1.docx"}`)
	})).Methods(http.MethodPost)

	r.HandleFunc("/api/download/{name}", authed(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="`+mux.Vars(r)["name"]+`"`)
		_, _ = w.Write([]byte("DOCX"))
	})).Methods(http.MethodGet)

	r.HandleFunc("/api/proposals", authed(func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, `{"items":[{"id":1,"filename":"kp.xlsx","file_path":"proposal_1.docx"}],"total":1,"pages":1,"current_page":1}`)
	})).Methods(http.MethodGet)

	f.server = httptest.NewServer(r)
	t.Cleanup(f.server.Close)
	return f
}

func respond(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

type agent struct {
	container *config.Container
	router    http.Handler
	service   *fakeService
	downloads string
}

func newAgent(t *testing.T) *agent {
	t.Helper()
	svc := newFakeService(t)
	downloads := t.TempDir()
	cfg := &config.AppConfig{
		AgentPort:      "0",
		APIBaseURL:     svc.server.URL,
		AuthProvider:   "remote",
		SessionDir:     t.TempDir(),
		DownloadDir:    downloads,
		MaxFileSize:    1 << 20,
		LogLevel:       "error",
		AllowedOrigins: []string{"http://localhost:5173"},
	}
	c, err := config.NewContainerWithConfig(cfg,
		config.WithLogger(NewMockHandlerLogger()),
		config.WithSessionStorage(session.NewMemoryStorage()),
	)
	if err != nil {
		t.Fatalf("failed to build container: %v", err)
	}
	t.Cleanup(c.Close)
	return &agent{container: c, router: NewRouter(c), service: svc, downloads: downloads}
}

func (a *agent) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func (a *agent) upload(t *testing.T, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write(content)
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/create/file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func (a *agent) login(t *testing.T) *httptest.ResponseRecorder {
	t.Helper()
	rr := a.do(t, http.MethodPost, "/login", `{"username":"manager","password":"secret"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("login failed with %d: %s", rr.Code, rr.Body.String())
	}
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
}
