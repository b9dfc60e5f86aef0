package web

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/to404hanga/pkg404/cachex/lru"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
	"github.com/unilatex/latex_api_server/compiler"
	"github.com/unilatex/latex_api_server/compiler/service"
	"github.com/unilatex/latex_api_server/project"
	"github.com/unilatex/latex_api_server/quality"
	"github.com/unilatex/latex_api_server/runner"
	"github.com/unilatex/latex_api_server/workspace"
)

func newTestServer(t *testing.T, maxUpload int64) (*Server, *workspace.Workspace) {
	t.Helper()
	ws, err := workspace.New(t.TempDir(), "", "", "")
	if err != nil {
		t.Fatal(err)
	}
	log := loggerv2.GetGlobalLogger()
	r := runner.New()
	cache, err := lru.NewSimpleLRU(8)
	if err != nil {
		t.Fatal(err)
	}

	detector := service.NewDetector(log, nil, ws.Root, filepath.Join(ws.Root, "no-such-mount"), "")
	dispatcher := compiler.NewDispatcher(log, ws, detector, nil, 0)
	checker := quality.NewChecker(log, r, ws, 0)
	projects := project.NewService(log, ws, r, cache, 0)
	return NewServer(log, ws, dispatcher, checker, projects, maxUpload), ws
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not the envelope shape: %v (body %q)", err, rec.Body.String())
	}
	return rec, resp
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, 0)
	rec, resp := doJSON(t, s.Handler(), http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !resp.Success {
		t.Error("health must report success")
	}
	if resp.Data["project_root"] == "" {
		t.Error("expected project_root in data")
	}
}

func TestUnknownEndpointEnvelope(t *testing.T) {
	s, _ := newTestServer(t, 0)
	rec, resp := doJSON(t, s.Handler(), http.MethodGet, "/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if resp.Success {
		t.Error("must be a failure envelope")
	}
}

func TestCompileRequiresFilePath(t *testing.T) {
	s, _ := newTestServer(t, 0)
	rec, resp := doJSON(t, s.Handler(), http.MethodPost, "/compile", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp.Success || len(resp.Errors) == 0 {
		t.Error("expected failure envelope with errors")
	}
}

func TestCompileMissingFile(t *testing.T) {
	s, _ := newTestServer(t, 0)
	rec, _ := doJSON(t, s.Handler(), http.MethodPost, "/compile", map[string]any{
		"file_path": "courses/2025/algo/report1/main.tex",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestQualityCheckMissingFile(t *testing.T) {
	s, _ := newTestServer(t, 0)
	rec, _ := doJSON(t, s.Handler(), http.MethodPost, "/quality-check", map[string]any{
		"file_path": "courses/2025/algo/report1/main.tex",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCreateProjectValidatesFields(t *testing.T) {
	s, _ := newTestServer(t, 0)
	rec, resp := doJSON(t, s.Handler(), http.MethodPost, "/projects", map[string]any{
		"semester": "2025-spring",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if len(resp.Errors) != 2 {
		t.Errorf("errors = %v, want the two missing fields", resp.Errors)
	}
}

func TestCreateAndListProjects(t *testing.T) {
	s, _ := newTestServer(t, 0)
	h := s.Handler()

	rec, resp := doJSON(t, h, http.MethodPost, "/projects", map[string]any{
		"semester":    "2025-spring",
		"course":      "algorithms",
		"report_name": "report1",
	})
	if rec.Code != http.StatusOK || !resp.Success {
		t.Fatalf("create failed: %d %+v", rec.Code, resp)
	}

	rec, resp = doJSON(t, h, http.MethodGet, "/projects", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp.Data["total_count"].(float64) != 1 {
		t.Errorf("total_count = %v, want 1", resp.Data["total_count"])
	}
}

func TestDeleteProjectValidation(t *testing.T) {
	s, ws := newTestServer(t, 0)
	dir := filepath.Join(ws.CoursesDir, "2025-spring", "algorithms", "scratch")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}

	rec, _ := doJSON(t, s.Handler(), http.MethodDelete,
		"/projects/courses/2025-spring/algorithms/scratch", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Error("directory must survive a failed delete")
	}
}

func TestGetFileTextAndMissing(t *testing.T) {
	s, ws := newTestServer(t, 0)
	h := s.Handler()

	dir := filepath.Join(ws.CoursesDir, "2025-spring", "algorithms", "report1")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "main.tex"), []byte("a\nb\n"), 0644); err != nil {
		t.Fatal(err)
	}

	rec, resp := doJSON(t, h, http.MethodGet, "/files/courses/2025-spring/algorithms/report1/main.tex", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp.Data["content"] != "a\nb\n" {
		t.Errorf("content = %q", resp.Data["content"])
	}
	if resp.Data["lines"].(float64) != 2 {
		t.Errorf("lines = %v, want 2", resp.Data["lines"])
	}

	rec, _ = doJSON(t, h, http.MethodGet, "/files/courses/none.tex", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestUploadSanitizesFilename(t *testing.T) {
	s, ws := newTestServer(t, 0)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "../../etc/passwd")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte("pretend image")); err != nil {
		t.Fatal(err)
	}
	if err := mw.WriteField("project_path", "courses/2025-spring/algorithms/report1"); err != nil {
		t.Fatal(err)
	}
	if err := mw.WriteField("subdirectory", "figures"); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad envelope: %v", err)
	}
	if rec.Code != http.StatusOK || !resp.Success {
		t.Fatalf("upload failed: %d %+v", rec.Code, resp)
	}
	if resp.Data["filename"] != "passwd" {
		t.Errorf("filename = %v, want passwd", resp.Data["filename"])
	}
	stored := filepath.Join(ws.CoursesDir, "2025-spring", "algorithms", "report1", "figures", "passwd")
	if _, err := os.Stat(stored); err != nil {
		t.Errorf("uploaded file not at %s: %v", stored, err)
	}
}

func TestUploadTooLarge(t *testing.T) {
	s, _ := newTestServer(t, 256)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "big.bin")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(bytes.Repeat([]byte("x"), 4096)); err != nil {
		t.Fatal(err)
	}
	if err := mw.WriteField("project_path", "courses/a/b/c"); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestWatchIsStub(t *testing.T) {
	s, ws := newTestServer(t, 0)
	dir := filepath.Join(ws.CoursesDir, "2025-spring", "algorithms", "report1")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	rel := "courses/2025-spring/algorithms/report1/main.tex"
	if err := os.WriteFile(filepath.Join(dir, "main.tex"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	rec, resp := doJSON(t, s.Handler(), http.MethodPost, "/watch", map[string]any{"file_path": rel})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp.Data["status"] != "watch_ready" {
		t.Errorf("status field = %v, want watch_ready", resp.Data["status"])
	}
}

func TestSystemInfo(t *testing.T) {
	s, _ := newTestServer(t, 0)
	rec, resp := doJSON(t, s.Handler(), http.MethodGet, "/system/info", nil)
	if rec.Code != http.StatusOK || !resp.Success {
		t.Fatalf("system info failed: %d", rec.Code)
	}
	system, ok := resp.Data["system"].(map[string]any)
	if !ok {
		t.Fatalf("system data missing: %+v", resp.Data)
	}
	engines, ok := system["supported_compilers"].([]any)
	if !ok || len(engines) != 4 {
		t.Errorf("supported_compilers = %v, want 4 engines", system["supported_compilers"])
	}
}
