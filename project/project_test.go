package project

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/to404hanga/pkg404/cachex/lru"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
	"github.com/unilatex/latex_api_server/runner"
	"github.com/unilatex/latex_api_server/workspace"
)

func newTestService(t *testing.T) (*Service, *workspace.Workspace) {
	t.Helper()
	ws, err := workspace.New(t.TempDir(), "", "", "")
	if err != nil {
		t.Fatal(err)
	}
	cache, err := lru.NewSimpleLRU(8)
	if err != nil {
		t.Fatal(err)
	}
	return NewService(loggerv2.GetGlobalLogger(), ws, runner.New(), cache, 0), ws
}

func TestCreateScaffolding(t *testing.T) {
	s, ws := newTestService(t)

	result, err := s.Create(context.Background(), &CreateRequest{
		Semester:   "2025-spring",
		Course:     "algorithms",
		ReportName: "report1",
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.TemplateUsed != "base template" {
		t.Errorf("template used = %q, want base template", result.TemplateUsed)
	}

	base := filepath.Join(ws.CoursesDir, "2025-spring", "algorithms", "report1")
	for _, rel := range []string{
		"main.tex",
		"README.md",
		".gitignore",
		filepath.Join("output", ".gitkeep"),
		filepath.Join("figures", ".gitkeep"),
	} {
		if _, err := os.Stat(filepath.Join(base, rel)); err != nil {
			t.Errorf("expected %s to exist: %v", rel, err)
		}
	}
	for _, dir := range []string{"figures", "output", "sections"} {
		fi, err := os.Stat(filepath.Join(base, dir))
		if err != nil || !fi.IsDir() {
			t.Errorf("expected directory %s", dir)
		}
	}

	data, err := os.ReadFile(filepath.Join(base, "main.tex"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `\documentclass[12pt,a4paper]{ltjsarticle}`) {
		t.Error("main.tex should contain the base template preamble")
	}
}

func TestCreateUsesNamedTemplate(t *testing.T) {
	s, ws := newTestService(t)
	if err := os.MkdirAll(ws.TemplatesDir, 0755); err != nil {
		t.Fatal(err)
	}
	tpl := `\documentclass{beamer}`
	if err := os.WriteFile(filepath.Join(ws.TemplatesDir, "presentation-beamer.tex"), []byte(tpl), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := s.Create(context.Background(), &CreateRequest{
		Semester:   "2025-fall",
		Course:     "seminar",
		ReportName: "slides",
		Template:   "presentation-beamer.tex",
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.TemplateUsed != "presentation-beamer.tex" {
		t.Errorf("template used = %q", result.TemplateUsed)
	}
	data, _ := os.ReadFile(filepath.Join(ws.CoursesDir, "2025-fall", "seminar", "slides", "main.tex"))
	if string(data) != tpl {
		t.Errorf("main.tex = %q, want template content", data)
	}
}

func TestListFindsOnlyRealProjects(t *testing.T) {
	s, ws := newTestService(t)
	if _, err := s.Create(context.Background(), &CreateRequest{
		Semester: "2025-spring", Course: "algorithms", ReportName: "report1",
	}); err != nil {
		t.Fatal(err)
	}
	// main.tex を持たないディレクトリはプロジェクトではない
	if err := os.MkdirAll(filepath.Join(ws.CoursesDir, "2025-spring", "algorithms", "scratch"), 0755); err != nil {
		t.Fatal(err)
	}

	projects, err := s.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 1 {
		t.Fatalf("got %d projects, want 1", len(projects))
	}
	p := projects[0]
	if p.Semester != "2025-spring" || p.Course != "algorithms" || p.Name != "report1" {
		t.Errorf("unexpected project identity: %+v", p)
	}
	if p.HasPDF {
		t.Error("no pdf was compiled yet")
	}
}

func TestDeleteRejectsNonProject(t *testing.T) {
	s, ws := newTestService(t)
	dir := filepath.Join(ws.CoursesDir, "2025-spring", "algorithms", "not-a-project")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	marker := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(marker, []byte("keep me"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := s.Delete(context.Background(), s.wsRel(dir))
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	// 失敗時はファイルシステムに触れない
	if _, err := os.Stat(marker); err != nil {
		t.Error("validation failure must not mutate the directory")
	}
}

func TestDeleteMissingProject(t *testing.T) {
	s, _ := newTestService(t)
	_, err := s.Delete(context.Background(), "courses/none/none/none")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteRemovesProject(t *testing.T) {
	s, ws := newTestService(t)
	result, err := s.Create(context.Background(), &CreateRequest{
		Semester: "2025-spring", Course: "algorithms", ReportName: "report1",
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Delete(context.Background(), result.ProjectPath); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(ws.CoursesDir, "2025-spring", "algorithms", "report1")); !os.IsNotExist(err) {
		t.Error("project directory should be gone")
	}
}

func TestSaveUploadSanitizesTraversal(t *testing.T) {
	s, ws := newTestService(t)
	result, err := s.SaveUpload(context.Background(),
		"courses/2025-spring/algorithms/report1", "figures",
		"../../etc/passwd", strings.NewReader("pretend image"))
	if err != nil {
		t.Fatal(err)
	}
	if result.Filename != "passwd" {
		t.Errorf("filename = %q, want passwd", result.Filename)
	}
	want := filepath.Join(ws.CoursesDir, "2025-spring", "algorithms", "report1", "figures", "passwd")
	if result.AbsolutePath != want {
		t.Errorf("stored at %q, want %q", result.AbsolutePath, want)
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "pretend image" {
		t.Errorf("content = %q", data)
	}
}

func TestTemplateContentCached(t *testing.T) {
	s, ws := newTestService(t)
	if err := os.MkdirAll(ws.TemplatesDir, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(ws.TemplatesDir, "report-basic.tex")
	if err := os.WriteFile(path, []byte("line1\nline2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	first, err := s.TemplateContent(context.Background(), "report-basic.tex")
	if err != nil {
		t.Fatal(err)
	}
	if first.Lines != 2 {
		t.Errorf("lines = %d, want 2", first.Lines)
	}
	second, err := s.TemplateContent(context.Background(), "report-basic.tex")
	if err != nil {
		t.Fatal(err)
	}
	if second != first {
		t.Error("second fetch should come from the cache")
	}
}

func TestTemplateContentMissing(t *testing.T) {
	s, _ := newTestService(t)
	_, err := s.TemplateContent(context.Background(), "nope.tex")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// wsRel is a test shortcut to the workspace-relative form.
func (s *Service) wsRel(abs string) string {
	return s.ws.Rel(abs)
}
