package workspace

import (
	"path/filepath"
	"testing"
)

func TestResolveStaysUnderRoot(t *testing.T) {
	ws, err := New(t.TempDir(), "", "", "")
	if err != nil {
		t.Fatal(err)
	}

	abs, err := ws.Resolve("courses/2025/algo/report1/main.tex")
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(ws.Root, "courses", "2025", "algo", "report1", "main.tex")
	if abs != want {
		t.Errorf("resolved = %q, want %q", abs, want)
	}
}

func TestResolveNeutralizesTraversal(t *testing.T) {
	ws, err := New(t.TempDir(), "", "", "")
	if err != nil {
		t.Fatal(err)
	}

	abs, err := ws.Resolve("../../etc/passwd")
	if err != nil {
		t.Fatalf("traversal should be cleaned, got error: %v", err)
	}
	if abs != filepath.Join(ws.Root, "etc", "passwd") {
		t.Errorf("resolved = %q escapes root %q", abs, ws.Root)
	}
}

func TestRelRoundTrip(t *testing.T) {
	ws, err := New(t.TempDir(), "", "", "")
	if err != nil {
		t.Fatal(err)
	}
	abs, _ := ws.Resolve("courses/a/b/c")
	if got := ws.Rel(abs); got != "courses/a/b/c" {
		t.Errorf("rel = %q, want %q", got, "courses/a/b/c")
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"../../etc/passwd", "passwd"},
		{"..\\..\\windows\\system32", "system32"},
		{"figure 1.png", "figure_1.png"},
		{"report.tex", "report.tex"},
		{"...", "uploaded_file"},
		{"", "uploaded_file"},
		{".hidden", "hidden"},
	}
	for _, c := range cases {
		if got := SanitizeFilename(c.in); got != c.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
