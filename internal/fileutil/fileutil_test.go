package fileutil_test

// Notes:
// - Close error branches are not tested because RemoveAll failures are
//   platform-specific (permissions, open handles on Windows).
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-mdconv/internal/fileutil"
)

// ---------------------------------------------------------------------------
// TestValidateName - Name validation
// ---------------------------------------------------------------------------

func TestValidateName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "plain name", input: "input.md", wantErr: nil},
		{name: "dotted name", input: "reference.docx", wantErr: nil},
		{name: "empty", input: "", wantErr: fileutil.ErrNameEmpty},
		{name: "forward slash", input: "../etc/passwd", wantErr: fileutil.ErrNamePathTraversal},
		{name: "backslash", input: "..\\windows", wantErr: fileutil.ErrNamePathTraversal},
		{name: "null byte", input: "a\x00.md", wantErr: fileutil.ErrNamePathTraversal},
		{name: "parent", input: "..", wantErr: fileutil.ErrNamePathTraversal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := fileutil.ValidateName(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateName(%q) = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestWorkspace - Lifecycle
// ---------------------------------------------------------------------------

func TestWorkspace_Lifecycle(t *testing.T) {
	t.Parallel()

	parent := t.TempDir()
	ws, err := fileutil.NewWorkspace(parent, "mdconv-")
	if err != nil {
		t.Fatalf("NewWorkspace() error = %v", err)
	}

	if !strings.HasPrefix(filepath.Base(ws.Dir()), "mdconv-") {
		t.Errorf("Dir() = %q, want mdconv- prefix", ws.Dir())
	}
	if filepath.Dir(ws.Dir()) != parent {
		t.Errorf("Dir() parent = %q, want %q", filepath.Dir(ws.Dir()), parent)
	}

	path, err := ws.WriteFile("input.md", []byte("# Hi"))
	if err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if string(got) != "# Hi" {
		t.Errorf("content = %q, want %q", got, "# Hi")
	}

	if err := ws.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := os.Stat(ws.Dir()); !os.IsNotExist(err) {
		t.Errorf("workspace still exists after Close: %v", err)
	}

	// Second close is a no-op.
	if err := ws.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := ws.WriteFile("late.md", nil); !errors.Is(err, fileutil.ErrWorkspaceClosed) {
		t.Errorf("WriteFile after Close error = %v, want ErrWorkspaceClosed", err)
	}
}

func TestWorkspace_Isolated(t *testing.T) {
	t.Parallel()

	parent := t.TempDir()
	a, err := fileutil.NewWorkspace(parent, "req-")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = a.Close() }()
	b, err := fileutil.NewWorkspace(parent, "req-")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = b.Close() }()

	if a.Dir() == b.Dir() {
		t.Fatal("two workspaces share a directory")
	}
}

func TestWorkspace_RejectsTraversal(t *testing.T) {
	t.Parallel()

	ws, err := fileutil.NewWorkspace(t.TempDir(), "ws-")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = ws.Close() }()

	if _, err := ws.WriteFile("../escape.md", []byte("x")); !errors.Is(err, fileutil.ErrNamePathTraversal) {
		t.Errorf("WriteFile() error = %v, want ErrNamePathTraversal", err)
	}
	if _, err := ws.Path(""); !errors.Is(err, fileutil.ErrNameEmpty) {
		t.Errorf("Path(\"\") error = %v, want ErrNameEmpty", err)
	}
}

func TestNewWorkspace_MissingParent(t *testing.T) {
	t.Parallel()

	_, err := fileutil.NewWorkspace(filepath.Join(t.TempDir(), "missing", "dir"), "ws-")
	if err == nil {
		t.Fatal("expected error for missing parent directory")
	}
}

// ---------------------------------------------------------------------------
// TestStem / TestFileExists / TestIsFilePath
// ---------------------------------------------------------------------------

func TestStem(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"report.md":           "report",
		"docs/notes.markdown": "notes",
		"/abs/path/a.b.md":    "a.b",
		"README":              "README",
	}
	for in, want := range tests {
		if got := fileutil.Stem(in); got != want {
			t.Errorf("Stem(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "a.md")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	if !fileutil.FileExists(file) {
		t.Error("FileExists(file) = false, want true")
	}
	if fileutil.FileExists(dir) {
		t.Error("FileExists(dir) = true, want false")
	}
	if fileutil.FileExists(filepath.Join(dir, "missing.md")) {
		t.Error("FileExists(missing) = true, want false")
	}
}

func TestIsFilePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"work", false},
		{"my-config", false},
		{"./work.yaml", true},
		{"/etc/mdconv/work.yaml", true},
		{`C:\config\work.yaml`, true},
	}
	for _, tt := range tests {
		if got := fileutil.IsFilePath(tt.input); got != tt.want {
			t.Errorf("IsFilePath(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
