package assets

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewAssetResolver(t *testing.T) {
	t.Parallel()

	embedded, err := NewAssetResolver("")
	if err != nil {
		t.Fatalf("NewAssetResolver(\"\") error = %v", err)
	}
	if embedded.HasCustomLoader() {
		t.Error("expected no custom loader for empty path")
	}

	custom, err := NewAssetResolver(t.TempDir())
	if err != nil {
		t.Fatalf("NewAssetResolver() error = %v", err)
	}
	if !custom.HasCustomLoader() {
		t.Error("expected custom loader for valid path")
	}

	if _, err := NewAssetResolver("/nonexistent/path/abc123xyz"); !errors.Is(err, ErrInvalidBasePath) {
		t.Errorf("NewAssetResolver() error = %v, want ErrInvalidBasePath", err)
	}
}

func TestAssetResolver_CustomWithFallback(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeAsset(t, dir, "styles", "form.css", "/* custom form */")

	resolver, err := NewAssetResolver(dir)
	if err != nil {
		t.Fatalf("NewAssetResolver() error = %v", err)
	}

	t.Run("custom wins", func(t *testing.T) {
		t.Parallel()
		got, err := resolver.LoadStyle(FormStyle)
		if err != nil || got != "/* custom form */" {
			t.Errorf("LoadStyle(form) = %q, %v", got, err)
		}
	})

	t.Run("falls back to embedded style", func(t *testing.T) {
		t.Parallel()
		got, err := resolver.LoadStyle(PreviewStyle)
		if err != nil || !strings.Contains(got, ".markdown-preview") {
			t.Errorf("LoadStyle(preview) = %q, %v", got, err)
		}
	})

	t.Run("falls back to embedded template", func(t *testing.T) {
		t.Parallel()
		got, err := resolver.LoadTemplate(FormTemplate)
		if err != nil || !strings.Contains(got, "<form") {
			t.Errorf("LoadTemplate(form) error = %v", err)
		}
	})

	t.Run("validation errors do not fall back", func(t *testing.T) {
		t.Parallel()
		if _, err := resolver.LoadStyle("../form"); !errors.Is(err, ErrInvalidAssetName) {
			t.Errorf("LoadStyle() error = %v, want ErrInvalidAssetName", err)
		}
	})

	t.Run("missing everywhere", func(t *testing.T) {
		t.Parallel()
		if _, err := resolver.LoadTemplate("nope"); !errors.Is(err, ErrTemplateNotFound) {
			t.Errorf("LoadTemplate() error = %v, want ErrTemplateNotFound", err)
		}
	})
}

func TestAssetResolver_ReadErrorDoesNotFallBack(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	// A directory named like the asset makes ReadFile fail with a non
	// not-exist error.
	if err := os.MkdirAll(filepath.Join(dir, "styles", "form.css"), 0o755); err != nil {
		t.Fatal(err)
	}

	resolver, err := NewAssetResolver(dir)
	if err != nil {
		t.Fatalf("NewAssetResolver() error = %v", err)
	}
	if _, err := resolver.LoadStyle(FormStyle); !errors.Is(err, ErrAssetRead) {
		t.Errorf("LoadStyle() error = %v, want ErrAssetRead", err)
	}
}
