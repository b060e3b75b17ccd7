package main

// Notes:
// - The printed YAML is decoded back to check the effective values; key
//   order and quoting are yamlutil's concern.

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/alnah/go-mdconv/internal/config"
	"github.com/alnah/go-mdconv/internal/yamlutil"
)

// ---------------------------------------------------------------------------
// TestRunConfig - Effective configuration output
// ---------------------------------------------------------------------------

func TestRunConfig_Defaults(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	if err := runConfig(nil, env.Environment); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got config.Config
	if err := yamlutil.Decode(env.stdout.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid YAML: %v\n%s", err, env.stdout.String())
	}
	if got.Format != "docx" || got.PDF.Engine != "pdflatex" || got.Server.Addr != "127.0.0.1:8080" {
		t.Errorf("config = %+v, want defaults", got)
	}
}

func TestRunConfig_File(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "team.yaml", "format: pdf\npdf:\n  documentClass: report\n")

	env := newTestEnv()
	if err := runConfig([]string{path}, env.Environment); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got config.Config
	if err := yamlutil.Decode(env.stdout.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if got.Format != "pdf" || got.PDF.DocumentClass != "report" {
		t.Errorf("file values not applied: %+v", got)
	}
	if got.PDF.PaperSize != "letter" {
		t.Errorf("PaperSize = %q, want default", got.PDF.PaperSize)
	}
}

func TestRunConfig_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	invalid := writeFile(t, dir, "bad.yaml", "docx:\n  dpi: 10\n")

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "two names", args: []string{"a", "b"}, wantErr: ErrUsage},
		{name: "missing file", args: []string{filepath.Join(dir, "none.yaml")}, wantErr: config.ErrConfigNotFound},
		{name: "invalid value", args: []string{invalid}, wantErr: config.ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv()
			err := runConfig(tt.args, env.Environment)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if env.stdout.Len() != 0 {
				t.Errorf("nothing should be printed on error, got:\n%s", env.stdout.String())
			}
		})
	}
}
