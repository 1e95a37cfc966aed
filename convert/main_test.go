package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func TestConvertStrokesFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "sig.json")
	out := filepath.Join(dir, "sig.png")
	if err := os.WriteFile(in, []byte(`[{"lx":20,"ly":34,"mx":60,"my":20}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	var stderr bytes.Buffer
	if code := run([]string{"-strokes", in, "-o", out, "-width", "120"}, nil, nil, &stderr); code != exitOK {
		t.Fatalf("run() = %d, stderr %s", code, stderr.String())
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 120 || b.Dy() != 55 {
		t.Errorf("size = %v, want 120x55", b)
	}
}

func TestConvertStdinToStdout(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-strokes", "-", "-o", "-"}, strings.NewReader(`[]`), &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("run() = %d, stderr %s", code, stderr.String())
	}
	if _, err := png.Decode(&stdout); err != nil {
		t.Errorf("stdout is not a PNG: %v", err)
	}
}

func TestConvertName(t *testing.T) {
	dir := t.TempDir()
	fontPath := filepath.Join(dir, "journal.ttf")
	if err := os.WriteFile(fontPath, goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	var stdout, stderr bytes.Buffer
	code := run([]string{"-name", "Jane Doe", "-font", fontPath, "-o", "-"}, nil, &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("run() = %d, stderr %s", code, stderr.String())
	}
	if _, err := png.Decode(&stdout); err != nil {
		t.Errorf("stdout is not a PNG: %v", err)
	}
}

func TestConvertErrors(t *testing.T) {
	missingFont := filepath.Join(t.TempDir(), "missing.ttf")
	tests := []struct {
		name  string
		args  []string
		stdin string
		want  int
	}{
		{"no mode", []string{"-o", "-"}, "", exitUsage},
		{"both modes", []string{"-strokes", "-", "-name", "x", "-o", "-"}, "", exitUsage},
		{"no output", []string{"-strokes", "-"}, "", exitUsage},
		{"bad flag", []string{"-nope"}, "", exitUsage},
		{"bad color", []string{"-strokes", "-", "-o", "-", "-pen-color", "red"}, "[]", exitUsage},
		{"malformed", []string{"-strokes", "-", "-o", "-"}, `[{"lx":1}]`, exitInput},
		{"font missing", []string{"-name", "Jane", "-font", missingFont, "-o", "-"}, "", exitFont},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if got := run(tt.args, strings.NewReader(tt.stdin), &stdout, &stderr); got != tt.want {
				t.Errorf("run() = %d, want %d (stderr %s)", got, tt.want, stderr.String())
			}
			if tt.want != exitOK && stdout.Len() != 0 {
				t.Error("wrote output on failure")
			}
		})
	}
}
