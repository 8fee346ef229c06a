package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// stubRunner records the invocation and returns canned output.
type stubRunner struct {
	name   string
	args   []string
	stdout string
	stderr string
	err    error
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.name = name
	s.args = args
	return []byte(s.stdout), []byte(s.stderr), s.err
}

func TestRecognize_ArgsAndVerbatimOutput(t *testing.T) {
	r := &stubRunner{stdout: "Invoice for PO904821\n"}
	eng := NewTesseract("/usr/bin/tesseract", Config{Language: "eng"}, nil)
	eng.runner = r

	text, err := eng.Recognize(context.Background(), "/scans/in.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Invoice for PO904821\n" {
		t.Errorf("text = %q, want verbatim stdout", text)
	}
	if r.name != "/usr/bin/tesseract" {
		t.Errorf("binary = %q", r.name)
	}
	want := []string{"/scans/in.png", "stdout", "-l", "eng"}
	if len(r.args) != len(want) {
		t.Fatalf("args = %v, want %v", r.args, want)
	}
	for i := range want {
		if r.args[i] != want[i] {
			t.Errorf("args[%d] = %q, want %q", i, r.args[i], want[i])
		}
	}
}

func TestRecognize_TessdataDirForwarded(t *testing.T) {
	r := &stubRunner{}
	eng := NewTesseract("tesseract", Config{TessdataDir: "/opt/tessdata"}, nil)
	eng.runner = r

	if _, err := eng.Recognize(context.Background(), "x.png"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	joined := strings.Join(r.args, " ")
	if !strings.Contains(joined, "--tessdata-dir /opt/tessdata") {
		t.Errorf("args missing tessdata dir: %v", r.args)
	}
	if !strings.Contains(joined, "-l eng") {
		t.Errorf("language default not applied: %v", r.args)
	}
}

func TestRecognize_EngineFailureWrapped(t *testing.T) {
	bang := errors.New("exit status 1")
	r := &stubRunner{stderr: "Error in pixReadStream", err: bang}
	eng := NewTesseract("tesseract", Config{}, nil)
	eng.runner = r

	_, err := eng.Recognize(context.Background(), "bad.png")
	if !errors.Is(err, bang) {
		t.Fatalf("err = %v, want wrapped runner error", err)
	}
	if !strings.Contains(err.Error(), "pixReadStream") {
		t.Errorf("stderr missing from error: %v", err)
	}
}

func TestRecognize_EmptyOutputIsNotAnError(t *testing.T) {
	eng := NewTesseract("tesseract", Config{}, nil)
	eng.runner = &stubRunner{stdout: ""}

	text, err := eng.Recognize(context.Background(), "blank.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "" {
		t.Errorf("text = %q, want empty", text)
	}
}

func TestLocate_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "tesseract")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := Locate(Config{Binary: bin})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != bin {
		t.Errorf("bin = %q, want %q", got, bin)
	}
}

func TestLocate_ExplicitPathMissing(t *testing.T) {
	_, err := Locate(Config{Binary: filepath.Join(t.TempDir(), "nope", "tesseract")})
	if err == nil {
		t.Fatal("expected error for missing explicit binary")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 4); got != "abcd...(truncated)" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("ab", 4); got != "ab" {
		t.Errorf("truncate = %q", got)
	}
}
