package auth

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStaticToken(t *testing.T) {
	tok, err := Static("abc").Token()
	if err != nil || tok != "abc" {
		t.Fatalf("got %q, %v", tok, err)
	}
	if _, err := Static("").Token(); err == nil {
		t.Fatal("empty static token should error")
	}
}

func TestFileSourceTrimsAndRereads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("  first\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	src := FileSource{Path: path}

	tok, err := src.Token()
	if err != nil || tok != "first" {
		t.Fatalf("got %q, %v", tok, err)
	}

	// rotated token is picked up without restarting
	if err := os.WriteFile(path, []byte("second\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	tok, err = src.Token()
	if err != nil || tok != "second" {
		t.Fatalf("after rotation got %q, %v", tok, err)
	}
}

func TestFileSourceEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := (FileSource{Path: path}).Token(); err == nil {
		t.Fatal("empty token file should error")
	}
}

func TestFromEnvOrFilePrecedence(t *testing.T) {
	src, err := FromEnvOrFile("literal", "/does/not/matter")
	if err != nil {
		t.Fatal(err)
	}
	if tok, _ := src.Token(); tok != "literal" {
		t.Fatalf("literal token should win, got %q", tok)
	}
	if _, err := FromEnvOrFile("", ""); err == nil {
		t.Fatal("no token configured should error")
	}
}
