package sfm_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"sfm/internal/sfm"
	"sfm/internal/testutil"
)

func TestHashFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content []byte
	}{
		{name: "empty", content: nil},
		{name: "short", content: []byte("hello world")},
		{name: "exact chunk", content: bytes.Repeat([]byte{'a'}, 4096)},
		{name: "several chunks", content: bytes.Repeat([]byte("0123456789"), 2000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := filepath.Join(dir, tt.name)
			if err := os.WriteFile(p, tt.content, 0644); err != nil {
				t.Fatal(err)
			}

			got, err := sfm.HashFile(p)
			if err != nil {
				t.Fatalf("HashFile() error = %v", err)
			}
			if want := testutil.Digest(tt.content); got != want {
				t.Errorf("HashFile() = %s, want %s", got, want)
			}

			again, err := sfm.HashFile(p)
			if err != nil {
				t.Fatalf("HashFile() second call error = %v", err)
			}
			if again != got {
				t.Errorf("HashFile() not deterministic: %s then %s", got, again)
			}
		})
	}
}

func TestHashFile_KnownDigest(t *testing.T) {
	p := filepath.Join(t.TempDir(), "hello.txt")
	if err := os.WriteFile(p, []byte("hello world"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := sfm.HashFile(p)
	if err != nil {
		t.Fatalf("HashFile() error = %v", err)
	}
	const want = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if got != want {
		t.Errorf("HashFile() = %s, want %s", got, want)
	}
}

func TestHashFile_Missing(t *testing.T) {
	if _, err := sfm.HashFile(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("HashFile() on missing file succeeded")
	}
}
