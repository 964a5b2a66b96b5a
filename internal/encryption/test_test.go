package encryption

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestTestEncryptor_EncryptDecrypt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []byte
	}{
		{name: "simple text", input: []byte("hello world")},
		{name: "empty", input: []byte{}},
		{name: "binary data", input: []byte{0x00, 0xff, 0x01, 0xfe}},
		{name: "large data", input: bytes.Repeat([]byte("abcdef"), 10000)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := NewTestEncryptor()

			var encrypted bytes.Buffer
			if err := e.Encrypt(bytes.NewReader(tt.input), &encrypted); err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}
			if !bytes.HasPrefix(encrypted.Bytes(), testHeader) {
				t.Error("encrypted output missing test header")
			}

			dc, err := e.Unlock("")
			if err != nil {
				t.Fatalf("Unlock() error = %v", err)
			}
			var decrypted bytes.Buffer
			if err := dc.Decrypt(&encrypted, &decrypted); err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if !bytes.Equal(decrypted.Bytes(), tt.input) {
				t.Errorf("round-trip mismatch: got %q, want %q", decrypted.Bytes(), tt.input)
			}
		})
	}
}

func TestTestDecryptionContext_InvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []byte
	}{
		{name: "wrong header", input: []byte("NOTENC\x00\x00payload")},
		{name: "truncated header", input: []byte("SFM")},
		{name: "empty", input: []byte{}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			dc := &TestDecryptionContext{}
			if err := dc.Decrypt(bytes.NewReader(tt.input), &out); err == nil {
				t.Error("Decrypt() succeeded, want error")
			}
		})
	}
}

func TestDecryptFile_RemovesPartialOutput(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	src := filepath.Join(dir, "bad.age")
	if err := os.WriteFile(src, []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}
	dest := filepath.Join(dir, "bad")
	if err := DecryptFile(&TestDecryptionContext{}, src, dest); err == nil {
		t.Fatal("DecryptFile() succeeded, want error")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Errorf("partial output left behind: %v", err)
	}
}
