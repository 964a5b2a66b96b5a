package encryption

import (
	"bytes"
	"fmt"
	"io"

	"sfm/internal/sfm"
)

// testHeader is prepended by TestEncryptor so sealed output differs from
// plaintext while staying deterministic.
var testHeader = []byte("SFMENC\x00\x00")

// TestEncryptor is a deterministic stand-in for tests. It prepends a fixed
// header on Encrypt and its context strips it on Decrypt.
type TestEncryptor struct{}

var _ sfm.Encryptor = (*TestEncryptor)(nil)

// NewTestEncryptor creates a new TestEncryptor.
func NewTestEncryptor() *TestEncryptor {
	return &TestEncryptor{}
}

func (e *TestEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := w.Write(testHeader); err != nil {
		return fmt.Errorf("writing test header: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

// Unlock returns a context that strips the test header.
func (e *TestEncryptor) Unlock(string) (DecryptionContext, error) {
	return &TestDecryptionContext{}, nil
}

// TestDecryptionContext strips the header added by TestEncryptor.
type TestDecryptionContext struct{}

var _ DecryptionContext = (*TestDecryptionContext)(nil)

func (c *TestDecryptionContext) Decrypt(r io.Reader, w io.Writer) error {
	header := make([]byte, len(testHeader))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("reading test header: %w", err)
	}
	if !bytes.Equal(header, testHeader) {
		return fmt.Errorf("invalid test encryption header")
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}
