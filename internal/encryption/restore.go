package encryption

import (
	"fmt"
	"os"
	"path/filepath"
)

// DecryptFile writes the plaintext of the sealed backup copy src to dest,
// carrying over its permission bits and modification time. dest must not
// exist.
func DecryptFile(dc DecryptionContext, src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening encrypted file: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat encrypted file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("creating destination directory: %w", err)
	}

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}

	if err := dc.Decrypt(in, out); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return fmt.Errorf("closing destination: %w", err)
	}

	if err := os.Chtimes(dest, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("setting modification time: %w", err)
	}
	return nil
}
