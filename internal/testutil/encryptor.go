package testutil

import (
	"sfm/internal/encryption"
	"sfm/internal/sfm"
)

// NewTestEncryptor creates a new test encryptor for testing.
func NewTestEncryptor() sfm.Encryptor {
	return encryption.NewTestEncryptor()
}
