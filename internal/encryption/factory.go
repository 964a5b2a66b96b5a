package encryption

import (
	"fmt"

	"sfm/internal/config"
	"sfm/internal/sfm"
)

// NewEncryptorFromConfig returns the Encryptor backup passes should use, or
// nil when encryption is disabled.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (sfm.Encryptor, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	switch cfg.Type {
	case "age", "":
		e := NewAgeEncryptor(cfg)
		if !e.IsConfigured() {
			return nil, fmt.Errorf("encryption enabled but no keys found at %s (run `sfm keys init`)", cfg.PublicKeyPath)
		}
		return e, nil
	case "test":
		return NewTestEncryptor(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
