package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"sfm/internal/encryption"

	"github.com/spf13/cobra"
)

var stdinReader = bufio.NewReader(os.Stdin)

// readPassphrase prompts on stderr and reads a passphrase without echo when
// stdin is a terminal, or a single line otherwise.
func readPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading passphrase: %w", err)
		}
		return string(b), nil
	}
	line, err := stdinReader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the key pair used for encrypted backups",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		enc := encryption.NewAgeEncryptor(cfg.Encryption)
		if enc.IsConfigured() {
			return encryption.ErrKeysExist
		}

		pass, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
		confirm, err := readPassphrase("Confirm passphrase: ")
		if err != nil {
			return err
		}
		if pass != confirm {
			return fmt.Errorf("passphrases do not match")
		}

		if err := enc.Setup(pass); err != nil {
			return err
		}

		fmt.Printf("Public key:  %s\n", cfg.Encryption.PublicKeyPath)
		fmt.Printf("Private key: %s\n", cfg.Encryption.PrivateKeyPath)
		if !cfg.Encryption.Enabled {
			fmt.Println("Set encryption.enabled = true in the config to encrypt new backups.")
		}
		return nil
	},
}

// decrypt command
var decryptCmd = &cobra.Command{
	Use:   "decrypt SRC DEST",
	Short: "Restore an encrypted backup copy",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		enc := encryption.NewAgeEncryptor(cfg.Encryption)
		if !enc.IsConfigured() {
			return fmt.Errorf("no keys found at %s (run `sfm keys init`)", cfg.Encryption.PrivateKeyPath)
		}

		pass, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
		dc, err := enc.Unlock(pass)
		if err != nil {
			return err
		}

		if err := encryption.DecryptFile(dc, args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Restored %s\n", args[1])
		return nil
	},
}

func init() {
	keysCmd.AddCommand(keysInitCmd)
}
