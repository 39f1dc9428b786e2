package config

import (
	"fmt"
	"strings"

	"github.com/99designs/keyring"
)

const (
	keyringService = "mcp-mail-router"
	keyringPrefix  = "keyring:"
)

// SecretFunc looks up a stored secret by key.
type SecretFunc func(key string) (string, error)

// resolve replaces a "keyring:<key>" reference with the stored secret.
// Other values are returned unchanged.
func resolve(value string, secret SecretFunc) (string, error) {
	key, ok := strings.CutPrefix(value, keyringPrefix)
	if !ok {
		return value, nil
	}
	if key == "" {
		return "", fmt.Errorf("empty keyring reference")
	}
	v, err := secret(key)
	if err != nil {
		return "", fmt.Errorf("resolving %s%s: %w", keyringPrefix, key, err)
	}
	return v, nil
}

func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: keyringService,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/mcp-mail-router/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("mcp-mail-router-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// keyringSecret reads a credential from the system keyring.
func keyringSecret(key string) (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}
	item, err := ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}
