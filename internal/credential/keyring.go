// Package credential stores the mail account secret in the system keyring,
// falling back to an encrypted file when no native backend is available.
package credential

import (
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "mailbridge"

// accountKey namespaces stored secrets by account address.
func accountKey(address string) string {
	return "account-" + address
}

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/mailbridge/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("mailbridge-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// PasswordFor retrieves the stored password for the given account address.
func PasswordFor(address string) (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(accountKey(address))
	if err != nil {
		return "", fmt.Errorf("getting credential for %s: %w", address, err)
	}

	return string(item.Data), nil
}

// SetPassword stores the password for the given account address.
func SetPassword(address, password string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:  accountKey(address),
		Data: []byte(password),
	})
	if err != nil {
		return fmt.Errorf("setting credential for %s: %w", address, err)
	}

	return nil
}

// DeletePassword removes the stored password for the given account address.
func DeletePassword(address string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	if err := ring.Remove(accountKey(address)); err != nil {
		return fmt.Errorf("deleting credential for %s: %w", address, err)
	}

	return nil
}
