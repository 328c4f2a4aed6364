// Package keyring keeps the remote store connection string in the OS
// keyring so it never has to live in shell history or config files.
package keyring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/carelog/internal/constants"
)

// Sentinel accepted by --remote to read the connection string from the keyring.
const Sentinel = "keyring"

var (
	// ErrNotFound is returned when no connection string is stored
	ErrNotFound = errors.New("remote connection not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// GetRemote retrieves the remote store connection string.
func GetRemote() (string, error) {
	connStr, err := keyring.Get(constants.AppName, constants.DefaultKeyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return connStr, nil
}

// SetRemote stores the remote store connection string.
func SetRemote(connStr string) error {
	if strings.TrimSpace(connStr) == "" {
		return errors.New("connection string cannot be empty")
	}
	if err := keyring.Set(constants.AppName, constants.DefaultKeyringUser, connStr); err != nil {
		return fmt.Errorf("failed to store connection in keyring: %w", err)
	}
	return nil
}

func DeleteRemote() error {
	err := keyring.Delete(constants.AppName, constants.DefaultKeyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete connection from keyring: %w", err)
	}
	return nil
}

// Resolve returns value unchanged unless it is the keyring sentinel, in
// which case the stored connection string is returned.
func Resolve(value string) (string, error) {
	if value != Sentinel {
		return value, nil
	}
	return GetRemote()
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
