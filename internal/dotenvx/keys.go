package dotenvx

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/zalando/go-keyring"
)

// DefaultKeyringService is the OS keychain service envlens stores private
// keys under.
const DefaultKeyringService = "envlens"

var nonWord = regexp.MustCompile(`[^A-Z0-9]+`)

// PrivateKeyName returns the environment variable dotenvx reads the private
// key for filePath from: .env -> DOTENV_PRIVATE_KEY,
// .env.production -> DOTENV_PRIVATE_KEY_PRODUCTION.
func PrivateKeyName(filePath string) string {
	suffix := strings.TrimPrefix(filepath.Base(filePath), ".env")
	suffix = strings.TrimPrefix(suffix, ".")
	if suffix == "" {
		return "DOTENV_PRIVATE_KEY"
	}
	suffix = strings.Trim(nonWord.ReplaceAllString(strings.ToUpper(suffix), "_"), "_")
	return "DOTENV_PRIVATE_KEY_" + suffix
}

// KeySource supplies dotenvx private keys.
type KeySource interface {
	PrivateKey(filePath string) (value string, ok bool, err error)
}

// Keyring stores private keys in the OS keychain, one entry per absolute
// file path.
type Keyring struct {
	Service string
}

// NewKeyring returns a keyring source for the default service.
func NewKeyring() *Keyring {
	return &Keyring{Service: DefaultKeyringService}
}

// PrivateKey looks up the key stored for filePath.
func (k *Keyring) PrivateKey(filePath string) (string, bool, error) {
	account, err := k.account(filePath)
	if err != nil {
		return "", false, err
	}
	value, err := keyring.Get(k.service(), account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("keyring lookup for %s: %w", filepath.Base(filePath), err)
	}
	return value, true, nil
}

// Store saves the private key for filePath.
func (k *Keyring) Store(filePath, value string) error {
	account, err := k.account(filePath)
	if err != nil {
		return err
	}
	return keyring.Set(k.service(), account, value)
}

// Forget removes the private key for filePath. Forgetting a key that was
// never stored is not an error.
func (k *Keyring) Forget(filePath string) error {
	account, err := k.account(filePath)
	if err != nil {
		return err
	}
	if err := keyring.Delete(k.service(), account); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}

func (k *Keyring) service() string {
	if k.Service == "" {
		return DefaultKeyringService
	}
	return k.Service
}

func (k *Keyring) account(filePath string) (string, error) {
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return "", err
	}
	return abs, nil
}

var _ KeySource = (*Keyring)(nil)
