package secure

import (
	"sync"

	"github.com/awnumar/memguard"
)

// Value is a secret held in an encrypted memory enclave.
type Value struct {
	mu        sync.RWMutex
	enclave   *memguard.Enclave
	empty     bool
	destroyed bool
}

// NewValue moves data into an enclave. data is wiped.
func NewValue(data []byte) *Value {
	if len(data) == 0 {
		return &Value{empty: true}
	}
	return &Value{enclave: memguard.NewEnclave(data)}
}

// NewValueFromString copies s into an enclave. The string itself cannot be
// wiped; prefer NewValue for bytes read from a terminal.
func NewValueFromString(s string) *Value {
	return NewValue([]byte(s))
}

// Empty reports whether the value has no content.
func (v *Value) Empty() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.empty || v.destroyed
}

// Use decrypts the value and passes a copy of it to fn. The decrypted
// buffer is destroyed when fn returns.
func (v *Value) Use(fn func(plaintext string) error) error {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.destroyed || v.empty {
		return fn("")
	}

	locked, err := v.enclave.Open()
	if err != nil {
		return err
	}
	defer locked.Destroy()

	return fn(string(locked.Bytes()))
}

// Destroy drops the enclave. Calling it more than once is safe; a destroyed
// value reads as empty.
func (v *Value) Destroy() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.enclave = nil
	v.destroyed = true
}

// Purge wipes every enclave and key memguard holds. Call it on exit.
func Purge() {
	memguard.Purge()
}
