package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	dserrors "github.com/systmms/envlens/internal/errors"
)

// Setting keys as they appear in settings.yaml.
const (
	KeyEnableAutoReveal                      = "enableAutoReveal"
	KeyDisplayAutoRevealCodeLens             = "displayAutoRevealCodeLens"
	KeyDisplayAutoRevealNavigationButton     = "displayAutoRevealNavigationButton"
	KeyDisplayCopyToClipboardButton          = "displayCopyToClipboardButton"
	KeyDisplaySetSecretButton                = "displaySetSecretButton"
	KeyDisplayContextMenuCopySecretOnLine    = "displayContextMenuCopySecretOnLine"
	KeyDisplayContextMenuDecryptSecretOnLine = "displayContextMenuDecryptSecretOnLine"
	KeyDisplayContextMenuEncryptSecretOnLine = "displayContextMenuEncryptSecretOnLine"
	KeyAutoSearchForLocalDotenvxBinary       = "autoSearchForLocalDotenvxBinary"
	KeyDotenvxPath                           = "dotenvxPath"
	KeyUseKeyring                            = "useKeyring"
)

// Preferences are the persisted user settings.
type Preferences struct {
	EnableAutoReveal                      bool   `yaml:"enableAutoReveal" json:"enableAutoReveal"`
	DisplayAutoRevealCodeLens             bool   `yaml:"displayAutoRevealCodeLens" json:"displayAutoRevealCodeLens"`
	DisplayAutoRevealNavigationButton     bool   `yaml:"displayAutoRevealNavigationButton" json:"displayAutoRevealNavigationButton"`
	DisplayCopyToClipboardButton          bool   `yaml:"displayCopyToClipboardButton" json:"displayCopyToClipboardButton"`
	DisplaySetSecretButton                bool   `yaml:"displaySetSecretButton" json:"displaySetSecretButton"`
	DisplayContextMenuCopySecretOnLine    bool   `yaml:"displayContextMenuCopySecretOnLine" json:"displayContextMenuCopySecretOnLine"`
	DisplayContextMenuDecryptSecretOnLine bool   `yaml:"displayContextMenuDecryptSecretOnLine" json:"displayContextMenuDecryptSecretOnLine"`
	DisplayContextMenuEncryptSecretOnLine bool   `yaml:"displayContextMenuEncryptSecretOnLine" json:"displayContextMenuEncryptSecretOnLine"`
	AutoSearchForLocalDotenvxBinary       bool   `yaml:"autoSearchForLocalDotenvxBinary" json:"autoSearchForLocalDotenvxBinary"`
	DotenvxPath                           string `yaml:"dotenvxPath,omitempty" json:"dotenvxPath,omitempty"`
	UseKeyring                            bool   `yaml:"useKeyring" json:"useKeyring"`
}

// Defaults returns the settings used when no settings file exists. Reveal
// starts disabled.
func Defaults() Preferences {
	return Preferences{
		EnableAutoReveal:                      false,
		DisplayAutoRevealCodeLens:             true,
		DisplayAutoRevealNavigationButton:     true,
		DisplayCopyToClipboardButton:          true,
		DisplaySetSecretButton:                true,
		DisplayContextMenuCopySecretOnLine:    true,
		DisplayContextMenuDecryptSecretOnLine: true,
		DisplayContextMenuEncryptSecretOnLine: true,
		AutoSearchForLocalDotenvxBinary:       true,
		UseKeyring:                            true,
	}
}

func (p *Preferences) bools() map[string]*bool {
	return map[string]*bool{
		KeyEnableAutoReveal:                      &p.EnableAutoReveal,
		KeyDisplayAutoRevealCodeLens:             &p.DisplayAutoRevealCodeLens,
		KeyDisplayAutoRevealNavigationButton:     &p.DisplayAutoRevealNavigationButton,
		KeyDisplayCopyToClipboardButton:          &p.DisplayCopyToClipboardButton,
		KeyDisplaySetSecretButton:                &p.DisplaySetSecretButton,
		KeyDisplayContextMenuCopySecretOnLine:    &p.DisplayContextMenuCopySecretOnLine,
		KeyDisplayContextMenuDecryptSecretOnLine: &p.DisplayContextMenuDecryptSecretOnLine,
		KeyDisplayContextMenuEncryptSecretOnLine: &p.DisplayContextMenuEncryptSecretOnLine,
		KeyAutoSearchForLocalDotenvxBinary:       &p.AutoSearchForLocalDotenvxBinary,
		KeyUseKeyring:                            &p.UseKeyring,
	}
}

// Keys lists every setting name in sorted order.
func Keys() []string {
	var p Preferences
	keys := []string{KeyDotenvxPath}
	for k := range p.bools() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns a setting formatted as text.
func (p Preferences) Get(key string) (string, error) {
	if key == KeyDotenvxPath {
		return p.DotenvxPath, nil
	}
	if b, ok := p.bools()[key]; ok {
		return strconv.FormatBool(*b), nil
	}
	return "", unknownKey(key)
}

// Set parses value and assigns it to the named setting.
func (p *Preferences) Set(key, value string) error {
	if key == KeyDotenvxPath {
		p.DotenvxPath = strings.TrimSpace(value)
		return nil
	}
	b, ok := p.bools()[key]
	if !ok {
		return unknownKey(key)
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return dserrors.ConfigError{
			Field:      key,
			Value:      value,
			Message:    "expected a boolean",
			Suggestion: "Use true or false",
		}
	}
	*b = parsed
	return nil
}

// Diff returns the keys whose values differ between p and other.
func (p Preferences) Diff(other Preferences) []string {
	var changed []string
	for _, k := range Keys() {
		a, _ := p.Get(k)
		b, _ := other.Get(k)
		if a != b {
			changed = append(changed, k)
		}
	}
	return changed
}

func unknownKey(key string) error {
	return dserrors.ConfigError{
		Field:      "key",
		Value:      key,
		Message:    "unknown setting",
		Suggestion: fmt.Sprintf("Available settings: %s", strings.Join(Keys(), ", ")),
	}
}
