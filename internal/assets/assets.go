package assets

import (
	"fmt"
	"strings"
)

// DefaultStyle is the embedded stylesheet used when none is configured.
const DefaultStyle = "enhance"

// StyleLoader loads a CSS style by name, without the .css extension.
type StyleLoader interface {
	LoadStyle(name string) (string, error)
}

var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads an embedded style by name.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// ValidateAssetName rejects empty names and names with separators or dots.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
