package catalog

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// sourceDocument mirrors the build artifact produced from the notification
// type source documents.
type sourceDocument struct {
	Notifications []Entry `yaml:"notifications"`
}

// FromYAML parses a catalog source document and builds a catalog from it.
// Validation failures surface here so misconfiguration prevents startup
// instead of causing runtime surprises.
func FromYAML(data []byte) (*Catalog, error) {
	var doc sourceDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Join(ErrInvalidSource, err)
	}
	return New(doc.Notifications)
}

// LoadFile reads a catalog source file and builds a catalog from it.
// Intended to be called once at process start; there is no runtime reload.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrInvalidSource, err)
	}
	return FromYAML(data)
}
