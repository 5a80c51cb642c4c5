package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidCatalog wraps every structural catalog problem found at load time.
	ErrInvalidCatalog = errors.New("invalid catalog")

	// ErrUnknownEdition indicates an edition ID that the catalog does not define.
	ErrUnknownEdition = errors.New("unknown edition")
)

// Format is the encoding of a catalog document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

//go:embed data/strengths.yaml
var defaultCatalog []byte

// Default returns the built-in 34-trait catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog, FormatYAML)
}

// LoadFile reads and validates a catalog from disk.
func LoadFile(path string) (*Catalog, error) {
	c, err := DecodeFile(path)
	if err != nil {
		return nil, err
	}
	return checked(c)
}

// DecodeFile reads a catalog from disk without validating it. The format is
// chosen by file extension; anything other than .json is treated as YAML.
func DecodeFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	format := FormatYAML
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = FormatJSON
	}
	return Decode(data, format)
}

// Load returns the catalog at path, or the built-in catalog when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

// Parse decodes and validates a catalog document.
func Parse(data []byte, format Format) (*Catalog, error) {
	c, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	return checked(c)
}

// Decode only unmarshals a catalog document. Callers that want every
// problem listed run Validate on the result.
func Decode(data []byte, format Format) (*Catalog, error) {
	var c Catalog
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parsing catalog: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parsing catalog: %w", err)
		}
	}
	c.index()
	return &c, nil
}

func checked(c *Catalog) (*Catalog, error) {
	if errs := Validate(c); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, errors.Join(errs...))
	}
	return c, nil
}

// DefaultDocument returns the built-in catalog as YAML, for use as a
// starting point for custom catalogs.
func DefaultDocument() []byte {
	return append([]byte(nil), defaultCatalog...)
}
