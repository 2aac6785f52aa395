package rules

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const CatalogSchemaVersionV1 = "1.0"

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// catalogFile is the on-disk layout of a catalog.
type catalogFile struct {
	SchemaVersion string  `yaml:"schemaVersion"`
	Categories    []Entry `yaml:"categories"`
}

// Catalog maps every category to its vocabulary. It is read-only once
// loaded; entries returned by Lookup must not be modified.
type Catalog struct {
	entries map[Category]*Entry
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the built-in catalog.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Load(defaultCatalogYAML)
		if err != nil {
			panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Load(data)
}

// Load parses and validates a YAML catalog. Every category of the fixed set
// must be present exactly once.
func Load(data []byte) (*Catalog, error) {
	log.Debug().Msg("Started loading rule catalog...")
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog YAML: %w", err)
	}
	if file.SchemaVersion != "" && file.SchemaVersion != CatalogSchemaVersionV1 {
		return nil, fmt.Errorf("unsupported catalog schema version %q", file.SchemaVersion)
	}

	c := &Catalog{entries: make(map[Category]*Entry, len(SupportedCategories))}
	for i := range file.Categories {
		entry := file.Categories[i]
		category, err := ParseCategory(string(entry.Category))
		if err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i, err)
		}
		entry.Category = category
		if _, dup := c.entries[category]; dup {
			return nil, fmt.Errorf("catalog entry %d: category '%s' defined twice", i, category)
		}
		if err := validateRules(entry.Checks, category, "checks"); err != nil {
			return nil, err
		}
		if err := validateRules(entry.Actions, category, "actions"); err != nil {
			return nil, err
		}
		c.entries[category] = &entry
	}

	for _, category := range SupportedCategories {
		if _, ok := c.entries[category]; !ok {
			return nil, fmt.Errorf("catalog is missing category '%s'", category)
		}
	}

	log.Debug().Int("categories", len(c.entries)).Msg("Rule catalog loaded")
	return c, nil
}

func validateRules(rules []Rule, category Category, group string) error {
	seen := make(map[string]bool, len(rules))
	for i, r := range rules {
		if r.Name == "" {
			return fmt.Errorf("missing 'name' in %s %d of category '%s'", group, i, category)
		}
		if seen[r.Name] {
			return fmt.Errorf("duplicate name '%s' in %s of category '%s'", r.Name, group, category)
		}
		seen[r.Name] = true
		if err := validateField(r.Field); err != nil {
			return fmt.Errorf("invalid field in %s '%s' of category '%s': %w", group, r.Name, category, err)
		}
	}
	return nil
}

func validateField(f FieldSpec) error {
	switch f.Kind {
	case KindEnum:
		if len(f.Options) == 0 {
			return fmt.Errorf("enum field needs at least one option")
		}
	case KindNumeric:
		if f.Bounds != nil && f.Bounds.Min > f.Bounds.Max {
			return fmt.Errorf("min %d is greater than max %d", f.Bounds.Min, f.Bounds.Max)
		}
	case KindNone, KindTimer:
	default:
		return fmt.Errorf("unsupported field kind %s", f.Kind)
	}
	if f.Kind != KindEnum && len(f.Options) > 0 {
		return fmt.Errorf("options are only allowed on enum fields")
	}
	if f.Kind != KindEnum && len(f.Tokens) > 0 {
		return fmt.Errorf("tokens are only allowed on enum fields")
	}
	for option, token := range f.Tokens {
		if !contains(f.Options, option) {
			return fmt.Errorf("token given for unknown option '%s'", option)
		}
		if strings.TrimSpace(token) == "" {
			return fmt.Errorf("empty token for option '%s'", option)
		}
	}
	if f.Kind != KindNumeric && f.Bounds != nil {
		return fmt.Errorf("bounds are only allowed on numeric fields")
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}

// Lookup returns the vocabulary of category.
func (c *Catalog) Lookup(category Category) (*Entry, error) {
	entry, ok := c.entries[category]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return entry, nil
}

// Categories lists the catalog's categories in their fixed order.
func (c *Catalog) Categories() []Category {
	categories := make([]Category, 0, len(c.entries))
	for _, category := range SupportedCategories {
		if _, ok := c.entries[category]; ok {
			categories = append(categories, category)
		}
	}
	return categories
}
