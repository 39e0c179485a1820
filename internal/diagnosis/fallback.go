package diagnosis

import (
	_ "embed"
	"fmt"
	"math/rand/v2"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/thomas-vilte/contextclue/internal/models"
)

// FallbackSource supplies a diagnosis when live inference is unavailable.
// Pick never fails.
type FallbackSource interface {
	Pick() models.DiagnosisResult
}

var (
	_ FallbackSource = (*Catalog)(nil)
	_ FallbackSource = (*Sequence)(nil)
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

type catalogFile struct {
	Fallbacks []models.DiagnosisResult `yaml:"fallbacks"`
}

// Catalog picks uniformly at random from a fixed list of diagnoses.
type Catalog struct {
	entries []models.DiagnosisResult
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded fallback catalog is invalid: %v", err))
	}
	return c
})

// NewCatalog returns the built-in catalog.
func NewCatalog() *Catalog {
	return defaultCatalog()
}

// LoadCatalogFile reads a catalog from a YAML file with the same layout as the built-in one.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading fallback catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML catalog and validates every entry against the result contract.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error decoding fallback catalog: %w", err)
	}
	if len(file.Fallbacks) == 0 {
		return nil, fmt.Errorf("fallback catalog has no entries")
	}

	entries := make([]models.DiagnosisResult, 0, len(file.Fallbacks))
	for i, f := range file.Fallbacks {
		valid, err := Validate(f)
		if err != nil {
			return nil, fmt.Errorf("fallback catalog entry %d: %w", i, err)
		}
		entries = append(entries, valid)
	}
	return &Catalog{entries: entries}, nil
}

func (c *Catalog) Pick() models.DiagnosisResult {
	return c.entries[rand.IntN(len(c.entries))]
}

// Entries returns a copy of the catalog contents.
func (c *Catalog) Entries() []models.DiagnosisResult {
	out := make([]models.DiagnosisResult, len(c.entries))
	copy(out, c.entries)
	return out
}

// Contains reports whether r is one of the catalog entries.
func (c *Catalog) Contains(r models.DiagnosisResult) bool {
	for _, e := range c.entries {
		if e == r {
			return true
		}
	}
	return false
}

// Sequence hands out its entries in order, wrapping around. Used where a
// deterministic fallback is needed.
type Sequence struct {
	mu      sync.Mutex
	entries []models.DiagnosisResult
	next    int
}

// NewSequence panics when called without entries.
func NewSequence(results ...models.DiagnosisResult) *Sequence {
	if len(results) == 0 {
		panic("diagnosis: NewSequence requires at least one result")
	}
	entries := make([]models.DiagnosisResult, len(results))
	copy(entries, results)
	return &Sequence{entries: entries}
}

func (s *Sequence) Pick() models.DiagnosisResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.entries[s.next]
	s.next = (s.next + 1) % len(s.entries)
	return r
}
