package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	id "storefront/pkg/domain"
	"storefront/pkg/platform/sentinel"
)

//go:embed seed.yaml
var defaultSeed []byte

// InMemory is a read-mostly product lookup seeded from YAML.
type InMemory struct {
	mu       sync.RWMutex
	products map[id.ProductID]Product
}

func NewInMemory() *InMemory {
	return &InMemory{products: make(map[id.ProductID]Product)}
}

type seedFile struct {
	Products []Product `yaml:"products"`
}

// Load parses a YAML seed and adds its products, replacing duplicates.
func (c *InMemory) Load(data []byte) error {
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("parse catalog seed: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range seed.Products {
		if _, err := id.ParseProductID(p.ID.String()); err != nil {
			return fmt.Errorf("catalog product %q: %w", p.ID, err)
		}
		c.products[p.ID] = p
	}
	return nil
}

// LoadDefault loads the embedded seed.
func (c *InMemory) LoadDefault() error {
	return c.Load(defaultSeed)
}

// LoadFile loads a seed from disk.
func (c *InMemory) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read catalog file: %w", err)
	}
	return c.Load(data)
}

func (c *InMemory) FindByID(_ context.Context, productID id.ProductID) (Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[productID]
	if !ok {
		return Product{}, sentinel.ErrNotFound
	}
	return p, nil
}

// List returns products ordered by id.
func (c *InMemory) List(_ context.Context) []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
