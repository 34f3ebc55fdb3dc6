// Package regions holds the catalog of named capture endpoints.
package regions

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/babdulhakim2/webpulse/internal/domain"
)

// defaultCatalog lists the built-in vantage points in their documented order.
var defaultCatalog = []struct {
	name     string
	location string
}{
	{"us-east", "Ashburn, US"},
	{"us-west", "San Francisco, US"},
	{"eu-west", "London, UK"},
	{"ap-southeast", "Singapore, SG"},
	{"ap-northeast", "Tokyo, JP"},
}

// Registry is an immutable, ordered catalog of regions. Safe for concurrent reads.
type Registry struct {
	order  []string
	byName map[string]domain.Region
}

// New builds a registry from regions, rejecting duplicates and invalid entries.
func New(regions []domain.Region) (*Registry, error) {
	if len(regions) == 0 {
		return nil, fmt.Errorf("regions: catalog is empty")
	}
	r := &Registry{byName: make(map[string]domain.Region, len(regions))}
	for _, reg := range regions {
		reg.Name = strings.TrimSpace(reg.Name)
		if err := domain.ValidateRegion(reg); err != nil {
			return nil, fmt.Errorf("regions: %w", err)
		}
		if _, dup := r.byName[reg.Name]; dup {
			return nil, fmt.Errorf("regions: duplicate region %q", reg.Name)
		}
		r.byName[reg.Name] = reg
		r.order = append(r.order, reg.Name)
	}
	return r, nil
}

// Default returns the five built-in regions, each served at <baseURL>/regions/<name>.
func Default(baseURL string) (*Registry, error) {
	base := strings.TrimRight(baseURL, "/")
	regions := make([]domain.Region, 0, len(defaultCatalog))
	for _, d := range defaultCatalog {
		regions = append(regions, domain.Region{
			Name:     d.name,
			Endpoint: base + "/regions/" + d.name,
			Location: d.location,
		})
	}
	return New(regions)
}

type catalogFile struct {
	Regions []domain.Region `yaml:"regions"`
}

// Parse decodes a YAML catalog of the form `regions: [{name, endpoint, location}]`.
func Parse(data []byte) (*Registry, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("regions: parse catalog: %w", err)
	}
	return New(f.Regions)
}

// LoadFile reads a YAML catalog from path.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("regions: read catalog: %w", err)
	}
	return Parse(data)
}

// Load returns the catalog at path when set, otherwise the defaults rooted at baseURL.
func Load(path, baseURL string) (*Registry, error) {
	if path != "" {
		return LoadFile(path)
	}
	return Default(baseURL)
}

// Names returns every region name in catalog order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// All returns every region in catalog order.
func (r *Registry) All() []domain.Region {
	out := make([]domain.Region, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Lookup returns the named region.
func (r *Registry) Lookup(name string) (domain.Region, bool) {
	reg, ok := r.byName[name]
	return reg, ok
}

// Resolve turns a requested name list into regions. Names are trimmed and
// deduplicated in first-seen order; an empty request selects the whole catalog.
// Unknown names fail validation as a group.
func (r *Registry) Resolve(names []string) ([]domain.Region, error) {
	seen := make(map[string]bool, len(names))
	var (
		out     []domain.Region
		unknown []string
	)
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		reg, ok := r.byName[n]
		if !ok {
			unknown = append(unknown, n)
			continue
		}
		out = append(out, reg)
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, domain.NewValidationError("regions", "unknown region(s) %s; available: %s",
			strings.Join(unknown, ", "), strings.Join(r.order, ", "))
	}
	if len(out) == 0 {
		return r.All(), nil
	}
	return out, nil
}
