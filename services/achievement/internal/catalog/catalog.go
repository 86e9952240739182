// Package catalog serves the read-only achievement definitions.
//
// A Catalog is built once at startup, from a JSON file or from Postgres, and
// injected into whoever needs definitions. It is never mutated afterwards so
// it is safe to share between goroutines without locking.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/example/game-platform/services/achievement/internal/domain"
)

// ErrNotFound is returned (wrapped in *domain.DefinitionNotFoundError) by Get
// for unknown ids.
var ErrNotFound = domain.ErrDefinitionNotFound

// Catalog maps achievement ids to their definitions.
type Catalog struct {
	defs map[uint32]domain.Definition
}

// New validates defs and builds a Catalog. Ids must be unique and every
// definition needs a positive TotalProgress.
func New(defs []domain.Definition) (*Catalog, error) {
	c := &Catalog{defs: make(map[uint32]domain.Definition, len(defs))}
	var errs []error
	for _, d := range defs {
		if d.TotalProgress == 0 {
			errs = append(errs, fmt.Errorf("achievement %d: total_progress must be positive", d.ID))
			continue
		}
		if _, dup := c.defs[d.ID]; dup {
			errs = append(errs, fmt.Errorf("achievement %d: duplicate definition", d.ID))
			continue
		}
		c.defs[d.ID] = d
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns the definition for id.
func (c *Catalog) Get(id uint32) (domain.Definition, error) {
	d, ok := c.defs[id]
	if !ok {
		return domain.Definition{}, &domain.DefinitionNotFoundError{ID: id}
	}
	return d, nil
}

// Len is the number of definitions.
func (c *Catalog) Len() int {
	return len(c.defs)
}

// LoadFile reads a JSON array of definitions.
func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var defs []domain.Definition
	if err := json.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	return New(defs)
}
