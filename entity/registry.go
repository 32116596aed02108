package entity

import (
	"fmt"
	"sort"
	"sync"
)

// ErrDuplicate is returned when an entity name is re-registered with a
// conflicting descriptor.
var ErrDuplicate = fmt.Errorf("entity: conflicting duplicate registration")

// Registry holds entity descriptors by name. Registration happens once at
// module-load time; lookups are O(1) and safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	entities map[string]*Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entities: make(map[string]*Descriptor)}
}

// Register validates and adds a descriptor. Re-registering the same name
// with an identical descriptor is a no-op; a conflicting descriptor is
// rejected with ErrDuplicate. Never silently duplicates or overwrites.
func (r *Registry) Register(d *Descriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.entities[d.Name]; ok {
		if existing.equal(d) {
			return nil
		}
		return fmt.Errorf("entity %q: %w", d.Name, ErrDuplicate)
	}
	r.entities[d.Name] = d
	return nil
}

// Get returns the descriptor registered under name.
func (r *Registry) Get(name string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.entities[name]
	return d, ok
}

// Names returns all registered entity names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entities))
	for n := range r.entities {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
