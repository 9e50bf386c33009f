package role

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrFrozen is returned when registering after Freeze.
	ErrFrozen = errors.New("role registry frozen")
	// ErrDuplicate is returned when a role name is registered twice.
	ErrDuplicate = errors.New("role already registered")
	// ErrUnknownParent is returned when a role inherits an unregistered role.
	ErrUnknownParent = errors.New("inherited role not registered")
)

// Registry maps role names to bits and resolves inheritance.
type Registry struct {
	mu        sync.RWMutex
	nameToBit map[string]int
	bitToName []string
	effective []Set
	frozen    bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{nameToBit: make(map[string]int)}
}

// Register assigns the next bit to name. inherits lists roles that name
// implies; they must already be registered, which also rules out cycles.
func (r *Registry) Register(name string, inherits ...string) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return -1, errors.New("role name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return -1, ErrFrozen
	}
	if _, exists := r.nameToBit[name]; exists {
		return -1, fmt.Errorf("%w: %s", ErrDuplicate, name)
	}

	bit := len(r.bitToName)
	var eff Set
	eff.Add(bit)
	for _, parent := range inherits {
		parentBit, ok := r.nameToBit[strings.TrimSpace(parent)]
		if !ok {
			return -1, fmt.Errorf("%w: %s inherits %s", ErrUnknownParent, name, parent)
		}
		eff.Union(r.effective[parentBit])
	}

	r.nameToBit[name] = bit
	r.bitToName = append(r.bitToName, name)
	r.effective = append(r.effective, eff)
	return bit, nil
}

// RegisterAll registers roles from a name -> inherits map in dependency order.
func (r *Registry) RegisterAll(roles map[string][]string) error {
	pending := make(map[string][]string, len(roles))
	for name, parents := range roles {
		pending[name] = parents
	}

	for len(pending) > 0 {
		names := make([]string, 0, len(pending))
		for name := range pending {
			names = append(names, name)
		}
		sort.Strings(names)

		progressed := false
		for _, name := range names {
			if !r.parentsKnown(pending[name]) {
				continue
			}
			if _, err := r.Register(name, pending[name]...); err != nil {
				return err
			}
			delete(pending, name)
			progressed = true
		}
		if !progressed {
			return fmt.Errorf("%w: unresolved roles %v", ErrUnknownParent, names)
		}
	}
	return nil
}

func (r *Registry) parentsKnown(parents []string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range parents {
		if _, ok := r.nameToBit[strings.TrimSpace(p)]; !ok {
			return false
		}
	}
	return true
}

// Bit returns the bit for name.
func (r *Registry) Bit(name string) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bit, ok := r.nameToBit[strings.TrimSpace(name)]
	return bit, ok
}

// Name returns the role registered at bit.
func (r *Registry) Name(bit int) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if bit < 0 || bit >= len(r.bitToName) {
		return "", false
	}
	return r.bitToName[bit], true
}

// Freeze prevents further registrations.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Count returns the number of registered roles.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bitToName)
}

// Literal returns the set of exactly the named roles, ignoring unknown names.
func (r *Registry) Literal(names []string) Set {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var s Set
	for _, name := range names {
		if bit, ok := r.nameToBit[strings.TrimSpace(name)]; ok {
			s.Add(bit)
		}
	}
	return s
}

// Effective returns the named roles plus everything they inherit.
func (r *Registry) Effective(names []string) Set {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var s Set
	for _, name := range names {
		if bit, ok := r.nameToBit[strings.TrimSpace(name)]; ok {
			s.Union(r.effective[bit])
		}
	}
	return s
}

// Names returns the role names in s, ordered by bit.
func (r *Registry) Names(s Set) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, s.Len())
	for _, bit := range s.Bits() {
		if bit < len(r.bitToName) {
			out = append(out, r.bitToName[bit])
		}
	}
	return out
}

// HasAny reports whether a user holding userRoles satisfies at least one of
// allowed, taking inheritance into account. An empty allowed list is never
// satisfied here; callers decide what "no constraint" means.
func (r *Registry) HasAny(userRoles, allowed []string) bool {
	return r.Effective(userRoles).Intersects(r.Literal(allowed))
}
