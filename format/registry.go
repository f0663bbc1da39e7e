package format

import (
	"fmt"
	"strings"
	"sync"
)

// registry holds all registered encodings; order preserves the
// registration sequence, which is also the cycle order.
var (
	registry = make(map[string]Encoding)
	order    []string
	mu       sync.RWMutex
)

// Register adds a new encoding to the registry.
// This is typically called from init() functions.
func Register(enc Encoding) error {
	mu.Lock()
	defer mu.Unlock()

	name := strings.ToLower(enc.Name())
	if _, exists := registry[name]; exists {
		return fmt.Errorf("encoding %q already registered", name)
	}

	registry[name] = enc
	order = append(order, name)
	return nil
}

// MustRegister registers an encoding and panics on error.
// This is useful for init() functions.
func MustRegister(enc Encoding) {
	if err := Register(enc); err != nil {
		panic(err)
	}
}

// Get retrieves an encoding by name (case-insensitive)
func Get(name string) (Encoding, error) {
	mu.RLock()
	defer mu.RUnlock()

	enc, exists := registry[strings.ToLower(name)]
	if !exists {
		return nil, fmt.Errorf("unknown encoding: %s", name)
	}
	return enc, nil
}

// List returns all registered encoding names in cycle order
func List() []string {
	mu.RLock()
	defer mu.RUnlock()
	return append([]string(nil), order...)
}

// Next returns the encoding following the named one in cycle order,
// wrapping at the end. Unknown names resolve to the first encoding.
func Next(name string) Encoding {
	mu.RLock()
	defer mu.RUnlock()

	name = strings.ToLower(name)
	for i, n := range order {
		if n == name {
			return registry[order[(i+1)%len(order)]]
		}
	}
	return registry[order[0]]
}
