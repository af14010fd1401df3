// Package fuzzy provides similarity hashing over in-memory file content.
package fuzzy

import "strings"

// Hasher is a locality-sensitive hashing implementation. Distance compares
// two previously produced hash strings; smaller is more similar.
type Hasher interface {
	Name() string
	HashBytes(content []byte) (string, error)
	Distance(a, b string) (int, error)
}

var registry = map[string]Hasher{}

// Register adds a hasher to the registry.
func Register(hasher Hasher) {
	if hasher == nil {
		return
	}
	registry[strings.ToLower(hasher.Name())] = hasher
}

// Lookup returns a registered hasher by name.
func Lookup(name string) (Hasher, bool) {
	hasher, ok := registry[strings.ToLower(name)]
	return hasher, ok
}

// Available returns the names of registered hashers.
func Available() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
