// Package labels loads the ordered action class list the model was
// trained against. The list is read once at startup and never changes.
package labels

import (
	"encoding/json"
	"fmt"
	"os"
)

// Store is an immutable, index-addressable list of class names. Index i
// corresponds to the model's i-th output logit.
type Store struct {
	names []string
}

// Load reads a JSON array of class names from path.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("failed to parse labels: %w", err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("labels file %s contains no classes", path)
	}

	return &Store{names: names}, nil
}

// Get returns the class name at index i.
func (s *Store) Get(i int) (string, error) {
	if i < 0 || i >= len(s.names) {
		return "", fmt.Errorf("label index %d out of range [0,%d)", i, len(s.names))
	}
	return s.names[i], nil
}

// Len returns the number of classes.
func (s *Store) Len() int {
	return len(s.names)
}

// Names returns a copy of the class list in model output order.
func (s *Store) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}
