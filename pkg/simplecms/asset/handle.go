// Package asset gives content entities lazy access to the file or image
// that backs them.
//
// An entity embeds an Accessor. The accessor builds a Handle on first use,
// choosing the Image variant when the entity classifies as an image and the
// File variant otherwise, and caches it for the lifetime of the entity.
// Operations the entity does not define itself can be invoked by name through
// Accessor.Call, which consults the entity's properties first and the
// handle's operation table second.
package asset

import (
	"fmt"
	"sort"
)

// Model is the content entity a handle belongs to.
type Model interface {
	Root() string
	URL() string
	Type() string
}

// Props are the construction inputs of a handle. Empty strings mean absent.
type Props struct {
	Root  string
	URL   string
	Model Model
}

// Operation is an entry of a handle's operation table.
type Operation func(args ...any) (any, error)

// Handle is the in-memory representation of the file or image behind an entity.
type Handle interface {
	fmt.Stringer

	Root() string
	URL() string

	// Model returns the owning entity, or nil for a detached handle.
	Model() Model

	// Lookup returns the operation registered under name.
	Lookup(name string) (Operation, bool)

	// Operations lists the names of all operations, sorted.
	Operations() []string
}

type operations map[string]Operation

func (o operations) names() []string {
	names := make([]string, 0, len(o))
	for name := range o {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func value[T any](fn func() T) Operation {
	return func(args ...any) (any, error) {
		return fn(), nil
	}
}

func result[T any](fn func() (T, error)) Operation {
	return func(args ...any) (any, error) {
		v, err := fn()
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

func stringArg(args []any, i int) (string, bool, error) {
	if len(args) <= i || args[i] == nil {
		return "", false, nil
	}
	s, ok := args[i].(string)
	if !ok {
		return "", false, fmt.Errorf("argument %d must be a string, got %T: %w", i, args[i], ErrInvalidArgument)
	}
	return s, true, nil
}

func attrsArg(args []any, i int) (map[string]string, error) {
	if len(args) <= i || args[i] == nil {
		return nil, nil
	}
	switch v := args[i].(type) {
	case map[string]string:
		return v, nil
	case map[string]any:
		attrs := make(map[string]string, len(v))
		for k, val := range v {
			attrs[k] = fmt.Sprint(val)
		}
		return attrs, nil
	default:
		return nil, fmt.Errorf("argument %d must be an attribute map, got %T: %w", i, args[i], ErrInvalidArgument)
	}
}
