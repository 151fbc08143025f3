package runtime

import (
	"fmt"
	"sort"
)

// UndefinedVariableError is returned when a name resolves in no enclosing
// scope.
type UndefinedVariableError struct {
	Name string
}

func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("Undefined variable '%s'.", e.Name)
}

// Environment provides lexical scoping for Lox runtime values.
type Environment struct {
	values map[string]Value
	parent *Environment
}

// NewEnvironment creates a new environment, optionally nested under a parent.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]Value),
		parent: parent,
	}
}

// Parent exposes the lexical parent (nil when global).
func (e *Environment) Parent() *Environment {
	return e.parent
}

// Snapshot returns a copy of the bindings in this scope only.
func (e *Environment) Snapshot() map[string]Value {
	out := make(map[string]Value, len(e.values))
	for k, v := range e.values {
		out[k] = v
	}
	return out
}

// Define inserts or shadows a binding in the current scope. Redefining a name
// in the same scope replaces it.
func (e *Environment) Define(name string, value Value) {
	if value == nil {
		value = Nil
	}
	e.values[name] = value
}

// Assign updates an existing binding in the nearest scope where it appears.
// It never creates a binding.
func (e *Environment) Assign(name string, value Value) error {
	if value == nil {
		value = Nil
	}
	for env := e; env != nil; env = env.parent {
		if _, ok := env.values[name]; ok {
			env.values[name] = value
			return nil
		}
	}
	return &UndefinedVariableError{Name: name}
}

// Get retrieves a binding, searching outward through the scope chain.
func (e *Environment) Get(name string) (Value, error) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.values[name]; ok {
			return v, nil
		}
	}
	return nil, &UndefinedVariableError{Name: name}
}

// Has reports whether name is bound in this scope, ignoring parents.
func (e *Environment) Has(name string) bool {
	_, ok := e.values[name]
	return ok
}

// Keys returns the bindings in sorted order (useful for determinism in tests).
func (e *Environment) Keys() []string {
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Extend creates a child scope.
func (e *Environment) Extend() *Environment {
	return NewEnvironment(e)
}
