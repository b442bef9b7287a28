// env.go
package veureka

import "fmt"

// Binding is one (name, value, const) entry of an environment frame.
type Binding struct {
	Name    string
	Value   Value
	IsConst bool
}

// Env is a lexical environment frame with a parent link. Bindings keep
// definition order. Lookups walk parent-ward; the global frame has no
// parent.
type Env struct {
	vars   []Binding
	parent *Env
}

// NewEnv creates a new frame with the given parent (which may be nil).
func NewEnv(parent *Env) *Env { return &Env{parent: parent} }

// Define binds name in the current frame, shadowing any outer binding.
// Redefining a name in the same frame overwrites it in place.
func (e *Env) Define(name string, v Value, isConst bool) {
	for i := range e.vars {
		if e.vars[i].Name == name {
			e.vars[i].Value = v
			e.vars[i].IsConst = isConst
			return
		}
	}
	e.vars = append(e.vars, Binding{Name: name, Value: v, IsConst: isConst})
}

// Get retrieves the nearest visible binding for name.
func (e *Env) Get(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		for i := range env.vars {
			if env.vars[i].Name == name {
				return env.vars[i].Value, true
			}
		}
	}
	return Nil, false
}

// Set updates the nearest existing binding of name. Mutating a const
// binding is an error and leaves it unchanged. If no binding is visible,
// a new non-const binding is created in the current frame.
func (e *Env) Set(name string, v Value) error {
	for env := e; env != nil; env = env.parent {
		for i := range env.vars {
			if env.vars[i].Name == name {
				if env.vars[i].IsConst {
					return fmt.Errorf("constant '%s' cannot be modified", name)
				}
				env.vars[i].Value = v
				return nil
			}
		}
	}
	e.Define(name, v, false)
	return nil
}

// Bindings returns a copy of this frame's own bindings in definition order
// (parents excluded). Used by the REPL's vars command.
func (e *Env) Bindings() []Binding {
	out := make([]Binding, len(e.vars))
	copy(out, e.vars)
	return out
}
