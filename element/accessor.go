package element

import "fmt"

// Property is a typed accessor for one declared property of an element.
// Writes through Set are the entry point of the reactive cycle.
type Property[T any] struct {
	el  *Element
	key string
}

// Bind returns the accessor for key. It panics if key is not declared on the
// element's definition, which is a programming error.
func Bind[T any](el *Element, key string) Property[T] {
	if _, ok := el.def.Property(key); !ok {
		panic(fmt.Sprintf("element: %s has no property %q", el.def.Name(), key))
	}
	return Property[T]{el: el, key: key}
}

func (p Property[T]) Key() string { return p.key }

// Get returns the stored value, or T's zero value when nothing of type T is
// stored.
func (p Property[T]) Get() T {
	v, _ := p.el.Get(p.key).(T)
	return v
}

func (p Property[T]) Set(v T) error {
	return p.el.Set(p.key, v)
}

// Update applies fn to the current value and stores the result.
func (p Property[T]) Update(fn func(T) T) error {
	return p.Set(fn(p.Get()))
}
