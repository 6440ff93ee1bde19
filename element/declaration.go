package element

import (
	"fmt"
	"reflect"

	"github.com/cespare/xxhash/v2"

	"github.com/delaneyj/customelement/codec"
)

// Detector reports whether a write changed a property.
type Detector func(oldValue, newValue any) (changed bool, err error)

// DetectorFunc adapts an infallible comparison to a Detector.
func DetectorFunc(fn func(oldValue, newValue any) bool) Detector {
	return func(oldValue, newValue any) (bool, error) {
		return fn(oldValue, newValue), nil
	}
}

// NotEqual is the default detector. Comparable values are compared with ==,
// everything else structurally.
func NotEqual(oldValue, newValue any) (bool, error) {
	if oldValue == nil || newValue == nil {
		return oldValue != newValue, nil
	}
	ot, nt := reflect.TypeOf(oldValue), reflect.TypeOf(newValue)
	if ot != nt {
		return true, nil
	}
	if ot.Comparable() && isShallow(ot) {
		return oldValue != newValue, nil
	}
	return !reflect.DeepEqual(oldValue, newValue), nil
}

// isShallow excludes interface-bearing arrays and structs, whose == may
// still panic on a non-comparable dynamic value.
func isShallow(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Array, reflect.Struct, reflect.Interface:
		return false
	default:
		return true
	}
}

// HashChanged compares the xxhash digests of both values' Go-syntax
// representation. It treats values that print the same as unchanged, which
// suits large slices and maps that are rebuilt rather than mutated.
func HashChanged(oldValue, newValue any) (bool, error) {
	return digest(oldValue) != digest(newValue), nil
}

func digest(v any) uint64 {
	return xxhash.Sum64String(fmt.Sprintf("%#v", v))
}

// Always treats every write as a change.
func Always(_, _ any) (bool, error) { return true, nil }

type attributeKind uint8

const (
	attributeDerived attributeKind = iota
	attributeNone
	attributeNamed
)

// AttributeOption selects whether a property has an attribute and what it
// is called.
type AttributeOption struct {
	kind attributeKind
	name string
}

func DerivedAttribute() AttributeOption {
	return AttributeOption{kind: attributeDerived}
}

func NoAttribute() AttributeOption {
	return AttributeOption{kind: attributeNone}
}

func NamedAttribute(name string) AttributeOption {
	return AttributeOption{kind: attributeNamed, name: name}
}

// Accessor replaces the element's own storage for a property.
type Accessor struct {
	Get func(el *Element) any
	Set func(el *Element, v any)
}

// Declaration is the metadata of a declared property. It is immutable once
// declared.
type Declaration struct {
	Key              string
	Attribute        AttributeOption
	Converter        codec.Converter
	ReflectAttribute Handler[AttributeReflector]
	ReflectProperty  Handler[PropertyReflector]
	Notify           Handler[Notifier]
	// Observe is nil when writes must never schedule an update.
	Observe  Detector
	Accessor *Accessor
	Initial  any

	attributeName string
}

// AttributeName returns the name of the property's attribute, if it has one.
func (d *Declaration) AttributeName() (string, bool) {
	return d.attributeName, d.Attribute.kind != attributeNone
}

type DeclarationOption func(*Declaration)

func defaultDeclaration(key string) *Declaration {
	return &Declaration{
		Key:              key,
		Attribute:        DerivedAttribute(),
		Converter:        codec.Default,
		ReflectAttribute: Default[AttributeReflector](),
		ReflectProperty:  Default[PropertyReflector](),
		Notify:           Default[Notifier](),
		Observe:          NotEqual,
	}
}

func WithAttribute(opt AttributeOption) DeclarationOption {
	return func(d *Declaration) { d.Attribute = opt }
}

func WithConverter(c codec.Converter) DeclarationOption {
	return func(d *Declaration) {
		if c != nil {
			d.Converter = c
		}
	}
}

func WithReflectAttribute(h Handler[AttributeReflector]) DeclarationOption {
	return func(d *Declaration) { d.ReflectAttribute = h }
}

func WithReflectProperty(h Handler[PropertyReflector]) DeclarationOption {
	return func(d *Declaration) { d.ReflectProperty = h }
}

func WithNotify(h Handler[Notifier]) DeclarationOption {
	return func(d *Declaration) { d.Notify = h }
}

// WithObserve sets the change detector; nil disables observation.
func WithObserve(fn Detector) DeclarationOption {
	return func(d *Declaration) { d.Observe = fn }
}

func WithAccessor(a *Accessor) DeclarationOption {
	return func(d *Declaration) { d.Accessor = a }
}

func WithInitial(v any) DeclarationOption {
	return func(d *Declaration) { d.Initial = v }
}
