package element

import (
	"fmt"
	"slices"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/delaneyj/customelement/codec"
	"github.com/delaneyj/customelement/host"
)

// EventTarget is something listeners can be bound to.
type EventTarget interface {
	Listen(event string, fn func(host.Event)) (cancel func())
}

// ListenerDeclaration binds Handler to Event on Target when an element is
// attached. A nil Target means the element's own node.
type ListenerDeclaration struct {
	Event   string
	Target  func(el *Element) EventTarget
	Handler Handler[Listener]
}

// Definition is the property registry of one component type. Lookups that
// miss fall through to the parent definition, so a type can extend another
// without sharing its maps.
//
// Declare and Listen are meant for definition time; lookups are safe for
// concurrent use.
type Definition struct {
	name   string
	parent *Definition

	mu         sync.RWMutex
	properties map[string]*Declaration
	order      []string
	attributes map[string]string
	observed   mapset.Set[string]
	listeners  []*ListenerDeclaration
}

func Define(name string, parent *Definition) *Definition {
	return &Definition{
		name:       name,
		parent:     parent,
		properties: map[string]*Declaration{},
		attributes: map[string]string{},
		observed:   mapset.NewThreadUnsafeSet[string](),
	}
}

func (d *Definition) Name() string        { return d.name }
func (d *Definition) Parent() *Definition { return d.parent }

// Declare registers a property. Options are applied over the defaults.
// Declaring the same key twice on one definition is an error; declaring a
// key an ancestor already declared overrides it for this type.
func (d *Definition) Declare(key string, opts ...DeclarationOption) (*Declaration, error) {
	decl := defaultDeclaration(key)
	for _, opt := range opts {
		opt(decl)
	}
	if decl.Converter == nil {
		decl.Converter = codec.Default
	}

	switch decl.Attribute.kind {
	case attributeNamed:
		decl.attributeName = decl.Attribute.name
	default:
		decl.attributeName = codec.AttributeName(key)
	}
	if key == "" || (decl.Attribute.kind != attributeNone && decl.attributeName == "") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.properties[key]; ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrDuplicateProperty, d.name, key)
	}
	if name, ok := decl.AttributeName(); ok {
		if owner, taken := d.attributes[name]; taken {
			return nil, fmt.Errorf("%w: %s.%s wants %q held by %s", ErrDuplicateAttribute, d.name, key, name, owner)
		}
		d.attributes[name] = key
		d.observed.Add(name)
	}
	d.properties[key] = decl
	d.order = append(d.order, key)
	return decl, nil
}

// MustDeclare is Declare for package-level definitions; it panics on error.
func (d *Definition) MustDeclare(key string, opts ...DeclarationOption) *Declaration {
	decl, err := d.Declare(key, opts...)
	if err != nil {
		panic(err)
	}
	return decl
}

// Property returns the declaration for key, searching ancestors.
func (d *Definition) Property(key string) (*Declaration, bool) {
	for def := d; def != nil; def = def.parent {
		def.mu.RLock()
		decl, ok := def.properties[key]
		def.mu.RUnlock()
		if ok {
			return decl, true
		}
	}
	return nil, false
}

// PropertyForAttribute returns the key of the property owning an attribute.
func (d *Definition) PropertyForAttribute(name string) (string, bool) {
	for def := d; def != nil; def = def.parent {
		def.mu.RLock()
		key, ok := def.attributes[name]
		def.mu.RUnlock()
		if !ok {
			continue
		}
		// an override without an attribute hides the ancestor's mapping
		if decl, _ := d.Property(key); decl != nil {
			if own, has := decl.AttributeName(); has && own == name {
				return key, true
			}
		}
		return "", false
	}
	return "", false
}

// ObservedAttributes lists every attribute the host must report changes
// for, sorted.
func (d *Definition) ObservedAttributes() []string {
	all := mapset.NewThreadUnsafeSet[string]()
	for def := d; def != nil; def = def.parent {
		def.mu.RLock()
		all = all.Union(def.observed)
		def.mu.RUnlock()
	}
	names := all.ToSlice()
	slices.Sort(names)
	return names
}

// Properties returns the effective declarations, ancestors first, each key
// once, overrides replacing what they override in place.
func (d *Definition) Properties() []*Declaration {
	var chain []*Definition
	for def := d; def != nil; def = def.parent {
		chain = append(chain, def)
	}
	var keys []string
	seen := map[string]bool{}
	for i := len(chain) - 1; i >= 0; i-- {
		def := chain[i]
		def.mu.RLock()
		for _, key := range def.order {
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
		def.mu.RUnlock()
	}

	decls := make([]*Declaration, 0, len(keys))
	for _, key := range keys {
		decl, _ := d.Property(key)
		decls = append(decls, decl)
	}
	return decls
}

type ListenerOption func(*ListenerDeclaration)

func WithTarget(fn func(el *Element) EventTarget) ListenerOption {
	return func(l *ListenerDeclaration) { l.Target = fn }
}

// Listen declares an event listener. Listeners are bound in declaration
// order, ancestors first.
func (d *Definition) Listen(event string, h Handler[Listener], opts ...ListenerOption) *ListenerDeclaration {
	l := &ListenerDeclaration{Event: event, Handler: h}
	for _, opt := range opts {
		opt(l)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, l)
	return l
}

func (d *Definition) Listeners() []*ListenerDeclaration {
	var out []*ListenerDeclaration
	if d.parent != nil {
		out = d.parent.Listeners()
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append(out, d.listeners...)
}
