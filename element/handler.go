package element

import (
	"fmt"
	"reflect"

	"github.com/delaneyj/customelement/codec"
	"github.com/delaneyj/customelement/host"
)

type (
	// AttributeReflector pushes an attribute change into the property.
	AttributeReflector func(el *Element, attribute string, oldValue, newValue codec.Attr) error
	// PropertyReflector pushes a property change out to the attribute.
	PropertyReflector func(el *Element, key string, oldValue, newValue any) error
	// Notifier announces a property change to external consumers.
	Notifier func(el *Element, key string, oldValue, newValue any) error
	// Listener handles an event bound at attach time.
	Listener func(el *Element, ev host.Event) error
)

type handlerKind uint8

const (
	handlerDisabled handlerKind = iota
	handlerDefault
	handlerMethod
	handlerFunc
)

// Handler selects how a side effect runs: not at all, with the built-in
// behavior, through a method on the element's owner looked up by name, or
// through a function.
type Handler[F any] struct {
	kind   handlerKind
	method string
	fn     F
}

func Disabled[F any]() Handler[F] { return Handler[F]{kind: handlerDisabled} }
func Default[F any]() Handler[F]  { return Handler[F]{kind: handlerDefault} }

// Method resolves to the owner's exported method with the given name. The
// method has F's signature without the leading *Element parameter.
func Method[F any](name string) Handler[F] {
	return Handler[F]{kind: handlerMethod, method: name}
}

func Func[F any](fn F) Handler[F] {
	if reflect.ValueOf(fn).IsNil() {
		return Disabled[F]()
	}
	return Handler[F]{kind: handlerFunc, fn: fn}
}

func (h Handler[F]) Enabled() bool   { return h.kind != handlerDisabled }
func (h Handler[F]) IsDefault() bool { return h.kind == handlerDefault }

func (h Handler[F]) String() string {
	switch h.kind {
	case handlerDefault:
		return "default"
	case handlerMethod:
		return "method " + h.method
	case handlerFunc:
		return funcName(h.fn)
	default:
		return "disabled"
	}
}

// lookupMethod finds name on owner and asserts it to the bound signature M.
func lookupMethod[M any](owner any, name string) (M, error) {
	var zero M
	if owner == nil {
		return zero, fmt.Errorf("%w: %s (no owner)", ErrMethodNotFound, name)
	}
	m := reflect.ValueOf(owner).MethodByName(name)
	if !m.IsValid() {
		return zero, fmt.Errorf("%w: %T.%s", ErrMethodNotFound, owner, name)
	}
	fn, ok := m.Interface().(M)
	if !ok {
		return zero, fmt.Errorf("%w: %T.%s has signature %s, want %T", ErrMethodNotFound, owner, name, m.Type(), zero)
	}
	return fn, nil
}

func (e *Element) resolveAttributeReflector(h Handler[AttributeReflector], fallback AttributeReflector) (AttributeReflector, error) {
	switch h.kind {
	case handlerFunc:
		return h.fn, nil
	case handlerMethod:
		m, err := lookupMethod[func(string, codec.Attr, codec.Attr) error](e.owner, h.method)
		if err != nil {
			return nil, err
		}
		return func(_ *Element, name string, oldValue, newValue codec.Attr) error {
			return m(name, oldValue, newValue)
		}, nil
	default:
		return fallback, nil
	}
}

// resolveChange resolves property reflectors and notifiers, which share a
// signature.
func resolveChange[F ~func(*Element, string, any, any) error](e *Element, h Handler[F], fallback F) (F, error) {
	switch h.kind {
	case handlerFunc:
		return h.fn, nil
	case handlerMethod:
		m, err := lookupMethod[func(string, any, any) error](e.owner, h.method)
		if err != nil {
			return nil, err
		}
		return func(_ *Element, key string, oldValue, newValue any) error {
			return m(key, oldValue, newValue)
		}, nil
	default:
		return fallback, nil
	}
}

func (e *Element) resolveListener(h Handler[Listener]) (Listener, error) {
	switch h.kind {
	case handlerFunc:
		return h.fn, nil
	case handlerMethod:
		m, err := lookupMethod[func(host.Event) error](e.owner, h.method)
		if err != nil {
			return nil, err
		}
		return func(_ *Element, ev host.Event) error { return m(ev) }, nil
	default:
		return nil, fmt.Errorf("element: listener handler must be a method or function, got %s", h)
	}
}
