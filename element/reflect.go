package element

import (
	"github.com/delaneyj/customelement/codec"
)

// AttributeChanged is the host's "observed attribute changed" hook. Changes
// made while the element is reflecting a property out are its own echo and
// are ignored.
func (e *Element) AttributeChanged(name string, oldValue, newValue codec.Attr) error {
	if e.isReflecting || oldValue.Equal(newValue) {
		return nil
	}
	key, ok := e.def.PropertyForAttribute(name)
	if !ok {
		e.logger.Warn("ignoring change of attribute without property", "attribute", name)
		return nil
	}
	decl, _ := e.def.Property(key)
	if !decl.ReflectAttribute.Enabled() {
		return nil
	}
	return e.reflectAttribute(decl, name, oldValue, newValue)
}

func (e *Element) reflectAttribute(decl *Declaration, name string, oldValue, newValue codec.Attr) error {
	fn, err := e.resolveAttributeReflector(decl.ReflectAttribute, func(el *Element, _ string, _, newValue codec.Attr) error {
		v, err := decl.Converter.FromAttribute(newValue)
		if err != nil {
			return err
		}
		return el.Set(decl.Key, v)
	})
	if err == nil {
		err = e.withReflecting(func() error {
			return fn(e, name, oldValue, newValue)
		})
	}
	if err != nil {
		return &ReflectorError{
			Key:       decl.Key,
			Reflector: decl.ReflectAttribute.String(),
			Direction: AttributeToProperty,
			Err:       err,
		}
	}
	return nil
}

func (e *Element) reflectProperties(reflecting *Changes) (err error) {
	reflecting.Range(func(key string, oldValue any) bool {
		decl, ok := e.def.Property(key)
		if !ok || !decl.ReflectProperty.Enabled() {
			return true
		}
		err = e.reflectProperty(decl, oldValue, e.Get(key))
		return err == nil
	})
	return err
}

func (e *Element) reflectProperty(decl *Declaration, oldValue, newValue any) error {
	fn, err := resolveChange(e, decl.ReflectProperty, func(el *Element, _ string, _, newValue any) error {
		name, ok := decl.AttributeName()
		if !ok {
			return nil
		}
		a, err := decl.Converter.ToAttribute(newValue)
		if err != nil {
			return err
		}
		switch {
		case a.IsLeave():
			return nil
		case a.IsNull():
			return el.node.RemoveAttribute(name)
		default:
			s, _ := a.Value()
			return el.node.SetAttribute(name, s)
		}
	})
	if err == nil {
		err = e.withReflecting(func() error {
			return fn(e, decl.Key, oldValue, newValue)
		})
	}
	if err != nil {
		return &ReflectorError{
			Key:       decl.Key,
			Reflector: decl.ReflectProperty.String(),
			Direction: PropertyToAttribute,
			Err:       err,
		}
	}
	return nil
}

// withReflecting holds the reflecting guard for the duration of fn,
// releasing it on every exit path.
func (e *Element) withReflecting(fn func() error) error {
	prev := e.isReflecting
	e.isReflecting = true
	defer func() { e.isReflecting = prev }()
	return fn()
}
