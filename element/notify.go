package element

import (
	"errors"

	"github.com/delaneyj/customelement/codec"
	"github.com/delaneyj/customelement/host"
)

// Change is the detail of a property change event.
type Change struct {
	Property string
	Previous any
	Current  any
}

// Watch runs fn and marks the properties it changed for notification in
// the next pass. A property is only marked when its value at the end of the
// outermost Watch differs from its value when first written inside it.
// Rendering and reflection are unaffected. Detector failures while
// comparing are returned joined with fn's error.
func (e *Element) Watch(fn func() error) (err error) {
	if e.watchDepth == 0 {
		e.watchStart = newChanges()
	}
	e.watchDepth++
	defer func() {
		e.watchDepth--
		if e.watchDepth == 0 {
			written := e.watchStart
			e.watchStart = nil
			err = errors.Join(err, e.markNotifying(written))
		}
	}()
	return fn()
}

func (e *Element) markNotifying(written *Changes) error {
	var errs []error
	written.Range(func(key string, start any) bool {
		detect := Detector(NotEqual)
		if decl, ok := e.def.Property(key); ok && decl.Observe != nil {
			detect = decl.Observe
		}
		changed, err := detect(start, e.Get(key))
		if err != nil {
			errs = append(errs, &ChangeDetectorError{Key: key, Detector: funcName(detect), Err: err})
			return true
		}
		if !changed {
			return true
		}
		if old, ok := e.changed.Get(key); ok {
			e.notifying.keep(key, old)
		}
		return true
	})
	return errors.Join(errs...)
}

func (e *Element) notifyProperties(notifying *Changes) (err error) {
	notifying.Range(func(key string, oldValue any) bool {
		decl, ok := e.def.Property(key)
		if !ok || !decl.Notify.Enabled() {
			return true
		}
		err = e.notifyProperty(decl, oldValue, e.Get(key))
		return err == nil
	})
	return err
}

func (e *Element) notifyProperty(decl *Declaration, oldValue, newValue any) error {
	fn, err := resolveChange(e, decl.Notify, func(el *Element, key string, oldValue, newValue any) error {
		el.node.Dispatch(host.Event{
			Type:     codec.EventName(key),
			Bubbles:  true,
			Composed: true,
			Detail: Change{
				Property: key,
				Previous: oldValue,
				Current:  newValue,
			},
		})
		return nil
	})
	if err == nil {
		err = fn(e, decl.Key, oldValue, newValue)
	}
	if err != nil {
		return &NotifierError{Key: decl.Key, Notifier: decl.Notify.String(), Err: err}
	}
	return nil
}
