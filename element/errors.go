package element

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

var (
	ErrDuplicateProperty  = errors.New("element: property already declared")
	ErrDuplicateAttribute = errors.New("element: attribute already owned by another property")
	ErrInvalidKey         = errors.New("element: property key is empty or derives an empty attribute name")
	ErrUnknownProperty    = errors.New("element: unknown property")
	ErrMethodNotFound     = errors.New("element: method not found")
)

// ChangeDetectorError is returned synchronously from a property write when
// the property's change detector fails.
type ChangeDetectorError struct {
	Key      string
	Detector string
	Err      error
}

func (e *ChangeDetectorError) Error() string {
	return fmt.Sprintf("error executing change detector %s for property %q: %v", e.Detector, e.Key, e.Err)
}

func (e *ChangeDetectorError) Unwrap() error { return e.Err }

// Direction of a reflection.
type Direction uint8

const (
	AttributeToProperty Direction = iota
	PropertyToAttribute
)

func (d Direction) String() string {
	if d == AttributeToProperty {
		return "attribute->property"
	}
	return "property->attribute"
}

// ReflectorError wraps a failure while reflecting between a property and its
// attribute.
type ReflectorError struct {
	Key       string
	Reflector string
	Direction Direction
	Err       error
}

func (e *ReflectorError) Error() string {
	return fmt.Sprintf("error executing reflector %s (%s) for property %q: %v", e.Reflector, e.Direction, e.Key, e.Err)
}

func (e *ReflectorError) Unwrap() error { return e.Err }

// NotifierError wraps a failure while notifying a property change.
type NotifierError struct {
	Key      string
	Notifier string
	Err      error
}

func (e *NotifierError) Error() string {
	return fmt.Sprintf("error executing notifier %s for property %q: %v", e.Notifier, e.Key, e.Err)
}

func (e *NotifierError) Unwrap() error { return e.Err }

// RenderError wraps a failure of the renderer during a pass.
type RenderError struct {
	Element string
	Err     error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("error rendering %s: %v", e.Element, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// PanicError is a panic recovered inside an update pass.
type PanicError struct {
	Value any
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic during update: %v", e.Value)
}

func funcName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return "<nil>"
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return "<func>"
	}
	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
