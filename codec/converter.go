package codec

import (
	"fmt"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cast"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Converter turns property values into attribute strings and back.
type Converter interface {
	ToAttribute(v any) (Attr, error)
	FromAttribute(a Attr) (any, error)
}

// ConverterFuncs adapts a pair of functions to Converter. A nil function
// falls back to the Default converter's behavior.
type ConverterFuncs struct {
	To   func(v any) (Attr, error)
	From func(a Attr) (any, error)
}

func (c ConverterFuncs) ToAttribute(v any) (Attr, error) {
	if c.To == nil {
		return Default.ToAttribute(v)
	}
	return c.To(v)
}

func (c ConverterFuncs) FromAttribute(a Attr) (any, error) {
	if c.From == nil {
		return Default.FromAttribute(a)
	}
	return c.From(a)
}

var (
	// Default stringifies values and hands attribute strings back unchanged.
	Default Converter = defaultConverter{}

	// Boolean maps true to "true" and false to an absent attribute. Any
	// present attribute reads back as true.
	Boolean Converter = booleanConverter{}

	// Text is Default restricted to string values; absent reads back as "".
	Text Converter = stringConverter{}

	// Number reads attributes back as float64.
	Number Converter = numberConverter{}

	// Integer reads attributes back as int. Use IntegerOf for other integer
	// types.
	Integer Converter = integerConverter{}

	// JSON encodes objects and arrays as JSON attribute values.
	JSON Converter = jsonConverter{}

	Time Converter = timeConverter{layout: time.RFC3339Nano}
)

type defaultConverter struct{}

func (defaultConverter) ToAttribute(v any) (Attr, error) {
	if v == nil {
		return Null(), nil
	}
	if s, ok := v.(fmt.Stringer); ok {
		return String(s.String()), nil
	}
	return String(fmt.Sprint(v)), nil
}

func (defaultConverter) FromAttribute(a Attr) (any, error) {
	s, ok := a.Value()
	if !ok {
		return nil, nil
	}
	return s, nil
}

type booleanConverter struct{}

func (booleanConverter) ToAttribute(v any) (Attr, error) {
	b, err := cast.ToBoolE(v)
	if err != nil {
		return Leave(), fmt.Errorf("boolean attribute: %w", err)
	}
	if !b {
		return Null(), nil
	}
	return String("true"), nil
}

func (booleanConverter) FromAttribute(a Attr) (any, error) {
	_, ok := a.Value()
	return ok, nil
}

type stringConverter struct{}

func (stringConverter) ToAttribute(v any) (Attr, error) {
	if v == nil {
		return Null(), nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return Leave(), fmt.Errorf("string attribute: %w", err)
	}
	return String(s), nil
}

func (stringConverter) FromAttribute(a Attr) (any, error) {
	s, ok := a.Value()
	if !ok {
		return "", nil
	}
	return s, nil
}

type numberConverter struct{}

func (numberConverter) ToAttribute(v any) (Attr, error) {
	if v == nil {
		return Null(), nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return Leave(), fmt.Errorf("number attribute: %w", err)
	}
	return String(strconv.FormatFloat(f, 'f', -1, 64)), nil
}

func (numberConverter) FromAttribute(a Attr) (any, error) {
	s, ok := a.Value()
	if !ok {
		return nil, nil
	}
	f, err := cast.ToFloat64E(s)
	if err != nil {
		return nil, fmt.Errorf("number attribute %q: %w", s, err)
	}
	return f, nil
}

type integerConverter struct{}

func (integerConverter) ToAttribute(v any) (Attr, error) {
	if v == nil {
		return Null(), nil
	}
	i, err := cast.ToInt64E(v)
	if err != nil {
		return Leave(), fmt.Errorf("integer attribute: %w", err)
	}
	return String(strconv.FormatInt(i, 10)), nil
}

func (integerConverter) FromAttribute(a Attr) (any, error) {
	s, ok := a.Value()
	if !ok {
		return nil, nil
	}
	i, err := cast.ToIntE(s)
	if err != nil {
		return nil, fmt.Errorf("integer attribute %q: %w", s, err)
	}
	return i, nil
}

// Integers are the types IntegerOf decodes into.
type Integers interface {
	int | int8 | int16 | int32 | int64 | uint | uint8 | uint16 | uint32 | uint64
}

// IntegerOf is Integer decoding into T, so a property keeps its declared
// type across an attribute round trip.
func IntegerOf[T Integers]() Converter {
	return ConverterFuncs{
		To: Integer.ToAttribute,
		From: func(a Attr) (any, error) {
			s, ok := a.Value()
			if !ok {
				return nil, nil
			}
			i, err := cast.ToInt64E(s)
			if err != nil {
				return nil, fmt.Errorf("integer attribute %q: %w", s, err)
			}
			return T(i), nil
		},
	}
}

type jsonConverter struct{}

func (jsonConverter) ToAttribute(v any) (Attr, error) {
	if v == nil {
		return Null(), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return Leave(), fmt.Errorf("json attribute: %w", err)
	}
	return String(string(b)), nil
}

func (jsonConverter) FromAttribute(a Attr) (any, error) {
	s, ok := a.Value()
	if !ok {
		return nil, nil
	}
	var v any
	if err := json.UnmarshalFromString(s, &v); err != nil {
		return nil, fmt.Errorf("json attribute: %w", err)
	}
	return v, nil
}

// JSONInto returns a JSON converter decoding into a T, so typed properties
// round trip as their own type.
func JSONInto[T any]() Converter {
	return ConverterFuncs{
		To: JSON.ToAttribute,
		From: func(a Attr) (any, error) {
			s, ok := a.Value()
			if !ok {
				var zero T
				return zero, nil
			}
			var v T
			if err := json.UnmarshalFromString(s, &v); err != nil {
				return nil, fmt.Errorf("json attribute: %w", err)
			}
			return v, nil
		},
	}
}

type timeConverter struct {
	layout string
}

func (c timeConverter) ToAttribute(v any) (Attr, error) {
	switch t := v.(type) {
	case nil:
		return Null(), nil
	case time.Time:
		if t.IsZero() {
			return Null(), nil
		}
		return String(t.Format(c.layout)), nil
	default:
		return Leave(), fmt.Errorf("time attribute: unsupported value %T", v)
	}
}

func (c timeConverter) FromAttribute(a Attr) (any, error) {
	s, ok := a.Value()
	if !ok {
		return time.Time{}, nil
	}
	t, err := time.Parse(c.layout, s)
	if err != nil {
		return nil, fmt.Errorf("time attribute %q: %w", s, err)
	}
	return t, nil
}
