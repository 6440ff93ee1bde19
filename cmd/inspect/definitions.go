package main

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/delaneyj/customelement/codec"
	"github.com/delaneyj/customelement/element"
)

type fileConfig struct {
	Components []componentConfig `yaml:"components"`
}

type componentConfig struct {
	Name       string           `yaml:"name"`
	Extends    string           `yaml:"extends"`
	Properties []propertyConfig `yaml:"properties"`
	Listeners  []listenerConfig `yaml:"listeners"`
}

type propertyConfig struct {
	Key  string `yaml:"key"`
	Type string `yaml:"type"`
	// Attribute is the attribute name; empty derives it, "-" disables it.
	Attribute string `yaml:"attribute"`
	Reflect   *bool  `yaml:"reflect"`
	Notify    *bool  `yaml:"notify"`
	// Observe is one of "", "equal", "hash", "always" or "none".
	Observe string `yaml:"observe"`
	Initial any    `yaml:"initial"`
}

type listenerConfig struct {
	Event  string `yaml:"event"`
	Method string `yaml:"method"`
}

// component is a loaded definition together with the configuration it was
// built from.
type component struct {
	Definition *element.Definition
	Config     componentConfig
}

var converters = map[string]struct {
	converter codec.Converter
	coerce    func(any) (any, error)
}{
	"":        {codec.Default, nil},
	"default": {codec.Default, nil},
	"text":    {codec.Text, func(v any) (any, error) { return cast.ToStringE(v) }},
	"boolean": {codec.Boolean, func(v any) (any, error) { return cast.ToBoolE(v) }},
	"number":  {codec.Number, func(v any) (any, error) { return cast.ToFloat64E(v) }},
	"integer": {codec.Integer, func(v any) (any, error) { return cast.ToIntE(v) }},
	"json":    {codec.JSON, nil},
	"time":    {codec.Time, func(v any) (any, error) { return cast.ToTimeE(v) }},
}

var detectors = map[string]element.Detector{
	"":       element.NotEqual,
	"equal":  element.NotEqual,
	"hash":   element.HashChanged,
	"always": element.Always,
	"none":   nil,
}

var errUnknownParent = errors.New("unknown parent component")

// loadComponents decodes component definitions. A component may only extend
// one declared before it.
func loadComponents(r io.Reader) ([]*component, error) {
	var cfg fileConfig
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding components: %w", err)
	}

	byName := map[string]*element.Definition{}
	components := make([]*component, 0, len(cfg.Components))
	for _, cc := range cfg.Components {
		if cc.Name == "" {
			return nil, errors.New("component without name")
		}
		if _, ok := byName[cc.Name]; ok {
			return nil, fmt.Errorf("component %s declared twice", cc.Name)
		}
		var parent *element.Definition
		if cc.Extends != "" {
			p, ok := byName[cc.Extends]
			if !ok {
				return nil, fmt.Errorf("%s extends %s: %w", cc.Name, cc.Extends, errUnknownParent)
			}
			parent = p
		}

		def := element.Define(cc.Name, parent)
		for _, pc := range cc.Properties {
			opts, err := pc.options()
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", cc.Name, pc.Key, err)
			}
			if _, err := def.Declare(pc.Key, opts...); err != nil {
				return nil, err
			}
		}
		for _, lc := range cc.Listeners {
			if lc.Event == "" || lc.Method == "" {
				return nil, fmt.Errorf("%s: listener needs an event and a method", cc.Name)
			}
			def.Listen(lc.Event, element.Method[element.Listener](lc.Method))
		}

		byName[cc.Name] = def
		components = append(components, &component{Definition: def, Config: cc})
	}
	return components, nil
}

func (pc propertyConfig) options() ([]element.DeclarationOption, error) {
	conv, ok := converters[pc.Type]
	if !ok {
		return nil, fmt.Errorf("unknown type %q, want one of %v", pc.Type, keys(converters))
	}
	detect, ok := detectors[pc.Observe]
	if !ok {
		return nil, fmt.Errorf("unknown observe mode %q, want one of %v", pc.Observe, keys(detectors))
	}

	opts := []element.DeclarationOption{
		element.WithConverter(conv.converter),
		element.WithObserve(detect),
	}
	switch pc.Attribute {
	case "":
	case "-":
		opts = append(opts, element.WithAttribute(element.NoAttribute()))
	default:
		opts = append(opts, element.WithAttribute(element.NamedAttribute(pc.Attribute)))
	}
	if pc.Reflect != nil && !*pc.Reflect {
		opts = append(opts, element.WithReflectProperty(element.Disabled[element.PropertyReflector]()))
	}
	if pc.Notify != nil && !*pc.Notify {
		opts = append(opts, element.WithNotify(element.Disabled[element.Notifier]()))
	}
	if pc.Initial != nil {
		v := pc.Initial
		if conv.coerce != nil {
			var err error
			if v, err = conv.coerce(v); err != nil {
				return nil, fmt.Errorf("initial value: %w", err)
			}
		}
		opts = append(opts, element.WithInitial(v))
	}
	return opts, nil
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		if k != "" {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
