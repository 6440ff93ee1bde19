package element_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delaneyj/customelement/codec"
	"github.com/delaneyj/customelement/element"
	"github.com/delaneyj/customelement/host"
)

func TestDeclareDefaults(t *testing.T) {
	def := element.Define("x-defaults", nil)
	decl, err := def.Declare("maxValue")
	require.NoError(t, err)

	name, ok := decl.AttributeName()
	assert.True(t, ok)
	assert.Equal(t, "max-value", name)
	assert.Equal(t, codec.Default, decl.Converter)
	assert.True(t, decl.ReflectAttribute.IsDefault())
	assert.True(t, decl.ReflectProperty.IsDefault())
	assert.True(t, decl.Notify.IsDefault())
	assert.NotNil(t, decl.Observe)
	assert.Equal(t, []string{"max-value"}, def.ObservedAttributes())

	key, ok := def.PropertyForAttribute("max-value")
	assert.True(t, ok)
	assert.Equal(t, "maxValue", key)
}

func TestDeclareRejectsConflicts(t *testing.T) {
	def := element.Define("x-conflict", nil)
	def.MustDeclare("label")

	_, err := def.Declare("label")
	assert.ErrorIs(t, err, element.ErrDuplicateProperty)

	_, err = def.Declare("title", element.WithAttribute(element.NamedAttribute("label")))
	assert.ErrorIs(t, err, element.ErrDuplicateAttribute)

	_, err = def.Declare("---")
	assert.ErrorIs(t, err, element.ErrInvalidKey)

	assert.Panics(t, func() { def.MustDeclare("label") })
}

func TestDefinitionInheritance(t *testing.T) {
	base := element.Define("x-base", nil)
	base.MustDeclare("label")
	base.MustDeclare("size", element.WithConverter(codec.Integer))
	base.Listen("click", element.Method[element.Listener]("OnClick"))

	child := element.Define("x-child", base)
	child.MustDeclare("label", element.WithAttribute(element.NoAttribute()))
	child.MustDeclare("open", element.WithConverter(codec.Boolean))
	child.Listen("keydown", element.Method[element.Listener]("OnKey"))

	decl, ok := child.Property("size")
	require.True(t, ok)
	assert.Equal(t, codec.Integer, decl.Converter)

	decl, ok = child.Property("label")
	require.True(t, ok)
	_, has := decl.AttributeName()
	assert.False(t, has)

	_, ok = child.PropertyForAttribute("label")
	assert.False(t, ok, "override without attribute hides the inherited mapping")
	key, ok := base.PropertyForAttribute("label")
	assert.True(t, ok)
	assert.Equal(t, "label", key)

	var keys []string
	for _, d := range child.Properties() {
		keys = append(keys, d.Key)
	}
	assert.Equal(t, []string{"label", "size", "open"}, keys)
	assert.Equal(t, []string{"label", "open", "size"}, child.ObservedAttributes())

	var events []string
	for _, l := range child.Listeners() {
		events = append(events, l.Event)
	}
	assert.Equal(t, []string{"click", "keydown"}, events)

	_, ok = base.Property("open")
	assert.False(t, ok)
}

func TestHandlerStrings(t *testing.T) {
	assert.Equal(t, "disabled", element.Disabled[element.Notifier]().String())
	assert.Equal(t, "default", element.Default[element.Notifier]().String())
	assert.Equal(t, "method Ping", element.Method[element.Notifier]("Ping").String())
	assert.False(t, element.Func[element.Notifier](nil).Enabled())
	assert.Contains(t, element.Func[element.PropertyReflector](failingPropertyReflector).String(), "failingPropertyReflector")
}

func failingPropertyReflector(*element.Element, string, any, any) error { return nil }

func TestDetectors(t *testing.T) {
	changed, err := element.NotEqual(1, 1)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, _ = element.NotEqual(1, int64(1))
	assert.True(t, changed)

	changed, _ = element.NotEqual([]int{1, 2}, []int{1, 2})
	assert.False(t, changed)

	changed, _ = element.NotEqual(nil, 0)
	assert.True(t, changed)

	type pair struct{ A, B any }
	changed, _ = element.NotEqual(pair{A: []int{1}}, pair{A: []int{1}})
	assert.False(t, changed)

	changed, _ = element.HashChanged(map[string]int{"a": 1}, map[string]int{"a": 1})
	assert.False(t, changed)
	changed, _ = element.HashChanged([]string{"a"}, []string{"b"})
	assert.True(t, changed)

	changed, _ = element.Always(1, 1)
	assert.True(t, changed)

	changed, _ = element.DetectorFunc(func(a, b any) bool { return false })(1, 2)
	assert.False(t, changed)
}

func TestAlwaysDetectorSchedulesIdenticalWrites(t *testing.T) {
	def := element.Define("x-always", nil)
	def.MustDeclare("tick", element.WithObserve(element.Always), element.WithAttribute(element.NoAttribute()))
	frames := host.NewManualFrames()
	el := element.New(def, host.NewNode("x-always"), frames)

	require.NoError(t, el.Set("tick", 1))
	frames.Flush()
	require.NoError(t, el.Set("tick", 1))
	assert.Equal(t, 1, frames.Pending())
}

func TestPropertyUpdate(t *testing.T) {
	def := element.Define("x-counter", nil)
	def.MustDeclare("count", element.WithConverter(codec.Integer), element.WithInitial(1))
	frames := host.NewManualFrames()
	node := host.NewNode("x-counter")
	el := element.New(def, node, frames)

	count := element.Bind[int](el, "count")
	assert.Equal(t, "count", count.Key())
	require.NoError(t, count.Update(func(n int) int { return n * 10 }))
	frames.Flush()
	assert.Equal(t, 10, count.Get())
	assert.Equal(t, codec.String("10"), node.Attribute("count"))

	assert.Panics(t, func() { element.Bind[int](el, "missing") })
	assert.Zero(t, element.Bind[string](el, "count").Get())
}

func TestDeclareWithoutAttributeAcceptsAnyKey(t *testing.T) {
	def := element.Define("x-keys", nil)

	decl, err := def.Declare("---", element.WithAttribute(element.NoAttribute()))
	require.NoError(t, err)
	_, has := decl.AttributeName()
	assert.False(t, has)
	assert.Empty(t, def.ObservedAttributes())

	_, err = def.Declare("", element.WithAttribute(element.NoAttribute()))
	assert.ErrorIs(t, err, element.ErrInvalidKey)
}

func TestIntegerOfKeepsPropertyType(t *testing.T) {
	def := element.Define("x-size", nil)
	def.MustDeclare("size", element.WithConverter(codec.IntegerOf[int64]()), element.WithInitial(int64(1)))
	frames := host.NewManualFrames()
	node := host.NewNode("x-size")
	el := element.New(def, node, frames)

	require.NoError(t, node.SetAttribute("size", "5"))
	assert.Equal(t, int64(5), el.Get("size"))
	frames.Flush()
	assert.Equal(t, 1, el.Passes())

	require.NoError(t, el.Set("size", int64(5)))
	assert.Zero(t, frames.Pending(), "same value read back from the attribute is unchanged")
}
