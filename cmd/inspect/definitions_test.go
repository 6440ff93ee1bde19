package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delaneyj/customelement/codec"
)

const sample = `
components:
  - name: x-base
    properties:
      - key: label
        initial: hello
      - key: disabled
        type: boolean
        initial: true
    listeners:
      - event: click
        method: OnClick
  - name: x-counter
    extends: x-base
    properties:
      - key: maxCount
        type: integer
        initial: "10"
      - key: items
        type: json
        attribute: "-"
        observe: hash
      - key: secret
        reflect: false
        notify: false
        observe: none
`

func TestLoadComponents(t *testing.T) {
	components, err := loadComponents(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, components, 2)

	counter := components[1].Definition
	assert.Equal(t, "x-base", counter.Parent().Name())

	decl, ok := counter.Property("maxCount")
	require.True(t, ok)
	assert.Equal(t, 10, decl.Initial)
	assert.Equal(t, codec.Integer, decl.Converter)
	name, _ := decl.AttributeName()
	assert.Equal(t, "max-count", name)

	decl, ok = counter.Property("items")
	require.True(t, ok)
	_, has := decl.AttributeName()
	assert.False(t, has)

	decl, ok = counter.Property("secret")
	require.True(t, ok)
	assert.Nil(t, decl.Observe)
	assert.False(t, decl.ReflectProperty.Enabled())
	assert.False(t, decl.Notify.Enabled())

	assert.Equal(t, []string{"disabled", "label", "max-count", "secret"}, counter.ObservedAttributes())
	require.Len(t, counter.Listeners(), 1)
}

func TestLoadComponentsErrors(t *testing.T) {
	_, err := loadComponents(strings.NewReader("components:\n  - name: x-a\n    extends: x-missing\n"))
	assert.ErrorIs(t, err, errUnknownParent)

	_, err = loadComponents(strings.NewReader("components:\n  - name: x-a\n    properties:\n      - key: a\n        type: float\n"))
	assert.ErrorContains(t, err, "unknown type")

	_, err = loadComponents(strings.NewReader("components:\n  - name: x-a\n    properties:\n      - key: a\n        type: boolean\n        initial: maybe\n"))
	assert.ErrorContains(t, err, "initial value")

	components, err := loadComponents(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, components)
}

func TestPrintComponentPreview(t *testing.T) {
	components, err := loadComponents(strings.NewReader(sample))
	require.NoError(t, err)

	previewed, err := previewAttributes(components[1].Definition)
	require.NoError(t, err)
	assert.Equal(t, "hello", previewed["label"])
	assert.Equal(t, "true", previewed["disabled"])
	assert.Equal(t, "10", previewed["maxCount"])
	assert.Equal(t, "-", previewed["items"])
	assert.Equal(t, "<null>", previewed["secret"])

	var out bytes.Buffer
	n, err := printComponent(&out, components[1], true)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Contains(t, out.String(), "x-counter extends x-base")
	assert.Contains(t, out.String(), "max-count-changed")
}
