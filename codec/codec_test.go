package codec_test

import (
	"testing"
	"time"

	"github.com/delaneyj/customelement/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributeName(t *testing.T) {
	cases := map[string]string{
		"count":      "count",
		"fooBar":     "foo-bar",
		"ariaLabel":  "aria-label",
		"_private":   "private",
		"$value":     "value",
		"with space": "with-space",
		"$$":         "",
	}
	for key, want := range cases {
		assert.Equal(t, want, codec.AttributeName(key), key)
	}
}

func TestEventName(t *testing.T) {
	assert.Equal(t, "selected-index-changed", codec.EventName("selectedIndex"))
	assert.Equal(t, "checked-changed", codec.EventName("checked"))
}

func TestAttrStates(t *testing.T) {
	assert.True(t, codec.Leave().IsLeave())
	assert.True(t, codec.Null().IsNull())

	s, ok := codec.String("x").Value()
	assert.True(t, ok)
	assert.Equal(t, "x", s)

	_, ok = codec.Null().Value()
	assert.False(t, ok)

	assert.True(t, codec.FromPresence("", false).IsNull())
	assert.True(t, codec.FromPresence("", true).Equal(codec.String("")))
	assert.False(t, codec.String("a").Equal(codec.String("b")))
}

func TestDefaultConverter(t *testing.T) {
	a, err := codec.Default.ToAttribute(42)
	require.NoError(t, err)
	assert.Equal(t, codec.String("42"), a)

	a, err = codec.Default.ToAttribute(nil)
	require.NoError(t, err)
	assert.True(t, a.IsNull())

	v, err := codec.Default.FromAttribute(codec.String("42"))
	require.NoError(t, err)
	assert.Equal(t, "42", v)

	v, err = codec.Default.FromAttribute(codec.Null())
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestBooleanConverterRoundTrip(t *testing.T) {
	a, err := codec.Boolean.ToAttribute(true)
	require.NoError(t, err)
	assert.Equal(t, codec.String("true"), a)

	a, err = codec.Boolean.ToAttribute(false)
	require.NoError(t, err)
	assert.True(t, a.IsNull())

	v, err := codec.Boolean.FromAttribute(codec.String(""))
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = codec.Boolean.FromAttribute(codec.Null())
	require.NoError(t, err)
	assert.Equal(t, false, v)
}

func TestNumberConverter(t *testing.T) {
	a, err := codec.Number.ToAttribute(7)
	require.NoError(t, err)
	assert.Equal(t, codec.String("7"), a)

	a, err = codec.Number.ToAttribute(2.5)
	require.NoError(t, err)
	assert.Equal(t, codec.String("2.5"), a)

	v, err := codec.Number.FromAttribute(codec.String("2.5"))
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)

	_, err = codec.Number.FromAttribute(codec.String("abc"))
	assert.Error(t, err)

	_, err = codec.Number.ToAttribute(struct{}{})
	assert.Error(t, err)
}

func TestIntegerConverter(t *testing.T) {
	a, err := codec.Integer.ToAttribute(int64(12))
	require.NoError(t, err)
	assert.Equal(t, codec.String("12"), a)

	v, err := codec.Integer.FromAttribute(codec.String("12"))
	require.NoError(t, err)
	assert.Equal(t, 12, v)
}

func TestJSONConverter(t *testing.T) {
	a, err := codec.JSON.ToAttribute([]int{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, codec.String("[1,2,3]"), a)

	v, err := codec.JSON.FromAttribute(codec.String(`{"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1)}, v)

	type point struct {
		X int `json:"x"`
		Y int `json:"y"`
	}
	conv := codec.JSONInto[point]()
	v, err = conv.FromAttribute(codec.String(`{"x":1,"y":2}`))
	require.NoError(t, err)
	assert.Equal(t, point{X: 1, Y: 2}, v)

	_, err = conv.FromAttribute(codec.String(`{`))
	assert.Error(t, err)
}

func TestTimeConverter(t *testing.T) {
	ts := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	a, err := codec.Time.ToAttribute(ts)
	require.NoError(t, err)

	v, err := codec.Time.FromAttribute(a)
	require.NoError(t, err)
	assert.True(t, ts.Equal(v.(time.Time)))

	a, err = codec.Time.ToAttribute(time.Time{})
	require.NoError(t, err)
	assert.True(t, a.IsNull())
}

func TestConverterFuncsFallback(t *testing.T) {
	conv := codec.ConverterFuncs{
		From: func(a codec.Attr) (any, error) {
			_, ok := a.Value()
			return ok, nil
		},
	}
	a, err := conv.ToAttribute("x")
	require.NoError(t, err)
	assert.Equal(t, codec.String("x"), a)

	v, err := conv.FromAttribute(codec.Null())
	require.NoError(t, err)
	assert.Equal(t, false, v)
}

func TestTextConverter(t *testing.T) {
	a, err := codec.Text.ToAttribute(42)
	require.NoError(t, err)
	assert.Equal(t, codec.String("42"), a)

	_, err = codec.Text.ToAttribute(struct{}{})
	assert.Error(t, err)

	v, err := codec.Text.FromAttribute(codec.Null())
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

func TestIntegerOf(t *testing.T) {
	conv := codec.IntegerOf[int64]()
	a, err := conv.ToAttribute(int64(1) << 40)
	require.NoError(t, err)
	assert.Equal(t, codec.String("1099511627776"), a)

	v, err := conv.FromAttribute(a)
	require.NoError(t, err)
	assert.Equal(t, int64(1)<<40, v)

	v, err = codec.IntegerOf[uint8]().FromAttribute(codec.String("7"))
	require.NoError(t, err)
	assert.Equal(t, uint8(7), v)

	v, err = conv.FromAttribute(codec.Null())
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = conv.FromAttribute(codec.String("seven"))
	assert.Error(t, err)
	_, err = codec.Integer.FromAttribute(codec.String("seven"))
	assert.Error(t, err)
}
