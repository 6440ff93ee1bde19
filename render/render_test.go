package render_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/quicktemplate"

	"github.com/delaneyj/customelement/host"
	"github.com/delaneyj/customelement/render"
)

func TestRenderEscapesStrings(t *testing.T) {
	out, err := render.String("<b>hi</b>")
	require.NoError(t, err)
	assert.Equal(t, "&lt;b&gt;hi&lt;/b&gt;", out)
}

func TestRenderTemplate(t *testing.T) {
	tpl := render.TemplateFunc(func(qw *quicktemplate.Writer) {
		qw.N().S("<span>")
		qw.E().S("a&b")
		qw.N().S("</span>")
	})
	out, err := render.String(tpl)
	require.NoError(t, err)
	assert.Equal(t, "<span>a&amp;b</span>", out)

	out, err = render.String(render.Raw("<i>x</i>"))
	require.NoError(t, err)
	assert.Equal(t, "<i>x</i>", out)
}

func TestRenderUnsupported(t *testing.T) {
	_, err := render.String(42)
	assert.Error(t, err)
}

func TestHTMLSkipsUnchangedOutput(t *testing.T) {
	r := render.NewHTML()
	root := &host.Root{}

	require.NoError(t, r.Render("one", root))
	require.NoError(t, r.Render("one", root))
	require.NoError(t, r.Render("two", root))

	assert.Equal(t, "two", root.String())
	assert.Equal(t, 2, root.Renders())
	writes, skips := r.Stats()
	assert.Equal(t, 2, writes)
	assert.Equal(t, 1, skips)

	r.Forget(root)
	require.NoError(t, r.Render("two", root))
	assert.Equal(t, 3, root.Renders())
}
