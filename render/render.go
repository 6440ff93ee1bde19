// Package render turns element templates into HTML with quicktemplate.
//
// Templates are written the way qtc generates code: a type with a
// StreamHTML method writing to a *quicktemplate.Writer. Plain strings and
// fmt.Stringers are rendered as escaped text.
package render

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/valyala/quicktemplate"

	"github.com/delaneyj/customelement/host"
)

type Template interface {
	StreamHTML(qw *quicktemplate.Writer)
}

// TemplateFunc adapts a function to Template.
type TemplateFunc func(qw *quicktemplate.Writer)

func (f TemplateFunc) StreamHTML(qw *quicktemplate.Writer) { f(qw) }

// Raw is HTML written without escaping.
type Raw string

func (r Raw) StreamHTML(qw *quicktemplate.Writer) { qw.N().S(string(r)) }

// HTML renders templates into mounts. It remembers a digest of the last
// output per mount and leaves the mount alone when nothing changed.
// Not safe for concurrent use; share one per loop.
type HTML struct {
	digests map[host.Mount]uint64
	writes  int
	skips   int
}

func NewHTML() *HTML {
	return &HTML{digests: map[host.Mount]uint64{}}
}

func (h *HTML) Render(template any, mount host.Mount) error {
	bb := quicktemplate.AcquireByteBuffer()
	defer quicktemplate.ReleaseByteBuffer(bb)

	qw := quicktemplate.AcquireWriter(bb)
	err := stream(qw, template)
	quicktemplate.ReleaseWriter(qw)
	if err != nil {
		return err
	}

	sum := xxhash.Sum64(bb.B)
	if last, ok := h.digests[mount]; ok && last == sum {
		h.skips++
		return nil
	}
	h.digests[mount] = sum
	h.writes++
	mount.Replace(bb.B)
	return nil
}

func stream(qw *quicktemplate.Writer, template any) error {
	switch t := template.(type) {
	case nil:
	case Template:
		t.StreamHTML(qw)
	case string:
		qw.E().S(t)
	case fmt.Stringer:
		qw.E().S(t.String())
	default:
		return fmt.Errorf("render: unsupported template type %T", template)
	}
	return nil
}

// Forget drops the remembered output for mount, e.g. after detaching.
func (h *HTML) Forget(mount host.Mount) {
	delete(h.digests, mount)
}

// Stats returns how many renders wrote to a mount and how many were skipped
// because the output was unchanged.
func (h *HTML) Stats() (writes, skips int) {
	return h.writes, h.skips
}

// String renders template to a string, for tools and tests.
func String(template any) (string, error) {
	bb := quicktemplate.AcquireByteBuffer()
	defer quicktemplate.ReleaseByteBuffer(bb)
	qw := quicktemplate.AcquireWriter(bb)
	defer quicktemplate.ReleaseWriter(qw)
	if err := stream(qw, template); err != nil {
		return "", err
	}
	return string(bb.B), nil
}
