package host

import (
	"slices"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/delaneyj/customelement/codec"
)

// Event is a named, detail-carrying event dispatched from a node.
type Event struct {
	Type string
	// Bubbles and Composed mirror the DOM flags. Composed events cross
	// shadow boundaries.
	Bubbles  bool
	Composed bool
	Detail   any
	Target   *Node
}

// AttributeCallback is invoked synchronously whenever an observed attribute
// changes. Its error is returned from the mutating call.
type AttributeCallback func(name string, oldValue, newValue codec.Attr) error

type listener struct {
	fn func(Event)
}

// Mount receives rendered output.
type Mount interface {
	Replace(content []byte)
}

// Root is an in-memory render root.
type Root struct {
	content []byte
	renders int
}

func (r *Root) Replace(content []byte) {
	r.content = append(r.content[:0], content...)
	r.renders++
}

func (r *Root) String() string { return string(r.content) }
func (r *Root) Renders() int   { return r.renders }

// Node is an in-memory stand-in for a host element. It is not safe for
// concurrent use; confine it to one loop.
type Node struct {
	tag       string
	attrs     map[string]string
	observed  mapset.Set[string]
	onAttr    AttributeCallback
	listeners map[string][]*listener
	root      *Root
	history   []Event
}

func NewNode(tag string) *Node {
	return &Node{
		tag:       tag,
		attrs:     map[string]string{},
		observed:  mapset.NewThreadUnsafeSet[string](),
		listeners: map[string][]*listener{},
		root:      &Root{},
	}
}

func (n *Node) Tag() string { return n.tag }

// Observe registers the attribute callback for the given names. It replaces
// any previous registration.
func (n *Node) Observe(names []string, fn AttributeCallback) {
	n.observed = mapset.NewThreadUnsafeSet(names...)
	n.onAttr = fn
}

func (n *Node) Attribute(name string) codec.Attr {
	v, ok := n.attrs[name]
	return codec.FromPresence(v, ok)
}

// Attributes returns the attribute names in sorted order.
func (n *Node) Attributes() []string {
	names := make([]string, 0, len(n.attrs))
	for name := range n.attrs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (n *Node) SetAttribute(name, value string) error {
	old := n.Attribute(name)
	n.attrs[name] = value
	return n.attributeChanged(name, old, codec.String(value))
}

func (n *Node) RemoveAttribute(name string) error {
	old := n.Attribute(name)
	if old.IsNull() {
		return nil
	}
	delete(n.attrs, name)
	return n.attributeChanged(name, old, codec.Null())
}

func (n *Node) attributeChanged(name string, oldValue, newValue codec.Attr) error {
	if n.onAttr == nil || !n.observed.Contains(name) {
		return nil
	}
	return n.onAttr(name, oldValue, newValue)
}

// Listen adds fn for events of the given type and returns a function that
// removes it again.
func (n *Node) Listen(event string, fn func(Event)) func() {
	l := &listener{fn: fn}
	n.listeners[event] = append(n.listeners[event], l)
	return func() {
		n.listeners[event] = slices.DeleteFunc(n.listeners[event], func(other *listener) bool {
			return other == l
		})
	}
}

// Dispatch delivers ev to the node's listeners in registration order and
// reports whether any listener received it.
func (n *Node) Dispatch(ev Event) bool {
	ev.Target = n
	n.history = append(n.history, ev)
	ls := slices.Clone(n.listeners[ev.Type])
	for _, l := range ls {
		l.fn(ev)
	}
	return len(ls) > 0
}

// Dispatched returns every event dispatched from the node so far.
func (n *Node) Dispatched() []Event {
	return slices.Clone(n.history)
}

func (n *Node) Mount() Mount { return n.root }
func (n *Node) Root() *Root  { return n.root }
