// Package element is a reactive base for UI components.
//
// A component type declares its properties on a Definition. Every write to a
// declared property goes through the element, which records the change and
// schedules one deferred update pass for all writes made before the next
// frame. A pass renders, reflects changed properties to their attributes,
// dispatches change notifications and finally calls the owner's Updated
// hook. Attribute changes reported by the host flow back into properties
// without being reflected out again.
//
// An element is confined to the goroutine that runs its frames: a test
// using host.ManualFrames, or the goroutine of a host.Loop.
package element

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/delaneyj/customelement/codec"
	"github.com/delaneyj/customelement/host"
)

// Node is the host object an element is attached to.
type Node interface {
	EventTarget
	Attribute(name string) codec.Attr
	SetAttribute(name, value string) error
	RemoveAttribute(name string) error
	Observe(names []string, fn host.AttributeCallback)
	Dispatch(ev host.Event) bool
	Mount() host.Mount
}

// Renderer materializes a template into a mount point.
type Renderer interface {
	Render(template any, mount host.Mount) error
}

// Owner hooks. An element's owner is usually the component struct that
// embeds it; each hook is optional.
type (
	Templater interface {
		Template() any
	}
	Updater interface {
		Updated(changes *Changes, first bool) error
	}
	AttachHook interface {
		Attached()
	}
	DetachHook interface {
		Detached()
	}
)

type OnErrorFunc func(from *Element, err error)

type updateState uint8

const (
	stateIdle updateState = iota
	stateScheduled
	stateUpdating
)

func (s updateState) String() string {
	switch s {
	case stateScheduled:
		return "scheduled"
	case stateUpdating:
		return "updating"
	default:
		return "idle"
	}
}

type Element struct {
	id       string
	def      *Definition
	node     Node
	owner    any
	frames   host.Frames
	renderer Renderer
	logger   *slog.Logger
	onError  OnErrorFunc

	values map[string]any

	changed    *Changes
	reflecting *Changes
	notifying  *Changes

	state   updateState
	pending *Update
	next    *Update
	last    *Update
	passes  int

	isReflecting bool
	hasUpdated   bool
	isAttached   bool
	initialized  bool

	watchDepth int
	watchStart *Changes

	unlisten []func()
}

type Option func(*Element)

// WithOwner sets the value whose methods serve as hooks and as Method
// handlers.
func WithOwner(owner any) Option {
	return func(e *Element) { e.owner = owner }
}

func WithRenderer(r Renderer) Option {
	return func(e *Element) { e.renderer = r }
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Element) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithOnError(fn OnErrorFunc) Option {
	return func(e *Element) { e.onError = fn }
}

// New creates an element of type def on node. Update passes run on frames
// requested from frames.
func New(def *Definition, node Node, frames host.Frames, opts ...Option) *Element {
	if def == nil || node == nil || frames == nil {
		panic("element: New requires a definition, a node and frames")
	}
	e := &Element{
		id:         uuid.NewString(),
		def:        def,
		node:       node,
		frames:     frames,
		logger:     slog.Default(),
		values:     map[string]any{},
		changed:    newChanges(),
		reflecting: newChanges(),
		notifying:  newChanges(),
		last:       completedUpdate(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.owner == nil {
		e.owner = e
	}
	e.logger = e.logger.With("element", def.Name(), "id", e.id)

	for _, decl := range def.Properties() {
		if decl.Initial != nil {
			e.store(decl, decl.Initial)
		}
	}
	node.Observe(def.ObservedAttributes(), e.AttributeChanged)
	return e
}

func (e *Element) ID() string              { return e.id }
func (e *Element) Definition() *Definition { return e.def }
func (e *Element) Node() Node              { return e.node }
func (e *Element) Owner() any              { return e.owner }
func (e *Element) IsAttached() bool        { return e.isAttached }
func (e *Element) HasUpdated() bool        { return e.hasUpdated }
func (e *Element) IsReflecting() bool      { return e.isReflecting }

// UpdateRequested reports whether a pass is scheduled or running.
func (e *Element) UpdateRequested() bool { return e.state != stateIdle }

// Passes returns the number of completed update passes.
func (e *Element) Passes() int { return e.passes }

// Get returns the current value of a property.
func (e *Element) Get(key string) any {
	decl, ok := e.def.Property(key)
	if ok && decl.Accessor != nil && decl.Accessor.Get != nil {
		return decl.Accessor.Get(e)
	}
	return e.values[key]
}

// Set writes a declared property and requests an update for it. The value is
// stored even when the change detector fails.
func (e *Element) Set(key string, v any) error {
	decl, ok := e.def.Property(key)
	if !ok {
		return ErrUnknownProperty
	}
	old := e.Get(key)
	e.store(decl, v)
	_, err := e.RequestUpdate(key, old, v)
	return err
}

func (e *Element) store(decl *Declaration, v any) {
	if decl.Accessor != nil && decl.Accessor.Set != nil {
		decl.Accessor.Set(e, v)
		return
	}
	e.values[decl.Key] = v
}

// Attach is the host's "attached" hook: it binds declared listeners and
// requests the initial update. The first attach also reflects initial values.
func (e *Element) Attach() *Update {
	if e.isAttached {
		return e.pendingUpdate()
	}
	e.isAttached = true
	e.bindListeners()
	if !e.initialized {
		e.initialized = true
		e.requestInitial()
	}
	u := e.RequestUpdateAll()
	if h, ok := e.owner.(AttachHook); ok {
		h.Attached()
	}
	return u
}

// Detach is the host's "detached" hook.
func (e *Element) Detach() {
	if !e.isAttached {
		return
	}
	for _, cancel := range e.unlisten {
		cancel()
	}
	e.unlisten = nil
	e.isAttached = false
	if h, ok := e.owner.(DetachHook); ok {
		h.Detached()
	}
}

// requestInitial records every declared initial value as a change from nil,
// so the first pass after attaching reflects it. Writes made before that
// keep their own old value.
func (e *Element) requestInitial() {
	for _, decl := range e.def.Properties() {
		if decl.Initial == nil {
			continue
		}
		if _, err := e.RequestUpdate(decl.Key, nil, e.Get(decl.Key)); err != nil {
			e.fail(err)
		}
	}
}

func (e *Element) bindListeners() {
	for _, l := range e.def.Listeners() {
		fn, err := e.resolveListener(l.Handler)
		if err != nil {
			e.fail(err)
			continue
		}
		var target EventTarget = e.node
		if l.Target != nil {
			target = l.Target(e)
		}
		event := l.Event
		e.unlisten = append(e.unlisten, target.Listen(event, func(ev host.Event) {
			if err := fn(e, ev); err != nil {
				e.fail(err)
			}
		}))
	}
}

func (e *Element) fail(err error) {
	e.logger.Error("element error", "error", err)
	if e.onError != nil {
		e.onError(e, err)
	}
}
