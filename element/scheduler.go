package element

import (
	"context"
	"fmt"
	"runtime/debug"
)

// Update completes after the update pass it was handed out for.
type Update struct {
	done        chan struct{}
	rescheduled bool
	err         error
}

func newUpdate() *Update {
	return &Update{done: make(chan struct{})}
}

func completedUpdate() *Update {
	u := newUpdate()
	close(u.done)
	return u
}

func (u *Update) complete(rescheduled bool, err error) {
	u.rescheduled = rescheduled
	u.err = err
	close(u.done)
}

func (u *Update) Done() <-chan struct{} { return u.done }

func (u *Update) Completed() bool {
	select {
	case <-u.done:
		return true
	default:
		return false
	}
}

// Result reports whether another update was requested while the pass ran
// and the error that ended the pass. It is only meaningful once Completed.
func (u *Update) Result() (rescheduled bool, err error) {
	if !u.Completed() {
		return false, nil
	}
	return u.rescheduled, u.err
}

// Wait blocks until the pass completes. It must not be called from the
// goroutine that runs the element's frames.
func (u *Update) Wait(ctx context.Context) (rescheduled bool, err error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-u.done:
		return u.rescheduled, u.err
	}
}

// RequestUpdate records that key changed from oldValue to newValue and
// makes sure a pass is scheduled. Writes the property's detector considers
// unchanged, and writes to unobserved properties, schedule nothing and return
// the update callers are already waiting on.
func (e *Element) RequestUpdate(key string, oldValue, newValue any) (*Update, error) {
	detect := Detector(NotEqual)
	if decl, ok := e.def.Property(key); ok {
		if decl.Observe == nil {
			return e.pendingUpdate(), nil
		}
		detect = decl.Observe
	}

	changed, err := detect(oldValue, newValue)
	if err != nil {
		return e.pendingUpdate(), &ChangeDetectorError{Key: key, Detector: funcName(detect), Err: err}
	}
	if !changed {
		return e.pendingUpdate(), nil
	}

	e.changed.keep(key, oldValue)
	if !e.isReflecting {
		e.reflecting.keep(key, oldValue)
	}
	if e.watchDepth > 0 {
		e.watchStart.keep(key, oldValue)
	}
	return e.schedule(), nil
}

// RequestUpdateAll schedules a pass without recording a property change.
func (e *Element) RequestUpdateAll() *Update {
	return e.schedule()
}

func (e *Element) pendingUpdate() *Update {
	switch {
	case e.state == stateUpdating && e.next != nil:
		return e.next
	case e.state != stateIdle:
		return e.pending
	default:
		return e.last
	}
}

func (e *Element) schedule() *Update {
	switch e.state {
	case stateIdle:
		e.pending = newUpdate()
		e.state = stateScheduled
		e.frames.RequestFrame(e.performUpdate)
		return e.pending
	case stateUpdating:
		if e.next == nil {
			e.next = newUpdate()
		}
		return e.next
	default:
		return e.pending
	}
}

// performUpdate runs one pass. The dirty sets are swapped out first so
// writes made by the pass itself land in the next pass.
func (e *Element) performUpdate() {
	if e.state != stateScheduled {
		return
	}
	e.state = stateUpdating
	current := e.pending

	changed, reflecting, notifying := e.changed, e.reflecting, e.notifying
	e.changed, e.reflecting, e.notifying = newChanges(), newChanges(), newChanges()

	err := e.runPass(changed, reflecting, notifying, !e.hasUpdated)
	e.hasUpdated = true
	e.passes++

	next := e.next
	e.next = nil
	e.last = current
	if next != nil {
		e.pending = next
		e.state = stateScheduled
		e.frames.RequestFrame(e.performUpdate)
	} else {
		e.pending = nil
		e.state = stateIdle
	}

	if err != nil {
		e.fail(err)
	}
	current.complete(next != nil, err)
}

func (e *Element) runPass(changed, reflecting, notifying *Changes, first bool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: string(debug.Stack())}
		}
	}()

	if err := e.render(); err != nil {
		return err
	}
	if err := e.reflectProperties(reflecting); err != nil {
		return err
	}
	if err := e.notifyProperties(notifying); err != nil {
		return err
	}
	if u, ok := e.owner.(Updater); ok {
		if err := u.Updated(changed, first); err != nil {
			return fmt.Errorf("updated hook: %w", err)
		}
	}
	return nil
}

func (e *Element) render() error {
	if e.renderer == nil {
		return nil
	}
	var template any
	if t, ok := e.owner.(Templater); ok {
		template = t.Template()
	}
	if err := e.renderer.Render(template, e.node.Mount()); err != nil {
		return &RenderError{Element: e.def.Name(), Err: err}
	}
	return nil
}
