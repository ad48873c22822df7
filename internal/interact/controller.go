// Package interact implements pointer-driven drag and resize of template
// fields as an explicit Idle | Dragging | Resizing state machine.
package interact

import (
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/canvas"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/fields"
)

type Mode int

const (
	Idle Mode = iota
	Dragging
	Resizing
)

func (m Mode) String() string {
	switch m {
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	}
	return "idle"
}

// Target is the part of a field that received pointer-down.
type Target int

const (
	TargetNone Target = iota
	TargetBody
	TargetResizeHandle
)

// State is the snapshot of the current interaction. Start geometry is
// canonical; StartPointer is in visual pixels.
type State struct {
	Mode         Mode
	FieldID      string
	StartPointer PointerEvent
	StartX       float64
	StartY       float64
	StartWidth   float64
	StartHeight  float64
}

// Controller drives at most one active interaction over a shared field store.
// Starting a new interaction ends the previous one.
type Controller struct {
	store   *fields.Store
	view    *canvas.Model
	target  EventTarget
	preview bool
	state   State
	scope   *scope
	onEnd   func(State)
}

func NewController(store *fields.Store, view *canvas.Model, target EventTarget) *Controller {
	return &Controller{store: store, view: view, target: target}
}

func (c *Controller) State() State { return c.state }

func (c *Controller) Active() bool { return c.state.Mode != Idle }

// OnEnd registers a callback invoked with the final state whenever an
// interaction finishes, on any exit path.
func (c *Controller) OnEnd(fn func(State)) { c.onEnd = fn }

// SetPreview toggles preview mode. Preview disables all mutation, so entering
// it ends any interaction in flight.
func (c *Controller) SetPreview(on bool) {
	c.preview = on
	if on {
		c.end()
	}
}

func (c *Controller) Preview() bool { return c.preview }

// PointerDown starts dragging (TargetBody) or resizing (TargetResizeHandle)
// field id. It reports whether an interaction started.
func (c *Controller) PointerDown(id string, target Target, ev PointerEvent) bool {
	c.end()
	if c.preview {
		return false
	}
	var mode Mode
	switch target {
	case TargetBody:
		mode = Dragging
	case TargetResizeHandle:
		mode = Resizing
	default:
		return false
	}
	f, ok := c.store.Field(id)
	if !ok {
		return false
	}
	c.store.SelectField(id)
	c.state = State{
		Mode:         mode,
		FieldID:      id,
		StartPointer: ev,
		StartX:       f.Position.X,
		StartY:       f.Position.Y,
		StartWidth:   f.Position.Width,
		StartHeight:  f.Position.Height,
	}

	sc := &scope{}
	sc.add(c.target.Listen(EventMove, c.PointerMove))
	sc.add(c.target.Listen(EventUp, c.PointerUp))
	sc.add(c.target.Listen(EventLeave, func(PointerEvent) { c.PointerLeave() }))
	c.scope = sc
	return true
}

// PointerMove applies the displacement since pointer-down. The visual delta
// is converted to canonical units so geometry stays zoom independent.
func (c *Controller) PointerMove(ev PointerEvent) {
	if c.state.Mode == Idle {
		return
	}
	f, ok := c.store.Field(c.state.FieldID)
	if !ok {
		c.end()
		return
	}
	dx, dy := c.view.CanonicalDelta(ev.X-c.state.StartPointer.X, ev.Y-c.state.StartPointer.Y)
	switch c.state.Mode {
	case Dragging:
		c.store.MoveField(f.ID, c.state.StartX+dx-f.Position.X, c.state.StartY+dy-f.Position.Y)
	case Resizing:
		c.store.ResizeField(f.ID, c.state.StartWidth+dx-f.Position.Width, c.state.StartHeight+dy-f.Position.Height)
	}
}

func (c *Controller) PointerUp(ev PointerEvent) {
	if c.state.Mode == Idle {
		return
	}
	c.PointerMove(ev)
	c.end()
}

func (c *Controller) PointerLeave() { c.end() }

// Close releases everything the controller holds; hosts call it on unmount.
func (c *Controller) Close() { c.end() }

func (c *Controller) end() {
	c.scope.release()
	c.scope = nil
	if c.state.Mode == Idle {
		return
	}
	final := c.state
	c.state = State{}
	if c.onEnd != nil {
		c.onEnd(final)
	}
}
