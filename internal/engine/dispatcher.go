package engine

// Dispatcher is a synchronous InputSource. Events are delivered to
// listeners in subscription order on the caller's goroutine.
type Dispatcher struct {
	next      int
	listeners map[int]Listener
	order     []int
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{listeners: make(map[int]Listener)}
}

// Subscribe adds l and returns a function that removes it.
func (d *Dispatcher) Subscribe(l Listener) func() {
	id := d.next
	d.next++
	d.listeners[id] = l
	d.order = append(d.order, id)
	return func() {
		if _, ok := d.listeners[id]; !ok {
			return
		}
		delete(d.listeners, id)
		for i, v := range d.order {
			if v == id {
				d.order = append(d.order[:i], d.order[i+1:]...)
				break
			}
		}
	}
}

// Len returns the number of subscribed listeners.
func (d *Dispatcher) Len() int { return len(d.order) }

func (d *Dispatcher) each(fn func(Listener)) {
	for _, id := range append([]int(nil), d.order...) {
		if l, ok := d.listeners[id]; ok {
			fn(l)
		}
	}
}

func (d *Dispatcher) PointerDown(ev PointerEvent)   { d.each(func(l Listener) { l.PointerDown(ev) }) }
func (d *Dispatcher) PointerMove(ev PointerEvent)   { d.each(func(l Listener) { l.PointerMove(ev) }) }
func (d *Dispatcher) PointerUp(ev PointerEvent)     { d.each(func(l Listener) { l.PointerUp(ev) }) }
func (d *Dispatcher) PointerLeave(ev PointerEvent)  { d.each(func(l Listener) { l.PointerLeave(ev) }) }
func (d *Dispatcher) PointerCancel(ev PointerEvent) { d.each(func(l Listener) { l.PointerCancel(ev) }) }
func (d *Dispatcher) Wheel(ev WheelEvent)           { d.each(func(l Listener) { l.Wheel(ev) }) }

// KeyDown reports whether any listener consumed the key.
func (d *Dispatcher) KeyDown(ev KeyEvent) bool {
	handled := false
	d.each(func(l Listener) { handled = l.KeyDown(ev) || handled })
	return handled
}

func (d *Dispatcher) KeyUp(ev KeyEvent) bool {
	handled := false
	d.each(func(l Listener) { handled = l.KeyUp(ev) || handled })
	return handled
}
