package engine

// listeners is an ordered set of callbacks that can detach themselves.
type listeners[T any] struct {
	entries []listener[T]
	next    int
}

type listener[T any] struct {
	fn func(T)
	id int
}

func (l *listeners[T]) add(fn func(T)) func() {
	id := l.next
	l.next++
	l.entries = append(l.entries, listener[T]{id: id, fn: fn})

	return func() {
		for i, e := range l.entries {
			if e.id == id {
				l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
				return
			}
		}
	}
}

func (l *listeners[T]) emit(v T) {
	// copy so a callback may detach itself
	for _, e := range append([]listener[T](nil), l.entries...) {
		e.fn(v)
	}
}

func (l *listeners[T]) len() int {
	return len(l.entries)
}
