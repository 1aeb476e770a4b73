package conform

// slot is one named vector held by a check.
type slot[V any] struct {
	name string
	v    V
	live bool
}

// scope owns the vectors a single check creates. Slots keep their first
// position so release order is stable when a name is reused.
type scope[V any] struct {
	h     *Tester[V]
	check string
	slots []*slot[V]
}

func (h *Tester[V]) newScope(check string) *scope[V] {
	return &scope[V]{h: h, check: check}
}

// set takes ownership of v under name. The name must not hold a live vector.
func (s *scope[V]) set(name string, v V) V {
	for _, sl := range s.slots {
		if sl.name != name {
			continue
		}
		if sl.live {
			panic("conform: " + name + " still holds a live vector")
		}
		sl.v = v
		sl.live = true
		return v
	}
	s.slots = append(s.slots, &slot[V]{name: name, v: v, live: true})
	return v
}

// free narrates and releases the vector held under name.
func (s *scope[V]) free(name string) {
	for _, sl := range s.slots {
		if sl.name == name && sl.live {
			s.release(sl)
			return
		}
	}
}

// freeAll releases every live vector in slot order. Safe to call twice.
func (s *scope[V]) freeAll() {
	for _, sl := range s.slots {
		if sl.live {
			s.release(sl)
		}
	}
}

func (s *scope[V]) release(sl *slot[V]) {
	sl.live = false
	s.h.say(s.check, "free(%s)\n", sl.name)
	s.h.app.Free(sl.v)
	var zero V
	sl.v = zero
}
