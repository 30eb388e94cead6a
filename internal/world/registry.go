package world

// Registry is an insertion-ordered collection of live actors of one family.
//
// ForEach iterates a snapshot of the registration order, so entries inserted
// or erased by other code during a traversal never invalidate it and every
// actor is visited at most once per pass. The simulation passes still defer
// structural mutation: removals are collected into a side buffer during the
// visit phase and applied after ForEach returns.
type Registry[T Actor] struct {
	byID  map[int]T
	order []int
}

func NewRegistry[T Actor]() *Registry[T] {
	return &Registry[T]{byID: make(map[int]T)}
}

// Insert registers an actor under its ID. Re-inserting an existing ID
// replaces the entry but keeps its traversal position.
func (r *Registry[T]) Insert(a T) {
	id := a.Base().ID
	if _, ok := r.byID[id]; !ok {
		r.order = append(r.order, id)
	}
	r.byID[id] = a
}

// Get returns the actor with the given ID.
func (r *Registry[T]) Get(id int) (T, bool) {
	a, ok := r.byID[id]
	return a, ok
}

// Erase removes an actor. Safe to call for IDs not present.
func (r *Registry[T]) Erase(id int) {
	if _, ok := r.byID[id]; !ok {
		return
	}
	delete(r.byID, id)
	for i, cur := range r.order {
		if cur == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of registered actors.
func (r *Registry[T]) Len() int { return len(r.byID) }

// ForEach visits every actor in registration order.
func (r *Registry[T]) ForEach(fn func(T)) {
	snapshot := make([]int, len(r.order))
	copy(snapshot, r.order)
	for _, id := range snapshot {
		if a, ok := r.byID[id]; ok {
			fn(a)
		}
	}
}

// Clear removes every actor.
func (r *Registry[T]) Clear() {
	r.byID = make(map[int]T)
	r.order = r.order[:0]
}

// FindAliveInRange returns the live actors within a Chebyshev radius of pos
// on the same layer, in registration order. The slice is ephemeral: valid
// only for the current tick and never owned by the caller.
func (r *Registry[T]) FindAliveInRange(pos Position, radius int) []T {
	var out []T
	for _, id := range r.order {
		a, ok := r.byID[id]
		if !ok {
			continue
		}
		b := a.Base()
		if !b.Alive || b.Pos.Z != pos.Z {
			continue
		}
		if Chebyshev(b.Pos, pos) <= radius {
			out = append(out, a)
		}
	}
	return out
}
