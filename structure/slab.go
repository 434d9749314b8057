package structure

// Handle identifies a slot in a Slab. A Handle packs the slot index with
// a generation counter, so a handle kept across Free of its slot resolves
// to nil instead of aliasing whatever record reuses the slot. The zero
// Handle is never valid.
type Handle uint64

// HandleInvalid is the zero Handle; Slab.Get returns nil for it.
const HandleInvalid Handle = 0

func makeHandle(index uint32, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(index+1))
}

func (h Handle) index() uint32 { return uint32(h) - 1 }
func (h Handle) gen() uint32   { return uint32(h >> 32) }

type slabSlot[T any] struct {
	val  T
	gen  uint32
	live bool
	next int32 // free-list link, -1 terminates
}

// Slab is a fixed-capacity arena. All slots are allocated up front; Alloc
// and Free only move slots between the free list and the live set, so the
// hot path never touches the Go allocator and capacity never grows.
type Slab[T any] struct {
	slots    []slabSlot[T]
	freeHead int32
	live     int
}

// NewSlab creates a slab holding at most capacity records.
func NewSlab[T any](capacity int) *Slab[T] {
	if capacity <= 0 {
		panic("structure: slab capacity must be positive")
	}
	s := &Slab[T]{
		slots:    make([]slabSlot[T], capacity),
		freeHead: 0,
	}
	for i := range s.slots {
		s.slots[i].gen = 1
		s.slots[i].next = int32(i) + 1
	}
	s.slots[capacity-1].next = -1
	return s
}

// Alloc claims a free slot and returns its handle and a pointer to the
// zeroed record. ok is false when the slab is exhausted.
func (s *Slab[T]) Alloc() (Handle, *T, bool) {
	if s.freeHead < 0 {
		return HandleInvalid, nil, false
	}
	i := s.freeHead
	slot := &s.slots[i]
	s.freeHead = slot.next
	slot.live = true
	var zero T
	slot.val = zero
	s.live++
	return makeHandle(uint32(i), slot.gen), &slot.val, true
}

// Get resolves a handle to its record. It returns nil for HandleInvalid,
// for handles whose slot has been freed since, and for out-of-range
// handles.
func (s *Slab[T]) Get(h Handle) *T {
	if h == HandleInvalid {
		return nil
	}
	i := h.index()
	if int(i) >= len(s.slots) {
		return nil
	}
	slot := &s.slots[i]
	if !slot.live || slot.gen != h.gen() {
		return nil
	}
	return &slot.val
}

// Free returns the slot behind h to the free list and invalidates every
// outstanding handle to it. Freeing a stale or invalid handle is a no-op
// and reports false.
func (s *Slab[T]) Free(h Handle) bool {
	if s.Get(h) == nil {
		return false
	}
	i := int32(h.index())
	slot := &s.slots[i]
	slot.live = false
	slot.gen++
	slot.next = s.freeHead
	s.freeHead = i
	s.live--
	return true
}

// Len returns the number of live records.
func (s *Slab[T]) Len() int { return s.live }

// Cap returns the fixed capacity.
func (s *Slab[T]) Cap() int { return len(s.slots) }
