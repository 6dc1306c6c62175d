package propagator

import "container/heap"

// Handle identifies an entry in a FiringQueue across sift-up/down and
// survives until that entry is removed. It is the "stable handle" spec §9
// ("Heap handles") requires the mutable min-heap to expose.
type Handle int

// noHandle is the sentinel stored in a transition record for a clock that
// is bookkept but not currently queued (spec: "Disabled").
const noHandle Handle = -1

// queueItem is one entry in the underlying container/heap; handle is the
// stable identity container/heap's Swap must keep in sync with index.
type queueItem struct {
	time   float64
	clock  Clock
	handle Handle
}

// firingHeap implements heap.Interface, following the same
// Len/Less/Swap/Push/Pop shape as the teacher's eventHeap
// (simulator.eventHeap in the retrieval pack), extended with an
// index-by-handle map so entries can be located for decrease-key and
// delete-by-handle in O(log N) instead of a linear scan.
type firingHeap struct {
	items []*queueItem
	index map[Handle]int // handle -> current position in items
}

func (h firingHeap) Len() int            { return len(h.items) }
func (h firingHeap) Less(i, j int) bool  { return h.items[i].time < h.items[j].time }
func (h firingHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.index[h.items[i].handle] = i
	h.index[h.items[j].handle] = j
}

func (h *firingHeap) Push(x interface{}) {
	it := x.(*queueItem)
	h.index[it.handle] = len(h.items)
	h.items = append(h.items, it)
}

func (h *firingHeap) Pop() interface{} {
	old := h.items
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	h.items = old[:n-1]
	delete(h.index, it.handle)
	return it
}

// FiringQueue is the mutable min-heap keyed by (time, clock) that spec §3
// calls the firing queue: push, peek, decrease/increase key via Update, and
// delete-by-handle via Remove, all O(log N).
//
// It substitutes a direct remove_by_handle (via container/heap.Remove) for
// the "decrease-key to -infinity then pop" trick spec §9 describes as the
// reference technique; spec §9 explicitly allows this substitution.
type FiringQueue struct {
	h      firingHeap
	nextID Handle
}

// NewFiringQueue constructs an empty firing queue.
func NewFiringQueue() *FiringQueue {
	q := &FiringQueue{h: firingHeap{index: make(map[Handle]int)}}
	heap.Init(&q.h)
	return q
}

// Push inserts (time, clock) and returns its handle.
func (q *FiringQueue) Push(time float64, clock Clock) Handle {
	h := q.nextID
	q.nextID++
	heap.Push(&q.h, &queueItem{time: time, clock: clock, handle: h})
	return h
}

// Update changes the (time, clock) stored at handle and re-heapifies around
// it; this is the decrease/increase-key operation.
func (q *FiringQueue) Update(handle Handle, time float64, clock Clock) {
	idx, ok := q.h.index[handle]
	assertf(ok, "firingqueue: update of unknown handle %d", handle)
	q.h.items[idx].time = time
	q.h.items[idx].clock = clock
	heap.Fix(&q.h, idx)
}

// Remove deletes the entry at handle and returns what it held.
func (q *FiringQueue) Remove(handle Handle) (time float64, clock Clock) {
	idx, ok := q.h.index[handle]
	assertf(ok, "firingqueue: remove of unknown handle %d", handle)
	it := heap.Remove(&q.h, idx).(*queueItem)
	return it.time, it.clock
}

// Peek returns the minimum-time entry without removing it. ok is false for
// an empty queue.
func (q *FiringQueue) Peek() (time float64, clock Clock, ok bool) {
	if len(q.h.items) == 0 {
		return 0, nil, false
	}
	top := q.h.items[0]
	return top.time, top.clock, true
}

// Len returns the number of queued entries.
func (q *FiringQueue) Len() int { return len(q.h.items) }
