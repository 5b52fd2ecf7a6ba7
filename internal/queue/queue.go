// Package queue provides the binary heaps used by graph search.
package queue

// Item is a graph node paired with its distance to the query.
type Item struct {
	Node     uint32
	Distance float32
}

// Queue is a value-based binary heap of Items ordered by Distance.
type Queue struct {
	max   bool
	items []Item
}

// NewMin returns a heap whose top is the nearest item.
func NewMin(capacity int) *Queue {
	return &Queue{items: make([]Item, 0, capacity)}
}

// NewMax returns a heap whose top is the farthest item.
func NewMax(capacity int) *Queue {
	return &Queue{max: true, items: make([]Item, 0, capacity)}
}

// Len returns the number of items in the heap.
func (q *Queue) Len() int { return len(q.items) }

// Reset empties the heap, keeping its backing storage.
func (q *Queue) Reset() { q.items = q.items[:0] }

// Top returns the top item without removing it.
func (q *Queue) Top() (Item, bool) {
	if len(q.items) == 0 {
		return Item{}, false
	}
	return q.items[0], true
}

// Push inserts an item.
func (q *Queue) Push(item Item) {
	q.items = append(q.items, item)
	q.siftUp(len(q.items) - 1)
}

// PushBounded inserts item into a heap holding at most capacity items.
// On a full max-heap the farthest item is replaced when item is nearer;
// on a full min-heap the nearest item is replaced when item is farther.
func (q *Queue) PushBounded(item Item, capacity int) {
	if len(q.items) < capacity {
		q.Push(item)
		return
	}
	top := q.items[0]
	if (q.max && item.Distance < top.Distance) || (!q.max && item.Distance > top.Distance) {
		q.items[0] = item
		q.siftDown(0)
	}
}

// Pop removes and returns the top item.
func (q *Queue) Pop() (Item, bool) {
	n := len(q.items)
	if n == 0 {
		return Item{}, false
	}
	root := q.items[0]
	q.items[0] = q.items[n-1]
	q.items = q.items[:n-1]
	if len(q.items) > 0 {
		q.siftDown(0)
	}
	return root, true
}

// Sorted drains the heap and returns its items nearest first.
func (q *Queue) Sorted() []Item {
	out := make([]Item, len(q.items))
	if q.max {
		for i := len(out) - 1; i >= 0; i-- {
			out[i], _ = q.Pop()
		}
	} else {
		for i := range out {
			out[i], _ = q.Pop()
		}
	}
	return out
}

func (q *Queue) less(i, j int) bool {
	if q.max {
		return q.items[i].Distance > q.items[j].Distance
	}
	return q.items[i].Distance < q.items[j].Distance
}

func (q *Queue) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !q.less(i, p) {
			return
		}
		q.items[i], q.items[p] = q.items[p], q.items[i]
		i = p
	}
}

func (q *Queue) siftDown(i int) {
	n := len(q.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		if r := l + 1; r < n && q.less(r, l) {
			best = r
		}
		if !q.less(best, i) {
			return
		}
		q.items[i], q.items[best] = q.items[best], q.items[i]
		i = best
	}
}
