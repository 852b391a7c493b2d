package knowledge

import "container/heap"

// expiryQueue is a min-heap of entries ordered by dateSeen. Each entry keeps
// its own index in queuePlace so it can be fixed or removed in O(log n).
type expiryQueue struct {
	items []*entry
}

func (q *expiryQueue) Len() int { return len(q.items) }

func (q *expiryQueue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if a.dateSeen.Equal(b.dateSeen) {
		return a.ob.ID().Less(b.ob.ID())
	}
	return a.dateSeen.Before(b.dateSeen)
}

func (q *expiryQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.items[i].queuePlace = i
	q.items[j].queuePlace = j
}

func (q *expiryQueue) Push(x any) {
	e := x.(*entry)
	e.queuePlace = len(q.items)
	q.items = append(q.items, e)
}

func (q *expiryQueue) Pop() any {
	n := len(q.items)
	e := q.items[n-1]
	q.items[n-1] = nil
	q.items = q.items[:n-1]
	e.queuePlace = -1
	return e
}

func (q *expiryQueue) add(e *entry)    { heap.Push(q, e) }
func (q *expiryQueue) fix(e *entry)    { heap.Fix(q, e.queuePlace) }
func (q *expiryQueue) remove(e *entry) { heap.Remove(q, e.queuePlace) }

func (q *expiryQueue) oldest() *entry {
	if len(q.items) == 0 {
		return nil
	}
	return q.items[0]
}
