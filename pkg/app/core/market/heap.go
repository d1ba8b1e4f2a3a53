package market

import (
	"container/heap"
	"sort"
)

// offerHeap holds offer pointers. Only the root is guaranteed extremal;
// never read positions other than 0 as if the slice were sorted.
type offerHeap struct {
	items  []*offer
	before func(a, b *offer) bool
}

func (h offerHeap) Len() int           { return len(h.items) }
func (h offerHeap) Less(i, j int) bool { return h.before(h.items[i], h.items[j]) }
func (h offerHeap) Swap(i, j int)      { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *offerHeap) Push(x interface{}) {
	h.items = append(h.items, x.(*offer))
}

func (h *offerHeap) Pop() interface{} {
	old := h.items
	n := len(old)
	o := old[n-1]
	old[n-1] = nil
	h.items = old[:n-1]
	return o
}

// cheapestFirst orders sellers: lowest rate first, then arrival.
func cheapestFirst(a, b *offer) bool {
	if a.rate != b.rate {
		return a.rate < b.rate
	}
	return a.seq < b.seq
}

// dearestFirst orders buyers: highest rate first, then arrival.
func dearestFirst(a, b *offer) bool {
	if a.rate != b.rate {
		return a.rate > b.rate
	}
	return a.seq < b.seq
}

// offerQueue wraps offerHeap with the container/heap calls the market needs.
type offerQueue struct {
	h offerHeap
}

func newSupplyQueue() *offerQueue {
	return &offerQueue{h: offerHeap{before: cheapestFirst}}
}

func newDemandQueue() *offerQueue {
	return &offerQueue{h: offerHeap{before: dearestFirst}}
}

func (q *offerQueue) Len() int { return q.h.Len() }

func (q *offerQueue) push(o *offer) { heap.Push(&q.h, o) }

// peek returns the priority offer without removing it.
func (q *offerQueue) peek() *offer {
	if q.h.Len() == 0 {
		return nil
	}
	return q.h.items[0]
}

// pop removes and returns the priority offer.
func (q *offerQueue) pop() *offer {
	if q.h.Len() == 0 {
		return nil
	}
	return heap.Pop(&q.h).(*offer)
}

// sorted returns snapshots in priority order. It sorts a copy with the
// heap's own ordering and leaves the heap untouched.
func (q *offerQueue) sorted() []OfferView {
	cp := make([]*offer, len(q.h.items))
	copy(cp, q.h.items)
	sort.Slice(cp, func(i, j int) bool { return q.h.before(cp[i], cp[j]) })

	out := make([]OfferView, len(cp))
	for i, o := range cp {
		out[i] = o.view()
	}
	return out
}
