package crawlstate

import (
	"container/heap"

	"github.com/nishaddevendra/webauditor/internal/auditmodel"
)

// priorityQueue is a container/heap realization of spec.md's "array with
// linear insertion" priority queue (spec §9 Design Notes: "a binary-heap
// implementation is a drop-in replacement"), ordered by (depth asc,
// discoveredAt asc) — grounded on the PQueue/Item pattern in
// other_examples/dbc24754_iugstav-ipasques__devto.go.go.
type priorityQueue []*auditmodel.QueueItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].Depth == pq[j].Depth {
		return pq[i].DiscoveredAt < pq[j].DiscoveredAt
	}
	return pq[i].Depth < pq[j].Depth
}

func (pq priorityQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *priorityQueue) Push(x any) {
	*pq = append(*pq, x.(*auditmodel.QueueItem))
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return item
}

var _ = heap.Interface(&priorityQueue{})
