package distributed

import (
	"fmt"
	"sync"
)

// Group is an in-process gather group: one Worker per simulated rank, all
// sharing a barrier. It mirrors the collective semantics of a multi-process
// all-gather closely enough to drive the loss engine in tests and
// single-machine multi-worker runs.
type Group struct {
	size    int
	mu      sync.Mutex
	cond    *sync.Cond
	phase   uint64
	arrived int
	buf     [][][]float64
}

// Worker is one rank's handle on the group.
type Worker struct {
	rank  int
	group *Group
}

// NewGroup creates size workers over a shared barrier. Every worker must call
// AllGather the same number of times; a missing participant blocks the round.
func NewGroup(size int) ([]*Worker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("distributed: group size must be positive, got %d", size)
	}

	g := &Group{size: size, buf: make([][][]float64, size)}
	g.cond = sync.NewCond(&g.mu)

	workers := make([]*Worker, size)
	for rank := range workers {
		workers[rank] = &Worker{rank: rank, group: g}
	}
	return workers, nil
}

func (w *Worker) Rank() int { return w.rank }

func (w *Worker) WorldSize() int { return w.group.size }

// AllGather deposits the local matrix, waits for every rank, and returns
// detached copies of all contributions ordered by rank. A second barrier
// holds the round open until every rank has copied, so a fast worker cannot
// overwrite a slot a slow worker is still reading.
func (w *Worker) AllGather(local [][]float64) ([][][]float64, error) {
	g := w.group

	g.mu.Lock()
	defer g.mu.Unlock()

	g.buf[w.rank] = local
	g.await()

	var err error
	want := len(g.buf[0])
	for rank, m := range g.buf {
		if len(m) != want {
			err = fmt.Errorf("distributed: rank %d contributed %d rows, rank 0 contributed %d", rank, len(m), want)
			break
		}
	}

	var gathered [][][]float64
	if err == nil {
		gathered = make([][][]float64, g.size)
		for rank, m := range g.buf {
			cp := make([][]float64, len(m))
			for i, row := range m {
				cp[i] = append([]float64(nil), row...)
			}
			gathered[rank] = cp
		}
	}

	g.await()
	if err != nil {
		return nil, err
	}
	return gathered, nil
}

// await blocks until all ranks of the current phase have arrived. Must be
// called with the group lock held.
func (g *Group) await() {
	g.arrived++
	if g.arrived == g.size {
		g.arrived = 0
		g.phase++
		g.cond.Broadcast()
		return
	}
	phase := g.phase
	for g.phase == phase {
		g.cond.Wait()
	}
}
