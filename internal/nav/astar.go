// Package nav finds shortest paths over a world's free-cell adjacency graph.
package nav

import (
	"container/heap"
	"math"

	"github.com/Garsondee/Skirmish/internal/world"
)

// Infinity is the distance reported for an unreachable goal.
const Infinity = math.MaxInt

// Mode selects what a search returns.
type Mode uint8

const (
	// ModeDistance returns only the edge count.
	ModeDistance Mode = iota
	// ModePath returns the cell sequence as well.
	ModePath
)

// Result is the outcome of Find. Path runs from the goal back to the start,
// both inclusive; it is nil in ModeDistance or when Found is false.
type Result struct {
	Found    bool
	Distance int
	Path     []*world.Cell
}

// Distance returns the number of steps on a shortest path, or Infinity.
func Distance(w *world.World, start, goal *world.Cell) int {
	return Find(w, start, goal, ModeDistance).Distance
}

// Path returns the shortest path from goal back to start and whether one exists.
func Path(w *world.World, start, goal *world.Cell) ([]*world.Cell, bool) {
	r := Find(w, start, goal, ModePath)
	return r.Path, r.Found
}

type openNode struct {
	cell  *world.Cell
	f     int
	order int // insertion counter, breaks f ties
	index int // heap index
}

type openList []*openNode

func (ol openList) Len() int { return len(ol) }
func (ol openList) Less(i, j int) bool {
	if ol[i].f != ol[j].f {
		return ol[i].f < ol[j].f
	}
	return ol[i].order < ol[j].order
}
func (ol openList) Swap(i, j int)       { ol[i], ol[j] = ol[j], ol[i]; ol[i].index = i; ol[j].index = j }
func (ol *openList) Push(x interface{}) { n := x.(*openNode); n.index = len(*ol); *ol = append(*ol, n) }
func (ol *openList) Pop() interface{} {
	old := *ol
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*ol = old[:len(old)-1]
	return n
}

// Find runs A* from start to goal with unit step cost and a Manhattan
// heuristic. Edges come from the cells' cached neighbour lists, so occupied
// cells and walls are never entered; the start cell itself may be occupied.
// The search succeeds only when the goal is dequeued.
func Find(w *world.World, start, goal *world.Cell, mode Mode) Result {
	key := func(c *world.Cell) int { return c.Y*w.Width() + c.X }
	goalPt := goal.Point()
	h := func(c *world.Cell) int { return world.Manhattan(c.Point(), goalPt) }

	g := map[int]int{key(start): 0}
	cameFrom := map[int]*world.Cell{}
	root := &openNode{cell: start, f: h(start)}
	pending := map[int]*openNode{key(start): root}

	counter := 0
	ol := &openList{root}
	heap.Init(ol)

	for ol.Len() > 0 {
		cur := heap.Pop(ol).(*openNode).cell
		ck := key(cur)
		delete(pending, ck)

		if cur == goal {
			r := Result{Found: true, Distance: g[ck]}
			if mode == ModePath {
				r.Path = buildPath(cameFrom, goal, key)
			}
			return r
		}

		for _, n := range cur.Neighbours() {
			nk := key(n)
			tentative := g[ck] + 1
			if old, ok := g[nk]; ok && tentative >= old {
				continue
			}
			cameFrom[nk] = cur
			g[nk] = tentative
			if node, ok := pending[nk]; ok {
				node.f = tentative + h(n)
				heap.Fix(ol, node.index)
				continue
			}
			counter++
			node := &openNode{cell: n, f: tentative + h(n), order: counter}
			heap.Push(ol, node)
			pending[nk] = node
		}
	}
	return Result{Distance: Infinity}
}

// buildPath follows predecessors from goal back to the start.
func buildPath(cameFrom map[int]*world.Cell, goal *world.Cell, key func(*world.Cell) int) []*world.Cell {
	path := []*world.Cell{goal}
	for cur := goal; ; {
		prev, ok := cameFrom[key(cur)]
		if !ok {
			return path
		}
		path = append(path, prev)
		cur = prev
	}
}
