package framegraph

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
)

// resourceKey identifies a logical resource across kinds.
type resourceKey struct {
	kind   ResourceKind
	handle uint32
}

// Compile runs every pass's Setup, orders the passes, computes transitions
// and resolves physical resources.
//
// A dependency cycle is not fatal: HasCycle reports it and the passes keep
// their declaration order. With WithStrictCycles the cycle is also returned
// as ErrCyclicDependency.
func (g *Graph) Compile() error {
	log := Logger()

	for _, p := range g.passes {
		p.usages = p.usages[:0]
		p.transitions = nil
		p.hasTarget = false
		p.color, p.depth = 0, 0
		p.viewport = Viewport{}
		if p.desc.Setup == nil {
			continue
		}
		b := &Builder{g: g, p: p, active: true}
		p.desc.Setup(b)
		b.active = false
	}

	succ, indegree, back := g.buildEdges()
	order, ok := topoSort(succ, indegree)
	if ok && closesCycle(succ, indegree, back) {
		ok = false
	}
	g.cycle = !ok
	if !ok {
		order = declarationOrder(len(g.passes))
		log.Warn("framegraph: dependency cycle, using declaration order",
			"passes", len(g.passes), "edges", g.edges)
	}
	g.order = order
	g.compiled = true

	g.buildTransitions()
	g.allocateResources()

	if log.Enabled(context.Background(), slog.LevelDebug) {
		log.Debug("framegraph: compiled", "passes", len(g.passes), "edges", g.edges,
			"order", g.orderNames(), "cycle", g.cycle)
	}

	if g.cycle && g.strictCycles {
		return fmt.Errorf("compile %d passes: %w", len(g.passes), ErrCyclicDependency)
	}
	return nil
}

// buildEdges derives pass dependencies from the usage records.
//
// Walking passes in declaration order, every use of a resource depends on
// its most recent writer. The last-writer map is updated after all of a
// pass's uses are processed, so a pass never depends on itself. Only these
// forward edges order the passes.
//
// A pure read of a resource with no earlier writer consumes the previous
// frame's content, which the first later writer of that resource replaces.
// Those pairs are returned as back edges: they never order passes, but a
// back edge closing a path of forward edges is a mutual dependency.
func (g *Graph) buildEdges() (succ [][]int, indegree []int, back [][2]int) {
	n := len(g.passes)
	succ = make([][]int, n)
	indegree = make([]int, n)
	seen := make(map[[2]int]struct{})

	addEdge := func(from, to int) {
		if from == to {
			return
		}
		k := [2]int{from, to}
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		if from > to {
			back = append(back, k)
			return
		}
		succ[from] = append(succ[from], to)
		indegree[to]++
	}

	firstWriter := make(map[resourceKey][]int)
	for i, p := range g.passes {
		for _, u := range p.usages {
			if u.Usage.Writes() {
				k := resourceKey{u.Kind, u.Handle}
				firstWriter[k] = append(firstWriter[k], i)
			}
		}
	}

	lastWriter := make(map[resourceKey]int)
	for i, p := range g.passes {
		for _, u := range p.usages {
			k := resourceKey{u.Kind, u.Handle}
			if w, ok := lastWriter[k]; ok {
				addEdge(w, i)
				continue
			}
			if u.Usage.Writes() {
				continue
			}
			for _, w := range firstWriter[k] {
				if w > i {
					addEdge(w, i)
					break
				}
			}
		}
		for _, u := range p.usages {
			if u.Usage.Writes() {
				lastWriter[resourceKey{u.Kind, u.Handle}] = i
			}
		}
	}

	g.edges = 0
	for i := range succ {
		slices.Sort(succ[i])
		g.edges += len(succ[i])
	}
	return succ, indegree, back
}

// closesCycle reports whether adding the back edges to the forward graph
// makes it cyclic.
func closesCycle(succ [][]int, indegree []int, back [][2]int) bool {
	if len(back) == 0 {
		return false
	}
	all := make([][]int, len(succ))
	for i := range succ {
		all[i] = slices.Clone(succ[i])
	}
	deg := slices.Clone(indegree)
	for _, e := range back {
		all[e[0]] = append(all[e[0]], e[1])
		deg[e[1]]++
	}
	_, ok := topoSort(all, deg)
	return !ok
}

// topoSort is Kahn's algorithm with a FIFO queue seeded and fed in
// ascending index order, so ready passes keep declaration order. It
// reports false when a cycle leaves passes unordered.
func topoSort(succ [][]int, indegree []int) ([]int, bool) {
	n := len(indegree)
	deg := slices.Clone(indegree)
	queue := make([]int, 0, n)
	for i := range n {
		if deg[i] == 0 {
			queue = append(queue, i)
		}
	}

	order := make([]int, 0, n)
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		order = append(order, i)
		for _, j := range succ[i] {
			deg[j]--
			if deg[j] == 0 {
				queue = append(queue, j)
			}
		}
	}
	return order, len(order) == n
}

// buildTransitions walks the chosen order and emits a transition wherever a
// resource's usage differs from its previous use. First uses emit nothing.
func (g *Graph) buildTransitions() {
	last := make(map[resourceKey]Usage)
	for _, i := range g.order {
		p := g.passes[i]
		for _, u := range p.usages {
			k := resourceKey{u.Kind, u.Handle}
			if prev, ok := last[k]; ok && prev != u.Usage {
				p.transitions = append(p.transitions, Transition{
					Kind:   u.Kind,
					Handle: u.Handle,
					Before: prev,
					After:  u.Usage,
				})
			}
			last[k] = u.Usage
		}
	}
}

func (g *Graph) orderNames() []string {
	names := make([]string, len(g.order))
	for i, idx := range g.order {
		names[i] = g.passes[idx].desc.Name
	}
	return names
}
