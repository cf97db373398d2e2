package validation

import (
	"sort"
	"strings"
)

// detectCycles finds every distinct cycle in a directed graph using a
// three-color depth-first search. The traversal uses an explicit frame stack
// rather than recursion because both workflow and handoff graphs are
// user-authored and may be arbitrarily deep. Every node is tried as a root so
// cycles in disconnected components are still found. Self-loops are the
// caller's concern; edges are walked exactly as given.
//
// Each returned cycle starts at the back-edge target, e.g. ["a", "b", "a"] for
// a -> b -> a. Cycles are deduplicated by rotation so the same loop reached
// from two roots is reported once.
func detectCycles(edges map[string][]string) [][]string {
	const (
		white = iota // unvisited
		gray         // in progress, on the current DFS path
		black        // done
	)

	nodes := make([]string, 0, len(edges))
	for node := range edges {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)

	color := make(map[string]int, len(nodes))

	type frame struct {
		node string
		next int
	}

	var cycles [][]string
	seen := make(map[string]bool)

	for _, root := range nodes {
		if color[root] != white {
			continue
		}

		stack := []frame{{node: root}}
		var path []string

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next == 0 {
				color[top.node] = gray
				path = append(path, top.node)
			}

			neighbors := edges[top.node]
			descended := false
			for top.next < len(neighbors) {
				neighbor := neighbors[top.next]
				top.next++

				switch color[neighbor] {
				case white:
					stack = append(stack, frame{node: neighbor})
					descended = true
				case gray:
					// Back edge: the cycle is the path suffix from
					// neighbor to the current node, closed by neighbor.
					start := 0
					for i, n := range path {
						if n == neighbor {
							start = i
							break
						}
					}
					cycle := append(append([]string{}, path[start:]...), neighbor)
					if key := cycleKey(cycle); !seen[key] {
						seen[key] = true
						cycles = append(cycles, cycle)
					}
				}
				if descended {
					break
				}
			}

			if !descended && top.next >= len(neighbors) {
				color[top.node] = black
				path = path[:len(path)-1]
				stack = stack[:len(stack)-1]
			}
		}
	}

	return cycles
}

// cycleKey normalises a cycle to a rotation-independent identity. The closing
// repeat of the first node is dropped, then the cycle is rotated so the
// smallest member comes first.
func cycleKey(cycle []string) string {
	members := cycle[:len(cycle)-1]
	if len(members) == 0 {
		return ""
	}

	smallest := 0
	for i, m := range members {
		if m < members[smallest] {
			smallest = i
		}
	}

	rotated := make([]string, 0, len(members))
	for i := range members {
		rotated = append(rotated, members[(smallest+i)%len(members)])
	}
	return strings.Join(rotated, "\x00")
}

// renderCycle renders a cycle as an arrow-joined path for issue messages.
func renderCycle(cycle []string) string {
	return strings.Join(cycle, " -> ")
}
