// Package navgraph holds the application navigation graph: a directed
// adjacency built from an externally supplied edge list, with bounded BFS
// distance, shortest-path, and neighbor queries.
package navgraph

// Unreachable is the fixed distance sentinel for unknown or empty
// endpoints and for targets outside the BFS depth bound.
const Unreachable = 99

// DefaultMaxDepth bounds BFS traversal.
const DefaultMaxDepth = 20

// Edge is one directed navigation step. No reverse edge is implied.
type Edge struct {
	From  string `yaml:"from" json:"from"`
	To    string `yaml:"to" json:"to"`
	Label string `yaml:"label,omitempty" json:"label,omitempty"`
}

// Graph is a directed adjacency over page/state ids. Parallel edges are
// permitted and preserved in insertion order; BFS ties between
// equal-length paths resolve to the first path in that order — stable for
// a fixed edge list, but otherwise arbitrary.
type Graph struct {
	edges    []Edge
	adj      map[string][]string
	nodes    map[string]bool
	inDegree map[string]int
	maxDepth int
}

// Option configures graph construction.
type Option func(*Graph)

// WithMaxDepth overrides the BFS depth bound.
func WithMaxDepth(depth int) Option {
	return func(g *Graph) {
		if depth > 0 {
			g.maxDepth = depth
		}
	}
}

// New builds a graph from a directed edge list. Both endpoints of every
// edge become known nodes.
func New(edges []Edge, opts ...Option) *Graph {
	g := &Graph{
		edges:    edges,
		adj:      make(map[string][]string),
		nodes:    make(map[string]bool),
		inDegree: make(map[string]int),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(g)
	}
	for _, e := range edges {
		g.adj[e.From] = append(g.adj[e.From], e.To)
		g.nodes[e.From] = true
		g.nodes[e.To] = true
		g.inDegree[e.To]++
	}
	return g
}

// Knows reports whether the node appears in the edge list.
func (g *Graph) Knows(node string) bool { return g.nodes[node] }

// Nodes returns the number of known nodes.
func (g *Graph) Nodes() int { return len(g.nodes) }

// Edges returns the edge list in insertion order.
func (g *Graph) Edges() []Edge { return g.edges }

// InDegree returns the inbound-edge count for a node (its popularity
// signal). Unknown nodes have degree 0.
func (g *Graph) InDegree(node string) int { return g.inDegree[node] }

// NeighborsOf returns the direct successors of a node in edge-insertion
// order, or an empty slice for unknown nodes. Parallel edges repeat.
func (g *Graph) NeighborsOf(node string) []string {
	return g.adj[node]
}

// Distance returns the minimum hop count from a to b: 0 when equal,
// Unreachable when either endpoint is empty or unknown, or when no path
// exists within the depth bound. Never panics.
func (g *Graph) Distance(a, b string) int {
	_, dist := g.bfs(a, b, false)
	return dist
}

// Path is a shortest-path result. Nodes is empty when Distance is the
// Unreachable sentinel; otherwise it runs from source to target inclusive
// and has Distance+1 elements.
type Path struct {
	Nodes    []string `json:"nodes,omitempty"`
	Distance int      `json:"distance"`
}

// ShortestPath runs the same bounded BFS as Distance and reconstructs the
// node sequence via parent back-pointers. ShortestPath(a,b).Distance
// always equals Distance(a,b).
func (g *Graph) ShortestPath(a, b string) Path {
	nodes, dist := g.bfs(a, b, true)
	return Path{Nodes: nodes, Distance: dist}
}

// bfs is the single traversal behind Distance and ShortestPath. Visited
// set and queue are call-local; the graph itself is never mutated.
func (g *Graph) bfs(a, b string, wantPath bool) ([]string, int) {
	if a == "" || b == "" || !g.nodes[a] || !g.nodes[b] {
		if a != "" && a == b && g.nodes[a] {
			return []string{a}, 0
		}
		return nil, Unreachable
	}
	if a == b {
		return []string{a}, 0
	}

	type item struct {
		node  string
		depth int
	}
	parent := map[string]string{a: ""}
	queue := []item{{a, 0}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= g.maxDepth {
			continue
		}
		for _, next := range g.adj[cur.node] {
			if _, seen := parent[next]; seen {
				continue
			}
			parent[next] = cur.node
			if next == b {
				if !wantPath {
					return nil, cur.depth + 1
				}
				return reconstruct(parent, a, b), cur.depth + 1
			}
			queue = append(queue, item{next, cur.depth + 1})
		}
	}
	return nil, Unreachable
}

func reconstruct(parent map[string]string, a, b string) []string {
	var rev []string
	for node := b; node != ""; node = parent[node] {
		rev = append(rev, node)
		if node == a {
			break
		}
	}
	nodes := make([]string, len(rev))
	for i, node := range rev {
		nodes[len(rev)-1-i] = node
	}
	return nodes
}
