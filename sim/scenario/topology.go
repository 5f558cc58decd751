package scenario

import (
	"errors"
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// forwardingGraph returns the directed server-to-server forwarding graph.
// Node ids are indices into servers; destinations that are sinks or unknown
// add no edge.
func forwardingGraph(servers []ServerSpec) *simple.DirectedGraph {
	g := simple.NewDirectedGraph()
	index := make(map[string]int64, len(servers))
	for i, srv := range servers {
		if _, dup := index[srv.Name]; dup {
			continue
		}
		index[srv.Name] = int64(i)
		g.AddNode(simple.Node(i))
	}
	for i, srv := range servers {
		if srv.Destination == "" {
			continue
		}
		to, ok := index[srv.Destination]
		if !ok || to == int64(i) {
			continue
		}
		g.SetEdge(simple.Edge{F: simple.Node(i), T: simple.Node(to)})
	}
	return g
}

// forwardingLoops lists, by server name, every set of servers whose
// destinations lead back into the set. Packets entering such a set would
// never reach a terminal hop.
func forwardingLoops(servers []ServerSpec) [][]string {
	var loops [][]string
	for _, srv := range servers {
		if srv.Name != "" && srv.Destination == srv.Name {
			loops = append(loops, []string{srv.Name})
		}
	}
	_, err := topo.Sort(forwardingGraph(servers))
	var unorderable topo.Unorderable
	if !errors.As(err, &unorderable) {
		return loops
	}
	for _, component := range unorderable {
		loops = append(loops, nodeNames(servers, component))
	}
	return loops
}

func nodeNames(servers []ServerSpec, nodes []graph.Node) []string {
	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		names = append(names, servers[n.ID()].Name)
	}
	slices.Sort(names)
	return names
}
