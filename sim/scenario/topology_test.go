package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForwardingLoops(t *testing.T) {
	tests := []struct {
		name    string
		servers []ServerSpec
		want    [][]string
	}{
		{
			name:    "chain to sink",
			servers: []ServerSpec{{Name: "a", Destination: "b"}, {Name: "b", Destination: "sink"}},
			want:    nil,
		},
		{
			name:    "self loop",
			servers: []ServerSpec{{Name: "a", Destination: "a"}},
			want:    [][]string{{"a"}},
		},
		{
			name: "three-server ring behind an entry server",
			servers: []ServerSpec{
				{Name: "entry", Destination: "c"},
				{Name: "c", Destination: "d"},
				{Name: "d", Destination: "e"},
				{Name: "e", Destination: "c"},
			},
			want: [][]string{{"c", "d", "e"}},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, forwardingLoops(tc.servers))
		})
	}
}

func TestForwardingGraph_EdgesOnlyBetweenServers(t *testing.T) {
	g := forwardingGraph([]ServerSpec{{Name: "a", Destination: "b"}, {Name: "b", Destination: "sink"}})
	assert.Equal(t, 2, g.Nodes().Len())
	assert.Equal(t, 1, g.Edges().Len())
	assert.True(t, g.HasEdgeFromTo(0, 1))
}
