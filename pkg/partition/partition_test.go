package partition

import (
	"errors"
	"testing"

	"github.com/dd0wney/cluso-costar/pkg/graph"
)

func pathGraph(ids ...string) *graph.Graph {
	g := graph.New()
	for i := 0; i+1 < len(ids); i++ {
		g.AddEdge(ids[i], ids[i+1])
	}
	if len(ids) == 1 {
		g.AddNode(ids[0])
	}
	return g
}

func TestSortedDescendingStable(t *testing.T) {
	p := Partition{{"a"}, {"b", "c", "d"}, {"e", "f"}, {"g", "h"}}

	sorted := p.Sorted()

	wantFirst := []string{"b", "e", "g", "a"}
	for i, c := range sorted {
		if c[0] != wantFirst[i] {
			t.Errorf("Community %d starts with %s, want %s", i, c[0], wantFirst[i])
		}
	}
	if p[0][0] != "a" {
		t.Error("Sorted must not reorder the receiver")
	}
}

func TestMembership(t *testing.T) {
	m := Partition{{"a", "b"}, {"c"}}.Membership()
	if m["a"] != 0 || m["b"] != 0 || m["c"] != 1 {
		t.Errorf("Unexpected membership: %v", m)
	}
}

func TestEqualIgnoresOrder(t *testing.T) {
	p := Partition{{"b", "a"}, {"c"}}
	q := Partition{{"c"}, {"a", "b"}}
	r := Partition{{"a"}, {"b", "c"}}

	if !p.Equal(q) {
		t.Error("Expected p and q to be equal")
	}
	if p.Equal(r) {
		t.Error("Expected p and r to differ")
	}
}

func TestValidate(t *testing.T) {
	g := pathGraph("a", "b", "c", "d")

	tests := []struct {
		name    string
		p       Partition
		wantErr error
	}{
		{"valid", Partition{{"a", "b"}, {"c", "d"}}, nil},
		{"empty", Partition{}, ErrEmptyPartition},
		{"empty community", Partition{{"a", "b", "c", "d"}, {}}, ErrNotAPartition},
		{"overlap", Partition{{"a", "b"}, {"b", "c", "d"}}, ErrNotAPartition},
		{"missing node", Partition{{"a", "b"}, {"c"}}, ErrNotAPartition},
		{"unknown node", Partition{{"a", "b"}, {"c", "d", "z"}}, ErrNotAPartition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate(g)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
