package layout

import (
	"fmt"
	"testing"

	"github.com/recera/mindcloud/pkg/graph"
)

// largePayload spreads n posts across the default topics and a handful of
// tags each, the shape of a blog with a long archive.
func largePayload(n int) *graph.Payload {
	categories := []string{"Software", "Writing", "Life"}
	tags := []string{"React", "Go", "Rust", "Vue", "Databases"}
	p := &graph.Payload{}
	for i := 0; i < n; i++ {
		p.Nodes = append(p.Nodes, graph.PayloadNode{
			ID:           fmt.Sprintf("post-%d", i),
			Slug:         fmt.Sprintf("post-%d", i),
			Title:        fmt.Sprintf("Post number %d", i),
			CategoryName: categories[i%len(categories)],
			TagNames:     []string{tags[i%len(tags)]},
		})
		if i > 0 {
			p.Links = append(p.Links, graph.PayloadLink{Source: p.Nodes[i-1].ID, Target: p.Nodes[i].ID})
		}
	}
	return p
}

func BenchmarkCompute1kNodes(b *testing.B) {
	g, _, err := graph.Build(largePayload(1000), graph.DefaultTaxonomy())
	if err != nil {
		b.Fatal(err)
	}
	opts := DefaultOptions()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Compute(g, 1920, 1080, opts)
	}
}

func BenchmarkBuild1kNodes(b *testing.B) {
	p := largePayload(1000)
	tax := graph.DefaultTaxonomy()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := graph.Build(p, tax); err != nil {
			b.Fatal(err)
		}
	}
}
