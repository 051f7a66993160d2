package render

import (
	"fmt"
	"testing"

	"github.com/recera/mindcloud/pkg/geom"
	"github.com/recera/mindcloud/pkg/graph"
	"github.com/recera/mindcloud/pkg/layout"
)

func benchGraph(b *testing.B, n int) *graph.Graph {
	b.Helper()
	categories := []string{"Software", "Writing", "Life"}
	p := &graph.Payload{}
	for i := 0; i < n; i++ {
		p.Nodes = append(p.Nodes, graph.PayloadNode{
			ID:           fmt.Sprintf("p%d", i),
			Title:        fmt.Sprintf("A fairly long post title %d", i),
			CategoryName: categories[i%len(categories)],
		})
	}
	g, _, err := graph.Build(p, graph.DefaultTaxonomy())
	if err != nil {
		b.Fatal(err)
	}
	layout.Compute(g, 1920, 1080, layout.DefaultOptions())
	layout.Settle(g)
	return g
}

func benchmarkDraw(b *testing.B, c Canvas, focus string) {
	g := benchGraph(b, 1000)
	f := Frame{Graph: g, Transform: geom.Identity, FocusID: focus}
	theme := DefaultTheme()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Draw(c, f, theme)
	}
}

func BenchmarkDraw1kNodes_Recorder(b *testing.B) {
	rec := NewRecorder(1920, 1080)
	g := benchGraph(b, 1000)
	f := Frame{Graph: g, Transform: geom.Identity}
	theme := DefaultTheme()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec.Reset()
		Draw(rec, f, theme)
	}
}

func BenchmarkDraw1kNodes_Focused(b *testing.B) {
	benchmarkDraw(b, NewTerm(200, 60), "writing")
}

func BenchmarkDraw1kNodes_Term(b *testing.B) {
	benchmarkDraw(b, NewTerm(200, 60), "")
}
