// Package graph holds the mind cloud node set: the wire payload served by the
// CMS, the category taxonomy, and the immutable node/link model built from them.
package graph

import (
	"time"

	"github.com/recera/mindcloud/pkg/geom"
)

// Kind classifies a node.
type Kind string

const (
	KindCenter Kind = "center"
	KindTopic  Kind = "topic"
	KindPost   Kind = "post"
)

// Project holds the details shown in a project's detail panel.
type Project struct {
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	ImageURL     string   `json:"imageUrl,omitempty"`
	GithubURL    string   `json:"githubUrl,omitempty"`
	LiveURL      string   `json:"liveUrl,omitempty"`
	Language     string   `json:"language,omitempty"`
	Stars        int      `json:"stars"`
	Forks        int      `json:"forks"`
	Technologies []string `json:"technologies,omitempty"`
}

// Post holds blog post metadata carried by leaf nodes.
type Post struct {
	Excerpt      string
	ViewCount    int
	CategoryID   string
	CategoryName string
	Tags         []string
	PublishedAt  *time.Time
}

// Node is one vertex of the cloud. Identity fields are fixed after Build;
// X/Y move during animation and TargetX/TargetY are owned by the layout.
type Node struct {
	ID    string
	Slug  string
	Label string
	Kind  Kind
	Color string
	Size  float64

	X, Y             float64
	TargetX, TargetY float64
	// StartX/StartY is where the entrance animation begins.
	StartX, StartY float64
	// Placed is false until the layout assigns a target.
	Placed bool

	ParentID string
	Angle    float64

	IsProject bool
	Project   *Project
	Post      *Post
}

// Pos returns the node's current position.
func (n *Node) Pos() geom.Point { return geom.Pt(n.X, n.Y) }

// Target returns the node's layout target.
func (n *Node) Target() geom.Point { return geom.Pt(n.TargetX, n.TargetY) }

// IsLeaf reports whether n is a post or project.
func (n *Node) IsLeaf() bool { return n.Kind == KindPost }

// Link joins two nodes. Direction carries no meaning.
type Link struct {
	Source   string
	Target   string
	Strength float64
}

// Touches reports whether id is one of the link's endpoints.
func (l Link) Touches(id string) bool { return l.Source == id || l.Target == id }

// Graph is the node set of one cloud instance.
type Graph struct {
	Nodes []*Node
	Links []Link

	index    map[string]*Node
	children map[string][]*Node
	centerID string
}

// NewGraph indexes nodes and keeps only links whose endpoints both exist.
// Exactly one node must be KindCenter for Center to return non-nil.
func NewGraph(nodes []*Node, links []Link) *Graph {
	g := &Graph{
		Nodes:    nodes,
		index:    make(map[string]*Node, len(nodes)),
		children: make(map[string][]*Node),
	}
	for _, n := range nodes {
		g.index[n.ID] = n
		if n.Kind == KindCenter {
			g.centerID = n.ID
		}
	}
	for _, n := range nodes {
		if n.ParentID != "" {
			g.children[n.ParentID] = append(g.children[n.ParentID], n)
		}
	}
	g.Links = filterLinks(links, g.index)
	return g
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *Node {
	if g == nil {
		return nil
	}
	return g.index[id]
}

// Center returns the center node, or nil when the graph has none.
func (g *Graph) Center() *Node { return g.Node(g.centerID) }

// Children returns the nodes whose parent is id, in build order.
func (g *Graph) Children(id string) []*Node {
	if g == nil {
		return nil
	}
	return g.children[id]
}

// Parent returns the parent of n, or nil.
func (g *Graph) Parent(n *Node) *Node {
	if n == nil || n.ParentID == "" {
		return nil
	}
	return g.Node(n.ParentID)
}

// IsEmpty returns true if the graph has no nodes.
func (g *Graph) IsEmpty() bool { return g == nil || len(g.Nodes) == 0 }

// filterLinks drops dangling links and self loops and merges unordered
// duplicates, keeping the strongest.
func filterLinks(links []Link, index map[string]*Node) []Link {
	out := make([]Link, 0, len(links))
	seen := make(map[[2]string]int, len(links))
	for _, l := range links {
		if l.Source == l.Target {
			continue
		}
		if index[l.Source] == nil || index[l.Target] == nil {
			continue
		}
		key := [2]string{l.Source, l.Target}
		if key[0] > key[1] {
			key[0], key[1] = key[1], key[0]
		}
		if i, ok := seen[key]; ok {
			if l.Strength > out[i].Strength {
				out[i].Strength = l.Strength
			}
			continue
		}
		seen[key] = len(out)
		out = append(out, l)
	}
	return out
}
