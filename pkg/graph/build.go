package graph

import (
	"fmt"
	"strings"
	"unicode"
)

// Hierarchy link strengths.
const (
	strengthTopic    = 1.0
	strengthSubtopic = 0.8
	strengthLeaf     = 0.6
	strengthPayload  = 0.3
)

// BuildReport lists what Build could not place.
type BuildReport struct {
	// Unresolved holds payload node ids that matched no topic.
	Unresolved []string
	// Duplicates holds payload node ids that appeared more than once or
	// that collide with a generated topic or sub-topic id.
	Duplicates []string
	// DroppedLinks counts payload links removed as dangling, self loops or duplicates.
	DroppedLinks int
}

// Build turns a payload into the cloud's node set: one center, one node per
// taxonomy topic, sub-topics for grouped topics, and one leaf per resolvable
// payload node. Output order is deterministic for a given input.
func Build(p *Payload, tax *Taxonomy) (*Graph, BuildReport, error) {
	var report BuildReport
	if tax == nil {
		tax = DefaultTaxonomy()
	}
	if err := tax.Validate(); err != nil {
		return nil, report, err
	}
	if p == nil {
		p = &Payload{}
	}

	center := &Node{
		ID:    tax.Center.ID,
		Label: tax.Center.Label,
		Kind:  KindCenter,
		Color: tax.Center.Color,
		Size:  tax.Center.Size,
	}
	nodes := []*Node{center}
	var links []Link

	topics := make(map[string]*Node, len(tax.Topics))
	for _, ts := range tax.Topics {
		n := &Node{
			ID:       ts.ID,
			Slug:     ts.ID,
			Label:    ts.Label,
			Kind:     KindTopic,
			Color:    ts.Color,
			Size:     ts.Size,
			ParentID: center.ID,
		}
		topics[ts.ID] = n
		nodes = append(nodes, n)
		links = append(links, Link{Source: center.ID, Target: n.ID, Strength: strengthTopic})
	}

	subtopics := make(map[string]*Node)
	var subtopicOrder []*Node
	var leaves []*Node
	seen := make(map[string]bool, len(p.Nodes))

	for _, pn := range p.Nodes {
		if pn.ID == "" {
			continue
		}
		if seen[pn.ID] || topics[pn.ID] != nil || pn.ID == center.ID {
			report.Duplicates = append(report.Duplicates, pn.ID)
			continue
		}
		seen[pn.ID] = true

		ts := tax.Resolve(pn)
		if ts == nil {
			report.Unresolved = append(report.Unresolved, pn.ID)
			continue
		}
		parent := topics[ts.ID]

		if key := ts.GroupKey(pn); key != "" {
			id := fmt.Sprintf("%s/%s", ts.ID, slugify(key))
			sub, ok := subtopics[id]
			if !ok {
				sub = &Node{
					ID:       id,
					Slug:     slugify(key),
					Label:    key,
					Kind:     KindTopic,
					Color:    ts.Color,
					Size:     tax.SubtopicSize,
					ParentID: ts.ID,
				}
				subtopics[id] = sub
				subtopicOrder = append(subtopicOrder, sub)
			}
			parent = sub
		}

		leaves = append(leaves, newLeaf(pn, parent, tax))
	}

	// A payload id may only be checked against sub-topic ids once every
	// sub-topic exists.
	kept := leaves[:0]
	for _, leaf := range leaves {
		if subtopics[leaf.ID] != nil {
			report.Duplicates = append(report.Duplicates, leaf.ID)
			continue
		}
		kept = append(kept, leaf)
	}
	leaves = kept

	for _, sub := range subtopicOrder {
		nodes = append(nodes, sub)
		links = append(links, Link{Source: sub.ParentID, Target: sub.ID, Strength: strengthSubtopic})
	}
	for _, leaf := range leaves {
		nodes = append(nodes, leaf)
		links = append(links, Link{Source: leaf.ParentID, Target: leaf.ID, Strength: strengthLeaf})
	}

	for _, pl := range p.Links {
		s := pl.Strength
		if s == 0 {
			s = strengthPayload
		}
		links = append(links, Link{Source: pl.Source, Target: pl.Target, Strength: s})
	}

	g := NewGraph(nodes, links)
	report.DroppedLinks = len(links) - len(g.Links)
	return g, report, nil
}

func newLeaf(pn PayloadNode, parent *Node, tax *Taxonomy) *Node {
	label := pn.Title
	if pn.IsProject && pn.Project != nil && pn.Project.Title != "" {
		label = pn.Project.Title
	}
	color := pn.CategoryColor
	if color == "" {
		color = parent.Color
	}
	n := &Node{
		ID:        pn.ID,
		Slug:      pn.Slug,
		Label:     label,
		Kind:      KindPost,
		Color:     color,
		Size:      tax.LeafSize,
		ParentID:  parent.ID,
		IsProject: pn.IsProject,
	}
	if pn.IsProject {
		n.Size = tax.ProjectSize
		n.Project = pn.Project
		if n.Project == nil {
			n.Project = &Project{Title: pn.Title}
		}
		return n
	}
	n.Post = &Post{
		Excerpt:      pn.Excerpt,
		ViewCount:    pn.ViewCount,
		CategoryID:   pn.CategoryID,
		CategoryName: pn.CategoryName,
		Tags:         pn.TagNames,
		PublishedAt:  pn.PublishedAt,
	}
	return n
}

// slugify lowercases s and replaces runs of non-alphanumerics with '-'.
func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if r == '+' || r == '#' {
			// keep c++ / c# distinct from c
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
