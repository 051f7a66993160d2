package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// Payload is the graph document served by the CMS.
type Payload struct {
	Nodes []PayloadNode `json:"nodes"`
	Links []PayloadLink `json:"links"`
}

// PayloadNode is a blog post or project as served by the graph endpoint.
type PayloadNode struct {
	ID            string     `json:"id"`
	Slug          string     `json:"slug,omitempty"`
	Title         string     `json:"title"`
	Excerpt       string     `json:"excerpt,omitempty"`
	ViewCount     int        `json:"viewCount"`
	CategoryID    string     `json:"categoryId,omitempty"`
	CategoryName  string     `json:"categoryName,omitempty"`
	CategoryColor string     `json:"categoryColor,omitempty"`
	TagIDs        []string   `json:"tagIds,omitempty"`
	TagNames      []string   `json:"tagNames,omitempty"`
	PublishedAt   *time.Time `json:"publishedAt,omitempty"`
	IsProject     bool       `json:"isProject"`
	Project       *Project   `json:"project,omitempty"`
}

// PayloadLink is a shared-tag or backlink edge between two payload nodes.
type PayloadLink struct {
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Strength float64 `json:"strength,omitempty"`
	Type     string  `json:"type,omitempty"`
}

// DecodePayload reads a JSON payload from r.
func DecodePayload(r io.Reader) (*Payload, error) {
	var p Payload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("decoding graph payload: %w", err)
	}
	return &p, nil
}

// ReadPayloadFile reads a JSON payload from disk.
func ReadPayloadFile(path string) (*Payload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening graph payload: %w", err)
	}
	defer f.Close()
	return DecodePayload(f)
}

// Find returns the payload node with the given id or slug.
func (p *Payload) Find(key string) (PayloadNode, bool) {
	for _, n := range p.Nodes {
		if n.ID == key || (n.Slug != "" && n.Slug == key) {
			return n, true
		}
	}
	return PayloadNode{}, false
}
