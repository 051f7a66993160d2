package graph

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoTopics is returned when a taxonomy declares no topics.
var ErrNoTopics = errors.New("taxonomy declares no topics")

// Grouping modes for a topic's second level.
const (
	GroupNone     = ""
	GroupTag      = "tag"
	GroupLanguage = "language"
)

// CenterSpec describes the center node.
type CenterSpec struct {
	ID    string  `yaml:"id"`
	Label string  `yaml:"label"`
	Color string  `yaml:"color"`
	Size  float64 `yaml:"size"`
}

// TopicSpec describes one top-level category.
type TopicSpec struct {
	ID         string   `yaml:"id"`
	Label      string   `yaml:"label"`
	Color      string   `yaml:"color"`
	Size       float64  `yaml:"size"`
	Categories []string `yaml:"categories"`
	Tags       []string `yaml:"tags"`
	Projects   bool     `yaml:"projects"`
	GroupBy    string   `yaml:"group_by"`
}

// Taxonomy is the fixed category scheme every payload node resolves into.
type Taxonomy struct {
	Center   CenterSpec  `yaml:"center"`
	Topics   []TopicSpec `yaml:"topics"`
	Fallback string      `yaml:"fallback"`

	SubtopicSize float64 `yaml:"subtopic_size"`
	LeafSize     float64 `yaml:"leaf_size"`
	ProjectSize  float64 `yaml:"project_size"`
}

// DefaultTaxonomy returns the three-topic scheme used when no file is given.
func DefaultTaxonomy() *Taxonomy {
	return &Taxonomy{
		Center: CenterSpec{ID: "center", Color: "#f5f7fa", Size: 20},
		Topics: []TopicSpec{
			{
				ID:         "software",
				Label:      "Software",
				Color:      "#6ea8fe",
				Size:       14,
				Categories: []string{"software", "engineering", "programming", "development"},
				Tags:       []string{"react", "vue", "go", "golang", "typescript", "javascript", "rust", "python", "next.js", "node.js"},
				Projects:   true,
				GroupBy:    GroupTag,
			},
			{
				ID:         "writing",
				Label:      "Writing",
				Color:      "#7ee0a1",
				Size:       14,
				Categories: []string{"writing", "essays", "notes"},
				Tags:       []string{"essay", "career", "learning"},
			},
			{
				ID:         "life",
				Label:      "Life",
				Color:      "#f7b267",
				Size:       14,
				Categories: []string{"life", "personal", "travel"},
				Tags:       []string{"travel", "music", "books"},
			},
		},
		Fallback:     "life",
		SubtopicSize: 10,
		LeafSize:     6,
		ProjectSize:  7,
	}
}

// LoadTaxonomy reads a YAML taxonomy file and fills unset fields from
// DefaultTaxonomy.
func LoadTaxonomy(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading taxonomy: %w", err)
	}
	return ParseTaxonomy(data)
}

// ParseTaxonomy decodes YAML taxonomy bytes.
func ParseTaxonomy(data []byte) (*Taxonomy, error) {
	var t Taxonomy
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("parsing taxonomy: %w", err)
	}
	t.applyDefaults()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Taxonomy) applyDefaults() {
	d := DefaultTaxonomy()
	if t.Center.ID == "" {
		t.Center.ID = d.Center.ID
	}
	if t.Center.Color == "" {
		t.Center.Color = d.Center.Color
	}
	if t.Center.Size == 0 {
		t.Center.Size = d.Center.Size
	}
	if t.SubtopicSize == 0 {
		t.SubtopicSize = d.SubtopicSize
	}
	if t.LeafSize == 0 {
		t.LeafSize = d.LeafSize
	}
	if t.ProjectSize == 0 {
		t.ProjectSize = d.ProjectSize
	}
	for i := range t.Topics {
		if t.Topics[i].Size == 0 {
			t.Topics[i].Size = d.Topics[0].Size
		}
		if t.Topics[i].Label == "" {
			t.Topics[i].Label = t.Topics[i].ID
		}
	}
}

// Validate checks topic ids and grouping modes.
func (t *Taxonomy) Validate() error {
	if len(t.Topics) == 0 {
		return ErrNoTopics
	}
	seen := map[string]bool{t.Center.ID: true}
	for _, topic := range t.Topics {
		if topic.ID == "" {
			return errors.New("taxonomy topic without id")
		}
		if seen[topic.ID] {
			return fmt.Errorf("duplicate taxonomy id %q", topic.ID)
		}
		seen[topic.ID] = true
		switch topic.GroupBy {
		case GroupNone, GroupTag, GroupLanguage:
		default:
			return fmt.Errorf("topic %q: unknown group_by %q", topic.ID, topic.GroupBy)
		}
	}
	if t.Fallback != "" && t.topic(t.Fallback) == nil {
		return fmt.Errorf("fallback topic %q is not declared", t.Fallback)
	}
	return nil
}

func (t *Taxonomy) topic(id string) *TopicSpec {
	for i := range t.Topics {
		if t.Topics[i].ID == id {
			return &t.Topics[i]
		}
	}
	return nil
}

// Resolve returns the topic a payload node belongs to, or nil.
func (t *Taxonomy) Resolve(n PayloadNode) *TopicSpec {
	if n.IsProject {
		for i := range t.Topics {
			if t.Topics[i].Projects {
				return &t.Topics[i]
			}
		}
	} else {
		for i := range t.Topics {
			if containsFold(t.Topics[i].Categories, n.CategoryName) || containsFold(t.Topics[i].Categories, n.CategoryID) {
				return &t.Topics[i]
			}
		}
		for i := range t.Topics {
			for _, tag := range n.TagNames {
				if containsFold(t.Topics[i].Tags, tag) {
					return &t.Topics[i]
				}
			}
		}
	}
	if t.Fallback != "" {
		return t.topic(t.Fallback)
	}
	return nil
}

// GroupKey returns the sub-topic label a node falls under within topic, or ""
// when it attaches to the topic directly.
func (ts *TopicSpec) GroupKey(n PayloadNode) string {
	switch ts.GroupBy {
	case GroupTag:
		if n.IsProject {
			return projectLanguage(n)
		}
		for _, tag := range n.TagNames {
			if containsFold(ts.Tags, tag) {
				return tag
			}
		}
	case GroupLanguage:
		if n.IsProject {
			return projectLanguage(n)
		}
	}
	return ""
}

func projectLanguage(n PayloadNode) string {
	if n.Project == nil {
		return ""
	}
	return strings.TrimSpace(n.Project.Language)
}

func containsFold(list []string, s string) bool {
	if s == "" {
		return false
	}
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
