package graph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const taxonomyYAML = `
center:
  id: me
  color: "#ffffff"
fallback: misc
topics:
  - id: code
    label: Code
    color: "#6ea8fe"
    categories: [software]
    tags: [go, rust]
    projects: true
    group_by: language
  - id: misc
`

func TestParseTaxonomy(t *testing.T) {
	tax, err := ParseTaxonomy([]byte(taxonomyYAML))
	require.NoError(t, err)

	assert.Equal(t, "me", tax.Center.ID)
	assert.Equal(t, DefaultTaxonomy().Center.Size, tax.Center.Size)
	require.Len(t, tax.Topics, 2)
	assert.Equal(t, GroupLanguage, tax.Topics[0].GroupBy)
	assert.Equal(t, "misc", tax.Topics[1].Label)
	assert.NotZero(t, tax.Topics[1].Size)
	assert.NotZero(t, tax.LeafSize)
}

func TestParseTaxonomy_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no topics", "center: {id: c}\n"},
		{"unknown field", "topics: [{id: a, colour: red}]\n"},
		{"bad grouping", "topics: [{id: a, group_by: year}]\n"},
		{"duplicate id", "topics: [{id: a}, {id: a}]\n"},
		{"missing fallback", "fallback: nope\ntopics: [{id: a}]\n"},
		{"clashes with center", "center: {id: a}\ntopics: [{id: a}]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTaxonomy([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadTaxonomy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(taxonomyYAML), 0o644))

	tax, err := LoadTaxonomy(path)
	require.NoError(t, err)
	assert.Equal(t, "code", tax.Topics[0].ID)

	_, err = LoadTaxonomy(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestGroupKey_LanguageOnlyGroupsProjects(t *testing.T) {
	tax, err := ParseTaxonomy([]byte(taxonomyYAML))
	require.NoError(t, err)
	code := tax.Topics[0]

	assert.Equal(t, "", code.GroupKey(PayloadNode{TagNames: []string{"go"}}))
	assert.Equal(t, "Go", code.GroupKey(PayloadNode{IsProject: true, Project: &Project{Language: " Go "}}))
	assert.Equal(t, "", code.GroupKey(PayloadNode{IsProject: true}))
}
