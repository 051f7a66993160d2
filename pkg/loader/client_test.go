package loader

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/recera/mindcloud/pkg/graph"
)

const payloadJSON = `{
  "nodes": [
    {"id": "p1", "slug": "hooks", "title": "React hooks", "categoryName": "Software", "tagNames": ["React"]},
    {"id": "x1", "slug": "palm", "title": "palm", "isProject": true,
     "project": {"title": "palm", "language": "Go", "stars": 12, "forks": 1}}
  ],
  "links": [{"source": "p1", "target": "x1", "strength": 0.5}]
}`

func TestFetchGraph(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, GraphPath, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payloadJSON))
	}))
	defer srv.Close()

	p, err := New(srv.URL + "/").FetchGraph(context.Background())
	require.NoError(t, err)
	require.Len(t, p.Nodes, 2)
	assert.True(t, p.Nodes[1].IsProject)
	assert.Equal(t, 12, p.Nodes[1].Project.Stars)
	assert.Len(t, p.Links, 1)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchGraph_StatusIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).FetchGraph(context.Background())
	require.ErrorIs(t, err, ErrStatus)
	assert.Contains(t, err.Error(), "502")
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchGraph_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{nope"))
	}))
	defer srv.Close()

	_, err := New(srv.URL).FetchGraph(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrStatus)
}

func TestFetchPost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != PostPath+"hooks" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(graph.PayloadNode{ID: "p1", Slug: "hooks", Title: "React hooks"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	n, err := c.FetchPost(context.Background(), "hooks")
	require.NoError(t, err)
	assert.Equal(t, "React hooks", n.Title)

	_, err = c.FetchPost(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrStatus)
}

func TestTrackView(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/projects/x1/view", r.URL.Path)
		hits.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, WithViewRate(0.001, 2))
	assert.True(t, c.TrackView("x1"))
	assert.True(t, c.TrackView("x1"))
	assert.False(t, c.TrackView("x1"), "over the burst")
	assert.False(t, c.TrackView(""))
	c.Wait()
	assert.Equal(t, int32(2), hits.Load())
}

func TestTrackView_FailuresAreSwallowed(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, WithLogger(zap.New(core)))
	assert.True(t, c.TrackView("x1"))
	c.Wait()

	entries := logs.FilterMessage("view ping").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "loader", entries[0].LoggerName)
}
