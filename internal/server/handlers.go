package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/recera/mindcloud/internal/cache"
	"github.com/recera/mindcloud/internal/store"
	"github.com/recera/mindcloud/pkg/mindcloud"
	"github.com/recera/mindcloud/pkg/render"
	"github.com/recera/mindcloud/pkg/waves"
)

const (
	// maxSnapshotSide bounds snapshot width and height.
	maxSnapshotSide = 4096
	maxTopProjects  = 100
)

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/mind-cloud", s.serveGraph)
	mux.HandleFunc("GET /api/posts/{slug}", s.servePost)
	mux.HandleFunc("POST /api/projects/{id}/view", s.trackView)
	mux.HandleFunc("GET /api/projects/{id}/views", s.serveViews)
	mux.HandleFunc("GET /api/projects/top", s.serveTopProjects)
	mux.HandleFunc("GET /api/cache", s.serveCacheStats)
	mux.HandleFunc("DELETE /api/cache", s.clearCache)
	mux.HandleFunc("GET /snapshot.svg", s.serveSnapshot)
	mux.HandleFunc("GET /app.wasm", s.serveWASM)
	mux.HandleFunc("GET /wasm_exec.js", s.serveWasmExec)
	mux.HandleFunc("/ws/reload", s.hub.serveWS)
	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /{$}", s.servePage)
	return s.logRequests(mux)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)))
	})
}

func (s *Server) serveGraph(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(s.snapshot().raw)
}

func (s *Server) servePost(w http.ResponseWriter, r *http.Request) {
	n, ok := s.snapshot().payload.Find(r.PathValue("slug"))
	if !ok || n.IsProject {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// projectID resolves the {id} path value to a project in the payload.
func (s *Server) projectID(w http.ResponseWriter, r *http.Request) (string, bool) {
	if s.views == nil {
		writeError(w, http.StatusServiceUnavailable, "view counts disabled")
		return "", false
	}
	n, ok := s.snapshot().payload.Find(r.PathValue("id"))
	if !ok || !n.IsProject {
		writeError(w, http.StatusNotFound, "project not found")
		return "", false
	}
	return n.ID, true
}

func (s *Server) trackView(w http.ResponseWriter, r *http.Request) {
	id, ok := s.projectID(w, r)
	if !ok {
		return
	}
	views, err := s.views.IncrementView(r.Context(), id)
	if err != nil {
		s.log.Error("counting view", zap.String("project", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not count view")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projectId": id, "views": views})
}

func (s *Server) serveViews(w http.ResponseWriter, r *http.Request) {
	id, ok := s.projectID(w, r)
	if !ok {
		return
	}
	pv, err := s.views.Views(r.Context(), id)
	if err != nil {
		s.log.Error("reading views", zap.String("project", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not read views")
		return
	}
	writeJSON(w, http.StatusOK, pv)
}

// serveTopProjects lists the most viewed projects. Query: limit (default
// 10, at most 100).
func (s *Server) serveTopProjects(w http.ResponseWriter, r *http.Request) {
	if s.views == nil {
		writeError(w, http.StatusServiceUnavailable, "view counts disabled")
		return
	}
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxTopProjects {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("bad limit %q", v))
			return
		}
		limit = n
	}
	top, err := s.views.Top(r.Context(), limit)
	if err != nil {
		s.log.Error("listing top projects", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list views")
		return
	}
	if top == nil {
		top = []store.ProjectViews{}
	}
	writeJSON(w, http.StatusOK, top)
}

func (s *Server) serveCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cache.Stats())
}

func (s *Server) clearCache(w http.ResponseWriter, r *http.Request) {
	s.cache.Clear()
	s.log.Info("snapshot cache cleared")
	w.WriteHeader(http.StatusNoContent)
}

// serveSnapshot renders a settled SVG of the cloud. Query: w, h, focus and
// waves=1.
func (s *Server) serveSnapshot(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	width, err := side(q.Get("w"), s.cfg.Canvas.Width)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	height, err := side(q.Get("h"), s.cfg.Canvas.Height)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	focus := q.Get("focus")
	withWaves := s.cfg.Canvas.Waves
	if v := q.Get("waves"); v != "" {
		withWaves, _ = strconv.ParseBool(v)
	}

	cur := s.snapshot()
	key := cache.Key("snapshot.svg", strconv.FormatUint(cur.gen, 10),
		num(width), num(height), focus, strconv.FormatBool(withWaves))
	if e, ok := s.cache.Get(key); ok {
		w.Header().Set("Content-Type", e.ContentType)
		w.Header().Set("X-Cache", "HIT")
		_, _ = w.Write(e.Data)
		return
	}

	p := cur.payload
	svg := render.NewSVG(width, height)
	opts := mindcloud.Options{Width: width, Height: height, Taxonomy: cur.tax, Logger: s.log}
	if withWaves {
		opts.Waves = waves.New(waves.Options{})
	}
	if err := mindcloud.Still(svg, p, opts, focus); err != nil {
		if errors.Is(err, mindcloud.ErrUnknownNode) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.log.Error("rendering snapshot", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not render snapshot")
		return
	}

	var buf bytes.Buffer
	if _, err := svg.WriteTo(&buf); err != nil {
		writeError(w, http.StatusInternalServerError, "could not render snapshot")
		return
	}
	deps := []string{s.cfg.Data.PayloadFile}
	if s.cfg.Data.TaxonomyFile != "" {
		deps = append(deps, s.cfg.Data.TaxonomyFile)
	}
	s.cache.Put(key, "image/svg+xml", buf.Bytes(), deps...)

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("X-Cache", "MISS")
	_, _ = w.Write(buf.Bytes())
}

func side(v string, def float64) (float64, error) {
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || !(f > 0 && f <= maxSnapshotSide) {
		return 0, fmt.Errorf("bad size %q", v)
	}
	return f, nil
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func (s *Server) servePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write([]byte(hostPage))
}

func (s *Server) serveWASM(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/wasm")
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, s.cfg.Server.WasmPath)
}

func (s *Server) serveWasmExec(w http.ResponseWriter, r *http.Request) {
	path, err := s.wasmExecPath()
	if err != nil {
		s.log.Warn("wasm_exec.js not found", zap.Error(err))
		http.Error(w, "Failed to resolve wasm_exec.js", http.StatusInternalServerError)
		return
	}
	content, err := os.ReadFile(path)
	if err != nil {
		http.Error(w, "Failed to load wasm_exec.js", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(content)
}

// wasmExecPath returns the configured shim or the one shipped with the Go
// toolchain, which moved from misc/wasm to lib/wasm in Go 1.24.
func (s *Server) wasmExecPath() (string, error) {
	if p := s.cfg.Server.WasmExecPath; p != "" {
		return p, nil
	}
	out, err := exec.Command("go", "env", "GOROOT").Output()
	if err != nil {
		return "", fmt.Errorf("go env GOROOT: %w", err)
	}
	root := strings.TrimSpace(string(out))
	for _, dir := range []string{"lib/wasm", "misc/wasm"} {
		p := filepath.Join(root, dir, "wasm_exec.js")
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("no wasm_exec.js under %s", root)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
