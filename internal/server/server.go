// Package server serves the mind cloud: the graph payload API, post detail,
// project view counts, SVG snapshots, the wasm host page and a websocket
// that tells open pages to reload when the payload file changes.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/recera/mindcloud/internal/cache"
	"github.com/recera/mindcloud/internal/config"
	"github.com/recera/mindcloud/internal/store"
	"github.com/recera/mindcloud/pkg/graph"
)

// Server holds the loaded payload and everything the handlers share.
type Server struct {
	cfg   *config.Config
	log   *zap.Logger
	cache *cache.Cache
	views *store.DB
	hub   *hub

	mu      sync.RWMutex
	payload *graph.Payload
	raw     []byte
	tax     *graph.Taxonomy
	loaded  time.Time
	// gen counts successful loads; snapshot keys carry it so a render of an
	// older payload never lands under the current payload's key.
	gen uint64
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithStore enables the project view endpoints.
func WithStore(db *store.DB) Option {
	return func(s *Server) { s.views = db }
}

// WithCache replaces the snapshot cache.
func WithCache(c *cache.Cache) Option {
	return func(s *Server) { s.cache = c }
}

// New loads the payload and taxonomy named by cfg.
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{cfg: cfg, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.Named("server")
	if s.cache == nil {
		strategy, err := cache.ParseStrategy(cfg.Cache.Strategy)
		if err != nil {
			return nil, err
		}
		cc := cache.DefaultConfig()
		cc.MaxEntries = cfg.Cache.MaxEntries
		cc.MaxAge = cfg.Cache.MaxAge
		cc.Strategy = strategy
		s.cache = cache.New(cc)
	}
	s.hub = newHub(s.log)
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) load() error {
	p, err := graph.ReadPayloadFile(s.cfg.Data.PayloadFile)
	if err != nil {
		return err
	}
	tax := graph.DefaultTaxonomy()
	if s.cfg.Data.TaxonomyFile != "" {
		if tax, err = graph.LoadTaxonomy(s.cfg.Data.TaxonomyFile); err != nil {
			return err
		}
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(p); err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	s.mu.Lock()
	s.payload, s.raw, s.tax, s.loaded = p, buf.Bytes(), tax, time.Now()
	s.gen++
	s.mu.Unlock()

	s.log.Info("payload loaded",
		zap.String("file", s.cfg.Data.PayloadFile),
		zap.Int("nodes", len(p.Nodes)),
		zap.Int("links", len(p.Links)))
	return nil
}

// Reload rereads the data files, drops snapshots built from them and tells
// connected pages to reload. On error the previous payload stays served.
func (s *Server) Reload() error {
	if err := s.load(); err != nil {
		s.log.Error("reload failed", zap.Error(err))
		return err
	}
	n := s.cache.InvalidateByDependency(s.cfg.Data.PayloadFile)
	if s.cfg.Data.TaxonomyFile != "" {
		n += s.cache.InvalidateByDependency(s.cfg.Data.TaxonomyFile)
	}
	s.log.Debug("snapshots invalidated", zap.Int("count", n))
	s.hub.broadcast(message{Type: "RELOAD", Reason: "payload changed"})
	return nil
}

// dataset is one consistent view of the served data.
type dataset struct {
	payload *graph.Payload
	raw     []byte
	tax     *graph.Taxonomy
	gen     uint64
}

func (s *Server) snapshot() dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return dataset{payload: s.payload, raw: s.raw, tax: s.tax, gen: s.gen}
}

// Run serves until ctx is done, watching the data files when configured.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("listening", zap.String("addr", "http://"+srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.log.Info("shutting down")
		s.hub.closeAll()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if s.cfg.Server.Watch {
		g.Go(func() error { return s.watch(ctx) })
	}
	return g.Wait()
}
