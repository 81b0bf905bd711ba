// Package web serves the browser front-end: a single page with Show and Tell
// tabs that streams builds over a websocket.
package web

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/apex/log"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/semaphore"

	"github.com/petal-labs/appforge/appforge"
)

const (
	// DefaultMaxUpload bounds a single websocket request, base64 image included.
	DefaultMaxUpload = 16 << 20
	// DefaultMaxBuilds is the number of builds streaming at once across all connections.
	DefaultMaxBuilds = 4
)

// Server is the front-end HTTP handler.
type Server struct {
	builder   *appforge.Builder
	log       log.Interface
	maxUpload int64
	maxBuilds int64
	builds    *semaphore.Weighted
	mux       *http.ServeMux
	upgrader  websocket.Upgrader

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Defaults to the apex/log package logger.
func WithLogger(l log.Interface) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMaxUpload sets the largest accepted websocket message in bytes.
func WithMaxUpload(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// WithMaxBuilds limits concurrent builds. Further requests wait for a slot.
func WithMaxBuilds(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBuilds = int64(n)
		}
	}
}

// New creates a Server that runs builds with b.
func New(b *appforge.Builder, opts ...Option) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		builder:   b,
		log:       log.Log,
		maxUpload: DefaultMaxUpload,
		maxBuilds: DefaultMaxBuilds,
		mux:       http.NewServeMux(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.builds = semaphore.NewWeighted(s.maxBuilds)

	s.mux.HandleFunc("GET /{$}", s.handlePage)
	s.mux.HandleFunc("GET /examples/{file}", s.handleExample)
	s.mux.HandleFunc("GET /ws", s.handleWS)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Close cancels running builds and waits for their connections to finish.
func (s *Server) Close() {
	s.cancel()
	s.wg.Wait()
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		Examples:     appforge.Examples(),
		Instructions: appforge.Instructions,
		Ready:        s.builder.Ready() == nil,
		Warning:      missingKeyWarning,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		s.log.WithError(err).Error("render page")
	}
}

func (s *Server) handleExample(w http.ResponseWriter, r *http.Request) {
	id, ok := strings.CutSuffix(r.PathValue("file"), ".png")
	if !ok {
		http.NotFound(w, r)
		return
	}

	img, err := appforge.LoadExample(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", img.MIMEType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(img.Data)
}
