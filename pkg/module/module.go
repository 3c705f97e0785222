// Package module groups an http.Handler with its own middleware under a URL
// prefix and mounts modules together with native routes on a single Router.
package module

import (
	"net/http"
	"strings"

	"github.com/JaimeStill/webcarros/pkg/middleware"
)

// Module is a self-contained handler served beneath a prefix.
// The prefix is stripped before the request reaches the handler.
type Module struct {
	prefix     string
	handler    http.Handler
	middleware *middleware.Stack
}

// New creates a module for handler mounted at prefix. The prefix "/" mounts at the root.
func New(prefix string, handler http.Handler) *Module {
	return &Module{
		prefix:     strings.TrimSuffix(prefix, "/"),
		handler:    handler,
		middleware: middleware.New(),
	}
}

// Prefix returns the mount prefix without a trailing slash.
func (m *Module) Prefix() string {
	return m.prefix
}

// Use adds middleware applied to every request served by the module.
func (m *Module) Use(mw middleware.Middleware) {
	m.middleware.Use(mw)
}

// Handler returns the module handler wrapped with its middleware and prefix stripping.
func (m *Module) Handler() http.Handler {
	h := m.middleware.Apply(m.handler)
	if m.prefix == "" {
		return h
	}
	return http.StripPrefix(m.prefix, h)
}

// Router dispatches requests to native routes and mounted modules.
type Router struct {
	mux *http.ServeMux
}

// NewRouter creates an empty Router.
func NewRouter() *Router {
	return &Router{mux: http.NewServeMux()}
}

// HandleNative registers a handler on the root mux, bypassing module middleware.
func (r *Router) HandleNative(pattern string, handler http.HandlerFunc) {
	r.mux.HandleFunc(pattern, handler)
}

// Mount serves m for every path beneath its prefix.
func (r *Router) Mount(m *Module) {
	h := m.Handler()
	if m.prefix == "" {
		r.mux.Handle("/", h)
		return
	}
	r.mux.Handle(m.prefix, h)
	r.mux.Handle(m.prefix+"/", h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}
