// Package routes describes HTTP endpoints as declarative groups and registers
// them on a ServeMux using Go 1.22 method patterns.
package routes

import "net/http"

// Group represents a collection of routes under a common URL prefix.
// Groups can contain child groups for hierarchical route organization.
type Group struct {
	Prefix      string
	Description string
	Routes      []Route
	Children    []Group
}

// Route represents an HTTP route with method, pattern, and handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Register adds every route in groups to mux beneath basePath.
func Register(mux *http.ServeMux, basePath string, groups ...Group) {
	for _, group := range groups {
		register(mux, basePath, group)
	}
}

func register(mux *http.ServeMux, parentPrefix string, group Group) {
	fullPrefix := parentPrefix + group.Prefix
	for _, route := range group.Routes {
		pattern := fullPrefix + route.Pattern
		if pattern == "" {
			pattern = "/"
		}
		mux.HandleFunc(route.Method+" "+pattern, route.Handler)
	}
	for _, child := range group.Children {
		register(mux, fullPrefix, child)
	}
}

// Patterns lists the method patterns groups would register beneath basePath.
func Patterns(basePath string, groups ...Group) []string {
	var out []string
	var walk func(prefix string, g Group)
	walk = func(prefix string, g Group) {
		full := prefix + g.Prefix
		for _, r := range g.Routes {
			out = append(out, r.Method+" "+full+r.Pattern)
		}
		for _, c := range g.Children {
			walk(full, c)
		}
	}
	for _, g := range groups {
		walk(basePath, g)
	}
	return out
}
