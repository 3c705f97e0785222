// Package middleware provides composable net/http middleware for request
// logging, CORS, panic recovery, and path canonicalization.
package middleware

import "net/http"

// Middleware wraps an http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Stack applies middleware in registration order, so the first registered
// middleware is the outermost wrapper.
type Stack struct {
	middlewares []Middleware
}

// New creates an empty middleware stack.
func New() *Stack {
	return &Stack{middlewares: make([]Middleware, 0)}
}

// Use appends mw to the stack.
func (s *Stack) Use(mw Middleware) {
	s.middlewares = append(s.middlewares, mw)
}

// Apply wraps handler with every registered middleware.
func (s *Stack) Apply(handler http.Handler) http.Handler {
	for i := len(s.middlewares) - 1; i >= 0; i-- {
		handler = s.middlewares[i](handler)
	}
	return handler
}
