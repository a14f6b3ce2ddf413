// Package api provides the HTTP front end for the medical knowledge base.
package api

import "time"

const (
	// DefaultMaxMessageLength bounds /chat messages in characters.
	DefaultMaxMessageLength = 500

	// DefaultRequestTimeout bounds a single request end to end.
	DefaultRequestTimeout = 120 * time.Second
)

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8081")
	ListenAddr string

	// Model is the completion model name reported by /health
	Model string

	// MaxMessageLength bounds /chat messages, defaults to DefaultMaxMessageLength
	MaxMessageLength int

	// RequestTimeout bounds each request, defaults to DefaultRequestTimeout
	RequestTimeout time.Duration
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}
