// Package middleware provides the HTTP middleware chain: request IDs,
// request logging, Prometheus metrics, and cross-origin policy.
package middleware
