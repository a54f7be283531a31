// Package handlers implements the HTTP API: location autocomplete proxying,
// avatar upload normalization, and health/version endpoints.
package handlers
