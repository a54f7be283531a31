// Package startup handles configuration loading, build information, and
// startup logging for the service.
package startup
