// Package cache provides the in-process TTL store fronting the location
// autocomplete provider. Contents are disposable and lost on restart.
package cache
