// Package geocode wraps the external location autocomplete provider.
package geocode
