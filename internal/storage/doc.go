// Package storage defines the blob store boundary used for finished media
// assets, plus a local-disk implementation.
package storage
