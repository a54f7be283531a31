package handlers

import (
	"time"

	"neighborly/internal/cache"
	"neighborly/internal/geocode"
	"neighborly/internal/media"
	"neighborly/internal/ratelimit"
	"neighborly/internal/startup"
	"neighborly/internal/storage"
)

// Handlers owns the HTTP handler set and its injected collaborators. All
// shared state (query cache, limiter) is constructed once at startup and
// handed in here; nothing is package-global.
type Handlers struct {
	cache    *cache.Store
	limiter  ratelimit.Limiter
	geocoder *geocode.Client
	blobs    storage.BlobStore
	pipeline *media.Pipeline
	config   *startup.Config
	started  time.Time
}

func New(store *cache.Store, limiter ratelimit.Limiter, geocoder *geocode.Client, blobs storage.BlobStore, config *startup.Config) *Handlers {
	return &Handlers{
		cache:    store,
		limiter:  limiter,
		geocoder: geocoder,
		blobs:    blobs,
		pipeline: &media.Pipeline{MaxDimension: config.MaxImageDimension},
		config:   config,
		started:  time.Now(),
	}
}
