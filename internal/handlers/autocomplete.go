package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"neighborly/internal/cache"
	"neighborly/internal/geocode"
	"neighborly/internal/logging"
	"neighborly/internal/metrics"
	"neighborly/internal/ratelimit"
)

const (
	autocompleteBucket   = "autocomplete"
	autocompleteProvider = "geoapify"
	queryMinLen          = 3
	queryMaxLen          = 64
)

// LocationAutocomplete proxies location suggestions through the query
// cache. Each step exits early: rate limit, validation, configuration,
// cache lookup, upstream fetch, cache fill.
func (h *Handlers) LocationAutocomplete(w http.ResponseWriter, r *http.Request) {
	client := ratelimit.ClientIP(r)
	decision := h.limiter.Allow(client, autocompleteBucket)
	if !decision.Allowed {
		metrics.AutocompleteRateLimited.Inc()
		logging.Debug("autocomplete throttled for %s", client)
		if decision.RetryAfter > 0 {
			seconds := int(math.Ceil(decision.RetryAfter.Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
		}
		writeJSONError(w, "Too many requests, please slow down", http.StatusTooManyRequests)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSONError(w, "Query parameter q is required", http.StatusBadRequest)
		return
	}
	if n := utf8.RuneCountInString(query); n < queryMinLen {
		writeJSONError(w, fmt.Sprintf("Query must be at least %d characters", queryMinLen), http.StatusBadRequest)
		return
	} else if n > queryMaxLen {
		writeJSONError(w, fmt.Sprintf("Query must be at most %d characters", queryMaxLen), http.StatusBadRequest)
		return
	}

	if !h.geocoder.Configured() {
		// The missing secret is named in logs only, never in the response.
		logging.Error("autocomplete unavailable: GEOCODER_API_KEY is not configured")
		writeJSONError(w, "Location service is temporarily unavailable", http.StatusInternalServerError)
		return
	}

	key := cache.Key(autocompleteProvider, query)
	if payload, ok := h.cache.Get(key); ok {
		metrics.AutocompleteCacheHits.Inc()
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "HIT")
		w.Write(payload)
		return
	}

	payload, err := h.geocoder.Autocomplete(r.Context(), query)
	if err != nil {
		var upstreamErr *geocode.UpstreamError
		if errors.As(err, &upstreamErr) {
			logging.Error("autocomplete upstream status %d: %s", upstreamErr.StatusCode, upstreamErr.Body)
			writeJSONError(w, "Location lookup failed", upstreamErr.StatusCode)
			return
		}
		logging.Error("autocomplete upstream request failed: %v", err)
		writeJSONError(w, "Location lookup failed", http.StatusInternalServerError)
		return
	}

	ttl := h.config.AutocompleteTTL
	h.cache.Set(key, payload, ttl)
	metrics.AutocompleteCacheMisses.Inc()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "MISS")
	w.Header().Set("Cache-Control", fmt.Sprintf("public, s-maxage=%d", int(ttl.Seconds())))
	w.Write(payload)
}
