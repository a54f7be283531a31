package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"neighborly/internal/cache"
	"neighborly/internal/geocode"
	"neighborly/internal/ratelimit"
	"neighborly/internal/startup"
)

// scriptedLimiter returns a fixed decision and counts calls.
type scriptedLimiter struct {
	decision ratelimit.Decision
	calls    int
}

func (l *scriptedLimiter) Allow(client, bucket string) ratelimit.Decision {
	l.calls++
	return l.decision
}

func allowAll() *scriptedLimiter {
	return &scriptedLimiter{decision: ratelimit.Decision{Allowed: true}}
}

// newProxyFixture wires a Handlers instance against a counting fake
// upstream. The returned counter reports upstream calls.
func newProxyFixture(t *testing.T, apiKey string, limiter ratelimit.Limiter) (*Handlers, *httptest.Server, *atomic.Int64) {
	t.Helper()

	var upstreamCalls atomic.Int64
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"features":[{"properties":{"formatted":"Springfield, USA"}}]}`))
	}))
	t.Cleanup(upstream.Close)

	config := &startup.Config{
		AutocompleteTTL:   5 * time.Minute,
		CacheMaxEntries:   1000,
		MaxImageDimension: 2000,
		MaxUploadBytes:    15 << 20,
	}
	h := New(cache.NewStore(config.CacheMaxEntries), limiter,
		geocode.NewClient(upstream.URL, apiKey, 5, ""), nil, config)
	return h, upstream, &upstreamCalls
}

func doAutocomplete(h *Handlers, query string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, "/api/location-autocomplete?q="+query, nil)
	r.RemoteAddr = "198.51.100.7:1234"
	w := httptest.NewRecorder()
	h.LocationAutocomplete(w, r)
	return w
}

func TestAutocompleteMissThenHit(t *testing.T) {
	h, _, upstreamCalls := newProxyFixture(t, "key", allowAll())

	first := doAutocomplete(h, "springfield")
	if first.Code != http.StatusOK {
		t.Fatalf("first call status = %d, want 200 (body %s)", first.Code, first.Body.String())
	}
	if got := first.Header().Get("X-Cache"); got != "MISS" {
		t.Errorf("first call X-Cache = %q, want MISS", got)
	}
	if got := first.Header().Get("Cache-Control"); got != "public, s-maxage=300" {
		t.Errorf("first call Cache-Control = %q, want public, s-maxage=300", got)
	}

	second := doAutocomplete(h, "springfield")
	if got := second.Header().Get("X-Cache"); got != "HIT" {
		t.Errorf("second call X-Cache = %q, want HIT", got)
	}
	if second.Header().Get("Cache-Control") != "" {
		t.Error("cache hit must not carry a Cache-Control directive")
	}
	if second.Body.String() != first.Body.String() {
		t.Error("hit payload differs from miss payload")
	}
	if n := upstreamCalls.Load(); n != 1 {
		t.Errorf("upstream called %d times, want 1", n)
	}
}

func TestAutocompleteNormalizedKeysCollide(t *testing.T) {
	h, _, upstreamCalls := newProxyFixture(t, "key", allowAll())

	doAutocomplete(h, "Springfield")
	doAutocomplete(h, "springfield")
	doAutocomplete(h, "SPRINGFIELD")

	if n := upstreamCalls.Load(); n != 1 {
		t.Errorf("case variants caused %d upstream calls, want 1", n)
	}
}

func TestAutocompleteValidationBounds(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{"missing query", "", http.StatusBadRequest},
		{"length 2 rejected", "ab", http.StatusBadRequest},
		{"length 3 accepted", "abc", http.StatusOK},
		{"length 64 accepted", strings.Repeat("a", 64), http.StatusOK},
		{"length 65 rejected", strings.Repeat("a", 65), http.StatusBadRequest},
		{"whitespace only rejected", "%20%20%20", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, _ := newProxyFixture(t, "key", allowAll())
			w := doAutocomplete(h, tt.query)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus == http.StatusBadRequest {
				var body map[string]string
				if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["error"] == "" {
					t.Errorf("validation failure must return a JSON error, got %s", w.Body.String())
				}
			}
		})
	}
}

func TestAutocompleteRateLimited(t *testing.T) {
	limiter := &scriptedLimiter{decision: ratelimit.Decision{RetryAfter: 7 * time.Second}}
	h, _, upstreamCalls := newProxyFixture(t, "key", limiter)

	w := doAutocomplete(h, "springfield")

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "7" {
		t.Errorf("Retry-After = %q, want 7", got)
	}
	if n := upstreamCalls.Load(); n != 0 {
		t.Errorf("denied request reached upstream %d times", n)
	}
	if h.cache.Len() != 0 {
		t.Error("denied request wrote to the cache")
	}
}

func TestAutocompleteRateLimitedRetryAfterRoundsUp(t *testing.T) {
	limiter := &scriptedLimiter{decision: ratelimit.Decision{RetryAfter: 1500 * time.Millisecond}}
	h, _, _ := newProxyFixture(t, "key", limiter)

	w := doAutocomplete(h, "springfield")
	if got := w.Header().Get("Retry-After"); got != "2" {
		t.Errorf("Retry-After = %q, want 2 (rounded up)", got)
	}
}

func TestAutocompleteRateLimitedWithoutHint(t *testing.T) {
	limiter := &scriptedLimiter{decision: ratelimit.Decision{}}
	h, _, _ := newProxyFixture(t, "key", limiter)

	w := doAutocomplete(h, "springfield")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") != "" {
		t.Error("Retry-After present despite no hint from the limiter")
	}
}

func TestAutocompleteMissingCredential(t *testing.T) {
	h, _, upstreamCalls := newProxyFixture(t, "", allowAll())

	w := doAutocomplete(h, "springfield")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if strings.Contains(w.Body.String(), "GEOCODER_API_KEY") {
		t.Error("response names the missing secret")
	}
	if n := upstreamCalls.Load(); n != 0 {
		t.Errorf("unconfigured proxy reached upstream %d times", n)
	}
}

func TestAutocompleteUpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"internal":"provider quota exhausted for account 12345"}`))
	}))
	t.Cleanup(upstream.Close)

	config := &startup.Config{AutocompleteTTL: 5 * time.Minute, MaxUploadBytes: 15 << 20}
	h := New(cache.NewStore(0), allowAll(), geocode.NewClient(upstream.URL, "key", 5, ""), nil, config)

	w := doAutocomplete(h, "springfield")

	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want upstream's 502", w.Code)
	}
	if strings.Contains(w.Body.String(), "quota exhausted") {
		t.Error("response leaks the upstream error body")
	}
	if h.cache.Len() != 0 {
		t.Error("failed fetch wrote to the cache")
	}
}

func TestAutocompleteTransportFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	upstream.Close()

	config := &startup.Config{AutocompleteTTL: 5 * time.Minute, MaxUploadBytes: 15 << 20}
	h := New(cache.NewStore(0), allowAll(), geocode.NewClient(upstream.URL, "key", 5, ""), nil, config)

	w := doAutocomplete(h, "springfield")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500 for transport failure", w.Code)
	}
}

func TestAutocompleteExpiredEntryIsMissAgain(t *testing.T) {
	h, _, upstreamCalls := newProxyFixture(t, "key", allowAll())

	// Seed an already-expired entry for the normalized key.
	h.cache.Set(cache.Key("geoapify", "springfield"), []byte(`{"features":[]}`), -time.Second)

	w := doAutocomplete(h, "springfield")
	if got := w.Header().Get("X-Cache"); got != "MISS" {
		t.Errorf("X-Cache = %q, want MISS for expired entry", got)
	}
	if n := upstreamCalls.Load(); n != 1 {
		t.Errorf("upstream called %d times, want 1", n)
	}
}
