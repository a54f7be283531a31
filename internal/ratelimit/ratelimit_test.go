package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAllowWithinBurst(t *testing.T) {
	l := New(30, 5)

	for i := 0; i < 5; i++ {
		d := l.Allow("1.2.3.4", "autocomplete")
		if !d.Allowed {
			t.Fatalf("request %d denied within burst", i)
		}
	}
}

func TestDenyPastBurstWithRetryHint(t *testing.T) {
	l := New(30, 3)

	for i := 0; i < 3; i++ {
		if d := l.Allow("1.2.3.4", "autocomplete"); !d.Allowed {
			t.Fatalf("request %d denied within burst", i)
		}
	}

	d := l.Allow("1.2.3.4", "autocomplete")
	if d.Allowed {
		t.Fatal("request past burst was allowed")
	}
	if d.RetryAfter <= 0 {
		t.Error("denied decision carries no retry hint")
	}
}

func TestClientsAreIndependent(t *testing.T) {
	l := New(30, 1)

	if d := l.Allow("1.1.1.1", "autocomplete"); !d.Allowed {
		t.Fatal("first client's first request denied")
	}
	if d := l.Allow("1.1.1.1", "autocomplete"); d.Allowed {
		t.Fatal("first client's second request allowed past burst")
	}
	if d := l.Allow("2.2.2.2", "autocomplete"); !d.Allowed {
		t.Error("second client throttled by first client's usage")
	}
}

func TestBucketsAreIndependent(t *testing.T) {
	l := New(30, 1)

	if d := l.Allow("1.1.1.1", "autocomplete"); !d.Allowed {
		t.Fatal("first bucket denied")
	}
	if d := l.Allow("1.1.1.1", "avatar"); !d.Allowed {
		t.Error("distinct bucket throttled by autocomplete usage")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{"remote addr with port", "10.0.0.1:4321", "", "10.0.0.1"},
		{"forwarded single", "10.0.0.1:4321", "203.0.113.9", "203.0.113.9"},
		{"forwarded list takes first valid", "10.0.0.1:4321", "garbage, 203.0.113.9", "203.0.113.9"},
		{"forwarded empty falls back", "10.0.0.1:4321", "  ", "10.0.0.1"},
		{"ipv6 remote", "[::1]:8080", "", "::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
