package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSanitizeSite(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"standard http", "http://example.com/path", "example.com"},
		{"standard https", "https://Example.com/path", "example.com"},
		{"no scheme", "example.com/path", "example.com"},
		{"host with port", "example.com:8080", "example.com"},
		{"invalid url", "http://%", "unknown"},
		{"empty string", "", "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeSite(tc.input); got != tc.expected {
				t.Errorf("SanitizeSite(%q) = %q; want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestInitIsIdempotent(t *testing.T) {
	Init()
	Init()

	if jobsTotal == nil || stageDurationSeconds == nil || httpRequestsTotal == nil || storeFallbacksTotal == nil {
		t.Fatal("Init() did not initialize metrics collectors")
	}
}

func TestObservers(t *testing.T) {
	Init()

	before := testutil.ToFloat64(jobsTotal.WithLabelValues("completed"))
	ObserveJob("completed")
	if got := testutil.ToFloat64(jobsTotal.WithLabelValues("completed")); got != before+1 {
		t.Errorf("expected completed jobs to increase by 1, got %f -> %f", before, got)
	}

	ObserveStage("fetching", 150*time.Millisecond)
	if n := testutil.CollectAndCount(stageDurationSeconds); n == 0 {
		t.Error("expected stage histogram to be observed")
	}

	clicks := testutil.ToFloat64(interstitialClicksTotal)
	ObserveHarvest("https://www.example.com", 12, 2, 3)
	if got := testutil.ToFloat64(interstitialClicksTotal); got != clicks+3 {
		t.Errorf("expected 3 more clicks, got %f -> %f", clicks, got)
	}
	if got := testutil.ToFloat64(harvestedColorsTotal.WithLabelValues("www.example.com")); got < 12 {
		t.Errorf("expected harvested colors to be recorded, got %f", got)
	}

	fallbacks := testutil.ToFloat64(storeFallbacksTotal.WithLabelValues("get"))
	ObserveStoreFallback("get")
	if got := testutil.ToFloat64(storeFallbacksTotal.WithLabelValues("get")); got != fallbacks+1 {
		t.Errorf("expected fallback counter to increase, got %f -> %f", fallbacks, got)
	}
}

// Fuzz test for SanitizeSite.
func FuzzSanitizeSite(f *testing.F) {
	for _, tc := range []string{"http://example.com", "https://google.com", "ftp://example.com"} {
		f.Add(tc)
	}
	f.Fuzz(func(t *testing.T, orig string) {
		if SanitizeSite(orig) == "" {
			t.Errorf("SanitizeSite(%q) returned an empty string", orig)
		}
	})
}
