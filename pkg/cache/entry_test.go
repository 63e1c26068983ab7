package cache

import (
	"testing"
	"time"
)

func TestCacheEntry_Expiry(t *testing.T) {
	tests := []struct {
		name        string
		expires     time.Time
		wantExpired bool
		wantMin     time.Duration
		wantMax     time.Duration
	}{
		{
			name:        "expired an hour ago",
			expires:     time.Now().Add(-1 * time.Hour),
			wantExpired: true,
		},
		{
			name:        "just expired",
			expires:     time.Now().Add(-1 * time.Second),
			wantExpired: true,
		},
		{
			name:    "ten minutes remaining",
			expires: time.Now().Add(10 * time.Minute),
			wantMin: 9*time.Minute + 59*time.Second,
			wantMax: 10*time.Minute + 1*time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &CacheEntry{Expires: tt.expires}

			if got := entry.IsExpired(); got != tt.wantExpired {
				t.Errorf("IsExpired() = %v, want %v", got, tt.wantExpired)
			}

			got := entry.TTL()
			if got < tt.wantMin || got > tt.wantMax {
				t.Errorf("TTL() = %v, want between %v and %v", got, tt.wantMin, tt.wantMax)
			}
		})
	}
}
