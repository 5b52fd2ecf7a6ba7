package quantization

import "time"

const (
	// HotWindow is the recency under which a vector stays Hot.
	HotWindow = time.Hour
	// WarmWindow is the recency under which a vector stays at least Warm.
	WarmWindow = 24 * time.Hour
	// HotAccessCount is the access count above which a vector is Hot
	// regardless of recency.
	HotAccessCount = 10
	// WarmAccessCount is the access count above which a vector is at least
	// Warm regardless of recency.
	WarmAccessCount = 3
)

// AccessTracker records how often and how recently a vector was read.
type AccessTracker struct {
	AccessCount uint64      `json:"access_count"`
	LastAccess  time.Time   `json:"last_access"`
	Tier        Temperature `json:"tier"`
}

// NewAccessTracker returns a Hot tracker with no recorded accesses.
func NewAccessTracker(now time.Time) *AccessTracker {
	return &AccessTracker{LastAccess: now, Tier: Hot}
}

// Touch records an access at now.
func (t *AccessTracker) Touch(now time.Time) {
	t.AccessCount++
	t.LastAccess = now
}

// RecommendedTier returns the tier the access statistics call for. Access
// count overrides recency. The current Tier is not changed.
func (t *AccessTracker) RecommendedTier(now time.Time) Temperature {
	age := now.Sub(t.LastAccess)
	switch {
	case age < HotWindow || t.AccessCount > HotAccessCount:
		return Hot
	case age < WarmWindow || t.AccessCount > WarmAccessCount:
		return Warm
	default:
		return Cold
	}
}
