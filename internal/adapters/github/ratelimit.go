package github

import (
	"net/http"
	"strconv"
	"time"
)

// lowQuotaThreshold triggers a warning in rendered output without blocking it
const lowQuotaThreshold = 10

// RateInfo is the interpreted rate-limit state of one response
type RateInfo struct {
	// Limited is true when the quota is exhausted: forbidden status with
	// exactly zero remaining calls
	Limited bool

	// Remaining is the reported leftover quota, -1 when the header is absent
	Remaining int

	// ResetAt is the instant the quota refills, zero when unknown
	ResetAt time.Time
}

// LowQuota reports whether the remaining quota is close to exhaustion
func (r RateInfo) LowQuota() bool {
	return r.Remaining >= 0 && r.Remaining < lowQuotaThreshold
}

// InspectRate interprets response metadata into a RateInfo.
// A plain 403 with quota left is an auth problem, not a rate limit
func InspectRate(status int, h http.Header) RateInfo {
	info := RateInfo{Remaining: -1}

	if v := h.Get("X-RateLimit-Remaining"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			info.Remaining = n
		}
	}
	if v := h.Get("X-RateLimit-Reset"); v != "" {
		if sec, err := strconv.ParseInt(v, 10, 64); err == nil && sec > 0 {
			info.ResetAt = time.Unix(sec, 0).UTC()
		}
	}
	info.Limited = status == http.StatusForbidden && info.Remaining == 0
	return info
}
