// Package shared provides reusable domain logic shared across aggregates.
package shared

import "time"

// IsExpiredAt reports whether expiresAt has passed at now.
// A nil expiresAt never expires.
func IsExpiredAt(expiresAt *time.Time, now time.Time) bool {
	if expiresAt == nil {
		return false
	}
	return !now.Before(*expiresAt)
}
