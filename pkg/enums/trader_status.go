package enums

import "fmt"

// TraderStatus tracks a user's wholesale-tier application through admin review.
type TraderStatus string

const (
	TraderStatusNone     TraderStatus = "none"
	TraderStatusApplied  TraderStatus = "applied"
	TraderStatusApproved TraderStatus = "approved"
	TraderStatusRevoked  TraderStatus = "revoked"
)

var validTraderStatuses = []TraderStatus{
	TraderStatusNone,
	TraderStatusApplied,
	TraderStatusApproved,
	TraderStatusRevoked,
}

// IsValid reports whether the value is a known TraderStatus.
func (t TraderStatus) IsValid() bool {
	for _, candidate := range validTraderStatuses {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTraderStatus converts the raw string to TraderStatus.
func ParseTraderStatus(value string) (TraderStatus, error) {
	for _, candidate := range validTraderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid trader status %q", value)
}
