package enums

import "fmt"

// SizeLabel is the closed set of rug dimensions a product variant may carry.
type SizeLabel string

const (
	SizeLabel2x3 SizeLabel = "2x3"
	SizeLabel3x5 SizeLabel = "3x5"
	SizeLabel4x6 SizeLabel = "4x6"
	SizeLabel5x8 SizeLabel = "5x8"
	SizeLabel6x9 SizeLabel = "6x9"
)

var validSizeLabels = []SizeLabel{
	SizeLabel2x3,
	SizeLabel3x5,
	SizeLabel4x6,
	SizeLabel5x8,
	SizeLabel6x9,
}

// String implements fmt.Stringer.
func (s SizeLabel) String() string {
	return string(s)
}

// IsValid reports whether the value is one of the canonical rug sizes.
func (s SizeLabel) IsValid() bool {
	for _, candidate := range validSizeLabels {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSizeLabel converts the raw string to SizeLabel.
func ParseSizeLabel(value string) (SizeLabel, error) {
	for _, candidate := range validSizeLabels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid size label %q", value)
}

// SizeLabels returns the canonical size set in display order.
func SizeLabels() []SizeLabel {
	out := make([]SizeLabel, len(validSizeLabels))
	copy(out, validSizeLabels)
	return out
}
