package valueobject

import "fmt"

// RiskLevel is the categorical tier derived from a probability of default.
type RiskLevel struct {
	value string
}

var (
	RiskLevelLow    = RiskLevel{value: "Low Risk"}
	RiskLevelMedium = RiskLevel{value: "Medium Risk"}
	RiskLevelHigh   = RiskLevel{value: "High Risk"}
)

// RiskLevelFromString parses the label produced by String.
func RiskLevelFromString(s string) (RiskLevel, error) {
	switch s {
	case RiskLevelLow.value:
		return RiskLevelLow, nil
	case RiskLevelMedium.value:
		return RiskLevelMedium, nil
	case RiskLevelHigh.value:
		return RiskLevelHigh, nil
	default:
		return RiskLevel{}, fmt.Errorf("invalid risk level: %q", s)
	}
}

func (r RiskLevel) String() string { return r.value }

// IsZero reports whether the level is unset.
func (r RiskLevel) IsZero() bool { return r.value == "" }

// Equal compares two levels.
func (r RiskLevel) Equal(other RiskLevel) bool { return r.value == other.value }

// MarshalText implements encoding.TextMarshaler.
func (r RiskLevel) MarshalText() ([]byte, error) { return []byte(r.value), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *RiskLevel) UnmarshalText(b []byte) error {
	lvl, err := RiskLevelFromString(string(b))
	if err != nil {
		return err
	}
	*r = lvl
	return nil
}
