// Package occupancy classifies a room's fill ratio into coarse tiers for
// status displays.
package occupancy

// Tier is a room's fill-ratio classification. The numeric values are part of
// the API response format.
type Tier int

const (
	Low    Tier = 0 // ratio <= 0.5
	Medium Tier = 1 // 0.5 < ratio <= 0.75
	High   Tier = 2 // ratio > 0.75
)

func (t Tier) String() string {
	switch t {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	default:
		return "unknown"
	}
}

// Classify derives the tier from the current reservation count and the room
// capacity. Capacity is guaranteed positive by catalog validation.
func Classify(count, capacity int) Tier {
	ratio := float64(count) / float64(capacity)
	switch {
	case ratio <= 0.5:
		return Low
	case ratio <= 0.75:
		return Medium
	default:
		return High
	}
}
