package booking

// CapacityLevel classifies how full an activity date is.
type CapacityLevel string

const (
	CapacityCritical CapacityLevel = "critical" // ≤10% remaining
	CapacityWarning  CapacityLevel = "warning"  // ≤25% remaining
	CapacityModerate CapacityLevel = "moderate" // ≤50% remaining
	CapacityGood     CapacityLevel = "good"
)

// CapacityAdvice is a display-only classification of remaining
// capacity with a fixed advisory message.
type CapacityAdvice struct {
	Level   CapacityLevel
	Message string
}

// ClassifyCapacity maps a remaining/total ratio to an advisory band.
// Non-positive totals classify as critical, the most restrictive
// interpretation of missing configuration.
func ClassifyCapacity(remaining, total int) CapacityAdvice {
	if total <= 0 || remaining <= 0 {
		return CapacityAdvice{CapacityCritical, "Almost fully booked. Very few slots remain"}
	}

	ratio := float64(remaining) / float64(total)
	switch {
	case ratio <= 0.10:
		return CapacityAdvice{CapacityCritical, "Almost fully booked. Very few slots remain"}
	case ratio <= 0.25:
		return CapacityAdvice{CapacityWarning, "Filling up fast. Book soon to secure a slot"}
	case ratio <= 0.50:
		return CapacityAdvice{CapacityModerate, "Moderate availability remaining"}
	default:
		return CapacityAdvice{CapacityGood, "Plenty of slots available"}
	}
}
