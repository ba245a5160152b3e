package geo

import (
	"fmt"
	"math"
)

// MinUploadDistance is the closed lower bound, in meters, between consecutive uploads.
const MinUploadDistance = 150.0

// Eligibility is the outcome of a gate check.
type Eligibility struct {
	DistanceMeters  *float64 `json:"distanceMeters"`
	Eligible        bool     `json:"eligible"`
	RemainingMeters float64  `json:"remainingMeters"`
	MinimumMeters   float64  `json:"minimumMeters"`
}

// Gate decides whether a new upload is permitted. The zero value uses MinUploadDistance.
type Gate struct {
	MinDistance float64
}

func (g Gate) minimum() float64 {
	if g.MinDistance > 0 {
		return g.MinDistance
	}
	return MinUploadDistance
}

// Check compares current against the last accepted location. A nil last means
// there is no previous upload and the check always passes.
func (g Gate) Check(last *GeoPoint, current GeoPoint) (Eligibility, error) {
	min := g.minimum()
	if err := current.Validate(); err != nil {
		return Eligibility{MinimumMeters: min}, err
	}
	if last == nil {
		return Eligibility{Eligible: true, MinimumMeters: min}, nil
	}
	if err := last.Validate(); err != nil {
		return Eligibility{MinimumMeters: min}, err
	}

	d := Distance(*last, current)
	return Eligibility{
		DistanceMeters:  &d,
		Eligible:        d >= min,
		RemainingMeters: math.Max(0, min-d),
		MinimumMeters:   min,
	}, nil
}

// CheckEligibility runs the default 150 m gate.
func CheckEligibility(last *GeoPoint, current GeoPoint) (Eligibility, error) {
	return Gate{}.Check(last, current)
}

// Hint is the human-readable distance line shown next to the upload button.
func (e Eligibility) Hint() string {
	switch {
	case e.DistanceMeters == nil:
		return "First upload: no distance restriction"
	case e.Eligible:
		return fmt.Sprintf("%.2f meters from last upload", *e.DistanceMeters)
	default:
		return fmt.Sprintf("%.2f meters from last upload (Need %.2f more meters)", *e.DistanceMeters, e.RemainingMeters)
	}
}

// RejectionMessage is the error text for an upload attempted while ineligible.
func (e Eligibility) RejectionMessage() string {
	return fmt.Sprintf("You must be at least %.0f meters away from your last upload location (need %.2f more meters)",
		e.MinimumMeters, e.RemainingMeters)
}
