// Package geo provides great-circle distance computation and the
// check-in tolerance policy built on top of it.
package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used by the haversine formula.
const EarthRadiusMeters = 6_371_000.0

// Distance returns the haversine great-circle distance in meters between
// two points given in decimal degrees.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lng2 - lng1) * math.Pi / 180

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)

	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// Verdict classifies a reported position against the tolerance policy.
type Verdict int

const (
	Accept Verdict = iota
	AcceptWithWarning
	Reject
)

// Policy holds the two tolerance radii. Positions within AcceptRadius are
// accepted outright; positions within WarnRadius are accepted with a
// warning flagged for later review; anything beyond is rejected.
type Policy struct {
	AcceptRadiusMeters float64
	WarnRadiusMeters   float64
}

// DefaultPolicy absorbs typical consumer-GPS inaccuracy (5-50m, worse
// near tall buildings) while still proving physical presence.
var DefaultPolicy = Policy{
	AcceptRadiusMeters: 100,
	WarnRadiusMeters:   250,
}

// Evaluate classifies a measured distance. The policy is monotone: a
// larger distance never yields a more permissive verdict.
func (p Policy) Evaluate(distanceMeters float64) Verdict {
	switch {
	case distanceMeters <= p.AcceptRadiusMeters:
		return Accept
	case distanceMeters <= p.WarnRadiusMeters:
		return AcceptWithWarning
	default:
		return Reject
	}
}
