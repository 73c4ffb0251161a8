// Package scoring holds the pure correlation math: tag overlap, temporal
// decay, great-circle distance, weighted composite scores, risk bands, and
// time-pattern similarity. Every function is stateless and safe for
// concurrent use.
package scoring

import (
	"math"
	"sort"
	"strings"
	"time"
)

// earthRadiusKM is the mean Earth radius used by the haversine formula.
const earthRadiusKM = 6371.0

// violentTags is the fixed lexicon used for risk assessment. Matching is
// case-insensitive.
var violentTags = map[string]struct{}{
	"assault": {},
	"murder":  {},
	"violent": {},
	"weapon":  {},
	"armed":   {},
	"battery": {},
}

// RiskBand classifies a composite risk score.
type RiskBand string

const (
	RiskLow    RiskBand = "LOW"
	RiskMedium RiskBand = "MEDIUM"
	RiskHigh   RiskBand = "HIGH"
)

// TagOverlap returns the cardinality of the intersection of two tag lists
// and the overlapping tags themselves, sorted for deterministic output.
// Duplicates within a list count once; the result is symmetric in its
// arguments.
func TagOverlap(a, b []string) (int, []string) {
	if len(a) == 0 || len(b) == 0 {
		return 0, nil
	}
	seen := make(map[string]struct{}, len(a))
	for _, t := range a {
		seen[t] = struct{}{}
	}
	var overlap []string
	matched := make(map[string]struct{})
	for _, t := range b {
		if _, ok := seen[t]; !ok {
			continue
		}
		if _, dup := matched[t]; dup {
			continue
		}
		matched[t] = struct{}{}
		overlap = append(overlap, t)
	}
	sort.Strings(overlap)
	return len(overlap), overlap
}

// TemporalSimilarity scores how close two timestamps are on a linear decay
// from 1 (same instant) to 0 (maxDays or further apart). A zero-valued
// timestamp on either side yields 0.
func TemporalSimilarity(t1, t2 time.Time, maxDays int) float64 {
	if t1.IsZero() || t2.IsZero() || maxDays <= 0 {
		return 0
	}
	diff := math.Abs(t1.Sub(t2).Seconds())
	maxSeconds := float64(maxDays) * 24 * 3600
	return math.Max(0, 1-diff/maxSeconds)
}

// HaversineKm returns the great-circle distance in kilometers between two
// points given in decimal degrees.
func HaversineKm(lon1, lat1, lon2, lat2 float64) float64 {
	rLon1 := lon1 * math.Pi / 180
	rLat1 := lat1 * math.Pi / 180
	rLon2 := lon2 * math.Pi / 180
	rLat2 := lat2 * math.Pi / 180

	dLon := rLon2 - rLon1
	dLat := rLat2 - rLat1

	a := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Pow(math.Sin(dLon/2), 2)
	return 2 * earthRadiusKM * math.Asin(math.Sqrt(a))
}

// HaversineMeters is HaversineKm scaled to meters.
func HaversineMeters(lon1, lat1, lon2, lat2 float64) float64 {
	return HaversineKm(lon1, lat1, lon2, lat2) * 1000
}

// Component is one weighted term of a composite score.
type Component struct {
	Value  float64
	Weight float64
}

// WeightedScore sums value*weight over all components. Weights are not
// normalized; callers keep the component scales comparable.
func WeightedScore(components map[string]Component) float64 {
	var total float64
	for _, c := range components {
		total += c.Value * c.Weight
	}
	return total
}

// RiskLevel maps a composite score to a band: LOW for [0,5], MEDIUM for
// (5,10], HIGH above 10. Boundary scores land in the lower band.
func RiskLevel(score float64) RiskBand {
	switch {
	case score <= 5:
		return RiskLow
	case score <= 10:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// CountViolentTags counts distinct tags belonging to the violent lexicon,
// case-insensitively.
func CountViolentTags(tags []string) int {
	if len(tags) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(tags))
	count := 0
	for _, tag := range tags {
		lower := strings.ToLower(tag)
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		if _, violent := violentTags[lower]; violent {
			count++
		}
	}
	return count
}

// Round2 rounds to two decimal places. Used for composite scores and
// distances in result payloads.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round3 rounds to three decimal places. Used for similarity ratios.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
