package scoring

import (
	"sort"
	"time"
)

// TimePattern is the per-incident-set temporal fingerprint: hour-of-day and
// weekday histograms plus a weekend-dominance flag. It lives for one
// analysis call and is never persisted.
type TimePattern struct {
	HourCounts    map[int]int
	WeekdayCounts map[time.Weekday]int
	WeekendHeavy  bool
}

// ExtractTimePatterns builds a TimePattern from incident occurrence times.
// Zero-valued timestamps are skipped. WeekendHeavy is true only when the
// weekend bucket strictly exceeds the weekday bucket; ties and empty input
// report false.
func ExtractTimePatterns(occurredAt []time.Time) TimePattern {
	p := TimePattern{
		HourCounts:    make(map[int]int),
		WeekdayCounts: make(map[time.Weekday]int),
	}
	for _, t := range occurredAt {
		if t.IsZero() {
			continue
		}
		p.HourCounts[t.Hour()]++
		p.WeekdayCounts[t.Weekday()]++
	}

	weekend := p.WeekdayCounts[time.Saturday] + p.WeekdayCounts[time.Sunday]
	weekday := 0
	for d := time.Monday; d <= time.Friday; d++ {
		weekday += p.WeekdayCounts[d]
	}
	p.WeekendHeavy = weekend > weekday
	return p
}

// TopHours returns the pattern's n busiest hours. Ties break toward the
// earlier hour so the result is deterministic.
func (p TimePattern) TopHours(n int) []int {
	hours := make([]int, 0, len(p.HourCounts))
	for h := range p.HourCounts {
		hours = append(hours, h)
	}
	sort.Slice(hours, func(i, j int) bool {
		ci, cj := p.HourCounts[hours[i]], p.HourCounts[hours[j]]
		if ci != cj {
			return ci > cj
		}
		return hours[i] < hours[j]
	})
	if len(hours) > n {
		hours = hours[:n]
	}
	return hours
}

// PatternSimilarity scores two time patterns in [0,1]:
// 0.4 for matching weekend dominance plus 0.6 scaled by how many of each
// side's top-3 busiest hours coincide. The hour term is 0 when either side
// has no hours at all.
func PatternSimilarity(p1, p2 TimePattern) float64 {
	weekendMatch := 0.0
	if p1.WeekendHeavy == p2.WeekendHeavy {
		weekendMatch = 1.0
	}

	top1 := p1.TopHours(3)
	top2 := p2.TopHours(3)

	hourOverlap := 0.0
	if len(top1) > 0 && len(top2) > 0 {
		set := make(map[int]struct{}, len(top1))
		for _, h := range top1 {
			set[h] = struct{}{}
		}
		shared := 0
		for _, h := range top2 {
			if _, ok := set[h]; ok {
				shared++
			}
		}
		hourOverlap = float64(shared) / 3.0
	}

	return weekendMatch*0.4 + hourOverlap*0.6
}
