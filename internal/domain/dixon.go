package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Critical values of Dixon's Q statistic (r10) keyed by sample size.
var (
	DixonCritical90 = map[int]float64{
		3: 0.941, 4: 0.765, 5: 0.642, 6: 0.560, 7: 0.507, 8: 0.468, 9: 0.437, 10: 0.412,
	}
	DixonCritical95 = map[int]float64{
		3: 0.970, 4: 0.829, 5: 0.710, 6: 0.625, 7: 0.568, 8: 0.526, 9: 0.493, 10: 0.466,
	}
	DixonCritical99 = map[int]float64{
		3: 0.994, 4: 0.926, 5: 0.821, 6: 0.740, 7: 0.680, 8: 0.634, 9: 0.598, 10: 0.568,
	}
)

// OutlierPolicy parameterizes Dixon's test. A sample whose size has no entry
// in Critical is never tested; an empty table disables detection.
type OutlierPolicy struct {
	Critical map[int]float64
}

// DefaultOutlierPolicy tests at 95% confidence.
func DefaultOutlierPolicy() OutlierPolicy {
	return OutlierPolicy{Critical: DixonCritical95}
}

// DixonPolicy returns the built-in table for a confidence level of 90, 95 or 99.
func DixonPolicy(confidence int) (OutlierPolicy, error) {
	switch confidence {
	case 90:
		return OutlierPolicy{Critical: DixonCritical90}, nil
	case 95:
		return OutlierPolicy{Critical: DixonCritical95}, nil
	case 99:
		return OutlierPolicy{Critical: DixonCritical99}, nil
	default:
		return OutlierPolicy{}, fmt.Errorf("%w: no dixon table for %d%% confidence", ErrInvalidConfiguration, confidence)
	}
}

// Outliers runs Dixon's Q test separately for each scoring category over the
// given scores and returns the IDs of the scores at an outlying extreme,
// sorted. Practice scores and scores without points are not part of any
// sample.
func (p OutlierPolicy) Outliers(scores []Score) []string {
	if len(p.Critical) == 0 {
		return nil
	}
	samples := make(map[Category][]Score)
	for _, s := range scores {
		if s.Kind == PanelPractice || !s.Entered() || s.Category == CategoryAdmin {
			continue
		}
		samples[s.Category] = append(samples[s.Category], s)
	}

	var flagged []string
	for _, c := range ScoringCategories {
		flagged = append(flagged, p.sampleOutliers(samples[c])...)
	}
	slices.Sort(flagged)
	return flagged
}

func (p OutlierPolicy) sampleOutliers(sample []Score) []string {
	n := len(sample)
	critical, ok := p.Critical[n]
	if !ok {
		return nil
	}
	sorted := slices.Clone(sample)
	slices.SortFunc(sorted, func(a, b Score) int {
		if *a.Points != *b.Points {
			return *a.Points - *b.Points
		}
		return strings.Compare(a.ID, b.ID)
	})

	low, high := *sorted[0].Points, *sorted[n-1].Points
	spread := float64(high - low)
	if spread == 0 {
		return nil
	}

	var out []string
	if float64(*sorted[1].Points-low)/spread > critical {
		out = append(out, idsWithPoints(sorted, low)...)
	}
	if float64(high-*sorted[n-2].Points)/spread > critical {
		out = append(out, idsWithPoints(sorted, high)...)
	}
	return out
}

func idsWithPoints(scores []Score, points int) []string {
	var ids []string
	for _, s := range scores {
		if *s.Points == points {
			ids = append(ids, s.ID)
		}
	}
	return ids
}
