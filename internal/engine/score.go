package engine

import (
	"math"
	"sort"

	"github.com/noah-isme/campus-timetable-api/internal/models"
)

// Weights combines the three soft metrics into the scalar objective used by
// the generator's local search. Weights need not sum to 100.
type Weights struct {
	Satisfaction float64 `json:"satisfaction"`
	Balance      float64 `json:"balance"`
	Utilization  float64 `json:"utilization"`
}

// DefaultWeights mirrors the operator-facing defaults (40/35/25).
func DefaultWeights() Weights {
	return Weights{Satisfaction: 40, Balance: 35, Utilization: 25}
}

// Valid reports whether the weights can form an objective.
func (w Weights) Valid() bool {
	if w.Satisfaction < 0 || w.Balance < 0 || w.Utilization < 0 {
		return false
	}
	return w.Satisfaction+w.Balance+w.Utilization > 0
}

// Score computes the three normalized metrics for the draft's current
// assignment set. All three land in [0, 100].
func Score(d *Draft) models.ScenarioMetrics {
	return models.ScenarioMetrics{
		StudentSatisfaction: studentSatisfaction(d),
		FacultyBalance:      facultyBalance(d),
		RoomUtilization:     roomUtilization(d),
		Placed:              d.Len(),
	}
}

// Objective folds the metrics into a single weighted scalar in [0, 100].
func Objective(m models.ScenarioMetrics, w Weights) float64 {
	total := w.Satisfaction + w.Balance + w.Utilization
	if total <= 0 {
		return 0
	}
	return (w.Satisfaction*m.StudentSatisfaction + w.Balance*m.FacultyBalance + w.Utilization*m.RoomUtilization) / total
}

// studentSatisfaction is the fraction of assignments whose cohort has a
// stated time-of-day preference and which landed in that bucket, scaled to
// 100. With no stated preferences there is nothing to miss.
func studentSatisfaction(d *Draft) float64 {
	preferenced, hit := 0, 0
	for _, a := range d.assignments {
		bucket, ok := d.prefs[a.Cohort]
		if !ok {
			continue
		}
		preferenced++
		if d.grid.Bucket(a.Period) == bucket {
			hit++
		}
	}
	if preferenced == 0 {
		return 100
	}
	return 100 * float64(hit) / float64(preferenced)
}

// facultyBalance is 100 minus the coefficient of variation (capped at 1) of
// per-faculty load ratios, across faculty with at least one assignment. A
// perfectly even relative load scores 100.
func facultyBalance(d *Draft) float64 {
	var ratios []float64
	ids := make([]string, 0, len(d.facultyHours))
	for id := range d.facultyHours {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		hours := d.facultyHours[id]
		if hours == 0 {
			continue
		}
		info := d.faculty[id]
		max := info.maxHours
		if max <= 0 {
			max = hours
		}
		ratios = append(ratios, float64(hours)/float64(max))
	}
	if len(ratios) == 0 {
		return 100
	}

	var sum float64
	for _, r := range ratios {
		sum += r
	}
	mean := sum / float64(len(ratios))
	if mean == 0 {
		return 100
	}
	var variance float64
	for _, r := range ratios {
		variance += (r - mean) * (r - mean)
	}
	cv := math.Sqrt(variance/float64(len(ratios))) / mean
	if cv > 1 {
		cv = 1
	}
	return 100 * (1 - cv)
}

// roomUtilization is occupied (room, slot) cells over all schedulable
// (room, slot) cells, scaled to 100.
func roomUtilization(d *Draft) float64 {
	available := len(d.rooms) * d.grid.SchedulableSlots()
	if available == 0 {
		return 0
	}
	return 100 * float64(len(d.byRoom)) / float64(available)
}
