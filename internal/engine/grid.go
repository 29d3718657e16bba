package engine

import (
	"sort"

	"github.com/noah-isme/campus-timetable-api/internal/models"
)

// TimeGrid describes the weekly scheduling surface: an ordered set of days,
// a fixed number of periods per day, and one protected-break period per day
// that is excluded from all placement.
type TimeGrid struct {
	Days            []int
	PeriodsPerDay   int
	ProtectedPeriod int
}

// DefaultGrid is a Monday-Friday grid with eight periods and a midday
// protected break.
func DefaultGrid() TimeGrid {
	return TimeGrid{
		Days:            []int{1, 2, 3, 4, 5},
		PeriodsPerDay:   8,
		ProtectedPeriod: 4,
	}
}

// NewTimeGrid builds a grid of dayCount consecutive days starting at day 1.
func NewTimeGrid(dayCount, periodsPerDay, protectedPeriod int) TimeGrid {
	days := make([]int, 0, dayCount)
	for d := 1; d <= dayCount; d++ {
		days = append(days, d)
	}
	return TimeGrid{
		Days:            days,
		PeriodsPerDay:   periodsPerDay,
		ProtectedPeriod: protectedPeriod,
	}
}

// WellFormed reports whether the grid can hold assignments at all.
func (g TimeGrid) WellFormed() bool {
	return len(g.Days) > 0 && g.PeriodsPerDay >= 1
}

// Valid reports whether (day, period) lies on the grid at all.
func (g TimeGrid) Valid(day, period int) bool {
	if period < 1 || period > g.PeriodsPerDay {
		return false
	}
	for _, d := range g.Days {
		if d == day {
			return true
		}
	}
	return false
}

// Schedulable reports whether (day, period) may hold an assignment.
func (g TimeGrid) Schedulable(day, period int) bool {
	return g.Valid(day, period) && period != g.ProtectedPeriod
}

// SchedulableSlots returns the count of placeable cells per room.
func (g TimeGrid) SchedulableSlots() int {
	perDay := g.PeriodsPerDay
	if g.ProtectedPeriod >= 1 && g.ProtectedPeriod <= g.PeriodsPerDay {
		perDay--
	}
	return len(g.Days) * perDay
}

// Bucket maps a period to its time-of-day bucket. The grid is split into
// thirds; the protected break falls where it falls.
func (g TimeGrid) Bucket(period int) models.TimeBucket {
	third := g.PeriodsPerDay / 3
	if third < 1 {
		third = 1
	}
	switch {
	case period <= third:
		return models.BucketMorning
	case period <= 2*third:
		return models.BucketMidday
	default:
		return models.BucketAfternoon
	}
}

// Slot is a single (day, period) cell.
type Slot struct {
	Day    int
	Period int
}

// Slots returns every schedulable cell in deterministic day-major order.
func (g TimeGrid) Slots() []Slot {
	days := make([]int, len(g.Days))
	copy(days, g.Days)
	sort.Ints(days)

	slots := make([]Slot, 0, g.SchedulableSlots())
	for _, day := range days {
		for period := 1; period <= g.PeriodsPerDay; period++ {
			if period == g.ProtectedPeriod {
				continue
			}
			slots = append(slots, Slot{Day: day, Period: period})
		}
	}
	return slots
}
