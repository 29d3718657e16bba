package models

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// CourseCategory classifies a course section for display and reporting.
type CourseCategory string

const (
	CategoryMajor CourseCategory = "MAJOR"
	CategoryMinor CourseCategory = "MINOR"
	CategorySkill CourseCategory = "SKILL"
	CategoryAEC   CourseCategory = "AEC"
	CategoryVAC   CourseCategory = "VAC"
	CategoryLab   CourseCategory = "LAB"
)

// TimeBucket groups periods into coarse parts of the day for preference scoring.
type TimeBucket string

const (
	BucketMorning   TimeBucket = "MORNING"
	BucketMidday    TimeBucket = "MIDDAY"
	BucketAfternoon TimeBucket = "AFTERNOON"
)

// CourseSection is one teachable unit of a course for a specific cohort.
// Catalog data is read-only to the engine.
type CourseSection struct {
	ID               string         `db:"id" json:"id"`
	CourseCode       string         `db:"course_code" json:"course_code"`
	SectionLabel     string         `db:"section_label" json:"section_label"`
	Title            string         `db:"title" json:"title"`
	Category         CourseCategory `db:"category" json:"category"`
	WeeklyHours      int            `db:"weekly_hours" json:"weekly_hours"`
	Enrollment       int            `db:"enrollment" json:"enrollment"`
	Cohort           string         `db:"cohort" json:"cohort"`
	RequiredFeatures types.JSONText `db:"required_features" json:"required_features"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// FeatureList decodes the stored feature array, best-effort.
func (s CourseSection) FeatureList() []string {
	return decodeStringList(s.RequiredFeatures)
}

// FacultyMember describes an instructor, their weekly availability and load limits.
type FacultyMember struct {
	ID             string         `db:"id" json:"id"`
	Name           string         `db:"name" json:"name"`
	MaxWeeklyHours int            `db:"max_weekly_hours" json:"max_weekly_hours"`
	Expertise      types.JSONText `db:"expertise" json:"expertise"`
	Availability   types.JSONText `db:"availability" json:"availability"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// ExpertiseList decodes the stored subject-expertise tags, best-effort.
func (f FacultyMember) ExpertiseList() []string {
	return decodeStringList(f.Expertise)
}

// AvailabilityMask maps a day index to the periods the faculty member can teach.
type AvailabilityMask map[int][]int

// Allows reports whether the mask permits teaching at (day, period).
// An empty mask means fully available.
func (m AvailabilityMask) Allows(day, period int) bool {
	if len(m) == 0 {
		return true
	}
	for _, p := range m[day] {
		if p == period {
			return true
		}
	}
	return false
}

// AvailabilityMask decodes the stored day-to-periods availability map.
func (f FacultyMember) AvailabilityMask() AvailabilityMask {
	if len(f.Availability) == 0 {
		return nil
	}
	var mask map[int][]int
	_ = json.Unmarshal(f.Availability, &mask)
	return mask
}

// Room is a physical teaching space.
type Room struct {
	ID        string         `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	Capacity  int            `db:"capacity" json:"capacity"`
	Type      string         `db:"type" json:"type"`
	Features  types.JSONText `db:"features" json:"features"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// FeatureList decodes the stored feature array, best-effort.
func (r Room) FeatureList() []string {
	return decodeStringList(r.Features)
}

// CohortPreference records a cohort's preferred time-of-day bucket.
type CohortPreference struct {
	Cohort string     `db:"cohort" json:"cohort"`
	Bucket TimeBucket `db:"bucket" json:"bucket"`
}

// CatalogSnapshot is the read-only input to a generation run, fetched once
// at the start of the run.
type CatalogSnapshot struct {
	Sections    []CourseSection       `json:"sections"`
	Faculty     []FacultyMember       `json:"faculty"`
	Rooms       []Room                `json:"rooms"`
	Preferences map[string]TimeBucket `json:"preferences"`
}

// Empty reports whether the snapshot has nothing to schedule.
func (c *CatalogSnapshot) Empty() bool {
	return c == nil || len(c.Sections) == 0 || len(c.Rooms) == 0 || len(c.Faculty) == 0
}

func decodeStringList(raw types.JSONText) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	_ = json.Unmarshal(raw, &list)
	return list
}
