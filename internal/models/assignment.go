package models

import (
	"fmt"
	"strings"
	"time"
)

// Assignment places a course section with a faculty member in a room at a
// weekly (day, period) slot. It is the only mutable unit in a timetable.
type Assignment struct {
	ID        string    `db:"id" json:"id"`
	SectionID string    `db:"section_id" json:"section_id"`
	FacultyID string    `db:"faculty_id" json:"faculty_id"`
	RoomID    string    `db:"room_id" json:"room_id"`
	Day       int       `db:"day" json:"day"`
	Period    int       `db:"period" json:"period"`
	Cohort    string    `db:"cohort" json:"cohort"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Invariant identifies one of the timetable hard constraints.
type Invariant int

const (
	InvariantRoomExclusive    Invariant = 1
	InvariantFacultyExclusive Invariant = 2
	InvariantCohortExclusive  Invariant = 3
	InvariantProtectedBreak   Invariant = 4
	InvariantRoomFit          Invariant = 5
	InvariantAvailability     Invariant = 6
	InvariantWeeklyHours      Invariant = 7
)

// String returns a short human-readable label for the invariant.
func (i Invariant) String() string {
	switch i {
	case InvariantRoomExclusive:
		return "ROOM_OCCUPIED"
	case InvariantFacultyExclusive:
		return "FACULTY_DOUBLE_BOOKED"
	case InvariantCohortExclusive:
		return "COHORT_DOUBLE_BOOKED"
	case InvariantProtectedBreak:
		return "PROTECTED_BREAK"
	case InvariantRoomFit:
		return "ROOM_UNSUITABLE"
	case InvariantAvailability:
		return "FACULTY_UNAVAILABLE"
	case InvariantWeeklyHours:
		return "WEEKLY_HOURS_EXCEEDED"
	default:
		return "UNKNOWN"
	}
}

// Conflict describes a single invariant violation for a candidate placement.
// Blocking conflicts reject the placement; advisory conflicts (weekly-hours
// overruns during manual edits) are surfaced but do not reject.
type Conflict struct {
	Invariant Invariant   `json:"invariant"`
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Blocking  bool        `json:"blocking"`
	With      *Assignment `json:"with,omitempty"`
}

// ConflictError is returned when a placement is rejected; it carries the
// full set of violations so the caller can report precise reasons.
type ConflictError struct {
	Conflicts []Conflict `json:"conflicts"`
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	if e == nil || len(e.Conflicts) == 0 {
		return "constraint violation"
	}
	codes := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		codes = append(codes, c.Code)
	}
	return fmt.Sprintf("constraint violation: %s", strings.Join(codes, ", "))
}
