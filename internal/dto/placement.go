package dto

import "github.com/noah-isme/campus-timetable-api/internal/models"

// PlacementRequest proposes a new assignment on a board draft.
type PlacementRequest struct {
	SectionID string `json:"section_id" validate:"required"`
	FacultyID string `json:"faculty_id" validate:"required"`
	RoomID    string `json:"room_id" validate:"required"`
	Day       int    `json:"day" validate:"gte=1,lte=7"`
	Period    int    `json:"period" validate:"gte=1"`
	Cohort    string `json:"cohort"`
}

// MoveRequest relocates an existing assignment. Empty room/faculty ids keep
// the current ones.
type MoveRequest struct {
	Day       int    `json:"day" validate:"gte=1,lte=7"`
	Period    int    `json:"period" validate:"gte=1"`
	RoomID    string `json:"room_id"`
	FacultyID string `json:"faculty_id"`
}

// EditRequest changes an assignment's faculty or room in place.
type EditRequest struct {
	RoomID    string `json:"room_id"`
	FacultyID string `json:"faculty_id"`
}

// PlacementResponse returns the committed assignment plus any advisory
// conflicts (weekly-hours overruns flagged but not blocking).
type PlacementResponse struct {
	Assignment models.Assignment `json:"assignment"`
	Flagged    []models.Conflict `json:"flagged,omitempty"`
}

// ConflictSetResponse reports the outcome of a live placement check.
type ConflictSetResponse struct {
	Valid     bool              `json:"valid"`
	Conflicts []models.Conflict `json:"conflicts,omitempty"`
}
