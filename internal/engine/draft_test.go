package engine

import (
	"errors"
	"testing"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-timetable-api/internal/models"
)

func testCatalog() *models.CatalogSnapshot {
	return &models.CatalogSnapshot{
		Sections: []models.CourseSection{
			{ID: "sec-os", CourseCode: "CS301", SectionLabel: "A", Category: models.CategoryMajor, WeeklyHours: 2, Enrollment: 40, Cohort: "CS-3A"},
			{ID: "sec-lab", CourseCode: "CS305L", SectionLabel: "A", Category: models.CategoryLab, WeeklyHours: 2, Enrollment: 24, Cohort: "CS-3A", RequiredFeatures: types.JSONText(`["lab_computers"]`)},
			{ID: "sec-min", CourseCode: "MA201", SectionLabel: "A", Category: models.CategoryMinor, WeeklyHours: 2, Enrollment: 20, Cohort: "CS-3B"},
		},
		Faculty: []models.FacultyMember{
			{ID: "fac-a", Name: "Prof. Rao", MaxWeeklyHours: 10, Expertise: types.JSONText(`["CS301", "MAJOR"]`)},
			{ID: "fac-b", Name: "Dr. Das", MaxWeeklyHours: 2, Expertise: types.JSONText(`["MA201"]`)},
			{ID: "fac-limited", Name: "Dr. Iyer", MaxWeeklyHours: 8, Availability: types.JSONText(`{"1": [1, 2]}`)},
		},
		Rooms: []models.Room{
			{ID: "room-big", Name: "LH-101", Capacity: 60, Features: types.JSONText(`["projector"]`)},
			{ID: "room-lab", Name: "CSE Lab 1", Capacity: 30, Features: types.JSONText(`["lab_computers"]`)},
			{ID: "room-small", Name: "LH-201", Capacity: 25},
		},
		Preferences: map[string]models.TimeBucket{"CS-3A": models.BucketMorning},
	}
}

func newTestDraft(t *testing.T) *Draft {
	t.Helper()
	return NewDraft(DefaultGrid(), testCatalog())
}

func place(t *testing.T, d *Draft, a models.Assignment) {
	t.Helper()
	flagged, err := d.Apply(a)
	require.NoError(t, err)
	require.Empty(t, flagged)
}

func conflictCodes(t *testing.T, err error) []string {
	t.Helper()
	var conflictErr *models.ConflictError
	require.ErrorAs(t, err, &conflictErr)
	codes := make([]string, 0, len(conflictErr.Conflicts))
	for _, c := range conflictErr.Conflicts {
		codes = append(codes, c.Code)
	}
	return codes
}

func TestDraftApplyRejectsRoomDoubleBooking(t *testing.T) {
	d := newTestDraft(t)
	place(t, d, models.Assignment{ID: "a1", SectionID: "sec-os", FacultyID: "fac-a", RoomID: "room-big", Day: 1, Period: 1, Cohort: "CS-3A"})

	_, err := d.Apply(models.Assignment{ID: "a2", SectionID: "sec-min", FacultyID: "fac-b", RoomID: "room-big", Day: 1, Period: 1, Cohort: "CS-3B"})
	assert.Contains(t, conflictCodes(t, err), "ROOM_OCCUPIED")
	assert.Equal(t, 1, d.Len())
}

func TestDraftApplyRejectsFacultyDoubleBooking(t *testing.T) {
	d := newTestDraft(t)
	place(t, d, models.Assignment{ID: "a1", SectionID: "sec-os", FacultyID: "fac-a", RoomID: "room-big", Day: 1, Period: 1, Cohort: "CS-3A"})

	_, err := d.Apply(models.Assignment{ID: "a2", SectionID: "sec-min", FacultyID: "fac-a", RoomID: "room-small", Day: 1, Period: 1, Cohort: "CS-3B"})
	assert.Contains(t, conflictCodes(t, err), "FACULTY_DOUBLE_BOOKED")
}

func TestDraftApplyRejectsCohortDoubleBooking(t *testing.T) {
	d := newTestDraft(t)
	place(t, d, models.Assignment{ID: "a1", SectionID: "sec-os", FacultyID: "fac-a", RoomID: "room-big", Day: 1, Period: 1, Cohort: "CS-3A"})

	_, err := d.Apply(models.Assignment{ID: "a2", SectionID: "sec-lab", FacultyID: "fac-limited", RoomID: "room-lab", Day: 1, Period: 1, Cohort: "CS-3A"})
	assert.Contains(t, conflictCodes(t, err), "COHORT_DOUBLE_BOOKED")
}

func TestDraftApplyRejectsProtectedBreak(t *testing.T) {
	d := newTestDraft(t)
	_, err := d.Apply(models.Assignment{ID: "a1", SectionID: "sec-os", FacultyID: "fac-a", RoomID: "room-big", Day: 1, Period: 4, Cohort: "CS-3A"})
	assert.Contains(t, conflictCodes(t, err), "PROTECTED_BREAK")
	assert.Equal(t, 0, d.Len())
}

func TestDraftApplyRejectsUnsuitableRoom(t *testing.T) {
	d := newTestDraft(t)

	// missing required feature
	_, err := d.Apply(models.Assignment{ID: "a1", SectionID: "sec-lab", FacultyID: "fac-a", RoomID: "room-small", Day: 1, Period: 1, Cohort: "CS-3A"})
	assert.Contains(t, conflictCodes(t, err), "ROOM_UNSUITABLE")

	// capacity below enrollment
	_, err = d.Apply(models.Assignment{ID: "a2", SectionID: "sec-os", FacultyID: "fac-a", RoomID: "room-small", Day: 1, Period: 2, Cohort: "CS-3A"})
	assert.Contains(t, conflictCodes(t, err), "ROOM_UNSUITABLE")
}

func TestDraftApplyRejectsUnavailableFaculty(t *testing.T) {
	d := newTestDraft(t)

	_, err := d.Apply(models.Assignment{ID: "a1", SectionID: "sec-min", FacultyID: "fac-limited", RoomID: "room-small", Day: 2, Period: 1, Cohort: "CS-3B"})
	assert.Contains(t, conflictCodes(t, err), "FACULTY_UNAVAILABLE")

	// same faculty inside their availability window
	flagged, err := d.Apply(models.Assignment{ID: "a2", SectionID: "sec-min", FacultyID: "fac-limited", RoomID: "room-small", Day: 1, Period: 1, Cohort: "CS-3B"})
	require.NoError(t, err)
	assert.Empty(t, flagged)
}

func TestDraftWeeklyHoursOverrunIsAdvisory(t *testing.T) {
	d := newTestDraft(t)
	place(t, d, models.Assignment{ID: "a1", SectionID: "sec-min", FacultyID: "fac-b", RoomID: "room-small", Day: 1, Period: 1, Cohort: "CS-3B"})
	place(t, d, models.Assignment{ID: "a2", SectionID: "sec-min", FacultyID: "fac-b", RoomID: "room-small", Day: 2, Period: 1, Cohort: "CS-3B"})

	// fac-b is at their cap of 2; the third hour commits but is flagged
	flagged, err := d.Apply(models.Assignment{ID: "a3", SectionID: "sec-min", FacultyID: "fac-b", RoomID: "room-small", Day: 3, Period: 1, Cohort: "CS-3B"})
	require.NoError(t, err)
	require.Len(t, flagged, 1)
	assert.Equal(t, "WEEKLY_HOURS_EXCEEDED", flagged[0].Code)
	assert.False(t, flagged[0].Blocking)
	assert.Equal(t, 3, d.Len())
}

func TestDraftCheckPlacementDoesNotMutate(t *testing.T) {
	d := newTestDraft(t)
	candidate := models.Assignment{ID: "a1", SectionID: "sec-os", FacultyID: "fac-a", RoomID: "room-big", Day: 1, Period: 1, Cohort: "CS-3A"}

	first := d.CheckPlacement(candidate, "")
	second := d.CheckPlacement(candidate, "")
	assert.Equal(t, first, second)
	assert.Equal(t, 0, d.Len())
}

func TestDraftRelocateNoopSucceeds(t *testing.T) {
	d := newTestDraft(t)
	place(t, d, models.Assignment{ID: "a1", SectionID: "sec-os", FacultyID: "fac-a", RoomID: "room-big", Day: 1, Period: 1, Cohort: "CS-3A"})

	flagged, err := d.Relocate("a1", 1, 1, "", "")
	require.NoError(t, err)
	assert.Empty(t, flagged)

	got, ok := d.Get("a1")
	require.True(t, ok)
	assert.Equal(t, 1, got.Day)
	assert.Equal(t, 1, got.Period)
}

func TestDraftRelocateRejectedLeavesStateIntact(t *testing.T) {
	d := newTestDraft(t)
	place(t, d, models.Assignment{ID: "a1", SectionID: "sec-os", FacultyID: "fac-a", RoomID: "room-big", Day: 1, Period: 1, Cohort: "CS-3A"})
	place(t, d, models.Assignment{ID: "a2", SectionID: "sec-min", FacultyID: "fac-b", RoomID: "room-big", Day: 1, Period: 2, Cohort: "CS-3B"})

	_, err := d.Relocate("a2", 1, 1, "", "")
	assert.Contains(t, conflictCodes(t, err), "ROOM_OCCUPIED")

	got, ok := d.Get("a2")
	require.True(t, ok)
	assert.Equal(t, 2, got.Period)
}

func TestDraftRelocateToFreedCell(t *testing.T) {
	d := newTestDraft(t)
	place(t, d, models.Assignment{ID: "a1", SectionID: "sec-os", FacultyID: "fac-a", RoomID: "room-big", Day: 1, Period: 1, Cohort: "CS-3A"})
	place(t, d, models.Assignment{ID: "a2", SectionID: "sec-min", FacultyID: "fac-b", RoomID: "room-big", Day: 1, Period: 2, Cohort: "CS-3B"})

	require.NoError(t, d.Remove("a1"))

	flagged, err := d.Relocate("a2", 1, 1, "", "")
	require.NoError(t, err)
	assert.Empty(t, flagged)
	assert.Equal(t, 1, d.Len())
}

func TestDraftRemoveUnknown(t *testing.T) {
	d := newTestDraft(t)
	err := d.Remove("missing")
	assert.True(t, errors.Is(err, ErrAssignmentNotFound))
}

func TestDraftAssignmentsDeterministicOrder(t *testing.T) {
	d := newTestDraft(t)
	place(t, d, models.Assignment{ID: "a2", SectionID: "sec-min", FacultyID: "fac-b", RoomID: "room-small", Day: 2, Period: 1, Cohort: "CS-3B"})
	place(t, d, models.Assignment{ID: "a1", SectionID: "sec-os", FacultyID: "fac-a", RoomID: "room-big", Day: 1, Period: 1, Cohort: "CS-3A"})

	list := d.Assignments()
	require.Len(t, list, 2)
	assert.Equal(t, "a1", list[0].ID)
	assert.Equal(t, "a2", list[1].ID)
}
