package engine

import (
	"errors"
	"fmt"
	"sort"

	"github.com/noah-isme/campus-timetable-api/internal/models"
)

// ErrAssignmentNotFound is returned when an assignment id is unknown to the draft.
var ErrAssignmentNotFound = errors.New("assignment not found")

type resourceKey struct {
	Day    int
	Period int
	Ref    string
}

type facultyInfo struct {
	maxHours  int
	mask      models.AvailabilityMask
	expertise map[string]struct{}
}

type roomInfo struct {
	capacity int
	features map[string]struct{}
}

// Draft owns the assignment set for one scenario draft plus the exclusivity
// indices that make invariant checks O(1). It is the single source of truth
// for placement legality, used identically by the generator and by
// interactive board edits.
//
// A Draft is not safe for concurrent mutation; callers serialize Apply,
// Remove and Relocate per draft. Independent drafts share no state.
type Draft struct {
	grid TimeGrid

	sections map[string]models.CourseSection
	features map[string][]string
	faculty  map[string]facultyInfo
	rooms    map[string]roomInfo
	prefs    map[string]models.TimeBucket

	assignments  map[string]models.Assignment
	byRoom       map[resourceKey]string
	byFaculty    map[resourceKey]string
	byCohort     map[resourceKey]string
	facultyHours map[string]int
}

// NewDraft builds an empty draft over the given grid and catalog snapshot.
// Catalog JSON payloads are decoded once here so checks stay cheap.
func NewDraft(grid TimeGrid, catalog *models.CatalogSnapshot) *Draft {
	d := &Draft{
		grid:         grid,
		sections:     make(map[string]models.CourseSection),
		features:     make(map[string][]string),
		faculty:      make(map[string]facultyInfo),
		rooms:        make(map[string]roomInfo),
		prefs:        make(map[string]models.TimeBucket),
		assignments:  make(map[string]models.Assignment),
		byRoom:       make(map[resourceKey]string),
		byFaculty:    make(map[resourceKey]string),
		byCohort:     make(map[resourceKey]string),
		facultyHours: make(map[string]int),
	}
	if catalog == nil {
		return d
	}
	for _, s := range catalog.Sections {
		d.sections[s.ID] = s
		d.features[s.ID] = s.FeatureList()
	}
	for _, f := range catalog.Faculty {
		expertise := make(map[string]struct{})
		for _, tag := range f.ExpertiseList() {
			expertise[tag] = struct{}{}
		}
		d.faculty[f.ID] = facultyInfo{
			maxHours:  f.MaxWeeklyHours,
			mask:      f.AvailabilityMask(),
			expertise: expertise,
		}
	}
	for _, r := range catalog.Rooms {
		features := make(map[string]struct{})
		for _, feat := range r.FeatureList() {
			features[feat] = struct{}{}
		}
		d.rooms[r.ID] = roomInfo{capacity: r.Capacity, features: features}
	}
	for cohort, bucket := range catalog.Preferences {
		d.prefs[cohort] = bucket
	}
	return d
}

// Grid returns the draft's time grid.
func (d *Draft) Grid() TimeGrid { return d.grid }

// CheckPlacement validates a candidate placement against every invariant and
// returns the set of violations; an empty set means the placement is legal.
// When excludeID is non-empty the named assignment is left out of the
// comparison, which makes relocation (including a no-op move onto the same
// cell) validate cleanly.
func (d *Draft) CheckPlacement(candidate models.Assignment, excludeID string) []models.Conflict {
	var conflicts []models.Conflict

	if occupant, ok := d.occupant(d.byRoom, candidate.Day, candidate.Period, candidate.RoomID, excludeID); ok {
		conflicts = append(conflicts, blockingConflict(models.InvariantRoomExclusive,
			fmt.Sprintf("room %s is occupied at day %d period %d", candidate.RoomID, candidate.Day, candidate.Period), occupant))
	}
	if occupant, ok := d.occupant(d.byFaculty, candidate.Day, candidate.Period, candidate.FacultyID, excludeID); ok {
		conflicts = append(conflicts, blockingConflict(models.InvariantFacultyExclusive,
			fmt.Sprintf("faculty %s is double-booked at day %d period %d", candidate.FacultyID, candidate.Day, candidate.Period), occupant))
	}
	if candidate.Cohort != "" {
		if occupant, ok := d.occupant(d.byCohort, candidate.Day, candidate.Period, candidate.Cohort, excludeID); ok {
			conflicts = append(conflicts, blockingConflict(models.InvariantCohortExclusive,
				fmt.Sprintf("cohort %s already has a class at day %d period %d", candidate.Cohort, candidate.Day, candidate.Period), occupant))
		}
	}
	if !d.grid.Schedulable(candidate.Day, candidate.Period) {
		conflicts = append(conflicts, blockingConflict(models.InvariantProtectedBreak,
			fmt.Sprintf("day %d period %d is not schedulable", candidate.Day, candidate.Period), nil))
	}
	conflicts = append(conflicts, d.checkRoomFit(candidate)...)
	conflicts = append(conflicts, d.checkFaculty(candidate, excludeID)...)
	return conflicts
}

func (d *Draft) checkRoomFit(candidate models.Assignment) []models.Conflict {
	room, ok := d.rooms[candidate.RoomID]
	if !ok {
		return []models.Conflict{blockingConflict(models.InvariantRoomFit,
			fmt.Sprintf("unknown room %s", candidate.RoomID), nil)}
	}
	section, ok := d.sections[candidate.SectionID]
	if !ok {
		return []models.Conflict{blockingConflict(models.InvariantRoomFit,
			fmt.Sprintf("unknown course section %s", candidate.SectionID), nil)}
	}
	var conflicts []models.Conflict
	if room.capacity < section.Enrollment {
		conflicts = append(conflicts, blockingConflict(models.InvariantRoomFit,
			fmt.Sprintf("room %s capacity %d is below enrollment %d", candidate.RoomID, room.capacity, section.Enrollment), nil))
	}
	for _, feat := range d.features[candidate.SectionID] {
		if _, has := room.features[feat]; !has {
			conflicts = append(conflicts, blockingConflict(models.InvariantRoomFit,
				fmt.Sprintf("room %s lacks required feature %q", candidate.RoomID, feat), nil))
			break
		}
	}
	return conflicts
}

func (d *Draft) checkFaculty(candidate models.Assignment, excludeID string) []models.Conflict {
	info, ok := d.faculty[candidate.FacultyID]
	if !ok {
		return []models.Conflict{blockingConflict(models.InvariantAvailability,
			fmt.Sprintf("unknown faculty member %s", candidate.FacultyID), nil)}
	}
	var conflicts []models.Conflict
	if !info.mask.Allows(candidate.Day, candidate.Period) {
		conflicts = append(conflicts, blockingConflict(models.InvariantAvailability,
			fmt.Sprintf("faculty %s is unavailable at day %d period %d", candidate.FacultyID, candidate.Day, candidate.Period), nil))
	}

	hours := d.facultyHours[candidate.FacultyID]
	if excludeID != "" {
		if prev, ok := d.assignments[excludeID]; ok && prev.FacultyID == candidate.FacultyID {
			hours--
		}
	}
	if info.maxHours > 0 && hours+1 > info.maxHours {
		conflicts = append(conflicts, models.Conflict{
			Invariant: models.InvariantWeeklyHours,
			Code:      models.InvariantWeeklyHours.String(),
			Message:   fmt.Sprintf("faculty %s would exceed max weekly hours (%d)", candidate.FacultyID, info.maxHours),
			Blocking:  false,
		})
	}
	return conflicts
}

func (d *Draft) occupant(index map[resourceKey]string, day, period int, ref, excludeID string) (*models.Assignment, bool) {
	id, ok := index[resourceKey{Day: day, Period: period, Ref: ref}]
	if !ok || id == excludeID {
		return nil, false
	}
	existing := d.assignments[id]
	return &existing, true
}

// Apply commits a candidate placement atomically: if any blocking violation
// exists, nothing is mutated and a *models.ConflictError carrying the full
// conflict set is returned. Advisory conflicts (weekly-hours overruns from
// manual edits) are returned alongside a successful commit so the caller can
// flag them.
func (d *Draft) Apply(candidate models.Assignment) ([]models.Conflict, error) {
	conflicts := d.CheckPlacement(candidate, "")
	if hasBlocking(conflicts) {
		return nil, &models.ConflictError{Conflicts: conflicts}
	}
	d.index(candidate)
	return advisory(conflicts), nil
}

// Remove deletes an assignment and keeps the indices in lock-step.
func (d *Draft) Remove(id string) error {
	existing, ok := d.assignments[id]
	if !ok {
		return ErrAssignmentNotFound
	}
	d.unindex(existing)
	return nil
}

// Relocate moves an existing assignment to a new (day, period) and
// optionally a different room or faculty member. The move is validated with
// the assignment itself excluded, then committed atomically.
func (d *Draft) Relocate(id string, day, period int, roomID, facultyID string) ([]models.Conflict, error) {
	existing, ok := d.assignments[id]
	if !ok {
		return nil, ErrAssignmentNotFound
	}
	candidate := existing
	candidate.Day = day
	candidate.Period = period
	if roomID != "" {
		candidate.RoomID = roomID
	}
	if facultyID != "" {
		candidate.FacultyID = facultyID
	}

	conflicts := d.CheckPlacement(candidate, id)
	if hasBlocking(conflicts) {
		return nil, &models.ConflictError{Conflicts: conflicts}
	}
	d.unindex(existing)
	d.index(candidate)
	return advisory(conflicts), nil
}

func (d *Draft) index(a models.Assignment) {
	d.assignments[a.ID] = a
	d.byRoom[resourceKey{a.Day, a.Period, a.RoomID}] = a.ID
	d.byFaculty[resourceKey{a.Day, a.Period, a.FacultyID}] = a.ID
	if a.Cohort != "" {
		d.byCohort[resourceKey{a.Day, a.Period, a.Cohort}] = a.ID
	}
	d.facultyHours[a.FacultyID]++
}

func (d *Draft) unindex(a models.Assignment) {
	delete(d.assignments, a.ID)
	delete(d.byRoom, resourceKey{a.Day, a.Period, a.RoomID})
	delete(d.byFaculty, resourceKey{a.Day, a.Period, a.FacultyID})
	if a.Cohort != "" {
		delete(d.byCohort, resourceKey{a.Day, a.Period, a.Cohort})
	}
	if d.facultyHours[a.FacultyID] > 0 {
		d.facultyHours[a.FacultyID]--
	}
}

// Get returns the assignment with the given id.
func (d *Draft) Get(id string) (models.Assignment, bool) {
	a, ok := d.assignments[id]
	return a, ok
}

// Len returns the number of committed assignments.
func (d *Draft) Len() int { return len(d.assignments) }

// Section returns the catalog section with the given id.
func (d *Draft) Section(id string) (models.CourseSection, bool) {
	s, ok := d.sections[id]
	return s, ok
}

// Assignments returns the committed set in deterministic order.
func (d *Draft) Assignments() []models.Assignment {
	out := make([]models.Assignment, 0, len(d.assignments))
	for _, a := range d.assignments {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day < out[j].Day
		}
		if out[i].Period != out[j].Period {
			return out[i].Period < out[j].Period
		}
		return out[i].RoomID < out[j].RoomID
	})
	return out
}

func blockingConflict(inv models.Invariant, message string, with *models.Assignment) models.Conflict {
	return models.Conflict{
		Invariant: inv,
		Code:      inv.String(),
		Message:   message,
		Blocking:  true,
		With:      with,
	}
}

func hasBlocking(conflicts []models.Conflict) bool {
	for _, c := range conflicts {
		if c.Blocking {
			return true
		}
	}
	return false
}

func advisory(conflicts []models.Conflict) []models.Conflict {
	var out []models.Conflict
	for _, c := range conflicts {
		if !c.Blocking {
			out = append(out, c)
		}
	}
	return out
}
