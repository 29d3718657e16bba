package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-timetable-api/internal/models"
)

// ErrEmptyCatalog is returned when a run is started over a catalog with no
// sections, rooms or faculty.
var ErrEmptyCatalog = errors.New("catalog is empty or malformed")

// Config governs a generation run. The iteration budget is fixed (not
// wall-clock) so runs are reproducible under test.
type Config struct {
	Weights               Weights
	ImprovementIterations int
	Seed                  int64
}

// Progress is a one-way notification emitted between search iterations.
type Progress struct {
	Fraction float64
	Phase    string
}

// Result summarizes a finished (or cancelled) run. A run with zero
// placements is still a completed run; Diagnostics explains each unplaced
// unit.
type Result struct {
	Placed      int
	Unplaced    int
	Iterations  int
	Diagnostics []string
	Metrics     models.ScenarioMetrics
	Cancelled   bool
}

// Generator produces a complete constraint-satisfying assignment set on a
// draft via greedy construction followed by bounded local search. All
// orderings and tie-breaks are deterministic for a given catalog and seed.
type Generator struct {
	cfg    Config
	logger *zap.Logger
}

// NewGenerator applies config defaults and wires logging.
func NewGenerator(cfg Config, logger *zap.Logger) *Generator {
	if !cfg.Weights.Valid() {
		cfg.Weights = DefaultWeights()
	}
	if cfg.ImprovementIterations < 0 {
		cfg.ImprovementIterations = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{cfg: cfg, logger: logger}
}

// Run executes the search on the given draft. Cancellation is cooperative:
// the context is checked between iterations, and a cancelled run returns the
// last fully-committed, constraint-satisfying state with Cancelled set.
func (g *Generator) Run(ctx context.Context, draft *Draft, onProgress func(Progress)) (*Result, error) {
	if len(draft.sections) == 0 || len(draft.rooms) == 0 || len(draft.faculty) == 0 {
		return nil, ErrEmptyCatalog
	}
	if onProgress == nil {
		onProgress = func(Progress) {}
	}

	sections := g.orderedSections(draft)
	totalUnits := 0
	for _, s := range sections {
		totalUnits += s.WeeklyHours
	}
	totalSteps := totalUnits + g.cfg.ImprovementIterations
	if totalSteps == 0 {
		totalSteps = 1
	}

	result := &Result{}
	step := 0
	report := func(phase string) {
		onProgress(Progress{Fraction: float64(step) / float64(totalSteps), Phase: phase})
	}

	for _, section := range sections {
		rooms := g.candidateRooms(draft, section)
		for unit := 1; unit <= section.WeeklyHours; unit++ {
			if ctx.Err() != nil {
				return g.finish(draft, result, true), nil
			}
			if len(rooms) == 0 {
				result.Unplaced++
				result.Diagnostics = append(result.Diagnostics,
					fmt.Sprintf("no room satisfies capacity/features for section %s", section.CourseCode+"/"+section.SectionLabel))
				step++
				continue
			}
			if g.placeUnit(draft, section, unit, rooms) {
				result.Placed++
			} else {
				result.Unplaced++
				result.Diagnostics = append(result.Diagnostics,
					fmt.Sprintf("no conflict-free slot for section %s unit %d", section.CourseCode+"/"+section.SectionLabel, unit))
			}
			step++
			report("construction")
		}
	}

	rng := rand.New(rand.NewSource(g.cfg.Seed))
	roomIDs := g.sortedRoomIDs(draft)
	slots := draft.grid.Slots()
	best := Objective(Score(draft), g.cfg.Weights)

	for i := 0; i < g.cfg.ImprovementIterations; i++ {
		if ctx.Err() != nil {
			result.Iterations = i
			return g.finish(draft, result, true), nil
		}
		if draft.Len() > 0 && len(slots) > 0 {
			if improved, score := g.tryRelocation(draft, rng, roomIDs, slots, best); improved {
				best = score
			}
		}
		result.Iterations = i + 1
		step++
		report("improvement")
	}

	g.logger.Sugar().Debugw("generation finished",
		"placed", result.Placed, "unplaced", result.Unplaced, "iterations", result.Iterations)
	return g.finish(draft, result, false), nil
}

// placeUnit tries candidates in fixed priority order (rooms, then faculty,
// then slots) and commits the first fully valid one.
func (g *Generator) placeUnit(draft *Draft, section models.CourseSection, unit int, rooms []string) bool {
	faculty := g.candidateFaculty(draft, section)
	slots := g.candidateSlots(draft, section)

	for _, roomID := range rooms {
		for _, facultyID := range faculty {
			for _, slot := range slots {
				candidate := models.Assignment{
					ID:        fmt.Sprintf("asg-%s-%d", section.ID, unit),
					SectionID: section.ID,
					FacultyID: facultyID,
					RoomID:    roomID,
					Day:       slot.Day,
					Period:    slot.Period,
					Cohort:    section.Cohort,
				}
				if len(draft.CheckPlacement(candidate, "")) != 0 {
					continue
				}
				if _, err := draft.Apply(candidate); err != nil {
					continue
				}
				return true
			}
		}
	}
	return false
}

// tryRelocation picks a random placed assignment and a random target cell
// and keeps the move only if it strictly improves the weighted objective.
func (g *Generator) tryRelocation(draft *Draft, rng *rand.Rand, roomIDs []string, slots []Slot, best float64) (bool, float64) {
	list := draft.Assignments()
	a := list[rng.Intn(len(list))]
	slot := slots[rng.Intn(len(slots))]
	roomID := roomIDs[rng.Intn(len(roomIDs))]

	candidate := a
	candidate.Day = slot.Day
	candidate.Period = slot.Period
	candidate.RoomID = roomID
	if len(draft.CheckPlacement(candidate, a.ID)) != 0 {
		return false, best
	}

	if _, err := draft.Relocate(a.ID, slot.Day, slot.Period, roomID, ""); err != nil {
		return false, best
	}
	score := Objective(Score(draft), g.cfg.Weights)
	if score > best {
		return true, score
	}
	// revert: the vacated cell is free again, so this cannot fail
	_, _ = draft.Relocate(a.ID, a.Day, a.Period, a.RoomID, "")
	return false, best
}

func (g *Generator) finish(draft *Draft, result *Result, cancelled bool) *Result {
	metrics := Score(draft)
	metrics.Objective = Objective(metrics, g.cfg.Weights)
	metrics.Unplaced = result.Unplaced
	result.Metrics = metrics
	result.Cancelled = cancelled
	return result
}

// orderedSections yields the deterministic construction order: descending
// required hours, then ascending course code, then section label.
func (g *Generator) orderedSections(draft *Draft) []models.CourseSection {
	sections := make([]models.CourseSection, 0, len(draft.sections))
	for _, s := range draft.sections {
		sections = append(sections, s)
	}
	sort.Slice(sections, func(i, j int) bool {
		if sections[i].WeeklyHours != sections[j].WeeklyHours {
			return sections[i].WeeklyHours > sections[j].WeeklyHours
		}
		if sections[i].CourseCode != sections[j].CourseCode {
			return sections[i].CourseCode < sections[j].CourseCode
		}
		if sections[i].SectionLabel != sections[j].SectionLabel {
			return sections[i].SectionLabel < sections[j].SectionLabel
		}
		return sections[i].ID < sections[j].ID
	})
	return sections
}

// candidateRooms filters to feasible rooms and orders them by capacity
// closest to enrollment, then feature-match count, then id.
func (g *Generator) candidateRooms(draft *Draft, section models.CourseSection) []string {
	required := draft.features[section.ID]

	type scored struct {
		id      string
		slack   int
		surplus int
	}
	var rooms []scored
	for id, room := range draft.rooms {
		if room.capacity < section.Enrollment {
			continue
		}
		missing := false
		for _, feat := range required {
			if _, ok := room.features[feat]; !ok {
				missing = true
				break
			}
		}
		if missing {
			continue
		}
		// prefer the closest capacity fit, then the least specialized room
		rooms = append(rooms, scored{
			id:      id,
			slack:   room.capacity - section.Enrollment,
			surplus: len(room.features) - len(required),
		})
	}
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].slack != rooms[j].slack {
			return rooms[i].slack < rooms[j].slack
		}
		if rooms[i].surplus != rooms[j].surplus {
			return rooms[i].surplus < rooms[j].surplus
		}
		return rooms[i].id < rooms[j].id
	})
	out := make([]string, len(rooms))
	for i, r := range rooms {
		out[i] = r.id
	}
	return out
}

// candidateFaculty orders faculty by expertise match, then lowest
// current-to-max hours ratio, then id. Ratios use the draft's committed
// hours, so ordering adapts as construction proceeds.
func (g *Generator) candidateFaculty(draft *Draft, section models.CourseSection) []string {
	type scored struct {
		id    string
		match bool
		ratio float64
	}
	var faculty []scored
	for id, info := range draft.faculty {
		_, byCode := info.expertise[section.CourseCode]
		_, byCategory := info.expertise[string(section.Category)]
		ratio := 1.0
		if info.maxHours > 0 {
			ratio = float64(draft.facultyHours[id]) / float64(info.maxHours)
		}
		faculty = append(faculty, scored{id: id, match: byCode || byCategory, ratio: ratio})
	}
	sort.Slice(faculty, func(i, j int) bool {
		if faculty[i].match != faculty[j].match {
			return faculty[i].match
		}
		if faculty[i].ratio != faculty[j].ratio {
			return faculty[i].ratio < faculty[j].ratio
		}
		return faculty[i].id < faculty[j].id
	})
	out := make([]string, len(faculty))
	for i, f := range faculty {
		out[i] = f.id
	}
	return out
}

// candidateSlots puts the cohort's preferred time-of-day bucket first,
// keeping slot-index order within each group.
func (g *Generator) candidateSlots(draft *Draft, section models.CourseSection) []Slot {
	slots := draft.grid.Slots()
	bucket, ok := draft.prefs[section.Cohort]
	if !ok {
		return slots
	}
	preferred := make([]Slot, 0, len(slots))
	rest := make([]Slot, 0, len(slots))
	for _, s := range slots {
		if draft.grid.Bucket(s.Period) == bucket {
			preferred = append(preferred, s)
		} else {
			rest = append(rest, s)
		}
	}
	return append(preferred, rest...)
}

func (g *Generator) sortedRoomIDs(draft *Draft) []string {
	ids := make([]string, 0, len(draft.rooms))
	for id := range draft.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
