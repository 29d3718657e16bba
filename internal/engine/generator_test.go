package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-timetable-api/internal/models"
)

func runGenerator(t *testing.T, catalog *models.CatalogSnapshot, cfg Config) (*Result, *Draft) {
	t.Helper()
	draft := NewDraft(DefaultGrid(), catalog)
	result, err := NewGenerator(cfg, nil).Run(context.Background(), draft, nil)
	require.NoError(t, err)
	return result, draft
}

func TestGeneratorPlacesFeasibleCatalogCompletely(t *testing.T) {
	result, draft := runGenerator(t, testCatalog(), Config{ImprovementIterations: 50, Seed: 7})

	assert.Equal(t, 6, result.Placed) // 3 sections x 2 weekly hours
	assert.Zero(t, result.Unplaced)
	assert.Empty(t, result.Diagnostics)
	assert.False(t, result.Cancelled)
	assert.Equal(t, result.Placed, draft.Len())
	assert.Equal(t, result.Placed, result.Metrics.Placed)
}

func TestGeneratorResultSatisfiesAllConstraints(t *testing.T) {
	_, draft := runGenerator(t, testCatalog(), Config{ImprovementIterations: 200, Seed: 3})

	for _, a := range draft.Assignments() {
		conflicts := draft.CheckPlacement(a, a.ID)
		assert.Empty(t, conflicts, "assignment %s must remain conflict-free", a.ID)
	}
}

func TestGeneratorDeterministicForSeed(t *testing.T) {
	first, _ := runGenerator(t, testCatalog(), Config{ImprovementIterations: 100, Seed: 42})
	_, draftA := runGenerator(t, testCatalog(), Config{ImprovementIterations: 100, Seed: 42})
	second, draftB := runGenerator(t, testCatalog(), Config{ImprovementIterations: 100, Seed: 42})

	assert.Equal(t, first.Placed, second.Placed)
	assert.Equal(t, first.Metrics, second.Metrics)
	assert.Equal(t, draftA.Assignments(), draftB.Assignments())
}

func TestGeneratorEmptyCatalog(t *testing.T) {
	draft := NewDraft(DefaultGrid(), &models.CatalogSnapshot{})
	_, err := NewGenerator(Config{}, nil).Run(context.Background(), draft, nil)
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestGeneratorReportsImpossibleSection(t *testing.T) {
	catalog := testCatalog()
	catalog.Sections = append(catalog.Sections, models.CourseSection{
		ID: "sec-huge", CourseCode: "CS999", SectionLabel: "A", Category: models.CategoryMajor,
		WeeklyHours: 1, Enrollment: 500, Cohort: "CS-4A",
	})

	result, _ := runGenerator(t, catalog, Config{Seed: 1})
	assert.Equal(t, 1, result.Unplaced)
	require.NotEmpty(t, result.Diagnostics)
	found := false
	for _, diag := range result.Diagnostics {
		if strings.Contains(diag, "CS999/A") {
			found = true
		}
	}
	assert.True(t, found, "diagnostics should name the unplaceable section")
}

func TestGeneratorHonoursWeeklyHoursCap(t *testing.T) {
	catalog := &models.CatalogSnapshot{
		Sections: []models.CourseSection{
			{ID: "sec-1", CourseCode: "CS101", SectionLabel: "A", Category: models.CategoryMajor, WeeklyHours: 4, Enrollment: 20, Cohort: "C1"},
		},
		Faculty: []models.FacultyMember{
			{ID: "fac-1", Name: "Solo", MaxWeeklyHours: 2},
		},
		Rooms: []models.Room{
			{ID: "room-1", Name: "R1", Capacity: 30},
		},
	}

	result, _ := runGenerator(t, catalog, Config{Seed: 1})
	assert.Equal(t, 2, result.Placed)
	assert.Equal(t, 2, result.Unplaced)
	assert.Len(t, result.Diagnostics, 2)
}

func TestGeneratorPrefersPreferredBucket(t *testing.T) {
	catalog := &models.CatalogSnapshot{
		Sections: []models.CourseSection{
			{ID: "sec-1", CourseCode: "CS101", SectionLabel: "A", Category: models.CategoryMajor, WeeklyHours: 2, Enrollment: 20, Cohort: "C1"},
		},
		Faculty: []models.FacultyMember{
			{ID: "fac-1", Name: "Solo", MaxWeeklyHours: 10, Expertise: types.JSONText(`["CS101"]`)},
		},
		Rooms: []models.Room{
			{ID: "room-1", Name: "R1", Capacity: 30},
		},
		Preferences: map[string]models.TimeBucket{"C1": models.BucketAfternoon},
	}

	result, draft := runGenerator(t, catalog, Config{Seed: 1})
	require.Zero(t, result.Unplaced)
	for _, a := range draft.Assignments() {
		assert.Equal(t, models.BucketAfternoon, draft.Grid().Bucket(a.Period))
	}
	assert.InDelta(t, 100.0, result.Metrics.StudentSatisfaction, 0.001)
}

func TestGeneratorCancellationReturnsPartialResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	draft := NewDraft(DefaultGrid(), testCatalog())
	result, err := NewGenerator(Config{ImprovementIterations: 100, Seed: 1}, nil).Run(ctx, draft, nil)
	require.NoError(t, err)
	assert.True(t, result.Cancelled)
	assert.Zero(t, result.Placed)
}

func TestGeneratorImprovementNeverWorsensObjective(t *testing.T) {
	catalog := testCatalog()
	base, _ := runGenerator(t, catalog, Config{Seed: 5})
	improved, _ := runGenerator(t, catalog, Config{ImprovementIterations: 300, Seed: 5})

	assert.GreaterOrEqual(t, improved.Metrics.Objective, base.Metrics.Objective)
}

func TestGeneratorReportsProgress(t *testing.T) {
	var fractions []float64
	draft := NewDraft(DefaultGrid(), testCatalog())
	_, err := NewGenerator(Config{ImprovementIterations: 10, Seed: 1}, nil).Run(context.Background(), draft, func(p Progress) {
		fractions = append(fractions, p.Fraction)
	})
	require.NoError(t, err)
	require.NotEmpty(t, fractions)
	for i := 1; i < len(fractions); i++ {
		assert.GreaterOrEqual(t, fractions[i], fractions[i-1])
	}
	assert.LessOrEqual(t, fractions[len(fractions)-1], 1.0)
}
