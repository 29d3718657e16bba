package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-timetable-api/internal/models"
)

// CatalogRepository reads the course/faculty/room catalog. The engine never
// writes catalog data; maintenance screens live outside this service.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository constructs repository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListSections returns every course section in deterministic order.
func (r *CatalogRepository) ListSections(ctx context.Context) ([]models.CourseSection, error) {
	const query = `SELECT id, course_code, section_label, title, category, weekly_hours, enrollment, cohort, required_features, created_at, updated_at
FROM course_sections ORDER BY course_code, section_label`
	var sections []models.CourseSection
	if err := r.db.SelectContext(ctx, &sections, query); err != nil {
		return nil, fmt.Errorf("list course sections: %w", err)
	}
	return sections, nil
}

// ListFaculty returns every faculty member.
func (r *CatalogRepository) ListFaculty(ctx context.Context) ([]models.FacultyMember, error) {
	const query = `SELECT id, name, max_weekly_hours, expertise, availability, created_at, updated_at
FROM faculty_members ORDER BY id`
	var faculty []models.FacultyMember
	if err := r.db.SelectContext(ctx, &faculty, query); err != nil {
		return nil, fmt.Errorf("list faculty members: %w", err)
	}
	return faculty, nil
}

// ListRooms returns every room.
func (r *CatalogRepository) ListRooms(ctx context.Context) ([]models.Room, error) {
	const query = `SELECT id, name, capacity, type, features, created_at, updated_at
FROM rooms ORDER BY id`
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// ListCohortPreferences returns each cohort's preferred time-of-day bucket.
func (r *CatalogRepository) ListCohortPreferences(ctx context.Context) ([]models.CohortPreference, error) {
	const query = `SELECT cohort, bucket FROM cohort_preferences ORDER BY cohort`
	var prefs []models.CohortPreference
	if err := r.db.SelectContext(ctx, &prefs, query); err != nil {
		return nil, fmt.Errorf("list cohort preferences: %w", err)
	}
	return prefs, nil
}
