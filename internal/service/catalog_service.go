package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-timetable-api/internal/models"
	appErrors "github.com/noah-isme/campus-timetable-api/pkg/errors"
)

type catalogReader interface {
	ListSections(ctx context.Context) ([]models.CourseSection, error)
	ListFaculty(ctx context.Context) ([]models.FacultyMember, error)
	ListRooms(ctx context.Context) ([]models.Room, error)
	ListCohortPreferences(ctx context.Context) ([]models.CohortPreference, error)
}

// CatalogService loads read-only catalog snapshots for generation runs and
// board drafts. Catalog maintenance happens outside this service.
type CatalogService struct {
	repo   catalogReader
	logger *zap.Logger
}

// NewCatalogService constructs the catalog service.
func NewCatalogService(repo catalogReader, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{repo: repo, logger: logger}
}

// Snapshot fetches the full catalog once and validates it is well-formed.
// A snapshot is taken at the start of every generation run so a run never
// observes catalog edits mid-flight.
func (s *CatalogService) Snapshot(ctx context.Context) (*models.CatalogSnapshot, error) {
	sections, err := s.repo.ListSections(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course sections")
	}
	faculty, err := s.repo.ListFaculty(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty members")
	}
	rooms, err := s.repo.ListRooms(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	prefs, err := s.repo.ListCohortPreferences(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cohort preferences")
	}

	snapshot := &models.CatalogSnapshot{
		Sections:    sections,
		Faculty:     faculty,
		Rooms:       rooms,
		Preferences: make(map[string]models.TimeBucket, len(prefs)),
	}
	for _, p := range prefs {
		snapshot.Preferences[p.Cohort] = p.Bucket
	}

	if err := validateSnapshot(snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func validateSnapshot(snapshot *models.CatalogSnapshot) error {
	if snapshot.Empty() {
		return appErrors.Clone(appErrors.ErrInvalidInput, "catalog must contain at least one section, one room and one faculty member")
	}
	for _, section := range snapshot.Sections {
		if section.WeeklyHours <= 0 {
			return appErrors.Clone(appErrors.ErrInvalidInput,
				fmt.Sprintf("section %s has non-positive weekly hours", section.CourseCode+"/"+section.SectionLabel))
		}
		if section.Enrollment < 0 {
			return appErrors.Clone(appErrors.ErrInvalidInput,
				fmt.Sprintf("section %s has negative enrollment", section.CourseCode+"/"+section.SectionLabel))
		}
	}
	for _, member := range snapshot.Faculty {
		if member.MaxWeeklyHours < 0 {
			return appErrors.Clone(appErrors.ErrInvalidInput,
				fmt.Sprintf("faculty %s has negative max weekly hours", member.ID))
		}
	}
	for _, room := range snapshot.Rooms {
		if room.Capacity <= 0 {
			return appErrors.Clone(appErrors.ErrInvalidInput,
				fmt.Sprintf("room %s has non-positive capacity", room.ID))
		}
	}
	return nil
}
