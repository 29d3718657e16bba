package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-timetable-api/internal/models"
)

func newCatalogRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestCatalogRepositoryListSections(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()

	repo := NewCatalogRepository(db)
	rows := sqlmock.NewRows([]string{"id", "course_code", "section_label", "title", "category", "weekly_hours", "enrollment", "cohort", "required_features", "created_at", "updated_at"}).
		AddRow("sec-os", "CS301", "A", "Operating Systems", "MAJOR", 4, 48, "CS-3A", []byte(`[]`), time.Now(), time.Now()).
		AddRow("sec-lab", "CS305L", "A", "Networks Lab", "LAB", 2, 24, "CS-3A", []byte(`["lab_computers"]`), time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM course_sections ORDER BY course_code, section_label")).
		WillReturnRows(rows)

	sections, err := repo.ListSections(context.Background())
	require.NoError(t, err)
	require.Len(t, sections, 2)
	require.Equal(t, "CS301", sections[0].CourseCode)
	require.Equal(t, []string{"lab_computers"}, sections[1].FeatureList())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepositoryListSectionsError(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()

	repo := NewCatalogRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM course_sections")).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.ListSections(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "list course sections")
}

func TestCatalogRepositoryListFaculty(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()

	repo := NewCatalogRepository(db)
	rows := sqlmock.NewRows([]string{"id", "name", "max_weekly_hours", "expertise", "availability", "created_at", "updated_at"}).
		AddRow("fac-rao", "Prof. Rao", 16, []byte(`["CS301","MAJOR"]`), []byte(`{"1":[1,2,3]}`), time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM faculty_members ORDER BY id")).
		WillReturnRows(rows)

	faculty, err := repo.ListFaculty(context.Background())
	require.NoError(t, err)
	require.Len(t, faculty, 1)
	require.Equal(t, []string{"CS301", "MAJOR"}, faculty[0].ExpertiseList())
	mask := faculty[0].AvailabilityMask()
	require.True(t, mask.Allows(1, 2))
	require.False(t, mask.Allows(2, 1))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepositoryListRooms(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()

	repo := NewCatalogRepository(db)
	rows := sqlmock.NewRows([]string{"id", "name", "capacity", "type", "features", "created_at", "updated_at"}).
		AddRow("room-lab1", "Computer Lab 1", 30, "LAB", []byte(`["lab_computers"]`), time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM rooms ORDER BY id")).
		WillReturnRows(rows)

	rooms, err := repo.ListRooms(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	require.Equal(t, 30, rooms[0].Capacity)
	require.Equal(t, []string{"lab_computers"}, rooms[0].FeatureList())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepositoryListCohortPreferences(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()

	repo := NewCatalogRepository(db)
	rows := sqlmock.NewRows([]string{"cohort", "bucket"}).
		AddRow("CS-3A", "MORNING").
		AddRow("CS-3B", "AFTERNOON")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT cohort, bucket FROM cohort_preferences")).
		WillReturnRows(rows)

	prefs, err := repo.ListCohortPreferences(context.Background())
	require.NoError(t, err)
	require.Len(t, prefs, 2)
	require.Equal(t, models.BucketMorning, prefs[0].Bucket)
	require.NoError(t, mock.ExpectationsWereMet())
}
