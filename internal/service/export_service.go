package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-timetable-api/internal/models"
	appErrors "github.com/noah-isme/campus-timetable-api/pkg/errors"
	"github.com/noah-isme/campus-timetable-api/pkg/export"
)

// Export formats accepted by the scenario export endpoint.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

var dayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

type scenarioDetailSource interface {
	FindByID(ctx context.Context, id string) (*models.Scenario, error)
	ListAssignments(ctx context.Context, scenarioID string) ([]models.Assignment, error)
}

type catalogSource interface {
	ListSections(ctx context.Context) ([]models.CourseSection, error)
	ListFaculty(ctx context.Context) ([]models.FacultyMember, error)
	ListRooms(ctx context.Context) ([]models.Room, error)
}

// ExportFile is a rendered export ready to stream to the client.
type ExportFile struct {
	FileName    string
	ContentType string
	Content     []byte
}

// ExportService renders a scenario's timetable as CSV or PDF, resolving
// catalog ids to human-readable names.
type ExportService struct {
	scenarios scenarioDetailSource
	catalog   catalogSource
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	logger    *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(scenarios scenarioDetailSource, catalog catalogSource, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		scenarios: scenarios,
		catalog:   catalog,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		logger:    logger,
	}
}

// Export renders the scenario's assignment set in the requested format.
func (s *ExportService) Export(ctx context.Context, scenarioID, format string) (*ExportFile, error) {
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	scenario, err := s.scenarios.FindByID(ctx, scenarioID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "scenario not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scenario")
	}
	assignments, err := s.scenarios.ListAssignments(ctx, scenarioID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scenario assignments")
	}

	dataset, err := s.buildDataset(ctx, assignments)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("%s-v%d", scenario.Name, scenario.Version)
	switch format {
	case FormatPDF:
		content, err := s.pdf.Render(dataset, fmt.Sprintf("Timetable %s", name))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportFile{FileName: name + ".pdf", ContentType: "application/pdf", Content: content}, nil
	default:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportFile{FileName: name + ".csv", ContentType: "text/csv", Content: content}, nil
	}
}

func (s *ExportService) buildDataset(ctx context.Context, assignments []models.Assignment) (export.Dataset, error) {
	sections, err := s.catalog.ListSections(ctx)
	if err != nil {
		return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course sections")
	}
	faculty, err := s.catalog.ListFaculty(ctx)
	if err != nil {
		return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty members")
	}
	rooms, err := s.catalog.ListRooms(ctx)
	if err != nil {
		return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}

	sectionByID := make(map[string]models.CourseSection, len(sections))
	for _, sec := range sections {
		sectionByID[sec.ID] = sec
	}
	facultyByID := make(map[string]string, len(faculty))
	for _, f := range faculty {
		facultyByID[f.ID] = f.Name
	}
	roomByID := make(map[string]string, len(rooms))
	for _, r := range rooms {
		roomByID[r.ID] = r.Name
	}

	dataset := export.Dataset{
		Headers: []string{"Day", "Period", "Course", "Section", "Faculty", "Room", "Cohort"},
		Rows:    make([]map[string]string, 0, len(assignments)),
	}
	for _, a := range assignments {
		course, label := a.SectionID, ""
		if sec, ok := sectionByID[a.SectionID]; ok {
			course, label = sec.CourseCode, sec.SectionLabel
		}
		facultyName := a.FacultyID
		if name, ok := facultyByID[a.FacultyID]; ok {
			facultyName = name
		}
		roomName := a.RoomID
		if name, ok := roomByID[a.RoomID]; ok {
			roomName = name
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Day":     dayName(a.Day),
			"Period":  strconv.Itoa(a.Period),
			"Course":  course,
			"Section": label,
			"Faculty": facultyName,
			"Room":    roomName,
			"Cohort":  a.Cohort,
		})
	}
	return dataset, nil
}

func dayName(day int) string {
	if day >= 1 && day <= len(dayNames) {
		return dayNames[day-1]
	}
	return strconv.Itoa(day)
}
