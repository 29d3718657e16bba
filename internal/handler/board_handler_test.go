package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-timetable-api/internal/dto"
	"github.com/noah-isme/campus-timetable-api/internal/models"
	appErrors "github.com/noah-isme/campus-timetable-api/pkg/errors"
)

type boardServiceMock struct {
	view        dto.BoardView
	metrics     models.ScenarioMetrics
	checkResult dto.ConflictSetResponse
	placement   dto.PlacementResponse
	err         error
	discarded   []string
}

func (m *boardServiceMock) View(_ context.Context, scenarioID, groupBy string) (dto.BoardView, error) {
	return m.view, m.err
}

func (m *boardServiceMock) Metrics(context.Context, string) (models.ScenarioMetrics, error) {
	return m.metrics, m.err
}

func (m *boardServiceMock) Check(context.Context, string, dto.PlacementRequest) (dto.ConflictSetResponse, error) {
	return m.checkResult, m.err
}

func (m *boardServiceMock) Place(context.Context, string, dto.PlacementRequest) (dto.PlacementResponse, error) {
	return m.placement, m.err
}

func (m *boardServiceMock) Move(context.Context, string, string, dto.MoveRequest) (dto.PlacementResponse, error) {
	return m.placement, m.err
}

func (m *boardServiceMock) Edit(context.Context, string, string, dto.EditRequest) (dto.PlacementResponse, error) {
	return m.placement, m.err
}

func (m *boardServiceMock) Delete(context.Context, string, string) error {
	return m.err
}

func (m *boardServiceMock) Discard(scenarioID string) {
	m.discarded = append(m.discarded, scenarioID)
}

func newBoardRouter(mockSvc *boardServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewBoardHandler(mockSvc)
	router := gin.New()
	board := router.Group("/board")
	{
		board.GET("/:scenarioId", h.View)
		board.DELETE("/:scenarioId", h.Discard)
		board.GET("/:scenarioId/metrics", h.Metrics)
		board.POST("/:scenarioId/check", h.Check)
		board.POST("/:scenarioId/assignments", h.Place)
		board.PUT("/:scenarioId/assignments/:assignmentId/move", h.Move)
		board.PATCH("/:scenarioId/assignments/:assignmentId", h.Edit)
		board.DELETE("/:scenarioId/assignments/:assignmentId", h.Delete)
	}
	return router
}

func validPlacementPayload() []byte {
	return []byte(`{"section_id":"sec-os","faculty_id":"fac-a","room_id":"room-big","day":1,"period":1}`)
}

func TestBoardHandlerView(t *testing.T) {
	mockSvc := &boardServiceMock{view: dto.BoardView{
		ScenarioID: "scn-1",
		GroupBy:    "program",
		Groups: map[string][]models.Assignment{
			"CS301": {{ID: "a1", SectionID: "sec-os"}},
		},
	}}
	router := newBoardRouter(mockSvc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/board/scn-1?group_by=program", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.BoardView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Groups["CS301"], 1)
}

func TestBoardHandlerViewBadGrouping(t *testing.T) {
	mockSvc := &boardServiceMock{err: appErrors.Clone(appErrors.ErrValidation, "group_by must be one of program, faculty, room, cohort")}
	router := newBoardRouter(mockSvc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/board/scn-1?group_by=bogus", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBoardHandlerCheckReportsConflicts(t *testing.T) {
	mockSvc := &boardServiceMock{checkResult: dto.ConflictSetResponse{
		Valid: false,
		Conflicts: []models.Conflict{
			{Invariant: models.InvariantRoomExclusive, Code: "ROOM_OCCUPIED", Blocking: true},
		},
	}}
	router := newBoardRouter(mockSvc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/board/scn-1/check", bytes.NewReader(validPlacementPayload()))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "ROOM_OCCUPIED")
}

func TestBoardHandlerCheckMissingFields(t *testing.T) {
	router := newBoardRouter(&boardServiceMock{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/board/scn-1/check", bytes.NewReader([]byte(`{"day":1,"period":1}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBoardHandlerPlace(t *testing.T) {
	mockSvc := &boardServiceMock{placement: dto.PlacementResponse{
		Assignment: models.Assignment{ID: "a-new", SectionID: "sec-os", RoomID: "room-big", Day: 1, Period: 1},
	}}
	router := newBoardRouter(mockSvc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/board/scn-1/assignments", bytes.NewReader(validPlacementPayload()))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), `"id":"a-new"`)
}

func TestBoardHandlerPlaceRejected(t *testing.T) {
	mockSvc := &boardServiceMock{err: &models.ConflictError{Conflicts: []models.Conflict{
		{Invariant: models.InvariantFacultyExclusive, Code: "FACULTY_DOUBLE_BOOKED", Blocking: true},
	}}}
	router := newBoardRouter(mockSvc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/board/scn-1/assignments", bytes.NewReader(validPlacementPayload()))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "FACULTY_DOUBLE_BOOKED")
	require.Contains(t, w.Body.String(), "CONSTRAINT_VIOLATION")
}

func TestBoardHandlerMove(t *testing.T) {
	mockSvc := &boardServiceMock{placement: dto.PlacementResponse{
		Assignment: models.Assignment{ID: "a1", Day: 2, Period: 3},
	}}
	router := newBoardRouter(mockSvc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPut, "/board/scn-1/assignments/a1/move", bytes.NewReader([]byte(`{"day":2,"period":3}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"day":2`)
}

func TestBoardHandlerEditUnknownAssignment(t *testing.T) {
	mockSvc := &boardServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "assignment not found on the board")}
	router := newBoardRouter(mockSvc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPatch, "/board/scn-1/assignments/missing", bytes.NewReader([]byte(`{"room_id":"room-small"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestBoardHandlerDelete(t *testing.T) {
	router := newBoardRouter(&boardServiceMock{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/board/scn-1/assignments/a1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestBoardHandlerDiscard(t *testing.T) {
	mockSvc := &boardServiceMock{}
	router := newBoardRouter(mockSvc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/board/scn-1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, []string{"scn-1"}, mockSvc.discarded)
}
