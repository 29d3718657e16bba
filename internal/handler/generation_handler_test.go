package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-timetable-api/internal/dto"
	"github.com/noah-isme/campus-timetable-api/internal/models"
	appErrors "github.com/noah-isme/campus-timetable-api/pkg/errors"
)

type generationServiceMock struct {
	captured  dto.GenerateRequest
	run       models.GenerationRun
	startErr  error
	getErr    error
	cancelErr error
}

func (m *generationServiceMock) Start(_ context.Context, req dto.GenerateRequest) (models.GenerationRun, error) {
	m.captured = req
	return m.run, m.startErr
}

func (m *generationServiceMock) Get(string) (models.GenerationRun, error) {
	return m.run, m.getErr
}

func (m *generationServiceMock) Cancel(string) (models.GenerationRun, error) {
	return m.run, m.cancelErr
}

func runningFixture() models.GenerationRun {
	return models.GenerationRun{
		ID:        "run-1",
		State:     models.GenerationStateRunning,
		StartedAt: time.Now(),
	}
}

func TestGenerationHandlerGenerateNoBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &generationServiceMock{run: runningFixture()}
	h := NewGenerationHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/timetable/generate", nil)

	h.Generate(c)

	require.Equal(t, http.StatusAccepted, w.Code)
	require.Nil(t, mockSvc.captured.Weights)
	require.Contains(t, w.Body.String(), `"run_id":"run-1"`)
}

func TestGenerationHandlerGenerateWithOverrides(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &generationServiceMock{run: runningFixture()}
	h := NewGenerationHandler(mockSvc)

	payload := []byte(`{"weights":{"satisfaction":60,"balance":20,"utilization":20},"improvement_iterations":500,"seed":42}`)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/timetable/generate", bytes.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Generate(c)

	require.Equal(t, http.StatusAccepted, w.Code)
	require.NotNil(t, mockSvc.captured.Weights)
	require.InDelta(t, 60, mockSvc.captured.Weights.Satisfaction, 0.001)
	require.NotNil(t, mockSvc.captured.Seed)
	require.EqualValues(t, 42, *mockSvc.captured.Seed)
}

func TestGenerationHandlerGenerateMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewGenerationHandler(&generationServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/timetable/generate", bytes.NewReader([]byte(`{"weights":`)))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Generate(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerationHandlerGenerateInvalidWeights(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &generationServiceMock{startErr: appErrors.Clone(appErrors.ErrInvalidWeights, "weights must not be negative")}
	h := NewGenerationHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/timetable/generate", nil)

	h.Generate(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "INVALID_WEIGHTS")
}

func TestGenerationHandlerGetRun(t *testing.T) {
	gin.SetMode(gin.TestMode)
	run := runningFixture()
	run.State = models.GenerationStateCompleted
	run.Progress = 1
	run.Placed = 6
	h := NewGenerationHandler(&generationServiceMock{run: run})

	router := gin.New()
	router.GET("/timetable/runs/:id", h.GetRun)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/timetable/runs/run-1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.GenerationRunResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, models.GenerationStateCompleted, envelope.Data.State)
	require.Equal(t, 6, envelope.Data.Placed)
}

func TestGenerationHandlerGetRunNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewGenerationHandler(&generationServiceMock{getErr: appErrors.Clone(appErrors.ErrNotFound, "generation run not found")})

	router := gin.New()
	router.GET("/timetable/runs/:id", h.GetRun)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/timetable/runs/missing", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenerationHandlerCancelFinishedRun(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewGenerationHandler(&generationServiceMock{cancelErr: appErrors.Clone(appErrors.ErrConflict, "generation run already finished")})

	router := gin.New()
	router.POST("/timetable/runs/:id/cancel", h.CancelRun)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/timetable/runs/run-1/cancel", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestGenerationHandlerCancelRun(t *testing.T) {
	gin.SetMode(gin.TestMode)
	run := runningFixture()
	run.State = models.GenerationStateCancelled
	h := NewGenerationHandler(&generationServiceMock{run: run})

	router := gin.New()
	router.POST("/timetable/runs/:id/cancel", h.CancelRun)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/timetable/runs/run-1/cancel", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	require.Contains(t, w.Body.String(), `"state":"CANCELLED"`)
}
