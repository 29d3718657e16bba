package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-timetable-api/internal/dto"
	"github.com/noah-isme/campus-timetable-api/internal/models"
	"github.com/noah-isme/campus-timetable-api/pkg/response"
)

type generationService interface {
	Start(ctx context.Context, req dto.GenerateRequest) (models.GenerationRun, error)
	Get(runID string) (models.GenerationRun, error)
	Cancel(runID string) (models.GenerationRun, error)
}

// GenerationHandler exposes the automated generation endpoints.
type GenerationHandler struct {
	service generationService
}

// NewGenerationHandler constructs a generation handler.
func NewGenerationHandler(svc generationService) *GenerationHandler {
	return &GenerationHandler{service: svc}
}

// Generate godoc
// @Summary Start a timetable generation run
// @Tags Generation
// @Accept json
// @Produce json
// @Param payload body dto.GenerateRequest false "Run overrides"
// @Success 202 {object} response.Envelope
// @Router /timetable/generate [post]
func (h *GenerationHandler) Generate(c *gin.Context) {
	var req dto.GenerateRequest
	if c.Request.ContentLength > 0 {
		if err := bindAndValidate(c, &req); err != nil {
			respondError(c, err)
			return
		}
	}

	run, err := h.service.Start(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Accepted(c, toRunResponse(run))
}

// GetRun godoc
// @Summary Get generation run state
// @Tags Generation
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} response.Envelope
// @Router /timetable/runs/{id} [get]
func (h *GenerationHandler) GetRun(c *gin.Context) {
	run, err := h.service.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, toRunResponse(run), nil)
}

// CancelRun godoc
// @Summary Cancel a running generation
// @Tags Generation
// @Produce json
// @Param id path string true "Run ID"
// @Success 202 {object} response.Envelope
// @Router /timetable/runs/{id}/cancel [post]
func (h *GenerationHandler) CancelRun(c *gin.Context) {
	run, err := h.service.Cancel(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Accepted(c, toRunResponse(run))
}

func toRunResponse(run models.GenerationRun) dto.GenerationRunResponse {
	return dto.GenerationRunResponse{
		RunID:       run.ID,
		State:       run.State,
		Progress:    run.Progress,
		Placed:      run.Placed,
		Unplaced:    run.Unplaced,
		Iterations:  run.Iterations,
		Diagnostics: run.Diagnostics,
		Metrics:     run.Metrics,
		Error:       run.Error,
		StartedAt:   run.StartedAt,
		FinishedAt:  run.FinishedAt,
	}
}
