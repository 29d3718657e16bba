package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-timetable-api/internal/dto"
	"github.com/noah-isme/campus-timetable-api/internal/models"
	"github.com/noah-isme/campus-timetable-api/pkg/response"
)

type boardService interface {
	View(ctx context.Context, scenarioID, groupBy string) (dto.BoardView, error)
	Metrics(ctx context.Context, scenarioID string) (models.ScenarioMetrics, error)
	Check(ctx context.Context, scenarioID string, req dto.PlacementRequest) (dto.ConflictSetResponse, error)
	Place(ctx context.Context, scenarioID string, req dto.PlacementRequest) (dto.PlacementResponse, error)
	Move(ctx context.Context, scenarioID, assignmentID string, req dto.MoveRequest) (dto.PlacementResponse, error)
	Edit(ctx context.Context, scenarioID, assignmentID string, req dto.EditRequest) (dto.PlacementResponse, error)
	Delete(ctx context.Context, scenarioID, assignmentID string) error
	Discard(scenarioID string)
}

// BoardHandler exposes the interactive editing board endpoints.
type BoardHandler struct {
	service boardService
}

// NewBoardHandler constructs a board handler.
func NewBoardHandler(svc boardService) *BoardHandler {
	return &BoardHandler{service: svc}
}

// View godoc
// @Summary View a scenario's board grouped by dimension
// @Tags Board
// @Produce json
// @Param scenarioId path string true "Scenario ID"
// @Param group_by query string false "program, faculty, room or cohort"
// @Success 200 {object} response.Envelope
// @Router /board/{scenarioId} [get]
func (h *BoardHandler) View(c *gin.Context) {
	view, err := h.service.View(c.Request.Context(), c.Param("scenarioId"), c.Query("group_by"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Metrics godoc
// @Summary Score the board's current state
// @Tags Board
// @Produce json
// @Param scenarioId path string true "Scenario ID"
// @Success 200 {object} response.Envelope
// @Router /board/{scenarioId}/metrics [get]
func (h *BoardHandler) Metrics(c *gin.Context) {
	metrics, err := h.service.Metrics(c.Request.Context(), c.Param("scenarioId"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, metrics, nil)
}

// Check godoc
// @Summary Validate a placement without committing it
// @Tags Board
// @Accept json
// @Produce json
// @Param scenarioId path string true "Scenario ID"
// @Param payload body dto.PlacementRequest true "Candidate placement"
// @Success 200 {object} response.Envelope
// @Router /board/{scenarioId}/check [post]
func (h *BoardHandler) Check(c *gin.Context) {
	var req dto.PlacementRequest
	if err := bindAndValidate(c, &req); err != nil {
		respondError(c, err)
		return
	}
	result, err := h.service.Check(c.Request.Context(), c.Param("scenarioId"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Place godoc
// @Summary Commit a new assignment to the board
// @Tags Board
// @Accept json
// @Produce json
// @Param scenarioId path string true "Scenario ID"
// @Param payload body dto.PlacementRequest true "New placement"
// @Success 201 {object} response.Envelope
// @Router /board/{scenarioId}/assignments [post]
func (h *BoardHandler) Place(c *gin.Context) {
	var req dto.PlacementRequest
	if err := bindAndValidate(c, &req); err != nil {
		respondError(c, err)
		return
	}
	result, err := h.service.Place(c.Request.Context(), c.Param("scenarioId"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, result)
}

// Move godoc
// @Summary Relocate an assignment
// @Tags Board
// @Accept json
// @Produce json
// @Param scenarioId path string true "Scenario ID"
// @Param assignmentId path string true "Assignment ID"
// @Param payload body dto.MoveRequest true "Target cell"
// @Success 200 {object} response.Envelope
// @Router /board/{scenarioId}/assignments/{assignmentId}/move [put]
func (h *BoardHandler) Move(c *gin.Context) {
	var req dto.MoveRequest
	if err := bindAndValidate(c, &req); err != nil {
		respondError(c, err)
		return
	}
	result, err := h.service.Move(c.Request.Context(), c.Param("scenarioId"), c.Param("assignmentId"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Edit godoc
// @Summary Change an assignment's room or faculty in place
// @Tags Board
// @Accept json
// @Produce json
// @Param scenarioId path string true "Scenario ID"
// @Param assignmentId path string true "Assignment ID"
// @Param payload body dto.EditRequest true "New room/faculty"
// @Success 200 {object} response.Envelope
// @Router /board/{scenarioId}/assignments/{assignmentId} [patch]
func (h *BoardHandler) Edit(c *gin.Context) {
	var req dto.EditRequest
	if err := bindAndValidate(c, &req); err != nil {
		respondError(c, err)
		return
	}
	result, err := h.service.Edit(c.Request.Context(), c.Param("scenarioId"), c.Param("assignmentId"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Delete godoc
// @Summary Remove an assignment from the board
// @Tags Board
// @Param scenarioId path string true "Scenario ID"
// @Param assignmentId path string true "Assignment ID"
// @Success 204 "No Content"
// @Router /board/{scenarioId}/assignments/{assignmentId} [delete]
func (h *BoardHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("scenarioId"), c.Param("assignmentId")); err != nil {
		respondError(c, err)
		return
	}
	response.NoContent(c)
}

// Discard godoc
// @Summary Discard the board's working copy
// @Tags Board
// @Param scenarioId path string true "Scenario ID"
// @Success 204 "No Content"
// @Router /board/{scenarioId} [delete]
func (h *BoardHandler) Discard(c *gin.Context) {
	h.service.Discard(c.Param("scenarioId"))
	response.NoContent(c)
}
