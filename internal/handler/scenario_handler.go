package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-timetable-api/internal/dto"
	"github.com/noah-isme/campus-timetable-api/internal/models"
	"github.com/noah-isme/campus-timetable-api/internal/service"
	appErrors "github.com/noah-isme/campus-timetable-api/pkg/errors"
	"github.com/noah-isme/campus-timetable-api/pkg/response"
)

type scenarioManager interface {
	Save(ctx context.Context, req dto.SaveScenarioRequest) (dto.ScenarioResponse, error)
	List(ctx context.Context) ([]dto.ScenarioResponse, error)
	Active(ctx context.Context) (dto.ScenarioResponse, error)
	Get(ctx context.Context, id string) (dto.ScenarioDetailResponse, error)
	Compare(ctx context.Context, idA, idB string) (models.ScenarioComparison, error)
	Promote(ctx context.Context, id string) (dto.ScenarioResponse, error)
	Remove(ctx context.Context, id string) error
}

type scenarioExporter interface {
	Export(ctx context.Context, scenarioID, format string) (*service.ExportFile, error)
}

// ScenarioHandler exposes saved-scenario management endpoints.
type ScenarioHandler struct {
	service scenarioManager
	exports scenarioExporter
}

// NewScenarioHandler constructs a scenario handler.
func NewScenarioHandler(svc scenarioManager, exports scenarioExporter) *ScenarioHandler {
	return &ScenarioHandler{service: svc, exports: exports}
}

// Save godoc
// @Summary Save an assignment set as a new scenario version
// @Tags Scenarios
// @Accept json
// @Produce json
// @Param payload body dto.SaveScenarioRequest true "Scenario source"
// @Success 201 {object} response.Envelope
// @Router /scenarios [post]
func (h *ScenarioHandler) Save(c *gin.Context) {
	var req dto.SaveScenarioRequest
	if err := bindAndValidate(c, &req); err != nil {
		respondError(c, err)
		return
	}
	scenario, err := h.service.Save(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, scenario)
}

// List godoc
// @Summary List saved scenarios
// @Tags Scenarios
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /scenarios [get]
func (h *ScenarioHandler) List(c *gin.Context) {
	scenarios, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scenarios, nil)
}

// Active godoc
// @Summary Get the active scenario
// @Tags Scenarios
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /scenarios/active [get]
func (h *ScenarioHandler) Active(c *gin.Context) {
	scenario, err := h.service.Active(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scenario, nil)
}

// Compare godoc
// @Summary Compare two scenarios metric by metric
// @Tags Scenarios
// @Produce json
// @Param a query string true "Scenario A ID"
// @Param b query string true "Scenario B ID"
// @Success 200 {object} response.Envelope
// @Router /scenarios/compare [get]
func (h *ScenarioHandler) Compare(c *gin.Context) {
	idA, idB := c.Query("a"), c.Query("b")
	if idA == "" || idB == "" {
		respondError(c, appErrors.Clone(appErrors.ErrValidation, "query parameters a and b are required"))
		return
	}
	comparison, err := h.service.Compare(c.Request.Context(), idA, idB)
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, comparison, nil)
}

// Get godoc
// @Summary Get a scenario with its assignment set
// @Tags Scenarios
// @Produce json
// @Param id path string true "Scenario ID"
// @Success 200 {object} response.Envelope
// @Router /scenarios/{id} [get]
func (h *ScenarioHandler) Get(c *gin.Context) {
	scenario, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scenario, nil)
}

// Promote godoc
// @Summary Promote a scenario to active
// @Tags Scenarios
// @Produce json
// @Param id path string true "Scenario ID"
// @Success 200 {object} response.Envelope
// @Router /scenarios/{id}/promote [post]
func (h *ScenarioHandler) Promote(c *gin.Context) {
	scenario, err := h.service.Promote(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scenario, nil)
}

// Export godoc
// @Summary Export a scenario's timetable
// @Tags Scenarios
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Scenario ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /scenarios/{id}/export [get]
func (h *ScenarioHandler) Export(c *gin.Context) {
	file, err := h.exports.Export(c.Request.Context(), c.Param("id"), c.Query("format"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

// Delete godoc
// @Summary Delete a scenario
// @Tags Scenarios
// @Param id path string true "Scenario ID"
// @Success 204 "No Content"
// @Router /scenarios/{id} [delete]
func (h *ScenarioHandler) Delete(c *gin.Context) {
	if err := h.service.Remove(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	response.NoContent(c)
}
