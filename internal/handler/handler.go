package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/campus-timetable-api/internal/dto"
	"github.com/noah-isme/campus-timetable-api/internal/models"
	appErrors "github.com/noah-isme/campus-timetable-api/pkg/errors"
	"github.com/noah-isme/campus-timetable-api/pkg/response"
)

var validate = validator.New()

// bindAndValidate decodes the JSON body and runs struct validation.
func bindAndValidate(c *gin.Context, dest interface{}) error {
	if err := c.ShouldBindJSON(dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload")
	}
	if err := validate.Struct(dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "payload failed validation")
	}
	return nil
}

// respondError renders errors, giving constraint violations a body that
// carries the full conflict set.
func respondError(c *gin.Context, err error) {
	var conflictErr *models.ConflictError
	if errors.As(err, &conflictErr) {
		c.Header("Cache-Control", "no-store")
		c.JSON(http.StatusConflict, response.Envelope{
			Data:  dto.ConflictSetResponse{Valid: false, Conflicts: conflictErr.Conflicts},
			Error: appErrors.ErrConstraintViolation,
		})
		return
	}
	response.Error(c, err)
}
