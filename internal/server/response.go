package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"deskshop/internal/db"
	"deskshop/internal/errx"
	"deskshop/internal/logger"
	"deskshop/internal/models"
)

type errorResponse struct {
	Detail string              `json:"detail"`
	Errors []models.FieldError `json:"errors,omitempty"`
}

// abort writes err as {"detail": ...}. Anything that is not an AppError is
// logged and hidden behind a generic message.
func abort(c *gin.Context, err error) {
	if errors.Is(err, db.ErrDisabled) {
		err = errx.Unavailable(err)
	}
	appErr := errx.From(err)
	if appErr.Status >= http.StatusInternalServerError && appErr.Err != nil {
		logger.FromContext(c).Error("request failed", zap.Error(appErr.Err))
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(appErr.Status, errorResponse{Detail: appErr.Message})
}

func abortValidation(c *gin.Context, fields []models.FieldError) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{
		Detail: errx.ValidationFailedMessage,
		Errors: fields,
	})
}
