package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"tableorder/middlewares"
	"tableorder/models"
)

// respondError maps service errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var ve *models.ValidationError
	var nf *models.NotFoundError
	var se *models.InvalidStatusError

	switch {
	case errors.As(err, &ve):
		body := gin.H{"error": ve.Message}
		if ve.Field != "" {
			body["field"] = ve.Field
		}
		c.JSON(http.StatusBadRequest, body)
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, gin.H{"error": nf.Error()})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.As(err, &se):
		status := http.StatusBadRequest
		if se.Reason == models.ReasonNotAllowed {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": se.Error(), "field": "status"})
	default:
		_ = c.Error(err)
		slog.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// record 记录业务操作指标
func record(c *gin.Context, entity, operation string) {
	ok := c.Writer.Status() >= 200 && c.Writer.Status() < 300
	middlewares.RecordOperation(entity, operation, ok)
}
