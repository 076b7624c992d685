package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aliskhannn/safeguard-bot/internal/domain/entities"
	"github.com/aliskhannn/safeguard-bot/internal/infra/postgres/repository"
	"github.com/aliskhannn/safeguard-bot/internal/service"
)

var ErrCannotDeleteAdmin = errors.New("administrator accounts cannot be deleted")

var statusErrors = []struct {
	err    error
	status int
}{
	{service.ErrInvalidCredentials, http.StatusUnauthorized},
	{ErrInvalidToken, http.StatusUnauthorized},
	{service.ErrNotAdmin, http.StatusForbidden},
	{ErrCannotDeleteAdmin, http.StatusForbidden},
	{repository.ErrUserNotFound, http.StatusNotFound},
	{repository.ErrEmailTaken, http.StatusConflict},
	{service.ErrWeakPassword, http.StatusBadRequest},
	{entities.ErrInvalidEmail, http.StatusBadRequest},
	{entities.ErrInvalidName, http.StatusBadRequest},
	{entities.ErrInvalidGrade, http.StatusBadRequest},
	{entities.ErrUnknownFilter, http.StatusBadRequest},
}

// writeError maps err to a status and aborts the request.
// Unknown errors are logged and hidden behind a 500.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	for _, se := range statusErrors {
		if errors.Is(err, se.err) {
			c.AbortWithStatusJSON(se.status, errorResponse{Error: se.err.Error()})
			return
		}
	}

	logger.Error("request failed",
		zap.String("route", c.FullPath()),
		zap.Error(err),
	)
	c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
}
