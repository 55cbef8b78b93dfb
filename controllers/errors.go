package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"edpharma/logger"
	"edpharma/middleware"
	"edpharma/models"
	"edpharma/services"
)

const genericError = "Something went wrong, please try again"

// respondError is the single place where service errors become HTTP responses.
// Storage details are logged and never sent to the client.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please correct the highlighted fields", "fields": verr.Fields})
	case errors.Is(err, services.ErrEmptyCart), errors.Is(err, services.ErrUnknownField):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUnauthenticated), errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrNoDraft):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrAccountExists),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrWrongStep):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Error("Request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": genericError})
	}
}

func respondOK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"message": message, "data": data})
}

func principal(c *gin.Context) models.Principal {
	p, _ := middleware.CurrentPrincipal(c)
	return p
}
