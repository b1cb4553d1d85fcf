package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/matthieukhl/storefront/internal/checkout"
	"github.com/matthieukhl/storefront/internal/models"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage is the text a customer sees for err.
func publicMessage(err error, status int) string {
	var pe *models.PublicError
	if errors.As(err, &pe) {
		return pe.Msg
	}
	var gw *checkout.GatewayError
	if errors.As(err, &gw) {
		return gw.Error()
	}
	switch status {
	case http.StatusBadRequest:
		return "Invalid request"
	case http.StatusForbidden:
		return "Login required"
	case http.StatusNotFound:
		return "Not found."
	case http.StatusConflict:
		return "Already exists"
	default:
		return "Internal server error"
	}
}

// abortJSON writes {"error": ...} with the status err maps to.
func abortJSON(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "path", c.FullPath(), "err", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": publicMessage(err, status)})
}

// abortPage renders the error page for err.
func (s *Server) abortPage(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("Page failed", "path", c.FullPath(), "err", err)
	}
	s.render(c, status, "error.html", gin.H{
		"Status":  status,
		"Message": publicMessage(err, status),
	})
	c.Abort()
}

func (s *Server) notFound(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	s.abortPage(c, models.ErrNotFound)
}
