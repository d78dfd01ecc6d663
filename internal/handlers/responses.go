package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/campuscruz/rideshare-backend/internal/database"
	"github.com/campuscruz/rideshare-backend/internal/services"
)

// PaginationMeta describes one page of a listing
type PaginationMeta struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

func newPaginationMeta(total, page, limit int) PaginationMeta {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return PaginationMeta{Total: total, Page: page, Limit: limit, Pages: pages}
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

// respondServiceError maps service-layer failures onto the HTTP taxonomy:
// lifecycle rule violations are 400, ownership mismatches 403, missing
// entities 404, everything else a suppressed 500.
func respondServiceError(c *gin.Context, logger *logrus.Logger, err error) {
	var ruleErr *services.BusinessRuleError
	switch {
	case errors.As(err, &ruleErr):
		respondError(c, http.StatusBadRequest, ruleErr.Message)
	case errors.Is(err, services.ErrDriverRatingNotSupported):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotRideDriver),
		errors.Is(err, services.ErrNotRideParticipant):
		respondError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrRideNotFound),
		errors.Is(err, services.ErrPassengerNotFound),
		errors.Is(err, database.ErrNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	default:
		logger.WithError(err).WithField("path", c.Request.URL.Path).Error("Unhandled service error")
		respondError(c, http.StatusInternalServerError, "Server error")
	}
}
