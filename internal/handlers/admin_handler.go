package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/campuscruz/rideshare-backend/internal/database"
	"github.com/campuscruz/rideshare-backend/internal/models"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
	recentListSize  = 5
)

// AdminHandler handles the admin-only management endpoints
type AdminHandler struct {
	users  *database.UserRepository
	rides  *database.RideRepository
	logger *logrus.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(users *database.UserRepository, rides *database.RideRepository, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{users: users, rides: rides, logger: logger}
}

// Stats handles GET /api/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	totalUsers, err := h.users.Count("")
	if err != nil {
		h.logger.WithError(err).Error("Failed to count users")
		respondError(c, http.StatusInternalServerError, "Server error")
		return
	}
	totalRides, err := h.rides.CountAll()
	if err != nil {
		h.logger.WithError(err).Error("Failed to count rides")
		respondError(c, http.StatusInternalServerError, "Server error")
		return
	}

	byStatus := gin.H{}
	for _, status := range []string{
		models.RideStatusScheduled,
		models.RideStatusInProgress,
		models.RideStatusCompleted,
		models.RideStatusCancelled,
	} {
		count, err := h.rides.CountByStatus(status)
		if err != nil {
			h.logger.WithError(err).Error("Failed to count rides by status")
			respondError(c, http.StatusInternalServerError, "Server error")
			return
		}
		byStatus[status] = count
	}

	recentUsers, err := h.users.Recent(recentListSize)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get recent users")
		respondError(c, http.StatusInternalServerError, "Server error")
		return
	}
	recentRides, err := h.rides.Recent(recentListSize)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get recent rides")
		respondError(c, http.StatusInternalServerError, "Server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats": gin.H{
			"totalUsers":    totalUsers,
			"totalRides":    totalRides,
			"ridesByStatus": byStatus,
			"recentUsers":   recentUsers,
			"recentRides":   recentRides,
		},
	})
}

// ListUsers handles GET /api/admin/users with search and pagination
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, limit := parsePagination(c)
	search := c.Query("search")

	total, err := h.users.Count(search)
	if err != nil {
		h.logger.WithError(err).Error("Failed to count users")
		respondError(c, http.StatusInternalServerError, "Server error")
		return
	}

	users, err := h.users.List(search, limit, (page-1)*limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list users")
		respondError(c, http.StatusInternalServerError, "Server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"users":      users,
		"pagination": newPaginationMeta(total, page, limit),
	})
}

// GetUser handles GET /api/admin/users/:id with the user's ride history
func (h *AdminHandler) GetUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid user ID")
		return
	}

	user, err := h.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}
		h.logger.WithError(err).Error("Failed to get user")
		respondError(c, http.StatusInternalServerError, "Server error")
		return
	}

	rides, err := h.rides.ListByUser(userID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list user rides")
		respondError(c, http.StatusInternalServerError, "Server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
		"rides":   rides,
	})
}

// UserStatusRequest is the account status toggle payload
type UserStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateUserStatus handles PUT /api/admin/users/:id/status
func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req UserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Please provide a status")
		return
	}
	if req.Status != models.UserStatusActive && req.Status != models.UserStatusInactive {
		respondError(c, http.StatusBadRequest, "Status must be active or inactive")
		return
	}

	user, err := h.users.UpdateStatus(userID, req.Status)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}
		h.logger.WithError(err).Error("Failed to update user status")
		respondError(c, http.StatusInternalServerError, "Server error")
		return
	}

	h.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"status":  req.Status,
	}).Info("User status updated")

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
	})
}

// ListRides handles GET /api/admin/rides with status/date filters
func (h *AdminHandler) ListRides(c *gin.Context) {
	page, limit := parsePagination(c)

	filter := database.RideListFilter{Status: c.Query("status")}
	if filter.Status != "" && !validRideStatus(filter.Status) {
		respondError(c, http.StatusBadRequest, "Invalid ride status")
		return
	}

	startRaw, endRaw := c.Query("startDate"), c.Query("endDate")
	if startRaw != "" && endRaw != "" {
		start, err := time.ParseInLocation("2006-01-02", startRaw, time.Local)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Start date must be in YYYY-MM-DD format")
			return
		}
		end, err := time.ParseInLocation("2006-01-02", endRaw, time.Local)
		if err != nil {
			respondError(c, http.StatusBadRequest, "End date must be in YYYY-MM-DD format")
			return
		}
		end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
		filter.StartDate = &start
		filter.EndDate = &end
	}

	total, err := h.rides.Count(filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to count rides")
		respondError(c, http.StatusInternalServerError, "Server error")
		return
	}

	rides, err := h.rides.List(filter, limit, (page-1)*limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list rides")
		respondError(c, http.StatusInternalServerError, "Server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"rides":      rides,
		"pagination": newPaginationMeta(total, page, limit),
	})
}

// DeleteRide handles DELETE /api/admin/rides/:id
func (h *AdminHandler) DeleteRide(c *gin.Context) {
	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid ride ID")
		return
	}

	if err := h.rides.Delete(rideID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Ride not found")
			return
		}
		h.logger.WithError(err).Error("Failed to delete ride")
		respondError(c, http.StatusInternalServerError, "Server error")
		return
	}

	h.logger.WithField("ride_id", rideID).Info("Ride deleted by admin")

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Ride deleted successfully",
	})
}

func parsePagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func validRideStatus(status string) bool {
	switch status {
	case models.RideStatusScheduled, models.RideStatusInProgress,
		models.RideStatusCompleted, models.RideStatusCancelled:
		return true
	}
	return false
}
