package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/campuscruz/rideshare-backend/internal/database"
	"github.com/campuscruz/rideshare-backend/internal/middleware"
	"github.com/campuscruz/rideshare-backend/internal/models"
	"github.com/campuscruz/rideshare-backend/pkg/validator"
)

// UserHandler handles the self-scoped profile endpoints
type UserHandler struct {
	users     *database.UserRepository
	rides     *database.RideRepository
	validator *validator.CredentialValidator
	logger    *logrus.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(
	users *database.UserRepository,
	rides *database.RideRepository,
	v *validator.CredentialValidator,
	logger *logrus.Logger,
) *UserHandler {
	return &UserHandler{
		users:     users,
		rides:     rides,
		validator: v,
		logger:    logger,
	}
}

// GetProfile handles GET /api/users/me
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
	})
}

// UpdateProfileRequest is the profile update payload; absent fields are
// left untouched.
type UpdateProfileRequest struct {
	Name           *string `json:"name"`
	PhoneNumber    *string `json:"phoneNumber"`
	ProfilePicture *string `json:"profilePicture"`
}

// UpdateProfile handles PUT /api/users/me
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == nil && req.PhoneNumber == nil && req.ProfilePicture == nil {
		respondError(c, http.StatusBadRequest, "No valid fields to update")
		return
	}

	if req.Name != nil && *req.Name == "" {
		respondError(c, http.StatusBadRequest, "Name cannot be empty")
		return
	}
	if req.PhoneNumber != nil {
		phone, err := h.validator.ValidatePhone(*req.PhoneNumber)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		req.PhoneNumber = &phone
	}

	updated, err := h.users.UpdateProfile(user.ID, req.Name, req.PhoneNumber, req.ProfilePicture)
	if err != nil {
		if errors.Is(err, database.ErrDuplicatePhone) {
			respondError(c, http.StatusConflict, "An account with this phone number already exists")
			return
		}
		h.logger.WithError(err).Error("Failed to update profile")
		respondError(c, http.StatusInternalServerError, "Server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    updated,
	})
}

// MyRides handles GET /api/users/me/rides, merging offered and requested
// rides sorted by departure time, newest first.
func (h *UserHandler) MyRides(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}

	offered, err := h.rides.ListByDriver(user.ID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list offered rides")
		respondError(c, http.StatusInternalServerError, "Server error")
		return
	}
	requested, err := h.rides.ListByPassenger(user.ID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list requested rides")
		respondError(c, http.StatusInternalServerError, "Server error")
		return
	}

	merged := make([]models.UserRide, 0, len(offered)+len(requested))
	for i := range offered {
		merged = append(merged, models.UserRide{Ride: offered[i], IsDriver: true})
	}
	merged = append(merged, requested...)

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].DepartureTime.After(merged[j].DepartureTime)
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(merged),
		"rides":   merged,
	})
}

// Stats handles GET /api/users/me/stats
func (h *UserHandler) Stats(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}

	offered, err := h.rides.CountByDriver(user.ID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to count offered rides")
		respondError(c, http.StatusInternalServerError, "Server error")
		return
	}
	joined, err := h.rides.CountJoined(user.ID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to count joined rides")
		respondError(c, http.StatusInternalServerError, "Server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats": gin.H{
			"totalRides":   offered + joined,
			"offeredRides": offered,
			"joinedRides":  joined,
		},
	})
}

// Notifications handles GET /api/users/me/notifications. Notifications are
// computed from pending join requests on the user's rides at read time.
func (h *UserHandler) Notifications(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}

	summaries, err := h.rides.PendingRequests(user.ID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute notifications")
		respondError(c, http.StatusInternalServerError, "Server error")
		return
	}

	notifications := make([]models.RideNotification, 0, len(summaries))
	for _, s := range summaries {
		word := "requests"
		if s.PendingCount == 1 {
			word = "request"
		}
		notifications = append(notifications, models.RideNotification{
			ID:     fmt.Sprintf("pending-%s", s.RideID),
			RideID: s.RideID,
			Title:  "Pending join requests",
			Message: fmt.Sprintf("You have %d pending %s for your ride from %s to %s",
				s.PendingCount, word, s.StartLocation, s.EndLocation),
			Read:         false,
			Timestamp:    s.FirstRequested,
			Type:         "join_request",
			PendingCount: s.PendingCount,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"count":         len(notifications),
		"notifications": notifications,
	})
}
