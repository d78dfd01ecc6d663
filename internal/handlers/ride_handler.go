package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/campuscruz/rideshare-backend/internal/database"
	"github.com/campuscruz/rideshare-backend/internal/middleware"
	"github.com/campuscruz/rideshare-backend/internal/models"
	"github.com/campuscruz/rideshare-backend/internal/services"
)

const (
	minRideSeats = 1
	maxRideSeats = 10
)

// RideHandler handles ride CRUD and lifecycle endpoints
type RideHandler struct {
	rides       *database.RideRepository
	passengers  *database.PassengerRepository
	rideService *services.RideService
	logger      *logrus.Logger
}

// NewRideHandler creates a new ride handler
func NewRideHandler(
	rides *database.RideRepository,
	passengers *database.PassengerRepository,
	rideService *services.RideService,
	logger *logrus.Logger,
) *RideHandler {
	return &RideHandler{
		rides:       rides,
		passengers:  passengers,
		rideService: rideService,
		logger:      logger,
	}
}

// CreateRideRequest is the ride creation payload
type CreateRideRequest struct {
	StartLocation string    `json:"startLocation" binding:"required"`
	EndLocation   string    `json:"endLocation" binding:"required"`
	Route         string    `json:"route"`
	DepartureTime time.Time `json:"departureTime" binding:"required"`
	TotalSeats    int       `json:"totalSeats" binding:"required"`
	Price         float64   `json:"price"`
	Notes         string    `json:"additionalNotes"`
}

// Create handles POST /api/rides
func (h *RideHandler) Create(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}

	var req CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Please provide start location, end location, departure time and seats")
		return
	}

	if !req.DepartureTime.After(time.Now()) {
		respondError(c, http.StatusBadRequest, "Departure time must be in the future")
		return
	}
	if req.TotalSeats < minRideSeats || req.TotalSeats > maxRideSeats {
		respondError(c, http.StatusBadRequest, "Total seats must be between 1 and 10")
		return
	}
	if req.Price < 0 {
		respondError(c, http.StatusBadRequest, "Price cannot be negative")
		return
	}

	ride := &models.Ride{
		DriverID:      user.ID,
		StartLocation: req.StartLocation,
		EndLocation:   req.EndLocation,
		Route:         req.Route,
		DepartureTime: req.DepartureTime,
		TotalSeats:    req.TotalSeats,
		Price:         req.Price,
		Notes:         models.NewNullString(req.Notes),
	}
	if err := h.rides.Create(ride); err != nil {
		h.logger.WithError(err).Error("Failed to create ride")
		respondError(c, http.StatusInternalServerError, "Server error")
		return
	}

	h.logger.WithFields(logrus.Fields{
		"ride_id":   ride.ID,
		"driver_id": user.ID,
	}).Info("Ride created")

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"ride":    ride,
	})
}

// List handles GET /api/rides with optional location and date filters
func (h *RideHandler) List(c *gin.Context) {
	var date *time.Time
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Date must be in YYYY-MM-DD format")
			return
		}
		date = &parsed
	}

	rides, err := h.rides.ListAvailable(c.Query("startLocation"), c.Query("endLocation"), date)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list rides")
		respondError(c, http.StatusInternalServerError, "Server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(rides),
		"rides":   rides,
	})
}

// Get handles GET /api/rides/:id with driver and passenger details
func (h *RideHandler) Get(c *gin.Context) {
	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid ride ID")
		return
	}

	ride, err := h.rides.GetWithDriver(rideID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Ride not found")
			return
		}
		h.logger.WithError(err).Error("Failed to get ride")
		respondError(c, http.StatusInternalServerError, "Server error")
		return
	}

	passengers, err := h.passengers.ListByRide(rideID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list ride passengers")
		respondError(c, http.StatusInternalServerError, "Server error")
		return
	}
	ride.Passengers = passengers

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"ride":    ride,
	})
}

// JoinRequest is the join payload
type JoinRequest struct {
	PickupLocation string `json:"pickupLocation" binding:"required"`
}

// Join handles POST /api/rides/:id/join
func (h *RideHandler) Join(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}

	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid ride ID")
		return
	}

	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Please provide a pickup location")
		return
	}

	passenger, err := h.rideService.RequestToJoin(rideID, user.ID, req.PickupLocation)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Request to join ride sent successfully",
		"passenger": passenger,
	})
}

// PassengerStatusRequest is the accept/reject payload
type PassengerStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdatePassengerStatus handles PUT /api/rides/:id/passengers/:passengerId.
// The path parameter is the passenger's user ID.
func (h *RideHandler) UpdatePassengerStatus(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}

	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid ride ID")
		return
	}
	passengerUserID, err := uuid.Parse(c.Param("passengerId"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid passenger ID")
		return
	}

	var req PassengerStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Please provide a status")
		return
	}

	passenger, err := h.rideService.UpdatePassengerStatus(user.ID, rideID, passengerUserID, req.Status)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Passenger request " + passenger.Status,
		"passenger": passenger,
	})
}

// Complete handles PUT /api/rides/:id/complete
func (h *RideHandler) Complete(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}

	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid ride ID")
		return
	}

	points, err := h.rideService.CompleteRide(user.ID, rideID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "Ride completed successfully",
		"pointsEarned": points,
	})
}

// RateRequest is the rating payload
type RateRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// Rate handles POST /api/rides/:id/rate
func (h *RideHandler) Rate(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}

	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid ride ID")
		return
	}

	var req RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Please provide a rating between 1 and 5")
		return
	}

	average, err := h.rideService.RateRide(user.ID, rideID, req.Rating, req.Comment)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "Rating submitted successfully",
		"averageRating": average,
	})
}
