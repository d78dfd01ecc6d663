package handlers

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/campuscruz/rideshare-backend/internal/config"
	"github.com/campuscruz/rideshare-backend/internal/database"
	"github.com/campuscruz/rideshare-backend/internal/middleware"
	"github.com/campuscruz/rideshare-backend/internal/models"
	"github.com/campuscruz/rideshare-backend/internal/services"
	"github.com/campuscruz/rideshare-backend/internal/utils"
	"github.com/campuscruz/rideshare-backend/pkg/jwt"
	"github.com/campuscruz/rideshare-backend/pkg/mailer"
	"github.com/campuscruz/rideshare-backend/pkg/validator"
)

// AuthHandler handles registration, sessions and password reset
type AuthHandler struct {
	users      *database.UserRepository
	jwtService *jwt.Service
	mailer     mailer.Mailer
	audit      *services.AuditService
	validator  *validator.CredentialValidator
	config     *config.Config
	logger     *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	users *database.UserRepository,
	jwtService *jwt.Service,
	m mailer.Mailer,
	audit *services.AuditService,
	v *validator.CredentialValidator,
	cfg *config.Config,
	logger *logrus.Logger,
) *AuthHandler {
	return &AuthHandler{
		users:      users,
		jwtService: jwtService,
		mailer:     m,
		audit:      audit,
		validator:  v,
		config:     cfg,
		logger:     logger,
	}
}

// RegisterRequest is the registration payload
type RegisterRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	CollegeID   string `json:"collegeId" binding:"required"`
	PhoneNumber string `json:"phoneNumber"`
}

// LoginRequest is the login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Please provide name, email, password and college ID")
		return
	}

	email, err := h.validator.ValidateEmail(req.Email)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validator.ValidatePassword(req.Password); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	phone, err := h.validator.ValidatePhone(req.PhoneNumber)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.config.Security.BcryptCost)
	if err != nil {
		h.logger.WithError(err).Error("Failed to hash password")
		respondError(c, http.StatusInternalServerError, "Server error")
		return
	}

	user := &models.User{
		Name:         req.Name,
		Email:        email,
		PasswordHash: string(hash),
		CollegeID:    req.CollegeID,
		PhoneNumber:  phone,
	}
	if err := h.users.Create(user); err != nil {
		switch {
		case errors.Is(err, database.ErrDuplicateEmail):
			respondError(c, http.StatusConflict, "An account with this email already exists")
		case errors.Is(err, database.ErrDuplicatePhone):
			respondError(c, http.StatusConflict, "An account with this phone number already exists")
		default:
			h.logger.WithError(err).Error("Failed to create user")
			respondError(c, http.StatusInternalServerError, "Server error")
		}
		return
	}

	h.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("New user registered")

	h.sendTokenResponse(c, http.StatusCreated, user)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Please provide an email and password")
		return
	}

	ip := utils.GetRealIP(c)
	userAgent := c.GetHeader("User-Agent")

	user, err := h.users.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			h.audit.RecordLoginAttempt(req.Email, ip, userAgent, false, "unknown email")
			respondError(c, http.StatusBadRequest, "Invalid credentials")
			return
		}
		h.logger.WithError(err).Error("Failed to look up user")
		respondError(c, http.StatusInternalServerError, "Server error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.audit.RecordLoginAttempt(req.Email, ip, userAgent, false, "wrong password")
		respondError(c, http.StatusBadRequest, "Invalid credentials")
		return
	}

	if !user.IsActive() {
		h.audit.RecordLoginAttempt(req.Email, ip, userAgent, false, "account deactivated")
		respondError(c, http.StatusUnauthorized, "Your account has been deactivated")
		return
	}

	h.audit.RecordLoginAttempt(req.Email, ip, userAgent, true, "")
	h.sendTokenResponse(c, http.StatusOK, user)
}

// Logout handles GET /api/auth/logout by replacing the session cookie with
// one that expires almost immediately.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "none", 10*time.Second)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out successfully",
	})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
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

// ForgotPasswordRequest is the forgot-password payload
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

// ForgotPassword handles POST /api/auth/forgot-password. The raw token
// travels only in the email; the store keeps its SHA-256 digest.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Please provide an email")
		return
	}

	user, err := h.users.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(c, http.StatusNotFound, "There is no user with that email")
			return
		}
		h.logger.WithError(err).Error("Failed to look up user")
		respondError(c, http.StatusInternalServerError, "Server error")
		return
	}

	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		h.logger.WithError(err).Error("Failed to generate reset token")
		respondError(c, http.StatusInternalServerError, "Server error")
		return
	}
	resetToken := hex.EncodeToString(raw)

	expires := time.Now().Add(h.config.Reset.TokenExpiry)
	if err := h.users.SetResetToken(user.ID, hashToken(resetToken), expires); err != nil {
		h.logger.WithError(err).Error("Failed to store reset token")
		respondError(c, http.StatusInternalServerError, "Server error")
		return
	}

	resetURL := fmt.Sprintf("%s/api/auth/reset-password/%s", h.config.Server.FrontendURL, resetToken)
	if err := h.mailer.SendPasswordReset(user.Email, resetURL); err != nil {
		h.logger.WithError(err).WithField("mailer", h.mailer.GetName()).Error("Failed to send reset email")
		if clearErr := h.users.ClearResetToken(user.ID); clearErr != nil {
			h.logger.WithError(clearErr).Error("Failed to clear reset token")
		}
		respondError(c, http.StatusInternalServerError, "Email could not be sent")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Email sent",
	})
}

// ResetPasswordRequest is the reset-password payload
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// ResetPassword handles PUT /api/auth/reset-password/:token and signs the
// user in with a fresh session on success.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Please provide a new password")
		return
	}

	user, err := h.users.GetByResetToken(hashToken(c.Param("token")))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(c, http.StatusBadRequest, "Invalid or expired token")
			return
		}
		h.logger.WithError(err).Error("Failed to look up reset token")
		respondError(c, http.StatusInternalServerError, "Server error")
		return
	}

	if err := h.validator.ValidatePassword(req.Password); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.config.Security.BcryptCost)
	if err != nil {
		h.logger.WithError(err).Error("Failed to hash password")
		respondError(c, http.StatusInternalServerError, "Server error")
		return
	}

	if err := h.users.UpdatePassword(user.ID, string(hash)); err != nil {
		h.logger.WithError(err).Error("Failed to update password")
		respondError(c, http.StatusInternalServerError, "Server error")
		return
	}
	if err := h.users.ClearResetToken(user.ID); err != nil {
		h.logger.WithError(err).Error("Failed to clear reset token")
	}

	h.logger.WithField("user_id", user.ID).Info("Password reset completed")
	h.sendTokenResponse(c, http.StatusOK, user)
}

// sendTokenResponse issues a session token as both cookie and body field
func (h *AuthHandler) sendTokenResponse(c *gin.Context, status int, user *models.User) {
	token, err := h.jwtService.GenerateToken(user.ID, user.Role)
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate session token")
		respondError(c, http.StatusInternalServerError, "Server error")
		return
	}

	h.setSessionCookie(c, token, h.jwtService.TokenExpiry())

	c.JSON(status, gin.H{
		"success": true,
		"token":   token,
		"user":    user,
	})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, value string, maxAge time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		h.config.JWT.CookieName,
		value,
		int(maxAge.Seconds()),
		"/",
		"",
		h.config.IsProduction(),
		true,
	)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
