package services

import (
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/campuscruz/rideshare-backend/internal/models"
	"github.com/campuscruz/rideshare-backend/internal/utils"
)

// AuditService records authentication attempts for abuse investigation.
// Failures here are logged and swallowed so auditing can never block a
// login.
type AuditService struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

// NewAuditService creates a new audit service
func NewAuditService(db *sqlx.DB, logger *logrus.Logger) *AuditService {
	return &AuditService{db: db, logger: logger}
}

// RecordLoginAttempt stores one authentication attempt with the parsed
// device class of the client.
func (s *AuditService) RecordLoginAttempt(identifier, ipAddress, userAgent string, successful bool, reason string) {
	device := utils.ParseUserAgent(userAgent)

	query := `
		INSERT INTO login_attempts (identifier, ip_address, user_agent, device_type, successful, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.Exec(
		query,
		identifier,
		models.NewNullString(ipAddress),
		models.NewNullString(userAgent),
		models.NewNullString(device.DeviceType),
		successful,
		models.NewNullString(reason),
	)
	if err != nil {
		s.logger.WithError(err).WithField("identifier", identifier).Warn("Failed to record login attempt")
	}
}
