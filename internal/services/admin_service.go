// internal/services/admin_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/authentrace/provenance-backend/internal/ledger"
	"github.com/authentrace/provenance-backend/internal/models"
	"github.com/authentrace/provenance-backend/internal/utils"
)

type AdminService struct {
	db                  *gorm.DB
	guard               *ledger.Guard
	notificationService *NotificationService
}

type AdminDashboardStats struct {
	TotalUsers           int64 `json:"total_users"`
	ActiveUsers          int64 `json:"active_users"`
	NewUsersThisMonth    int64 `json:"new_users_this_month"`
	TotalManufacturers   int64 `json:"total_manufacturers"`
	PendingVerifications int64 `json:"pending_verifications"`
	TotalItems           int64 `json:"total_items"`
	ItemsMintedThisMonth int64 `json:"items_minted_this_month"`
	TotalTransactions    int64 `json:"total_transactions"`
	TransfersThisMonth   int64 `json:"transfers_this_month"`
}

type AdminUserFilter struct {
	utils.PaginationParams
	Role          *models.AccountRole `json:"role,omitempty"`
	Status        *models.UserStatus  `json:"status,omitempty"`
	Verified      *bool               `json:"verified,omitempty"`
	CreatedAfter  *time.Time          `json:"created_after,omitempty"`
	CreatedBefore *time.Time          `json:"created_before,omitempty"`
}

type AdminAuditFilter struct {
	utils.PaginationParams
	UserID        *uuid.UUID `json:"user_id,omitempty"`
	Action        string     `json:"action,omitempty"`
	ResourceType  string     `json:"resource_type,omitempty"`
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
}

func NewAdminService(db *gorm.DB, guard *ledger.Guard, notificationService *NotificationService) *AdminService {
	return &AdminService{
		db:                  db,
		guard:               guard,
		notificationService: notificationService,
	}
}

// Dashboard Statistics
func (s *AdminService) GetDashboardStats() (*AdminDashboardStats, error) {
	stats := &AdminDashboardStats{}
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	// User statistics
	s.db.Model(&models.User{}).Count(&stats.TotalUsers)
	s.db.Model(&models.User{}).Where("status = ?", models.UserStatusActive).Count(&stats.ActiveUsers)
	s.db.Model(&models.User{}).Where("created_at >= ?", monthStart).Count(&stats.NewUsersThisMonth)

	// Manufacturer statistics
	s.db.Model(&models.User{}).Where("role = ?", models.RoleManufacturer).Count(&stats.TotalManufacturers)
	s.db.Model(&models.User{}).
		Where("role = ? AND verified = ?", models.RoleManufacturer, false).
		Count(&stats.PendingVerifications)

	// Item and ledger statistics
	s.db.Model(&models.Item{}).Count(&stats.TotalItems)
	s.db.Model(&models.Item{}).Where("created_at >= ?", monthStart).Count(&stats.ItemsMintedThisMonth)
	s.db.Model(&models.TransactionRecord{}).Count(&stats.TotalTransactions)
	s.db.Model(&models.TransactionRecord{}).
		Where("previous_owner_id IS NOT NULL AND created_at >= ?", monthStart).
		Count(&stats.TransfersThisMonth)

	return stats, nil
}

// User Management
func (s *AdminService) GetUsers(filter AdminUserFilter) ([]models.User, int64, error) {
	query := s.db.Model(&models.User{})

	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Verified != nil {
		query = query.Where("verified = ?", *filter.Verified)
	}
	if filter.Search != "" {
		query = query.Where("email ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filter.CreatedBefore)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "email", "role", "status"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}

	return users, total, nil
}

// VerifyManufacturer flips a manufacturer account to verified, which is
// the switch that allows it to mint items.
func (s *AdminService) VerifyManufacturer(userID uuid.UUID, adminID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if user.Role != models.RoleManufacturer {
		return nil, errors.New("account is not a manufacturer")
	}
	if user.Verified {
		return nil, errors.New("manufacturer is already verified")
	}

	now := time.Now()
	user.Verified = true
	user.VerifiedAt = &now

	if err := s.db.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to verify manufacturer: %w", err)
	}

	// Mark the matching inbox entries as read.
	s.db.Model(&models.AdminNotification{}).
		Where("type = ? AND related_resource_id = ?", "manufacturer_verification", userID).
		Update("status", models.NotificationStatusRead)

	go s.createAuditLog(adminID, "VERIFY_MANUFACTURER", "user", userID.String(),
		map[string]interface{}{"verified": true})

	return &user, nil
}

func (s *AdminService) UpdateUserStatus(userID uuid.UUID, status models.UserStatus, adminID uuid.UUID, reason string) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("user not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	// Admin accounts cannot be suspended through the API.
	if user.IsAdmin() {
		return errors.New("cannot modify admin user status")
	}

	user.Status = status
	if err := s.db.Save(&user).Error; err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}

	go s.createAuditLog(adminID, "UPDATE_USER_STATUS", "user", userID.String(),
		map[string]interface{}{"status": status, "reason": reason})

	return nil
}

// ForceTransfer reassigns an item through the ledger guard with the
// admin as acting party. The transfer is recorded like any other; the
// audit log carries the reason.
func (s *AdminService) ForceTransfer(ctx context.Context, admin *models.User, itemID string, newOwnerID uuid.UUID, reason string) (*models.TransactionRecord, error) {
	record, err := s.guard.Transfer(ctx, admin, itemID, newOwnerID)
	if err != nil {
		return nil, err
	}

	go s.createAuditLog(admin.ID, "FORCE_TRANSFER", "item", itemID,
		map[string]interface{}{
			"transaction_id": record.TransactionID,
			"new_owner_id":   newOwnerID.String(),
			"reason":         reason,
		})

	return record, nil
}

// Audit Logs
func (s *AdminService) GetAuditLogs(filter AdminAuditFilter) ([]models.AuditLog, int64, error) {
	query := s.db.Model(&models.AuditLog{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.ResourceType != "" {
		query = query.Where("resource_type = ?", filter.ResourceType)
	}
	if filter.Search != "" {
		query = query.Where("resource_id ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filter.CreatedBefore)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	allowedSortFields := []string{"created_at", "action", "resource_type"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var logs []models.AuditLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}

	return logs, total, nil
}

// Notifications Inbox
func (s *AdminService) GetNotifications(params utils.PaginationParams) ([]models.AdminNotification, int64, error) {
	query := s.db.Model(&models.AdminNotification{})

	if params.Category != "" {
		query = query.Where("type = ?", params.Category)
	}
	if params.Search != "" {
		searchTerm := "%" + params.Search + "%"
		query = query.Where("title ILIKE ? OR message ILIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	allowedSortFields := []string{"created_at", "status", "type"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var notifications []models.AdminNotification
	if err := query.Find(&notifications).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	return notifications, total, nil
}

func (s *AdminService) MarkNotificationRead(notificationID uuid.UUID) error {
	result := s.db.Model(&models.AdminNotification{}).
		Where("id = ?", notificationID).
		Update("status", models.NotificationStatusRead)
	if result.Error != nil {
		return fmt.Errorf("failed to update notification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("notification not found")
	}
	return nil
}

func (s *AdminService) createAuditLog(userID uuid.UUID, action, resourceType, resourceID string, newValues map[string]interface{}) {
	auditLog := &models.AuditLog{
		UserID:       &userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		NewValues:    models.JSONB(newValues),
	}

	s.db.Create(auditLog)
}
