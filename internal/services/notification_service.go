// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/authentrace/provenance-backend/internal/config"
	"github.com/authentrace/provenance-backend/internal/models"
)

type NotificationService struct {
	db     *gorm.DB
	config *config.Config
}

func NewNotificationService(db *gorm.DB, config *config.Config) *NotificationService {
	return &NotificationService{
		db:     db,
		config: config,
	}
}

// SendManufacturerVerificationRequest records an admin-inbox entry and
// mails the admin when a new manufacturer account registers and needs
// verification before it may mint items.
func (s *NotificationService) SendManufacturerVerificationRequest(user *models.User) error {
	notification := &models.AdminNotification{
		Type:              "manufacturer_verification",
		Title:             "New Manufacturer Account Verification Required",
		Message:           fmt.Sprintf("Manufacturer %s registered and is awaiting verification", user.Email),
		Status:            models.NotificationStatusUnread,
		RelatedResourceID: &user.ID,
	}

	if err := s.db.Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create admin notification: %w", err)
	}

	if s.config.Email.AdminEmail == "" {
		return nil
	}

	data := map[string]interface{}{
		"ManufacturerEmail": user.Email,
		"ManufacturerID":    user.ID.String(),
		"VerifyURL":         fmt.Sprintf("%s/admin/verify/%s", s.config.Frontend.BaseURL, user.ID),
	}

	body, err := s.renderTemplate(manufacturerVerificationTemplate, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(s.config.Email.AdminEmail, "New Manufacturer Account Verification Required", body)
}

// SendTransferNotice mails the receiving account after an ownership
// transfer has been committed to the ledger.
func (s *NotificationService) SendTransferNotice(newOwner *models.User, item *models.Item, record *models.TransactionRecord) error {
	data := map[string]interface{}{
		"ItemID":        item.ItemID,
		"ProductID":     item.ProductID,
		"TransactionID": record.TransactionID,
		"HistoryURL":    fmt.Sprintf("%s/items/%s", s.config.Frontend.BaseURL, item.ItemID),
	}

	body, err := s.renderTemplate(transferNoticeTemplate, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(newOwner.Email, "An item was transferred to you", body)
}

func (s *NotificationService) renderTemplate(tmpl string, data map[string]interface{}) (string, error) {
	t, err := template.New("email").Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *NotificationService) sendEmail(to, subject, htmlBody string) error {
	cfg := s.config.Email
	if cfg.SMTPUsername == "" {
		// No SMTP configured (development); log instead of sending.
		logrus.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Info("Email sending skipped, SMTP not configured")
		return nil
	}

	auth := smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)
	msg := []byte(fmt.Sprintf(
		"From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		cfg.FromName, cfg.FromEmail, to, subject, htmlBody,
	))

	addr := fmt.Sprintf("%s:%s", cfg.SMTPHost, cfg.SMTPPort)
	if err := smtp.SendMail(addr, auth, cfg.FromEmail, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

const manufacturerVerificationTemplate = `
<h2>New Manufacturer Account Registration</h2>
<p><strong>Manufacturer Email:</strong> {{.ManufacturerEmail}}</p>
<p><strong>Manufacturer ID:</strong> {{.ManufacturerID}}</p>
<p>Please verify this manufacturer account in the admin dashboard.</p>
<p><a href="{{.VerifyURL}}">Verify Manufacturer</a></p>
`

const transferNoticeTemplate = `
<h2>Ownership Transfer</h2>
<p>Item <strong>{{.ItemID}}</strong> (product {{.ProductID}}) is now registered to your account.</p>
<p>Transaction: {{.TransactionID}}</p>
<p><a href="{{.HistoryURL}}">View ownership history</a></p>
`
