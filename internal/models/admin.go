// internal/models/admin.go
package models

import (
	"github.com/google/uuid"
)

type AuditLog struct {
	BaseModel
	UserID       *uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	Action       string     `json:"action" gorm:"size:255;not null"`
	ResourceType string     `json:"resource_type" gorm:"size:50;index"`
	ResourceID   string     `json:"resource_id,omitempty" gorm:"size:70;index"`
	IPAddress    string     `json:"ip_address" gorm:"size:45"`
	UserAgent    string     `json:"user_agent" gorm:"size:512"`
	NewValues    JSONB      `json:"new_values,omitempty" gorm:"type:jsonb"`
}

// AdminNotification is the inbox backing the admin dashboard, e.g. a
// pending manufacturer verification request.
type AdminNotification struct {
	BaseModel
	Type              string             `json:"type" gorm:"size:50;not null;index"`
	Title             string             `json:"title" gorm:"size:255;not null"`
	Message           string             `json:"message" gorm:"type:text"`
	Status            NotificationStatus `json:"status" gorm:"type:varchar(20);default:'unread';index"`
	RelatedResourceID *uuid.UUID         `json:"related_resource_id" gorm:"type:uuid"`
}
