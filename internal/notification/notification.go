package notification

import (
	"time"
)

const (
	TypeTicketCreated          = "ticket_created"
	TypeTicketAssigned         = "ticket_assigned"
	TypeTicketStatusChanged    = "ticket_status_changed"
	TypeEquipmentStatusChanged = "equipment_status_changed"
	TypeMaintenanceDue         = "maintenance_due"
	TypeMaintenanceOverdue     = "maintenance_overdue"
	TypeMaintenanceCompleted   = "maintenance_completed"
)

const (
	EntityTicket      = "ticket"
	EntityEquipment   = "equipment"
	EntityMaintenance = "maintenance_schedule"
)

// Notification is one inbox row for one user.
type Notification struct {
	ID                string     `json:"id" gorm:"primaryKey"`
	UserID            string     `json:"user_id" gorm:"not null;index"`
	Title             string     `json:"title" gorm:"not null"`
	Message           string     `json:"message" gorm:"not null"`
	NotificationType  string     `json:"notification_type" gorm:"not null"`
	RelatedEntityType *string    `json:"related_entity_type,omitempty"`
	RelatedEntityID   *string    `json:"related_entity_id,omitempty"`
	IsRead            bool       `json:"is_read" gorm:"not null;default:false"`
	ReadAt            *time.Time `json:"read_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
