package ticket

import (
	"crypto/rand"
	"math/big"
	"time"
)

type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// Terminal reports whether the status counts as completed work. Entering the
// terminal set from outside it is what bumps the equipment repair count.
func (s Status) Terminal() bool {
	return s == StatusResolved || s == StatusClosed
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Ticket is a service request against a piece of equipment. The FromDepartment,
// EquipmentService, SerialNumber and ReportedBy string fields mirror the
// paper form this system replaced and are denormalized at creation time.
type Ticket struct {
	ID               string     `json:"id" gorm:"primaryKey"`
	TicketCode       string     `json:"ticket_code" gorm:"not null;uniqueIndex"`
	Title            string     `json:"title" gorm:"not null"`
	Description      *string    `json:"description,omitempty"`
	Status           Status     `json:"status" gorm:"not null;default:open"`
	Priority         Priority   `json:"priority" gorm:"not null;default:medium"`
	FromDepartment   string     `json:"from_department" gorm:"not null"`
	EquipmentService string     `json:"equipment_service" gorm:"not null"`
	SerialNumber     *string    `json:"serial_number,omitempty"`
	Concern          *string    `json:"concern,omitempty"`
	ReportedBy       string     `json:"reported_by" gorm:"not null"`
	ReportedByUserID string     `json:"reported_by_user_id" gorm:"not null;index"`
	AssignedToUserID *string    `json:"assigned_to_user_id,omitempty" gorm:"index"`
	EquipmentID      *string    `json:"equipment_id,omitempty" gorm:"index"`
	DepartmentID     *string    `json:"department_id,omitempty"`
	CompletedOn      *time.Time `json:"completed_on,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (Ticket) TableName() string {
	return "tickets"
}

// TicketResponse is the one-per-ticket engineer service report.
type TicketResponse struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	TicketID    string     `json:"ticket_id" gorm:"not null;uniqueIndex"`
	Diagnosis   *string    `json:"diagnosis,omitempty"`
	ActionTaken string     `json:"action_taken" gorm:"not null"`
	PartsUsed   *string    `json:"parts_used,omitempty"`
	Engineer    string     `json:"engineer" gorm:"not null"`
	CompletedOn *time.Time `json:"completed_on,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (TicketResponse) TableName() string {
	return "ticket_responses"
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateTicketCode returns 8 random uppercase alphanumerics. Uniqueness is
// enforced by the caller's retry loop against the tickets table.
func GenerateTicketCode() string {
	buf := make([]byte, 8)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform entropy source is
			// broken; fall back to a time-derived index.
			n = big.NewInt(time.Now().UnixNano() % int64(len(codeAlphabet)))
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf)
}
