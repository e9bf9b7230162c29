// internal/models/admin.go
package models

// AdminLog is an append-only record of administrative and fulfillment actions.
// Rows are never updated or deleted by normal flow.
type AdminLog struct {
	BaseModel
	ActionType  string `json:"action_type" gorm:"size:100;not null;index"`
	Description string `json:"description" gorm:"type:text"`
	IPAddress   string `json:"ip_address" gorm:"size:45"`
}

func (AdminLog) TableName() string {
	return "admin_logs"
}

type ContactSubmission struct {
	BaseModel
	Name    string `json:"name" gorm:"size:100;not null"`
	Email   string `json:"email" gorm:"size:255;not null"`
	Subject string `json:"subject" gorm:"size:255"`
	Message string `json:"message" gorm:"type:text;not null"`
}

func (ContactSubmission) TableName() string {
	return "contact_submissions"
}

// ReconciliationTask captures a fulfillment write that failed after the payment
// was already captured. A background worker replays it until it sticks.
type ReconciliationTask struct {
	BaseModel
	Payload   JSONB  `json:"payload" gorm:"type:jsonb;not null"`
	Attempts  int    `json:"attempts" gorm:"not null;default:0"`
	LastError string `json:"last_error" gorm:"type:text"`
	Done      bool   `json:"done" gorm:"not null;default:false;index"`
}

func (ReconciliationTask) TableName() string {
	return "reconciliation_tasks"
}
