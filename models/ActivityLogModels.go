package models

import "time"

// ActivityLog records one audited portal event: logins, password changes
// and report workflow actions. Rows are append-only.
type ActivityLog struct {
	ID           uint      `gorm:"primaryKey;column:id" json:"id"`
	CreatedAt    time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UserName     string    `gorm:"column:user_name;not null" json:"user_name"`
	UserEmail    string    `gorm:"column:user_email" json:"user_email"`
	IPAddress    string    `gorm:"column:ip_address" json:"ip_address"`
	EventContext string    `gorm:"column:event_context;not null" json:"event_context"`
	EventName    string    `gorm:"column:event_name;not null" json:"event_name"`
	Description  string    `gorm:"column:description" json:"description"`
	ProjectID    *uint     `gorm:"column:project_id" json:"project_id,omitempty"`
}

// TableName specifies the table name for ActivityLog
func (ActivityLog) TableName() string {
	return "activity_log"
}
