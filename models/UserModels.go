package models

import (
	"time"

	"gorm.io/gorm"
)

// Portal role group names
const (
	GroupRICDStaff      = "RICD Staff"
	GroupRICDManager    = "RICD Manager"
	GroupCouncilUser    = "Council User"
	GroupCouncilManager = "Council Manager"
)

// User represents the users table with GORM tags
type User struct {
	ID          uint           `gorm:"primaryKey;column:id" json:"id"`
	Email       string         `gorm:"column:email;uniqueIndex;not null" json:"email"`
	Password    string         `gorm:"column:password;not null" json:"-"`
	FirstName   string         `gorm:"column:first_name;not null" json:"first_name"`
	LastName    string         `gorm:"column:last_name;not null" json:"last_name"`
	IsActive    bool           `gorm:"column:is_active;default:true" json:"is_active"`
	IsAdmin     bool           `gorm:"column:is_admin;default:false" json:"is_admin"`
	PhoneNo     string         `gorm:"column:phone_no" json:"phone_no"`
	FirstAccess *time.Time     `gorm:"column:first_access" json:"first_access,omitempty"`
	LastAccess  *time.Time     `gorm:"column:last_access" json:"last_access,omitempty"`
	CreatedAt   time.Time      `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Groups []Group `gorm:"many2many:user_groups;" json:"groups,omitempty"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// FullName joins first and last name for display
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Group represents the user_group table with GORM tags
type Group struct {
	ID   uint   `gorm:"primaryKey;column:id" json:"id"`
	Name string `gorm:"column:name;uniqueIndex;not null" json:"name"`
}

// TableName specifies the table name for Group
func (Group) TableName() string {
	return "user_group"
}

// Session represents the session table with GORM tags
type Session struct {
	ID                    uint           `gorm:"primaryKey;column:id" json:"id"`
	UserID                int            `gorm:"column:user_id;not null" json:"user_id"`
	SessionID             string         `gorm:"column:session_id;uniqueIndex;not null" json:"session_id"`
	HostName              string         `gorm:"column:host_name;not null" json:"host_name"`
	IPAddress             string         `gorm:"column:ip_address;not null" json:"ip_address"`
	Timestamp             time.Time      `gorm:"column:timestp;not null" json:"timestp"`
	ExpiresAt             time.Time      `gorm:"column:expires_at;not null" json:"expires_at"`
	RefreshToken          *string        `gorm:"column:refresh_token" json:"-"`
	RefreshTokenExpiresAt *time.Time     `gorm:"column:refresh_token_expires_at" json:"-"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for Session
func (Session) TableName() string {
	return "session"
}
