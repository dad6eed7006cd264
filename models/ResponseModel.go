package models

import "time"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Token    string `json:"token"`
}

type LoginResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	SessionID    string   `json:"session_id"`
	User         UserInfo `json:"user"`
}

type UserInfo struct {
	ID          uint     `json:"id"`
	Email       string   `json:"email"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Groups      []string `json:"groups"`
	CouncilID   *uint    `json:"council_id,omitempty"`
	CouncilRole string   `json:"council_role,omitempty"`
}

// TrackerCell is one resolved cell of an enhanced tracker table
type TrackerCell struct {
	Applicable bool    `json:"applicable"`
	Value      *string `json:"value"`
	Display    string  `json:"display"`
	EntryID    uint    `json:"entry_id,omitempty"`
	HasData    bool    `json:"has_data"`
}

// TrackerRow is one work's row in an enhanced tracker table
type TrackerRow struct {
	WorkID      uint                   `json:"work_id"`
	AddressID   uint                   `json:"address_id"`
	Address     string                 `json:"address"`
	ProjectID   uint                   `json:"project_id"`
	ProjectName string                 `json:"project_name"`
	Cells       map[string]TrackerCell `json:"cells"`
}

// TrackerColumn describes one configured item column
type TrackerColumn struct {
	ItemID       uint     `json:"item_id"`
	Name         string   `json:"name"`
	DataType     string   `json:"data_type"`
	Required     bool     `json:"required"`
	NAAcceptable bool     `json:"na_acceptable"`
	Options      []string `json:"options,omitempty"`
}

// TrackerTableResponse is the enhanced monthly/quarterly table payload
type TrackerTableResponse struct {
	Columns         []TrackerColumn `json:"columns"`
	Rows            []TrackerRow    `json:"rows"`
	Period          string          `json:"period"`
	DeadlineMessage string          `json:"deadline_message,omitempty"`
}

// BulkSaveResponse reports the outcome of a bulk entry save
type BulkSaveResponse struct {
	SuccessCount int      `json:"success_count"`
	ErrorCount   int      `json:"error_count"`
	Errors       []string `json:"errors,omitempty"`
	Message      string   `json:"message"`
}

// WorkflowActionRequest is the body for entry approval actions
type WorkflowActionRequest struct {
	Action   string `json:"action"`
	Comments string `json:"comments"`
}

type NotificationResponse struct {
	ID        uint      `json:"id"`
	ProjectID uint      `json:"project_id"`
	CouncilID uint      `json:"council_id"`
	AlertType string    `json:"alert_type"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
	AlertDate time.Time `json:"alert_date"`
}

// OutputSummary aggregates delivered outputs for the dashboard
type OutputSummary struct {
	Label    string `json:"label"`
	Count    int    `json:"count"`
	Quantity int    `json:"quantity"`
}

// ProjectStateCount is one slice of the dashboard state breakdown
type ProjectStateCount struct {
	State string `json:"state"`
	Count int    `json:"count"`
}
