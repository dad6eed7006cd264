package services

import (
	"errors"
	"fmt"
	"time"

	"portal/models"
	"portal/repository"

	"gorm.io/gorm"
)

// Workflow actions accepted by the entry approval endpoints
const (
	ActionSubmit                = "submit"
	ActionApproveCouncilManager = "approve_council_manager"
	ActionApproveRICDOfficer    = "approve_ricd_officer"
	ActionArchive               = "archive"
)

var (
	ErrInvalidTransition = errors.New("invalid workflow transition")
	ErrNotPermitted      = errors.New("user not permitted to perform this action")
)

// NextStatus returns the workflow status an entry moves to when action is
// applied to its current status. RICD approval strictly requires a prior
// council manager approval; council manager approval is allowed straight
// from draft so a manager can submit and approve in one step.
func NextStatus(current, action string) (string, error) {
	switch action {
	case ActionSubmit:
		if current == models.WorkflowDraft {
			return models.WorkflowSubmitted, nil
		}
	case ActionApproveCouncilManager:
		if current == models.WorkflowDraft || current == models.WorkflowSubmitted {
			return models.WorkflowApprovedCouncilManager, nil
		}
	case ActionApproveRICDOfficer:
		if current == models.WorkflowApprovedCouncilManager {
			return models.WorkflowApprovedRICDOfficer, nil
		}
	case ActionArchive:
		return models.WorkflowArchived, nil
	default:
		return "", fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, action)
	}
	return "", fmt.Errorf("%w: cannot %s from %s", ErrInvalidTransition, action, current)
}

// WorkflowResult reports the outcome of one workflow action
type WorkflowResult struct {
	EntryID   uint   `json:"entry_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

func authorizeWorkflowAction(db *gorm.DB, userID uint, workID uint, action string) error {
	switch action {
	case ActionApproveCouncilManager:
		council, err := repository.CouncilForWork(db, workID)
		if err != nil {
			return err
		}
		if !repository.IsCouncilManagerOf(db, userID, council.ID) {
			return ErrNotPermitted
		}
	case ActionApproveRICDOfficer:
		if !repository.IsRICDOfficer(db, userID) {
			return ErrNotPermitted
		}
	}
	return nil
}

// ApplyMonthlyEntryAction transitions a monthly tracker entry through the
// approval workflow, enforcing role checks at the boundary.
func ApplyMonthlyEntryAction(db *gorm.DB, entryID uint, action, comments string, userID uint, now time.Time) (*WorkflowResult, error) {
	var entry models.MonthlyTrackerEntry
	if err := db.Preload("MonthlyTracker").First(&entry, entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrEntryNotFound
		}
		return nil, err
	}

	next, err := NextStatus(entry.WorkflowStatus, action)
	if err != nil {
		return nil, err
	}
	if err := authorizeWorkflowAction(db, userID, entry.MonthlyTracker.WorkID, action); err != nil {
		return nil, err
	}

	old := entry.WorkflowStatus
	entry.WorkflowStatus = next
	switch action {
	case ActionSubmit:
		entry.SubmittedByID = &userID
		entry.SubmittedDate = &now
	case ActionApproveCouncilManager:
		entry.CouncilManagerID = &userID
		entry.CouncilManagerComments = comments
		entry.CouncilManagerDate = &now
	case ActionApproveRICDOfficer:
		entry.RICDOfficerID = &userID
		entry.RICDOfficerComments = comments
		entry.RICDOfficerDate = &now
	}

	if err := db.Save(&entry).Error; err != nil {
		return nil, err
	}
	return &WorkflowResult{EntryID: entry.ID, OldStatus: old, NewStatus: next}, nil
}

// ApplyQuarterlyEntryAction is the quarterly counterpart of
// ApplyMonthlyEntryAction.
func ApplyQuarterlyEntryAction(db *gorm.DB, entryID uint, action, comments string, userID uint, now time.Time) (*WorkflowResult, error) {
	var entry models.QuarterlyReportItemEntry
	if err := db.Preload("QuarterlyReport").First(&entry, entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrEntryNotFound
		}
		return nil, err
	}

	next, err := NextStatus(entry.WorkflowStatus, action)
	if err != nil {
		return nil, err
	}
	if err := authorizeWorkflowAction(db, userID, entry.QuarterlyReport.WorkID, action); err != nil {
		return nil, err
	}

	old := entry.WorkflowStatus
	entry.WorkflowStatus = next
	switch action {
	case ActionSubmit:
		entry.SubmittedByID = &userID
		entry.SubmittedDate = &now
	case ActionApproveCouncilManager:
		entry.CouncilManagerID = &userID
		entry.CouncilManagerComments = comments
		entry.CouncilManagerDate = &now
	case ActionApproveRICDOfficer:
		entry.RICDOfficerID = &userID
		entry.RICDOfficerComments = comments
		entry.RICDOfficerDate = &now
	}

	if err := db.Save(&entry).Error; err != nil {
		return nil, err
	}
	return &WorkflowResult{EntryID: entry.ID, OldStatus: old, NewStatus: next}, nil
}
