package services

import (
	"testing"

	"portal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextStatus(t *testing.T) {
	tests := []struct {
		name    string
		current string
		action  string
		want    string
		wantErr bool
	}{
		{"submit from draft", models.WorkflowDraft, ActionSubmit, models.WorkflowSubmitted, false},
		{"submit twice", models.WorkflowSubmitted, ActionSubmit, "", true},
		{"manager approves submitted entry", models.WorkflowSubmitted, ActionApproveCouncilManager, models.WorkflowApprovedCouncilManager, false},
		{"manager approves straight from draft", models.WorkflowDraft, ActionApproveCouncilManager, models.WorkflowApprovedCouncilManager, false},
		{"manager cannot re-approve", models.WorkflowApprovedCouncilManager, ActionApproveCouncilManager, "", true},
		{"officer approves after manager", models.WorkflowApprovedCouncilManager, ActionApproveRICDOfficer, models.WorkflowApprovedRICDOfficer, false},
		{"officer cannot skip manager approval", models.WorkflowSubmitted, ActionApproveRICDOfficer, "", true},
		{"officer cannot approve a draft", models.WorkflowDraft, ActionApproveRICDOfficer, "", true},
		{"archive from draft", models.WorkflowDraft, ActionArchive, models.WorkflowArchived, false},
		{"archive from fully approved", models.WorkflowApprovedRICDOfficer, ActionArchive, models.WorkflowArchived, false},
		{"unknown action", models.WorkflowDraft, "escalate", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextStatus(tt.current, tt.action)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidTransition)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextStatusErrorNamesTheTransition(t *testing.T) {
	_, err := NextStatus(models.WorkflowSubmitted, ActionSubmit)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "submit")
	assert.Contains(t, err.Error(), "submitted")
}
