package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuarterAndMonthLabels(t *testing.T) {
	assert.Equal(t, "Jan-Mar 2024", QuarterLabel(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Apr-Jun 2024", QuarterLabel(time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Oct-Dec 2023", QuarterLabel(time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)))

	assert.Equal(t, "February 2024", MonthLabel(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "August 2026", MonthLabel(time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)))
}

func TestQuarterAndMonthStarts(t *testing.T) {
	assert.Equal(t,
		time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		QuarterStart(time.Date(2024, 8, 15, 12, 30, 0, 0, time.UTC)))
	assert.Equal(t,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		QuarterStart(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)))

	// Crossing a year boundary
	assert.Equal(t,
		time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC),
		PreviousQuarterStart(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))

	assert.Equal(t,
		time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC),
		MonthStart(time.Date(2024, 8, 31, 23, 59, 0, 0, time.UTC)))
}

func TestStepCompletionValidation(t *testing.T) {
	now := time.Now()

	t.Run("completed requires a date", func(t *testing.T) {
		c := Stage1StepCompletion{Completed: true}
		assert.ErrorIs(t, c.Validate(), ErrStepCompletionDate)
	})

	t.Run("a date requires the completed flag", func(t *testing.T) {
		c := Stage2StepCompletion{CompletedDate: &now}
		assert.ErrorIs(t, c.Validate(), ErrStepCompletedFlag)
	})

	t.Run("agreement passes both ways", func(t *testing.T) {
		done := Stage1StepCompletion{Completed: true, CompletedDate: &now}
		assert.NoError(t, done.Validate())

		pending := Stage2StepCompletion{}
		assert.NoError(t, pending.Validate())
	})
}

func TestStage1ReportIsComplete(t *testing.T) {
	construction := Stage1Report{
		ReportType:                   ReportTypeConstruction,
		ExpenditureRecordsMaintained: true,
		NativeTitleAddressed:         true,
		DevelopmentApprovalObtained:  true,
		TenureObtained:               true,
		DesignApproved:               true,
		ContractorAppointed:          true,
		BuildingApprovalObtained:     true,
	}
	assert.True(t, construction.IsComplete())

	construction.ContractorAppointed = false
	assert.False(t, construction.IsComplete())

	land := Stage1Report{
		ReportType:                   ReportTypeLand,
		ExpenditureRecordsMaintained: true,
		NativeTitleAddressed:         true,
		TenureObtained:               true,
		SubdivisionPlanPrepared:      true,
		LandSurveyed:                 true,
	}
	assert.True(t, land.IsComplete())

	// Construction-only milestones do not count against a land report
	land.ContractorAppointed = false
	assert.True(t, land.IsComplete())

	land.LandSurveyed = false
	assert.False(t, land.IsComplete())
}

func TestStage2ReportIsComplete(t *testing.T) {
	construction := Stage2Report{
		ReportType:                  ReportTypeConstruction,
		ScheduleProvided:            true,
		QuarterlyReportsProvided:    true,
		MonthlyTrackersProvided:     true,
		PracticalCompletionAchieved: true,
		HandoverRequirementsMet:     true,
		HandoverChecklistCompleted:  true,
	}
	assert.True(t, construction.IsComplete())

	construction.HandoverChecklistCompleted = false
	assert.False(t, construction.IsComplete())

	land := Stage2Report{
		ReportType:                  ReportTypeLand,
		QuarterlyReportsProvided:    true,
		MonthlyTrackersProvided:     true,
		PracticalCompletionAchieved: true,
		HandoverRequirementsMet:     true,
		LandWorksCompleted:          true,
	}
	assert.True(t, land.IsComplete())
}

func TestSiteConfigurationValidate(t *testing.T) {
	valid := SiteConfiguration{
		DecimalPlaces:      2,
		ThousandsSeparator: ",",
		DecimalSeparator:   ".",
	}
	require.NoError(t, valid.Validate())

	tooMany := valid
	tooMany.DecimalPlaces = 11
	assert.Error(t, tooMany.Validate())

	negative := valid
	negative.DecimalPlaces = -1
	assert.Error(t, negative.Validate())

	badSeparator := valid
	badSeparator.ThousandsSeparator = ""
	assert.Error(t, badSeparator.Validate())

	twoChars := valid
	twoChars.DecimalSeparator = ".."
	assert.Error(t, twoChars.Validate())
}
