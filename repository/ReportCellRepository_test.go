package repository

import (
	"testing"
	"time"

	"portal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func strPtr(s string) *string { return &s }

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$0.00", FormatCurrency(0))
	assert.Equal(t, "$7.50", FormatCurrency(7.5))
	assert.Equal(t, "$1,234,567.50", FormatCurrency(1234567.5))
	assert.Equal(t, "$950,000.00", FormatCurrency(950000))
	assert.Equal(t, "-$99.90", FormatCurrency(-99.9))
}

func TestFormatItemValue(t *testing.T) {
	t.Run("nil and empty render blank", func(t *testing.T) {
		assert.Equal(t, "", FormatItemValue(nil, models.DataTypeCurrency))
		assert.Equal(t, "", FormatItemValue(strPtr(""), models.DataTypeDate))
	})

	t.Run("dates render as dd/mm/yyyy", func(t *testing.T) {
		assert.Equal(t, "05/08/2024", FormatItemValue(strPtr("2024-08-05"), models.DataTypeDate))
		assert.Equal(t, "05/08/2024", FormatItemValue(strPtr("2024-08-05T10:30:00Z"), models.DataTypeDate))
	})

	t.Run("unparseable dates pass through", func(t *testing.T) {
		assert.Equal(t, "next week", FormatItemValue(strPtr("next week"), models.DataTypeDate))
	})

	t.Run("currency values get grouping and symbol", func(t *testing.T) {
		assert.Equal(t, "$45,000.00", FormatItemValue(strPtr("45000"), models.DataTypeCurrency))
		assert.Equal(t, "not a number", FormatItemValue(strPtr("not a number"), models.DataTypeCurrency))
	})

	t.Run("checkboxes render tick or cross", func(t *testing.T) {
		assert.Equal(t, "✓", FormatItemValue(strPtr("true"), models.DataTypeCheckbox))
		assert.Equal(t, "✗", FormatItemValue(strPtr("0"), models.DataTypeCheckbox))
	})

	t.Run("text passes through", func(t *testing.T) {
		assert.Equal(t, "slab poured", FormatItemValue(strPtr("slab poured"), models.DataTypeText))
	})
}

func TestValueIsChecked(t *testing.T) {
	for _, raw := range []string{"", "0", "false", "FALSE", "no", "off", "  no  "} {
		assert.False(t, ValueIsChecked(raw), "%q must not be checked", raw)
	}
	for _, raw := range []string{"1", "true", "yes", "on", "checked"} {
		assert.True(t, ValueIsChecked(raw), "%q must be checked", raw)
	}
}

func TestItemApplicability(t *testing.T) {
	t.Run("no configuration", func(t *testing.T) {
		// Monthly items default in; quarterly items and stage steps default out
		assert.True(t, MonthlyItemApplicable(nil, 1))
		assert.False(t, QuarterlyItemApplicable(nil, 1))
		assert.False(t, Stage1StepApplicable(nil, 1))
		assert.False(t, Stage2StepApplicable(nil, 1))
	})

	config := &models.ProjectReportConfiguration{
		MonthlyTrackerGroups: []models.MonthlyTrackerItemGroup{
			{Items: []models.MonthlyTrackerItem{{ID: 10}, {ID: 11}}},
		},
		QuarterlyReportGroups: []models.QuarterlyReportItemGroup{
			{Items: []models.QuarterlyReportItem{{ID: 20}}},
		},
		Stage1StepGroups: []models.Stage1StepGroup{
			{Steps: []models.Stage1Step{{ID: 30}}},
		},
		Stage2StepGroups: []models.Stage2StepGroup{
			{Steps: []models.Stage2Step{{ID: 40}}},
		},
	}

	t.Run("configured groups select members only", func(t *testing.T) {
		assert.True(t, MonthlyItemApplicable(config, 10))
		assert.True(t, MonthlyItemApplicable(config, 11))
		assert.False(t, MonthlyItemApplicable(config, 12))

		assert.True(t, QuarterlyItemApplicable(config, 20))
		assert.False(t, QuarterlyItemApplicable(config, 21))

		assert.True(t, Stage1StepApplicable(config, 30))
		assert.False(t, Stage1StepApplicable(config, 31))

		assert.True(t, Stage2StepApplicable(config, 40))
		assert.False(t, Stage2StepApplicable(config, 41))
	})
}

func newCellTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A fresh in-memory database exists per connection; pin to one
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.MonthlyTracker{},
		&models.MonthlyTrackerEntry{},
		&models.QuarterlyReport{},
		&models.QuarterlyReportItemEntry{},
	))
	return db
}

func underConstructionProject() *models.Project {
	commenced := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	return &models.Project{
		ID:                      1,
		CouncilID:               1,
		Name:                    "New Dwellings Hope Vale",
		State:                   models.ProjectStateUnderConstruction,
		DatePhysicallyCommenced: &commenced,
	}
}

func TestResolveMonthlyCellLazyCreation(t *testing.T) {
	db := newCellTestDB(t)
	now := time.Date(2024, 8, 20, 0, 0, 0, 0, time.UTC)
	cost := 450000.0
	work := &models.Work{ID: 7, AddressID: 1, EstimatedCost: &cost}
	item := &models.MonthlyTrackerItem{ID: 3, Name: "Slab Poured", DataType: models.DataTypeDate, IsActive: true}

	first := ResolveMonthlyCell(db, nil, work, underConstructionProject(), item, now)
	require.True(t, first.Applicable)
	require.NotZero(t, first.EntryID)
	assert.Nil(t, first.Value)
	assert.Equal(t, "", first.Display)

	second := ResolveMonthlyCell(db, nil, work, underConstructionProject(), item, now)
	assert.Equal(t, first.EntryID, second.EntryID)
	assert.Equal(t, first.Value, second.Value)
	assert.Equal(t, first.Display, second.Display)

	var trackers, entries int64
	require.NoError(t, db.Model(&models.MonthlyTracker{}).Count(&trackers).Error)
	require.NoError(t, db.Model(&models.MonthlyTrackerEntry{}).Count(&entries).Error)
	assert.EqualValues(t, 1, trackers)
	assert.EqualValues(t, 1, entries)

	var tracker models.MonthlyTracker
	require.NoError(t, db.First(&tracker).Error)
	assert.True(t, tracker.Month.Equal(models.MonthStart(now)))
	require.NotNil(t, tracker.TotalConstructionCost)
	assert.InDelta(t, cost, *tracker.TotalConstructionCost, 0.001)

	var entry models.MonthlyTrackerEntry
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, models.WorkflowDraft, entry.WorkflowStatus)
	assert.Equal(t, work.ID, tracker.WorkID)
}

func TestResolveMonthlyCellBeforeCommencement(t *testing.T) {
	db := newCellTestDB(t)
	now := time.Date(2024, 8, 20, 0, 0, 0, 0, time.UTC)
	work := &models.Work{ID: 7, AddressID: 1}
	item := &models.MonthlyTrackerItem{ID: 3, Name: "Slab Poured", DataType: models.DataTypeDate, IsActive: true, NAAcceptable: true}
	project := &models.Project{ID: 1, CouncilID: 1, Name: "Planned Duplex", State: models.ProjectStateFunded}

	cell := ResolveMonthlyCell(db, nil, work, project, item, now)
	assert.True(t, cell.Applicable)
	assert.Equal(t, "N/A", cell.Display)
	assert.Zero(t, cell.EntryID)

	var trackers int64
	require.NoError(t, db.Model(&models.MonthlyTracker{}).Count(&trackers).Error)
	assert.Zero(t, trackers)
}

func TestResolveQuarterlyCellLazyCreation(t *testing.T) {
	db := newCellTestDB(t)
	now := time.Date(2024, 8, 20, 0, 0, 0, 0, time.UTC)
	work := &models.Work{ID: 9, AddressID: 2}
	item := &models.QuarterlyReportItem{ID: 20, Name: "Certifier Engaged", DataType: models.DataTypeYesNo, IsActive: true}
	config := &models.ProjectReportConfiguration{
		QuarterlyReportGroups: []models.QuarterlyReportItemGroup{
			{Items: []models.QuarterlyReportItem{{ID: 20}}},
		},
	}

	first := ResolveQuarterlyCell(db, config, work, underConstructionProject(), item, now)
	require.True(t, first.Applicable)
	require.NotZero(t, first.EntryID)

	second := ResolveQuarterlyCell(db, config, work, underConstructionProject(), item, now)
	assert.Equal(t, first.EntryID, second.EntryID)

	var reports, entries int64
	require.NoError(t, db.Model(&models.QuarterlyReport{}).Count(&reports).Error)
	require.NoError(t, db.Model(&models.QuarterlyReportItemEntry{}).Count(&entries).Error)
	assert.EqualValues(t, 1, reports)
	assert.EqualValues(t, 1, entries)
}
